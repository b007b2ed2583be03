package synth

import (
	"testing"

	"github.com/jaffa4/siko/internal/langtypes"
	"github.com/jaffa4/siko/internal/program"
)

func TestFunctionSignatureSharesFixedVarAcrossOccurrences(t *testing.T) {
	alloc := &langtypes.VarAllocator{}
	s := New(alloc)

	a := program.SurfaceType{Kind: program.SurfaceTypeArg, Name: "a"}
	sig := s.FunctionSignature([]program.SurfaceType{a}, a)

	fn, ok := sig.(langtypes.Function)
	if !ok {
		t.Fatalf("expected Function, got %T", sig)
	}
	from, ok1 := fn.From.(langtypes.FixedVar)
	to, ok2 := fn.To.(langtypes.FixedVar)
	if !ok1 || !ok2 {
		t.Fatalf("expected FixedVar on both ends, got %T -> %T", fn.From, fn.To)
	}
	if from.Index != to.Index {
		t.Fatalf("expected shared FixedVar index, got %d vs %d", from.Index, to.Index)
	}
}

func TestUntypedFunctionAllocatesDistinctVars(t *testing.T) {
	alloc := &langtypes.VarAllocator{}
	s := New(alloc)

	sig := s.UntypedFunction(2)
	args, result := langtypes.Uncurry(sig, -1)
	if len(args) != 2 {
		t.Fatalf("expected 2 curried args, got %d", len(args))
	}
	seen := map[int]bool{}
	for _, a := range append(args, result) {
		v, ok := a.(langtypes.Var)
		if !ok {
			t.Fatalf("expected Var, got %T", a)
		}
		if seen[v.Index] {
			t.Fatalf("variable index %d reused", v.Index)
		}
		seen[v.Index] = true
	}
}

func TestADTVariantBuildsConstructorType(t *testing.T) {
	alloc := &langtypes.VarAllocator{}
	s := New(alloc)

	td := &program.TypeDef{
		Name:         "Option",
		Kind:         program.ADTKind,
		TypeArgs:     []int{0},
		TypeArgNames: []string{"a"},
		Variants: []program.Variant{
			{Name: "None"},
			{Name: "Some", ItemSigs: []program.SurfaceType{{Kind: program.SurfaceTypeArg, Name: "a"}}},
		},
	}

	someType := s.ADTVariant(td, 1)
	args, result := langtypes.Uncurry(someType, -1)
	if len(args) != 1 {
		t.Fatalf("expected 1 arg for Some, got %d", len(args))
	}
	named, ok := result.(langtypes.Named)
	if !ok || named.Name != "Option" {
		t.Fatalf("expected result type Option, got %v", result)
	}
	argVar, ok := args[0].(langtypes.Var)
	if !ok || argVar.Index != 0 {
		t.Fatalf("expected Some's item to reuse type-arg var 0, got %v", args[0])
	}
}
