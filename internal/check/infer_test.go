package check

import (
	"testing"

	"github.com/jaffa4/siko/internal/ids"
	"github.com/jaffa4/siko/internal/langtypes"
	"github.com/jaffa4/siko/internal/program"
	"github.com/jaffa4/siko/internal/resolve"
	"github.com/jaffa4/siko/internal/synth"
)

// newInferCtx builds a bare inferCtx over prog, ready for direct typeExpr/
// typePattern calls outside a full CheckAll pass.
func newInferCtx(prog *program.Program) *inferCtx {
	alloc := langtypes.NewAllocatorAfter(0)
	return &inferCtx{
		prog: prog, alloc: alloc, resolver: resolve.New(prog), synth: synth.New(alloc),
		inGroup:      map[ids.FunctionId]bool{},
		subst:        langtypes.Substitution{},
		exprTypes:    map[ids.ExprId]langtypes.Type{},
		patternTypes: map[ids.PatternId]langtypes.Type{},
	}
}

// addRecord registers a record TypeDef named name with a single field
// fieldName of type fieldType, returning its TypeDefId.
func addRecord(prog *program.Program, name, fieldName string, fieldType langtypes.Type) ids.TypeDefId {
	td := &program.TypeDef{Name: name, Kind: program.RecordKind, Fields: []program.Field{{Name: fieldName, Type: fieldType}}}
	tdId := prog.AddTypeDef(td)
	ctor := &program.Function{
		Kind: program.KindRecordConstructor, Module: name, Name: name, ExplicitArity: 1, TypeDef: tdId,
		SchematicType: langtypes.Curry([]langtypes.Type{fieldType}, langtypes.Named{Name: name, Def: tdId}),
	}
	td.Constructor = prog.AddFunction(ctor)
	return tdId
}

func exprId(prog *program.Program, e program.Expr) program.Expr {
	switch n := e.(type) {
	case *program.ArgRef:
		n.Id = prog.NextExprId()
	case *program.FieldAccess:
		n.Id = prog.NextExprId()
	default:
		panic("exprId: unhandled expr type in test helper")
	}
	return e
}

// TestFieldAccessAmbiguousAcrossTwoRecords covers S3: two records declare a
// field with the same name, and accessing it on a receiver whose type isn't
// otherwise pinned down must report AmbiguousFieldAccessError naming both
// candidates rather than silently picking one.
func TestFieldAccessAmbiguousAcrossTwoRecords(t *testing.T) {
	prog := program.New()
	aId := addRecord(prog, "A", "x", langtypes.Named{Name: "Int", Def: 0})
	bId := addRecord(prog, "B", "x", langtypes.Named{Name: "String", Def: 1})

	// f r = r.x, where r's type is an unconstrained fresh variable: both A
	// and B unify against it, so the field access is genuinely ambiguous.
	fFn := &program.Function{Kind: program.KindNamedFunction, Module: "Main", Name: "f", ExplicitArity: 1,
		SchematicType: langtypes.Curry([]langtypes.Type{langtypes.Var{Index: 10}}, langtypes.Var{Index: 11})}
	fId := prog.AddFunction(fFn)

	receiver := exprId(prog, &program.ArgRef{Function: fId, Index: 0})
	access := exprId(prog, &program.FieldAccess{FieldName: "x", Candidates: []ids.TypeDefId{aId, bId}, Receiver: receiver}).(*program.FieldAccess)

	ic := newInferCtx(prog)
	ic.inGroup[fId] = true
	ic.typeExpr(fFn, access)

	if len(ic.errors) != 1 {
		t.Fatalf("expected exactly one error, got %d: %v", len(ic.errors), ic.errors)
	}
	ambErr, ok := ic.errors[0].(*AmbiguousFieldAccessError)
	if !ok {
		t.Fatalf("expected *AmbiguousFieldAccessError, got %T: %v", ic.errors[0], ic.errors[0])
	}
	if len(ambErr.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %v", ambErr.Candidates)
	}
}

// TestFieldAccessNoMatchingField covers the sibling case: a field name that
// matches none of the listed candidate records.
func TestFieldAccessNoMatchingField(t *testing.T) {
	prog := program.New()
	aId := addRecord(prog, "A", "x", langtypes.Named{Name: "Int", Def: 0})

	fFn := &program.Function{Kind: program.KindNamedFunction, Module: "Main", Name: "f", ExplicitArity: 1,
		SchematicType: langtypes.Curry([]langtypes.Type{langtypes.Named{Name: "A", Def: aId}}, langtypes.Var{Index: 11})}
	fId := prog.AddFunction(fFn)

	receiver := exprId(prog, &program.ArgRef{Function: fId, Index: 0})
	access := exprId(prog, &program.FieldAccess{FieldName: "y", Candidates: []ids.TypeDefId{aId}, Receiver: receiver}).(*program.FieldAccess)

	ic := newInferCtx(prog)
	ic.inGroup[fId] = true
	ic.typeExpr(fFn, access)

	if len(ic.errors) != 1 {
		t.Fatalf("expected exactly one error, got %d: %v", len(ic.errors), ic.errors)
	}
	if _, ok := ic.errors[0].(*NoMatchingFieldError); !ok {
		t.Fatalf("expected *NoMatchingFieldError, got %T: %v", ic.errors[0], ic.errors[0])
	}
}

// TestTypeCallAllowsPartialApplication covers the partial-application half
// of spec.md §4.4: calling a two-argument function with only one argument
// must not raise FunctionArgumentMismatchError — the call's type is simply
// the unconsumed function-type suffix.
func TestTypeCallAllowsPartialApplication(t *testing.T) {
	prog := program.New()

	intT := langtypes.Named{Name: "Int", Def: 0}
	addFn := &program.Function{Kind: program.KindNamedFunction, Module: "Int", Name: "opAdd", ExplicitArity: 2,
		SchematicType: langtypes.Curry([]langtypes.Type{intT, intT}, intT)}
	addId := prog.AddFunction(addFn)

	incFn := &program.Function{Kind: program.KindNamedFunction, Module: "Main", Name: "inc", ExplicitArity: 0,
		SchematicType: langtypes.Curry([]langtypes.Type{intT}, intT)}
	incId := prog.AddFunction(incFn)

	oneLit := &program.IntegerLiteral{Value: 1}
	oneLit.Id = prog.NextExprId()
	call := &program.StaticFunctionCall{Function: addId, Args: []program.Expr{oneLit}}
	call.Id = prog.NextExprId()

	ic := newInferCtx(prog)
	ic.inGroup[incId] = true
	resultT := ic.typeCall(incFn, call, ic.calleeType(addId), call.Args)

	if len(ic.errors) != 0 {
		t.Fatalf("expected no errors for partial application, got %v", ic.errors)
	}
	fn, ok := langtypes.Apply(resultT, ic.subst).(langtypes.Function)
	if !ok {
		t.Fatalf("expected the partially-applied result to still be a function type, got %s", resultT)
	}
	if fn.To.(langtypes.Named).Name != "Int" {
		t.Fatalf("expected Int -> Int remaining, got %s", resultT)
	}
}

// TestTypeCallRejectsOverApplication covers the opposite edge: more
// arguments than the callee's curried chain has segments reports
// FunctionArgumentMismatchError instead of panicking or silently truncating.
func TestTypeCallRejectsOverApplication(t *testing.T) {
	prog := program.New()

	intT := langtypes.Named{Name: "Int", Def: 0}
	identityFn := &program.Function{Kind: program.KindNamedFunction, Module: "Main", Name: "id", ExplicitArity: 1,
		SchematicType: langtypes.Curry([]langtypes.Type{intT}, intT)}
	idId := prog.AddFunction(identityFn)

	a := &program.IntegerLiteral{Value: 1}
	a.Id = prog.NextExprId()
	b := &program.IntegerLiteral{Value: 2}
	b.Id = prog.NextExprId()
	call := &program.StaticFunctionCall{Function: idId, Args: []program.Expr{a, b}}
	call.Id = prog.NextExprId()

	ic := newInferCtx(prog)
	ic.inGroup[idId] = true
	ic.typeCall(identityFn, call, ic.calleeType(idId), call.Args)

	if len(ic.errors) != 1 {
		t.Fatalf("expected exactly one error, got %d: %v", len(ic.errors), ic.errors)
	}
	if _, ok := ic.errors[0].(*FunctionArgumentMismatchError); !ok {
		t.Fatalf("expected *FunctionArgumentMismatchError, got %T: %v", ic.errors[0], ic.errors[0])
	}
}
