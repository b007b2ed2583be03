package resolve

import (
	"testing"

	"github.com/jaffa4/siko/internal/ids"
	"github.com/jaffa4/siko/internal/langtypes"
	"github.com/jaffa4/siko/internal/program"
)

func freshVarFactory() func() int {
	n := 100
	return func() int {
		n++
		return n
	}
}

func TestHasInstanceDirectMatch(t *testing.T) {
	prog := program.New()
	eqClass := &program.Class{Name: "Eq", ArgVar: 0}
	prog.AddClass(eqClass)

	intDef := &program.TypeDef{Name: "Int", Kind: program.ADTKind}
	prog.AddTypeDef(intDef)
	intType := langtypes.Named{Name: "Int", Def: intDef.Id}

	inst := &program.Instance{Class: eqClass.Id, Head: intType, Members: map[ids.ClassMemberId]ids.FunctionId{}}
	prog.AddInstance(inst)

	r := New(prog)
	_, got, err := r.HasInstance(intType, eqClass.Id, freshVarFactory())
	if err != nil {
		t.Fatalf("expected instance, got error: %v", err)
	}
	if got.Id != inst.Id {
		t.Fatalf("resolved wrong instance: got %d want %d", got.Id, inst.Id)
	}
}

func TestHasInstanceMissing(t *testing.T) {
	prog := program.New()
	eqClass := &program.Class{Name: "Eq", ArgVar: 0}
	prog.AddClass(eqClass)
	boolDef := &program.TypeDef{Name: "Bool", Kind: program.ADTKind}
	prog.AddTypeDef(boolDef)

	r := New(prog)
	_, _, err := r.HasInstance(langtypes.Named{Name: "Bool", Def: boolDef.Id}, eqClass.Id, freshVarFactory())
	if err == nil {
		t.Fatalf("expected MissingInstanceError")
	}
	if _, ok := err.(*MissingInstanceError); !ok {
		t.Fatalf("expected MissingInstanceError, got %T", err)
	}
}

func TestHasInstanceRecursesOnDependencyConstraint(t *testing.T) {
	prog := program.New()
	eqClass := &program.Class{Name: "Eq", ArgVar: 0}
	prog.AddClass(eqClass)

	intDef := &program.TypeDef{Name: "Int", Kind: program.ADTKind}
	prog.AddTypeDef(intDef)
	intType := langtypes.Named{Name: "Int", Def: intDef.Id}
	prog.AddInstance(&program.Instance{Class: eqClass.Id, Head: intType, Members: map[ids.ClassMemberId]ids.FunctionId{}})

	listDef := &program.TypeDef{Name: "List", Kind: program.ADTKind, TypeArgs: []int{0}}
	prog.AddTypeDef(listDef)
	// instance Eq a => Eq (List a)
	listInst := &program.Instance{
		Class: eqClass.Id,
		Head:  langtypes.Named{Name: "List", Def: listDef.Id, Args: []langtypes.Type{langtypes.Var{Index: 0}}},
		Members: map[ids.ClassMemberId]ids.FunctionId{},
		Constraints: []langtypes.DeferredConstraint{
			{Class: eqClass.Id, Type: langtypes.Var{Index: 0}},
		},
	}
	prog.AddInstance(listInst)

	r := New(prog)
	listOfInt := langtypes.Named{Name: "List", Def: listDef.Id, Args: []langtypes.Type{intType}}
	_, got, err := r.HasInstance(listOfInt, eqClass.Id, freshVarFactory())
	if err != nil {
		t.Fatalf("expected instance via recursive dependency check, got error: %v", err)
	}
	if got.Id != listInst.Id {
		t.Fatalf("resolved wrong instance: got %d want %d", got.Id, listInst.Id)
	}

	listOfBool := langtypes.Named{Name: "List", Def: listDef.Id, Args: []langtypes.Type{langtypes.Named{Name: "Bool", Def: 99}}}
	_, _, err = r.HasInstance(listOfBool, eqClass.Id, freshVarFactory())
	if err == nil {
		t.Fatalf("expected missing instance for List<Bool> since Eq Bool isn't declared")
	}
}

func TestCheckConflictsDetectsOverlap(t *testing.T) {
	prog := program.New()
	eqClass := &program.Class{Name: "Eq", ArgVar: 0}
	prog.AddClass(eqClass)
	intDef := &program.TypeDef{Name: "Int", Kind: program.ADTKind}
	prog.AddTypeDef(intDef)
	intType := langtypes.Named{Name: "Int", Def: intDef.Id}

	prog.AddInstance(&program.Instance{Class: eqClass.Id, Head: intType, Members: map[ids.ClassMemberId]ids.FunctionId{}})
	prog.AddInstance(&program.Instance{Class: eqClass.Id, Head: intType, Members: map[ids.ClassMemberId]ids.FunctionId{}})

	r := New(prog)
	errs := r.CheckConflicts()
	if len(errs) != 1 {
		t.Fatalf("expected exactly one conflict, got %d: %v", len(errs), errs)
	}
}

func TestCheckConflictsGenericHeadConflictsWithEverything(t *testing.T) {
	prog := program.New()
	showClass := &program.Class{Name: "Show", ArgVar: 0}
	prog.AddClass(showClass)
	intDef := &program.TypeDef{Name: "Int", Kind: program.ADTKind}
	prog.AddTypeDef(intDef)

	prog.AddInstance(&program.Instance{Class: showClass.Id, Head: langtypes.Named{Name: "Int", Def: intDef.Id}, Members: map[ids.ClassMemberId]ids.FunctionId{}})
	prog.AddInstance(&program.Instance{Class: showClass.Id, Head: langtypes.Var{Index: 0}, Members: map[ids.ClassMemberId]ids.FunctionId{}})

	r := New(prog)
	errs := r.CheckConflicts()
	if len(errs) != 1 {
		t.Fatalf("expected exactly one conflict between generic and concrete instance, got %d", len(errs))
	}
}
