package check

import (
	"testing"

	"github.com/jaffa4/siko/internal/ids"
	"github.com/jaffa4/siko/internal/langtypes"
)

func TestComputeSubstContextBindsEachVariableOnce(t *testing.T) {
	// schematic: a -> (a, b) -> a   (Var 0 = a, Var 1 = b)
	schematic := langtypes.Curry(
		[]langtypes.Type{
			langtypes.Var{Index: 0},
			langtypes.Tuple{Children: []langtypes.Type{langtypes.Var{Index: 0}, langtypes.Var{Index: 1}}},
		},
		langtypes.Var{Index: 0},
	)

	intType := langtypes.CNamed{Name: "Int", Def: ids.TypeDefId(1)}
	boolType := langtypes.CNamed{Name: "Bool", Def: ids.TypeDefId(2)}
	concrete := langtypes.CurryConcrete(
		[]langtypes.Concrete{intType, langtypes.CTuple{Children: []langtypes.Concrete{intType, boolType}}},
		intType,
	)

	ctx, err := ComputeSubstContext(schematic, concrete)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx[0].String() != intType.String() {
		t.Fatalf("expected var 0 bound to Int, got %s", ctx[0])
	}
	if ctx[1].String() != boolType.String() {
		t.Fatalf("expected var 1 bound to Bool, got %s", ctx[1])
	}
}

func TestComputeSubstContextRejectsInconsistentBinding(t *testing.T) {
	// schematic: a -> a -> a, called as Int -> Bool -> ?
	schematic := langtypes.Curry(
		[]langtypes.Type{langtypes.Var{Index: 0}, langtypes.Var{Index: 0}},
		langtypes.Var{Index: 0},
	)
	intType := langtypes.CNamed{Name: "Int", Def: ids.TypeDefId(1)}
	boolType := langtypes.CNamed{Name: "Bool", Def: ids.TypeDefId(2)}
	concrete := langtypes.CurryConcrete([]langtypes.Concrete{intType, boolType}, intType)

	_, err := ComputeSubstContext(schematic, concrete)
	if err == nil {
		t.Fatalf("expected an inconsistency error, got nil")
	}
	if _, ok := err.(*InconsistentSubstitutionError); !ok {
		t.Fatalf("expected *InconsistentSubstitutionError, got %T", err)
	}
}
