package check

import (
	"fmt"

	"github.com/jaffa4/siko/internal/langtypes"
)

// InconsistentSubstitutionError reports that two occurrences of the same
// schematic variable at one call site bound to different concrete types —
// a defensive re-check of what the type checker already guaranteed
// (spec.md §4.5 "this is guaranteed by the type check but should be
// re-asserted defensively").
type InconsistentSubstitutionError struct {
	Index int
	First, Second langtypes.Concrete
}

func (e *InconsistentSubstitutionError) Error() string {
	return fmt.Sprintf("variable %d bound to both %s and %s at the same call site", e.Index, e.First, e.Second)
}

// ComputeSubstContext implements L6: match schematic, the
// callee's schematic type, structurally against concrete, the call site's
// fully concrete curried function type (built by currying the evaluated
// arguments' concrete types with the call's expected result type), and
// record every variable's binding. Every repeated occurrence of the same
// variable must bind to the same concrete type.
func ComputeSubstContext(schematic langtypes.Type, concrete langtypes.Concrete) (langtypes.SubstContext, error) {
	ctx := langtypes.SubstContext{}
	if err := matchInto(ctx, schematic, concrete); err != nil {
		return nil, err
	}
	return ctx, nil
}

func matchInto(ctx langtypes.SubstContext, s langtypes.Type, c langtypes.Concrete) error {
	switch st := s.(type) {
	case langtypes.Var:
		return bindVar(ctx, st.Index, c)
	case langtypes.FixedVar:
		return bindVar(ctx, st.Index, c)
	case langtypes.Tuple:
		ct, ok := c.(langtypes.CTuple)
		if !ok || len(ct.Children) != len(st.Children) {
			return fmt.Errorf("subst context: expected tuple of arity %d, got %s", len(st.Children), c)
		}
		for i := range st.Children {
			if err := matchInto(ctx, st.Children[i], ct.Children[i]); err != nil {
				return err
			}
		}
		return nil
	case langtypes.Function:
		cf, ok := c.(langtypes.CFunction)
		if !ok {
			return fmt.Errorf("subst context: expected function type, got %s", c)
		}
		if err := matchInto(ctx, st.From, cf.From); err != nil {
			return err
		}
		return matchInto(ctx, st.To, cf.To)
	case langtypes.Named:
		cn, ok := c.(langtypes.CNamed)
		if !ok || cn.Def != st.Def || len(cn.Args) != len(st.Args) {
			return fmt.Errorf("subst context: expected %s, got %s", st, c)
		}
		for i := range st.Args {
			if err := matchInto(ctx, st.Args[i], cn.Args[i]); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("subst context: unknown schematic type %T", s)
	}
}

func bindVar(ctx langtypes.SubstContext, index int, c langtypes.Concrete) error {
	if existing, ok := ctx[index]; ok {
		if existing.String() != c.String() {
			return &InconsistentSubstitutionError{Index: index, First: existing, Second: c}
		}
		return nil
	}
	ctx[index] = c
	return nil
}
