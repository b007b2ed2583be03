package eval

import (
	"github.com/jaffa4/siko/internal/langtypes"
	"github.com/jaffa4/siko/internal/program"
)

// matchPattern attempts to match v against p, binding any names p
// introduces into env. On failure env's own bindings are rolled back to
// their pre-attempt state, so a caller trying the next case of a CaseOf
// never observes a partial match from a failed earlier one.
func (ev *Evaluator) matchPattern(p program.Pattern, v Value, env *Environment, ctx langtypes.SubstContext) (bool, error) {
	snap := env.snapshot()
	ok, err := ev.matchPatternInto(p, v, env, ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		env.restore(snap)
	}
	return ok, nil
}

func (ev *Evaluator) matchPatternInto(p program.Pattern, v Value, env *Environment, ctx langtypes.SubstContext) (bool, error) {
	switch n := p.(type) {
	case *program.Binding:
		env.Bind(n.PatternId(), v)
		return true, nil

	case *program.Wildcard:
		return true, nil

	case *program.IntegerPattern:
		return v.(Int).V == n.Value, nil

	case *program.FloatPattern:
		return v.(Float).V == n.Value, nil

	case *program.StringPattern:
		return v.(String).V == n.Value, nil

	case *program.BoolPattern:
		return v.(Bool).V == n.Value, nil

	case *program.TuplePattern:
		items := v.(Tuple).Items
		for i, sub := range n.Items {
			ok, err := ev.matchPatternInto(sub, items[i], env, ctx)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil

	case *program.RecordPattern:
		rec := v.(Record)
		if rec.TypeDef != n.TypeDef {
			return false, nil
		}
		for i, sub := range n.Items {
			ok, err := ev.matchPatternInto(sub, rec.Fields[i], env, ctx)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil

	case *program.VariantPattern:
		variant := v.(Variant)
		if variant.TypeDef != n.TypeDef || variant.VariantIndex != n.VariantIndex {
			return false, nil
		}
		for i, sub := range n.Items {
			ok, err := ev.matchPatternInto(sub, variant.Items[i], env, ctx)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil

	case *program.GuardedPattern:
		ok, err := ev.matchPatternInto(n.Inner, v, env, ctx)
		if err != nil || !ok {
			return false, err
		}
		guardV, err := ev.evalExpr(n.Guard, env, ctx)
		if err != nil {
			return false, err
		}
		return guardV.(Bool).V, nil

	case *program.TypedPattern:
		return ev.matchPatternInto(n.Inner, v, env, ctx)
	}
	return false, nil
}
