package langtypes

import "github.com/jaffa4/siko/internal/ids"

// Substitution maps schematic type-variable indices to schematic types; it
// is the unifier's (L2) output. It may map a variable to another variable,
// to a FixedVar, or to a fully structural type.
type Substitution map[int]Type

// SubstContext maps a callee's schematic variable indices to concrete
// types; it is L6's output, built fresh at every call site and attached to
// a Callable so the evaluator knows how to monomorphize the callee.
type SubstContext map[int]Concrete

// Apply substitutes t under s, idempotently: a variable absent from s is
// left untouched, and chains are followed to a fixed point while guarding
// against cycles.
func Apply(t Type, s Substitution) Type {
	return applyVisited(t, s, map[int]bool{})
}

func applyVisited(t Type, s Substitution, visiting map[int]bool) Type {
	switch ty := t.(type) {
	case Var:
		return applyVar(ty.Index, t, s, visiting)
	case FixedVar:
		return applyVar(ty.Index, t, s, visiting)
	case Tuple:
		children := make([]Type, len(ty.Children))
		for i, c := range ty.Children {
			children[i] = applyVisited(c, s, visiting)
		}
		return Tuple{Children: children}
	case Function:
		return Function{From: applyVisited(ty.From, s, visiting), To: applyVisited(ty.To, s, visiting)}
	case Named:
		args := make([]Type, len(ty.Args))
		for i, a := range ty.Args {
			args[i] = applyVisited(a, s, visiting)
		}
		return Named{Name: ty.Name, Def: ty.Def, Args: args}
	default:
		return t
	}
}

func applyVar(index int, original Type, s Substitution, visiting map[int]bool) Type {
	if visiting[index] {
		return original
	}
	replacement, ok := s[index]
	if !ok {
		return original
	}
	next := map[int]bool{}
	for k, v := range visiting {
		next[k] = v
	}
	next[index] = true
	return applyVisited(replacement, s, next)
}

// ApplyDetectCycle behaves like Apply but additionally reports whether
// resolving t walked through a variable already being resolved in the same
// chain — a genuine substitution cycle, as opposed to a variable simply
// appearing twice in unrelated branches. check.Checker uses this to raise
// RecursiveType rather than silently truncating the cycle the way Apply
// does.
func ApplyDetectCycle(t Type, s Substitution) (Type, bool) {
	cycle := false
	var rec func(Type, map[int]bool) Type
	resolveVar := func(index int, original Type, visiting map[int]bool) Type {
		if visiting[index] {
			cycle = true
			return original
		}
		replacement, ok := s[index]
		if !ok {
			return original
		}
		next := map[int]bool{}
		for k, v := range visiting {
			next[k] = v
		}
		next[index] = true
		return rec(replacement, next)
	}
	rec = func(t Type, visiting map[int]bool) Type {
		switch ty := t.(type) {
		case Var:
			return resolveVar(ty.Index, t, visiting)
		case FixedVar:
			return resolveVar(ty.Index, t, visiting)
		case Tuple:
			children := make([]Type, len(ty.Children))
			for i, c := range ty.Children {
				children[i] = rec(c, visiting)
			}
			return Tuple{Children: children}
		case Function:
			return Function{From: rec(ty.From, visiting), To: rec(ty.To, visiting)}
		case Named:
			args := make([]Type, len(ty.Args))
			for i, a := range ty.Args {
				args[i] = rec(a, visiting)
			}
			return Named{Name: ty.Name, Def: ty.Def, Args: args}
		default:
			return t
		}
	}
	result := rec(t, map[int]bool{})
	return result, cycle
}

// Compose returns the substitution equivalent to applying s1 then s2: for
// every binding in s1, its target is further substituted by s2, and any
// binding only in s2 is carried through. s1 bindings take precedence on
// overlapping keys, matching the unifier's "most recent substitution wins"
// composition order.
func Compose(s1, s2 Substitution) Substitution {
	out := Substitution{}
	for k, v := range s2 {
		out[k] = v
	}
	for k, v := range s1 {
		out[k] = Apply(v, s2)
	}
	return out
}

// DeferredConstraint records a class obligation produced when a variable
// unifies against a concrete-shaped type: the instance
// resolver (L3) discharges these once inference for the group completes.
type DeferredConstraint struct {
	Class ids.ClassId
	Type  Type
}
