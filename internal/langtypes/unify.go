package langtypes

import (
	"fmt"

	"github.com/jaffa4/siko/internal/ids"
)

// MismatchError reports two types that cannot be unified structurally.
type MismatchError struct {
	A, B Type
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("type mismatch: expected %s, found %s", e.A, e.B)
}

// OccursError reports that binding a variable would make it refer to
// itself through a structural path.
type OccursError struct {
	Index int
	In    Type
}

func (e *OccursError) Error() string {
	return fmt.Sprintf("occurs check failed: t%d occurs in %s", e.Index, e.In)
}

// ConstraintNotSatisfiedError reports a FixedVar unified against a variable
// whose constraint set is not a subset of the fixed variable's.
type ConstraintNotSatisfiedError struct {
	Class ids.ClassId
	Type  Type
}

func (e *ConstraintNotSatisfiedError) Error() string {
	return fmt.Sprintf("constraint not satisfied: %s requires class %d", e.Type, e.Class)
}

// Result is the unifier's output: the substitution plus any class
// obligations deferred for the instance resolver.
type Result struct {
	Subst    Substitution
	Deferred []DeferredConstraint
}

func emptyResult() Result { return Result{Subst: Substitution{}} }

// Unify performs first-order unification of a and b modulo the rules in
// spec.md §4.1.
func Unify(a, b Type) (Result, error) {
	switch av := a.(type) {
	case Var:
		return unifyVar(av, b)
	case FixedVar:
		return unifyFixedVar(av, b)
	}

	switch bv := b.(type) {
	case Var:
		return unifyVar(bv, a)
	case FixedVar:
		return unifyFixedVar(bv, a)
	}

	switch av := a.(type) {
	case Tuple:
		bv, ok := b.(Tuple)
		if !ok || len(av.Children) != len(bv.Children) {
			return Result{}, &MismatchError{A: a, B: b}
		}
		return unifyList(av.Children, bv.Children)
	case Function:
		bv, ok := b.(Function)
		if !ok {
			return Result{}, &MismatchError{A: a, B: b}
		}
		r1, err := Unify(av.From, bv.From)
		if err != nil {
			return Result{}, err
		}
		r2, err := Unify(Apply(av.To, r1.Subst), Apply(bv.To, r1.Subst))
		if err != nil {
			return Result{}, err
		}
		return combine(r1, r2), nil
	case Named:
		bv, ok := b.(Named)
		if !ok || av.Def != bv.Def || len(av.Args) != len(bv.Args) {
			return Result{}, &MismatchError{A: a, B: b}
		}
		return unifyList(av.Args, bv.Args)
	default:
		return Result{}, &MismatchError{A: a, B: b}
	}
}

func unifyList(as, bs []Type) (Result, error) {
	res := emptyResult()
	for i := range as {
		x := Apply(as[i], res.Subst)
		y := Apply(bs[i], res.Subst)
		r, err := Unify(x, y)
		if err != nil {
			return Result{}, err
		}
		res = combine(res, r)
	}
	return res, nil
}

func combine(r1, r2 Result) Result {
	return Result{
		Subst:    Compose(r2.Subst, r1.Subst),
		Deferred: append(append([]DeferredConstraint{}, r1.Deferred...), r2.Deferred...),
	}
}

func unifyVar(v Var, other Type) (Result, error) {
	switch o := other.(type) {
	case Var:
		if v.Index == o.Index {
			return emptyResult(), nil
		}
		merged := SortedUniqueClasses(append(append([]ids.ClassId{}, v.Constraints...), o.Constraints...))
		fresh := Var{Index: v.Index, Constraints: merged}
		s := Substitution{v.Index: fresh, o.Index: fresh}
		return Result{Subst: s}, nil
	case FixedVar:
		if err := occursCheck(v.Index, other); err != nil {
			return Result{}, err
		}
		if !subsetClasses(v.Constraints, o.Constraints) {
			missing := firstMissing(v.Constraints, o.Constraints)
			return Result{}, &ConstraintNotSatisfiedError{Class: missing, Type: other}
		}
		return Result{Subst: Substitution{v.Index: other}}, nil
	default:
		if err := occursCheck(v.Index, other); err != nil {
			return Result{}, err
		}
		var deferred []DeferredConstraint
		for _, c := range v.Constraints {
			deferred = append(deferred, DeferredConstraint{Class: c, Type: other})
		}
		return Result{Subst: Substitution{v.Index: other}, Deferred: deferred}, nil
	}
}

func unifyFixedVar(v FixedVar, other Type) (Result, error) {
	switch o := other.(type) {
	case FixedVar:
		if v.Index == o.Index {
			return emptyResult(), nil
		}
		return Result{}, &MismatchError{A: v, B: other}
	case Var:
		return unifyVar(o, v)
	default:
		return Result{}, &MismatchError{A: v, B: other}
	}
}

func subsetClasses(need, have []ids.ClassId) bool {
	haveSet := map[ids.ClassId]bool{}
	for _, h := range have {
		haveSet[h] = true
	}
	for _, n := range need {
		if !haveSet[n] {
			return false
		}
	}
	return true
}

func firstMissing(need, have []ids.ClassId) ids.ClassId {
	haveSet := map[ids.ClassId]bool{}
	for _, h := range have {
		haveSet[h] = true
	}
	for _, n := range need {
		if !haveSet[n] {
			return n
		}
	}
	return 0
}

// occursCheck fails if index appears free anywhere inside t.
func occursCheck(index int, t Type) error {
	for _, v := range t.FreeVars() {
		if v == index {
			return &OccursError{Index: index, In: t}
		}
	}
	return nil
}
