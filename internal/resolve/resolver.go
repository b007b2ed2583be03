// Package resolve implements the instance resolver: given a
// (ClassId, Type), it finds the instance whose head unifies, recursively
// checking that instance's own dependency constraints, and detects
// instance conflicts ahead of evaluation.
package resolve

import (
	"fmt"
	"sort"

	"github.com/jaffa4/siko/internal/ids"
	"github.com/jaffa4/siko/internal/langtypes"
	"github.com/jaffa4/siko/internal/program"
)

// Resolver indexes a Program's instances by (ClassId, BaseType) for O(1)
// candidate lookup, the way spec.md §4.2 describes.
type Resolver struct {
	prog *program.Program

	byBase    map[ids.ClassId]map[langtypes.BaseType][]ids.InstanceId
	genericOf map[ids.ClassId][]ids.InstanceId // instances whose head is a bare Var
}

// New indexes every instance in prog.
func New(prog *program.Program) *Resolver {
	r := &Resolver{
		prog:      prog,
		byBase:    map[ids.ClassId]map[langtypes.BaseType][]ids.InstanceId{},
		genericOf: map[ids.ClassId][]ids.InstanceId{},
	}
	for _, id := range prog.InstanceOrder {
		inst := prog.Instance(id)
		if _, isVar := inst.Head.(langtypes.Var); isVar {
			r.genericOf[inst.Class] = append(r.genericOf[inst.Class], id)
			continue
		}
		base := inst.Head.Base()
		m := r.byBase[inst.Class]
		if m == nil {
			m = map[langtypes.BaseType][]ids.InstanceId{}
			r.byBase[inst.Class] = m
		}
		m[base] = append(m[base], id)
	}
	return r
}

// ConflictingInstancesError reports two instances of the same class whose
// heads unify.
type ConflictingInstancesError struct {
	Class    ids.ClassId
	A, B     ids.InstanceId
	LocA, LocB ids.LocationId
}

func (e *ConflictingInstancesError) Error() string {
	return fmt.Sprintf("conflicting instances of class %d: instance %d and instance %d", e.Class, e.A, e.B)
}

// CheckConflicts reports every pair of instances of the same class whose
// heads unify, including the Var-head-conflicts-with-everything rule
//.
func (r *Resolver) CheckConflicts() []error {
	var errs []error
	for _, classId := range r.prog.ClassOrder {
		var all []ids.InstanceId
		for _, list := range r.byBase[classId] {
			all = append(all, list...)
		}
		all = append(all, r.genericOf[classId]...)
		sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })

		for i := 0; i < len(all); i++ {
			for j := i + 1; j < len(all); j++ {
				instA := r.prog.Instance(all[i])
				instB := r.prog.Instance(all[j])
				if _, err := langtypes.Unify(instA.Head, instB.Head); err == nil {
					errs = append(errs, &ConflictingInstancesError{
						Class: classId, A: instA.Id, B: instB.Id,
						LocA: instA.Loc, LocB: instB.Loc,
					})
				}
			}
		}
	}
	return errs
}

// InstanceForSelector looks up the instance of class whose head's base
// matches selector exactly — the direct, non-recursive lookup the
// evaluator's class-member dispatch uses once a call site's instance
// selector is already a fully concrete base type (spec.md §4.6
// "Look up instances[C][selector]"), as opposed to HasInstance's
// unification-based search used during type checking.
func (r *Resolver) InstanceForSelector(class ids.ClassId, selector langtypes.BaseType) (*program.Instance, bool) {
	if list := r.byBase[class][selector]; len(list) > 0 {
		return r.prog.Instance(list[0]), true
	}
	if list := r.genericOf[class]; len(list) > 0 {
		return r.prog.Instance(list[0]), true
	}
	return nil, false
}

// MissingInstanceError reports that no instance (and no default) covers ty.
type MissingInstanceError struct {
	Class ids.ClassId
	Type  langtypes.Type
}

func (e *MissingInstanceError) Error() string {
	return fmt.Sprintf("no instance of class %d for type %s", e.Class, e.Type)
}

// HasInstance looks for an instance of class covering ty. freshVar mints a
// fresh schematic variable index, used to instantiate candidate instance
// heads so repeated lookups against the same instance don't alias variables
//.
//
// On success it returns the substitution produced by unifying ty against
// the winning instance's (possibly instantiated) head, plus that instance.
func (r *Resolver) HasInstance(ty langtypes.Type, class ids.ClassId, freshVar func() int) (langtypes.Substitution, *program.Instance, error) {
	return r.hasInstance(ty, class, freshVar, 0)
}

const maxResolutionDepth = 64

func (r *Resolver) hasInstance(ty langtypes.Type, class ids.ClassId, freshVar func() int, depth int) (langtypes.Substitution, *program.Instance, error) {
	// A variable that already carries the class as a constraint discharges
	// immediately: spec.md §4.1 "or T is itself a variable whose
	// constraints already include it".
	if v, ok := ty.(langtypes.Var); ok {
		for _, c := range v.Constraints {
			if c == class {
				return langtypes.Substitution{}, nil, nil
			}
		}
	}
	if depth > maxResolutionDepth {
		return nil, nil, fmt.Errorf("instance resolution did not terminate for class %d on %s", class, ty)
	}

	candidates := append([]ids.InstanceId{}, r.byBase[class][ty.Base()]...)
	candidates = append(candidates, r.genericOf[class]...)

	for _, candId := range candidates {
		inst := r.prog.Instance(candId)
		cc := langtypes.NewCloneContext(freshVar)
		head := cc.Clone(inst.Head)

		res, err := langtypes.Unify(head, ty)
		if err != nil {
			continue
		}

		subst := res.Subst
		ok := true
		for _, constraint := range inst.Constraints {
			ct := langtypes.Apply(cc.Clone(constraint.Type), subst)
			depSubst, _, derr := r.hasInstance(ct, constraint.Class, freshVar, depth+1)
			if derr != nil {
				ok = false
				break
			}
			subst = langtypes.Compose(depSubst, subst)
		}
		if ok {
			return subst, inst, nil
		}
	}

	return nil, nil, &MissingInstanceError{Class: class, Type: ty}
}
