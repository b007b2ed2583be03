package langtypes

import "github.com/jaffa4/siko/internal/ids"

// VarAllocator hands out fresh schematic type-variable indices from one
// global counter, shared across synthesis (L4), inference (L5), and
// instantiation of out-of-group functions and instances, so no two
// unrelated variables ever collide.
type VarAllocator struct {
	next int
}

// NewAllocatorAfter returns a VarAllocator whose first Fresh() call returns
// startAt, for resuming allocation past variable indices a producer already
// used when it built a Program's initial schematic types.
func NewAllocatorAfter(startAt int) *VarAllocator {
	return &VarAllocator{next: startAt}
}

// Fresh returns the next unused variable index.
func (a *VarAllocator) Fresh() int {
	idx := a.next
	a.next++
	return idx
}

// FreshVar allocates a new free Var with the given constraints.
func (a *VarAllocator) FreshVar(constraints ...ids.ClassId) Var {
	return Var{Index: a.Fresh(), Constraints: constraints}
}

// FreshFixedVar allocates a new FixedVar for a named surface type argument.
func (a *VarAllocator) FreshFixedVar(name string, constraints ...ids.ClassId) FixedVar {
	return FixedVar{Index: a.Fresh(), Name: name, Constraints: constraints}
}
