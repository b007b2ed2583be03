package program

import (
	"github.com/jaffa4/siko/internal/ids"
	"github.com/jaffa4/siko/internal/langtypes"
)

// Class is a type class declaration.
type Class struct {
	Id           ids.ClassId
	Name         string
	ArgVar       int // the class's single type-argument variable index
	MemberOrder  []ids.ClassMemberId
	MemberByName map[string]ids.ClassMemberId
	Superclasses []ids.ClassId // constraints over the class's own argument
}

// ClassMember is one class-declared operation. SchematicType is the
// member's own schematic type (which mentions ClassArgVar); recording the
// class argument variable separately from the rest of the type is what
// lets the instance selector be computed independently of the remainder of
// the substitution (design notes, "Class-member schematic type shape").
type ClassMember struct {
	Id            ids.ClassMemberId
	Class         ids.ClassId
	Name          string
	SchematicType langtypes.Type
	ClassArgVar   int

	HasDefault      bool
	DefaultFunction ids.FunctionId
}

// Instance is one `instance Class Head where ...` declaration.
type Instance struct {
	Id      ids.InstanceId
	Class   ids.ClassId
	Head    langtypes.Type
	Members map[ids.ClassMemberId]ids.FunctionId

	// Constraints are the instance's own dependency constraints, e.g.
	// `instance Eq a => Eq (List a)` records a constraint on `a`.
	Constraints []langtypes.DeferredConstraint

	Loc ids.LocationId
}

// Implementation returns the FunctionId implementing member for this
// instance, falling back to the member's default. ok is false if neither is
// available (spec.md §4.6 step 4: "if both absent, it is a hard evaluator
// error").
func (i *Instance) Implementation(member *ClassMember) (ids.FunctionId, bool) {
	if fid, ok := i.Members[member.Id]; ok {
		return fid, true
	}
	if member.HasDefault {
		return member.DefaultFunction, true
	}
	return 0, false
}
