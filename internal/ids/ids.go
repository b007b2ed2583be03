// Package ids defines the opaque dense identifiers used as keys throughout
// the IR. Each kind is a distinct type so the compiler catches id-kind
// confusion; values are assigned by per-kind monotonic counters and are
// totally ordered, matching spec.md §3 "Identifiers".
package ids

// FunctionId identifies a function: a named function, a lambda, a variant
// constructor, or a record constructor.
type FunctionId int

// ExprId identifies an expression node in a function body.
type ExprId int

// PatternId identifies a pattern node (in a case arm, a bind, or an
// argument).
type PatternId int

// TypeDefId identifies an ADT or record type definition.
type TypeDefId int

// ClassId identifies a type class declaration.
type ClassId int

// ClassMemberId identifies one member of a class.
type ClassMemberId int

// InstanceId identifies one instance declaration.
type InstanceId int

// TypeId identifies a node in a surface type signature tree, as produced by
// name resolution before synthesis (L4) lowers it to a schematic type.
type TypeId int

// LocationId is an opaque handle into the upstream location table,
// populated by parsing; the core never constructs or formats one, only
// threads it through diagnostics.
type LocationId int

// Counter hands out monotonically increasing ids of one kind.
type Counter[T ~int] struct {
	next T
}

// Next returns the next unused id for this kind.
func (c *Counter[T]) Next() T {
	id := c.next
	c.next++
	return id
}

// Len reports how many ids have been handed out.
func (c *Counter[T]) Len() int {
	return int(c.next)
}
