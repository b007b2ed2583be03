package check

import (
	"fmt"

	"github.com/jaffa4/siko/internal/ids"
	"github.com/jaffa4/siko/internal/langtypes"
)

// TypeMismatchError is spec.md §7's `TypeMismatch(expected, found)`.
type TypeMismatchError struct {
	Loc      ids.LocationId
	Expected langtypes.Type
	Found    langtypes.Type
	Cause    error
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: expected %s, found %s", e.Expected, e.Found)
}
func (e *TypeMismatchError) Unwrap() error { return e.Cause }

// FunctionArgumentMismatchError is raised on an arity mismatch at a call
// site.
type FunctionArgumentMismatchError struct {
	Loc      ids.LocationId
	Function ids.FunctionId
	Given    int
}

func (e *FunctionArgumentMismatchError) Error() string {
	return fmt.Sprintf("function %d called with %d arguments", e.Function, e.Given)
}

// AmbiguousFieldAccessError is raised when more than one candidate record
// matches a FieldAccess's receiver.
type AmbiguousFieldAccessError struct {
	Loc        ids.LocationId
	FieldName  string
	Candidates []ids.TypeDefId
}

func (e *AmbiguousFieldAccessError) Error() string {
	return fmt.Sprintf("ambiguous field access %q: matches %d candidate records", e.FieldName, len(e.Candidates))
}

// NoMatchingFieldError is raised when zero candidate records match.
type NoMatchingFieldError struct {
	Loc       ids.LocationId
	FieldName string
}

func (e *NoMatchingFieldError) Error() string {
	return fmt.Sprintf("no record has field %q matching receiver type", e.FieldName)
}

// InvalidRecordPatternError reports an arity mismatch in a record pattern.
type InvalidRecordPatternError struct {
	Loc     ids.LocationId
	TypeDef ids.TypeDefId
}

func (e *InvalidRecordPatternError) Error() string {
	return fmt.Sprintf("invalid record pattern for type %d: field count mismatch", e.TypeDef)
}

// InvalidVariantPatternError reports an arity mismatch in a variant
// pattern.
type InvalidVariantPatternError struct {
	Loc          ids.LocationId
	TypeDef      ids.TypeDefId
	VariantIndex int
}

func (e *InvalidVariantPatternError) Error() string {
	return fmt.Sprintf("invalid variant pattern for type %d variant %d: item count mismatch", e.TypeDef, e.VariantIndex)
}

// InvalidFormatStringError reports a Formatter whose placeholder count
// doesn't match its argument count.
type InvalidFormatStringError struct {
	Loc        ids.LocationId
	Format     string
	Want, Have int
}

func (e *InvalidFormatStringError) Error() string {
	return fmt.Sprintf("format string %q has %d placeholders, got %d arguments", e.Format, e.Want, e.Have)
}

// TypeAnnotationNeededError is raised when a var couldn't be resolved and
// no annotation disambiguates it.
type TypeAnnotationNeededError struct {
	Loc ids.LocationId
}

func (e *TypeAnnotationNeededError) Error() string { return "type annotation needed" }

// RecursiveTypeError reports a function whose schematic type refers to
// itself through its own substitution chain.
type RecursiveTypeError struct {
	Function ids.FunctionId
}

func (e *RecursiveTypeError) Error() string {
	return fmt.Sprintf("function %d has a recursive (infinite) type", e.Function)
}

// NotAClassMemberError is raised when an instance implements a name the
// class doesn't declare.
type NotAClassMemberError struct {
	Class ids.ClassId
	Name  string
}

func (e *NotAClassMemberError) Error() string {
	return fmt.Sprintf("%q is not a member of class %d", e.Name, e.Class)
}

// MissingClassMemberInInstanceError is raised when an instance omits a
// member with no default implementation.
type MissingClassMemberInInstanceError struct {
	Instance ids.InstanceId
	Member   ids.ClassMemberId
}

func (e *MissingClassMemberInInstanceError) Error() string {
	return fmt.Sprintf("instance %d is missing member %d with no default", e.Instance, e.Member)
}

// ClassMemberImplementedMultipleTimesError is raised when an instance
// implements the same member twice.
type ClassMemberImplementedMultipleTimesError struct {
	Instance ids.InstanceId
	Member   ids.ClassMemberId
}

func (e *ClassMemberImplementedMultipleTimesError) Error() string {
	return fmt.Sprintf("instance %d implements member %d more than once", e.Instance, e.Member)
}
