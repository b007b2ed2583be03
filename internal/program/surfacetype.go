package program

import "github.com/jaffa4/siko/internal/ids"

// SurfaceTypeKind enumerates the surface-syntax type tree node kinds that
// name resolution hands to synthesis (L4); spec.md §4.3.
type SurfaceTypeKind int

const (
	SurfaceTuple SurfaceTypeKind = iota
	SurfaceFunction
	SurfaceNamed
	SurfaceTypeArg
	SurfaceWildcard
)

// SurfaceType is a node in a user-written type signature, produced
// upstream by name resolution (out of core scope) and consumed by L4.
type SurfaceType struct {
	Id       ids.TypeId
	Kind     SurfaceTypeKind
	Children []SurfaceType // Tuple: elements; Function: [From, To]; Named: type args
	Name     string         // TypeArg: the variable name (e.g. "a"); Named: the type name
	Def      ids.TypeDefId  // Named: resolved type definition
	// Constraints declared at signature level for a TypeArg node, e.g. the
	// `Show` in `a: Show` (spec.md §4.3 "collect constraints declared at
	// signature level and attach them to the matching fixed variables").
	Constraints []ids.ClassId
}
