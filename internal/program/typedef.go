package program

import (
	"github.com/jaffa4/siko/internal/ids"
	"github.com/jaffa4/siko/internal/langtypes"
)

// TypeDefKind distinguishes an ADT from a record.
type TypeDefKind int

const (
	ADTKind TypeDefKind = iota
	RecordKind
)

// Variant is one ADT case: a name, its ordered item surface signatures, and
// the FunctionId synthesis (L4) attaches as its constructor.
type Variant struct {
	Name        string
	ItemSigs    []SurfaceType
	Items       []langtypes.Type // schematic item types, filled in by L4
	Constructor ids.FunctionId
}

// Field is one record field: a name, its surface signature, and the
// schematic type L4 builds for it.
type Field struct {
	Name string
	Sig  SurfaceType
	Type langtypes.Type
}

// TypeDef is an ADT or record declaration (spec.md §3 "ADT / record /
// class / instance").
type TypeDef struct {
	Id       ids.TypeDefId
	Name     string
	Kind     TypeDefKind
	TypeArgs     []int    // variable indices, in declaration order
	TypeArgNames []string // parallel to TypeArgs: the surface names ("a", "b", ...)

	Variants []Variant // populated when Kind == ADTKind

	Fields      []Field // populated when Kind == RecordKind, declaration order
	Constructor ids.FunctionId // populated when Kind == RecordKind
}

// FieldIndex returns the declaration index of name, or -1 if this type def
// has no such field (only meaningful for records).
func (t *TypeDef) FieldIndex(name string) int {
	for i, f := range t.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}
