package program

import "github.com/jaffa4/siko/internal/ids"

// Pattern is any pattern node.
type Pattern interface {
	PatternId() ids.PatternId
	Location() ids.LocationId
}

type patternBase struct {
	Id  ids.PatternId
	Loc ids.LocationId
}

func (p patternBase) PatternId() ids.PatternId { return p.Id }
func (p patternBase) Location() ids.LocationId { return p.Loc }

// Binding introduces name into the environment with the pattern's type.
type Binding struct {
	patternBase
	Name string
}

type Wildcard struct {
	patternBase
}

type IntegerPattern struct {
	patternBase
	Value int64
}

type FloatPattern struct {
	patternBase
	Value float64
}

type StringPattern struct {
	patternBase
	Value string
}

type BoolPattern struct {
	patternBase
	Value bool
}

type TuplePattern struct {
	patternBase
	Items []Pattern
}

// RecordPattern matches a record's fields positionally against items; arity
// must equal the record's declared field count.
type RecordPattern struct {
	patternBase
	TypeDef ids.TypeDefId
	Items   []Pattern
}

// VariantPattern matches one ADT variant; arity must equal that variant's
// declared item count.
type VariantPattern struct {
	patternBase
	TypeDef      ids.TypeDefId
	VariantIndex int
	Items        []Pattern
}

// GuardedPattern succeeds only if Inner matches and Guard evaluates true.
type GuardedPattern struct {
	patternBase
	Inner Pattern
	Guard Expr
}

// TypedPattern additionally unifies Inner's type against a user-supplied
// surface type signature.
type TypedPattern struct {
	patternBase
	Inner     Pattern
	Signature SurfaceType
}
