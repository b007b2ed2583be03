package program

import (
	"github.com/jaffa4/siko/internal/ids"
	"github.com/jaffa4/siko/internal/langtypes"
)

// FunctionKind distinguishes the four shapes of callable the evaluator's
// `execute` dispatches on.
type FunctionKind int

const (
	KindNamedFunction FunctionKind = iota
	KindLambda
	KindVariantConstructor
	KindRecordConstructor
)

// Function is one entry of the function table: a named top-level function
// (with or without a body), a lambda, or a synthesized constructor.
type Function struct {
	Id   ids.FunctionId
	Kind FunctionKind

	Module string // e.g. "Main", "Int" — used for extern lookup and entry-point resolution
	Name   string

	// ExplicitArity is the number of arguments a caller supplies;
	// ImplicitArgCount is the number of closed-over values prepended ahead
	// of them.
	ExplicitArity    int
	ImplicitArgCount int

	HasBody bool
	Body    Expr // nil when HasBody is false (an extern) or Kind is a constructor

	SchematicType langtypes.Type // curried function type, rebuilt after each inference pass (L4/L5)

	// Constructor-only fields.
	TypeDef      ids.TypeDefId
	VariantIndex int

	Loc ids.LocationId
}

// IsExtern reports whether this is a NamedFunction with no body, whose
// implementation must come from the extern registry (L8).
func (f *Function) IsExtern() bool {
	return f.Kind == KindNamedFunction && !f.HasBody
}
