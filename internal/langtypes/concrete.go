package langtypes

import (
	"strings"

	"github.com/jaffa4/siko/internal/ids"
)

// Concrete is a fully resolved type carrying no variables; values at
// runtime always carry one.
type Concrete interface {
	String() string
	Base() BaseType
}

// CTuple is a concrete tuple type.
type CTuple struct {
	Children []Concrete
}

func (t CTuple) Base() BaseType { return BaseType{Kind: BaseTupleKind} }
func (t CTuple) String() string {
	parts := make([]string, len(t.Children))
	for i, c := range t.Children {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// CFunction is a concrete curried function type.
type CFunction struct {
	From Concrete
	To   Concrete
}

func (t CFunction) Base() BaseType { return BaseType{Kind: BaseFunctionKind} }
func (t CFunction) String() string { return t.From.String() + " -> " + t.To.String() }

// CNamed is a concrete application of a named ADT/record/ground type.
type CNamed struct {
	Name string
	Def  ids.TypeDefId
	Args []Concrete
}

func (t CNamed) Base() BaseType {
	return BaseType{Kind: BaseNamedKind, Def: t.Def, Name: t.Name}
}
func (t CNamed) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return t.Name + "<" + strings.Join(parts, ", ") + ">"
}

// UncurryConcrete mirrors Uncurry for concrete function types; the
// evaluator uses it to split a constructor's or extern's instantiated type
// into its argument types and the result type it must produce.
func UncurryConcrete(t Concrete, n int) (args []Concrete, result Concrete) {
	for n > 0 {
		fn, ok := t.(CFunction)
		if !ok {
			break
		}
		args = append(args, fn.From)
		t = fn.To
		n--
	}
	return args, t
}

// CurryConcrete rebuilds a curried concrete function type.
func CurryConcrete(items []Concrete, result Concrete) Concrete {
	t := result
	for i := len(items) - 1; i >= 0; i-- {
		t = CFunction{From: items[i], To: t}
	}
	return t
}

// ToConcrete instantiates a schematic type under a substitution context
// (L6), replacing every variable with the concrete type it is bound to.
// It is an error for a variable to appear free with no binding: by the time
// ToConcrete runs, type checking has guaranteed every variable relevant to
// the call site is bound.
func ToConcrete(t Type, ctx SubstContext) (Concrete, error) {
	switch ty := t.(type) {
	case Var:
		c, ok := ctx[ty.Index]
		if !ok {
			return nil, &UnboundVariableError{Index: ty.Index}
		}
		return c, nil
	case FixedVar:
		c, ok := ctx[ty.Index]
		if !ok {
			return nil, &UnboundVariableError{Index: ty.Index}
		}
		return c, nil
	case Tuple:
		children := make([]Concrete, len(ty.Children))
		for i, c := range ty.Children {
			cc, err := ToConcrete(c, ctx)
			if err != nil {
				return nil, err
			}
			children[i] = cc
		}
		return CTuple{Children: children}, nil
	case Function:
		from, err := ToConcrete(ty.From, ctx)
		if err != nil {
			return nil, err
		}
		to, err := ToConcrete(ty.To, ctx)
		if err != nil {
			return nil, err
		}
		return CFunction{From: from, To: to}, nil
	case Named:
		args := make([]Concrete, len(ty.Args))
		for i, a := range ty.Args {
			ca, err := ToConcrete(a, ctx)
			if err != nil {
				return nil, err
			}
			args[i] = ca
		}
		return CNamed{Name: ty.Name, Def: ty.Def, Args: args}, nil
	default:
		return nil, &UnboundVariableError{Index: -1}
	}
}

// FromConcrete lifts a concrete type back into the schematic universe with
// no variables, for use where an API expects a Type (e.g. the evaluator's
// MissingInstanceError for an unresolved instance selector).
func FromConcrete(c Concrete) Type {
	switch ct := c.(type) {
	case CTuple:
		children := make([]Type, len(ct.Children))
		for i, c := range ct.Children {
			children[i] = FromConcrete(c)
		}
		return Tuple{Children: children}
	case CFunction:
		return Function{From: FromConcrete(ct.From), To: FromConcrete(ct.To)}
	case CNamed:
		args := make([]Type, len(ct.Args))
		for i, a := range ct.Args {
			args[i] = FromConcrete(a)
		}
		return Named{Name: ct.Name, Def: ct.Def, Args: args}
	default:
		return nil
	}
}

// UnboundVariableError indicates ToConcrete hit a variable with no binding
// in the substitution context; this should be unreachable after a sound
// type check.
type UnboundVariableError struct {
	Index int
}

func (e *UnboundVariableError) Error() string {
	return "internal error: unbound type variable in substitution context"
}
