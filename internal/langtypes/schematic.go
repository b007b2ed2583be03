// Package langtypes implements the schematic and concrete type
// representations and the
// unifier. Schematic types are the object of inference;
// concrete types carry no variables and are what values carry at runtime.
package langtypes

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jaffa4/siko/internal/config"
	"github.com/jaffa4/siko/internal/ids"
)

// Type is a schematic type: possibly containing free or fixed variables
// constrained by type classes.
type Type interface {
	String() string
	// Base returns the outer-constructor key used by the instance resolver
	//.
	Base() BaseType
	// FreeVars returns the distinct variable indices appearing in this type,
	// in first-occurrence order.
	FreeVars() []int
}

// BaseKind enumerates the outer constructors a type node can have.
type BaseKind int

const (
	BaseVarKind BaseKind = iota
	BaseTupleKind
	BaseFunctionKind
	BaseNamedKind
)

// BaseType is the fast lookup key for instances: everything but a type's own
// arguments.
type BaseType struct {
	Kind BaseKind
	Def  ids.TypeDefId // meaningful only when Kind == BaseNamedKind
	Name string        // meaningful only when Kind == BaseNamedKind, for display
}

func (b BaseType) String() string {
	switch b.Kind {
	case BaseVarKind:
		return "<var>"
	case BaseTupleKind:
		return "<tuple>"
	case BaseFunctionKind:
		return "<function>"
	case BaseNamedKind:
		return b.Name
	default:
		return "<unknown>"
	}
}

// Var is a free type variable carrying a set of class constraints.
type Var struct {
	Index       int
	Constraints []ids.ClassId
}

func (v Var) Base() BaseType { return BaseType{Kind: BaseVarKind} }
func (v Var) FreeVars() []int {
	return []int{v.Index}
}
func (v Var) String() string {
	name := "t" + strconv.Itoa(v.Index)
	if config.IsTestMode {
		name = "t?"
	}
	if len(v.Constraints) == 0 {
		return name
	}
	return name + constraintSuffix(v.Constraints)
}

// FixedVar is a rigid variable introduced by a user signature (e.g. the `a`
// in `id :: a -> a`); it unifies only with itself or a var whose constraints
// are a subset of its own.
type FixedVar struct {
	Index       int
	Name        string
	Constraints []ids.ClassId
}

func (v FixedVar) Base() BaseType { return BaseType{Kind: BaseVarKind} }
func (v FixedVar) FreeVars() []int {
	return []int{v.Index}
}
func (v FixedVar) String() string {
	if len(v.Constraints) == 0 {
		return v.Name
	}
	return v.Name + constraintSuffix(v.Constraints)
}

func constraintSuffix(cs []ids.ClassId) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = strconv.Itoa(int(c))
	}
	return ": " + strings.Join(parts, ", ")
}

// Tuple is a fixed-arity product type.
type Tuple struct {
	Children []Type
}

func (t Tuple) Base() BaseType { return BaseType{Kind: BaseTupleKind} }
func (t Tuple) FreeVars() []int {
	return mergeFreeVars(t.Children)
}
func (t Tuple) String() string {
	parts := make([]string, len(t.Children))
	for i, c := range t.Children {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Function is a curried function type `From -> To`.
type Function struct {
	From Type
	To   Type
}

func (f Function) Base() BaseType { return BaseType{Kind: BaseFunctionKind} }
func (f Function) FreeVars() []int {
	return mergeFreeVars([]Type{f.From, f.To})
}
func (f Function) String() string {
	from := f.From.String()
	if _, ok := f.From.(Function); ok {
		from = "(" + from + ")"
	}
	return fmt.Sprintf("%s -> %s", from, f.To.String())
}

// Curry builds a curried Function chain item1 -> item2 -> ... -> result.
func Curry(items []Type, result Type) Type {
	t := result
	for i := len(items) - 1; i >= 0; i-- {
		t = Function{From: items[i], To: t}
	}
	return t
}

// Uncurry splits a curried Function chain into its argument types and final
// result, stopping after at most max segments (max < 0 means unlimited).
func Uncurry(t Type, max int) (args []Type, result Type) {
	for max != 0 {
		fn, ok := t.(Function)
		if !ok {
			break
		}
		args = append(args, fn.From)
		t = fn.To
		if max > 0 {
			max--
		}
	}
	return args, t
}

// Named is a user-defined ADT/record type applied to arguments, or a
// zero-argument ground type such as Int/Bool/String/Float.
type Named struct {
	Name string
	Def  ids.TypeDefId
	Args []Type
}

func (n Named) Base() BaseType {
	return BaseType{Kind: BaseNamedKind, Def: n.Def, Name: n.Name}
}
func (n Named) FreeVars() []int {
	return mergeFreeVars(n.Args)
}
func (n Named) String() string {
	if len(n.Args) == 0 {
		return n.Name
	}
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.String()
	}
	return n.Name + "<" + strings.Join(parts, ", ") + ">"
}

func mergeFreeVars(ts []Type) []int {
	seen := map[int]bool{}
	var out []int
	for _, t := range ts {
		for _, v := range t.FreeVars() {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// SortedUniqueClasses returns cs deduplicated and sorted, as required when
// merging two variables' constraint sets during unification.
func SortedUniqueClasses(cs []ids.ClassId) []ids.ClassId {
	seen := map[ids.ClassId]bool{}
	var out []ids.ClassId
	for _, c := range cs {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
