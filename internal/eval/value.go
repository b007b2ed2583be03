// Package eval implements the tree-walking evaluator:
// environments, runtime values, call/execute/eval_expr, pattern matching,
// and class-member dispatch.
package eval

import (
	"github.com/jaffa4/siko/internal/ids"
	"github.com/jaffa4/siko/internal/langtypes"
)

// Value is any runtime value; every concrete value carries the concrete
// type the checker assigned the expression that produced it.
type Value interface {
	ConcreteType() langtypes.Concrete
}

type Int struct {
	V int64
	T langtypes.Concrete
}

func (v Int) ConcreteType() langtypes.Concrete { return v.T }

type Float struct {
	V float64
	T langtypes.Concrete
}

func (v Float) ConcreteType() langtypes.Concrete { return v.T }

type Bool struct {
	V bool
	T langtypes.Concrete
}

func (v Bool) ConcreteType() langtypes.Concrete { return v.T }

type String struct {
	V string
	T langtypes.Concrete
}

func (v String) ConcreteType() langtypes.Concrete { return v.T }

type Tuple struct {
	Items []Value
	T     langtypes.Concrete
}

func (v Tuple) ConcreteType() langtypes.Concrete { return v.T }

type List struct {
	Items []Value
	T     langtypes.Concrete
}

func (v List) ConcreteType() langtypes.Concrete { return v.T }

// Record is a value of a record type def, fields stored in declaration
// order.
type Record struct {
	TypeDef ids.TypeDefId
	Fields  []Value
	T       langtypes.Concrete
}

func (v Record) ConcreteType() langtypes.Concrete { return v.T }

// Variant is a value of one ADT variant, items in declaration order.
type Variant struct {
	TypeDef      ids.TypeDefId
	VariantIndex int
	Items        []Value
	T            langtypes.Concrete
}

func (v Variant) ConcreteType() langtypes.Concrete { return v.T }

// Callable is the sole Callable shape this module implements: it always
// carries a SubstContext (spec.md §9 Open Questions — "the second [shape]
// is authoritative ... implementations should include sub_context").
// CollectedArgs accumulates arguments across partial applications; T is
// the concrete type of the callable *after* CollectedArgs have been
// applied, i.e. the remaining curried chain.
type Callable struct {
	Function      ids.FunctionId
	CollectedArgs []Value
	SubstCtx      langtypes.SubstContext
	T             langtypes.Concrete
}

func (v *Callable) ConcreteType() langtypes.Concrete { return v.T }

// SameShape is structural equality over runtime values, independent of the
// Eq class (used where an extern needs a plain equality check on keys, e.g.
// Map.insert's linear scan, without re-entering class dispatch).
func SameShape(a, b Value) bool {
	switch av := a.(type) {
	case Int:
		bv, ok := b.(Int)
		return ok && av.V == bv.V
	case Float:
		bv, ok := b.(Float)
		return ok && av.V == bv.V
	case Bool:
		bv, ok := b.(Bool)
		return ok && av.V == bv.V
	case String:
		bv, ok := b.(String)
		return ok && av.V == bv.V
	case Tuple:
		bv, ok := b.(Tuple)
		return ok && sameShapeSlice(av.Items, bv.Items)
	case List:
		bv, ok := b.(List)
		return ok && sameShapeSlice(av.Items, bv.Items)
	case Record:
		bv, ok := b.(Record)
		return ok && av.TypeDef == bv.TypeDef && sameShapeSlice(av.Fields, bv.Fields)
	case Variant:
		bv, ok := b.(Variant)
		return ok && av.TypeDef == bv.TypeDef && av.VariantIndex == bv.VariantIndex && sameShapeSlice(av.Items, bv.Items)
	default:
		return false
	}
}

func sameShapeSlice(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !SameShape(a[i], b[i]) {
			return false
		}
	}
	return true
}
