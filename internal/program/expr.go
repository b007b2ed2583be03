// Package program holds the intermediate representation the type checker
// and evaluator operate on: program tables, ADTs, records, classes,
// instances, expressions and patterns.
package program

import "github.com/jaffa4/siko/internal/ids"

// Expr is any expression node. Every concrete type below corresponds to a
// row of the obligations table in spec.md §4.4.
type Expr interface {
	ExprId() ids.ExprId
	Location() ids.LocationId
}

type exprBase struct {
	Id  ids.ExprId
	Loc ids.LocationId
}

func (e exprBase) ExprId() ids.ExprId      { return e.Id }
func (e exprBase) Location() ids.LocationId { return e.Loc }

type IntegerLiteral struct {
	exprBase
	Value int64
}

type FloatLiteral struct {
	exprBase
	Value float64
}

type StringLiteral struct {
	exprBase
	Value string
}

type BoolLiteral struct {
	exprBase
	Value bool
}

// ArgRef refers to a function argument by position. Captured refers to a
// lambda's closed-over variable (not offset by the implicit-arg count);
// non-captured refs are offset per spec.md §4.4.
type ArgRef struct {
	exprBase
	Function  ids.FunctionId
	Index     int
	Captured  bool
}

// StaticFunctionCall calls a statically-known function.
type StaticFunctionCall struct {
	exprBase
	Function ids.FunctionId
	Args     []Expr
}

// ClassFunctionCall calls a class member; the concrete instance is selected
// at evaluation time via the substitution context (spec.md §4.6 "Class-member
// dispatch").
type ClassFunctionCall struct {
	exprBase
	Member ids.ClassMemberId
	Args   []Expr
}

// DynamicFunctionCall calls a first-class function value.
type DynamicFunctionCall struct {
	exprBase
	Callee Expr
	Args   []Expr
}

type If struct {
	exprBase
	Cond Expr
	Then Expr
	Else Expr
}

type TupleExpr struct {
	exprBase
	Items []Expr
}

type ListExpr struct {
	exprBase
	Items []Expr
}

type TupleFieldAccess struct {
	exprBase
	Index    int
	Receiver Expr
}

// FieldAccess accesses a record field by name; Candidates lists every
// record TypeDefId declaring that field name, resolved to exactly one
// during inference.
type FieldAccess struct {
	exprBase
	FieldName  string
	Candidates []ids.TypeDefId
	Receiver   Expr
}

// RecordInitItem is one `field: value` pair of a record literal.
type RecordInitItem struct {
	Index int
	Value Expr
}

type RecordInitialization struct {
	exprBase
	TypeDef ids.TypeDefId
	Items   []RecordInitItem
}

// RecordUpdateOption is one candidate record's set of field updates; the
// candidate whose record id matches the receiver's resolved head is
// selected during inference.
type RecordUpdateOption struct {
	TypeDef ids.TypeDefId
	Items   []RecordInitItem
}

type RecordUpdate struct {
	exprBase
	Receiver Expr
	Options  []RecordUpdateOption
}

type Do struct {
	exprBase
	Exprs []Expr
}

type Bind struct {
	exprBase
	Pattern Pattern
	Rhs     Expr
}

// ExprValue reads the value a pattern bound (e.g. referencing a `let`
// binding later in a `Do` block).
type ExprValue struct {
	exprBase
	Name    string
	Pattern ids.PatternId
}

type Case struct {
	Pattern Pattern
	Body    Expr
}

type CaseOf struct {
	exprBase
	Scrutinee Expr
	Cases     []Case
}

// Formatter is a string-interpolation expression: fmt has exactly
// strings.Count(fmt, "{}") placeholders, one per Args element.
type Formatter struct {
	exprBase
	Format string
	Args   []Expr
}
