package program

import (
	"fmt"

	"github.com/jaffa4/siko/internal/ids"
	"github.com/jaffa4/siko/internal/langtypes"
)

// Program is the full IR: every table is insertion-only while name
// resolution and synthesis build it, and iteration is always in id order
//.
type Program struct {
	functionCounter ids.Counter[ids.FunctionId]
	exprCounter     ids.Counter[ids.ExprId]
	patternCounter  ids.Counter[ids.PatternId]
	typeDefCounter  ids.Counter[ids.TypeDefId]
	classCounter    ids.Counter[ids.ClassId]
	memberCounter   ids.Counter[ids.ClassMemberId]
	instanceCounter ids.Counter[ids.InstanceId]
	typeIdCounter   ids.Counter[ids.TypeId]

	Functions map[ids.FunctionId]*Function
	FuncOrder []ids.FunctionId

	Exprs     map[ids.ExprId]Expr
	ExprOrder []ids.ExprId

	Patterns     map[ids.PatternId]Pattern
	PatternOrder []ids.PatternId

	TypeDefs     map[ids.TypeDefId]*TypeDef
	TypeDefOrder []ids.TypeDefId

	Classes     map[ids.ClassId]*Class
	ClassOrder  []ids.ClassId

	ClassMembers map[ids.ClassMemberId]*ClassMember
	MemberOrder  []ids.ClassMemberId

	Instances     map[ids.InstanceId]*Instance
	InstanceOrder []ids.InstanceId

	// ExprTypes / PatternTypes hold the schematic type L5 assigns to every
	// expression and pattern id; populated after inference, read by L6 and
	// the evaluator.
	ExprTypes    map[ids.ExprId]langtypes.Type
	PatternTypes map[ids.PatternId]langtypes.Type

	// Modules maps (module, name) to a FunctionId, mirroring the IR
	// producer contract's module/export structure.
	Modules map[string]map[string]ids.FunctionId
}

// New returns an empty Program ready for name resolution / synthesis to
// populate.
func New() *Program {
	return &Program{
		Functions:    map[ids.FunctionId]*Function{},
		Exprs:        map[ids.ExprId]Expr{},
		Patterns:     map[ids.PatternId]Pattern{},
		TypeDefs:     map[ids.TypeDefId]*TypeDef{},
		Classes:      map[ids.ClassId]*Class{},
		ClassMembers: map[ids.ClassMemberId]*ClassMember{},
		Instances:    map[ids.InstanceId]*Instance{},
		ExprTypes:    map[ids.ExprId]langtypes.Type{},
		PatternTypes: map[ids.PatternId]langtypes.Type{},
		Modules:      map[string]map[string]ids.FunctionId{},
	}
}

// NextExprId / NextPatternId / NextTypeId allocate fresh ids for nodes the
// caller is about to insert; they do not register anything by themselves.
func (p *Program) NextExprId() ids.ExprId       { return p.exprCounter.Next() }
func (p *Program) NextPatternId() ids.PatternId { return p.patternCounter.Next() }
func (p *Program) NextTypeId() ids.TypeId       { return p.typeIdCounter.Next() }

// AddFunction assigns fn a fresh id, registers it, and records it under its
// module/name if named.
func (p *Program) AddFunction(fn *Function) ids.FunctionId {
	id := p.functionCounter.Next()
	fn.Id = id
	p.Functions[id] = fn
	p.FuncOrder = append(p.FuncOrder, id)
	if fn.Module != "" && fn.Name != "" {
		if p.Modules[fn.Module] == nil {
			p.Modules[fn.Module] = map[string]ids.FunctionId{}
		}
		p.Modules[fn.Module][fn.Name] = id
	}
	return id
}

// RegisterExpr keys e under its own already-assigned id. Callers (name
// resolution, or test fixtures building IR by hand) register every
// expression node they create so the "no dangling ids" invariant holds.
func (p *Program) RegisterExpr(e Expr) {
	p.Exprs[e.ExprId()] = e
	p.ExprOrder = append(p.ExprOrder, e.ExprId())
}

// AddPattern registers p's pattern, keyed by its own already-assigned id.
func (p *Program) AddPattern(pat Pattern) {
	p.Patterns[pat.PatternId()] = pat
	p.PatternOrder = append(p.PatternOrder, pat.PatternId())
}

// AddTypeDef assigns td a fresh id and registers it.
func (p *Program) AddTypeDef(td *TypeDef) ids.TypeDefId {
	id := p.typeDefCounter.Next()
	td.Id = id
	p.TypeDefs[id] = td
	p.TypeDefOrder = append(p.TypeDefOrder, id)
	return id
}

// AddClass assigns c a fresh id and registers it.
func (p *Program) AddClass(c *Class) ids.ClassId {
	id := p.classCounter.Next()
	c.Id = id
	p.Classes[id] = c
	p.ClassOrder = append(p.ClassOrder, id)
	return id
}

// AddClassMember assigns m a fresh id and registers it.
func (p *Program) AddClassMember(m *ClassMember) ids.ClassMemberId {
	id := p.memberCounter.Next()
	m.Id = id
	p.ClassMembers[id] = m
	p.MemberOrder = append(p.MemberOrder, id)
	return id
}

// AddInstance assigns inst a fresh id and registers it.
func (p *Program) AddInstance(inst *Instance) ids.InstanceId {
	id := p.instanceCounter.Next()
	inst.Id = id
	p.Instances[id] = inst
	p.InstanceOrder = append(p.InstanceOrder, id)
	return id
}

// Function/Pattern/TypeDef/Class/ClassMember/Instance look up an id,
// panicking on a dangling id: spec.md §3 invariants forbid them in
// well-formed IR, so a miss here is a structural bug, not a user error.

func (p *Program) Function(id ids.FunctionId) *Function {
	f, ok := p.Functions[id]
	if !ok {
		panic(fmt.Sprintf("dangling FunctionId %d", id))
	}
	return f
}

func (p *Program) Expr(id ids.ExprId) Expr {
	e, ok := p.Exprs[id]
	if !ok {
		panic(fmt.Sprintf("dangling ExprId %d", id))
	}
	return e
}

func (p *Program) Pattern(id ids.PatternId) Pattern {
	pat, ok := p.Patterns[id]
	if !ok {
		panic(fmt.Sprintf("dangling PatternId %d", id))
	}
	return pat
}

func (p *Program) TypeDef(id ids.TypeDefId) *TypeDef {
	td, ok := p.TypeDefs[id]
	if !ok {
		panic(fmt.Sprintf("dangling TypeDefId %d", id))
	}
	return td
}

func (p *Program) Class(id ids.ClassId) *Class {
	c, ok := p.Classes[id]
	if !ok {
		panic(fmt.Sprintf("dangling ClassId %d", id))
	}
	return c
}

func (p *Program) ClassMember(id ids.ClassMemberId) *ClassMember {
	m, ok := p.ClassMembers[id]
	if !ok {
		panic(fmt.Sprintf("dangling ClassMemberId %d", id))
	}
	return m
}

func (p *Program) Instance(id ids.InstanceId) *Instance {
	inst, ok := p.Instances[id]
	if !ok {
		panic(fmt.Sprintf("dangling InstanceId %d", id))
	}
	return inst
}

// LookupFunction resolves a (module, name) pair, as used to locate the
// entry point.
func (p *Program) LookupFunction(module, name string) (ids.FunctionId, bool) {
	m, ok := p.Modules[module]
	if !ok {
		return 0, false
	}
	id, ok := m[name]
	return id, ok
}

// ExprType / PatternType fetch the schematic type L5 assigned; they panic
// if called before inference has run, which is a programmer error (calling
// evaluation before type checking completed).
func (p *Program) ExprType(id ids.ExprId) langtypes.Type {
	t, ok := p.ExprTypes[id]
	if !ok {
		panic(fmt.Sprintf("expr %d has no inferred type", id))
	}
	return t
}

func (p *Program) PatternType(id ids.PatternId) langtypes.Type {
	t, ok := p.PatternTypes[id]
	if !ok {
		panic(fmt.Sprintf("pattern %d has no inferred type", id))
	}
	return t
}
