package check

import (
	"strings"

	"github.com/jaffa4/siko/internal/ids"
	"github.com/jaffa4/siko/internal/langtypes"
	"github.com/jaffa4/siko/internal/program"
	"github.com/jaffa4/siko/internal/resolve"
	"github.com/jaffa4/siko/internal/synth"
)

// Builtins names the ground TypeDefIds the typer needs to construct literal
// and container types; the entry point (siko.Run) looks them up by name in
// the program before checking starts.
type Builtins struct {
	Int, Float, Bool, String, List ids.TypeDefId
}

// Checker runs the expression/pattern typer (L5) over a whole program.
type Checker struct {
	Prog     *program.Program
	Alloc    *langtypes.VarAllocator
	Resolver *resolve.Resolver
	Synth    *synth.Synthesizer
	Builtins Builtins
}

// New returns a Checker ready to type every function in prog.
func New(prog *program.Program, alloc *langtypes.VarAllocator, resolver *resolve.Resolver, s *synth.Synthesizer, builtins Builtins) *Checker {
	return &Checker{Prog: prog, Alloc: alloc, Resolver: resolver, Synth: s, Builtins: builtins}
}

// CheckAll groups the program's functions into dependency groups and types
// each one in reverse topological order, accumulating (not stopping on)
// type errors within a group — each failure produces a diagnostic and
// inference continues.
func (c *Checker) CheckAll() []error {
	var all []error
	for _, g := range BuildGroups(c.Prog) {
		all = append(all, c.checkGroup(g)...)
	}
	return all
}

type inferCtx struct {
	prog     *program.Program
	alloc    *langtypes.VarAllocator
	resolver *resolve.Resolver
	synth    *synth.Synthesizer
	builtins Builtins

	inGroup map[ids.FunctionId]bool

	subst    langtypes.Substitution
	deferred []langtypes.DeferredConstraint
	errors   []error

	exprTypes    map[ids.ExprId]langtypes.Type
	patternTypes map[ids.PatternId]langtypes.Type
}

func (c *Checker) checkGroup(g Group) []error {
	ic := &inferCtx{
		prog: c.Prog, alloc: c.Alloc, resolver: c.Resolver, synth: c.Synth, builtins: c.Builtins,
		inGroup:      map[ids.FunctionId]bool{},
		subst:        langtypes.Substitution{},
		exprTypes:    map[ids.ExprId]langtypes.Type{},
		patternTypes: map[ids.PatternId]langtypes.Type{},
	}
	for _, fid := range g.Functions {
		ic.inGroup[fid] = true
	}

	for _, fid := range g.Functions {
		fn := c.Prog.Function(fid)
		if fn.HasBody {
			ic.typeFunctionBody(fn)
		}
	}

	for _, d := range ic.deferred {
		t := langtypes.Apply(d.Type, ic.subst)
		if _, _, err := c.Resolver.HasInstance(t, d.Class, c.Alloc.Fresh); err != nil {
			ic.errors = append(ic.errors, err)
		}
	}

	for _, fid := range g.Functions {
		fn := c.Prog.Function(fid)
		if !fn.HasBody {
			continue
		}
		final, cyc := langtypes.ApplyDetectCycle(fn.SchematicType, ic.subst)
		if cyc {
			ic.errors = append(ic.errors, &RecursiveTypeError{Function: fid})
			continue
		}
		fn.SchematicType = final
	}

	for id, t := range ic.exprTypes {
		c.Prog.ExprTypes[id] = langtypes.Apply(t, ic.subst)
	}
	for id, t := range ic.patternTypes {
		c.Prog.PatternTypes[id] = langtypes.Apply(t, ic.subst)
	}

	return ic.errors
}

func (ic *inferCtx) unify(loc ids.LocationId, expected, found langtypes.Type) langtypes.Type {
	e := langtypes.Apply(expected, ic.subst)
	f := langtypes.Apply(found, ic.subst)
	res, err := langtypes.Unify(e, f)
	if err != nil {
		ic.errors = append(ic.errors, &TypeMismatchError{Loc: loc, Expected: e, Found: f, Cause: err})
		return e
	}
	ic.subst = langtypes.Compose(res.Subst, ic.subst)
	ic.deferred = append(ic.deferred, res.Deferred...)
	return langtypes.Apply(e, ic.subst)
}

func (ic *inferCtx) namedType(def ids.TypeDefId, name string) langtypes.Type {
	return langtypes.Named{Name: name, Def: def}
}

func (ic *inferCtx) intType() langtypes.Type    { return ic.namedType(ic.builtins.Int, "Int") }
func (ic *inferCtx) floatType() langtypes.Type  { return ic.namedType(ic.builtins.Float, "Float") }
func (ic *inferCtx) boolType() langtypes.Type   { return ic.namedType(ic.builtins.Bool, "Bool") }
func (ic *inferCtx) stringType() langtypes.Type { return ic.namedType(ic.builtins.String, "String") }
func (ic *inferCtx) listType(elem langtypes.Type) langtypes.Type {
	return langtypes.Named{Name: "List", Def: ic.builtins.List, Args: []langtypes.Type{elem}}
}

// freshConstructorInstance clones a constructor function's schematic type
// (item1 -> ... -> itemArity -> Named(T, args)) with entirely fresh
// variables and splits it back into its item types and result type. Used
// by RecordInitialization/RecordUpdate/FieldAccess/RecordPattern/
// VariantPattern so every construction/matching site gets its own
// instantiation of the type's parameters.
func (ic *inferCtx) freshConstructorInstance(fid ids.FunctionId, arity int) ([]langtypes.Type, langtypes.Type) {
	fn := ic.prog.Function(fid)
	cc := langtypes.NewCloneContext(ic.alloc.Fresh)
	cloned := cc.Clone(fn.SchematicType)
	return langtypes.Uncurry(cloned, arity)
}

func (ic *inferCtx) typeFunctionBody(fn *program.Function) {
	_ = ic.typeExpr(fn, fn.Body)
	_, result := langtypes.Uncurry(fn.SchematicType, fn.ExplicitArity+fn.ImplicitArgCount)
	bodyType := ic.exprTypes[fn.Body.ExprId()]
	ic.unify(fn.Body.Location(), result, bodyType)
}

func (ic *inferCtx) recordExpr(e program.Expr, t langtypes.Type) langtypes.Type {
	ic.exprTypes[e.ExprId()] = t
	return t
}

func (ic *inferCtx) recordPattern(p program.Pattern, t langtypes.Type) langtypes.Type {
	ic.patternTypes[p.PatternId()] = t
	return t
}

// typeExpr implements the obligations table of spec.md §4.4.
func (ic *inferCtx) typeExpr(fn *program.Function, e program.Expr) langtypes.Type {
	switch n := e.(type) {
	case *program.IntegerLiteral:
		return ic.recordExpr(e, ic.intType())
	case *program.FloatLiteral:
		return ic.recordExpr(e, ic.floatType())
	case *program.StringLiteral:
		return ic.recordExpr(e, ic.stringType())
	case *program.BoolLiteral:
		return ic.recordExpr(e, ic.boolType())

	case *program.ArgRef:
		args, _ := langtypes.Uncurry(fn.SchematicType, -1)
		slot := n.Index
		if !n.Captured {
			slot += fn.ImplicitArgCount
		}
		if slot < 0 || slot >= len(args) {
			panic("ArgRef index out of range: dangling/malformed IR")
		}
		return ic.recordExpr(e, args[slot])

	case *program.StaticFunctionCall:
		return ic.recordExpr(e, ic.typeCall(fn, e, ic.calleeType(n.Function), n.Args))

	case *program.ClassFunctionCall:
		member := ic.prog.ClassMember(n.Member)
		cc := langtypes.NewCloneContext(ic.alloc.Fresh)
		cloned := cc.Clone(member.SchematicType)
		return ic.recordExpr(e, ic.typeCall(fn, e, cloned, n.Args))

	case *program.DynamicFunctionCall:
		calleeType := ic.typeExpr(fn, n.Callee)
		argTypes := make([]langtypes.Type, len(n.Args))
		for i, a := range n.Args {
			argTypes[i] = ic.typeExpr(fn, a)
		}
		resultVar := ic.alloc.FreshVar()
		built := langtypes.Curry(argTypes, resultVar)
		ic.unify(e.Location(), calleeType, built)
		return ic.recordExpr(e, resultVar)

	case *program.If:
		cond := ic.typeExpr(fn, n.Cond)
		ic.unify(n.Cond.Location(), ic.boolType(), cond)
		thenT := ic.typeExpr(fn, n.Then)
		elseT := ic.typeExpr(fn, n.Else)
		ic.unify(n.Else.Location(), thenT, elseT)
		return ic.recordExpr(e, thenT)

	case *program.TupleExpr:
		children := make([]langtypes.Type, len(n.Items))
		for i, it := range n.Items {
			children[i] = ic.typeExpr(fn, it)
		}
		return ic.recordExpr(e, langtypes.Tuple{Children: children})

	case *program.ListExpr:
		elem := ic.alloc.FreshVar()
		for _, it := range n.Items {
			itemT := ic.typeExpr(fn, it)
			ic.unify(it.Location(), elem, itemT)
		}
		return ic.recordExpr(e, ic.listType(elem))

	case *program.TupleFieldAccess:
		recvT := ic.typeExpr(fn, n.Receiver)
		slots := make([]langtypes.Type, n.Index+1)
		for i := range slots {
			slots[i] = ic.alloc.FreshVar()
		}
		ic.unify(n.Receiver.Location(), langtypes.Tuple{Children: slots}, recvT)
		return ic.recordExpr(e, slots[n.Index])

	case *program.FieldAccess:
		return ic.recordExpr(e, ic.typeFieldAccess(fn, n))

	case *program.RecordInitialization:
		td := ic.prog.TypeDef(n.TypeDef)
		items, result := ic.freshConstructorInstance(td.Constructor, len(td.Fields))
		for _, item := range n.Items {
			valT := ic.typeExpr(fn, item.Value)
			ic.unify(item.Value.Location(), items[item.Index], valT)
		}
		return ic.recordExpr(e, result)

	case *program.RecordUpdate:
		return ic.recordExpr(e, ic.typeRecordUpdate(fn, n))

	case *program.Do:
		var last langtypes.Type = langtypes.Tuple{}
		for _, it := range n.Exprs {
			last = ic.typeExpr(fn, it)
		}
		return ic.recordExpr(e, last)

	case *program.Bind:
		rhsT := ic.typeExpr(fn, n.Rhs)
		patT := ic.typePattern(fn, n.Pattern)
		ic.unify(n.Pattern.Location(), patT, rhsT)
		return ic.recordExpr(e, langtypes.Tuple{})

	case *program.ExprValue:
		t, ok := ic.patternTypes[n.Pattern]
		if !ok {
			panic("ExprValue refers to a pattern not yet typed: dangling/malformed IR")
		}
		return ic.recordExpr(e, t)

	case *program.CaseOf:
		scrutT := ic.typeExpr(fn, n.Scrutinee)
		resultVar := ic.alloc.FreshVar()
		for _, cs := range n.Cases {
			patT := ic.typePattern(fn, cs.Pattern)
			ic.unify(cs.Pattern.Location(), patT, scrutT)
			bodyT := ic.typeExpr(fn, cs.Body)
			ic.unify(cs.Body.Location(), resultVar, bodyT)
		}
		return ic.recordExpr(e, resultVar)

	case *program.Formatter:
		want := strings.Count(n.Format, "{}")
		if want != len(n.Args) {
			ic.errors = append(ic.errors, &InvalidFormatStringError{Loc: e.Location(), Format: n.Format, Want: want, Have: len(n.Args)})
		}
		for _, a := range n.Args {
			ic.typeExpr(fn, a)
		}
		return ic.recordExpr(e, ic.stringType())

	default:
		panic("typeExpr: unknown expression kind")
	}
}

// calleeType returns the schematic type to use for a StaticFunctionCall
// target: the group's shared (unified in place) type for an in-group
// callee, or a fresh clone for an out-of-group one (spec.md §4.4
// "Instantiate f's schematic type (fresh vars unless f is in the current
// group)").
func (ic *inferCtx) calleeType(target ids.FunctionId) langtypes.Type {
	fn := ic.prog.Function(target)
	if ic.inGroup[target] {
		return fn.SchematicType
	}
	cc := langtypes.NewCloneContext(ic.alloc.Fresh)
	return cc.Clone(fn.SchematicType)
}

// typeCall implements the shared curried-call-matching logic used by both
// StaticFunctionCall and ClassFunctionCall: walk the
// curried function type left to right, unifying each segment against the
// corresponding argument, allowing partial application.
func (ic *inferCtx) typeCall(fn *program.Function, call program.Expr, calleeType langtypes.Type, args []program.Expr) langtypes.Type {
	cur := langtypes.Apply(calleeType, ic.subst)
	for _, a := range args {
		segment, ok := cur.(langtypes.Function)
		if !ok {
			ic.errors = append(ic.errors, &FunctionArgumentMismatchError{Loc: call.Location(), Given: len(args)})
			return ic.alloc.FreshVar()
		}
		argT := ic.typeExpr(fn, a)
		ic.unify(a.Location(), segment.From, argT)
		cur = langtypes.Apply(segment.To, ic.subst)
	}
	return cur
}

func (ic *inferCtx) typeFieldAccess(fn *program.Function, n *program.FieldAccess) langtypes.Type {
	recvT := langtypes.Apply(ic.typeExpr(fn, n.Receiver), ic.subst)

	type match struct {
		td        *program.TypeDef
		recordT   langtypes.Type
		fieldT    langtypes.Type
	}
	var matches []match
	for _, tdid := range n.Candidates {
		td := ic.prog.TypeDef(tdid)
		idx := td.FieldIndex(n.FieldName)
		if idx < 0 {
			continue
		}
		items, result := ic.freshConstructorInstance(td.Constructor, len(td.Fields))
		if _, err := langtypes.Unify(recvT, result); err == nil {
			matches = append(matches, match{td: td, recordT: result, fieldT: items[idx]})
		}
	}

	switch len(matches) {
	case 0:
		ic.errors = append(ic.errors, &NoMatchingFieldError{Loc: n.Location(), FieldName: n.FieldName})
		return ic.alloc.FreshVar()
	case 1:
		ic.unify(n.Location(), matches[0].recordT, recvT)
		return matches[0].fieldT
	default:
		var candidates []ids.TypeDefId
		for _, m := range matches {
			candidates = append(candidates, m.td.Id)
		}
		ic.errors = append(ic.errors, &AmbiguousFieldAccessError{Loc: n.Location(), FieldName: n.FieldName, Candidates: candidates})
		return ic.alloc.FreshVar()
	}
}

func (ic *inferCtx) typeRecordUpdate(fn *program.Function, n *program.RecordUpdate) langtypes.Type {
	recvT := langtypes.Apply(ic.typeExpr(fn, n.Receiver), ic.subst)
	named, ok := recvT.(langtypes.Named)
	if !ok {
		ic.errors = append(ic.errors, &TypeAnnotationNeededError{Loc: n.Location()})
		return ic.alloc.FreshVar()
	}
	for _, opt := range n.Options {
		if opt.TypeDef != named.Def {
			continue
		}
		td := ic.prog.TypeDef(opt.TypeDef)
		items, result := ic.freshConstructorInstance(td.Constructor, len(td.Fields))
		ic.unify(n.Location(), result, recvT)
		for _, item := range opt.Items {
			valT := ic.typeExpr(fn, item.Value)
			ic.unify(item.Value.Location(), items[item.Index], valT)
		}
		return recvT
	}
	ic.errors = append(ic.errors, &TypeMismatchError{Loc: n.Location(), Expected: recvT, Found: recvT})
	return recvT
}

// typePattern implements the obligations table of spec.md §4.4 (patterns).
func (ic *inferCtx) typePattern(fn *program.Function, p program.Pattern) langtypes.Type {
	switch n := p.(type) {
	case *program.Binding:
		return ic.recordPattern(p, ic.alloc.FreshVar())
	case *program.Wildcard:
		return ic.recordPattern(p, ic.alloc.FreshVar())
	case *program.IntegerPattern:
		return ic.recordPattern(p, ic.intType())
	case *program.FloatPattern:
		return ic.recordPattern(p, ic.floatType())
	case *program.StringPattern:
		return ic.recordPattern(p, ic.stringType())
	case *program.BoolPattern:
		return ic.recordPattern(p, ic.boolType())

	case *program.TuplePattern:
		children := make([]langtypes.Type, len(n.Items))
		for i, it := range n.Items {
			children[i] = ic.typePattern(fn, it)
		}
		return ic.recordPattern(p, langtypes.Tuple{Children: children})

	case *program.RecordPattern:
		td := ic.prog.TypeDef(n.TypeDef)
		if len(n.Items) != len(td.Fields) {
			ic.errors = append(ic.errors, &InvalidRecordPatternError{Loc: n.Location(), TypeDef: n.TypeDef})
			return ic.recordPattern(p, ic.alloc.FreshVar())
		}
		items, result := ic.freshConstructorInstance(td.Constructor, len(td.Fields))
		for i, it := range n.Items {
			itemT := ic.typePattern(fn, it)
			ic.unify(it.Location(), items[i], itemT)
		}
		return ic.recordPattern(p, result)

	case *program.VariantPattern:
		td := ic.prog.TypeDef(n.TypeDef)
		variant := td.Variants[n.VariantIndex]
		if len(n.Items) != len(variant.Items) {
			ic.errors = append(ic.errors, &InvalidVariantPatternError{Loc: n.Location(), TypeDef: n.TypeDef, VariantIndex: n.VariantIndex})
			return ic.recordPattern(p, ic.alloc.FreshVar())
		}
		items, result := ic.freshConstructorInstance(variant.Constructor, len(variant.Items))
		for i, it := range n.Items {
			itemT := ic.typePattern(fn, it)
			ic.unify(it.Location(), items[i], itemT)
		}
		return ic.recordPattern(p, result)

	case *program.GuardedPattern:
		innerT := ic.typePattern(fn, n.Inner)
		guardT := ic.typeExpr(fn, n.Guard)
		ic.unify(n.Guard.Location(), ic.boolType(), guardT)
		return ic.recordPattern(p, innerT)

	case *program.TypedPattern:
		innerT := ic.typePattern(fn, n.Inner)
		sigT := ic.synth.LowerSignature(n.Signature)
		ic.unify(n.Location(), innerT, sigT)
		return ic.recordPattern(p, innerT)

	default:
		panic("typePattern: unknown pattern kind")
	}
}
