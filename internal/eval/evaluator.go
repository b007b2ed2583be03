// Package eval implements the tree-walking evaluator: environments, runtime
// values, call/execute/eval_expr, pattern matching, and class-member
// dispatch.
package eval

import (
	"fmt"

	"github.com/jaffa4/siko/internal/check"
	"github.com/jaffa4/siko/internal/config"
	"github.com/jaffa4/siko/internal/ids"
	"github.com/jaffa4/siko/internal/langtypes"
	"github.com/jaffa4/siko/internal/program"
	"github.com/jaffa4/siko/internal/resolve"
)

// ExternFunction is the uniform contract an L8 extern implements: given the
// evaluated arguments and the concrete type the call site expects back, it
// returns a value or an error.
type ExternFunction func(ev *Evaluator, args []Value, expected langtypes.Concrete) (Value, error)

// ExternLookup resolves (module, name) to an implementation; the registry
// that supplies this to an Evaluator lives in package extern, kept decoupled
// from eval so the registry can be built and populated independently.
type ExternLookup func(module, name string) (ExternFunction, bool)

// AbortError is the one evaluator-level abort kind a program can trigger
// deliberately, via `assert`, `abort`, or integer/float division by zero.
type AbortError struct {
	Message string
}

func (e *AbortError) Error() string { return "abort: " + e.Message }

// CallDepthExceededError reports a runaway/non-terminating recursive
// program tripping the configured recursion guard.
type CallDepthExceededError struct {
	Limit int
}

func (e *CallDepthExceededError) Error() string {
	return fmt.Sprintf("call depth exceeded limit of %d", e.Limit)
}

// NonExhaustiveCaseError reports a CaseOf whose scrutinee matched none of
// its cases at runtime; Loc is the scrutinee's location.
type NonExhaustiveCaseError struct {
	Loc ids.LocationId
}

func (e *NonExhaustiveCaseError) Error() string {
	return "case expression did not match any pattern"
}

// MissingImplementationError reports a class member with neither an
// instance override nor a default, for an instance that otherwise resolved.
type MissingImplementationError struct {
	Member ids.ClassMemberId
}

func (e *MissingImplementationError) Error() string {
	return fmt.Sprintf("class member %d has no implementation for the resolved instance", e.Member)
}

// Evaluator holds everything one evaluation needs: the checked program, the
// instance resolver, the extern registry, and the recursion guard.
type Evaluator struct {
	Prog     *program.Program
	Resolver *resolve.Resolver
	Externs  ExternLookup

	// Show renders a value as a string via the language's own Show class
	// dispatch. Package runtime installs this after bootstrapping the
	// Show class/instances, since eval cannot import runtime (runtime
	// wraps an Evaluator, not the reverse). Formatter expressions and any
	// print/println extern route through it.
	Show func(v Value) (string, error)

	// OpEq reenters the language's Eq class dispatch for two values sharing
	// a concrete type; installed by package runtime alongside Show, used by
	// externs that need structural-but-overridable equality (e.g.
	// List.equals) instead of the host-language SameShape comparison.
	OpEq func(a, b Value) (bool, error)

	MaxCallDepth int
	depth        int
}

// New builds an Evaluator. maxCallDepth <= 0 selects the configured default.
func New(prog *program.Program, resolver *resolve.Resolver, externs ExternLookup, maxCallDepth int) *Evaluator {
	if maxCallDepth <= 0 {
		maxCallDepth = config.MaxCallDepthDefault
	}
	return &Evaluator{Prog: prog, Resolver: resolver, Externs: externs, MaxCallDepth: maxCallDepth}
}

// Call invokes fn with args already evaluated and flattened
// [implicit...][explicit...], expecting the result to have concrete type
// expected. This is the evaluator's single entry point for every kind of
// callable: a direct static call, a class-dispatched call, or forcing a
// Callable value that has collected enough arguments.
//
// args may over-saturate fn's own declared arity: the first needed args
// feed this activation, and whatever is left over (rest) is applied to
// the activation's result in turn, which must itself be callable. This
// mirrors a curried call that runs through more than one function in
// sequence, e.g. (compose f g) x applying x to the function compose
// returns.
func (ev *Evaluator) Call(fn ids.FunctionId, args []Value, expected langtypes.Concrete) (Value, error) {
	ev.depth++
	defer func() { ev.depth-- }()
	if ev.depth > ev.MaxCallDepth {
		return nil, &CallDepthExceededError{Limit: ev.MaxCallDepth}
	}

	f := ev.Prog.Function(fn)
	needed := f.ExplicitArity + f.ImplicitArgCount
	first, rest := args, []Value(nil)
	if len(args) > needed {
		first, rest = args[:needed], args[needed:]
	}

	restConcrete := make([]langtypes.Concrete, len(rest))
	for i, a := range rest {
		restConcrete[i] = a.ConcreteType()
	}
	callExpected := langtypes.CurryConcrete(restConcrete, expected)

	argConcrete := make([]langtypes.Concrete, len(first))
	for i, a := range first {
		argConcrete[i] = a.ConcreteType()
	}
	concreteFn := langtypes.CurryConcrete(argConcrete, callExpected)
	ctx, err := check.ComputeSubstContext(f.SchematicType, concreteFn)
	if err != nil {
		return nil, err
	}

	result, err := ev.execute(f, first, ctx)
	if err != nil {
		return nil, err
	}
	if len(rest) == 0 {
		return result, nil
	}
	callable, ok := result.(*Callable)
	if !ok {
		return nil, fmt.Errorf("call: %d extra argument(s) applied to a non-function result", len(rest))
	}
	return ev.applyCallable(callable, rest, expected)
}

// execute runs a resolved activation of f: a constructor builds its value
// directly, a bodied function evaluates its body in a fresh call frame, and
// an extern dispatches to the registry.
func (ev *Evaluator) execute(f *program.Function, args []Value, ctx langtypes.SubstContext) (Value, error) {
	switch f.Kind {
	case program.KindVariantConstructor:
		resultType, err := ev.concreteFromCtx(f.SchematicType, ctx)
		if err != nil {
			return nil, err
		}
		_, resultConcrete := langtypes.UncurryConcrete(resultType, len(args))
		return Variant{TypeDef: f.TypeDef, VariantIndex: f.VariantIndex, Items: args, T: resultConcrete}, nil

	case program.KindRecordConstructor:
		resultType, err := ev.concreteFromCtx(f.SchematicType, ctx)
		if err != nil {
			return nil, err
		}
		_, resultConcrete := langtypes.UncurryConcrete(resultType, len(args))
		return Record{TypeDef: f.TypeDef, Fields: args, T: resultConcrete}, nil

	case program.KindNamedFunction, program.KindLambda:
		if !f.HasBody {
			if ev.Externs == nil {
				return nil, fmt.Errorf("no extern registry configured for %s.%s", f.Module, f.Name)
			}
			impl, ok := ev.Externs(f.Module, f.Name)
			if !ok {
				return nil, fmt.Errorf("no extern implementation for %s.%s", f.Module, f.Name)
			}
			resultType, err := ev.concreteFromCtx(f.SchematicType, ctx)
			if err != nil {
				return nil, err
			}
			_, expected := langtypes.UncurryConcrete(resultType, len(args))
			return impl(ev, args, expected)
		}
		env := NewCallEnvironment(args, f.ImplicitArgCount)
		return ev.evalExpr(f.Body, env, ctx)
	}
	return nil, fmt.Errorf("unknown function kind %d", f.Kind)
}

// concreteFromCtx instantiates t under ctx, defensively handling the case
// where t contains no free variables relevant to ctx at all.
func (ev *Evaluator) concreteFromCtx(t langtypes.Type, ctx langtypes.SubstContext) (langtypes.Concrete, error) {
	return langtypes.ToConcrete(t, ctx)
}

// evalExpr evaluates e in env under the subst context ctx computed for the
// enclosing function activation.
func (ev *Evaluator) evalExpr(e program.Expr, env *Environment, ctx langtypes.SubstContext) (Value, error) {
	switch n := e.(type) {
	case *program.IntegerLiteral:
		return Int{V: n.Value, T: ev.exprConcrete(n.ExprId(), ctx)}, nil
	case *program.FloatLiteral:
		return Float{V: n.Value, T: ev.exprConcrete(n.ExprId(), ctx)}, nil
	case *program.StringLiteral:
		return String{V: n.Value, T: ev.exprConcrete(n.ExprId(), ctx)}, nil
	case *program.BoolLiteral:
		return Bool{V: n.Value, T: ev.exprConcrete(n.ExprId(), ctx)}, nil

	case *program.ArgRef:
		return env.Arg(n.Index, n.Captured), nil

	case *program.StaticFunctionCall:
		args, err := ev.evalArgs(n.Args, env, ctx)
		if err != nil {
			return nil, err
		}
		expected := ev.exprConcrete(n.ExprId(), ctx)
		return ev.callCollecting(n.Function, args, expected)

	case *program.ClassFunctionCall:
		args, err := ev.evalArgs(n.Args, env, ctx)
		if err != nil {
			return nil, err
		}
		expected := ev.exprConcrete(n.ExprId(), ctx)
		member := ev.Prog.ClassMember(n.Member)
		return ev.DispatchClassMember(member, args, expected)

	case *program.DynamicFunctionCall:
		calleeV, err := ev.evalExpr(n.Callee, env, ctx)
		if err != nil {
			return nil, err
		}
		args, err := ev.evalArgs(n.Args, env, ctx)
		if err != nil {
			return nil, err
		}
		expected := ev.exprConcrete(n.ExprId(), ctx)
		callable, ok := calleeV.(*Callable)
		if !ok {
			return nil, fmt.Errorf("dynamic call target is not callable")
		}
		return ev.applyCallable(callable, args, expected)

	case *program.If:
		condV, err := ev.evalExpr(n.Cond, env, ctx)
		if err != nil {
			return nil, err
		}
		if condV.(Bool).V {
			return ev.evalExpr(n.Then, env, ctx)
		}
		return ev.evalExpr(n.Else, env, ctx)

	case *program.TupleExpr:
		items, err := ev.evalArgs(n.Items, env, ctx)
		if err != nil {
			return nil, err
		}
		return Tuple{Items: items, T: ev.exprConcrete(n.ExprId(), ctx)}, nil

	case *program.ListExpr:
		items, err := ev.evalArgs(n.Items, env, ctx)
		if err != nil {
			return nil, err
		}
		return List{Items: items, T: ev.exprConcrete(n.ExprId(), ctx)}, nil

	case *program.TupleFieldAccess:
		recv, err := ev.evalExpr(n.Receiver, env, ctx)
		if err != nil {
			return nil, err
		}
		return recv.(Tuple).Items[n.Index], nil

	case *program.FieldAccess:
		recv, err := ev.evalExpr(n.Receiver, env, ctx)
		if err != nil {
			return nil, err
		}
		rec := recv.(Record)
		td := ev.Prog.TypeDef(rec.TypeDef)
		return rec.Fields[td.FieldIndex(n.FieldName)], nil

	case *program.RecordInitialization:
		td := ev.Prog.TypeDef(n.TypeDef)
		fields := make([]Value, len(td.Fields))
		for _, item := range n.Items {
			v, err := ev.evalExpr(item.Value, env, ctx)
			if err != nil {
				return nil, err
			}
			fields[item.Index] = v
		}
		return Record{TypeDef: n.TypeDef, Fields: fields, T: ev.exprConcrete(n.ExprId(), ctx)}, nil

	case *program.RecordUpdate:
		recv, err := ev.evalExpr(n.Receiver, env, ctx)
		if err != nil {
			return nil, err
		}
		rec := recv.(Record)
		var option *program.RecordUpdateOption
		for i := range n.Options {
			if n.Options[i].TypeDef == rec.TypeDef {
				option = &n.Options[i]
				break
			}
		}
		if option == nil {
			return nil, fmt.Errorf("record update: no candidate matches receiver type")
		}
		fields := append([]Value{}, rec.Fields...)
		for _, item := range option.Items {
			v, err := ev.evalExpr(item.Value, env, ctx)
			if err != nil {
				return nil, err
			}
			fields[item.Index] = v
		}
		return Record{TypeDef: rec.TypeDef, Fields: fields, T: rec.T}, nil

	case *program.Do:
		child := env.BlockChild()
		var result Value = Tuple{T: langtypes.CTuple{}}
		for _, sub := range n.Exprs {
			v, err := ev.evalExpr(sub, child, ctx)
			if err != nil {
				return nil, err
			}
			result = v
		}
		return result, nil

	case *program.Bind:
		rhs, err := ev.evalExpr(n.Rhs, env, ctx)
		if err != nil {
			return nil, err
		}
		matched, err := ev.matchPattern(n.Pattern, rhs, env, ctx)
		if err != nil {
			return nil, err
		}
		if !matched {
			return nil, fmt.Errorf("let binding pattern did not match")
		}
		return Tuple{T: langtypes.CTuple{}}, nil

	case *program.ExprValue:
		v, ok := env.Lookup(n.Pattern)
		if !ok {
			panic("ExprValue: unbound pattern " + n.Name)
		}
		return v, nil

	case *program.CaseOf:
		scrutinee, err := ev.evalExpr(n.Scrutinee, env, ctx)
		if err != nil {
			return nil, err
		}
		for _, c := range n.Cases {
			child := env.BlockChild()
			matched, err := ev.matchPattern(c.Pattern, scrutinee, child, ctx)
			if err != nil {
				return nil, err
			}
			if matched {
				return ev.evalExpr(c.Body, child, ctx)
			}
		}
		return nil, &NonExhaustiveCaseError{Loc: n.Scrutinee.Location()}

	case *program.Formatter:
		return ev.evalFormatter(n, env, ctx)
	}
	return nil, fmt.Errorf("eval: unhandled expression type %T", e)
}

func (ev *Evaluator) exprConcrete(id ids.ExprId, ctx langtypes.SubstContext) langtypes.Concrete {
	t := ev.Prog.ExprType(id)
	c, err := langtypes.ToConcrete(t, ctx)
	if err != nil {
		panic(err)
	}
	return c
}

func (ev *Evaluator) evalArgs(exprs []program.Expr, env *Environment, ctx langtypes.SubstContext) ([]Value, error) {
	out := make([]Value, len(exprs))
	for i, e := range exprs {
		v, err := ev.evalExpr(e, env, ctx)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// callCollecting invokes fn if args already saturates its declared arity,
// or produces a partially-applied Callable otherwise. StaticFunctionCall
// nodes (which the checker allows to be partially applied), class-member
// dispatch and Callable application all go through this helper.
func (ev *Evaluator) callCollecting(fn ids.FunctionId, args []Value, expected langtypes.Concrete) (Value, error) {
	f := ev.Prog.Function(fn)
	needed := f.ExplicitArity + f.ImplicitArgCount
	if len(args) < needed {
		return ev.partialCallable(fn, args, expected)
	}
	return ev.Call(fn, args, expected)
}

// partialCallable builds a Callable carrying the subst context derived from
// the arguments collected so far plus the expected remaining curried type.
func (ev *Evaluator) partialCallable(fn ids.FunctionId, collected []Value, expected langtypes.Concrete) (Value, error) {
	f := ev.Prog.Function(fn)
	argConcrete := make([]langtypes.Concrete, len(collected))
	for i, a := range collected {
		argConcrete[i] = a.ConcreteType()
	}
	concreteFn := langtypes.CurryConcrete(argConcrete, expected)
	ctx, err := check.ComputeSubstContext(f.SchematicType, concreteFn)
	if err != nil {
		return nil, err
	}
	return &Callable{Function: fn, CollectedArgs: collected, SubstCtx: ctx, T: expected}, nil
}

// InvokeCallable supplies args to a first-class function value v, expecting
// expected as the (possibly still-curried) result type. Exported so externs
// taking a function argument (List.map, List.fold) can call back into it
// without depending on eval's unexported Callable plumbing.
func (ev *Evaluator) InvokeCallable(v Value, args []Value, expected langtypes.Concrete) (Value, error) {
	callable, ok := v.(*Callable)
	if !ok {
		return nil, fmt.Errorf("InvokeCallable: value is not callable")
	}
	return ev.applyCallable(callable, args, expected)
}

// applyCallable supplies further args to a Callable, calling through
// callCollecting so that saturation, continued partial application, and
// any further over-application against c's own callee are all handled by
// the same logic as a fresh call.
func (ev *Evaluator) applyCallable(c *Callable, args []Value, expected langtypes.Concrete) (Value, error) {
	all := append(append([]Value{}, c.CollectedArgs...), args...)
	return ev.callCollecting(c.Function, all, expected)
}

// DispatchClassMember resolves member's instance from the class argument's
// concrete type and calls the resolved implementation (or its default).
// Exported so package runtime can reenter class dispatch for show/opEq/cmp
// from inside an extern.
func (ev *Evaluator) DispatchClassMember(member *program.ClassMember, args []Value, expected langtypes.Concrete) (Value, error) {
	class := ev.Prog.Class(member.Class)

	argConcrete := make([]langtypes.Concrete, len(args))
	for i, a := range args {
		argConcrete[i] = a.ConcreteType()
	}
	concreteFn := langtypes.CurryConcrete(argConcrete, expected)
	memberCtx, err := check.ComputeSubstContext(member.SchematicType, concreteFn)
	if err != nil {
		return nil, err
	}
	selectorConcrete, ok := memberCtx[member.ClassArgVar]
	if !ok {
		return nil, fmt.Errorf("class member %d: class argument variable not bound at call site", member.Id)
	}

	inst, ok := ev.Resolver.InstanceForSelector(class.Id, selectorConcrete.Base())
	if !ok {
		return nil, &resolve.MissingInstanceError{Class: class.Id, Type: langtypes.FromConcrete(selectorConcrete)}
	}
	fid, ok := inst.Implementation(member)
	if !ok {
		return nil, &MissingImplementationError{Member: member.Id}
	}
	return ev.callCollecting(fid, args, expected)
}
