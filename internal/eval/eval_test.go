package eval_test

import (
	"testing"

	"github.com/jaffa4/siko/internal/eval"
	"github.com/jaffa4/siko/internal/extern"
	"github.com/jaffa4/siko/internal/ids"
	"github.com/jaffa4/siko/internal/langtypes"
	"github.com/jaffa4/siko/internal/program"
	"github.com/jaffa4/siko/internal/resolve"
)

var intSchema = langtypes.Named{Name: "Int", Def: 0}
var intConcrete = langtypes.CNamed{Name: "Int", Def: 0}
var boolSchema = langtypes.Named{Name: "Bool", Def: 1}
var boolConcrete = langtypes.CNamed{Name: "Bool", Def: 1}

func newRegistry() *extern.Registry {
	reg := extern.NewRegistry()
	extern.RegisterCore(reg, extern.Builtins{})
	return reg
}

// reg assigns e a fresh expr id, records its schematic type, and registers
// it on prog, returning e for inline use as a call argument.
func reg(prog *program.Program, e program.Expr, t langtypes.Type) program.Expr {
	switch n := e.(type) {
	case *program.IntegerLiteral:
		n.Id = prog.NextExprId()
	case *program.StringLiteral:
		n.Id = prog.NextExprId()
	case *program.ArgRef:
		n.Id = prog.NextExprId()
	case *program.ExprValue:
		n.Id = prog.NextExprId()
	case *program.StaticFunctionCall:
		n.Id = prog.NextExprId()
	case *program.ClassFunctionCall:
		n.Id = prog.NextExprId()
	case *program.If:
		n.Id = prog.NextExprId()
	default:
		panic("reg: unhandled expr type in test helper")
	}
	prog.RegisterExpr(e)
	prog.ExprTypes[e.ExprId()] = t
	return e
}

func intLit(prog *program.Program, v int64) program.Expr {
	return reg(prog, &program.IntegerLiteral{Value: v}, intSchema)
}

// TestAddViaExtern builds Main.main = Int.opAdd(3, 4) by hand and checks
// the evaluator dispatches through the extern registry and returns 7.
func TestAddViaExtern(t *testing.T) {
	prog := program.New()

	addFn := &program.Function{
		Kind: program.KindNamedFunction, Module: "Int", Name: "opAdd",
		ExplicitArity: 2, HasBody: false,
		SchematicType: langtypes.Curry([]langtypes.Type{intSchema, intSchema}, intSchema),
	}
	addId := prog.AddFunction(addFn)

	call := reg(prog, &program.StaticFunctionCall{Function: addId, Args: []program.Expr{intLit(prog, 3), intLit(prog, 4)}}, intSchema)

	mainFn := &program.Function{
		Kind: program.KindNamedFunction, Module: "Main", Name: "main",
		HasBody: true, Body: call, SchematicType: intSchema,
	}
	mainId := prog.AddFunction(mainFn)

	ev := eval.New(prog, nil, newRegistry().Lookup, 0)

	result, err := ev.Call(mainId, nil, intConcrete)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := result.(eval.Int)
	if !ok || got.V != 7 {
		t.Fatalf("expected Int 7, got %#v", result)
	}
}

// TestRecursiveFactorial builds a self-recursive named function
// `fact n = if n == 0 then 1 else n * fact(n - 1)` and evaluates fact(5).
func TestRecursiveFactorial(t *testing.T) {
	prog := program.New()

	eqFn := &program.Function{Kind: program.KindNamedFunction, Module: "Int", Name: "opEq", ExplicitArity: 2,
		SchematicType: langtypes.Curry([]langtypes.Type{intSchema, intSchema}, boolSchema)}
	eqId := prog.AddFunction(eqFn)
	subFn := &program.Function{Kind: program.KindNamedFunction, Module: "Int", Name: "opSub", ExplicitArity: 2,
		SchematicType: langtypes.Curry([]langtypes.Type{intSchema, intSchema}, intSchema)}
	subId := prog.AddFunction(subFn)
	mulFn := &program.Function{Kind: program.KindNamedFunction, Module: "Int", Name: "opMul", ExplicitArity: 2,
		SchematicType: langtypes.Curry([]langtypes.Type{intSchema, intSchema}, intSchema)}
	mulId := prog.AddFunction(mulFn)

	factFn := &program.Function{Kind: program.KindNamedFunction, Module: "Main", Name: "fact", ExplicitArity: 1,
		SchematicType: langtypes.Curry([]langtypes.Type{intSchema}, intSchema)}
	factId := prog.AddFunction(factFn)

	arg := reg(prog, &program.ArgRef{Function: factId, Index: 0}, intSchema)
	arg2 := reg(prog, &program.ArgRef{Function: factId, Index: 0}, intSchema)
	arg3 := reg(prog, &program.ArgRef{Function: factId, Index: 0}, intSchema)

	cond := reg(prog, &program.StaticFunctionCall{Function: eqId, Args: []program.Expr{arg, intLit(prog, 0)}}, boolSchema)
	recArg := reg(prog, &program.StaticFunctionCall{Function: subId, Args: []program.Expr{arg2, intLit(prog, 1)}}, intSchema)
	recCall := reg(prog, &program.StaticFunctionCall{Function: factId, Args: []program.Expr{recArg}}, intSchema)
	elseBranch := reg(prog, &program.StaticFunctionCall{Function: mulId, Args: []program.Expr{arg3, recCall}}, intSchema)
	ifExpr := reg(prog, &program.If{Cond: cond, Then: intLit(prog, 1), Else: elseBranch}, intSchema)

	factFn.Body = ifExpr
	factFn.HasBody = true

	ev := eval.New(prog, nil, newRegistry().Lookup, 1000)

	result, err := ev.Call(factId, []eval.Value{eval.Int{V: 5, T: intConcrete}}, intConcrete)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := result.(eval.Int)
	if !ok || got.V != 120 {
		t.Fatalf("expected Int 120, got %#v", result)
	}
}

// TestPartialApplicationThenOverApplication builds
// `inc = Int.opAdd 1; main = inc 2` (the two-argument Int.opAdd extern
// plays the role of `add`) and checks that Call splits inc's over-long
// argument list (inc itself takes zero explicit args) into the Callable
// `Int.opAdd 1` produces plus a leftover `2`, applying the leftover to that
// Callable rather than erroring.
func TestPartialApplicationThenOverApplication(t *testing.T) {
	prog := program.New()

	addExternFn := &program.Function{
		Kind: program.KindNamedFunction, Module: "Int", Name: "opAdd",
		ExplicitArity: 2, HasBody: false,
		SchematicType: langtypes.Curry([]langtypes.Type{intSchema, intSchema}, intSchema),
	}
	addId := prog.AddFunction(addExternFn)

	intToInt := langtypes.Curry([]langtypes.Type{intSchema}, intSchema)

	incFn := &program.Function{
		Kind: program.KindNamedFunction, Module: "Main", Name: "inc",
		ExplicitArity: 0, HasBody: true,
		SchematicType: intToInt,
	}
	incId := prog.AddFunction(incFn)
	incFn.Body = reg(prog, &program.StaticFunctionCall{Function: addId, Args: []program.Expr{intLit(prog, 1)}}, intToInt)

	mainFn := &program.Function{
		Kind: program.KindNamedFunction, Module: "Main", Name: "main",
		HasBody: true, SchematicType: intSchema,
	}
	mainId := prog.AddFunction(mainFn)
	mainFn.Body = reg(prog, &program.StaticFunctionCall{Function: incId, Args: []program.Expr{intLit(prog, 2)}}, intSchema)

	ev := eval.New(prog, nil, newRegistry().Lookup, 1000)

	result, err := ev.Call(mainId, nil, intConcrete)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := result.(eval.Int)
	if !ok || got.V != 3 {
		t.Fatalf("expected Int 3, got %#v", result)
	}
}

// TestGuardedCase builds
// `main = case 5 of x | x > 3 -> "big"; _ -> "small"` (using opEq in place
// of > for brevity: the guard checks x == 5) and checks the guarded arm
// wins over the wildcard fallback.
func TestGuardedCase(t *testing.T) {
	prog := program.New()

	eqFn := &program.Function{Kind: program.KindNamedFunction, Module: "Int", Name: "opEq", ExplicitArity: 2,
		SchematicType: langtypes.Curry([]langtypes.Type{intSchema, intSchema}, boolSchema)}
	eqId := prog.AddFunction(eqFn)

	stringSchema := langtypes.Named{Name: "String", Def: 2}
	stringConcrete := langtypes.CNamed{Name: "String", Def: 2}

	scrutinee := intLit(prog, 5)

	guardPat := &program.GuardedPattern{Inner: &program.Binding{Name: "x"}}
	guardPat.Id = prog.NextPatternId()
	guardPat.Inner.(*program.Binding).Id = prog.NextPatternId()
	xRef := reg(prog, &program.ExprValue{Name: "x", Pattern: guardPat.Inner.PatternId()}, intSchema)
	guardPat.Guard = reg(prog, &program.StaticFunctionCall{Function: eqId, Args: []program.Expr{xRef, intLit(prog, 5)}}, boolSchema)

	wildcardPat := &program.Wildcard{}
	wildcardPat.Id = prog.NextPatternId()

	bigLit := reg(prog, &program.StringLiteral{Value: "big"}, stringSchema)
	smallLit := reg(prog, &program.StringLiteral{Value: "small"}, stringSchema)

	caseOf := &program.CaseOf{
		Scrutinee: scrutinee,
		Cases: []program.Case{
			{Pattern: guardPat, Body: bigLit},
			{Pattern: wildcardPat, Body: smallLit},
		},
	}
	caseOf.Id = prog.NextExprId()
	prog.RegisterExpr(caseOf)
	prog.ExprTypes[caseOf.ExprId()] = stringSchema

	mainFn := &program.Function{
		Kind: program.KindNamedFunction, Module: "Main", Name: "main",
		HasBody: true, Body: caseOf, SchematicType: stringSchema,
	}
	mainId := prog.AddFunction(mainFn)

	ev := eval.New(prog, nil, newRegistry().Lookup, 1000)

	result, err := ev.Call(mainId, nil, stringConcrete)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := result.(eval.String)
	if !ok || got.V != "big" {
		t.Fatalf("expected String \"big\", got %#v", result)
	}
}

// newEqClass registers an `Eq` class with a single `opEq` member (schematic
// type `a -> a -> Bool`) and an `Eq Int` instance backed by the Int.opEq
// extern, returning the member for DispatchClassMember calls.
func newEqClass(prog *program.Program, eqIntFn ids.FunctionId) *program.ClassMember {
	class := &program.Class{Name: "Eq", ArgVar: 0, MemberByName: map[string]ids.ClassMemberId{}}
	classId := prog.AddClass(class)

	member := &program.ClassMember{
		Class: classId, Name: "opEq", ClassArgVar: 0,
		SchematicType: langtypes.Curry([]langtypes.Type{langtypes.Var{Index: 0}, langtypes.Var{Index: 0}}, boolSchema),
	}
	memberId := prog.AddClassMember(member)
	class.MemberOrder = []ids.ClassMemberId{memberId}
	class.MemberByName["opEq"] = memberId

	prog.AddInstance(&program.Instance{
		Class: classId, Head: intSchema,
		Members: map[ids.ClassMemberId]ids.FunctionId{memberId: eqIntFn},
	})
	return member
}

// TestPolymorphicIdentityViaClassDispatch builds `id x = x` and checks that
// `id 42` dispatched through the Eq class's opEq member against a bare 42
// reports equal — id's own schematic type (`a -> a`) carries no concrete
// type until instantiated at the call site, and opEq's instance selection
// must still land on Eq Int.
func TestPolymorphicIdentityViaClassDispatch(t *testing.T) {
	prog := program.New()

	idFn := &program.Function{
		Kind: program.KindNamedFunction, Module: "Main", Name: "id", ExplicitArity: 1, HasBody: true,
		SchematicType: langtypes.Curry([]langtypes.Type{langtypes.Var{Index: 0}}, langtypes.Var{Index: 0}),
	}
	idId := prog.AddFunction(idFn)
	idFn.Body = reg(prog, &program.ArgRef{Function: idId, Index: 0}, langtypes.Var{Index: 0})

	eqIntFn := &program.Function{
		Kind: program.KindNamedFunction, Module: "Int", Name: "opEq", ExplicitArity: 2, HasBody: false,
		SchematicType: langtypes.Curry([]langtypes.Type{intSchema, intSchema}, boolSchema),
	}
	eqIntId := prog.AddFunction(eqIntFn)
	member := newEqClass(prog, eqIntId)

	resolver := resolve.New(prog)
	ev := eval.New(prog, resolver, newRegistry().Lookup, 1000)

	idResult, err := ev.Call(idId, []eval.Value{eval.Int{V: 42, T: intConcrete}}, intConcrete)
	if err != nil {
		t.Fatalf("id 42: unexpected error: %v", err)
	}

	eqResult, err := ev.DispatchClassMember(member, []eval.Value{idResult, eval.Int{V: 42, T: intConcrete}}, boolConcrete)
	if err != nil {
		t.Fatalf("opEq dispatch: unexpected error: %v", err)
	}
	got, ok := eqResult.(eval.Bool)
	if !ok || !got.V {
		t.Fatalf("expected Bool true, got %#v", eqResult)
	}
}

// TestClassDefaultMethodDispatch builds a class whose `ne` member has no
// instance-level implementation, only a default body (`ne x y = not (eq x
// y)`), and checks dispatching `ne` on an Eq Int instance falls through to
// that default and calls back into the instance's own `eq`.
func TestClassDefaultMethodDispatch(t *testing.T) {
	prog := program.New()

	eqIntFn := &program.Function{
		Kind: program.KindNamedFunction, Module: "Int", Name: "opEq", ExplicitArity: 2, HasBody: false,
		SchematicType: langtypes.Curry([]langtypes.Type{intSchema, intSchema}, boolSchema),
	}
	eqIntId := prog.AddFunction(eqIntFn)

	notFn := &program.Function{
		Kind: program.KindNamedFunction, Module: "Std.Ops", Name: "not", ExplicitArity: 1, HasBody: false,
		SchematicType: langtypes.Curry([]langtypes.Type{boolSchema}, boolSchema),
	}
	notId := prog.AddFunction(notFn)

	class := &program.Class{Name: "Eq", ArgVar: 0, MemberByName: map[string]ids.ClassMemberId{}}
	classId := prog.AddClass(class)

	eqMember := &program.ClassMember{
		Class: classId, Name: "eq", ClassArgVar: 0,
		SchematicType: langtypes.Curry([]langtypes.Type{langtypes.Var{Index: 0}, langtypes.Var{Index: 0}}, boolSchema),
	}
	eqMemberId := prog.AddClassMember(eqMember)

	// ne x y = not (eq x y), built as a free-standing function that becomes
	// ne's default implementation. It calls back through the ne member's own
	// sibling `eq` member via ClassFunctionCall, exactly as a class default
	// method body would.
	neDefaultFn := &program.Function{
		Kind: program.KindNamedFunction, Module: "Main", Name: "ne$default", ExplicitArity: 2, HasBody: true,
		SchematicType: langtypes.Curry([]langtypes.Type{langtypes.Var{Index: 0}, langtypes.Var{Index: 0}}, boolSchema),
	}
	neDefaultId := prog.AddFunction(neDefaultFn)
	a := reg(prog, &program.ArgRef{Function: neDefaultId, Index: 0}, langtypes.Var{Index: 0})
	b := reg(prog, &program.ArgRef{Function: neDefaultId, Index: 1}, langtypes.Var{Index: 0})
	eqCall := reg(prog, &program.ClassFunctionCall{Member: eqMemberId, Args: []program.Expr{a, b}}, boolSchema)
	neDefaultFn.Body = reg(prog, &program.StaticFunctionCall{Function: notId, Args: []program.Expr{eqCall}}, boolSchema)

	neMember := &program.ClassMember{
		Class: classId, Name: "ne", ClassArgVar: 0,
		SchematicType:   langtypes.Curry([]langtypes.Type{langtypes.Var{Index: 0}, langtypes.Var{Index: 0}}, boolSchema),
		HasDefault:      true,
		DefaultFunction: neDefaultId,
	}
	neMemberId := prog.AddClassMember(neMember)
	class.MemberOrder = []ids.ClassMemberId{eqMemberId, neMemberId}
	class.MemberByName["eq"] = eqMemberId
	class.MemberByName["ne"] = neMemberId

	prog.AddInstance(&program.Instance{
		Class: classId, Head: intSchema,
		Members: map[ids.ClassMemberId]ids.FunctionId{eqMemberId: eqIntId},
	})

	externReg := extern.NewRegistry()
	extern.RegisterCore(externReg, extern.Builtins{})
	externReg.Register("Std.Ops", "not", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		return eval.Bool{V: !args[0].(eval.Bool).V, T: exp}, nil
	})

	resolver := resolve.New(prog)
	ev := eval.New(prog, resolver, externReg.Lookup, 1000)

	result, err := ev.DispatchClassMember(neMember, []eval.Value{
		eval.Int{V: 1, T: intConcrete}, eval.Int{V: 2, T: intConcrete},
	}, boolConcrete)
	if err != nil {
		t.Fatalf("ne dispatch: unexpected error: %v", err)
	}
	got, ok := result.(eval.Bool)
	if !ok || !got.V {
		t.Fatalf("expected Bool true (1 != 2), got %#v", result)
	}
}
