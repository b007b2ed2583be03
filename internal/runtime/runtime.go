// Package runtime wires the process-wide evaluator context (L9): it locates
// the language's own Bool/Ordering/Option ADTs and Show/Eq/Ord classes
// within an already-checked Program, and installs the reentrant dispatch
// hooks (Show, in particular) that externs and the Formatter expression
// need but cannot reach through the ordinary call path.
package runtime

import (
	"fmt"

	"github.com/jaffa4/siko/internal/config"
	"github.com/jaffa4/siko/internal/eval"
	"github.com/jaffa4/siko/internal/extern"
	"github.com/jaffa4/siko/internal/ids"
	"github.com/jaffa4/siko/internal/langtypes"
	"github.com/jaffa4/siko/internal/program"
	"github.com/jaffa4/siko/internal/resolve"
)

// Runtime bundles the Evaluator with the handles the built-in Show/Eq/Ord
// dispatch needs, resolved once per process.
type Runtime struct {
	Ev   *eval.Evaluator
	Prog *program.Program

	boolType ids.TypeDefId

	orderingType ids.TypeDefId
	ltCtor       ids.FunctionId
	eqCtor       ids.FunctionId
	gtCtor       ids.FunctionId

	optionType ids.TypeDefId
	noneCtor   ids.FunctionId
	someCtor   ids.FunctionId
	stringType ids.TypeDefId

	showClass  *program.Class
	showMember *program.ClassMember
	eqClass    *program.Class
	eqMember   *program.ClassMember
	ordClass   *program.Class
	cmpMember  *program.ClassMember
}

// Init locates the prelude ADTs/classes the evaluator needs reentrant
// access to, builds the extern registry, and wires everything into one
// Evaluator. The Program is expected to already define Bool, Ordering,
// Option and the Show/Eq/Ord classes exactly like any other IR-level
// ADT/class, supplied by the program's producer alongside user code; Init
// only ever looks them up, never synthesizes them.
func Init(prog *program.Program, resolver *resolve.Resolver, maxCallDepth int) (*Runtime, error) {
	rt := &Runtime{Prog: prog}

	var err error
	if rt.boolType, err = findTypeDefByName(prog, config.BoolTypeName); err != nil {
		return nil, err
	}
	if rt.orderingType, err = findTypeDefByName(prog, config.OrderingTypeName); err != nil {
		return nil, err
	}
	if rt.optionType, err = findTypeDefByName(prog, config.OptionTypeName); err != nil {
		return nil, err
	}
	if rt.stringType, err = findTypeDefByName(prog, "String"); err != nil {
		return nil, err
	}
	orderingDef := prog.TypeDef(rt.orderingType)
	rt.ltCtor, err = findVariantCtor(orderingDef, config.OrderingLTVariant)
	if err != nil {
		return nil, err
	}
	rt.eqCtor, err = findVariantCtor(orderingDef, config.OrderingEQVariant)
	if err != nil {
		return nil, err
	}
	rt.gtCtor, err = findVariantCtor(orderingDef, config.OrderingGTVariant)
	if err != nil {
		return nil, err
	}

	optionDef := prog.TypeDef(rt.optionType)
	rt.noneCtor, err = findVariantCtor(optionDef, config.OptionNoneVariant)
	if err != nil {
		return nil, err
	}
	rt.someCtor, err = findVariantCtor(optionDef, config.OptionSomeVariant)
	if err != nil {
		return nil, err
	}

	if rt.showClass, rt.showMember, err = findClassMember(prog, config.ShowClassName, config.ShowMemberName); err != nil {
		return nil, err
	}
	if rt.eqClass, rt.eqMember, err = findClassMember(prog, config.EqClassName, config.EqMemberName); err != nil {
		return nil, err
	}
	if rt.ordClass, rt.cmpMember, err = findClassMember(prog, config.OrdClassName, config.CmpMemberName); err != nil {
		return nil, err
	}

	reg := extern.NewRegistry()
	extern.RegisterCore(reg, extern.Builtins{Ordering: rt.makeOrdering, Option: rt.makeOption})

	rt.Ev = eval.New(prog, resolver, reg.Lookup, maxCallDepth)
	rt.Ev.Show = rt.Show
	rt.Ev.OpEq = rt.OpEq
	return rt, nil
}

func findTypeDefByName(prog *program.Program, name string) (ids.TypeDefId, error) {
	for _, id := range prog.TypeDefOrder {
		if prog.TypeDef(id).Name == name {
			return id, nil
		}
	}
	return 0, fmt.Errorf("runtime: no %q type definition in program", name)
}

func findVariantCtor(td *program.TypeDef, variantName string) (ids.FunctionId, error) {
	for _, v := range td.Variants {
		if v.Name == variantName {
			return v.Constructor, nil
		}
	}
	return 0, fmt.Errorf("runtime: %q has no variant %q", td.Name, variantName)
}

func findClassMember(prog *program.Program, className, memberName string) (*program.Class, *program.ClassMember, error) {
	for _, id := range prog.ClassOrder {
		c := prog.Class(id)
		if c.Name != className {
			continue
		}
		mid, ok := c.MemberByName[memberName]
		if !ok {
			return nil, nil, fmt.Errorf("runtime: class %q has no member %q", className, memberName)
		}
		return c, prog.ClassMember(mid), nil
	}
	return nil, nil, fmt.Errorf("runtime: no class %q in program", className)
}

func (rt *Runtime) orderingConcrete() langtypes.Concrete {
	return langtypes.CNamed{Name: config.OrderingTypeName, Def: rt.orderingType}
}

func (rt *Runtime) makeOrdering(sign int) (eval.Value, error) {
	var ctor ids.FunctionId
	switch {
	case sign < 0:
		ctor = rt.ltCtor
	case sign > 0:
		ctor = rt.gtCtor
	default:
		ctor = rt.eqCtor
	}
	return rt.Ev.Call(ctor, nil, rt.orderingConcrete())
}

// makeOption builds None (ignoring value) or Some(value) under expected, the
// call site's concrete Option<T> type.
func (rt *Runtime) makeOption(found bool, value eval.Value, expected langtypes.Concrete) (eval.Value, error) {
	if !found {
		return rt.Ev.Call(rt.noneCtor, nil, expected)
	}
	return rt.Ev.Call(rt.someCtor, []eval.Value{value}, expected)
}

// Show renders v using the language's own Show class dispatch: the concrete
// type dictates the instance, exactly like any other class-member call.
func (rt *Runtime) Show(v eval.Value) (string, error) {
	stringConcrete := langtypes.CNamed{Name: "String", Def: rt.stringType}
	result, err := rt.Ev.DispatchClassMember(rt.showMember, []eval.Value{v}, stringConcrete)
	if err != nil {
		return "", err
	}
	s, ok := result.(eval.String)
	if !ok {
		return "", fmt.Errorf("runtime: Show instance did not return a String")
	}
	return s.V, nil
}

// OpEq dispatches the Eq class's opEq member for a and b, which must share a
// concrete type.
func (rt *Runtime) OpEq(a, b eval.Value) (bool, error) {
	boolConcrete := langtypes.CNamed{Name: config.BoolTypeName, Def: rt.boolType}
	result, err := rt.Ev.DispatchClassMember(rt.eqMember, []eval.Value{a, b}, boolConcrete)
	if err != nil {
		return false, err
	}
	return result.(eval.Bool).V, nil
}

// Cmp dispatches the Ord class's cmp member for a and b, which must share a
// concrete type, returning the Ordering value.
func (rt *Runtime) Cmp(a, b eval.Value) (eval.Value, error) {
	return rt.Ev.DispatchClassMember(rt.cmpMember, []eval.Value{a, b}, rt.orderingConcrete())
}
