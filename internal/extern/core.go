package extern

import (
	"fmt"
	"strconv"

	"github.com/jaffa4/siko/internal/config"
	"github.com/jaffa4/siko/internal/eval"
	"github.com/jaffa4/siko/internal/langtypes"
)

// Builtins supplies the few runtime-constructed values an extern needs but
// cannot build on its own: the Ordering variant a comparison produces is an
// ADT value whose TypeDefId/constructor FunctionIds only exist once package
// runtime has located the Ordering type in the program, so construction is
// injected rather than hardcoded here.
type Builtins struct {
	// Ordering builds the Ordering value for sign < 0 (LT), == 0 (EQ), or
	// > 0 (GT).
	Ordering func(sign int) (eval.Value, error)

	// Option builds an Option value: None when found is false, Some(value)
	// when found is true, under the call site's expected Option<T>
	// concrete type. Like Ordering, its TypeDefId/constructor FunctionIds
	// are only known once package runtime has located the Option ADT in
	// the checked program, so construction is injected.
	Option func(found bool, value eval.Value, expected langtypes.Concrete) (eval.Value, error)
}

// RegisterCore installs every built-in module extern into reg.
func RegisterCore(reg *Registry, bi Builtins) {
	registerInt(reg, bi)
	registerFloat(reg, bi)
	registerString(reg, bi)
	registerList(reg, bi)
	registerMap(reg, bi)
	registerStdUtilBasic(reg)
}

func asInt(v eval.Value) int64     { return v.(eval.Int).V }
func asFloat(v eval.Value) float64 { return v.(eval.Float).V }
func asString(v eval.Value) string { return v.(eval.String).V }
func asBool(v eval.Value) bool     { return v.(eval.Bool).V }

func registerInt(reg *Registry, bi Builtins) {
	reg.Register(config.ModuleInt, "opAdd", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		return eval.Int{V: asInt(args[0]) + asInt(args[1]), T: exp}, nil
	})
	reg.Register(config.ModuleInt, "opSub", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		return eval.Int{V: asInt(args[0]) - asInt(args[1]), T: exp}, nil
	})
	reg.Register(config.ModuleInt, "opMul", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		return eval.Int{V: asInt(args[0]) * asInt(args[1]), T: exp}, nil
	})
	reg.Register(config.ModuleInt, "opDiv", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		divisor := asInt(args[1])
		if divisor == 0 {
			return nil, &eval.AbortError{Message: "division by zero"}
		}
		// Go's integer division already truncates toward zero.
		return eval.Int{V: asInt(args[0]) / divisor, T: exp}, nil
	})
	reg.Register(config.ModuleInt, "opEq", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		return eval.Bool{V: asInt(args[0]) == asInt(args[1]), T: exp}, nil
	})
	reg.Register(config.ModuleInt, "cmp", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		return bi.Ordering(intSign(asInt(args[0]) - asInt(args[1])))
	})
	// partialCmp wraps the Ordering in Some, under the call site's
	// Option<Ordering> type.
	reg.Register(config.ModuleInt, "partialCmp", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		ord, err := bi.Ordering(intSign(asInt(args[0]) - asInt(args[1])))
		if err != nil {
			return nil, err
		}
		return bi.Option(true, ord, exp)
	})
	reg.Register(config.ModuleInt, "show", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		return eval.String{V: strconv.FormatInt(asInt(args[0]), 10), T: exp}, nil
	})
}

func registerFloat(reg *Registry, bi Builtins) {
	reg.Register(config.ModuleFloat, "opAdd", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		return eval.Float{V: asFloat(args[0]) + asFloat(args[1]), T: exp}, nil
	})
	reg.Register(config.ModuleFloat, "opSub", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		return eval.Float{V: asFloat(args[0]) - asFloat(args[1]), T: exp}, nil
	})
	reg.Register(config.ModuleFloat, "opMul", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		return eval.Float{V: asFloat(args[0]) * asFloat(args[1]), T: exp}, nil
	})
	reg.Register(config.ModuleFloat, "opDiv", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		divisor := asFloat(args[1])
		if divisor == 0 {
			return nil, &eval.AbortError{Message: "division by zero"}
		}
		return eval.Float{V: asFloat(args[0]) / divisor, T: exp}, nil
	})
	reg.Register(config.ModuleFloat, "opEq", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		return eval.Bool{V: asFloat(args[0]) == asFloat(args[1]), T: exp}, nil
	})
	reg.Register(config.ModuleFloat, "cmp", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		a, b := asFloat(args[0]), asFloat(args[1])
		switch {
		case a < b:
			return bi.Ordering(-1)
		case a > b:
			return bi.Ordering(1)
		default:
			return bi.Ordering(0)
		}
	})
	// partialCmp wraps the Ordering in Some, under the call site's
	// Option<Ordering> type.
	reg.Register(config.ModuleFloat, "partialCmp", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		a, b := asFloat(args[0]), asFloat(args[1])
		sign := 0
		switch {
		case a < b:
			sign = -1
		case a > b:
			sign = 1
		}
		ord, err := bi.Ordering(sign)
		if err != nil {
			return nil, err
		}
		return bi.Option(true, ord, exp)
	})
	// Float.show uses the shortest round-tripping decimal representation
	//.
	reg.Register(config.ModuleFloat, "show", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		return eval.String{V: strconv.FormatFloat(asFloat(args[0]), 'g', -1, 64), T: exp}, nil
	})
}

func registerString(reg *Registry, bi Builtins) {
	reg.Register(config.ModuleString, "opAdd", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		return eval.String{V: asString(args[0]) + asString(args[1]), T: exp}, nil
	})
	reg.Register(config.ModuleString, "opEq", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		return eval.Bool{V: asString(args[0]) == asString(args[1]), T: exp}, nil
	})
	reg.Register(config.ModuleString, "cmp", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		a, b := asString(args[0]), asString(args[1])
		switch {
		case a < b:
			return bi.Ordering(-1)
		case a > b:
			return bi.Ordering(1)
		default:
			return bi.Ordering(0)
		}
	})
	reg.Register(config.ModuleString, "show", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		return eval.String{V: strconv.Quote(asString(args[0])), T: exp}, nil
	})
	reg.Register(config.ModuleString, "length", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		return eval.Int{V: int64(len([]rune(asString(args[0])))), T: exp}, nil
	})
}

func registerList(reg *Registry, bi Builtins) {
	reg.Register(config.ModuleList, "length", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		return eval.Int{V: int64(len(args[0].(eval.List).Items)), T: exp}, nil
	})
	reg.Register(config.ModuleList, "isEmpty", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		return eval.Bool{V: len(args[0].(eval.List).Items) == 0, T: exp}, nil
	})
	reg.Register(config.ModuleList, "head", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		items := args[0].(eval.List).Items
		if len(items) == 0 {
			return nil, &eval.AbortError{Message: "head of empty list"}
		}
		return items[0], nil
	})
	reg.Register(config.ModuleList, "tail", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		items := args[0].(eval.List).Items
		if len(items) == 0 {
			return nil, &eval.AbortError{Message: "tail of empty list"}
		}
		return eval.List{Items: items[1:], T: exp}, nil
	})
	reg.Register(config.ModuleList, "append", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		a := args[0].(eval.List).Items
		b := args[1].(eval.List).Items
		out := make([]eval.Value, 0, len(a)+len(b))
		out = append(out, a...)
		out = append(out, b...)
		return eval.List{Items: out, T: exp}, nil
	})
	reg.Register(config.ModuleList, "push", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		items := args[0].(eval.List).Items
		out := make([]eval.Value, 0, len(items)+1)
		out = append(out, items...)
		out = append(out, args[1])
		return eval.List{Items: out, T: exp}, nil
	})
	reg.Register(config.ModuleList, "get", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		items := args[0].(eval.List).Items
		idx := asInt(args[1])
		if idx < 0 || int(idx) >= len(items) {
			return nil, &eval.AbortError{Message: "list index out of range"}
		}
		return items[idx], nil
	})
	// List.map applies the given function (args[0]) to every element of
	// the list (args[1]); exp is the already-substituted List<B> result
	// type, so each element call expects exp's sole type argument.
	reg.Register(config.ModuleList, "map", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		fn := args[0]
		items := args[1].(eval.List).Items
		elemType, err := listElemType(exp)
		if err != nil {
			return nil, err
		}
		out := make([]eval.Value, len(items))
		for i, it := range items {
			v, err := ev.InvokeCallable(fn, []eval.Value{it}, elemType)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return eval.List{Items: out, T: exp}, nil
	})
	// List.fold(fn, init, list) threads an accumulator of exp's type
	// through the list left to right.
	reg.Register(config.ModuleList, "fold", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		fn := args[0]
		acc := args[1]
		items := args[2].(eval.List).Items
		for _, it := range items {
			next, err := ev.InvokeCallable(fn, []eval.Value{acc, it}, exp)
			if err != nil {
				return nil, err
			}
			acc = next
		}
		return acc, nil
	})
	reg.Register(config.ModuleList, "equals", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		a := args[0].(eval.List).Items
		b := args[1].(eval.List).Items
		if len(a) != len(b) {
			return eval.Bool{V: false, T: exp}, nil
		}
		for i := range a {
			var same bool
			var err error
			if ev.OpEq != nil {
				same, err = ev.OpEq(a[i], b[i])
				if err != nil {
					return nil, err
				}
			} else {
				same = eval.SameShape(a[i], b[i])
			}
			if !same {
				return eval.Bool{V: false, T: exp}, nil
			}
		}
		return eval.Bool{V: true, T: exp}, nil
	})
}

// listElemType extracts the single type argument of a concrete List<T>
// type, as needed to tell List.map what type each mapped callable call
// should produce.
func listElemType(listType langtypes.Concrete) (langtypes.Concrete, error) {
	named, ok := listType.(langtypes.CNamed)
	if !ok || len(named.Args) != 1 {
		return nil, fmt.Errorf("expected a List<T> concrete type, got %s", listType)
	}
	return named.Args[0], nil
}

func registerMap(reg *Registry, bi Builtins) {
	// The concrete Map representation used by these externs: a List of
	// (key, value) Tuples, linear-scanned. Adequate for an evaluator whose
	// contract is correctness, not asymptotic performance.
	reg.Register(config.ModuleMap, "empty", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		return eval.List{Items: nil, T: exp}, nil
	})
	reg.Register(config.ModuleMap, "size", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		return eval.Int{V: int64(len(args[0].(eval.List).Items)), T: exp}, nil
	})
	reg.Register(config.ModuleMap, "insert", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		m := args[0].(eval.List)
		key, val := args[1], args[2]
		out := make([]eval.Value, 0, len(m.Items)+1)
		replaced := false
		for _, entry := range m.Items {
			t := entry.(eval.Tuple)
			if eval.SameShape(t.Items[0], key) {
				out = append(out, eval.Tuple{Items: []eval.Value{key, val}, T: t.T})
				replaced = true
				continue
			}
			out = append(out, entry)
		}
		if !replaced {
			out = append(out, eval.Tuple{Items: []eval.Value{key, val}, T: langtypes.CTuple{Children: []langtypes.Concrete{key.ConcreteType(), val.ConcreteType()}}})
		}
		return eval.List{Items: out, T: m.T}, nil
	})
	reg.Register(config.ModuleMap, "lookup", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		m := args[0].(eval.List)
		key := args[1]
		for _, entry := range m.Items {
			t := entry.(eval.Tuple)
			if eval.SameShape(t.Items[0], key) {
				return bi.Option(true, t.Items[1], exp)
			}
		}
		return bi.Option(false, nil, exp)
	})
	reg.Register(config.ModuleMap, "remove", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		m := args[0].(eval.List)
		key := args[1]
		out := make([]eval.Value, 0, len(m.Items))
		for _, entry := range m.Items {
			t := entry.(eval.Tuple)
			if eval.SameShape(t.Items[0], key) {
				continue
			}
			out = append(out, entry)
		}
		return eval.List{Items: out, T: m.T}, nil
	})
	reg.Register(config.ModuleMap, "keys", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		m := args[0].(eval.List)
		out := make([]eval.Value, len(m.Items))
		for i, entry := range m.Items {
			out[i] = entry.(eval.Tuple).Items[0]
		}
		return eval.List{Items: out, T: exp}, nil
	})
	reg.Register(config.ModuleMap, "values", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		m := args[0].(eval.List)
		out := make([]eval.Value, len(m.Items))
		for i, entry := range m.Items {
			out[i] = entry.(eval.Tuple).Items[1]
		}
		return eval.List{Items: out, T: exp}, nil
	})
}

// stdUtilModules lists every module spelling the original interpreter's IR
// producer used for these basic utility ops ("Std.Util.Basic" alongside
// the plainer "Std.Ops"/"Std.Util"); registering all three keeps whichever
// spelling a given NamedFunction node carries resolvable.
var stdUtilModules = []string{config.ModuleStdOps, config.ModuleStdUtil, config.ModuleStdUtilBasic}

func registerStdUtilBasic(reg *Registry) {
	registerUnderAll := func(name string, fn eval.ExternFunction) {
		for _, module := range stdUtilModules {
			reg.Register(module, name, fn)
		}
	}

	registerUnderAll("print", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		s, err := ev.Show(args[0])
		if err != nil {
			return nil, err
		}
		fmt.Print(s)
		return eval.Tuple{T: langtypes.CTuple{}}, nil
	})
	registerUnderAll("println", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		s, err := ev.Show(args[0])
		if err != nil {
			return nil, err
		}
		fmt.Println(s)
		return eval.Tuple{T: langtypes.CTuple{}}, nil
	})
	registerUnderAll("abort", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		return nil, &eval.AbortError{Message: asString(args[0])}
	})
	registerUnderAll("assert", func(ev *eval.Evaluator, args []eval.Value, exp langtypes.Concrete) (eval.Value, error) {
		if !asBool(args[0]) {
			msg := "assertion failed"
			if len(args) > 1 {
				msg = asString(args[1])
			}
			return nil, &eval.AbortError{Message: msg}
		}
		return eval.Tuple{T: langtypes.CTuple{}}, nil
	})
}

func intSign(d int64) int {
	switch {
	case d < 0:
		return -1
	case d > 0:
		return 1
	default:
		return 0
	}
}
