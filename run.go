// Package siko is the entry point: given a Program, it checks instances
// and types, locates Main.main and evaluates it.
package siko

import (
	"fmt"

	"github.com/jaffa4/siko/internal/check"
	"github.com/jaffa4/siko/internal/config"
	"github.com/jaffa4/siko/internal/eval"
	"github.com/jaffa4/siko/internal/ids"
	"github.com/jaffa4/siko/internal/langtypes"
	"github.com/jaffa4/siko/internal/program"
	"github.com/jaffa4/siko/internal/resolve"
	"github.com/jaffa4/siko/internal/runtime"
	"github.com/jaffa4/siko/internal/synth"
)

// Options configures a Run.
type Options struct {
	// MaxCallDepth bounds recursion; <= 0 selects the configured default.
	MaxCallDepth int
}

// Run type-checks prog, then evaluates Main.main with no arguments: the
// producer hands over a fully built Program (every function/ADT/class/
// instance already present, schematic types already synthesized from their
// surface signatures), Run reports every type error it finds and otherwise
// evaluates the program to a single result value.
func Run(prog *program.Program, opts Options) (eval.Value, error) {
	resolver := resolve.New(prog)
	if errs := resolver.CheckConflicts(); len(errs) > 0 {
		return nil, combine(errs)
	}

	// Inference needs its own fresh-variable source for out-of-group clones
	// and inline TypedPattern signatures; it must resume past every index the
	// producer already used building the program's initial schematic types.
	alloc := langtypes.NewAllocatorAfter(maxVarIndex(prog) + 1)
	s := synth.New(alloc)

	builtins, err := findBuiltins(prog)
	if err != nil {
		return nil, err
	}
	checker := check.New(prog, alloc, resolver, s, builtins)
	if errs := checker.CheckAll(); len(errs) > 0 {
		return nil, combine(errs)
	}

	rt, err := runtime.Init(prog, resolver, opts.MaxCallDepth)
	if err != nil {
		return nil, err
	}

	mainFn, ok := prog.LookupFunction(config.ModuleMain, config.MainFunctionName)
	if !ok {
		return nil, fmt.Errorf("no %s.%s function in program", config.ModuleMain, config.MainFunctionName)
	}
	f := prog.Function(mainFn)
	resultType, err := langtypes.ToConcrete(f.SchematicType, langtypes.SubstContext{})
	if err != nil {
		return nil, fmt.Errorf("%s.%s must have a fully concrete type: %w", config.ModuleMain, config.MainFunctionName, err)
	}
	return rt.Ev.Call(mainFn, nil, resultType)
}

func combine(errs []error) error {
	msg := fmt.Sprintf("%d error(s):", len(errs))
	for _, e := range errs {
		msg += "\n  " + e.Error()
	}
	return fmt.Errorf("%s", msg)
}

func findBuiltins(prog *program.Program) (check.Builtins, error) {
	var b check.Builtins
	find := func(name string) (ids.TypeDefId, error) {
		for _, id := range prog.TypeDefOrder {
			if prog.TypeDef(id).Name == name {
				return id, nil
			}
		}
		return 0, fmt.Errorf("no %q type definition in program", name)
	}
	var err error
	if b.Int, err = find("Int"); err != nil {
		return b, err
	}
	if b.Float, err = find("Float"); err != nil {
		return b, err
	}
	if b.Bool, err = find(config.BoolTypeName); err != nil {
		return b, err
	}
	if b.String, err = find("String"); err != nil {
		return b, err
	}
	if b.List, err = find("List"); err != nil {
		return b, err
	}
	return b, nil
}

// maxVarIndex scans every schematic type already present in prog and
// returns the highest variable index used, or -1 if none.
func maxVarIndex(prog *program.Program) int {
	max := -1
	bump := func(t langtypes.Type) {
		if t == nil {
			return
		}
		for _, idx := range t.FreeVars() {
			if idx > max {
				max = idx
			}
		}
	}
	for _, id := range prog.FuncOrder {
		bump(prog.Function(id).SchematicType)
	}
	for _, id := range prog.TypeDefOrder {
		td := prog.TypeDef(id)
		for _, v := range td.Variants {
			for _, item := range v.Items {
				bump(item)
			}
		}
		for _, f := range td.Fields {
			bump(f.Type)
		}
	}
	for _, id := range prog.MemberOrder {
		bump(prog.ClassMember(id).SchematicType)
	}
	for _, id := range prog.InstanceOrder {
		inst := prog.Instance(id)
		bump(inst.Head)
		for _, c := range inst.Constraints {
			bump(c.Type)
		}
	}
	return max
}
