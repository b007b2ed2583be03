// Package check implements the expression/pattern typer (L5) and the
// call-site substitution-context computation (L6) of spec.md §4.4–§4.5.
package check

import (
	"github.com/jaffa4/siko/internal/ids"
	"github.com/jaffa4/siko/internal/program"
)

// Group is one strongly connected component of the static/class call
// graph among functions with bodies: spec.md §4.4 "dependency grouping".
type Group struct {
	Functions []ids.FunctionId
}

// BuildGroups computes the dependency graph's SCCs over every NamedFunction
// and Lambda with a body, and returns them in reverse topological order
// (callees' groups before their callers') using Tarjan's algorithm.
func BuildGroups(prog *program.Program) []Group {
	nodes := map[ids.FunctionId]bool{}
	for _, id := range prog.FuncOrder {
		fn := prog.Function(id)
		if fn.HasBody {
			nodes[id] = true
		}
	}

	edges := map[ids.FunctionId][]ids.FunctionId{}
	for id := range nodes {
		fn := prog.Function(id)
		edges[id] = callees(prog, fn.Body, nodes)
	}

	t := &tarjan{
		prog:    prog,
		edges:   edges,
		index:   map[ids.FunctionId]int{},
		lowlink: map[ids.FunctionId]int{},
		onStack: map[ids.FunctionId]bool{},
	}
	for id := range nodes {
		if _, seen := t.index[id]; !seen {
			t.strongconnect(id)
		}
	}
	// Tarjan emits SCCs in reverse topological order already (a component is
	// closed out only once everything it depends on has been).
	out := make([]Group, len(t.sccs))
	copy(out, t.sccs)
	return out
}

// callees collects every FunctionId statically reachable from e: direct
// StaticFunctionCall targets, plus every implementation (default and every
// instance's) of a ClassFunctionCall's member, restricted to ids present in
// nodes.
func callees(prog *program.Program, e program.Expr, nodes map[ids.FunctionId]bool) []ids.FunctionId {
	var out []ids.FunctionId
	add := func(id ids.FunctionId) {
		if nodes[id] {
			out = append(out, id)
		}
	}
	var walkExpr func(program.Expr)
	var walkPattern func(program.Pattern)

	walkExpr = func(e program.Expr) {
		if e == nil {
			return
		}
		switch n := e.(type) {
		case *program.StaticFunctionCall:
			add(n.Function)
			for _, a := range n.Args {
				walkExpr(a)
			}
		case *program.ClassFunctionCall:
			member := prog.ClassMember(n.Member)
			if member.HasDefault {
				add(member.DefaultFunction)
			}
			for _, instId := range prog.InstanceOrder {
				inst := prog.Instance(instId)
				if inst.Class == member.Class {
					if fid, ok := inst.Members[member.Id]; ok {
						add(fid)
					}
				}
			}
			for _, a := range n.Args {
				walkExpr(a)
			}
		case *program.DynamicFunctionCall:
			walkExpr(n.Callee)
			for _, a := range n.Args {
				walkExpr(a)
			}
		case *program.If:
			walkExpr(n.Cond)
			walkExpr(n.Then)
			walkExpr(n.Else)
		case *program.TupleExpr:
			for _, it := range n.Items {
				walkExpr(it)
			}
		case *program.ListExpr:
			for _, it := range n.Items {
				walkExpr(it)
			}
		case *program.TupleFieldAccess:
			walkExpr(n.Receiver)
		case *program.FieldAccess:
			walkExpr(n.Receiver)
		case *program.RecordInitialization:
			for _, it := range n.Items {
				walkExpr(it.Value)
			}
		case *program.RecordUpdate:
			walkExpr(n.Receiver)
			for _, opt := range n.Options {
				for _, it := range opt.Items {
					walkExpr(it.Value)
				}
			}
		case *program.Do:
			for _, it := range n.Exprs {
				walkExpr(it)
			}
		case *program.Bind:
			walkPattern(n.Pattern)
			walkExpr(n.Rhs)
		case *program.CaseOf:
			walkExpr(n.Scrutinee)
			for _, c := range n.Cases {
				walkPattern(c.Pattern)
				walkExpr(c.Body)
			}
		case *program.Formatter:
			for _, a := range n.Args {
				walkExpr(a)
			}
		}
	}

	walkPattern = func(p program.Pattern) {
		if g, ok := p.(*program.GuardedPattern); ok {
			walkExpr(g.Guard)
		}
	}

	walkExpr(e)
	return out
}

type tarjan struct {
	prog    *program.Program
	edges   map[ids.FunctionId][]ids.FunctionId
	counter int
	index   map[ids.FunctionId]int
	lowlink map[ids.FunctionId]int
	onStack map[ids.FunctionId]bool
	stack   []ids.FunctionId
	sccs    []Group
}

func (t *tarjan) strongconnect(v ids.FunctionId) {
	t.index[v] = t.counter
	t.lowlink[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.edges[v] {
		if _, seen := t.index[w]; !seen {
			t.strongconnect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.lowlink[v] {
				t.lowlink[v] = t.index[w]
			}
		}
	}

	if t.lowlink[v] == t.index[v] {
		var group []ids.FunctionId
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			group = append(group, w)
			if w == v {
				break
			}
		}
		t.sccs = append(t.sccs, Group{Functions: group})
	}
}
