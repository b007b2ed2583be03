package eval

import (
	"fmt"
	"strings"

	"github.com/jaffa4/siko/internal/langtypes"
	"github.com/jaffa4/siko/internal/program"
)

// evalFormatter evaluates every argument and substitutes its Show rendering
// for the next "{}" placeholder, left to right.
func (ev *Evaluator) evalFormatter(n *program.Formatter, env *Environment, ctx langtypes.SubstContext) (Value, error) {
	if ev.Show == nil {
		return nil, fmt.Errorf("formatter: no Show dispatch installed")
	}
	var b strings.Builder
	rest := n.Format
	for _, arg := range n.Args {
		idx := strings.Index(rest, "{}")
		if idx < 0 {
			return nil, fmt.Errorf("formatter: fewer placeholders than arguments")
		}
		b.WriteString(rest[:idx])
		v, err := ev.evalExpr(arg, env, ctx)
		if err != nil {
			return nil, err
		}
		s, err := ev.Show(v)
		if err != nil {
			return nil, err
		}
		b.WriteString(s)
		rest = rest[idx+2:]
	}
	b.WriteString(rest)
	return String{V: b.String(), T: ev.exprConcrete(n.ExprId(), ctx)}, nil
}
