package eval

import "github.com/jaffa4/siko/internal/ids"

// Environment is a linked-stack of frames. The call-root frame of a
// function activation holds the flat positional argument slice (implicit
// captured values followed by explicit arguments); every frame, including
// nested ones created for a Do block or a CaseOf arm, holds a mapping from
// PatternId to the value a pattern bound. BlockChild defers lookups that
// miss locally to the parent.
type Environment struct {
	parent        *Environment
	args          []Value
	implicitCount int
	bindings      map[ids.PatternId]Value
}

// NewCallEnvironment builds the root frame for one function activation:
// args is the flat [implicit...][explicit...] slice, implicitCount the
// size of its implicit prefix.
func NewCallEnvironment(args []Value, implicitCount int) *Environment {
	return &Environment{args: args, implicitCount: implicitCount, bindings: map[ids.PatternId]Value{}}
}

// BlockChild creates an inner frame that defers to parent on a local miss.
func (e *Environment) BlockChild() *Environment {
	return &Environment{parent: e, bindings: map[ids.PatternId]Value{}}
}

// Arg fetches a function argument by position; captured is true for a
// lambda's closed-over slot (not offset by the implicit-arg count).
func (e *Environment) Arg(index int, captured bool) Value {
	if e.args != nil {
		slot := index
		if !captured {
			slot += e.implicitCount
		}
		return e.args[slot]
	}
	if e.parent != nil {
		return e.parent.Arg(index, captured)
	}
	panic("ArgRef: no enclosing function frame")
}

// Bind records the value a pattern matched in the current frame.
func (e *Environment) Bind(pid ids.PatternId, v Value) {
	e.bindings[pid] = v
}

// Lookup fetches the value a pattern previously bound, searching outward.
func (e *Environment) Lookup(pid ids.PatternId) (Value, bool) {
	if v, ok := e.bindings[pid]; ok {
		return v, true
	}
	if e.parent != nil {
		return e.parent.Lookup(pid)
	}
	return nil, false
}

// snapshot captures this frame's own bindings (not the parent's, and not
// args) so a failed pattern match can roll back without touching the
// caller's view of the environment (spec.md §8 property 4 "Pattern
// matching rollback").
func (e *Environment) snapshot() map[ids.PatternId]Value {
	cp := make(map[ids.PatternId]Value, len(e.bindings))
	for k, v := range e.bindings {
		cp[k] = v
	}
	return cp
}

func (e *Environment) restore(snap map[ids.PatternId]Value) {
	e.bindings = snap
}
