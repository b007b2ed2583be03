// Package extern implements L8: the extern dispatch registry and the
// built-in Int/Float/String/List/Map/Std.Ops/Std.Util implementations a
// NamedFunction with no body resolves to at call time.
package extern

import (
	"sync"

	"github.com/jaffa4/siko/internal/eval"
)

// Registry maps module -> name -> implementation. Registration happens once
// at process startup (RegisterCore populates the built-in modules); lookups
// happen on every extern call during evaluation, potentially from several
// goroutines if a host embeds this evaluator concurrently, so reads and
// writes are both guarded.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]map[string]eval.ExternFunction
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{modules: map[string]map[string]eval.ExternFunction{}}
}

// Register installs fn as module.name's implementation, overwriting any
// earlier registration.
func (r *Registry) Register(module, name string, fn eval.ExternFunction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.modules[module]
	if m == nil {
		m = map[string]eval.ExternFunction{}
		r.modules[module] = m
	}
	m[name] = fn
}

// Lookup implements eval.ExternLookup.
func (r *Registry) Lookup(module, name string) (eval.ExternFunction, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.modules[module][name]
	return fn, ok
}
