package eval

import "veridian-hq/covenant/pkg/dsl/value"

// Env is one scope in the environment stack: a name-to-value mapping with a
// parent pointer. A scope is pushed on function-body entry and popped on
// exit; lookups walk outward through enclosing scopes.
type Env struct {
	bindings map[string]value.Value
	order    []string
	parent   *Env
}

// NewEnv creates a root scope.
func NewEnv() *Env {
	return &Env{bindings: make(map[string]value.Value)}
}

// NewEnclosed creates a child scope of parent.
func NewEnclosed(parent *Env) *Env {
	e := NewEnv()
	e.parent = parent
	return e
}

// Define binds name in this scope, shadowing any outer binding. Re-binding
// an existing name in the same scope keeps its declaration position.
func (e *Env) Define(name string, v value.Value) {
	if _, ok := e.bindings[name]; !ok {
		e.order = append(e.order, name)
	}
	e.bindings[name] = v
}

// Lookup resolves name through this scope and its ancestors.
func (e *Env) Lookup(name string) (value.Value, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.bindings[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Snapshot returns this scope's own bindings as an ordered dict, in
// declaration order. Parent scopes are not included.
func (e *Env) Snapshot() *value.Dict {
	d := value.NewDict()
	for _, name := range e.order {
		d.Set(name, e.bindings[name])
	}
	return d
}
