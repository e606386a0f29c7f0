package eval

import (
	"context"

	"veridian-hq/covenant/pkg/dsl/value"
)

// Caller lets builtin implementations invoke DSL function values (for
// `map`, the flow operations, and similar higher-order builtins).
type Caller interface {
	// Call invokes fn with the given positional and keyword arguments.
	Call(ctx context.Context, fn value.Value, args []value.Value, kwargs map[string]value.Value) (value.Value, error)
}

// Invocation carries the arguments of one builtin call.
type Invocation struct {
	// Name is the operation name the call resolved to.
	Name string
	// Args are the evaluated positional arguments.
	Args []value.Value
	// Kwargs are the evaluated keyword arguments.
	Kwargs map[string]value.Value
	// Caller re-enters the evaluator for function-valued arguments.
	Caller Caller
}

// Arg returns the i-th positional argument, or Nil.
func (inv *Invocation) Arg(i int) value.Value {
	if i < 0 || i >= len(inv.Args) {
		return value.NilValue
	}
	return inv.Args[i]
}

// Kwarg returns the named keyword argument, or Nil.
func (inv *Invocation) Kwarg(name string) value.Value {
	if v, ok := inv.Kwargs[name]; ok {
		return v
	}
	return value.NilValue
}

// BuiltinFunc is the implementation of one standard-library operation.
type BuiltinFunc func(ctx context.Context, inv *Invocation) (value.Value, error)

// Registry is the closed set of standard-library operations available to a
// program. It is fixed at interpreter construction; unknown operation names
// fail at bind time with an UndefinedName error.
type Registry map[string]BuiltinFunc

// Merge returns a new registry containing the operations of r overlaid with
// those of extra. Neither input is modified.
func (r Registry) Merge(extra Registry) Registry {
	out := make(Registry, len(r)+len(extra))
	for name, fn := range r {
		out[name] = fn
	}
	for name, fn := range extra {
		out[name] = fn
	}
	return out
}
