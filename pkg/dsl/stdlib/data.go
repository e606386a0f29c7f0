package stdlib

import (
	"context"
	"fmt"

	"veridian-hq/covenant/pkg/dsl/eval"
	"veridian-hq/covenant/pkg/dsl/value"
)

// opMerge combines dict arguments into a new dict, later keys winning.
func opMerge(ctx context.Context, inv *eval.Invocation) (value.Value, error) {
	out := value.NewDict()
	for i, arg := range inv.Args {
		d, ok := arg.(*value.Dict)
		if !ok {
			return nil, fmt.Errorf("merge: argument %d is %s, want dict", i+1, arg.Kind())
		}
		for _, k := range d.Keys() {
			v, _ := d.Get(k)
			out.Set(k, v)
		}
	}
	return out, nil
}

// opConcat joins its arguments: all strings concatenate into one string,
// otherwise lists (and scalars) flatten into one list.
func opConcat(ctx context.Context, inv *eval.Invocation) (value.Value, error) {
	allStrings := len(inv.Args) > 0
	for _, arg := range inv.Args {
		if _, ok := arg.(value.Str); !ok {
			allStrings = false
			break
		}
	}
	if allStrings {
		var out string
		for _, arg := range inv.Args {
			out += string(arg.(value.Str))
		}
		return value.Str(out), nil
	}

	var out []value.Value
	for _, arg := range inv.Args {
		if elems, ok := listElements(arg); ok {
			out = append(out, elems...)
			continue
		}
		out = append(out, arg)
	}
	return &value.List{Elements: out}, nil
}

// opPick returns the subset of a dict holding only the named keys. Keys may
// be given as trailing string arguments or as one list argument.
func opPick(ctx context.Context, inv *eval.Invocation) (value.Value, error) {
	src, ok := inv.Arg(0).(*value.Dict)
	if !ok {
		return nil, fmt.Errorf("pick: first argument is %s, want dict", inv.Arg(0).Kind())
	}
	names, err := keyNames(inv.Args[1:])
	if err != nil {
		return nil, fmt.Errorf("pick: %w", err)
	}

	out := value.NewDict()
	for _, name := range names {
		if v, found := src.Get(name); found {
			out.Set(name, v)
		}
	}
	return out, nil
}

func keyNames(args []value.Value) ([]string, error) {
	if len(args) == 1 {
		if list, ok := args[0].(*value.List); ok {
			args = list.Elements
		}
	}
	names := make([]string, 0, len(args))
	for _, arg := range args {
		s, ok := arg.(value.Str)
		if !ok {
			return nil, fmt.Errorf("key %s is %s, want str", arg, arg.Kind())
		}
		names = append(names, string(s))
	}
	return names, nil
}

// opKeys lists a dict's keys in declaration order. Non-dicts yield an empty
// list rather than an error.
func opKeys(ctx context.Context, inv *eval.Invocation) (value.Value, error) {
	d, ok := inv.Arg(0).(*value.Dict)
	if !ok {
		return &value.List{}, nil
	}
	keys := d.Keys()
	out := make([]value.Value, len(keys))
	for i, k := range keys {
		out[i] = value.Str(k)
	}
	return &value.List{Elements: out}, nil
}

func opValues(ctx context.Context, inv *eval.Invocation) (value.Value, error) {
	d, ok := inv.Arg(0).(*value.Dict)
	if !ok {
		return &value.List{}, nil
	}
	keys := d.Keys()
	out := make([]value.Value, len(keys))
	for i, k := range keys {
		out[i], _ = d.Get(k)
	}
	return &value.List{Elements: out}, nil
}

// opMap applies a function to every element of a list.
func opMap(ctx context.Context, inv *eval.Invocation) (value.Value, error) {
	elems, ok := listElements(inv.Arg(0))
	if !ok {
		return nil, fmt.Errorf("map: first argument is %s, want list", inv.Arg(0).Kind())
	}
	fn := inv.Arg(1)

	out := make([]value.Value, len(elems))
	for i, e := range elems {
		v, err := inv.Caller.Call(ctx, fn, []value.Value{e}, nil)
		if err != nil {
			return nil, fmt.Errorf("map: element %d: %w", i, err)
		}
		out[i] = v
	}
	return &value.List{Elements: out}, nil
}

// opProject picks the named keys out of every dict in a list.
func opProject(ctx context.Context, inv *eval.Invocation) (value.Value, error) {
	elems, ok := listElements(inv.Arg(0))
	if !ok {
		return nil, fmt.Errorf("project: first argument is %s, want list", inv.Arg(0).Kind())
	}
	names, err := keyNames(inv.Args[1:])
	if err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}

	out := make([]value.Value, 0, len(elems))
	for _, e := range elems {
		d, ok := e.(*value.Dict)
		if !ok {
			continue
		}
		row := value.NewDict()
		for _, name := range names {
			if v, found := d.Get(name); found {
				row.Set(name, v)
			}
		}
		out = append(out, row)
	}
	return &value.List{Elements: out}, nil
}

// opQuery filters a list. The predicate is either a function returning a
// truthy value per element, or a dict whose every field must match.
func opQuery(ctx context.Context, inv *eval.Invocation) (value.Value, error) {
	elems, ok := listElements(inv.Arg(0))
	if !ok {
		return nil, fmt.Errorf("query: first argument is %s, want list", inv.Arg(0).Kind())
	}
	pred := inv.Arg(1)

	var out []value.Value
	for i, e := range elems {
		keep := false
		switch p := pred.(type) {
		case *value.Dict:
			d, isDict := e.(*value.Dict)
			if !isDict {
				continue
			}
			keep = true
			for _, k := range p.Keys() {
				want, _ := p.Get(k)
				got, found := d.Get(k)
				if !found || !value.Equal(want, got) {
					keep = false
					break
				}
			}
		case *value.Function, *value.Builtin:
			v, err := inv.Caller.Call(ctx, pred, []value.Value{e}, nil)
			if err != nil {
				return nil, fmt.Errorf("query: element %d: %w", i, err)
			}
			keep = value.Truthy(v)
		default:
			return nil, fmt.Errorf("query: predicate is %s, want dict or function", pred.Kind())
		}
		if keep {
			out = append(out, e)
		}
	}
	return &value.List{Elements: out}, nil
}

// opGet resolves a dot path with an optional default third argument.
func opGet(ctx context.Context, inv *eval.Invocation) (value.Value, error) {
	path, ok := inv.Arg(1).(value.Str)
	if !ok {
		return nil, fmt.Errorf("get: path is %s, want str", inv.Arg(1).Kind())
	}
	return Get(inv.Arg(0), string(path), inv.Arg(2)), nil
}

// opPut stores a value at a dot path, returning a new structure.
func opPut(ctx context.Context, inv *eval.Invocation) (value.Value, error) {
	path, ok := inv.Arg(1).(value.Str)
	if !ok {
		return nil, fmt.Errorf("put: path is %s, want str", inv.Arg(1).Kind())
	}
	return Put(inv.Arg(0), string(path), inv.Arg(2))
}
