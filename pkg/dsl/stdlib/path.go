package stdlib

import (
	"fmt"
	"strconv"
	"strings"

	"veridian-hq/covenant/pkg/dsl/value"
)

// Get resolves a dot-separated path against nested dicts and lists. A `*`
// segment maps the rest of the path over every element of a list; a numeric
// segment indexes a list. Any unresolvable step yields def.
func Get(data value.Value, path string, def value.Value) value.Value {
	if path == "" {
		return data
	}

	key, rest, _ := strings.Cut(path, ".")

	if key == "*" {
		elems, ok := listElements(data)
		if !ok {
			return def
		}
		out := make([]value.Value, len(elems))
		for i, e := range elems {
			out[i] = Get(e, rest, def)
		}
		return &value.List{Elements: out}
	}

	var next value.Value
	switch node := data.(type) {
	case *value.List, *value.Tuple:
		idx, err := strconv.Atoi(key)
		if err != nil {
			return def
		}
		elems, _ := listElements(node)
		if idx < 0 || idx >= len(elems) {
			return def
		}
		next = elems[idx]
	case *value.Dict:
		v, ok := node.Get(key)
		if !ok {
			return def
		}
		next = v
	case *value.Module:
		v, err := node.Attrs.Attr(key)
		if err != nil {
			return def
		}
		next = v
	default:
		return def
	}

	if rest == "" {
		return next
	}
	return Get(next, rest, def)
}

// Put returns a deep copy of data with the value stored at the given path.
// Numeric segments index lists (-1 appends, indexes past the end pad with
// empty dicts); intermediate dict nodes are created on demand. The input is
// never modified.
func Put(data value.Value, path string, v value.Value) (value.Value, error) {
	if path == "" {
		return nil, fmt.Errorf("put: empty path")
	}
	root := deepCopy(data)
	if err := putInto(root, strings.Split(path, "."), v); err != nil {
		return nil, err
	}
	return root, nil
}

func putInto(node value.Value, parts []string, v value.Value) error {
	part := parts[0]
	last := len(parts) == 1

	switch n := node.(type) {
	case *value.Dict:
		if _, err := strconv.Atoi(part); err == nil {
			return fmt.Errorf("put: numeric segment %q used on a dict", part)
		}
		if last {
			n.Set(part, v)
			return nil
		}
		next, ok := n.Get(part)
		if !ok || !isContainer(next) {
			next = value.NewDict()
			n.Set(part, next)
		}
		return putInto(next, parts[1:], v)

	case *value.List:
		idx, err := strconv.Atoi(part)
		if err != nil {
			return fmt.Errorf("put: non-numeric segment %q used on a list", part)
		}
		if idx == -1 {
			n.Elements = append(n.Elements, value.NewDict())
			idx = len(n.Elements) - 1
		}
		if idx < 0 {
			return fmt.Errorf("put: negative index %d", idx)
		}
		for len(n.Elements) <= idx {
			n.Elements = append(n.Elements, value.NewDict())
		}
		if last {
			n.Elements[idx] = v
			return nil
		}
		if !isContainer(n.Elements[idx]) {
			n.Elements[idx] = value.NewDict()
		}
		return putInto(n.Elements[idx], parts[1:], v)
	}

	return fmt.Errorf("put: cannot index into %s at segment %q", node.Kind(), part)
}

func isContainer(v value.Value) bool {
	switch v.(type) {
	case *value.Dict, *value.List:
		return true
	}
	return false
}

func listElements(v value.Value) ([]value.Value, bool) {
	switch c := v.(type) {
	case *value.List:
		return c.Elements, true
	case *value.Tuple:
		return c.Elements, true
	}
	return nil, false
}

// deepCopy clones dicts, lists and tuples; scalar values are immutable and
// shared.
func deepCopy(v value.Value) value.Value {
	switch c := v.(type) {
	case *value.Dict:
		out := value.NewDict()
		for _, k := range c.Keys() {
			item, _ := c.Get(k)
			out.Set(k, deepCopy(item))
		}
		return out
	case *value.List:
		out := make([]value.Value, len(c.Elements))
		for i, e := range c.Elements {
			out[i] = deepCopy(e)
		}
		return &value.List{Elements: out}
	case *value.Tuple:
		out := make([]value.Value, len(c.Elements))
		for i, e := range c.Elements {
			out[i] = deepCopy(e)
		}
		return &value.Tuple{Elements: out}
	}
	return v
}
