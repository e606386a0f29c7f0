package value

// Truthy reports whether a value counts as true in a boolean position.
// False, zero numbers, empty strings, and empty collections are falsy;
// Nil is falsy; everything else is truthy.
func Truthy(v Value) bool {
	switch t := v.(type) {
	case Bool:
		return bool(t)
	case Int:
		return t != 0
	case Float:
		return t != 0
	case Str:
		return t != ""
	case *List:
		return len(t.Elements) > 0
	case *Tuple:
		return len(t.Elements) > 0
	case *Dict:
		return t.Len() > 0
	case nilValue:
		return false
	default:
		return true
	}
}

// Equal reports structural equality between two values. Int and Float
// compare numerically; lists, tuples, and dicts compare element-wise.
// The Wildcard value equals anything.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() == KindWildcard || b.Kind() == KindWildcard {
		return true
	}

	switch av := a.(type) {
	case Int:
		switch bv := b.(type) {
		case Int:
			return av == bv
		case Float:
			return Float(av) == bv
		}
		return false
	case Float:
		switch bv := b.(type) {
		case Int:
			return av == Float(bv)
		case Float:
			return av == bv
		}
		return false
	case Str:
		bv, ok := b.(Str)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case nilValue:
		_, ok := b.(nilValue)
		return ok
	case *List:
		bv, ok := b.(*List)
		return ok && equalSlices(av.Elements, bv.Elements)
	case *Tuple:
		bv, ok := b.(*Tuple)
		return ok && equalSlices(av.Elements, bv.Elements)
	case *Dict:
		bv, ok := b.(*Dict)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for _, k := range av.keys {
			other, found := bv.Get(k)
			if !found || !Equal(av.items[k], other) {
				return false
			}
		}
		return true
	case *Function:
		bv, ok := b.(*Function)
		return ok && av == bv
	case *Builtin:
		bv, ok := b.(*Builtin)
		return ok && av.Name == bv.Name
	case *Module:
		bv, ok := b.(*Module)
		return ok && av.Path == bv.Path
	}
	return false
}

func equalSlices(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Compare orders two numeric or string values: -1, 0, or +1. The second
// return is false when the values are not orderable.
func Compare(a, b Value) (int, bool) {
	af, aok := numeric(a)
	bf, bok := numeric(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	as, aok := a.(Str)
	bs, bok := b.(Str)
	if aok && bok {
		switch {
		case as < bs:
			return -1, true
		case as > bs:
			return 1, true
		default:
			return 0, true
		}
	}
	return 0, false
}

func numeric(v Value) (float64, bool) {
	switch t := v.(type) {
	case Int:
		return float64(t), true
	case Float:
		return float64(t), true
	}
	return 0, false
}
