package eval

import (
	"math"

	"veridian-hq/covenant/pkg/dsl/ast"
	dslerrors "veridian-hq/covenant/pkg/dsl/errors"
	"veridian-hq/covenant/pkg/dsl/value"
)

// applyBinary evaluates arithmetic and comparison operators over two
// already-evaluated operands. Logical operators short-circuit in the
// interpreter and never reach this function.
func applyBinary(op ast.BinaryOperator, left, right value.Value, loc ast.Location) (value.Value, error) {
	switch op {
	case ast.OpEq:
		return value.Bool(value.Equal(left, right)), nil
	case ast.OpNeq:
		return value.Bool(!value.Equal(left, right)), nil
	case ast.OpGt, ast.OpLt, ast.OpGte, ast.OpLte:
		cmp, ok := value.Compare(left, right)
		if !ok {
			return nil, dslerrors.NewEvalError(dslerrors.KindTypeMismatch, loc,
				"cannot order %s and %s", left.Kind(), right.Kind())
		}
		switch op {
		case ast.OpGt:
			return value.Bool(cmp > 0), nil
		case ast.OpLt:
			return value.Bool(cmp < 0), nil
		case ast.OpGte:
			return value.Bool(cmp >= 0), nil
		default:
			return value.Bool(cmp <= 0), nil
		}
	}

	// String and list concatenation via +.
	if op == ast.OpAdd {
		if ls, ok := left.(value.Str); ok {
			if rs, ok := right.(value.Str); ok {
				return ls + rs, nil
			}
		}
		if ll, ok := left.(*value.List); ok {
			if rl, ok := right.(*value.List); ok {
				out := make([]value.Value, 0, len(ll.Elements)+len(rl.Elements))
				out = append(out, ll.Elements...)
				out = append(out, rl.Elements...)
				return &value.List{Elements: out}, nil
			}
		}
	}

	li, lInt := left.(value.Int)
	ri, rInt := right.(value.Int)

	// Integer arithmetic stays integral except for true division.
	if lInt && rInt {
		switch op {
		case ast.OpAdd:
			return li + ri, nil
		case ast.OpSub:
			return li - ri, nil
		case ast.OpMul:
			return li * ri, nil
		case ast.OpMod:
			if ri == 0 {
				return nil, dslerrors.NewEvalError(dslerrors.KindTypeMismatch, loc, "modulo by zero")
			}
			return li % ri, nil
		case ast.OpPow:
			if ri >= 0 {
				return intPow(li, ri), nil
			}
		}
	}

	lf, lok := asFloat(left)
	rf, rok := asFloat(right)
	if !lok || !rok {
		return nil, dslerrors.NewEvalError(dslerrors.KindTypeMismatch, loc,
			"operator %q needs numeric operands, got %s and %s", op, left.Kind(), right.Kind())
	}

	switch op {
	case ast.OpAdd:
		return value.Float(lf + rf), nil
	case ast.OpSub:
		return value.Float(lf - rf), nil
	case ast.OpMul:
		return value.Float(lf * rf), nil
	case ast.OpDiv:
		if rf == 0 {
			return nil, dslerrors.NewEvalError(dslerrors.KindTypeMismatch, loc, "division by zero")
		}
		return value.Float(lf / rf), nil
	case ast.OpMod:
		if rf == 0 {
			return nil, dslerrors.NewEvalError(dslerrors.KindTypeMismatch, loc, "modulo by zero")
		}
		return value.Float(math.Mod(lf, rf)), nil
	case ast.OpPow:
		return value.Float(math.Pow(lf, rf)), nil
	}

	return nil, dslerrors.NewEvalError(dslerrors.KindTypeMismatch, loc, "unsupported operator %q", op)
}

func asFloat(v value.Value) (float64, bool) {
	switch t := v.(type) {
	case value.Int:
		return float64(t), true
	case value.Float:
		return float64(t), true
	}
	return 0, false
}

func intPow(base, exp value.Int) value.Int {
	result := value.Int(1)
	for i := value.Int(0); i < exp; i++ {
		result *= base
	}
	return result
}
