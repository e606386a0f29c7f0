package eval

import (
	"veridian-hq/covenant/pkg/dsl/ast"
	dslerrors "veridian-hq/covenant/pkg/dsl/errors"
	"veridian-hq/covenant/pkg/dsl/value"
)

// typeNames is the table of declarable parameter and binding types. A type
// name used as a bare identifier resolves to its own name string, so
// builtins like convert can take a target type by name.
var typeNames = map[string]value.Kind{
	"int":   value.KindInt,
	"float": value.KindFloat,
	"str":   value.KindString,
	"bool":  value.KindBool,
	"dict":  value.KindDict,
	"list":  value.KindList,
	"tuple": value.KindTuple,
	"any":   value.KindWildcard,
}

// checkType validates v against the declared type name, applying the two
// defined conversions (integral float to int, int to float). Any other
// mismatch is a TypeMismatch error; unknown type names pass through
// unchecked, matching untyped bindings.
func checkType(v value.Value, typeName, varName string, loc ast.Location) (value.Value, error) {
	if typeName == "" || typeName == "any" {
		return v, nil
	}
	want, known := typeNames[typeName]
	if !known {
		return v, nil
	}

	if v.Kind() == want {
		return v, nil
	}

	switch want {
	case value.KindInt:
		if f, ok := v.(value.Float); ok && float64(f) == float64(int64(f)) {
			return value.Int(int64(f)), nil
		}
	case value.KindFloat:
		if i, ok := v.(value.Int); ok {
			return value.Float(i), nil
		}
	}

	return nil, dslerrors.NewEvalError(dslerrors.KindTypeMismatch, loc,
		"%q expects %s, got %s", varName, typeName, v.Kind())
}
