package stdlib

import (
	"context"
	"fmt"
	"strconv"

	"veridian-hq/covenant/pkg/dsl/eval"
	"veridian-hq/covenant/pkg/dsl/value"
)

// opNormalize validates and populates a dict against a schema. The schema
// is a dict of field name to rules dict with the keys:
//
//	type      expected kind name (int, float, str, bool, dict, list)
//	required  reject when the field is absent
//	default   value installed when the field is absent
//	coerce    "to_list" wraps a scalar into a one-element list
//
// Unknown input fields pass through untouched. The input dict is not
// modified.
func opNormalize(ctx context.Context, inv *eval.Invocation) (value.Value, error) {
	src, ok := inv.Arg(0).(*value.Dict)
	if !ok {
		if inv.Arg(0).Kind() == value.KindNil {
			src = value.NewDict()
		} else {
			return nil, fmt.Errorf("normalize: value is %s, want dict", inv.Arg(0).Kind())
		}
	}
	schema, ok := inv.Arg(1).(*value.Dict)
	if !ok {
		return nil, fmt.Errorf("normalize: schema is %s, want dict", inv.Arg(1).Kind())
	}

	out := deepCopy(src).(*value.Dict)

	for _, field := range schema.Keys() {
		rawRules, _ := schema.Get(field)
		rules, ok := rawRules.(*value.Dict)
		if !ok {
			return nil, fmt.Errorf("normalize: rules for %q are %s, want dict", field, rawRules.Kind())
		}

		v, present := out.Get(field)
		if !present {
			if def, has := rules.Get("default"); has {
				out.Set(field, def)
				v, present = def, true
			}
		}
		if !present {
			if req, has := rules.Get("required"); has && value.Truthy(req) {
				return nil, fmt.Errorf("normalize: required field %q is missing", field)
			}
			continue
		}

		if c, has := rules.Get("coerce"); has {
			coerced, err := coerceField(field, string(asStr(c)), v)
			if err != nil {
				return nil, err
			}
			v = coerced
			out.Set(field, v)
		}

		if t, has := rules.Get("type"); has {
			checked, err := checkFieldType(field, string(asStr(t)), v)
			if err != nil {
				return nil, err
			}
			out.Set(field, checked)
		}
	}

	return out, nil
}

func asStr(v value.Value) value.Str {
	if s, ok := v.(value.Str); ok {
		return s
	}
	return value.Str(v.String())
}

func coerceField(field, name string, v value.Value) (value.Value, error) {
	switch name {
	case "to_list":
		if _, ok := v.(*value.List); ok {
			return v, nil
		}
		if v.Kind() == value.KindNil {
			return &value.List{}, nil
		}
		return &value.List{Elements: []value.Value{v}}, nil
	}
	return nil, fmt.Errorf("normalize: unknown coercion %q for field %q", name, field)
}

// checkFieldType validates a field's runtime kind, applying the same lenient
// numeric and string conversions the original validator performs.
func checkFieldType(field, want string, v value.Value) (value.Value, error) {
	switch want {
	case "int":
		switch t := v.(type) {
		case value.Int:
			return v, nil
		case value.Float:
			if float64(t) == float64(int64(t)) {
				return value.Int(int64(t)), nil
			}
		case value.Str:
			if n, err := strconv.ParseInt(string(t), 10, 64); err == nil {
				return value.Int(n), nil
			}
		}
	case "float":
		switch t := v.(type) {
		case value.Float:
			return v, nil
		case value.Int:
			return value.Float(t), nil
		case value.Str:
			if f, err := strconv.ParseFloat(string(t), 64); err == nil {
				return value.Float(f), nil
			}
		}
	case "str":
		switch t := v.(type) {
		case value.Str:
			return v, nil
		case value.Int, value.Float, value.Bool:
			return value.Str(t.String()), nil
		}
	case "bool":
		switch t := v.(type) {
		case value.Bool:
			return v, nil
		case value.Str:
			if b, err := strconv.ParseBool(string(t)); err == nil {
				return value.Bool(b), nil
			}
		}
	case "dict":
		if _, ok := v.(*value.Dict); ok {
			return v, nil
		}
	case "list":
		if _, ok := v.(*value.List); ok {
			return v, nil
		}
	default:
		return nil, fmt.Errorf("normalize: unknown type %q for field %q", want, field)
	}
	return nil, fmt.Errorf("normalize: field %q is %s, want %s", field, v.Kind(), want)
}
