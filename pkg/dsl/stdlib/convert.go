package stdlib

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"veridian-hq/covenant/pkg/dsl/eval"
	"veridian-hq/covenant/pkg/dsl/value"
)

// opConvert translates a value between representations. The second argument
// names the codec:
//
//	json   string -> parsed structure, structure -> JSON string
//	yaml   string -> parsed structure, structure -> YAML string
//	hash   any value -> SHA-256 hex digest of its serialized form
func opConvert(ctx context.Context, inv *eval.Invocation) (value.Value, error) {
	target := inv.Arg(0)
	codec, ok := inv.Arg(1).(value.Str)
	if !ok {
		return nil, fmt.Errorf("convert: codec is %s, want str", inv.Arg(1).Kind())
	}

	switch string(codec) {
	case "json":
		if s, ok := target.(value.Str); ok {
			var raw any
			if err := json.Unmarshal([]byte(s), &raw); err != nil {
				return nil, fmt.Errorf("convert: invalid json: %w", err)
			}
			return fromGo(raw), nil
		}
		data, err := json.Marshal(toGo(target))
		if err != nil {
			return nil, fmt.Errorf("convert: %w", err)
		}
		return value.Str(data), nil

	case "yaml":
		if s, ok := target.(value.Str); ok {
			var raw any
			if err := yaml.Unmarshal([]byte(s), &raw); err != nil {
				return nil, fmt.Errorf("convert: invalid yaml: %w", err)
			}
			return fromGo(raw), nil
		}
		data, err := yaml.Marshal(toGo(target))
		if err != nil {
			return nil, fmt.Errorf("convert: %w", err)
		}
		return value.Str(data), nil

	case "hash":
		var payload []byte
		if s, ok := target.(value.Str); ok {
			payload = []byte(s)
		} else {
			data, err := json.Marshal(toGo(target))
			if err != nil {
				return nil, fmt.Errorf("convert: %w", err)
			}
			payload = data
		}
		sum := sha256.Sum256(payload)
		return value.Str(hex.EncodeToString(sum[:])), nil
	}

	return nil, fmt.Errorf("convert: unknown codec %q", codec)
}

// toGo lowers a DSL value into plain Go data for the codec libraries.
// Dict key order is lost; both codecs reserialize maps in their own order.
func toGo(v value.Value) any {
	switch t := v.(type) {
	case value.Int:
		return int64(t)
	case value.Float:
		return float64(t)
	case value.Str:
		return string(t)
	case value.Bool:
		return bool(t)
	case *value.List:
		out := make([]any, len(t.Elements))
		for i, e := range t.Elements {
			out[i] = toGo(e)
		}
		return out
	case *value.Tuple:
		out := make([]any, len(t.Elements))
		for i, e := range t.Elements {
			out[i] = toGo(e)
		}
		return out
	case *value.Dict:
		out := make(map[string]any, t.Len())
		for _, k := range t.Keys() {
			item, _ := t.Get(k)
			out[k] = toGo(item)
		}
		return out
	}
	return nil
}

// fromGo lifts decoded Go data back into DSL values.
func fromGo(raw any) value.Value {
	switch t := raw.(type) {
	case nil:
		return value.NilValue
	case bool:
		return value.Bool(t)
	case string:
		return value.Str(t)
	case int:
		return value.Int(t)
	case int64:
		return value.Int(t)
	case float64:
		if t == float64(int64(t)) {
			return value.Int(int64(t))
		}
		return value.Float(t)
	case []any:
		out := make([]value.Value, len(t))
		for i, e := range t {
			out[i] = fromGo(e)
		}
		return &value.List{Elements: out}
	case map[string]any:
		out := value.NewDict()
		for _, k := range sortedKeys(t) {
			out.Set(k, fromGo(t[k]))
		}
		return out
	case map[any]any:
		out := value.NewDict()
		for k, v := range t {
			out.Set(fmt.Sprint(k), fromGo(v))
		}
		return out
	}
	return value.Str(fmt.Sprint(raw))
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
