package stdlib

import (
	"context"
	"fmt"
	"strings"

	"veridian-hq/covenant/pkg/dsl/eval"
	"veridian-hq/covenant/pkg/dsl/value"
)

// opFormat substitutes `{name}` placeholders in a template string. Values
// come from keyword arguments and, optionally, a dict second positional
// argument; keyword arguments win on collision. Placeholders with no value
// are left in place.
func opFormat(ctx context.Context, inv *eval.Invocation) (value.Value, error) {
	template, ok := inv.Arg(0).(value.Str)
	if !ok {
		return nil, fmt.Errorf("format: template is %s, want str", inv.Arg(0).Kind())
	}

	vars := map[string]value.Value{}
	if d, ok := inv.Arg(1).(*value.Dict); ok {
		for _, k := range d.Keys() {
			v, _ := d.Get(k)
			vars[k] = v
		}
	}
	for k, v := range inv.Kwargs {
		vars[k] = v
	}

	return value.Str(substitute(string(template), vars)), nil
}

func substitute(template string, vars map[string]value.Value) string {
	var b strings.Builder
	b.Grow(len(template))

	for {
		open := strings.IndexByte(template, '{')
		if open < 0 {
			b.WriteString(template)
			return b.String()
		}
		end := strings.IndexByte(template[open:], '}')
		if end < 0 {
			b.WriteString(template)
			return b.String()
		}
		end += open

		b.WriteString(template[:open])
		name := template[open+1 : end]
		if v, ok := vars[name]; ok {
			b.WriteString(v.String())
		} else {
			b.WriteString(template[open : end+1])
		}
		template = template[end+1:]
	}
}
