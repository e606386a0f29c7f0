package stdlib

import (
	"context"
	"fmt"

	"veridian-hq/covenant/pkg/dsl/eval"
	"veridian-hq/covenant/pkg/dsl/value"
)

// opTransform maps values between structures. The mapper is a dict of
// source path to target path; each source path is resolved against the
// input and, when found, stored at the target path in the result. Absent
// sources are skipped silently.
func opTransform(ctx context.Context, inv *eval.Invocation) (value.Value, error) {
	src := inv.Arg(0)
	mapper, ok := inv.Arg(1).(*value.Dict)
	if !ok {
		return nil, fmt.Errorf("transform: mapper is %s, want dict", inv.Arg(1).Kind())
	}

	var out value.Value = value.NewDict()
	for _, from := range mapper.Keys() {
		rawTo, _ := mapper.Get(from)
		to, ok := rawTo.(value.Str)
		if !ok {
			return nil, fmt.Errorf("transform: target for %q is %s, want str path", from, rawTo.Kind())
		}

		v := Get(src, from, nil)
		if v == nil || v.Kind() == value.KindNil {
			continue
		}
		next, err := Put(out, string(to), v)
		if err != nil {
			return nil, fmt.Errorf("transform: %w", err)
		}
		out = next
	}
	return out, nil
}
