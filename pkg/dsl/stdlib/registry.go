package stdlib

import (
	"context"
	"fmt"

	"veridian-hq/covenant/pkg/dsl/eval"
	"veridian-hq/covenant/pkg/dsl/value"
	"veridian-hq/covenant/pkg/flow"
)

// Registry returns the complete standard library: the data builtins merged
// with the flow operations. The result is a fresh map on every call, so
// callers may overlay additional operations without affecting others.
func Registry() eval.Registry {
	data := eval.Registry{
		"merge":     opMerge,
		"concat":    opConcat,
		"pick":      opPick,
		"keys":      opKeys,
		"values":    opValues,
		"format":    opFormat,
		"map":       opMap,
		"project":   opProject,
		"query":     opQuery,
		"get":       opGet,
		"put":       opPut,
		"normalize": opNormalize,
		"transform": opTransform,
		"convert":   opConvert,
		"print":     opPrint,
	}
	return data.Merge(flow.Registry())
}

// opPrint writes the value's string form to standard output and passes the
// value through unchanged.
func opPrint(ctx context.Context, inv *eval.Invocation) (value.Value, error) {
	v := inv.Arg(0)
	fmt.Println(v.String())
	return v, nil
}
