package flow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"veridian-hq/covenant/pkg/dsl/eval"
	"veridian-hq/covenant/pkg/dsl/value"
)

// Scheme is the uniform result record of one flow operation.
type Scheme struct {
	Action  string
	Inputs  []value.Value
	Outputs value.Value
	Errors  []string
	Success bool
	Elapsed time.Duration
	Worker  string
}

// Dict renders the record as an ordered DSL dict.
func (s *Scheme) Dict() *value.Dict {
	d := value.NewDict()
	d.Set("action", value.Str(s.Action))
	d.Set("success", value.Bool(s.Success))
	d.Set("inputs", &value.List{Elements: s.Inputs})

	if s.Outputs != nil {
		d.Set("outputs", s.Outputs)
	} else {
		d.Set("outputs", value.NilValue)
	}

	errs := make([]value.Value, len(s.Errors))
	for i, e := range s.Errors {
		errs[i] = value.Str(e)
	}
	d.Set("errors", &value.List{Elements: errs})
	d.Set("time", value.Str(s.Elapsed.String()))
	d.Set("worker", value.Str(s.Worker))
	return d
}

func newScheme(action string, inputs []value.Value) *Scheme {
	return &Scheme{
		Action: action,
		Inputs: inputs,
		Worker: uuid.NewString(),
	}
}

// run invokes fn with args, capturing success, output, errors and elapsed
// time into a fresh scheme record.
func run(ctx context.Context, caller eval.Caller, action string, fn value.Value, args []value.Value) *Scheme {
	s := newScheme(action, args)
	start := time.Now()
	out, err := caller.Call(ctx, fn, args, nil)
	s.Elapsed = time.Since(start)
	if err != nil {
		s.Errors = append(s.Errors, err.Error())
		return s
	}
	s.Success = true
	s.Outputs = out
	return s
}

// unwrap extracts the outputs of a nested scheme record so chained flow
// operations pass plain values downstream, not wrapper dicts.
func unwrap(v value.Value) value.Value {
	if d, ok := v.(*value.Dict); ok {
		if _, has := d.Get("action"); has {
			if out, ok := d.Get("outputs"); ok {
				return out
			}
		}
	}
	return v
}

func schemeErrors(v value.Value) []string {
	d, ok := v.(*value.Dict)
	if !ok {
		return nil
	}
	raw, ok := d.Get("errors")
	if !ok {
		return nil
	}
	list, ok := raw.(*value.List)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list.Elements))
	for _, e := range list.Elements {
		out = append(out, fmt.Sprint(e))
	}
	return out
}

func schemeSuccess(v value.Value) bool {
	d, ok := v.(*value.Dict)
	if !ok {
		return true
	}
	raw, ok := d.Get("success")
	if !ok {
		return true
	}
	return value.Truthy(raw)
}
