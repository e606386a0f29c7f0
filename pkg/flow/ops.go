package flow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"veridian-hq/covenant/pkg/dsl/eval"
	"veridian-hq/covenant/pkg/dsl/value"
)

// Registry returns the flow operations as a builtin registry.
func Registry() eval.Registry {
	return eval.Registry{
		"serial":   opSerial,
		"parallel": opParallel,
		"pipeline": opPipeline,
		"retry":    opRetry,
		"sentry":   opSentry,
		"switch":   opSwitch,
		"when":     opWhen,
		"catch":    opCatch,
		"timeout":  opTimeout,
		"foreach":  opForeach,
	}
}

// truthyCond resolves a condition argument: functions are called with the
// given args, any other value is judged by its own truthiness.
func truthyCond(ctx context.Context, caller eval.Caller, cond value.Value, args []value.Value) (bool, error) {
	switch cond.(type) {
	case *value.Function, *value.Builtin:
		out, err := caller.Call(ctx, cond, args, nil)
		if err != nil {
			return false, err
		}
		return value.Truthy(out), nil
	}
	return value.Truthy(cond), nil
}

func elements(v value.Value) ([]value.Value, bool) {
	switch c := v.(type) {
	case *value.List:
		return c.Elements, true
	case *value.Tuple:
		return c.Elements, true
	}
	return nil, false
}

// serial(items, fn) runs fn over each item in order and collects the
// per-item scheme records.
func opSerial(ctx context.Context, inv *eval.Invocation) (value.Value, error) {
	items, ok := elements(inv.Arg(0))
	if !ok {
		return nil, fmt.Errorf("serial: first argument must be a list")
	}
	fn := inv.Arg(1)

	s := newScheme("serial", inv.Args)
	start := time.Now()
	outs := make([]value.Value, 0, len(items))
	s.Success = true
	for _, item := range items {
		step := run(ctx, inv.Caller, "serial.step", fn, []value.Value{item})
		outs = append(outs, step.Dict())
		s.Errors = append(s.Errors, step.Errors...)
		if !step.Success {
			s.Success = false
		}
	}
	s.Outputs = &value.List{Elements: outs}
	s.Elapsed = time.Since(start)
	return s.Dict(), nil
}

// foreach(items, fn) runs fn over each item and collects bare outputs,
// unwrapping nested scheme records so chained iterations stay flat.
func opForeach(ctx context.Context, inv *eval.Invocation) (value.Value, error) {
	items, ok := elements(inv.Arg(0))
	if !ok {
		return nil, fmt.Errorf("foreach: first argument must be a list")
	}
	fn := inv.Arg(1)

	s := newScheme("foreach", inv.Args)
	start := time.Now()
	outs := make([]value.Value, 0, len(items))
	s.Success = true
	for _, item := range items {
		step := run(ctx, inv.Caller, "foreach.step", fn, []value.Value{item})
		if !step.Success {
			s.Success = false
			s.Errors = append(s.Errors, step.Errors...)
			outs = append(outs, value.NilValue)
			continue
		}
		outs = append(outs, unwrap(step.Outputs))
		s.Errors = append(s.Errors, schemeErrors(step.Outputs)...)
		if !schemeSuccess(step.Outputs) {
			s.Success = false
		}
	}
	s.Outputs = &value.List{Elements: outs}
	s.Elapsed = time.Since(start)
	return s.Dict(), nil
}

// parallel(fn, fn, ...) runs every function concurrently and collects the
// scheme records in argument order.
func opParallel(ctx context.Context, inv *eval.Invocation) (value.Value, error) {
	s := newScheme("parallel", nil)
	start := time.Now()

	results := make([]*Scheme, len(inv.Args))
	var wg sync.WaitGroup
	for i, fn := range inv.Args {
		wg.Add(1)
		go func(i int, fn value.Value) {
			defer wg.Done()
			results[i] = run(ctx, inv.Caller, "parallel.step", fn, nil)
		}(i, fn)
	}
	wg.Wait()

	outs := make([]value.Value, len(results))
	s.Success = true
	for i, step := range results {
		outs[i] = step.Dict()
		s.Errors = append(s.Errors, step.Errors...)
		if !step.Success {
			s.Success = false
		}
	}
	s.Outputs = &value.List{Elements: outs}
	s.Elapsed = time.Since(start)
	return s.Dict(), nil
}

// pipeline(initial, fn, fn, ...) threads each step's output into the next
// step and stops at the first failure.
func opPipeline(ctx context.Context, inv *eval.Invocation) (value.Value, error) {
	if len(inv.Args) < 2 {
		return nil, fmt.Errorf("pipeline: needs an initial value and at least one step")
	}

	s := newScheme("pipeline", inv.Args[:1])
	start := time.Now()
	current := inv.Arg(0)
	for _, fn := range inv.Args[1:] {
		step := run(ctx, inv.Caller, "pipeline.step", fn, []value.Value{current})
		if !step.Success {
			s.Errors = append(s.Errors, step.Errors...)
			s.Outputs = current
			s.Elapsed = time.Since(start)
			return s.Dict(), nil
		}
		current = unwrap(step.Outputs)
	}
	s.Success = true
	s.Outputs = current
	s.Elapsed = time.Since(start)
	return s.Dict(), nil
}

// retry(fn, retries: n, delay: seconds) re-runs fn until it succeeds, with
// linear backoff between attempts.
func opRetry(ctx context.Context, inv *eval.Invocation) (value.Value, error) {
	fn := inv.Arg(0)
	retries := 3
	if n, ok := inv.Kwarg("retries").(value.Int); ok && n > 0 {
		retries = int(n)
	}
	delay := time.Duration(0)
	switch d := inv.Kwarg("delay").(type) {
	case value.Int:
		delay = time.Duration(d) * time.Second
	case value.Float:
		delay = time.Duration(float64(d) * float64(time.Second))
	}

	var last *Scheme
	for attempt := 0; attempt < retries; attempt++ {
		last = run(ctx, inv.Caller, "retry", fn, nil)
		if last.Success {
			return last.Dict(), nil
		}
		if attempt < retries-1 && delay > 0 {
			t := time.NewTimer(delay * time.Duration(attempt+1))
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
				last.Errors = append(last.Errors, ctx.Err().Error())
				return last.Dict(), nil
			}
		}
	}
	return last.Dict(), nil
}

// sentry(cond) fails unless the condition holds.
func opSentry(ctx context.Context, inv *eval.Invocation) (value.Value, error) {
	cond := inv.Arg(0)
	s := newScheme("sentry", inv.Args)
	start := time.Now()
	ok, err := truthyCond(ctx, inv.Caller, cond, nil)
	s.Elapsed = time.Since(start)
	if err != nil {
		s.Errors = append(s.Errors, err.Error())
		return s.Dict(), nil
	}
	if !ok {
		s.Errors = append(s.Errors, fmt.Sprintf("condition not met: %s", cond))
		return s.Dict(), nil
	}
	s.Success = true
	s.Outputs = cond
	return s.Dict(), nil
}

// when(cond, fn) runs fn only if the condition holds.
func opWhen(ctx context.Context, inv *eval.Invocation) (value.Value, error) {
	cond := inv.Arg(0)
	fn := inv.Arg(1)

	s := newScheme("when", inv.Args)
	start := time.Now()
	ok, err := truthyCond(ctx, inv.Caller, cond, nil)
	if err != nil {
		s.Errors = append(s.Errors, err.Error())
		s.Elapsed = time.Since(start)
		return s.Dict(), nil
	}
	if !ok {
		s.Errors = append(s.Errors, fmt.Sprintf("condition not met: %s", cond))
		s.Elapsed = time.Since(start)
		return s.Dict(), nil
	}
	step := run(ctx, inv.Caller, "when.step", fn, nil)
	s.Success = step.Success
	s.Outputs = step.Outputs
	s.Errors = append(s.Errors, step.Errors...)
	s.Elapsed = time.Since(start)
	return s.Dict(), nil
}

// switch(subject, cases) selects the case whose key equals the subject's
// string form; the "*" key is the fallback.
func opSwitch(ctx context.Context, inv *eval.Invocation) (value.Value, error) {
	subject := inv.Arg(0)
	cases, ok := inv.Arg(1).(*value.Dict)
	if !ok {
		return nil, fmt.Errorf("switch: second argument must be a dict of cases")
	}

	subjectKey := subject.String()
	if s, isStr := subject.(value.Str); isStr {
		subjectKey = string(s)
	}

	if fn, found := cases.Get(subjectKey); found {
		return run(ctx, inv.Caller, "switch", fn, []value.Value{subject}).Dict(), nil
	}
	if fn, found := cases.Get("*"); found {
		return run(ctx, inv.Caller, "switch", fn, []value.Value{subject}).Dict(), nil
	}

	s := newScheme("switch", inv.Args[:1])
	s.Errors = append(s.Errors, fmt.Sprintf("no case matched %s", subject))
	return s.Dict(), nil
}

// catch(fn, recover) runs fn and, on failure, runs recover with the error
// strings; the recovery result carries the accumulated errors.
func opCatch(ctx context.Context, inv *eval.Invocation) (value.Value, error) {
	fn := inv.Arg(0)
	handler := inv.Arg(1)

	first := run(ctx, inv.Caller, "catch", fn, nil)
	if first.Success {
		return first.Dict(), nil
	}
	if handler.Kind() == value.KindNil {
		return first.Dict(), nil
	}

	errs := make([]value.Value, len(first.Errors))
	for i, e := range first.Errors {
		errs[i] = value.Str(e)
	}
	second := run(ctx, inv.Caller, "catch.recover", handler, []value.Value{&value.List{Elements: errs}})
	second.Errors = append(first.Errors, second.Errors...)
	return second.Dict(), nil
}

// timeout(fn, seconds) bounds fn's execution time.
func opTimeout(ctx context.Context, inv *eval.Invocation) (value.Value, error) {
	fn := inv.Arg(0)
	var limit time.Duration
	switch d := inv.Arg(1).(type) {
	case value.Int:
		limit = time.Duration(d) * time.Second
	case value.Float:
		limit = time.Duration(float64(d) * float64(time.Second))
	default:
		return nil, fmt.Errorf("timeout: second argument must be a number of seconds")
	}

	bounded, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	done := make(chan *Scheme, 1)
	go func() {
		done <- run(bounded, inv.Caller, "timeout", fn, nil)
	}()

	select {
	case step := <-done:
		return step.Dict(), nil
	case <-bounded.Done():
		s := newScheme("timeout", inv.Args[:1])
		s.Elapsed = limit
		s.Errors = append(s.Errors, fmt.Sprintf("action timed out after %s", limit))
		return s.Dict(), nil
	}
}
