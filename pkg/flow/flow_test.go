package flow_test

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"veridian-hq/covenant/pkg/dsl/eval"
	"veridian-hq/covenant/pkg/dsl/parser"
	"veridian-hq/covenant/pkg/dsl/stdlib"
	"veridian-hq/covenant/pkg/dsl/value"
	"veridian-hq/covenant/pkg/flow"
)

func run(t *testing.T, source string) *value.Dict {
	t.Helper()
	prog, err := parser.Parse("test.dsl", source)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	bindings, err := eval.New(stdlib.Registry()).Execute(context.Background(), prog)
	if err != nil {
		t.Fatalf("execute error: %v", err)
	}
	return bindings
}

func scheme(t *testing.T, bindings *value.Dict, name string) *value.Dict {
	t.Helper()
	v, ok := bindings.Get(name)
	if !ok {
		t.Fatalf("binding %q missing, have %v", name, bindings.Keys())
	}
	d, ok := v.(*value.Dict)
	if !ok {
		t.Fatalf("binding %q is %s, want scheme dict", name, v.Kind())
	}
	return d
}

func field(t *testing.T, d *value.Dict, key string) value.Value {
	t.Helper()
	v, ok := d.Get(key)
	if !ok {
		t.Fatalf("scheme field %q missing, have %v", key, d.Keys())
	}
	return v
}

func succeeded(t *testing.T, d *value.Dict) bool {
	t.Helper()
	return bool(field(t, d, "success").(value.Bool))
}

func errorList(t *testing.T, d *value.Dict) []string {
	t.Helper()
	list := field(t, d, "errors").(*value.List)
	out := make([]string, len(list.Elements))
	for i, e := range list.Elements {
		out[i] = string(e.(value.Str))
	}
	return out
}

func TestSchemeDictShape(t *testing.T) {
	s := &flow.Scheme{
		Action:  "demo",
		Inputs:  []value.Value{value.Int(1)},
		Outputs: value.Int(2),
		Errors:  []string{"boom"},
		Success: false,
		Elapsed: 5 * time.Millisecond,
		Worker:  "w-1",
	}
	d := s.Dict()

	wantKeys := []string{"action", "success", "inputs", "outputs", "errors", "time", "worker"}
	if got := d.Keys(); !reflect.DeepEqual(got, wantKeys) {
		t.Errorf("Keys() = %v, want %v", got, wantKeys)
	}
	if got, _ := d.Get("action"); !value.Equal(got, value.Str("demo")) {
		t.Errorf("action = %v", got)
	}
	if got, _ := d.Get("time"); !value.Equal(got, value.Str("5ms")) {
		t.Errorf("time = %v", got)
	}

	empty := &flow.Scheme{Action: "empty"}
	if got, _ := empty.Dict().Get("outputs"); got.Kind() != value.KindNil {
		t.Errorf("missing outputs should render as nil, got %v", got)
	}
}

func TestSerial(t *testing.T) {
	b := run(t, `
		double : (int:n), { r : n * 2; }, (r);
		out : serial([1, 2, 3], double);
	`)
	s := scheme(t, b, "out")

	if !succeeded(t, s) {
		t.Fatal("serial over passing steps should succeed")
	}
	steps := field(t, s, "outputs").(*value.List)
	if len(steps.Elements) != 3 {
		t.Fatalf("steps = %d, want 3", len(steps.Elements))
	}
	first := steps.Elements[0].(*value.Dict)
	if got, _ := first.Get("outputs"); !value.Equal(got, value.Int(2)) {
		t.Errorf("step output = %v, want 2", got)
	}
	if got, _ := first.Get("action"); !value.Equal(got, value.Str("serial.step")) {
		t.Errorf("step action = %v", got)
	}
}

func TestSerialCollectsFailures(t *testing.T) {
	b := run(t, `
		bad : (int:n), { r : n + 'x'; }, (r);
		out : serial([1, 2], bad);
	`)
	s := scheme(t, b, "out")

	if succeeded(t, s) {
		t.Error("serial with failing steps should not succeed")
	}
	if errs := errorList(t, s); len(errs) != 2 {
		t.Errorf("errors = %v, want one per failed step", errs)
	}
	steps := field(t, s, "outputs").(*value.List)
	if len(steps.Elements) != 2 {
		t.Errorf("failing steps still produce records, got %d", len(steps.Elements))
	}
}

func TestForeach(t *testing.T) {
	b := run(t, `
		double : (int:n), { r : n * 2; }, (r);
		out : foreach([1, 2, 3], double);
	`)
	s := scheme(t, b, "out")

	if !succeeded(t, s) {
		t.Fatal("foreach over passing steps should succeed")
	}
	if got := field(t, s, "outputs").String(); got != "[2, 4, 6]" {
		t.Errorf("outputs = %s, want bare values [2, 4, 6]", got)
	}
}

func TestForeachFailedElementYieldsNil(t *testing.T) {
	b := run(t, `
		safe : (int:n), { r : n * 10; }, (r);
		bad : (int:n), { r : n + 'x'; }, (r);
		out : foreach([1, 3], safe);
		broken : foreach([1], bad);
	`)
	s := scheme(t, b, "out")
	if got := field(t, s, "outputs").String(); got != "[10, 30]" {
		t.Errorf("outputs = %s", got)
	}

	broken := scheme(t, b, "broken")
	if succeeded(t, broken) {
		t.Error("foreach with a failing element should not succeed")
	}
	outs := field(t, broken, "outputs").(*value.List)
	if len(outs.Elements) != 1 || outs.Elements[0].Kind() != value.KindNil {
		t.Errorf("failed element should yield nil placeholder, got %v", outs.Elements)
	}
}

func TestPipeline(t *testing.T) {
	b := run(t, `
		inc : (int:n), { r : n + 1; }, (r);
		double : (int:n), { r : n * 2; }, (r);
		out : pipeline(3, inc, double);
	`)
	s := scheme(t, b, "out")

	if !succeeded(t, s) {
		t.Fatal("pipeline should succeed")
	}
	if got := field(t, s, "outputs"); !value.Equal(got, value.Int(8)) {
		t.Errorf("outputs = %v, want 8", got)
	}
}

func TestPipelineStopsAtFirstFailure(t *testing.T) {
	b := run(t, `
		bad : (int:n), { r : n + 'x'; }, (r);
		inc : (int:n), { r : n + 1; }, (r);
		out : pipeline(5, bad, inc);
	`)
	s := scheme(t, b, "out")

	if succeeded(t, s) {
		t.Error("pipeline with a failing step should not succeed")
	}
	if got := field(t, s, "outputs"); !value.Equal(got, value.Int(5)) {
		t.Errorf("outputs = %v, want the last good value 5", got)
	}
	if errs := errorList(t, s); len(errs) == 0 {
		t.Error("pipeline should carry the failing step's errors")
	}
}

func TestParallel(t *testing.T) {
	b := run(t, `
		one : (), { r : 1; }, (r);
		two : (), { r : 2; }, (r);
		out : parallel(one, two);
	`)
	s := scheme(t, b, "out")

	if !succeeded(t, s) {
		t.Fatal("parallel should succeed")
	}
	steps := field(t, s, "outputs").(*value.List)
	if len(steps.Elements) != 2 {
		t.Fatalf("steps = %d, want 2", len(steps.Elements))
	}
	// Results keep argument order regardless of completion order.
	for i, want := range []value.Value{value.Int(1), value.Int(2)} {
		step := steps.Elements[i].(*value.Dict)
		if got, _ := step.Get("outputs"); !value.Equal(got, want) {
			t.Errorf("step %d output = %v, want %v", i, got, want)
		}
	}
}

func TestRetry(t *testing.T) {
	b := run(t, `
		ok : (), { r : 7; }, (r);
		bad : (), { r : 1 + 'x'; }, (r);
		pass : retry(ok, retries: 2);
		fail : retry(bad, retries: 2);
	`)

	pass := scheme(t, b, "pass")
	if !succeeded(t, pass) {
		t.Error("retry of a passing action should succeed")
	}
	if got := field(t, pass, "outputs"); !value.Equal(got, value.Int(7)) {
		t.Errorf("outputs = %v, want 7", got)
	}

	fail := scheme(t, b, "fail")
	if succeeded(t, fail) {
		t.Error("retry of an always-failing action should fail")
	}
	if got := field(t, fail, "action"); !value.Equal(got, value.Str("retry")) {
		t.Errorf("action = %v", got)
	}
}

func TestSentry(t *testing.T) {
	b := run(t, `
		pass : sentry(true);
		fail : sentry(false);
	`)
	if !succeeded(t, scheme(t, b, "pass")) {
		t.Error("sentry(true) should succeed")
	}
	fail := scheme(t, b, "fail")
	if succeeded(t, fail) {
		t.Error("sentry(false) should fail")
	}
	if errs := errorList(t, fail); len(errs) != 1 || !strings.Contains(errs[0], "condition not met") {
		t.Errorf("errors = %v", errs)
	}
}

func TestWhen(t *testing.T) {
	b := run(t, `
		action : (), { r : 'ran'; }, (r);
		yes : when(true, action);
		no : when(false, action);
	`)

	yes := scheme(t, b, "yes")
	if !succeeded(t, yes) {
		t.Error("when(true) should run the action")
	}
	if got := field(t, yes, "outputs"); !value.Equal(got, value.Str("ran")) {
		t.Errorf("outputs = %v, want ran", got)
	}

	no := scheme(t, b, "no")
	if succeeded(t, no) {
		t.Error("when(false) should not succeed")
	}
	if errs := errorList(t, no); len(errs) != 1 || !strings.Contains(errs[0], "condition not met") {
		t.Errorf("errors = %v", errs)
	}
}

func TestSwitch(t *testing.T) {
	b := run(t, `
		handle : (str:s), { r : 'handled ' + s; }, (r);
		other : (str:s), { r : 'fallback'; }, (r);
		hit : switch('deploy', { "deploy": handle; "*": other; });
		miss : switch('teardown', { "deploy": handle; "*": other; });
		none : switch('x', { "deploy": handle; });
	`)

	if got := field(t, scheme(t, b, "hit"), "outputs"); !value.Equal(got, value.Str("handled deploy")) {
		t.Errorf("hit outputs = %v", got)
	}
	if got := field(t, scheme(t, b, "miss"), "outputs"); !value.Equal(got, value.Str("fallback")) {
		t.Errorf("miss outputs = %v", got)
	}

	none := scheme(t, b, "none")
	if succeeded(t, none) {
		t.Error("switch with no matching case should fail")
	}
	if errs := errorList(t, none); len(errs) != 1 || !strings.Contains(errs[0], "no case matched") {
		t.Errorf("errors = %v", errs)
	}
}

func TestCatch(t *testing.T) {
	b := run(t, `
		ok : (), { r : 'fine'; }, (r);
		bad : (), { r : 1 + 'x'; }, (r);
		recover : (list:errs), { r : 'recovered'; }, (r);
		clean : catch(ok, recover);
		saved : catch(bad, recover);
	`)

	clean := scheme(t, b, "clean")
	if !succeeded(t, clean) {
		t.Error("catch of a passing action should succeed")
	}
	if got := field(t, clean, "outputs"); !value.Equal(got, value.Str("fine")) {
		t.Errorf("outputs = %v, want fine", got)
	}

	saved := scheme(t, b, "saved")
	if !succeeded(t, saved) {
		t.Error("a successful recovery should report success")
	}
	if got := field(t, saved, "outputs"); !value.Equal(got, value.Str("recovered")) {
		t.Errorf("outputs = %v, want recovered", got)
	}
	if errs := errorList(t, saved); len(errs) == 0 {
		t.Error("recovery result should carry the original errors")
	}
}

func TestTimeout(t *testing.T) {
	b := run(t, `
		quick : (), { r : 'done'; }, (r);
		out : timeout(quick, 5);
	`)
	s := scheme(t, b, "out")
	if !succeeded(t, s) {
		t.Fatal("a quick action should finish within its limit")
	}
	if got := field(t, s, "outputs"); !value.Equal(got, value.Str("done")) {
		t.Errorf("outputs = %v, want done", got)
	}
}
