package testsuite_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"veridian-hq/covenant/pkg/dsl/eval"
	"veridian-hq/covenant/pkg/dsl/parser"
	"veridian-hq/covenant/pkg/dsl/value"
	"veridian-hq/covenant/pkg/testsuite"
)

const fixtureModule = `
rate : 3;
double : (int:n), { r : n * 2; }, (r);
broken : (int:n), { r : n + 'x'; }, (r);
`

func moduleBindings(t *testing.T) (*value.Dict, eval.Caller) {
	t.Helper()
	prog, err := parser.Parse("fixture.dsl", fixtureModule)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	interp := eval.New(eval.Registry{})
	bindings, err := interp.Execute(context.Background(), prog)
	if err != nil {
		t.Fatalf("execute error: %v", err)
	}
	return bindings, interp
}

func TestRunnerRun(t *testing.T) {
	bindings, caller := moduleBindings(t)
	runner := testsuite.NewRunner(caller)

	cases := []testsuite.Case{
		{Target: "double", InputArgs: []value.Value{value.Int(5)}, Expected: value.Int(10)},
		{Target: "rate", Expected: value.Int(3), Description: "bare binding compares directly"},
		{Target: "double", InputArgs: []value.Value{value.Int(5)}, Expected: value.Int(11)},
	}

	report := runner.Run(context.Background(), "fixture.dsl", bindings, cases)

	if report.Module != "fixture.dsl" {
		t.Errorf("Module = %q", report.Module)
	}
	if len(report.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(report.Results))
	}
	if report.AllPassed() {
		t.Error("a wrong expectation should fail the run")
	}
	if failed := report.Failed(); len(failed) != 1 || failed[0].Actual != "10" {
		t.Errorf("Failed() = %+v", failed)
	}
	if !report.Results[0].Passed || !report.Results[1].Passed {
		t.Error("matching cases should pass")
	}
}

func TestRunnerContinuesPastErrors(t *testing.T) {
	bindings, caller := moduleBindings(t)
	runner := testsuite.NewRunner(caller)

	cases := []testsuite.Case{
		{Target: "missing", Expected: value.Int(1)},
		{Target: "broken", InputArgs: []value.Value{value.Int(1)}, Expected: value.Int(2)},
		{Target: "double", InputArgs: []value.Value{value.Int(2)}, Expected: value.Int(4)},
	}

	report := runner.Run(context.Background(), "fixture.dsl", bindings, cases)
	if len(report.Results) != 3 {
		t.Fatalf("results = %d, want 3 despite errors", len(report.Results))
	}
	if report.Results[0].Err == nil || report.Results[0].Actual != "<unbound>" {
		t.Errorf("unbound target result = %+v", report.Results[0])
	}
	if report.Results[1].Err == nil || !strings.HasPrefix(report.Results[1].Actual, "<error:") {
		t.Errorf("erroring target result = %+v", report.Results[1])
	}
	if !report.Results[2].Passed {
		t.Error("later cases should still run and pass")
	}
}

func TestParseCases(t *testing.T) {
	source := `
		test_suite : [
			{
				"target": 'double';
				"input_args": (5,);
				"expected_output": 10;
				"description": 'doubles its input';
			},
			{ "target": 'rate'; "expected_output": 3; },
			{ "target": 'double'; "input_args": 7; "expected_output": 14; }
		];
	`
	prog, err := parser.Parse("suite.dsl", source)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	bindings, err := eval.New(eval.Registry{}).Execute(context.Background(), prog)
	if err != nil {
		t.Fatalf("execute error: %v", err)
	}
	suite, _ := bindings.Get("test_suite")

	cases, err := testsuite.ParseCases(suite)
	if err != nil {
		t.Fatalf("ParseCases() error = %v", err)
	}
	if len(cases) != 3 {
		t.Fatalf("cases = %d, want 3", len(cases))
	}

	if cases[0].Target != "double" || cases[0].Description != "doubles its input" {
		t.Errorf("case 0 = %+v", cases[0])
	}
	if len(cases[0].InputArgs) != 1 || !value.Equal(cases[0].InputArgs[0], value.Int(5)) {
		t.Errorf("case 0 args = %v", cases[0].InputArgs)
	}
	if len(cases[1].InputArgs) != 0 {
		t.Errorf("case 1 should have no args, got %v", cases[1].InputArgs)
	}
	if len(cases[2].InputArgs) != 1 || !value.Equal(cases[2].InputArgs[0], value.Int(7)) {
		t.Errorf("scalar input_args should wrap into one argument, got %v", cases[2].InputArgs)
	}
}

func TestParseCasesRejectsBadShapes(t *testing.T) {
	if _, err := testsuite.ParseCases(value.Int(1)); err == nil {
		t.Error("non-collection suite should fail")
	}

	missing := value.NewDict()
	missing.Set("expected_output", value.Int(1))
	if _, err := testsuite.ParseCases(&value.List{Elements: []value.Value{missing}}); err == nil {
		t.Error("entry without a target should fail")
	}
}

func TestJournalRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	journal, err := testsuite.OpenJournal(path)
	if err != nil {
		t.Fatalf("OpenJournal() error = %v", err)
	}
	defer journal.Close()

	report := &testsuite.Report{
		Module: "fixture.dsl",
		Results: []testsuite.Result{
			{Target: "double", Passed: true, Expected: "10", Actual: "10"},
			{Target: "rate", Passed: false, Expected: "3", Actual: "4"},
		},
	}
	if err := journal.Record(context.Background(), report); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	// A second run appends without error.
	if err := journal.Record(context.Background(), report); err != nil {
		t.Fatalf("second Record() error = %v", err)
	}
}

func TestJournalCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".covenant", "journal.db")

	journal, err := testsuite.OpenJournal(path)
	if err != nil {
		t.Fatalf("OpenJournal() error = %v", err)
	}
	defer journal.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("journal file not created: %v", err)
	}
}
