package testsuite

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"veridian-hq/covenant/pkg/dsl/eval"
	"veridian-hq/covenant/pkg/dsl/value"
)

// Case is one test-suite entry: a target symbol, optional call arguments,
// and the value the target must evaluate to.
type Case struct {
	Target      string
	InputArgs   []value.Value
	Expected    value.Value
	Description string
}

// Result is the outcome of one case.
type Result struct {
	Target      string
	Description string
	Passed      bool
	Expected    string
	Actual      string
	Err         error
	Elapsed     time.Duration
}

// Report aggregates a full suite run.
type Report struct {
	Module  string
	Results []Result
	Elapsed time.Duration
}

// AllPassed reports whether every case in the run passed.
func (r *Report) AllPassed() bool {
	for _, res := range r.Results {
		if !res.Passed {
			return false
		}
	}
	return true
}

// Failed returns the failed results.
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.Passed {
			out = append(out, res)
		}
	}
	return out
}

// Runner executes suites against module bindings.
type Runner struct {
	caller eval.Caller
	logger *slog.Logger
}

// NewRunner creates a Runner that calls function targets through caller.
func NewRunner(caller eval.Caller) *Runner {
	return &Runner{
		caller: caller,
		logger: slog.Default().With("component", "testsuite"),
	}
}

// Run executes every case against the given bindings. An error in one case
// marks that case failed and the run continues.
func (r *Runner) Run(ctx context.Context, module string, bindings *value.Dict, cases []Case) *Report {
	report := &Report{Module: module}
	start := time.Now()

	for _, c := range cases {
		report.Results = append(report.Results, r.runCase(ctx, bindings, c))
	}

	report.Elapsed = time.Since(start)
	r.logger.Info("test suite finished",
		"module", module,
		"cases", len(cases),
		"failed", len(report.Failed()),
		"elapsed", report.Elapsed,
	)
	return report
}

func (r *Runner) runCase(ctx context.Context, bindings *value.Dict, c Case) Result {
	res := Result{
		Target:      c.Target,
		Description: c.Description,
		Expected:    c.Expected.String(),
	}
	start := time.Now()
	defer func() { res.Elapsed = time.Since(start) }()

	target, ok := bindings.Get(c.Target)
	if !ok {
		res.Err = fmt.Errorf("target %q is not bound in the module", c.Target)
		res.Actual = "<unbound>"
		return res
	}

	actual := target
	if len(c.InputArgs) > 0 {
		out, err := r.caller.Call(ctx, target, c.InputArgs, nil)
		if err != nil {
			res.Err = err
			res.Actual = fmt.Sprintf("<error: %v>", err)
			return res
		}
		actual = out
	}

	res.Actual = actual.String()
	res.Passed = value.Equal(c.Expected, actual)
	return res
}

// ParseCases extracts cases from a test_suite value: a list or tuple of
// dicts with the keys target, input_args, expected_output and description.
func ParseCases(suite value.Value) ([]Case, error) {
	var entries []value.Value
	switch s := suite.(type) {
	case *value.List:
		entries = s.Elements
	case *value.Tuple:
		entries = s.Elements
	case *value.Dict:
		entries = []value.Value{s}
	default:
		return nil, fmt.Errorf("test_suite is %s, want list or tuple of dicts", suite.Kind())
	}

	cases := make([]Case, 0, len(entries))
	for i, entry := range entries {
		d, ok := entry.(*value.Dict)
		if !ok {
			return nil, fmt.Errorf("test_suite entry %d is %s, want dict", i, entry.Kind())
		}

		rawTarget, ok := d.Get("target")
		if !ok {
			return nil, fmt.Errorf("test_suite entry %d has no target", i)
		}
		target, ok := rawTarget.(value.Str)
		if !ok {
			return nil, fmt.Errorf("test_suite entry %d target is %s, want str", i, rawTarget.Kind())
		}

		c := Case{Target: string(target), Expected: value.NilValue}
		if expected, ok := d.Get("expected_output"); ok {
			c.Expected = expected
		}
		if desc, ok := d.Get("description"); ok {
			if s, ok := desc.(value.Str); ok {
				c.Description = string(s)
			}
		}
		if args, ok := d.Get("input_args"); ok {
			switch a := args.(type) {
			case *value.Tuple:
				c.InputArgs = a.Elements
			case *value.List:
				c.InputArgs = a.Elements
			default:
				c.InputArgs = []value.Value{a}
			}
		}
		cases = append(cases, c)
	}
	return cases, nil
}
