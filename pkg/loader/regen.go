package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"veridian-hq/covenant/pkg/contract"
	"veridian-hq/covenant/pkg/testsuite"
)

// RunSuite evaluates a module unfiltered and executes its declared test
// suite, recording each target in metrics and the journal. The stored
// contracts are not touched.
func (l *Loader) RunSuite(ctx context.Context, path string) (*Module, *testsuite.Report, error) {
	ctx, _ = withChain(ctx)
	path = filepath.ToSlash(path)

	mod, interp, err := l.evaluate(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	if mod.TestSuite == nil {
		return nil, nil, fmt.Errorf("%s declares no test_suite", path)
	}

	suite, ok := mod.Bindings.Get("test_suite")
	if !ok {
		return nil, nil, fmt.Errorf("%s: test_suite did not evaluate", path)
	}
	cases, err := testsuite.ParseCases(suite)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	runner := testsuite.NewRunner(interp)
	report := runner.Run(ctx, path, mod.Bindings, cases)

	if l.metrics != nil {
		for _, res := range report.Results {
			l.metrics.RecordTarget(res.Passed)
		}
	}
	if l.journal != nil {
		if err := l.journal.Record(ctx, report); err != nil {
			l.logger.Warn("test journal write failed", "module", path, "error", err)
		}
	}
	return mod, report, nil
}

// Regenerate re-derives a module's contracts: it runs the declared test
// suite, and only when every target passes writes fresh source hashes plus
// the suite's own hash. Any failure leaves the stored contracts untouched.
func (l *Loader) Regenerate(ctx context.Context, path string) (*testsuite.Report, bool, error) {
	path = filepath.ToSlash(path)

	mod, report, err := l.RunSuite(ctx, path)
	if err != nil {
		return nil, false, err
	}

	if !report.AllPassed() {
		for _, res := range report.Failed() {
			l.logger.Warn("test target failed",
				"module", path,
				"target", res.Target,
				"expected", res.Expected,
				"actual", res.Actual,
			)
		}
		return report, false, nil
	}

	fresh := contract.Contract{}
	now := time.Now().UTC()
	testHash := mod.TestHash()
	for _, candidate := range mod.Candidates() {
		hash, err := mod.SymbolHash(candidate)
		if err != nil {
			return report, false, fmt.Errorf("hash %s.%s: %w", path, candidate.Public, err)
		}
		fresh[candidate.Public] = contract.Record{
			SourceHash: hash,
			TestHash:   testHash,
			Status:     contract.StatusTestedPass,
			Timestamp:  now,
		}
	}

	if err := l.store.Save(ctx, path, fresh); err != nil {
		return report, false, fmt.Errorf("save contracts for %s: %w", path, err)
	}

	// Drop the cached proxy so the next load sees the new trust state.
	l.Invalidate(path)

	l.logger.Info("contracts regenerated",
		"module", path,
		"symbols", len(fresh),
		"targets", len(report.Results),
	)
	return report, true, nil
}
