package loader

import (
	"context"
	"log/slog"

	"veridian-hq/covenant/pkg/contract"
	"veridian-hq/covenant/pkg/contract/storage"
	"veridian-hq/covenant/pkg/telemetry/metrics"
)

// AllowList is the fixed set of bootstrap-critical symbol names that bypass
// contract lookup. It exists because the loader module must load itself
// before any contract can be evaluated; these four names are the deliberate
// trust root and must never grow casually.
var AllowList = map[string]bool{
	"resource":          true,
	"bootstrap":         true,
	"register":          true,
	"generate_checksum": true,
}

// ContractEngine decides, per symbol, whether a module may expose it.
type ContractEngine struct {
	store   storage.Store
	logger  *slog.Logger
	metrics *metrics.LoaderMetrics
}

// EngineOption configures a ContractEngine.
type EngineOption func(*ContractEngine)

// WithEngineLogger sets the engine's logger.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *ContractEngine) { e.logger = logger }
}

// WithEngineMetrics records per-symbol verdicts.
func WithEngineMetrics(m *metrics.LoaderMetrics) EngineOption {
	return func(e *ContractEngine) { e.metrics = m }
}

// NewContractEngine creates an engine over the given contract store.
func NewContractEngine(store storage.Store, opts ...EngineOption) *ContractEngine {
	e := &ContractEngine{
		store:  store,
		logger: slog.Default().With("component", "loader.engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Validate computes a verdict for every candidate symbol of the module.
// Allow-listed names are force-exposed before any contract lookup. A hash
// mismatch withholds the symbol and records the disagreement; it never
// fails the load.
func (e *ContractEngine) Validate(ctx context.Context, mod *Module) (*ValidationContext, error) {
	vc := NewValidationContext(mod.Path)

	stored, err := e.store.Load(ctx, mod.Path)
	if err != nil {
		return nil, err
	}

	for _, candidate := range mod.Candidates() {
		status := e.verdict(mod, candidate, stored, vc)
		vc.Statuses[candidate.Public] = status
		if e.metrics != nil {
			e.metrics.RecordVerdict(string(status))
		}
	}

	e.logger.Debug("module validated",
		"module", mod.Path,
		"candidates", len(vc.Statuses),
		"exposable", len(vc.Exposable()),
		"mismatches", len(vc.Mismatches),
	)
	return vc, nil
}

func (e *ContractEngine) verdict(mod *Module, candidate ExportEntry, stored contract.Contract, vc *ValidationContext) contract.Status {
	if AllowList[candidate.Public] {
		vc.ForceExposed[candidate.Public] = true
		return contract.StatusForceExposed
	}

	hash, err := mod.SymbolHash(candidate)
	if err != nil {
		e.logger.Warn("cannot hash symbol", "module", mod.Path, "symbol", candidate.Public, "error", err)
		return contract.StatusUntested
	}

	rec, ok := stored[candidate.Public]
	if !ok {
		return contract.StatusUntested
	}

	if rec.SourceHash != hash {
		vc.Mismatches = append(vc.Mismatches, &contract.MismatchError{
			Module: mod.Path,
			Symbol: candidate.Public,
			Stored: rec.SourceHash,
			Actual: hash,
		})
		e.logger.Warn("contract mismatch, symbol withheld",
			"module", mod.Path,
			"symbol", candidate.Public,
		)
		return contract.StatusTestedFail
	}

	if rec.Status == contract.StatusTestedPass {
		return contract.StatusTestedPass
	}
	// A matching hash under a non-pass contract stays withheld until
	// re-certified; there is no grandfathering.
	return contract.StatusTestedFail
}
