package loader

import (
	"sort"

	"veridian-hq/covenant/pkg/contract"
)

// ValidationContext is the per-load record of contract verdicts. It lives
// for the duration of one module load and is never persisted.
type ValidationContext struct {
	ModulePath string

	// Statuses maps each candidate symbol to its verdict.
	Statuses map[string]contract.Status

	// ForceExposed holds the allow-listed names, exposed regardless of
	// contract state.
	ForceExposed map[string]bool

	// Loading marks the module as currently loading, for cycle detection.
	Loading bool

	// Mismatches collects the hash disagreements found during validation.
	// They withhold symbols; they do not fail the load.
	Mismatches []*contract.MismatchError
}

// NewValidationContext creates an empty context for a module load.
func NewValidationContext(modulePath string) *ValidationContext {
	return &ValidationContext{
		ModulePath:   modulePath,
		Statuses:     map[string]contract.Status{},
		ForceExposed: map[string]bool{},
		Loading:      true,
	}
}

// Exposable returns the sorted names eligible for exposure: tested-pass and
// force-exposed symbols only.
func (vc *ValidationContext) Exposable() []string {
	var out []string
	for name, status := range vc.Statuses {
		if status.Exposable() {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Status returns a symbol's verdict, defaulting to untested.
func (vc *ValidationContext) Status(name string) contract.Status {
	if s, ok := vc.Statuses[name]; ok {
		return s
	}
	return contract.StatusUntested
}
