package contract

import "fmt"

// MismatchError reports that a symbol's live source hash disagrees with its
// stored contract. The symbol is withheld; the module still loads.
type MismatchError struct {
	Module string
	Symbol string
	Stored string
	Actual string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("contract mismatch for %s.%s: stored %.12s, actual %.12s",
		e.Module, e.Symbol, e.Stored, e.Actual)
}

// UnexposedSymbolError reports access to a symbol the module builder
// withheld. It carries the verdict so callers can distinguish never-tested
// symbols from hash mismatches.
type UnexposedSymbolError struct {
	Module string
	Symbol string
	Status Status
}

func (e *UnexposedSymbolError) Error() string {
	return fmt.Sprintf("symbol %s.%s is not exposed (status: %s)", e.Module, e.Symbol, e.Status)
}
