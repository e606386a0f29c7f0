package contract

import "time"

// Status is a symbol's validation verdict.
type Status string

const (
	// StatusUntested marks a symbol with no stored contract.
	StatusUntested Status = "untested"
	// StatusTestedPass marks a symbol whose source hash matches a stored
	// passing contract.
	StatusTestedPass Status = "tested-pass"
	// StatusTestedFail marks a symbol whose source changed since it was
	// certified, or whose test suite failed. Always withheld.
	StatusTestedFail Status = "tested-fail"
	// StatusForceExposed marks a bootstrap-critical symbol exposed through
	// the static allow-list, bypassing contract lookup.
	StatusForceExposed Status = "force-exposed"
)

// Exposable reports whether a symbol with this status may appear in a
// filtered module proxy.
func (s Status) Exposable() bool {
	return s == StatusTestedPass || s == StatusForceExposed
}

// Record is one symbol's persisted contract.
type Record struct {
	SourceHash string    `json:"source_hash"`
	TestHash   string    `json:"test_hash"`
	Status     Status    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
}

// Contract is a module's full contract file: symbol name to record.
type Contract map[string]Record
