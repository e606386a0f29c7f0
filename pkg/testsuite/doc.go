// Package testsuite runs the DSL-declared test suites that certify module
// symbols. Each target is executed against the unfiltered module bindings;
// failures are aggregated per target, never aborting the rest of the suite.
// Runs can be journaled to SQLite for audit.
package testsuite
