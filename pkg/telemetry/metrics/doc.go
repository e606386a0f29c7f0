// Package metrics provides Prometheus collectors for module loading,
// contract verdicts and test-suite execution, plus the /metrics endpoint.
package metrics
