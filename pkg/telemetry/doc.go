// Package telemetry groups the observability subpackages: structured
// logging construction and Prometheus metrics for module loading and
// test-suite execution.
package telemetry
