// Package flow provides the orchestration operations of the DSL standard
// library. Every operation returns a scheme record, a dict with the uniform
// keys action, success, inputs, outputs, errors, time and worker, so that
// programs can branch on success and inspect errors without exceptions.
package flow
