// Package errors defines the error taxonomy shared by the DSL lexer,
// parser, and evaluator.
//
// Parse errors are always fatal to the file being loaded: a source file
// either fully parses or is rejected, and the error carries the exact
// source position plus a description of what was expected. Evaluation
// errors carry a kind (type mismatch, path not found, match exhausted,
// undefined name, arity mismatch) so callers can report or aggregate them;
// a test-suite run records them as failed targets instead of aborting.
package errors
