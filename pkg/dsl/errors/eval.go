package errors

import (
	"fmt"

	"veridian-hq/covenant/pkg/dsl/ast"
)

// EvalKind categorizes an evaluation failure.
type EvalKind string

const (
	// KindTypeMismatch is raised when a typed parameter or operator
	// receives a value of the wrong runtime type.
	KindTypeMismatch EvalKind = "type_mismatch"
	// KindPathNotFound is raised when a dot-path segment cannot be
	// resolved against its base value.
	KindPathNotFound EvalKind = "path_not_found"
	// KindMatchExhausted is raised when no match guard is truthy and no
	// catch-all clause exists.
	KindMatchExhausted EvalKind = "match_exhausted"
	// KindUndefinedName is raised when an identifier resolves to nothing
	// in any scope, the standard library, or the type table.
	KindUndefinedName EvalKind = "undefined_name"
	// KindArityMismatch is raised when a call leaves required parameters
	// unfilled or supplies the same parameter twice.
	KindArityMismatch EvalKind = "arity_mismatch"
)

// EvalError reports a failure during AST evaluation. It propagates up to
// the statement that triggered it.
type EvalError struct {
	Kind     EvalKind
	Message  string
	Location ast.Location
}

// Error implements the error interface.
func (e *EvalError) Error() string {
	if e.Location.IsValid() {
		return fmt.Sprintf("%s at %s: %s", e.Kind, e.Location, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewEvalError creates an EvalError of the given kind.
func NewEvalError(kind EvalKind, loc ast.Location, format string, args ...any) *EvalError {
	return &EvalError{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
	}
}
