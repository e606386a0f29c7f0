package errors

import (
	"fmt"

	"veridian-hq/covenant/pkg/dsl/ast"
)

// ParseError reports a lexical or grammatical violation. Parsing does not
// recover: the first violation rejects the whole file.
type ParseError struct {
	Message  string       // What went wrong
	Expected string       // Expected-token description, if known
	Found    string       // The offending lexeme, if any
	Location ast.Location // Where the violation was detected
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse error at %s: %s", e.Location, e.Message)
	if e.Expected != "" {
		msg += fmt.Sprintf(" (expected %s", e.Expected)
		if e.Found != "" {
			msg += fmt.Sprintf(", found %q", e.Found)
		}
		msg += ")"
	}
	return msg
}

// NewParseError creates a ParseError at the given location.
func NewParseError(loc ast.Location, format string, args ...any) *ParseError {
	return &ParseError{
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
	}
}
