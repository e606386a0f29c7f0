package token

import (
	"fmt"
	"strings"
)

// Type identifies the lexical class of a token.
type Type string

const (
	ILLEGAL Type = "ILLEGAL"
	EOF     Type = "EOF"

	// Identifiers and literals
	IDENT  Type = "IDENT"  // counter, imports, @
	INT    Type = "INT"    // 42
	FLOAT  Type = "FLOAT"  // 3.14
	STRING Type = "STRING" // 'abc' or "abc"
	TRUE   Type = "TRUE"
	FALSE  Type = "FALSE"

	// Operators
	PLUS    Type = "+"
	MINUS   Type = "-"
	STAR    Type = "*" // multiplication or wildcard, disambiguated by the parser
	SLASH   Type = "/"
	PERCENT Type = "%"
	CARET   Type = "^"
	EQ      Type = "=="
	NEQ     Type = "!="
	GTE     Type = ">="
	LTE     Type = "<="
	GT      Type = ">"
	LT      Type = "<"
	PIPE    Type = "|>"
	AND     Type = "AND" // "and" or "&"
	OR      Type = "OR"  // "or" or "|"
	NOT     Type = "NOT" // "not"

	// Delimiters
	ASSIGN    Type = ":=" // typed binding
	COLON     Type = ":"
	COMMA     Type = ","
	SEMICOLON Type = ";"
	DOT       Type = "."
	LPAREN    Type = "("
	RPAREN    Type = ")"
	LBRACKET  Type = "["
	RBRACKET  Type = "]"
	LBRACE    Type = "{"
	RBRACE    Type = "}"
)

// Position is a 1-based line/column pair in the source text.
type Position struct {
	Line   int
	Column int
}

// String returns "line:column".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a single lexeme with its source position.
type Token struct {
	Type    Type
	Literal string
	Pos     Position
}

// keywords maps reserved words to their token types.
var keywords = map[string]Type{
	"and": AND,
	"or":  OR,
	"not": NOT,
}

// LookupIdent returns the keyword type for an identifier, or IDENT.
// Boolean literals match in any letter case.
func LookupIdent(ident string) Type {
	if t, ok := keywords[ident]; ok {
		return t
	}
	switch {
	case strings.EqualFold(ident, "true"):
		return TRUE
	case strings.EqualFold(ident, "false"):
		return FALSE
	}
	return IDENT
}
