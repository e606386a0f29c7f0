// Package parser builds the DSL abstract syntax tree from source text.
//
// The parser is a Pratt (top-down operator precedence) parser over a fully
// lexed token buffer. Precedence, lowest to highest binding: logical `or`,
// logical `and`, unary `not`, equality/comparison, the pipe `|>`, additive,
// multiplicative, power (right-associative), unary minus, and finally call
// and dot access. The token buffer allows the bounded backtracking needed
// to recognize the three-part function literal
//
//	(type:name, ...), { body }, (name, ...)
//
// and to distinguish grouping `(expr)` from one-element tuples.
//
// Parsing does not recover from errors: the first lexical or grammatical
// violation rejects the file with a ParseError carrying the source position
// and an expected-token description.
package parser
