// Package lexer turns DSL source text into a token stream.
//
// The scanner is hand-written and single-pass. It recognizes identifiers
// (including the implicit match placeholder `@`), integer and float
// literals, single- or double-quoted strings, case-insensitive boolean
// spellings, `#` line comments, and the full operator set. `*` is emitted
// as a single STAR token; the parser decides between multiplication and the
// wildcard literal from context.
package lexer
