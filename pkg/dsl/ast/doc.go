// Package ast defines the abstract syntax tree produced by the DSL parser.
//
// The tree is a closed set of immutable node variants: literals, identifier
// references, binary and unary operations, collection literals, function
// definitions, calls, pipes, match expressions, dot access, and binding
// statements. Every node carries the source location it was parsed at so that
// evaluation and validation errors can point back into the source file.
//
// The AST is a strict tree. There are no back-edges, so evaluation never
// needs cycle detection; module-level circularity is handled entirely by the
// loader, never inside an expression tree.
package ast
