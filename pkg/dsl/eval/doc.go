// Package eval walks the DSL abstract syntax tree against an environment
// and produces runtime values.
//
// The evaluator is single-threaded and synchronous per program: statements
// execute strictly in source order within a scope, and a name may be
// re-bound. Function calls push a fresh scope whose parent is the module's
// root scope, so bodies see module globals and the standard library but not
// the caller's locals. Flow-control operations are ordinary builtin calls
// that block until they return a completed scheme record.
//
// The standard library is a closed registry fixed at interpreter
// construction; identifiers resolve through the scope chain, then the
// registry, then the type-name table, and otherwise fail with an
// UndefinedName error.
package eval
