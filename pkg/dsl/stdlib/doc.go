// Package stdlib implements the data operations of the DSL standard
// library: dict and list manipulation, dot-path access with wildcard and
// index segments, template formatting, schema normalization, path mapping
// and format conversion. The registry is closed; programs cannot add
// operations at runtime.
package stdlib
