package value

import (
	"fmt"
	"strings"

	"veridian-hq/covenant/pkg/dsl/ast"
)

// Kind identifies a Value variant.
type Kind string

const (
	KindInt      Kind = "int"
	KindFloat    Kind = "float"
	KindString   Kind = "str"
	KindBool     Kind = "bool"
	KindList     Kind = "list"
	KindDict     Kind = "dict"
	KindTuple    Kind = "tuple"
	KindFunction Kind = "function"
	KindBuiltin  Kind = "builtin"
	KindWildcard Kind = "any"
	KindNil      Kind = "nil"
	KindModule   Kind = "module"
)

// Value is the runtime representation of every DSL value.
type Value interface {
	Kind() Kind
	String() string
}

// Int is a 64-bit integer value.
type Int int64

func (v Int) Kind() Kind     { return KindInt }
func (v Int) String() string { return fmt.Sprintf("%d", int64(v)) }

// Float is a 64-bit floating point value.
type Float float64

func (v Float) Kind() Kind     { return KindFloat }
func (v Float) String() string { return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", float64(v)), "0"), ".") }

// Str is a string value.
type Str string

func (v Str) Kind() Kind     { return KindString }
func (v Str) String() string { return string(v) }

// Bool is a boolean value.
type Bool bool

func (v Bool) Kind() Kind { return KindBool }
func (v Bool) String() string {
	if v {
		return "true"
	}
	return "false"
}

// Nil is the absent value.
type nilValue struct{}

func (nilValue) Kind() Kind     { return KindNil }
func (nilValue) String() string { return "nil" }

// NilValue is the single Nil instance.
var NilValue Value = nilValue{}

// Wildcard is the `*` literal value.
type wildcard struct{}

func (wildcard) Kind() Kind     { return KindWildcard }
func (wildcard) String() string { return "*" }

// WildcardValue is the single Wildcard instance.
var WildcardValue Value = wildcard{}

// List is an ordered sequence of values.
type List struct {
	Elements []Value
}

func (v *List) Kind() Kind { return KindList }
func (v *List) String() string {
	parts := make([]string, len(v.Elements))
	for i, e := range v.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Tuple is a fixed-arity ordered sequence of values.
type Tuple struct {
	Elements []Value
}

func (v *Tuple) Kind() Kind { return KindTuple }
func (v *Tuple) String() string {
	parts := make([]string, len(v.Elements))
	for i, e := range v.Elements {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Function is a DSL-defined function value.
type Function struct {
	Name string // binding name, for diagnostics; may be empty
	Def  *ast.FunctionDef
}

func (v *Function) Kind() Kind { return KindFunction }
func (v *Function) String() string {
	if v.Name != "" {
		return "function<" + v.Name + ">"
	}
	return "function"
}

// Builtin is a host function supplied by the standard-library registry.
// Its implementation lives in the evaluator's builtin table; the value only
// carries the operation name.
type Builtin struct {
	Name string
}

func (v *Builtin) Kind() Kind     { return KindBuiltin }
func (v *Builtin) String() string { return "builtin<" + v.Name + ">" }

// Attributer resolves a named attribute of a module-like value. The loader's
// filtered proxies implement it; unauthorized access returns an error rather
// than a zero value.
type Attributer interface {
	Attr(name string) (Value, error)
}

// Module is a reference to a loaded (filtered) module.
type Module struct {
	Path  string
	Attrs Attributer
}

func (v *Module) Kind() Kind     { return KindModule }
func (v *Module) String() string { return "module<" + v.Path + ">" }
