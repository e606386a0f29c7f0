// Package value defines the DSL's runtime value representation.
//
// Value is a closed tagged union over Int, Float, String, Bool, List, Dict,
// Tuple, Function, Builtin, Wildcard, Nil, and Module (a reference to a
// filtered proxy). Equality is structural per variant; numbers compare
// across Int and Float, and tuples and lists compare element-wise. Dicts
// preserve insertion order with last-write-wins on duplicate keys.
package value
