package ast

// Param is a declared function parameter or return slot. Type is empty for
// untyped parameters; otherwise it names a runtime type (`int`, `float`,
// `str`, `bool`, `dict`, `list`, `any`) checked at call time.
type Param struct {
	Type string
	Name string
}

// FunctionDef is the three-part function literal
//
//	(type:name, ...), { body-statements }, (name, ...)
//
// Body statements are named bindings evaluated in declaration order in a
// fresh scope. The output list names which bindings become the return
// value(s); more than one output packs a Tuple in declared order.
type FunctionDef struct {
	Params  []Param
	Body    []*Binding
	Returns []Param
	Loc     Location
}

func (n *FunctionDef) Pos() Location { return n.Loc }
func (n *FunctionDef) exprNode()     {}
