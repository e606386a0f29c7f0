package ast

// IntLit is an integer literal.
type IntLit struct {
	Value int64
	Loc   Location
}

func (n *IntLit) Pos() Location { return n.Loc }
func (n *IntLit) exprNode()     {}

// FloatLit is a floating-point literal.
type FloatLit struct {
	Value float64
	Loc   Location
}

func (n *FloatLit) Pos() Location { return n.Loc }
func (n *FloatLit) exprNode()     {}

// StringLit is a quoted string literal. Single and double quotes are
// interchangeable in the source.
type StringLit struct {
	Value string
	Loc   Location
}

func (n *StringLit) Pos() Location { return n.Loc }
func (n *StringLit) exprNode()     {}

// BoolLit is a boolean literal.
type BoolLit struct {
	Value bool
	Loc   Location
}

func (n *BoolLit) Pos() Location { return n.Loc }
func (n *BoolLit) exprNode()     {}

// WildcardLit is the `*` literal used as an "any" value, a match catch-all,
// and a path wildcard.
type WildcardLit struct {
	Loc Location
}

func (n *WildcardLit) Pos() Location { return n.Loc }
func (n *WildcardLit) exprNode()     {}
