package ast

// ListLit is an ordered sequence literal `[a, b, c]`.
type ListLit struct {
	Elements []Expr
	Loc      Location
}

func (n *ListLit) Pos() Location { return n.Loc }
func (n *ListLit) exprNode()     {}

// TupleLit is a fixed-arity ordered sequence, written `(a, b)` or as a bare
// comma-separated sequence where no grouping ambiguity exists.
type TupleLit struct {
	Elements []Expr
	Loc      Location
}

func (n *TupleLit) Pos() Location { return n.Loc }
func (n *TupleLit) exprNode()     {}

// DictEntry is a single key: value pair inside a dict literal.
type DictEntry struct {
	Key    string
	KeyLoc Location
	Value  Expr
}

// DictLit is an ordered mapping literal `{ k: v; ... }`. Keys are unique
// within one literal; on a duplicate key the last write wins while the key
// keeps its original position.
type DictLit struct {
	Entries []DictEntry
	Loc     Location
}

func (n *DictLit) Pos() Location { return n.Loc }
func (n *DictLit) exprNode()     {}
