package ast

// Node is the interface implemented by every AST node.
type Node interface {
	// Pos returns the source location where the node begins.
	Pos() Location
}

// Expr is implemented by all expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by all statement nodes.
type Stmt interface {
	Node
	stmtNode()
}
