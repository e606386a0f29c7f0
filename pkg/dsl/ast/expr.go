package ast

// BinaryOperator identifies a binary operation.
type BinaryOperator string

const (
	OpAdd BinaryOperator = "+"
	OpSub BinaryOperator = "-"
	OpMul BinaryOperator = "*"
	OpDiv BinaryOperator = "/"
	OpMod BinaryOperator = "%"
	OpPow BinaryOperator = "^"
	OpEq  BinaryOperator = "=="
	OpNeq BinaryOperator = "!="
	OpGt  BinaryOperator = ">"
	OpLt  BinaryOperator = "<"
	OpGte BinaryOperator = ">="
	OpLte BinaryOperator = "<="
	OpAnd BinaryOperator = "and"
	OpOr  BinaryOperator = "or"
)

// Ident is a reference to a bound name.
type Ident struct {
	Name string
	Loc  Location
}

func (n *Ident) Pos() Location { return n.Loc }
func (n *Ident) exprNode()     {}

// BinaryOp applies an arithmetic, comparison, or logical operator to two
// operands.
type BinaryOp struct {
	Op    BinaryOperator
	Left  Expr
	Right Expr
	Loc   Location
}

func (n *BinaryOp) Pos() Location { return n.Loc }
func (n *BinaryOp) exprNode()     {}

// UnaryOp applies a unary operator (logical `not`, numeric negation).
type UnaryOp struct {
	Op      string
	Operand Expr
	Loc     Location
}

func (n *UnaryOp) Pos() Location { return n.Loc }
func (n *UnaryOp) exprNode()     {}

// Call invokes a callee with positional and keyword arguments.
type Call struct {
	Callee Expr
	Args   []Expr
	// Kwargs bind by parameter name, independent of positional order.
	// Order is preserved for deterministic evaluation.
	Kwargs []Kwarg
	Loc    Location
}

// Kwarg is a single name: value call argument.
type Kwarg struct {
	Name  string
	Value Expr
}

func (n *Call) Pos() Location { return n.Loc }
func (n *Call) exprNode()     {}

// Pipe threads the value of Source into Stage as its first positional
// argument. Stages chain left to right; a stage may carry extra call
// arguments of its own.
type Pipe struct {
	Source Expr
	Stage  Expr // Ident, DotAccess, or Call
	Loc    Location
}

func (n *Pipe) Pos() Location { return n.Loc }
func (n *Pipe) exprNode()     {}

// DotAccess resolves a single path segment against a base value.
// Chained access `a.b.c` nests: DotAccess(DotAccess(a, "b"), "c").
type DotAccess struct {
	Base    Expr
	Segment string
	Loc     Location
}

func (n *DotAccess) Pos() Location { return n.Loc }
func (n *DotAccess) exprNode()     {}
