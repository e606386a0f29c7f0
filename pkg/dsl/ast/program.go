package ast

// BindOp distinguishes the two binding operators.
type BindOp string

const (
	// BindTyped is the `:=` operator, always preceded by a type:name pair.
	BindTyped BindOp = ":="
	// BindUntyped is the `:` operator for untyped bindings.
	BindUntyped BindOp = ":"
)

// Binding declares (or re-declares) a name in the current scope.
// TypeName is empty for untyped bindings.
type Binding struct {
	TypeName string
	Name     string
	Op       BindOp
	Value    Expr
	Loc      Location
	// EndLine is the source line on which the binding's terminating
	// statement ends. Together with Loc.Line it delimits the symbol's
	// defining span for contract hashing.
	EndLine int
}

func (n *Binding) Pos() Location { return n.Loc }
func (n *Binding) stmtNode()     {}

// ExprStmt is a bare expression evaluated for its effect, such as a
// top-level call.
type ExprStmt struct {
	X   Expr
	Loc Location
}

func (n *ExprStmt) Pos() Location { return n.Loc }
func (n *ExprStmt) stmtNode()     {}

// Program is a fully parsed DSL source file: an ordered sequence of
// statements, optionally wrapped in a top-level `{ }` block in the source.
type Program struct {
	Statements []Stmt
}

// Pos returns the location of the first statement, or the zero Location for
// an empty program.
func (p *Program) Pos() Location {
	if len(p.Statements) == 0 {
		return Location{}
	}
	return p.Statements[0].Pos()
}

// Binding returns the top-level binding with the given name, or nil.
// When a name is re-declared the last binding wins.
func (p *Program) Binding(name string) *Binding {
	var found *Binding
	for _, s := range p.Statements {
		if b, ok := s.(*Binding); ok && b.Name == name {
			found = b
		}
	}
	return found
}
