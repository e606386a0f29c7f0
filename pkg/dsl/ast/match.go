package ast

// MatchClause pairs a guard with its result expression. Guard is the raw
// guard string as written; Cond is the guard parsed as an expression over
// the implicit subject placeholder `@`. A nil Cond marks the catch-all
// clause (guard `"*"` or empty).
type MatchClause struct {
	Guard  string
	Cond   Expr
	Result Expr
}

// Match evaluates its guards in listed order with the subject bound to `@`;
// the first truthy guard selects its result. The catch-all clause, when
// present, must be last.
type Match struct {
	Subject Expr
	Clauses []MatchClause
	Loc     Location
}

func (n *Match) Pos() Location { return n.Loc }
func (n *Match) exprNode()     {}
