package parser

import (
	"strconv"
	"strings"

	"veridian-hq/covenant/pkg/dsl/ast"
	dslerrors "veridian-hq/covenant/pkg/dsl/errors"
	"veridian-hq/covenant/pkg/dsl/lexer"
	"veridian-hq/covenant/pkg/dsl/token"
)

// Operator precedence levels, lowest to highest binding.
const (
	_ int = iota
	precLowest
	precOr
	precAnd
	precNot
	precCompare
	precPipe
	precSum
	precProduct
	precPower
	precPrefix
	precCall
)

var precedences = map[token.Type]int{
	token.OR:      precOr,
	token.AND:     precAnd,
	token.EQ:      precCompare,
	token.NEQ:     precCompare,
	token.GT:      precCompare,
	token.LT:      precCompare,
	token.GTE:     precCompare,
	token.LTE:     precCompare,
	token.PIPE:    precPipe,
	token.PLUS:    precSum,
	token.MINUS:   precSum,
	token.STAR:    precProduct,
	token.SLASH:   precProduct,
	token.PERCENT: precProduct,
	token.CARET:   precPower,
	token.LPAREN:  precCall,
	token.DOT:     precCall,
}

var binaryOps = map[token.Type]ast.BinaryOperator{
	token.OR:      ast.OpOr,
	token.AND:     ast.OpAnd,
	token.EQ:      ast.OpEq,
	token.NEQ:     ast.OpNeq,
	token.GT:      ast.OpGt,
	token.LT:      ast.OpLt,
	token.GTE:     ast.OpGte,
	token.LTE:     ast.OpLte,
	token.PLUS:    ast.OpAdd,
	token.MINUS:   ast.OpSub,
	token.STAR:    ast.OpMul,
	token.SLASH:   ast.OpDiv,
	token.PERCENT: ast.OpMod,
	token.CARET:   ast.OpPow,
}

// Parser parses a single DSL source file.
type Parser struct {
	file   string
	tokens []token.Token
	pos    int
}

// Parse tokenizes and parses a complete DSL source file into a Program.
func Parse(file, source string) (*ast.Program, error) {
	p := newParser(file, source)
	return p.parseProgram()
}

// ParseExpr parses a single standalone expression, used for match guards
// and condition strings.
func ParseExpr(source string) (ast.Expr, error) {
	p := newParser("", source)
	expr, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	if p.cur().Type != token.EOF {
		return nil, p.errorf("unexpected %q after expression", p.cur().Literal)
	}
	return expr, nil
}

func newParser(file, source string) *Parser {
	l := lexer.New(source)
	var toks []token.Token
	for {
		t := l.Next()
		toks = append(toks, t)
		if t.Type == token.EOF {
			break
		}
	}
	return &Parser{file: file, tokens: toks}
}

func (p *Parser) cur() token.Token  { return p.tokens[p.pos] }
func (p *Parser) peek() token.Token { return p.at(p.pos + 1) }

func (p *Parser) at(i int) token.Token {
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[i]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) loc(t token.Token) ast.Location {
	return ast.Location{File: p.file, Line: t.Pos.Line, Column: t.Pos.Column}
}

func (p *Parser) errorf(format string, args ...any) *dslerrors.ParseError {
	return dslerrors.NewParseError(p.loc(p.cur()), format, args...)
}

func (p *Parser) expect(t token.Type, expected string) (token.Token, error) {
	if p.cur().Type != t {
		return token.Token{}, &dslerrors.ParseError{
			Message:  "unexpected token",
			Expected: expected,
			Found:    p.cur().Literal,
			Location: p.loc(p.cur()),
		}
	}
	return p.advance(), nil
}

// parseProgram parses the statement sequence, optionally wrapped in a
// top-level braced block.
func (p *Parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{}

	braced := false
	if p.cur().Type == token.LBRACE {
		braced = true
		p.advance()
	}

	for p.cur().Type != token.EOF {
		if braced && p.cur().Type == token.RBRACE {
			p.advance()
			break
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, stmt)
	}

	if p.cur().Type != token.EOF {
		return nil, p.errorf("unexpected %q after top-level block", p.cur().Literal)
	}
	return prog, nil
}

// parseStatement parses one semicolon-terminated statement: a typed binding
// `type:name := expr;`, an untyped binding `name : expr;`, or a bare
// expression statement.
func (p *Parser) parseStatement() (ast.Stmt, error) {
	if p.cur().Type == token.IDENT && p.peek().Type == token.COLON {
		return p.parseBinding()
	}
	loc := p.loc(p.cur())
	expr, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON, "';'"); err != nil {
		return nil, err
	}
	return &ast.ExprStmt{X: expr, Loc: loc}, nil
}

func (p *Parser) parseBinding() (*ast.Binding, error) {
	first := p.advance() // IDENT
	p.advance()          // COLON

	b := &ast.Binding{Loc: p.loc(first)}

	if p.cur().Type == token.IDENT && p.peek().Type == token.ASSIGN {
		// type:name := expr
		name := p.advance()
		p.advance() // :=
		b.TypeName = first.Literal
		b.Name = name.Literal
		b.Op = ast.BindTyped
	} else {
		// name : expr
		b.Name = first.Literal
		b.Op = ast.BindUntyped
	}

	value, err := p.parseBindingValue()
	if err != nil {
		return nil, err
	}
	b.Value = value

	end, err := p.expect(token.SEMICOLON, "';'")
	if err != nil {
		return nil, err
	}
	b.EndLine = end.Pos.Line
	return b, nil
}

// parseBindingValue parses the right-hand side of a binding. It recognizes
// the three-part function literal, and folds a bare comma-separated
// sequence into a tuple.
func (p *Parser) parseBindingValue() (ast.Expr, error) {
	if p.cur().Type == token.LPAREN {
		if fn, ok, err := p.tryFunctionDef(); err != nil {
			return nil, err
		} else if ok {
			return fn, nil
		}
	}

	first, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	if p.cur().Type != token.COMMA {
		return first, nil
	}

	loc := first.Pos()
	elements := []ast.Expr{first}
	for p.cur().Type == token.COMMA {
		p.advance()
		el, err := p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
	}
	return &ast.TupleLit{Elements: elements, Loc: loc}, nil
}

// tryFunctionDef attempts to parse `(params), { body }, (returns)` at the
// current position. On a structural mismatch it rewinds and reports ok=false
// so the caller can parse an ordinary expression instead.
func (p *Parser) tryFunctionDef() (*ast.FunctionDef, bool, error) {
	start := p.pos
	loc := p.loc(p.cur())

	params, ok := p.tryParamList()
	if !ok {
		p.pos = start
		return nil, false, nil
	}
	if p.cur().Type != token.COMMA || p.peek().Type != token.LBRACE {
		p.pos = start
		return nil, false, nil
	}
	p.advance() // ,
	p.advance() // {

	var body []*ast.Binding
	for p.cur().Type != token.RBRACE {
		if p.cur().Type == token.EOF {
			return nil, false, p.errorf("unterminated function body")
		}
		if p.cur().Type != token.IDENT || p.peek().Type != token.COLON {
			return nil, false, p.errorf("function bodies contain only named binding statements")
		}
		stmt, err := p.parseBinding()
		if err != nil {
			return nil, false, err
		}
		body = append(body, stmt)
	}
	p.advance() // }

	if _, err := p.expect(token.COMMA, "',' before output list"); err != nil {
		return nil, false, err
	}
	returns, ok := p.tryParamList()
	if !ok {
		return nil, false, p.errorf("expected output parameter list")
	}

	return &ast.FunctionDef{Params: params, Body: body, Returns: returns, Loc: loc}, true, nil
}

// tryParamList parses `( [type:]name, ... )` without consuming input on
// failure.
func (p *Parser) tryParamList() ([]ast.Param, bool) {
	start := p.pos
	if p.cur().Type != token.LPAREN {
		return nil, false
	}
	p.advance()

	var params []ast.Param
	for p.cur().Type != token.RPAREN {
		if p.cur().Type != token.IDENT {
			p.pos = start
			return nil, false
		}
		param := ast.Param{Name: p.advance().Literal}
		if p.cur().Type == token.COLON {
			if p.peek().Type != token.IDENT {
				p.pos = start
				return nil, false
			}
			p.advance()
			param.Type = param.Name
			param.Name = p.advance().Literal
		}
		params = append(params, param)

		if p.cur().Type == token.COMMA {
			p.advance()
			continue
		}
		if p.cur().Type != token.RPAREN {
			p.pos = start
			return nil, false
		}
	}
	p.advance() // )
	return params, true
}

// parseExpression is the Pratt core.
func (p *Parser) parseExpression(precedence int) (ast.Expr, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for precedence < p.curPrecedence() {
		left, err = p.parseInfix(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.cur().Type]; ok {
		return prec
	}
	return precLowest
}

func (p *Parser) parsePrefix() (ast.Expr, error) {
	tok := p.cur()
	loc := p.loc(tok)

	switch tok.Type {
	case token.INT:
		p.advance()
		v, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return nil, p.errorf("invalid integer literal %q", tok.Literal)
		}
		return &ast.IntLit{Value: v, Loc: loc}, nil

	case token.FLOAT:
		p.advance()
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, p.errorf("invalid float literal %q", tok.Literal)
		}
		return &ast.FloatLit{Value: v, Loc: loc}, nil

	case token.STRING:
		p.advance()
		return &ast.StringLit{Value: tok.Literal, Loc: loc}, nil

	case token.TRUE:
		p.advance()
		return &ast.BoolLit{Value: true, Loc: loc}, nil

	case token.FALSE:
		p.advance()
		return &ast.BoolLit{Value: false, Loc: loc}, nil

	case token.STAR:
		// In value position `*` is the wildcard literal.
		p.advance()
		return &ast.WildcardLit{Loc: loc}, nil

	case token.IDENT:
		p.advance()
		return &ast.Ident{Name: tok.Literal, Loc: loc}, nil

	case token.NOT:
		p.advance()
		operand, err := p.parseExpression(precNot)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: "not", Operand: operand, Loc: loc}, nil

	case token.MINUS:
		p.advance()
		operand, err := p.parseExpression(precPrefix)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: "-", Operand: operand, Loc: loc}, nil

	case token.LPAREN:
		return p.parseGroupOrTuple()

	case token.LBRACKET:
		return p.parseList()

	case token.LBRACE:
		return p.parseDict()
	}

	return nil, &dslerrors.ParseError{
		Message:  "unexpected token",
		Expected: "expression",
		Found:    tok.Literal,
		Location: loc,
	}
}

func (p *Parser) parseInfix(left ast.Expr) (ast.Expr, error) {
	tok := p.cur()
	loc := p.loc(tok)

	switch tok.Type {
	case token.LPAREN:
		return p.parseCall(left)

	case token.DOT:
		p.advance()
		seg, err := p.expect(token.IDENT, "path segment")
		if err != nil {
			return nil, err
		}
		return &ast.DotAccess{Base: left, Segment: seg.Literal, Loc: loc}, nil

	case token.PIPE:
		p.advance()
		stage, err := p.parseExpression(precPipe)
		if err != nil {
			return nil, err
		}
		return &ast.Pipe{Source: left, Stage: stage, Loc: loc}, nil

	case token.CARET:
		// Right-associative power.
		p.advance()
		right, err := p.parseExpression(precPower - 1)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryOp{Op: ast.OpPow, Left: left, Right: right, Loc: loc}, nil
	}

	op, ok := binaryOps[tok.Type]
	if !ok {
		return nil, p.errorf("unexpected operator %q", tok.Literal)
	}
	prec := p.curPrecedence()
	p.advance()
	right, err := p.parseExpression(prec)
	if err != nil {
		return nil, err
	}
	return &ast.BinaryOp{Op: op, Left: left, Right: right, Loc: loc}, nil
}

// parseGroupOrTuple parses `(expr)` grouping, `(a, b)` tuples, and the
// empty tuple `()`. A single parenthesized expression without a trailing
// comma is a grouping, not a one-tuple.
func (p *Parser) parseGroupOrTuple() (ast.Expr, error) {
	open := p.advance() // (
	loc := p.loc(open)

	if p.cur().Type == token.RPAREN {
		p.advance()
		return &ast.TupleLit{Loc: loc}, nil
	}

	first, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}

	if p.cur().Type == token.RPAREN {
		p.advance()
		return first, nil // grouping
	}

	elements := []ast.Expr{first}
	for p.cur().Type == token.COMMA {
		p.advance()
		if p.cur().Type == token.RPAREN {
			break // trailing comma
		}
		el, err := p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
	}
	if _, err := p.expect(token.RPAREN, "')'"); err != nil {
		return nil, err
	}
	return &ast.TupleLit{Elements: elements, Loc: loc}, nil
}

func (p *Parser) parseList() (ast.Expr, error) {
	open := p.advance() // [
	loc := p.loc(open)

	var elements []ast.Expr
	for p.cur().Type != token.RBRACKET {
		el, err := p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
		if p.cur().Type == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RBRACKET, "']'"); err != nil {
		return nil, err
	}
	return &ast.ListLit{Elements: elements, Loc: loc}, nil
}

// parseDict parses `{ key: value; ... }` with semicolon-terminated entries
// and an optional trailing semicolon. Keys are string literals or bare
// identifiers.
func (p *Parser) parseDict() (ast.Expr, error) {
	open := p.advance() // {
	loc := p.loc(open)

	dict := &ast.DictLit{Loc: loc}
	for p.cur().Type != token.RBRACE {
		if p.cur().Type == token.EOF {
			return nil, p.errorf("unterminated dict literal")
		}

		keyTok := p.cur()
		var key string
		switch keyTok.Type {
		case token.STRING, token.IDENT:
			key = keyTok.Literal
		case token.STAR:
			key = "*"
		default:
			return nil, &dslerrors.ParseError{
				Message:  "invalid dict key",
				Expected: "string or identifier",
				Found:    keyTok.Literal,
				Location: p.loc(keyTok),
			}
		}
		p.advance()

		if _, err := p.expect(token.COLON, "':' after dict key"); err != nil {
			return nil, err
		}
		value, err := p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}

		setDictEntry(dict, ast.DictEntry{Key: key, KeyLoc: p.loc(keyTok), Value: value})

		if p.cur().Type == token.SEMICOLON {
			p.advance()
			continue
		}
		if p.cur().Type != token.RBRACE {
			return nil, p.errorf("expected ';' or '}' after dict entry")
		}
	}
	p.advance() // }
	return dict, nil
}

// setDictEntry enforces last-write-wins for duplicate keys while keeping
// the key's original position.
func setDictEntry(d *ast.DictLit, entry ast.DictEntry) {
	for i, e := range d.Entries {
		if e.Key == entry.Key {
			d.Entries[i].Value = entry.Value
			return
		}
	}
	d.Entries = append(d.Entries, entry)
}

// parseCall parses a call's argument list. It also lowers the `match`
// special form into a Match node with ordered guard clauses, so malformed
// guards fail at parse time rather than deep in execution.
func (p *Parser) parseCall(callee ast.Expr) (ast.Expr, error) {
	open := p.advance() // (
	loc := p.loc(open)

	call := &ast.Call{Callee: callee, Loc: loc}
	seen := map[string]bool{}

	for p.cur().Type != token.RPAREN {
		if p.cur().Type == token.EOF {
			return nil, p.errorf("unterminated argument list")
		}

		if p.cur().Type == token.IDENT && p.peek().Type == token.COLON {
			name := p.advance().Literal
			p.advance() // :
			if seen[name] {
				return nil, p.errorf("duplicate keyword argument %q", name)
			}
			seen[name] = true
			value, err := p.parseExpression(precLowest)
			if err != nil {
				return nil, err
			}
			call.Kwargs = append(call.Kwargs, ast.Kwarg{Name: name, Value: value})
		} else {
			arg, err := p.parseExpression(precLowest)
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
		}

		if p.cur().Type == token.COMMA {
			p.advance()
			continue
		}
		if p.cur().Type != token.RPAREN {
			return nil, p.errorf("expected ',' or ')' in argument list")
		}
	}
	p.advance() // )

	if id, ok := callee.(*ast.Ident); ok && id.Name == "match" {
		return p.lowerMatch(call)
	}
	return call, nil
}

// lowerMatch converts `match(subject, { guard: result; ... })` into a Match
// node. Guards are parsed eagerly; the catch-all (`*` or empty guard) must
// be the final clause.
func (p *Parser) lowerMatch(call *ast.Call) (ast.Expr, error) {
	if len(call.Args) != 2 || len(call.Kwargs) != 0 {
		return nil, dslerrors.NewParseError(call.Loc, "match requires a subject and a guard dict")
	}
	dict, ok := call.Args[1].(*ast.DictLit)
	if !ok {
		return nil, dslerrors.NewParseError(call.Args[1].Pos(), "match guards must be a dict literal")
	}

	m := &ast.Match{Subject: call.Args[0], Loc: call.Loc}
	for i, entry := range dict.Entries {
		clause := ast.MatchClause{Guard: entry.Key, Result: entry.Value}
		if entry.Key != "*" && entry.Key != "" {
			src := entry.Key
			if !strings.Contains(src, "@") {
				src = "@ " + src
			}
			cond, err := ParseExpr(src)
			if err != nil {
				return nil, dslerrors.NewParseError(entry.KeyLoc, "invalid match guard %q: %v", entry.Key, err)
			}
			clause.Cond = cond
		} else if i != len(dict.Entries)-1 {
			return nil, dslerrors.NewParseError(entry.KeyLoc, "catch-all guard must be the last clause")
		}
		m.Clauses = append(m.Clauses, clause)
	}
	return m, nil
}
