package lexer

import (
	"testing"

	"veridian-hq/covenant/pkg/dsl/token"
)

func collect(t *testing.T, source string) []token.Token {
	t.Helper()
	l := New(source)
	var toks []token.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func TestOperators(t *testing.T) {
	source := `+ - * / % ^ & | not == != >= <= > < |> := : , ; ( ) [ ] { }`
	want := []token.Type{
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.CARET, token.AND, token.OR, token.NOT,
		token.EQ, token.NEQ, token.GTE, token.LTE, token.GT, token.LT,
		token.PIPE, token.ASSIGN, token.COLON, token.COMMA, token.SEMICOLON,
		token.LPAREN, token.RPAREN, token.LBRACKET, token.RBRACKET,
		token.LBRACE, token.RBRACE,
		token.EOF,
	}

	toks := collect(t, source)
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, typ := range want {
		if toks[i].Type != typ {
			t.Errorf("token %d = %s (%q), want %s", i, toks[i].Type, toks[i].Literal, typ)
		}
	}
}

func TestPipeVersusOr(t *testing.T) {
	toks := collect(t, `a |> b | c`)
	want := []token.Type{token.IDENT, token.PIPE, token.IDENT, token.OR, token.IDENT, token.EOF}
	for i, typ := range want {
		if toks[i].Type != typ {
			t.Errorf("token %d = %s, want %s", i, toks[i].Type, typ)
		}
	}
}

func TestAssignVersusColon(t *testing.T) {
	toks := collect(t, `int:limit := 5; rate : 2;`)
	want := []struct {
		typ token.Type
		lit string
	}{
		{token.IDENT, "int"},
		{token.COLON, ":"},
		{token.IDENT, "limit"},
		{token.ASSIGN, ":="},
		{token.INT, "5"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "rate"},
		{token.COLON, ":"},
		{token.INT, "2"},
		{token.SEMICOLON, ";"},
	}
	for i, w := range want {
		if toks[i].Type != w.typ || toks[i].Literal != w.lit {
			t.Errorf("token %d = %s %q, want %s %q", i, toks[i].Type, toks[i].Literal, w.typ, w.lit)
		}
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		source string
		typ    token.Type
		lit    string
	}{
		{"0", token.INT, "0"},
		{"42", token.INT, "42"},
		{"3.14", token.FLOAT, "3.14"},
		{"10.0", token.FLOAT, "10.0"},
	}
	for _, tt := range tests {
		toks := collect(t, tt.source)
		if toks[0].Type != tt.typ || toks[0].Literal != tt.lit {
			t.Errorf("%q = %s %q, want %s %q", tt.source, toks[0].Type, toks[0].Literal, tt.typ, tt.lit)
		}
	}
}

func TestDotAfterIdent(t *testing.T) {
	// `path.field` is ident, dot, ident; `3.14` stays a float.
	toks := collect(t, `path.field`)
	want := []token.Type{token.IDENT, token.DOT, token.IDENT, token.EOF}
	for i, typ := range want {
		if toks[i].Type != typ {
			t.Errorf("token %d = %s, want %s", i, toks[i].Type, typ)
		}
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{`'single'`, "single"},
		{`"double"`, "double"},
		{`'it\'s'`, "it's"},
		{`"line\nbreak"`, "line\nbreak"},
		{`"tab\there"`, "tab\there"},
	}
	for _, tt := range tests {
		toks := collect(t, tt.source)
		if toks[0].Type != token.STRING {
			t.Errorf("%q type = %s, want STRING", tt.source, toks[0].Type)
			continue
		}
		if toks[0].Literal != tt.want {
			t.Errorf("%q literal = %q, want %q", tt.source, toks[0].Literal, tt.want)
		}
	}
}

func TestUnterminatedString(t *testing.T) {
	toks := collect(t, `'oops`)
	if toks[0].Type != token.ILLEGAL {
		t.Errorf("unterminated string type = %s, want ILLEGAL", toks[0].Type)
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	tests := []struct {
		source string
		typ    token.Type
	}{
		{"true", token.TRUE},
		{"false", token.FALSE},
		{"True", token.TRUE},
		{"tRuE", token.TRUE},
		{"FALSE", token.FALSE},
		{"fAlSe", token.FALSE},
		{"not", token.NOT},
		{"NOT", token.IDENT},
		{"and", token.AND},
		{"or", token.OR},
		{"merge", token.IDENT},
		{"_private", token.IDENT},
		{"@", token.IDENT},
		{"snake_case_2", token.IDENT},
	}
	for _, tt := range tests {
		toks := collect(t, tt.source)
		if toks[0].Type != tt.typ {
			t.Errorf("%q type = %s, want %s", tt.source, toks[0].Type, tt.typ)
		}
	}
}

func TestComments(t *testing.T) {
	source := "# leading comment\nx : 1; # trailing\n# another\ny : 2;"
	toks := collect(t, source)
	var idents []string
	for _, tok := range toks {
		if tok.Type == token.IDENT {
			idents = append(idents, tok.Literal)
		}
	}
	if len(idents) != 2 || idents[0] != "x" || idents[1] != "y" {
		t.Errorf("idents = %v, want [x y]", idents)
	}
}

func TestPositions(t *testing.T) {
	toks := collect(t, "a : 1;\nbb : 2;")
	// Second statement starts on line 2, column 1.
	var bb token.Token
	for _, tok := range toks {
		if tok.Literal == "bb" {
			bb = tok
		}
	}
	if bb.Pos.Line != 2 {
		t.Errorf("bb line = %d, want 2", bb.Pos.Line)
	}
	if bb.Pos.Column != 1 {
		t.Errorf("bb column = %d, want 1", bb.Pos.Column)
	}
}

func TestIllegalBareEquals(t *testing.T) {
	toks := collect(t, `a = 1`)
	found := false
	for _, tok := range toks {
		if tok.Type == token.ILLEGAL {
			found = true
		}
	}
	if !found {
		t.Error("bare '=' should lex as ILLEGAL")
	}
}
