package lexer

import (
	"strings"

	"veridian-hq/covenant/pkg/dsl/token"
)

// Lexer scans DSL source text and produces tokens one at a time.
type Lexer struct {
	input  string
	pos    int  // current offset
	next   int  // offset after current char
	ch     byte // current char, 0 at EOF
	line   int
	column int
}

// New creates a Lexer over the given source text.
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.next >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.next]
	}
	l.pos = l.next
	l.next++
	if l.ch == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
}

func (l *Lexer) peekChar() byte {
	if l.next >= len(l.input) {
		return 0
	}
	return l.input[l.next]
}

func (l *Lexer) position() token.Position {
	return token.Position{Line: l.line, Column: l.column}
}

// Next returns the next token in the stream. After EOF it keeps returning
// EOF tokens.
func (l *Lexer) Next() token.Token {
	l.skipSpaceAndComments()

	pos := l.position()

	switch l.ch {
	case 0:
		return token.Token{Type: token.EOF, Pos: pos}
	case '+':
		return l.emit(token.PLUS, pos)
	case '-':
		return l.emit(token.MINUS, pos)
	case '*':
		return l.emit(token.STAR, pos)
	case '/':
		return l.emit(token.SLASH, pos)
	case '%':
		return l.emit(token.PERCENT, pos)
	case '^':
		return l.emit(token.CARET, pos)
	case '&':
		return l.emit(token.AND, pos)
	case ',':
		return l.emit(token.COMMA, pos)
	case ';':
		return l.emit(token.SEMICOLON, pos)
	case '.':
		return l.emit(token.DOT, pos)
	case '(':
		return l.emit(token.LPAREN, pos)
	case ')':
		return l.emit(token.RPAREN, pos)
	case '[':
		return l.emit(token.LBRACKET, pos)
	case ']':
		return l.emit(token.RBRACKET, pos)
	case '{':
		return l.emit(token.LBRACE, pos)
	case '}':
		return l.emit(token.RBRACE, pos)
	case ':':
		if l.peekChar() == '=' {
			l.readChar()
			return l.emit2(token.ASSIGN, ":=", pos)
		}
		return l.emit(token.COLON, pos)
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			return l.emit2(token.EQ, "==", pos)
		}
		return l.emit(token.ILLEGAL, pos)
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			return l.emit2(token.NEQ, "!=", pos)
		}
		return l.emit(token.ILLEGAL, pos)
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			return l.emit2(token.GTE, ">=", pos)
		}
		return l.emit(token.GT, pos)
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			return l.emit2(token.LTE, "<=", pos)
		}
		return l.emit(token.LT, pos)
	case '|':
		if l.peekChar() == '>' {
			l.readChar()
			return l.emit2(token.PIPE, "|>", pos)
		}
		return l.emit(token.OR, pos)
	case '\'', '"':
		return l.readString(l.ch, pos)
	}

	if isDigit(l.ch) {
		return l.readNumber(pos)
	}
	if isIdentStart(l.ch) {
		return l.readIdent(pos)
	}
	return l.emit(token.ILLEGAL, pos)
}

func (l *Lexer) emit(t token.Type, pos token.Position) token.Token {
	tok := token.Token{Type: t, Literal: string(l.ch), Pos: pos}
	l.readChar()
	return tok
}

func (l *Lexer) emit2(t token.Type, lit string, pos token.Position) token.Token {
	l.readChar()
	return token.Token{Type: t, Literal: lit, Pos: pos}
}

func (l *Lexer) skipSpaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n':
			l.readChar()
		case l.ch == '#':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		default:
			return
		}
	}
}

func (l *Lexer) readString(quote byte, pos token.Position) token.Token {
	var sb strings.Builder
	l.readChar() // consume opening quote
	for l.ch != quote && l.ch != 0 {
		if l.ch == '\\' && l.peekChar() != 0 {
			l.readChar()
			switch l.ch {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteByte(l.ch)
			}
		} else {
			sb.WriteByte(l.ch)
		}
		l.readChar()
	}
	if l.ch == 0 {
		return token.Token{Type: token.ILLEGAL, Literal: sb.String(), Pos: pos}
	}
	l.readChar() // consume closing quote
	return token.Token{Type: token.STRING, Literal: sb.String(), Pos: pos}
}

func (l *Lexer) readNumber(pos token.Position) token.Token {
	start := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	typ := token.INT
	if l.ch == '.' && isDigit(l.peekChar()) {
		typ = token.FLOAT
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return token.Token{Type: typ, Literal: l.input[start:l.pos], Pos: pos}
}

func (l *Lexer) readIdent(pos token.Position) token.Token {
	start := l.pos
	for isIdentPart(l.ch) {
		l.readChar()
	}
	lit := l.input[start:l.pos]
	return token.Token{Type: token.LookupIdent(lit), Literal: lit, Pos: pos}
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch byte) bool {
	return ch == '_' || ch == '@' ||
		(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
