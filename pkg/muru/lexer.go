package muru

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

type TokenType int

const (
	ILLEGAL TokenType = iota
	EOF
	NEWLINE
	COMMENT

	IDENT
	INT
	FLOAT

	DOUBLE_COLON // ::
	ASSIGN       // =
	PLUS         // +
	MINUS        // -
	ASTERISK     // *
	SLASH        // /
	EQ           // ==
	NOT_EQ       // !=
	QUESTION     // ?
	COLON        // :
	LPAREN       // (
	RPAREN       // )
	COMMA        // ,
)

var tokenNames = map[TokenType]string{
	ILLEGAL:      "illegal character",
	EOF:          "end of file",
	NEWLINE:      "newline",
	COMMENT:      "comment",
	IDENT:        "identifier",
	INT:          "integer",
	FLOAT:        "float",
	DOUBLE_COLON: "'::'",
	ASSIGN:       "'='",
	PLUS:         "'+'",
	MINUS:        "'-'",
	ASTERISK:     "'*'",
	SLASH:        "'/'",
	EQ:           "'=='",
	NOT_EQ:       "'!='",
	QUESTION:     "'?'",
	COLON:        "':'",
	LPAREN:       "'('",
	RPAREN:       "')'",
	COMMA:        "','",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

// Lexer splits source text into tokens. Whitespace other than newlines is
// skipped; newlines terminate definitions.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int
	column       int
}

func NewLexer(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.readPosition++
		l.column++
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	line, col := l.line, l.column
	tok := func(t TokenType, lit string) Token {
		return Token{Type: t, Literal: lit, Line: line, Column: col}
	}

	switch l.ch {
	case 0:
		if l.position >= len(l.input) {
			return tok(EOF, "")
		}
		l.readChar()
		return tok(ILLEGAL, "\x00")
	case '\n':
		l.readChar()
		return tok(NEWLINE, "\n")
	case '#':
		start := l.position + 1
		for l.ch != '\n' && l.ch != 0 {
			l.readChar()
		}
		return tok(COMMENT, l.input[start:l.position])
	case ':':
		if l.peekChar() == ':' {
			l.readChar()
			l.readChar()
			return tok(DOUBLE_COLON, "::")
		}
		l.readChar()
		return tok(COLON, ":")
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return tok(EQ, "==")
		}
		l.readChar()
		return tok(ASSIGN, "=")
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return tok(NOT_EQ, "!=")
		}
		l.readChar()
		return tok(ILLEGAL, "!")
	}

	if t, ok := singleCharTokens[l.ch]; ok {
		ch := l.ch
		l.readChar()
		return tok(t, string(ch))
	}

	if isLetter(l.ch) {
		return tok(IDENT, l.readIdentifier())
	}

	if isDigit(l.ch) {
		lit, isFloat := l.readNumber()
		if isFloat {
			return tok(FLOAT, lit)
		}
		return tok(INT, lit)
	}

	ch := l.ch
	l.readChar()
	return tok(ILLEGAL, string(ch))
}

var singleCharTokens = map[rune]TokenType{
	'+': PLUS,
	'-': MINUS,
	'*': ASTERISK,
	'/': SLASH,
	'?': QUESTION,
	'(': LPAREN,
	')': RPAREN,
	',': COMMA,
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber reads digits with an optional fractional part. A trailing dot
// with no digits after it is not consumed.
func (l *Lexer) readNumber() (string, bool) {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	isFloat := false
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[start:l.position], isFloat
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}
