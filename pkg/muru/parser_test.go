package muru

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexer(t *testing.T) {
	l := NewLexer("fib :: int int # doc\nfib n = fib(n - 1) != -2.5 ? a : b\n")

	var got []TokenType
	var lits []string
	for {
		tok := l.NextToken()
		got = append(got, tok.Type)
		lits = append(lits, tok.Literal)
		if tok.Type == EOF {
			break
		}
	}

	assert.Equal(t, []TokenType{
		IDENT, DOUBLE_COLON, IDENT, IDENT, COMMENT, NEWLINE,
		IDENT, IDENT, ASSIGN, IDENT, LPAREN, IDENT, MINUS, INT, RPAREN,
		NOT_EQ, MINUS, FLOAT, QUESTION, IDENT, COLON, IDENT, NEWLINE,
		EOF,
	}, got)
	assert.Equal(t, " doc", lits[4])
	assert.Equal(t, "2.5", lits[17])
}

func TestLexerPositions(t *testing.T) {
	l := NewLexer("a\n  bc == 1")
	a := l.NextToken()
	assert.Equal(t, 1, a.Line)
	assert.Equal(t, 1, a.Column)
	l.NextToken() // newline
	bc := l.NextToken()
	assert.Equal(t, 2, bc.Line)
	assert.Equal(t, 3, bc.Column)
	eq := l.NextToken()
	assert.Equal(t, EQ, eq.Type)
	assert.Equal(t, 6, eq.Column)
}

func TestParseProgram(t *testing.T) {
	prog, err := Parse("fib.muru", `# fibonacci
fib :: int int
fib 0 = 0
fib 1 = 1
fib n = fib(n - 1) + fib(n - 2)

main = fib(10)
`)
	require.NoError(t, err)
	require.Len(t, prog.Lines, 5)
	require.Len(t, prog.Comments, 1)
	assert.Equal(t, " fibonacci", prog.Comments[0].Text)

	sigs := prog.Signatures()
	require.Len(t, sigs, 1)
	assert.Equal(t, "fib", sigs[0].Name)
	assert.Equal(t, []VariableType{Int}, sigs[0].Args)
	assert.Equal(t, Int, sigs[0].Return)
	assert.Equal(t, 2, sigs[0].Loc.Line)

	assert.Equal(t, []string{"fib", "main"}, prog.FunctionNames())

	clauses := prog.Clauses()
	require.Len(t, clauses, 4)
	assert.False(t, clauses[0].IsCatchAll())
	assert.True(t, clauses[2].IsCatchAll())

	lit := clauses[0].Params[0].(*LiteralParam)
	assert.Equal(t, Int, lit.Value.Type)
	assert.Equal(t, "0", lit.Value.Text)

	body := clauses[2].Body.(*Binary)
	assert.Equal(t, Add, body.Op)
	left := body.Left.(*Call)
	assert.Equal(t, "fib", left.Name)
	require.Len(t, left.Args, 1)
	arg := left.Args[0].(*Binary)
	assert.Equal(t, Subtract, arg.Op)
	assert.Equal(t, "n", arg.Left.(*Call).Name)

	mainBody := clauses[3].Body.(*Call)
	assert.Equal(t, 7, mainBody.Loc.Line)
	assert.Equal(t, 8, mainBody.Loc.Column)
	assert.Equal(t, len("fib(10)"), mainBody.Loc.Length)
}

func TestParseExpressions(t *testing.T) {
	tests := []struct {
		src   string
		check func(t *testing.T, e Expression)
	}{
		{"true", func(t *testing.T, e Expression) {
			assert.Equal(t, Bool, e.(*Literal).Type)
			assert.Equal(t, "1", e.(*Literal).Immediate())
		}},
		{"-3", func(t *testing.T, e Expression) {
			lit := e.(*Literal)
			assert.Equal(t, Int, lit.Type)
			assert.Equal(t, "-3", lit.Text)
			assert.Equal(t, 1, lit.Loc.Column-len("main = "))
		}},
		{"-0.5", func(t *testing.T, e Expression) {
			assert.Equal(t, Float, e.(*Literal).Type)
			assert.Equal(t, "-0.5", e.(*Literal).Text)
		}},
		{"a - 1", func(t *testing.T, e Expression) {
			b := e.(*Binary)
			assert.Equal(t, Subtract, b.Op)
			assert.Equal(t, "1", b.Right.(*Literal).Text)
		}},
		{"a - -1", func(t *testing.T, e Expression) {
			b := e.(*Binary)
			assert.Equal(t, "-1", b.Right.(*Literal).Text)
		}},
		{"(a == b) ? 1 : 2.0", func(t *testing.T, e Expression) {
			tern := e.(*Ternary)
			assert.Equal(t, Eq, tern.Cond.(*Binary).Op)
			assert.Equal(t, "2.0", tern.Else.(*Literal).Text)
		}},
		{"f(1, g(2), (3 * 4))", func(t *testing.T, e Expression) {
			call := e.(*Call)
			require.Len(t, call.Args, 3)
			assert.Equal(t, "g", call.Args[1].(*Call).Name)
			assert.Equal(t, Multiply, call.Args[2].(*Binary).Op)
		}},
		{"f()", func(t *testing.T, e Expression) {
			call := e.(*Call)
			assert.Equal(t, "f", call.Name)
			assert.Empty(t, call.Args)
		}},
		{"a / b", func(t *testing.T, e Expression) {
			assert.Equal(t, Divide, e.(*Binary).Op)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			prog, err := Parse("test.muru", "main = "+tt.src)
			require.NoError(t, err)
			require.Len(t, prog.Clauses(), 1)
			tt.check(t, prog.Clauses()[0].Body)
		})
	}
}

func TestParseParameters(t *testing.T) {
	prog, err := Parse("test.muru", "f true -1 2.5 x = x\n")
	require.NoError(t, err)
	params := prog.Clauses()[0].Params
	require.Len(t, params, 4)
	assert.Equal(t, Bool, params[0].(*LiteralParam).Value.Type)
	assert.Equal(t, "-1", params[1].(*LiteralParam).Value.Text)
	assert.Equal(t, Float, params[2].(*LiteralParam).Value.Type)
	assert.Equal(t, "x", params[3].(*BoundParam).Name)
	assert.Equal(t, Slots{"x": 3}, ClauseSlots(prog.Clauses()[0]))

	prog, err = Parse("test.muru", "f 2147483647 -2147483648 = 1\n")
	require.NoError(t, err)
	params = prog.Clauses()[0].Params
	assert.Equal(t, "2147483647", params[0].(*LiteralParam).Value.Text)
	assert.Equal(t, "-2147483648", params[1].(*LiteralParam).Value.Text)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		src    string
		msg    string
		line   int
		column int
	}{
		{"main = ", "unexpected end of file, expected expression", 1, 8},
		{"main 1 + 2", "unexpected '+', expected parameter or '='", 1, 8},
		{"f :: int string", `unknown type "string"`, 1, 10},
		{"f ::", "unexpected end of file, expected type", 1, 5},
		{"main = 1 + 2 + 3", "unexpected '+', expected end of line", 1, 14},
		{"main = 1 ? 2", "unexpected end of file, expected ':'", 1, 13},
		{"main = f(1", "unexpected end of file, expected ')'", 1, 11},
		{"main = 1 @ 2", `unexpected "@", expected end of line`, 1, 10},
		{"int = 1", `"int" is reserved`, 1, 1},
		{"ok = 1\n= 2", "unexpected '=', expected identifier", 2, 1},
		{"main = !1", `unexpected "!", expected expression`, 1, 8},
		{"main = 99999999999", "int literal 99999999999 out of range", 1, 8},
		{"main = -2147483649", "int literal -2147483649 out of range", 1, 8},
		{"f 4294967296 = 1", "int literal 4294967296 out of range", 1, 3},
		{"main = 1" + strings.Repeat("0", 40) + ".5", "float literal 1" + strings.Repeat("0", 40) + ".5 out of range", 1, 8},
		{"f x y x = x", `duplicate parameter "x"`, 1, 7},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Parse("test.muru", tt.src)
			require.Error(t, err)
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.msg, parseErr.Message)
			assert.Equal(t, tt.line, parseErr.Location.Line)
			assert.Equal(t, tt.column, parseErr.Location.Column)
			assert.Equal(t, "parse", ErrorCode(err))
		})
	}
}
