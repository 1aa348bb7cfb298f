package muru

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"unicode/utf8"
)

// ParseFile reads and parses a source file.
func ParseFile(filename string) (*Program, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Parse(filename, string(src))
}

// Parse parses a whole program. Each definition occupies one line:
//
//	fib :: int int
//	fib 0 = 0
//	fib 1 = 1
//	fib n = fib(n - 1) + fib(n - 2)
func Parse(filename, src string) (*Program, error) {
	p := &parser{
		lexer:    NewLexer(src),
		filename: filename,
		prog:     &Program{Filename: filename},
	}
	p.next()
	p.next()

	for p.cur.Type != EOF {
		if p.cur.Type == NEWLINE {
			p.next()
			continue
		}
		line, err := p.parseLine()
		if err != nil {
			return nil, err
		}
		p.prog.Lines = append(p.prog.Lines, line)
	}

	return p.prog, nil
}

type parser struct {
	lexer    *Lexer
	filename string
	prog     *Program

	cur  Token
	peek Token
}

// next advances one token. Comments never reach the grammar; they are
// collected on the program for the formatter.
func (p *parser) next() {
	p.cur = p.peek
	for {
		p.peek = p.lexer.NextToken()
		if p.peek.Type != COMMENT {
			return
		}
		p.prog.Comments = append(p.prog.Comments, &Comment{
			Text: p.peek.Literal,
			Loc:  p.loc(p.peek),
		})
	}
}

func (p *parser) loc(tok Token) *SourceLocation {
	length := len(tok.Literal)
	if tok.Type == EOF || tok.Type == NEWLINE {
		length = 1
	}
	return &SourceLocation{
		Filename: p.filename,
		Line:     tok.Line,
		Column:   tok.Column,
		Length:   length,
	}
}

func (p *parser) errorf(tok Token, format string, args ...any) error {
	return &ParseError{
		Message:  fmt.Sprintf(format, args...),
		Location: p.loc(tok),
	}
}

func (p *parser) unexpected(want string) error {
	if p.cur.Type == ILLEGAL {
		return p.errorf(p.cur, "unexpected %q, expected %s", p.cur.Literal, want)
	}
	return p.errorf(p.cur, "unexpected %s, expected %s", p.cur.Type, want)
}

func (p *parser) expect(t TokenType) (Token, error) {
	if p.cur.Type != t {
		return Token{}, p.unexpected(t.String())
	}
	tok := p.cur
	p.next()
	return tok, nil
}

func (p *parser) endLine() error {
	switch p.cur.Type {
	case NEWLINE:
		p.next()
		return nil
	case EOF:
		return nil
	}
	return p.unexpected("end of line")
}

func (p *parser) parseLine() (Line, error) {
	name, err := p.expect(IDENT)
	if err != nil {
		return nil, err
	}
	if isReserved(name.Literal) {
		return nil, p.errorf(name, "%q is reserved", name.Literal)
	}

	if p.cur.Type == DOUBLE_COLON {
		p.next()
		return p.parseSignature(name)
	}
	return p.parseFunction(name)
}

func (p *parser) parseSignature(name Token) (*FunctionSignature, error) {
	var types []VariableType
	for p.cur.Type == IDENT {
		t, ok := ParseVariableType(p.cur.Literal)
		if !ok {
			return nil, p.errorf(p.cur, "unknown type %q", p.cur.Literal)
		}
		types = append(types, t)
		p.next()
	}
	if len(types) == 0 {
		return nil, p.unexpected("type")
	}
	if err := p.endLine(); err != nil {
		return nil, err
	}

	loc := p.loc(name)
	return &FunctionSignature{
		Name:   name.Literal,
		Args:   types[:len(types)-1],
		Return: types[len(types)-1],
		Loc:    loc,
	}, nil
}

func (p *parser) parseFunction(name Token) (*FunctionClause, error) {
	clause := &FunctionClause{
		Name: name.Literal,
		Loc:  p.loc(name),
	}

	bound := map[string]bool{}
	for p.cur.Type != ASSIGN {
		tok := p.cur
		param, err := p.parseParameter()
		if err != nil {
			return nil, err
		}
		if b, ok := param.(*BoundParam); ok {
			if bound[b.Name] {
				return nil, p.errorf(tok, "duplicate parameter %q", b.Name)
			}
			bound[b.Name] = true
		}
		clause.Params = append(clause.Params, param)
	}
	p.next()

	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	clause.Body = body

	if err := p.endLine(); err != nil {
		return nil, err
	}
	return clause, nil
}

func (p *parser) parseParameter() (Parameter, error) {
	if p.cur.Type == IDENT && !isBoolLiteral(p.cur.Literal) {
		if isReserved(p.cur.Literal) {
			return nil, p.errorf(p.cur, "%q is reserved", p.cur.Literal)
		}
		param := &BoundParam{Name: p.cur.Literal, Loc: p.loc(p.cur)}
		p.next()
		return param, nil
	}

	lit, ok, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, p.unexpected("parameter or '='")
	}
	return &LiteralParam{Value: lit}, nil
}

// parseLiteral consumes a literal if one starts at the current token. A
// minus sign directly followed by a number is a negative literal.
func (p *parser) parseLiteral() (*Literal, bool, error) {
	tok := p.cur
	switch tok.Type {
	case IDENT:
		if !isBoolLiteral(tok.Literal) {
			return nil, false, nil
		}
		p.next()
		return &Literal{Type: Bool, Text: tok.Literal, Loc: p.loc(tok)}, true, nil
	case INT, FLOAT:
		p.next()
		lit, err := p.numberLiteral(tok, tok.Literal)
		return lit, err == nil, err
	case MINUS:
		num := p.peek
		if (num.Type != INT && num.Type != FLOAT) ||
			num.Line != tok.Line || num.Column != tok.Column+1 {
			return nil, false, nil
		}
		p.next()
		p.next()
		neg := tok
		neg.Literal = "-" + num.Literal
		neg.Type = num.Type
		lit, err := p.numberLiteral(neg, neg.Literal)
		return lit, err == nil, err
	}
	return nil, false, nil
}

// numberLiteral checks that text fits the 32-bit machine type of tok.
func (p *parser) numberLiteral(tok Token, text string) (*Literal, error) {
	t := Int
	var err error
	if tok.Type == FLOAT {
		t = Float
		_, err = strconv.ParseFloat(text, 32)
	} else {
		_, err = strconv.ParseInt(text, 10, 32)
	}
	if errors.Is(err, strconv.ErrRange) {
		return nil, p.errorf(tok, "%s literal %s out of range", t, text)
	}
	if err != nil {
		return nil, p.errorf(tok, "invalid %s literal %s", t, text)
	}
	return &Literal{Type: t, Text: text, Loc: p.loc(tok)}, nil
}

func (p *parser) parseExpression() (Expression, error) {
	start := p.cur
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	if op, ok := binaryOperators[p.cur.Type]; ok {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Binary{Op: op, Left: left, Right: right, Loc: p.loc(start)}, nil
	}

	if p.cur.Type == QUESTION {
		p.next()
		then, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(COLON); err != nil {
			return nil, err
		}
		els, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Ternary{Cond: left, Then: then, Else: els, Loc: p.loc(start)}, nil
	}

	return left, nil
}

var binaryOperators = map[TokenType]Operator{
	PLUS:     Add,
	MINUS:    Subtract,
	ASTERISK: Multiply,
	SLASH:    Divide,
	EQ:       Eq,
	NOT_EQ:   Neq,
}

func (p *parser) parseUnary() (Expression, error) {
	if p.cur.Type == LPAREN {
		p.next()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	}

	lit, ok, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	if ok {
		return lit, nil
	}

	if p.cur.Type != IDENT {
		return nil, p.unexpected("expression")
	}
	if isReserved(p.cur.Literal) {
		return nil, p.errorf(p.cur, "%q is reserved", p.cur.Literal)
	}

	call := &Call{Name: p.cur.Literal, Loc: p.loc(p.cur)}
	p.next()

	// arguments must hug the name: f(x), not f (x)
	if p.cur.Type != LPAREN || p.cur.Line != call.Loc.Line ||
		p.cur.Column != call.Loc.Column+utf8.RuneCountInString(call.Name) {
		return call, nil
	}
	p.next()
	for p.cur.Type != RPAREN {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		if p.cur.Type != COMMA {
			break
		}
		p.next()
	}
	rparen, err := p.expect(RPAREN)
	if err != nil {
		return nil, err
	}
	if rparen.Line == call.Loc.Line {
		call.Loc.Length = rparen.Column + 1 - call.Loc.Column
	}
	return call, nil
}

func isBoolLiteral(s string) bool {
	return s == "true" || s == "false"
}

func isReserved(s string) bool {
	if isBoolLiteral(s) {
		return true
	}
	_, isType := ParseVariableType(s)
	return isType
}
