package muru

import (
	"bytes"
	"strings"
)

// Formatter renders programs in canonical form: one definition per line,
// single spaces around operators, a blank line between differently named
// functions, and comments kept where they were.
type Formatter struct {
	buf      bytes.Buffer
	comments []*Comment
	next     int  // index of the next comment to emit
	lastLine int  // last source line emitted
	lastName string
	lastCode bool // whether the last emitted line was a definition
}

// Format formats a program, including the comments collected by the parser.
func Format(prog *Program) string {
	f := &Formatter{comments: prog.Comments}
	for _, line := range prog.Lines {
		f.formatLine(line)
	}
	f.emitCommentsBefore(-1)
	return f.buf.String()
}

// FormatSource parses and formats source text.
func FormatSource(filename string, src []byte) (string, error) {
	prog, err := Parse(filename, string(src))
	if err != nil {
		return "", err
	}
	return Format(prog), nil
}

func lineOf(n Node) int {
	if loc := n.GetSourceLocation(); loc != nil {
		return loc.Line
	}
	return 0
}

// skippedLine reports whether the source had a blank line before line.
func (f *Formatter) skippedLine(line int) bool {
	return f.lastLine > 0 && line > f.lastLine+1
}

func (f *Formatter) blankLine() {
	if f.buf.Len() > 0 {
		f.buf.WriteString("\n")
	}
}

// emitCommentsBefore writes standalone comments that precede line. A
// negative line flushes everything.
func (f *Formatter) emitCommentsBefore(line int) {
	for f.next < len(f.comments) {
		c := f.comments[f.next]
		cl := lineOf(c)
		if line >= 0 && cl >= line {
			return
		}
		if f.skippedLine(cl) {
			f.blankLine()
		}
		f.buf.WriteString(formatComment(c))
		f.buf.WriteString("\n")
		f.next++
		f.lastLine = cl
		f.lastCode = false
	}
}

func formatComment(c *Comment) string {
	return strings.TrimRight("#"+c.Text, " \t")
}

func (f *Formatter) formatLine(line Line) {
	l := lineOf(line)
	if l > 0 {
		f.emitCommentsBefore(l)
	}

	name := line.LineName()
	if f.skippedLine(l) || (f.lastCode && name != f.lastName) {
		f.blankLine()
	}

	switch x := line.(type) {
	case *FunctionSignature:
		f.buf.WriteString(FormatSignature(x))
	case *FunctionClause:
		f.buf.WriteString(FormatClause(x))
	}

	if l > 0 && f.next < len(f.comments) && lineOf(f.comments[f.next]) == l {
		f.buf.WriteString("  ")
		f.buf.WriteString(formatComment(f.comments[f.next]))
		f.next++
	}
	f.buf.WriteString("\n")

	if l > 0 {
		f.lastLine = l
	}
	f.lastName = name
	f.lastCode = true
}

// FormatSignature renders a declaration: name :: int int
func FormatSignature(sig *FunctionSignature) string {
	parts := []string{sig.Name, "::"}
	for _, arg := range sig.Args {
		parts = append(parts, arg.String())
	}
	parts = append(parts, sig.Return.String())
	return strings.Join(parts, " ")
}

// FormatClause renders a clause: name p1 p2 = body
func FormatClause(clause *FunctionClause) string {
	parts := []string{clause.Name}
	for _, param := range clause.Params {
		switch p := param.(type) {
		case *BoundParam:
			parts = append(parts, p.Name)
		case *LiteralParam:
			parts = append(parts, p.Value.Text)
		}
	}
	parts = append(parts, "=", FormatExpression(clause.Body))
	return strings.Join(parts, " ")
}

// FormatExpression renders an expression. Operands that are themselves
// operations are parenthesized, since operators do not chain.
func FormatExpression(expr Expression) string {
	switch e := expr.(type) {
	case *Literal:
		return e.Text
	case *Call:
		if len(e.Args) == 0 {
			return e.Name
		}
		args := make([]string, len(e.Args))
		for i, arg := range e.Args {
			args[i] = FormatExpression(arg)
		}
		return e.Name + "(" + strings.Join(args, ", ") + ")"
	case *Binary:
		return formatOperand(e.Left) + " " + e.Op.Symbol() + " " + formatOperand(e.Right)
	case *Ternary:
		return formatOperand(e.Cond) + " ? " + formatOperand(e.Then) + " : " + formatOperand(e.Else)
	}
	panic("unhandled expression")
}

func formatOperand(expr Expression) string {
	switch expr.(type) {
	case *Binary, *Ternary:
		return "(" + FormatExpression(expr) + ")"
	}
	return FormatExpression(expr)
}
