package muru

import (
	"strconv"

	"github.com/vito/muru/pkg/hm"
)

type Node interface {
	GetSourceLocation() *SourceLocation
}

// Line is a top level form: a *FunctionSignature or a *FunctionClause.
type Line interface {
	Node
	LineName() string
}

// Program is a parsed source file.
type Program struct {
	Filename string
	Lines    []Line

	// Comments are kept for the formatter only.
	Comments []*Comment
}

// Comment is a # comment, either on its own line or trailing a definition.
type Comment struct {
	Text string
	Loc  *SourceLocation
}

func (c *Comment) GetSourceLocation() *SourceLocation { return c.Loc }

// Signatures returns the explicit signature declarations in source order.
func (p *Program) Signatures() []*FunctionSignature {
	var sigs []*FunctionSignature
	for _, l := range p.Lines {
		if sig, ok := l.(*FunctionSignature); ok {
			sigs = append(sigs, sig)
		}
	}
	return sigs
}

// Clauses returns every clause in source order.
func (p *Program) Clauses() []*FunctionClause {
	var clauses []*FunctionClause
	for _, l := range p.Lines {
		if c, ok := l.(*FunctionClause); ok {
			clauses = append(clauses, c)
		}
	}
	return clauses
}

// FunctionNames returns the distinct names that have at least one clause, in
// order of first appearance.
func (p *Program) FunctionNames() []string {
	seen := map[string]bool{}
	var names []string
	for _, c := range p.Clauses() {
		if !seen[c.Name] {
			seen[c.Name] = true
			names = append(names, c.Name)
		}
	}
	return names
}

// FunctionSignature declares the argument types and return type of a name.
type FunctionSignature struct {
	Name   string
	Args   []VariableType
	Return VariableType
	Loc    *SourceLocation
}

var _ Line = (*FunctionSignature)(nil)

func (s *FunctionSignature) LineName() string { return s.Name }

func (s *FunctionSignature) GetSourceLocation() *SourceLocation { return s.Loc }

// Type converts the signature into a function type.
func (s *FunctionSignature) Type() *hm.FunctionType {
	args := make(hm.Types, len(s.Args))
	for i, a := range s.Args {
		args[i] = a
	}
	return hm.NewFnType(args, s.Return)
}

func (s *FunctionSignature) String() string {
	return s.Name + " " + s.Type().String()
}

// FunctionClause is one definition of a name. Clauses sharing a name are
// tried in declaration order.
type FunctionClause struct {
	Name   string
	Params []Parameter
	Body   Expression
	Loc    *SourceLocation
}

var _ Line = (*FunctionClause)(nil)

func (c *FunctionClause) LineName() string { return c.Name }

func (c *FunctionClause) GetSourceLocation() *SourceLocation { return c.Loc }

// IsCatchAll reports whether the clause has no literal parameters and so
// matches any arguments.
func (c *FunctionClause) IsCatchAll() bool {
	for _, p := range c.Params {
		if _, ok := p.(*LiteralParam); ok {
			return false
		}
	}
	return true
}

// Parameter is a *BoundParam or a *LiteralParam.
type Parameter interface {
	Node
	isParameter()
}

// BoundParam matches any value and binds it to a name visible in the body.
type BoundParam struct {
	Name string
	Loc  *SourceLocation
}

func (*BoundParam) isParameter() {}

func (p *BoundParam) GetSourceLocation() *SourceLocation { return p.Loc }

// LiteralParam only matches arguments equal to its value. It occupies an
// argument slot but binds nothing.
type LiteralParam struct {
	Value *Literal
}

func (*LiteralParam) isParameter() {}

func (p *LiteralParam) GetSourceLocation() *SourceLocation { return p.Value.Loc }

// Expression is one of *Literal, *Call, *Binary or *Ternary.
type Expression interface {
	Node

	// SetInferredType stores the type the validator assigned to this node
	SetInferredType(VariableType)

	// GetInferredType retrieves the validated type, or 0 if the node was
	// never validated
	GetInferredType() VariableType

	isExpression()
}

// InferredTypeHolder is embedded in expression nodes to store inferred types
type InferredTypeHolder struct {
	inferredType VariableType
}

func (h *InferredTypeHolder) SetInferredType(t VariableType) {
	h.inferredType = t
}

func (h *InferredTypeHolder) GetInferredType() VariableType {
	return h.inferredType
}

// Literal is a constant. Text is the literal as written, which is what the
// code generator emits.
type Literal struct {
	InferredTypeHolder
	Type VariableType
	Text string
	Loc  *SourceLocation
}

var _ Expression = (*Literal)(nil)

func (*Literal) isExpression() {}

func (l *Literal) GetSourceLocation() *SourceLocation { return l.Loc }

// Immediate is the operand of the constant instruction: Bool becomes 0 or 1.
func (l *Literal) Immediate() string {
	if l.Type == Bool {
		if l.Text == "true" {
			return "1"
		}
		return "0"
	}
	return l.Text
}

func IntLiteral(v int64) *Literal {
	return &Literal{Type: Int, Text: strconv.FormatInt(v, 10)}
}

func FloatLiteral(text string) *Literal {
	return &Literal{Type: Float, Text: text}
}

func BoolLiteral(v bool) *Literal {
	return &Literal{Type: Bool, Text: strconv.FormatBool(v)}
}

// Call references a name. With no arguments it may resolve to a bound
// parameter; otherwise it calls the global function of that name.
type Call struct {
	InferredTypeHolder
	Name string
	Args []Expression
	Loc  *SourceLocation
}

var _ Expression = (*Call)(nil)

func (*Call) isExpression() {}

func (c *Call) GetSourceLocation() *SourceLocation { return c.Loc }

// Operator is a binary operator.
type Operator int

const (
	Add Operator = iota
	Subtract
	Multiply
	Divide
	Eq
	Neq
)

// Mnemonic is the instruction suffix: i32.add, f32.ne, ...
func (o Operator) Mnemonic() string {
	switch o {
	case Add:
		return "add"
	case Subtract:
		return "sub"
	case Multiply:
		return "mul"
	case Divide:
		return "div"
	case Eq:
		return "eq"
	case Neq:
		return "ne"
	}
	return "?"
}

// Symbol is the operator as written in source.
func (o Operator) Symbol() string {
	switch o {
	case Add:
		return "+"
	case Subtract:
		return "-"
	case Multiply:
		return "*"
	case Divide:
		return "/"
	case Eq:
		return "=="
	case Neq:
		return "!="
	}
	return "?"
}

// IsArithmetic reports whether the operator computes a number from numbers.
func (o Operator) IsArithmetic() bool {
	return o == Add || o == Subtract || o == Multiply || o == Divide
}

func (o Operator) String() string { return o.Mnemonic() }

// Binary applies an operator to two operands.
type Binary struct {
	InferredTypeHolder
	Op    Operator
	Left  Expression
	Right Expression
	Loc   *SourceLocation
}

var _ Expression = (*Binary)(nil)

func (*Binary) isExpression() {}

func (b *Binary) GetSourceLocation() *SourceLocation { return b.Loc }

// Ternary is cond ? then : else.
type Ternary struct {
	InferredTypeHolder
	Cond Expression
	Then Expression
	Else Expression
	Loc  *SourceLocation
}

var _ Expression = (*Ternary)(nil)

func (*Ternary) isExpression() {}

func (t *Ternary) GetSourceLocation() *SourceLocation { return t.Loc }
