// Package ir implements the s-expression tree that the compiler emits. The
// tree is WebAssembly text: atoms are instructions, names, and immediates,
// lists are nested forms.
package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is either an Atom or a List.
type Node interface {
	fmt.Stringer

	// Pretty renders the node, indenting nested forms by width spaces. A width
	// of zero renders everything on one line.
	Pretty(width int) string

	isNode()
}

// Atom is a leaf: an instruction name, a $name, a quoted string or a number.
type Atom string

var _ Node = Atom("")

func (Atom) isNode() {}

func (a Atom) String() string { return string(a) }

func (a Atom) Pretty(int) string { return string(a) }

// List is a parenthesized form.
type List []Node

var _ Node = List(nil)

func (List) isNode() {}

func (l List) String() string { return l.Pretty(0) }

func (l List) Pretty(width int) string {
	if !l.hasDepth() || len(l) < 2 {
		parts := make([]string, len(l))
		for i, n := range l {
			parts[i] = n.Pretty(width)
		}
		return "(" + strings.Join(parts, " ") + ")"
	}

	indent := strings.Repeat(" ", width)
	lineBreak := " "
	finalBreak := ""
	if width > 0 {
		lineBreak = "\n"
		finalBreak = "\n"
	}

	var out strings.Builder
	out.WriteString("(")
	out.WriteString(l[0].Pretty(width))
	for _, child := range l[1:] {
		for _, line := range strings.Split(child.Pretty(width), "\n") {
			out.WriteString(lineBreak)
			out.WriteString(indent)
			out.WriteString(line)
		}
	}
	out.WriteString(finalBreak)
	out.WriteString(")")
	return out.String()
}

func (l List) hasDepth() bool {
	for _, n := range l {
		if _, ok := n.(List); ok {
			return true
		}
	}
	return false
}

// New converts a Go value into a Node. Nodes pass through unchanged, slices
// become lists, and strings and numbers become atoms.
func New(v any) Node {
	switch x := v.(type) {
	case Node:
		return x
	case []Node:
		return List(x)
	case string:
		return Atom(x)
	case int:
		return Atom(strconv.Itoa(x))
	case int32:
		return Atom(strconv.FormatInt(int64(x), 10))
	case int64:
		return Atom(strconv.FormatInt(x, 10))
	case uint32:
		return Atom(strconv.FormatUint(uint64(x), 10))
	case float32:
		return Atom(strconv.FormatFloat(float64(x), 'g', -1, 32))
	case float64:
		return Atom(strconv.FormatFloat(x, 'g', -1, 64))
	case bool:
		if x {
			return Atom("1")
		}
		return Atom("0")
	default:
		panic(fmt.Sprintf("ir: cannot convert %T to a node", v))
	}
}

// Instr builds a form from its head and operands. With a single argument it
// behaves like New, so Instr("drop") is the bare atom drop.
func Instr(head any, operands ...any) Node {
	if len(operands) == 0 {
		return New(head)
	}
	l := make(List, 0, len(operands)+1)
	l = append(l, New(head))
	for _, op := range operands {
		l = append(l, New(op))
	}
	return l
}

// Extend appends child to n. An atom is promoted to a two element list.
func Extend(n Node, child Node) Node {
	switch x := n.(type) {
	case Atom:
		return List{x, child}
	case List:
		out := make(List, len(x), len(x)+1)
		copy(out, x)
		return append(out, child)
	default:
		panic(fmt.Sprintf("ir: cannot extend %T", n))
	}
}

// Dollar names a function, local or global: Dollar("main") is $main.
func Dollar(name string) Atom {
	return Atom("$" + name)
}

// Quote renders a string immediate.
func Quote(s string) Atom {
	return Atom(strconv.Quote(s))
}
