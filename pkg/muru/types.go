package muru

import (
	"fmt"

	"github.com/vito/muru/pkg/hm"
)

// VariableType is one of the primitive value types. The set is closed.
type VariableType uint8

const (
	Bool VariableType = iota + 1
	Int
	Float
)

var _ hm.Type = Int

// VariableTypes lists every type in declaration order.
var VariableTypes = []VariableType{Bool, Int, Float}

// ParseVariableType maps a source keyword to its type.
func ParseVariableType(s string) (VariableType, bool) {
	switch s {
	case "bool":
		return Bool, true
	case "int":
		return Int, true
	case "float":
		return Float, true
	}
	return 0, false
}

func (t VariableType) Name() string {
	switch t {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	default:
		return fmt.Sprintf("VariableType(%d)", uint8(t))
	}
}

func (t VariableType) String() string { return t.Name() }

func (t VariableType) Eq(other hm.Type) bool {
	ot, ok := other.(VariableType)
	return ok && ot == t
}

// Tag is the machine type the value is represented as. Bool shares the
// representation of Int.
func (t VariableType) Tag() string {
	switch t {
	case Float:
		return "f32"
	default:
		return "i32"
	}
}

// Valid reports whether t is one of the known types.
func (t VariableType) Valid() bool {
	return t >= Bool && t <= Float
}
