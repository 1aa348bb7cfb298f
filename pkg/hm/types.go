package hm

import (
	"fmt"
	"strings"
)

// Type is anything the checker can compare. There are no type variables:
// types are either equal or they are not.
type Type interface {
	Name() string
	Eq(Type) bool
	fmt.Stringer
}

// Types represents a slice of types
type Types []Type

func (ts Types) Eq(others Types) bool {
	if len(ts) != len(others) {
		return false
	}
	for i := range ts {
		if !ts[i].Eq(others[i]) {
			return false
		}
	}
	return true
}

// FunctionType is a positional argument list and a single return type.
type FunctionType struct {
	args Types
	ret  Type
}

var _ Type = (*FunctionType)(nil)

func NewFnType(args Types, ret Type) *FunctionType {
	return &FunctionType{args: args, ret: ret}
}

// Arity is the number of arguments
func (ft *FunctionType) Arity() int {
	return len(ft.args)
}

func (ft *FunctionType) Name() string {
	return ft.String()
}

func (ft *FunctionType) Eq(other Type) bool {
	if ot, ok := other.(*FunctionType); ok {
		return ft.args.Eq(ot.args) && ft.ret.Eq(ot.ret)
	}
	return false
}

func (ft *FunctionType) String() string {
	args := make([]string, len(ft.args))
	for i, a := range ft.args {
		args[i] = a.Name()
	}
	return fmt.Sprintf("(%s): %s", strings.Join(args, ", "), ft.ret.Name())
}
