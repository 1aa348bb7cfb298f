package hm

import (
	"fmt"
)

// UnificationError represents errors during unification
type UnificationError struct {
	Expected Type
	Got      Type
	msg      string
}

func (e UnificationError) Error() string {
	return e.msg
}

// Unify checks that got is the same type as expected. There is no subtyping
// and no coercion.
func Unify(expected, got Type) error {
	if expected == nil || got == nil {
		return UnificationError{expected, got, fmt.Sprintf("Cannot unify %v with %v", expected, got)}
	}

	if ft1, ok := expected.(*FunctionType); ok {
		ft2, ok := got.(*FunctionType)
		if !ok {
			return UnificationError{expected, got, fmt.Sprintf("Cannot unify function type %s with non-function type %s", expected, got)}
		}
		if ft1.Arity() != ft2.Arity() {
			return UnificationError{expected, got, fmt.Sprintf("Cannot unify %s with %s: arity mismatch", expected, got)}
		}
		for i := range ft1.args {
			if err := Unify(ft1.args[i], ft2.args[i]); err != nil {
				return err
			}
		}
		return Unify(ft1.ret, ft2.ret)
	}

	if !expected.Eq(got) {
		return UnificationError{expected, got, fmt.Sprintf("Cannot unify type constant %s with %s", expected, got)}
	}
	return nil
}
