package muru

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLowerLiterals(t *testing.T) {
	assert.Equal(t, "(i32.const 42)", Lower(IntLiteral(42), nil).String())
	assert.Equal(t, "(i32.const -7)", Lower(IntLiteral(-7), nil).String())
	assert.Equal(t, "(f32.const 1.50)", Lower(FloatLiteral("1.50"), nil).String())
	assert.Equal(t, "(i32.const 1)", Lower(BoolLiteral(true), nil).String())
	assert.Equal(t, "(i32.const 0)", Lower(BoolLiteral(false), nil).String())
}

func TestLowerCalls(t *testing.T) {
	slots := Slots{"x": 0, "y": 2}

	assert.Equal(t, "(local.get 2)", Lower(&Call{Name: "y"}, slots).String())
	assert.Equal(t, "(call $g)", Lower(&Call{Name: "g"}, slots).String())
	assert.Equal(t,
		"(call $f (local.get 0) (i32.const 1))",
		Lower(&Call{Name: "f", Args: []Expression{&Call{Name: "x"}, IntLiteral(1)}}, slots).String())
}

func TestLowerUsesValidatedTypes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "int arithmetic",
			src:  "f :: int int\nf x = x - 1",
			want: "(i32.sub (local.get 0) (i32.const 1))",
		},
		{
			name: "float arithmetic",
			src:  "f :: float float\nf x = x * 0.5",
			want: "(f32.mul (local.get 0) (f32.const 0.5))",
		},
		{
			name: "comparison is tagged with its bool result",
			src:  "f :: float bool\nf x = x != 0.5",
			want: "(i32.ne (local.get 0) (f32.const 0.5))",
		},
		{
			name: "ternary",
			src:  "f :: bool float\nf b = b ? 1.0 : 2.0",
			want: "(if (result f32) (local.get 0) (then (f32.const 1.0)) (else (f32.const 2.0)))",
		},
		{
			name: "nested",
			src:  "f :: int int int\nf a b = (a == b) ? (a * 2) : f(b, a)",
			want: "(if (result i32) (i32.eq (local.get 0) (local.get 1)) " +
				"(then (i32.mul (local.get 0) (i32.const 2))) " +
				"(else (call $f (local.get 1) (local.get 0))))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustCompile(t, tt.src+"\nmain = 0\n")
			fn := compiledFunction(t, res, "f")
			clause := fn.Clauses[0]
			assert.Equal(t, tt.want, Lower(clause.Body, ClauseSlots(clause)).String())
		})
	}
}
