package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nested() Node {
	return Instr("foo",
		Instr("bar",
			Instr("baz",
				Instr("foo",
					Instr("bar", "baz"),
					Instr("bar", "baz"),
				),
			),
		),
	)
}

func TestAtom(t *testing.T) {
	require.Equal(t, "foo", New("foo").String())
	require.Equal(t, "foo", New("foo").Pretty(4))
	require.Equal(t, "42", New(42).String())
	require.Equal(t, "1.5", New(1.5).String())
	require.Equal(t, "$main", Dollar("main").String())
	require.Equal(t, `"_start"`, Quote("_start").String())
}

func TestList(t *testing.T) {
	l := Instr("foo", "bar")
	require.Equal(t, "(foo bar)", l.String())
	require.Equal(t, "(foo bar)", l.Pretty(4))
	require.Equal(t, "()", List{}.Pretty(4))
}

func TestNestedList(t *testing.T) {
	l := Instr("foo", Instr("bar", "baz"), Instr("bar", "baz"))
	require.Equal(t, "(foo (bar baz) (bar baz))", l.String())
	require.Equal(t, "(foo\n    (bar baz)\n    (bar baz)\n)", l.Pretty(4))
}

func TestVeryNestedList(t *testing.T) {
	require.Equal(t, "(foo (bar (baz (foo (bar baz) (bar baz)))))", nested().String())
	require.Equal(t, `(foo
    (bar
        (baz
            (foo
                (bar baz)
                (bar baz)
            )
        )
    )
)`, nested().Pretty(4))
	require.Equal(t, `(foo
  (bar
    (baz
      (foo
        (bar baz)
        (bar baz)
      )
    )
  )
)`, nested().Pretty(2))
}

func TestPrettyIsIdempotent(t *testing.T) {
	for _, width := range []int{0, 1, 2, 4, 8} {
		assert.Equal(t, nested().Pretty(width), nested().Pretty(width), "width %d", width)
	}
}

func TestSingleNestedChild(t *testing.T) {
	// a lone nested list still breaks, since the form has depth
	require.Equal(t, "(then\n    (i32.const 1)\n)", Instr("then", Instr("i32.const", 1)).Pretty(4))
	// a one element list never breaks
	require.Equal(t, "((i32.const 1))", List{Instr("i32.const", 1)}.Pretty(4))
}

func TestExtend(t *testing.T) {
	t.Run("atom is promoted", func(t *testing.T) {
		require.Equal(t, "(func $main)", Extend(Atom("func"), Dollar("main")).String())
	})

	t.Run("list is appended", func(t *testing.T) {
		orig := Instr("param", "i32")
		extended := Extend(orig, Atom("f32"))
		require.Equal(t, "(param i32 f32)", extended.String())
		require.Equal(t, "(param i32)", orig.String(), "original must not change")
	})
}

func TestInstrMacro(t *testing.T) {
	require.Equal(t, "foo", Instr("foo").String())
	require.Equal(t, "(foo (bar baz))", Instr("foo", Instr("bar", "baz")).String())

	module := Instr("module",
		Instr("func",
			"$add",
			Instr("param", Dollar("lhs"), "i32"),
			Instr("param", Dollar("rhs"), "i32"),
			Instr("result", "i32"),
			Instr("local.get", Dollar("lhs")),
			Instr("local.get", Dollar("rhs")),
			Instr("i32.add"),
		),
		Instr("export", Quote("add"), Instr("func", "$add")),
	)
	require.Equal(t,
		`(module (func $add (param $lhs i32) (param $rhs i32) (result i32) (local.get $lhs) (local.get $rhs) i32.add) (export "add" (func $add)))`,
		module.String())
}

func TestNewPanicsOnUnknown(t *testing.T) {
	require.Panics(t, func() { New(struct{}{}) })
}
