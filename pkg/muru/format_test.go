package muru

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dagger/testctx"
	"github.com/dagger/testctx/oteltest"
	"github.com/stretchr/testify/require"
)

type FormatSuite struct{}

func TestFormat(tT *testing.T) {
	testctx.New(tT,
		oteltest.WithTracing[*testing.T](),
		oteltest.WithLogging[*testing.T](),
	).RunTests(FormatSuite{})
}

func (FormatSuite) TestFormatting(ctx context.Context, t *testctx.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "normalizes spacing",
			input:    "main=1+3",
			expected: "main = 1 + 3\n",
		},
		{
			name:  "separates functions",
			input: "f :: int int\nf 0   =  1\nf n = n*2\ng=f(  1,2 )\nmain = g",
			expected: `f :: int int
f 0 = 1
f n = n * 2

g = f(1, 2)

main = g
`,
		},
		{
			name:     "collapses blank lines",
			input:    "f = 1\n\n\n\nmain = f\n\n\n",
			expected: "f = 1\n\nmain = f\n",
		},
		{
			name:     "keeps parentheses around operations",
			input:    "f a b = ((a == b)) ? (a - -1) : (b)",
			expected: "f a b = (a == b) ? (a - -1) : b\n",
		},
		{
			name:     "keeps literal text",
			input:    "f 1.50 true -3 = 0.10",
			expected: "f 1.50 true -3 = 0.10\n",
		},
		{
			name: "keeps comments",
			input: `#!header
# about f
f = 1 # trailing

# about main
main = f   #   spaced
# end`,
			expected: `#!header
# about f
f = 1  # trailing

# about main
main = f  #   spaced
# end
`,
		},
		{
			name:     "comment directly before a different function",
			input:    "f = 1\n# about g\ng = 2\n",
			expected: "f = 1\n# about g\ng = 2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(ctx context.Context, t *testctx.T) {
			result, err := FormatSource("test.muru", []byte(tt.input))
			require.NoError(t, err)
			require.Equal(t, tt.expected, result)

			again, err := FormatSource("test.muru", []byte(result))
			require.NoError(t, err)
			require.Equal(t, result, again, "formatting is not idempotent")
		})
	}
}

func (FormatSuite) TestFormatTestdata(ctx context.Context, t *testctx.T) {
	sources, err := filepath.Glob(filepath.Join("testdata", "*.muru"))
	require.NoError(t, err)

	for _, source := range sources {
		t.Run(filepath.Base(source), func(ctx context.Context, t *testctx.T) {
			src, err := os.ReadFile(source)
			require.NoError(t, err)
			result, err := FormatSource(source, src)
			require.NoError(t, err)
			require.Equal(t, string(src), result)
		})
	}
}

func (FormatSuite) TestFormatPreservesSemantics(ctx context.Context, t *testctx.T) {
	src, err := os.ReadFile(filepath.Join("testdata", "floats.muru"))
	require.NoError(t, err)

	before, err := CompileSource(ctx, "floats.muru", string(src), DefaultOptions())
	require.NoError(t, err)

	formatted, err := FormatSource("floats.muru", src)
	require.NoError(t, err)
	after, err := CompileSource(ctx, "floats.muru", formatted, DefaultOptions())
	require.NoError(t, err)

	require.Equal(t, before.WAT(DefaultIndent), after.WAT(DefaultIndent))
}

func (FormatSuite) TestFormatParseError(ctx context.Context, t *testctx.T) {
	_, err := FormatSource("test.muru", []byte("main = = 1"))
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}
