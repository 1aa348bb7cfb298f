package muru

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/kr/pretty"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vito/muru/pkg/ir"
)

// Options control a single compilation.
type Options struct {
	// Entry is the function the start routine calls and prints. It must
	// return int. An empty entry compiles a module without a start routine.
	Entry string

	// ImportModule is the namespace fd_write is imported from.
	ImportModule string

	// WarningsAsErrors fails the compilation on the first warning.
	WarningsAsErrors bool

	// Runtime replaces the default runtime library when non-nil.
	Runtime []RuntimeFunc
}

// DefaultOptions compiles an executable module calling main.
func DefaultOptions() Options {
	return Options{
		Entry:        DefaultEntry,
		ImportModule: DefaultImportModule,
	}
}

// Result is the output of a successful compilation.
type Result struct {
	Module ir.Node

	// Functions are the user functions that were emitted, in order of first
	// appearance.
	Functions []*Function

	// Signatures holds every declared or inferred signature, including the
	// runtime library.
	Signatures map[string]*FunctionSignature

	Diagnostics []Diagnostic
}

// WAT renders the module as WebAssembly text.
func (r *Result) WAT(indent int) string {
	return r.Module.Pretty(indent) + "\n"
}

// WarningError is returned in place of a warning when warnings are errors.
type WarningError struct {
	Diagnostic Diagnostic
}

func (e *WarningError) Error() string {
	return fmt.Sprintf("%s (warnings are errors)", e.Diagnostic.Message)
}

// Compile validates the program and generates its module. Nothing is emitted
// unless the whole program checks.
func Compile(ctx context.Context, prog *Program, opts Options) (_ *Result, rerr error) {
	if prog == nil {
		return nil, errors.Errorf("cannot compile a nil program")
	}

	ctx, span := Tracer(ctx).Start(ctx, "compile", trace.WithAttributes(
		attribute.String("muru.file", prog.Filename),
		attribute.String("muru.entry", opts.Entry),
	))
	defer func() { endSpan(span, rerr) }()

	lib := opts.Runtime
	if lib == nil {
		lib = Runtime()
	}

	slog.DebugContext(ctx, "compiling", "file", prog.Filename, "lines", len(prog.Lines))
	if slog.Default().Enabled(ctx, slog.LevelDebug) {
		slog.DebugContext(ctx, "parsed program", "ast", pretty.Sprint(prog.Lines))
	}

	diags := &Diagnostics{}

	checker, err := NewChecker(prog, lib, diags)
	if err != nil {
		return nil, err
	}
	if err := checker.Check(ctx, opts.Entry); err != nil {
		return nil, err
	}

	var (
		funcs   []*Function
		emitted []ir.Node
	)
	for _, name := range prog.FunctionNames() {
		sig, ok := checker.Signature(name)
		if !ok {
			// reported as unused
			continue
		}
		fn := &Function{
			Name:      name,
			Signature: sig,
			Clauses:   checker.Clauses(name),
		}
		node, err := fn.Compile(ctx, diags)
		if err != nil {
			return nil, err
		}
		funcs = append(funcs, fn)
		emitted = append(emitted, node)
	}

	if opts.WarningsAsErrors {
		if warnings := diags.Warnings(); len(warnings) > 0 {
			return nil, &CompileError{
				Inner:    &WarningError{Diagnostic: warnings[0]},
				Location: warnings[0].Location,
			}
		}
	}

	span.SetAttributes(
		attribute.Int("muru.functions", len(funcs)),
		attribute.Int("muru.warnings", len(diags.Warnings())),
	)

	return &Result{
		Module:      Module(opts.ImportModule, opts.Entry, checker.Externals(), emitted, lib),
		Functions:   funcs,
		Signatures:  checker.Signatures(),
		Diagnostics: diags.All(),
	}, nil
}

// CompileSource parses and compiles source text. Errors with a location are
// returned as *SourceError so they render with the offending line.
func CompileSource(ctx context.Context, filename, src string, opts Options) (*Result, error) {
	prog, err := Parse(filename, src)
	if err != nil {
		return nil, ConvertCompileError(err, src)
	}
	res, err := Compile(ctx, prog, opts)
	if err != nil {
		return nil, ConvertCompileError(err, src)
	}
	return res, nil
}

// CompileFile reads, parses and compiles a source file.
func CompileFile(ctx context.Context, filename string, opts Options) (*Result, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "read source")
	}
	return CompileSource(ctx, filename, string(src), opts)
}
