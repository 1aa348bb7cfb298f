package muru

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vito/muru/pkg/ir"
)

// Function groups every clause sharing a name with the name's signature.
type Function struct {
	Name      string
	Signature *FunctionSignature
	Clauses   []*FunctionClause
}

// Guard returns the condition under which the clause applies, or nil if it
// matches unconditionally. Each literal parameter contributes one equality
// test against its argument slot; the tests are joined with i32.and.
func (fn *Function) Guard(clause *FunctionClause) ir.Node {
	var tests []ir.Node
	for i, param := range clause.Params {
		lit, ok := param.(*LiteralParam)
		if !ok {
			continue
		}
		tag := fn.Signature.Args[i].Tag()
		tests = append(tests, ir.Instr(tag+".eq",
			ir.Instr("local.get", i),
			ir.Instr(tag+".const", lit.Value.Immediate())))
	}
	if len(tests) == 0 {
		return nil
	}

	guard := tests[len(tests)-1]
	for i := len(tests) - 2; i >= 0; i-- {
		guard = ir.Instr("i32.and", tests[i], guard)
	}
	return guard
}

// Body folds the clauses into one nested conditional. The first clause
// without literal parameters is the fallback; clauses declared after it can
// never run and are reported as unreachable.
func (fn *Function) Body(ctx context.Context, diags *Diagnostics) (ir.Node, error) {
	catchAll := -1
	for i, clause := range fn.Clauses {
		if clause.IsCatchAll() {
			catchAll = i
			break
		}
	}
	if catchAll == -1 {
		var node Node
		if len(fn.Clauses) > 0 {
			node = fn.Clauses[len(fn.Clauses)-1]
		}
		return nil, NewCompileError(&DispatchCoverageError{Name: fn.Name}, node)
	}

	if diags != nil {
		for _, clause := range fn.Clauses[catchAll+1:] {
			diags.Warn(ctx, CodeFunctionCaseUnreachable, clause,
				"function case unreachable: %s", fn.Name)
		}
	}

	fallback := fn.Clauses[catchAll]
	body := Lower(fallback.Body, ClauseSlots(fallback))

	result := ir.Instr("result", fn.Signature.Return.Tag())
	for i := catchAll - 1; i >= 0; i-- {
		clause := fn.Clauses[i]
		body = ir.Instr("if",
			result,
			fn.Guard(clause),
			ir.Instr("then", Lower(clause.Body, ClauseSlots(clause))),
			ir.Instr("else", body))
	}

	return body, nil
}

// Compile emits the function definition:
//
//	(func $name (param i32 f32) (result i32) body)
//
// The param form is left out for functions without arguments.
func (fn *Function) Compile(ctx context.Context, diags *Diagnostics) (_ ir.Node, rerr error) {
	ctx, span := Tracer(ctx).Start(ctx, "compile "+fn.Name, trace.WithAttributes(
		attribute.String("muru.function", fn.Name),
		attribute.Int("muru.clauses", len(fn.Clauses)),
	))
	defer func() { endSpan(span, rerr) }()

	body, err := fn.Body(ctx, diags)
	if err != nil {
		return nil, err
	}

	return ir.Extend(funcHeader(fn.Name, fn.Signature), body), nil
}
