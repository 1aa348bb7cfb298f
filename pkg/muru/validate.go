package muru

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vito/muru/pkg/hm"
)

// DefaultEntry is the function the module's start routine calls.
const DefaultEntry = "main"

// Checker infers and checks the types of a whole program. It owns the
// signature table and is used for exactly one compilation.
type Checker struct {
	// globals maps each name to its clauses in declaration order. Runtime
	// functions and bare declarations are present with no clauses.
	globals map[string][]*FunctionClause

	// signatures is written once per name: either up front from a declaration
	// or when the name's clauses are first fully validated.
	signatures map[string]*FunctionSignature

	// declared marks signatures that came from source or the runtime rather
	// than inference.
	declared map[string]bool

	// validated holds names whose clauses have been checked.
	validated map[string]bool

	// active holds names whose clauses are being checked right now.
	active map[string]bool

	// external holds declared names without clauses that are called. The
	// module imports them from the host.
	external map[string]bool

	program *Program
	runtime map[string]bool
	diags   *Diagnostics
}

// NewChecker indexes the program and registers the runtime library and all
// declared signatures.
func NewChecker(prog *Program, lib []RuntimeFunc, diags *Diagnostics) (*Checker, error) {
	if diags == nil {
		diags = &Diagnostics{}
	}
	c := &Checker{
		globals:    map[string][]*FunctionClause{},
		signatures: map[string]*FunctionSignature{},
		declared:   map[string]bool{},
		validated:  map[string]bool{},
		active:     map[string]bool{},
		external:   map[string]bool{},
		program:    prog,
		runtime:    map[string]bool{},
		diags:      diags,
	}

	for _, fn := range lib {
		name := fn.Signature.Name
		c.globals[name] = nil
		c.signatures[name] = fn.Signature
		c.declared[name] = true
		c.runtime[name] = true
	}

	for _, line := range prog.Lines {
		name := line.LineName()
		if c.runtime[name] {
			return nil, NewCompileError(&FunctionAlreadyDefinedError{Name: name}, line)
		}
		switch l := line.(type) {
		case *FunctionSignature:
			if c.declared[name] {
				return nil, NewCompileError(&FunctionAlreadyDefinedError{Name: name}, l)
			}
			c.signatures[name] = l
			c.declared[name] = true
			if _, ok := c.globals[name]; !ok {
				c.globals[name] = nil
			}
		case *FunctionClause:
			c.globals[name] = append(c.globals[name], l)
		}
	}

	return c, nil
}

// Check validates the program starting from the entry point and from every
// declared signature, then reports functions that were never typed.
func (c *Checker) Check(ctx context.Context, entry string) error {
	if entry != "" {
		call := &Call{Name: entry, Loc: c.entryLocation(entry)}
		t, err := c.validateExpr(ctx, call, hm.NewSimpleEnv())
		if err != nil {
			return err
		}
		// the start routine prints the result in decimal
		if err := expectType(Int, t); err != nil {
			return NewCompileError(err, call)
		}
	}

	for _, sig := range c.program.Signatures() {
		if c.validated[sig.Name] || len(c.globals[sig.Name]) == 0 {
			continue
		}
		if _, err := c.validateCall(ctx, sig.Name, sig.Args); err != nil {
			return err
		}
	}

	for _, name := range c.program.FunctionNames() {
		if _, ok := c.signatures[name]; !ok {
			c.diags.Warn(ctx, CodeUnusedFunction, c.globals[name][0], "unused function: %s", name)
		}
	}

	return nil
}

// Signature returns the declared or inferred signature of a name.
func (c *Checker) Signature(name string) (*FunctionSignature, bool) {
	sig, ok := c.signatures[name]
	return sig, ok
}

// Signatures returns the signature table, including the runtime library.
func (c *Checker) Signatures() map[string]*FunctionSignature {
	return c.signatures
}

// Externals returns the called declarations that have no clauses, in
// declaration order.
func (c *Checker) Externals() []*FunctionSignature {
	var sigs []*FunctionSignature
	for _, sig := range c.program.Signatures() {
		if c.external[sig.Name] {
			sigs = append(sigs, sig)
		}
	}
	return sigs
}

// Clauses returns the clauses defined for a name.
func (c *Checker) Clauses(name string) []*FunctionClause {
	return c.globals[name]
}

// IsRuntime reports whether name belongs to the runtime library.
func (c *Checker) IsRuntime(name string) bool {
	return c.runtime[name]
}

func (c *Checker) entryLocation(entry string) *SourceLocation {
	if clauses := c.globals[entry]; len(clauses) > 0 {
		return clauses[0].Loc
	}
	return nil
}

func (c *Checker) validateExpr(ctx context.Context, expr Expression, locals hm.Env) (VariableType, error) {
	var (
		t   VariableType
		err error
	)
	switch e := expr.(type) {
	case *Literal:
		t = e.Type
	case *Call:
		t, err = c.validateCallExpr(ctx, e, locals)
	case *Binary:
		t, err = c.validateBinary(ctx, e, locals)
	case *Ternary:
		t, err = c.validateTernary(ctx, e, locals)
	default:
		panic("unhandled expression")
	}
	if err != nil {
		return 0, WrapCompileError(err, expr)
	}
	expr.SetInferredType(t)
	return t, nil
}

func (c *Checker) validateCallExpr(ctx context.Context, call *Call, locals hm.Env) (VariableType, error) {
	argTypes := make([]VariableType, len(call.Args))
	for i, arg := range call.Args {
		t, err := c.validateExpr(ctx, arg, locals)
		if err != nil {
			return 0, err
		}
		argTypes[i] = t
	}

	if local, ok := locals.TypeOf(call.Name); ok {
		if len(call.Args) > 0 {
			return 0, &ArgumentError{Name: call.Name, Expected: 0, Actual: len(call.Args)}
		}
		return local.(VariableType), nil
	}

	return c.validateCall(ctx, call.Name, argTypes)
}

// validateCall types a call to a global name with the given argument types.
// Each name's clauses are checked at most once; later calls are checked
// against the memoized signature.
func (c *Checker) validateCall(ctx context.Context, name string, argTypes []VariableType) (VariableType, error) {
	clauses, ok := c.globals[name]
	if !ok {
		return 0, &FunctionNotFoundError{Name: name}
	}

	sig, hasSig := c.signatures[name]

	if len(clauses) == 0 {
		if !hasSig {
			return 0, &NoFunctionMatchesError{Name: name}
		}
		// runtime signatures leave their arguments undeclared
		if c.runtime[name] {
			return sig.Return, nil
		}
		if err := checkCall(sig, argTypes, sig.Return); err != nil {
			return 0, err
		}
		c.external[name] = true
		return sig.Return, nil
	}

	if hasSig {
		if err := checkCall(sig, argTypes, sig.Return); err != nil {
			return 0, err
		}
		if c.validated[name] {
			return sig.Return, nil
		}
	}

	if c.active[name] {
		if hasSig {
			return sig.Return, nil
		}
		return 0, &UntypedFunctionError{Name: name}
	}

	c.active[name] = true
	defer delete(c.active, name)

	var ret VariableType
	for i, clause := range clauses {
		t, err := c.validateClause(ctx, clause, argTypes)
		if err != nil {
			return 0, err
		}
		if i == 0 {
			ret = t
		} else if err := expectType(ret, t); err != nil {
			return 0, NewCompileError(err, clause.Body)
		}
	}

	if hasSig {
		if err := checkCall(sig, argTypes, ret); err != nil {
			return 0, NewCompileError(err, clauses[0].Body)
		}
	} else {
		sig = &FunctionSignature{
			Name:   name,
			Args:   append([]VariableType(nil), argTypes...),
			Return: ret,
			Loc:    clauses[0].Loc,
		}
		c.signatures[name] = sig
	}
	c.validated[name] = true

	slog.DebugContext(ctx, "validated function", "name", name, "type", sig.Type(), "clauses", len(clauses))

	return ret, nil
}

func (c *Checker) validateClause(ctx context.Context, clause *FunctionClause, argTypes []VariableType) (VariableType, error) {
	if len(clause.Params) != len(argTypes) {
		return 0, NewCompileError(&ArgumentError{
			Name:     clause.Name,
			Expected: len(clause.Params),
			Actual:   len(argTypes),
		}, clause)
	}

	locals := hm.NewSimpleEnv()
	for i, param := range clause.Params {
		switch p := param.(type) {
		case *BoundParam:
			locals.Add(p.Name, argTypes[i])
		case *LiteralParam:
			if err := expectType(argTypes[i], p.Value.Type); err != nil {
				return 0, NewCompileError(err, p)
			}
			p.Value.SetInferredType(p.Value.Type)
		}
	}

	return c.validateExpr(ctx, clause.Body, locals)
}

func (c *Checker) validateBinary(ctx context.Context, b *Binary, locals hm.Env) (VariableType, error) {
	lt, err := c.validateExpr(ctx, b.Left, locals)
	if err != nil {
		return 0, err
	}
	rt, err := c.validateExpr(ctx, b.Right, locals)
	if err != nil {
		return 0, err
	}
	if err := expectType(lt, rt); err != nil {
		return 0, err
	}

	if !b.Op.IsArithmetic() {
		return Bool, nil
	}
	if lt == Bool {
		return 0, &OperatorArgumentError{Operator: b.Op, Type: lt}
	}
	return lt, nil
}

func (c *Checker) validateTernary(ctx context.Context, t *Ternary, locals hm.Env) (VariableType, error) {
	ct, err := c.validateExpr(ctx, t.Cond, locals)
	if err != nil {
		return 0, err
	}
	if err := expectType(Bool, ct); err != nil {
		return 0, NewCompileError(err, t.Cond)
	}
	tt, err := c.validateExpr(ctx, t.Then, locals)
	if err != nil {
		return 0, err
	}
	et, err := c.validateExpr(ctx, t.Else, locals)
	if err != nil {
		return 0, err
	}
	if err := expectType(tt, et); err != nil {
		return 0, NewCompileError(err, t.Else)
	}
	return tt, nil
}

// checkCall unifies the type of a call, its argument types and the return
// type it produces, with a signature.
func checkCall(sig *FunctionSignature, argTypes []VariableType, ret VariableType) error {
	args := make(hm.Types, len(argTypes))
	for i, t := range argTypes {
		args[i] = t
	}
	want := sig.Type()
	got := hm.NewFnType(args, ret)
	if want.Arity() != got.Arity() {
		return &ArgumentError{Name: sig.Name, Expected: want.Arity(), Actual: got.Arity()}
	}
	if err := hm.Unify(want, got); err != nil {
		return typeMismatch(err)
	}
	return nil
}

func expectType(expected, got VariableType) error {
	if err := hm.Unify(expected, got); err != nil {
		return typeMismatch(err)
	}
	return nil
}

// typeMismatch reports the first pair of types unification tripped over.
func typeMismatch(err error) error {
	var uerr hm.UnificationError
	if !errors.As(err, &uerr) {
		return err
	}
	expected, _ := uerr.Expected.(VariableType)
	got, _ := uerr.Got.(VariableType)
	return &TypeMismatchError{Expected: expected, Got: got}
}
