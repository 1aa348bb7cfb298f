package muru

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/iancoleman/strcase"
)

// SourceLocation represents a location in source code
type SourceLocation struct {
	Filename string
	Line     int
	Column   int
	Length   int // Length of the syntax node that caused the error
}

func (loc *SourceLocation) String() string {
	if loc == nil {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", loc.Filename, loc.Line, loc.Column)
}

// TypeMismatchError is raised when two positions that must agree on a type
// do not.
type TypeMismatchError struct {
	Expected VariableType
	Got      VariableType
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch error, expected: %s, got: %s", e.Expected, e.Got)
}

// OperatorArgumentError is raised when an arithmetic operator is applied to
// a type it has no meaning for.
type OperatorArgumentError struct {
	Operator Operator
	Type     VariableType
}

func (e *OperatorArgumentError) Error() string {
	return fmt.Sprintf("no implementation of %s for %s", e.Operator, e.Type)
}

// ArgumentError is an arity mismatch.
type ArgumentError struct {
	Name     string
	Expected int
	Actual   int
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("argument error: %s expected: %d, got: %d", e.Name, e.Expected, e.Actual)
}

type FunctionNotFoundError struct {
	Name string
}

func (e *FunctionNotFoundError) Error() string {
	return fmt.Sprintf("function not found error: %s", e.Name)
}

// NoFunctionMatchesError is raised for a name with no clauses to infer from
// and no declared signature to fall back to.
type NoFunctionMatchesError struct {
	Name string
}

func (e *NoFunctionMatchesError) Error() string {
	return fmt.Sprintf("no match for function error: %s", e.Name)
}

// UntypedFunctionError is raised when a function is reached again while its
// own return type is still being inferred.
type UntypedFunctionError struct {
	Name string
}

func (e *UntypedFunctionError) Error() string {
	return fmt.Sprintf("untyped function error: could not determine type for function %s", e.Name)
}

// DispatchCoverageError is raised when no clause of a function matches
// unconditionally.
type DispatchCoverageError struct {
	Name string
}

func (e *DispatchCoverageError) Error() string {
	return fmt.Sprintf("function case missing error: %s", e.Name)
}

type FunctionAlreadyDefinedError struct {
	Name string
}

func (e *FunctionAlreadyDefinedError) Error() string {
	return fmt.Sprintf("function already defined error: %s", e.Name)
}

// ParseError is a syntax error with a 1-based position.
type ParseError struct {
	Message  string
	Location *SourceLocation
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Location.Line, e.Location.Column, e.Message)
}

// ErrorCode returns a stable snake_case identifier for the kind of err, e.g.
// type_mismatch for a *TypeMismatchError.
func ErrorCode(err error) string {
	var compileErr *CompileError
	if errors.As(err, &compileErr) {
		err = compileErr.Inner
	}
	var sourceErr *SourceError
	if errors.As(err, &sourceErr) {
		return ErrorCode(sourceErr.Inner)
	}
	name := fmt.Sprintf("%T", err)
	name = name[strings.LastIndex(name, ".")+1:]
	name = strings.TrimSuffix(name, "Error")
	if name == "" {
		return "error"
	}
	return strcase.ToSnake(name)
}

// CompileError attaches the location of the offending node to an error
type CompileError struct {
	Inner    error
	Location *SourceLocation
	Node     Node
}

func (e *CompileError) Error() string {
	return e.Inner.Error()
}

func (e *CompileError) Unwrap() error {
	return e.Inner
}

// NewCompileError creates a new CompileError with source location from an
// AST node
func NewCompileError(inner error, node Node) *CompileError {
	var location *SourceLocation
	if node != nil {
		location = node.GetSourceLocation()
	}
	return &CompileError{
		Inner:    inner,
		Location: location,
		Node:     node,
	}
}

// WrapCompileError wraps an error with the node's location unless it already
// carries one.
func WrapCompileError(err error, node Node) error {
	if err == nil {
		return nil
	}
	var compileErr *CompileError
	if errors.As(err, &compileErr) {
		// Already located, don't double-wrap
		return err
	}
	return NewCompileError(err, node)
}

// ErrorLocation extracts the source location of err, if it has one.
func ErrorLocation(err error) *SourceLocation {
	var sourceErr *SourceError
	if errors.As(err, &sourceErr) {
		return sourceErr.Location
	}
	var compileErr *CompileError
	if errors.As(err, &compileErr) {
		return compileErr.Location
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Location
	}
	return nil
}

// SourceError represents an error with source location information
type SourceError struct {
	Inner    error
	Location *SourceLocation
	Source   string // The source code of the file
}

// NewSourceError creates a new SourceError
func NewSourceError(inner error, location *SourceLocation, source string) *SourceError {
	return &SourceError{
		Inner:    inner,
		Location: location,
		Source:   source,
	}
}

func (e *SourceError) Unwrap() error {
	return e.Inner
}

func (e *SourceError) Error() string {
	if e.Location == nil {
		return e.Inner.Error()
	}

	return e.FormatWithHighlighting()
}

// FormatWithHighlighting returns a nicely formatted error with syntax highlighting
func (e *SourceError) FormatWithHighlighting() string {
	if e.Source == "" && e.Location.Filename != "" {
		contents, err := os.ReadFile(e.Location.Filename)
		if err == nil {
			e.Source = string(contents)
		}
	}

	lines := strings.Split(e.Source, "\n")
	if e.Location.Line < 1 || e.Location.Line > len(lines) {
		return e.Inner.Error()
	}

	// Colors for terminal output
	const (
		red   = "\033[31m"
		blue  = "\033[34m"
		bold  = "\033[1m"
		reset = "\033[0m"
		dim   = "\033[2m"
	)

	var result strings.Builder

	// Error header
	result.WriteString(fmt.Sprintf("%s%sError:%s %s\n", bold, red, reset, e.Inner))
	result.WriteString(fmt.Sprintf("  %s%s--> %s:%d:%d%s\n", dim, blue, e.Location.Filename, e.Location.Line, e.Location.Column, reset))

	result.WriteString(fmt.Sprintf(" %s%s |%s\n", dim, padLeft("", 3), reset))

	startLine := max(1, e.Location.Line-2)
	endLine := min(len(lines), e.Location.Line+2)

	for i := startLine; i <= endLine; i++ {
		paddedLineStr := padLeft(fmt.Sprintf("%d", i), 3)
		if i == e.Location.Line {
			result.WriteString(fmt.Sprintf(" %s%s%s%s | %s%s\n",
				dim, blue, bold, paddedLineStr, reset, lines[i-1]))

			// 1 space + 3 for line number + " | " + column - 1
			padding := strings.Repeat(" ", 1+3+3+e.Location.Column-1)
			underline := strings.Repeat("^", max(1, e.Location.Length))
			result.WriteString(fmt.Sprintf("%s%s%s%s%s\n",
				dim, padding, red, underline, reset))
		} else {
			result.WriteString(fmt.Sprintf(" %s%s | %s%s\n",
				dim, paddedLineStr, lines[i-1], reset))
		}
	}

	result.WriteString(fmt.Sprintf(" %s%s |%s\n", dim, padLeft("", 3), reset))

	return result.String()
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// ConvertCompileError attaches source text to a located error so it renders
// with a caret snippet. Errors without a location pass through.
func ConvertCompileError(err error, source string) error {
	if err == nil {
		return nil
	}
	var sourceErr *SourceError
	if errors.As(err, &sourceErr) {
		return err
	}
	location := ErrorLocation(err)
	if location == nil {
		return err
	}
	return NewSourceError(err, location, source)
}
