package muru

import (
	"context"
	"fmt"
	"log/slog"
)

// Severity follows the numbering of the language server protocol.
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Diagnostic codes for non-fatal findings.
const (
	CodeUnusedFunction          = "unused_function"
	CodeFunctionCaseUnreachable = "function_case_unreachable"
)

// Diagnostic is a finding that does not stop compilation.
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	Location *SourceLocation
}

func (d Diagnostic) String() string {
	if d.Location == nil {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Location, d.Severity, d.Message)
}

// Diagnostics is the side channel warnings are reported on. It is owned by a
// single compilation.
type Diagnostics struct {
	list []Diagnostic
}

// Warn records a warning and logs it.
func (d *Diagnostics) Warn(ctx context.Context, code string, node Node, format string, args ...any) {
	diag := Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
	}
	if node != nil {
		diag.Location = node.GetSourceLocation()
	}
	d.list = append(d.list, diag)
	slog.WarnContext(ctx, diag.Message, "code", code, "location", diag.Location.String())
}

// All returns every diagnostic in the order it was reported.
func (d *Diagnostics) All() []Diagnostic {
	return d.list
}

// Warnings returns only the warnings.
func (d *Diagnostics) Warnings() []Diagnostic {
	var warnings []Diagnostic
	for _, diag := range d.list {
		if diag.Severity == SeverityWarning {
			warnings = append(warnings, diag)
		}
	}
	return warnings
}
