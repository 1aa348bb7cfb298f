package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/vito/muru/pkg/ioctx"
	"github.com/vito/muru/pkg/muru"
)

const sourceExt = ".muru"

// sourceFiles expands directories to the source files directly inside them.
func sourceFiles(paths []string) ([]string, error) {
	var files []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("accessing %s: %w", path, err)
		}

		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", path, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasSuffix(entry.Name(), sourceExt) {
				files = append(files, filepath.Join(path, entry.Name()))
			}
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files in %s", sourceExt, strings.Join(paths, ", "))
	}

	return files, nil
}

var (
	warningStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	locationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// printDiagnostics writes one line per diagnostic, colored on a terminal.
func printDiagnostics(w io.Writer, diags []muru.Diagnostic) {
	styled := ioctx.IsTerminal(w)
	for _, d := range diags {
		loc := d.Location.String()
		severity := d.Severity.String()
		if styled {
			loc = locationStyle.Render(loc)
			if d.Severity == muru.SeverityError {
				severity = errorStyle.Render(severity)
			} else {
				severity = warningStyle.Render(severity)
			}
		}
		fmt.Fprintf(w, "%s: %s: %s [%s]\n", loc, severity, d.Message, d.Code)
	}
}
