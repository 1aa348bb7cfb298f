package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vito/muru/pkg/ioctx"
	"github.com/vito/muru/pkg/muru"
)

func fmtCmd() *cobra.Command {
	var (
		write bool
		list  bool
	)

	cmd := &cobra.Command{
		Use:   "fmt [flags] path...",
		Short: "Format source files",
		Long: `Format source files according to the canonical style.

By default, fmt prints the formatted source to stdout.
Use -w to write the result back to the source file.
Use -l to list files that would be changed.`,
		Example: `  # Format a file and print to stdout
  muru fmt fib.muru

  # Format all .muru files in a directory in place
  muru fmt -w ./src

  # List files that need formatting
  muru fmt -l ./src`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(cmd.Context(), args, write, list)
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write result to source file instead of stdout")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "List files that would be formatted")

	return cmd
}

func runFmt(ctx context.Context, paths []string, write, list bool) error {
	files, err := sourceFiles(paths)
	if err != nil {
		return err
	}

	stdout := ioctx.StdoutFromContext(ctx)
	for _, file := range files {
		if err := formatFile(stdout, file, write, list); err != nil {
			return fmt.Errorf("formatting %s: %w", file, err)
		}
	}

	return nil
}

func formatFile(stdout io.Writer, path string, write, list bool) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	formatted, err := muru.FormatSource(path, source)
	if err != nil {
		return err
	}

	changed := string(source) != formatted

	if list && !write {
		if changed {
			fmt.Fprintln(stdout, path)
		}
		return nil
	}

	if write {
		if changed {
			if err := os.WriteFile(path, []byte(formatted), 0644); err != nil {
				return err
			}
			if list {
				fmt.Fprintln(stdout, path)
			}
		}
		return nil
	}

	_, err = io.WriteString(stdout, formatted)
	return err
}
