package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vito/muru/pkg/ioctx"
	"github.com/vito/muru/pkg/muru"
)

func checkCmd(cfg *Config) *cobra.Command {
	var flags compileFlags

	cmd := &cobra.Command{
		Use:   "check [flags] path...",
		Short: "Type check source files",
		Long: `Type check source files without writing anything.

Prints the declared or inferred signature of every function that would be
emitted, one per line.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), args, flags.options(cmd, cfg.Project))
		},
	}

	flags.register(cmd)

	return cmd
}

func runCheck(ctx context.Context, paths []string, opts muru.Options) error {
	files, err := sourceFiles(paths)
	if err != nil {
		return err
	}

	results, err := compileAll(ctx, files, opts)
	if err != nil {
		return err
	}

	stdout := ioctx.StdoutFromContext(ctx)
	stderr := ioctx.StderrFromContext(ctx)

	for i, file := range files {
		res := results[i]
		printDiagnostics(stderr, res.Diagnostics)

		if len(files) > 1 {
			fmt.Fprintf(stdout, "%s:\n", file)
		}
		for _, fn := range res.Functions {
			fmt.Fprintln(stdout, muru.FormatSignature(fn.Signature))
		}
	}

	return nil
}
