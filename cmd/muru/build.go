package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vito/muru/pkg/ioctx"
	"github.com/vito/muru/pkg/muru"
)

type compileFlags struct {
	entry            string
	importModule     string
	warningsAsErrors bool
}

func (f *compileFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.entry, "entry", muru.DefaultEntry, "Function the start routine calls and prints (empty for none)")
	cmd.Flags().StringVar(&f.importModule, "import-module", muru.DefaultImportModule, "Module fd_write is imported from")
	cmd.Flags().BoolVar(&f.warningsAsErrors, "warnings-as-errors", false, "Fail on warnings")
}

// options layers explicitly set flags over the project config.
func (f *compileFlags) options(cmd *cobra.Command, project *muru.ProjectConfig) muru.Options {
	opts := project.Options()
	if cmd.Flags().Changed("entry") {
		opts.Entry = f.entry
	}
	if cmd.Flags().Changed("import-module") {
		opts.ImportModule = f.importModule
	}
	if cmd.Flags().Changed("warnings-as-errors") {
		opts.WarningsAsErrors = f.warningsAsErrors
	}
	return opts
}

func buildCmd(cfg *Config) *cobra.Command {
	var (
		flags  compileFlags
		output string
		indent int
	)

	cmd := &cobra.Command{
		Use:   "build [flags] path...",
		Short: "Compile source files to WebAssembly text",
		Long: `Compile source files to WebAssembly text.

Each file.muru is written to file.wat, or into output_dir when muru.toml sets
one. Directories are expanded to the .muru files they contain. Files are
compiled concurrently; nothing is written unless every file compiles.`,
		Example: `  # Compile next to the source
  muru build fib.muru

  # Print the module with two-space indentation
  muru build --indent 2 -o - fib.muru

  # Compile a library without a start routine
  muru build --entry "" lib.muru`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			width := cfg.Project.IndentWidth()
			if cmd.Flags().Changed("indent") {
				if indent < 0 {
					return fmt.Errorf("indent must not be negative")
				}
				width = indent
			}
			return runBuild(cmd.Context(), cfg, args, flags.options(cmd, cfg.Project), width, output)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, or - for stdout (single source only)")
	cmd.Flags().IntVar(&indent, "indent", muru.DefaultIndent, "Spaces per nesting level, 0 for one line")

	return cmd
}

func runBuild(ctx context.Context, cfg *Config, paths []string, opts muru.Options, indent int, output string) error {
	files, err := sourceFiles(paths)
	if err != nil {
		return err
	}
	if output != "" && len(files) > 1 {
		return fmt.Errorf("-o requires a single source file, got %d", len(files))
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

		dest := output
		if dest == "" {
			dest = cfg.Project.OutputPath(file)
		}

		wat := res.WAT(indent)
		if dest == "-" {
			if _, err := io.WriteString(stdout, wat); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		if err := os.WriteFile(dest, []byte(wat), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", dest, err)
		}
		slog.InfoContext(ctx, "wrote module", "source", file, "output", dest)
	}

	return nil
}

// compileAll compiles each file independently and concurrently. Results are
// in the order of files.
func compileAll(ctx context.Context, files []string, opts muru.Options) ([]*muru.Result, error) {
	results := make([]*muru.Result, len(files))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		eg.Go(func() error {
			res, err := muru.CompileFile(ctx, file, opts)
			recordCompile(res, err)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
