package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/vito/muru/pkg/ioctx"
	"github.com/vito/muru/pkg/muru"
)

// Config holds the application configuration
type Config struct {
	Debug      bool
	LSP        bool
	LSPLogFile string
	DebugAddr  string

	// Project is the muru.toml governing the working directory, if any.
	Project *muru.ProjectConfig
}

func main() {
	ctx := ioctx.WithStdio(context.Background())
	if err := fang.Execute(ctx, rootCmd(),
		fang.WithVersion("v0.1.0"),
		fang.WithCommit("dev"),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, err.Error())
		}),
	); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cfg := &Config{}

	cmd := &cobra.Command{
		Use:   "muru [flags] [command]",
		Short: "muru compiler",
		Long: `muru compiles a small functional language of multi-clause functions
into WebAssembly text, ready for an external assembler.`,
		Example: `  # Compile a program next to its source
  muru build fib.muru

  # Print the module instead
  muru build -o - fib.muru

  # Type check and print inferred signatures
  muru check fib.muru

  # Start the language server
  muru --lsp`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd.Context(), cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.LSP {
				return runLSP(cmd.Context(), cfg)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVarP(&cfg.Debug, "debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&cfg.DebugAddr, "debug-addr", "", "Serve pprof and expvar handlers on this address")
	cmd.Flags().BoolVar(&cfg.LSP, "lsp", false, "Run in Language Server Protocol mode")
	cmd.Flags().StringVar(&cfg.LSPLogFile, "lsp-log-file", "", "Path to LSP log file (stderr if not specified)")

	cmd.AddCommand(
		buildCmd(cfg),
		checkCmd(cfg),
		fmtCmd(),
	)

	return cmd
}

// setup loads the project config and installs the default logger.
func setup(ctx context.Context, cfg *Config) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configPath, project, err := muru.FindProjectConfig(ctx, cwd)
	if err != nil {
		return err
	}
	cfg.Project = project

	level, err := project.Level()
	if err != nil {
		return err
	}
	if cfg.Debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(ioctx.StderrFromContext(ctx), &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))

	if configPath != "" {
		slog.DebugContext(ctx, "loaded project config", "path", configPath)
	}

	if cfg.DebugAddr != "" {
		if err := setupDebugHandlers(cfg.DebugAddr); err != nil {
			return fmt.Errorf("debug handlers: %w", err)
		}
	}

	return nil
}
