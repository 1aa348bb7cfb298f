package muru

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ProjectFile is the name of the project configuration file.
const ProjectFile = "muru.toml"

// DefaultIndent is the pretty-printing width used when none is configured.
const DefaultIndent = 4

// ProjectConfig represents a muru.toml project configuration file.
type ProjectConfig struct {
	// Entry is the function the start routine calls. Defaults to main.
	Entry string `toml:"entry,omitempty"`

	// Indent is the pretty-printing width of emitted modules. Zero prints
	// each module on a single line.
	Indent *int `toml:"indent,omitempty"`

	// OutputDir is where built modules are written, relative to muru.toml.
	// Modules are written next to their sources when empty.
	OutputDir string `toml:"output_dir,omitempty"`

	// ImportModule is the namespace fd_write is imported from.
	ImportModule string `toml:"import_module,omitempty"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `toml:"log_level,omitempty"`

	// WarningsAsErrors fails builds that produce warnings.
	WarningsAsErrors bool `toml:"warnings_as_errors,omitempty"`

	// Dir is the directory containing muru.toml.
	Dir string `toml:"-"`
}

// LoadProjectConfig loads a muru.toml file from the given path.
func LoadProjectConfig(ctx context.Context, path string) (*ProjectConfig, error) {
	var config ProjectConfig
	md, err := toml.DecodeFile(path, &config)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		slog.WarnContext(ctx, "unknown project setting", "file", path, "key", key.String())
	}
	if config.Indent != nil && *config.Indent < 0 {
		return nil, fmt.Errorf("parsing %s: indent must not be negative", path)
	}
	if config.LogLevel != "" {
		if _, err := config.Level(); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	config.Dir = filepath.Dir(path)
	return &config, nil
}

// FindProjectConfig searches for a muru.toml file starting from dir and
// walking up to parent directories. Returns the path to muru.toml and the
// parsed config, or ("", nil, nil) if not found.
func FindProjectConfig(ctx context.Context, dir string) (string, *ProjectConfig, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, err
	}
	for {
		path := filepath.Join(dir, ProjectFile)
		if _, err := os.Stat(path); err == nil {
			config, err := LoadProjectConfig(ctx, path)
			if err != nil {
				return "", nil, err
			}
			return path, config, nil
		}

		// Stop at .git boundary
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return "", nil, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil, nil
		}
		dir = parent
	}
}

// Options converts the configuration into compiler options, filling in
// defaults for anything unset. A nil config yields the defaults.
func (c *ProjectConfig) Options() Options {
	opts := DefaultOptions()
	if c == nil {
		return opts
	}
	if c.Entry != "" {
		opts.Entry = c.Entry
	}
	if c.ImportModule != "" {
		opts.ImportModule = c.ImportModule
	}
	opts.WarningsAsErrors = c.WarningsAsErrors
	return opts
}

// IndentWidth returns the configured indent, or DefaultIndent.
func (c *ProjectConfig) IndentWidth() int {
	if c == nil || c.Indent == nil {
		return DefaultIndent
	}
	return *c.Indent
}

// OutputPath returns where the module built from source is written: the
// source path with a .wat extension, placed in OutputDir when one is set.
func (c *ProjectConfig) OutputPath(source string) string {
	base := source[:len(source)-len(filepath.Ext(source))] + ".wat"
	if c == nil || c.OutputDir == "" {
		return base
	}
	dir := c.OutputDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(c.Dir, dir)
	}
	return filepath.Join(dir, filepath.Base(base))
}

// Level parses LogLevel. An empty level is info.
func (c *ProjectConfig) Level() (slog.Level, error) {
	var level slog.Level
	if c == nil || c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}
