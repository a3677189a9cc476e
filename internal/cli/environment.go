package cli

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sdejongh/treesync/pkg/config"
	"github.com/sdejongh/treesync/pkg/diff"
	"github.com/sdejongh/treesync/pkg/ignore"
	"github.com/sdejongh/treesync/pkg/logging"
	"github.com/sdejongh/treesync/pkg/output"
)

const (
	logMaxSize    = 10 * 1024 * 1024
	logMaxBackups = 5
)

// environment is the state shared by the compare, sync and copy commands
type environment struct {
	cfg       *config.Config
	logger    logging.Logger
	matcher   *ignore.Matcher
	formatter output.Formatter
	stdout    io.Writer
	stderr    io.Writer
}

func newEnvironment(cmd *cobra.Command) (*environment, error) {
	if err := validateTreeFlags(); err != nil {
		return nil, err
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := applyFlagsToConfig(cmd, cfg); err != nil {
		return nil, err
	}

	env := &environment{cfg: cfg, stdout: cmd.OutOrStdout(), stderr: cmd.ErrOrStderr()}
	if globalFlags.Quiet {
		env.stdout = io.Discard
	}

	if env.formatter, err = output.New(cfg.Format, env.stdout, cfg.Verbose); err != nil {
		return nil, err
	}

	if env.logger, err = newLogger(cfg, env.stderr); err != nil {
		return nil, err
	}

	if env.matcher, err = loadIgnore(cfg); err != nil {
		env.logger.Close()
		return nil, err
	}
	return env, nil
}

func (e *environment) Close() error {
	return e.logger.Close()
}

func (e *environment) options() diff.Options {
	return diff.Options{
		Left:           treeFlags.Left,
		Right:          treeFlags.Right,
		Recursive:      e.cfg.Recursive,
		Inclusion:      e.cfg.Inclusion,
		Ignore:         e.matcher,
		MatchPrecision: e.cfg.MatchPrecision,
		SizeTolerance:  e.cfg.SizeTolerance,
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// newLogger creates the console logger and, when a log file is configured,
// tees it with a rotating file logger
func newLogger(cfg *config.Config, stderr io.Writer) (logging.Logger, error) {
	level := logging.WarnLevel
	switch {
	case globalFlags.Quiet:
		level = logging.ErrorLevel
	case cfg.Verbose:
		level = logging.InfoLevel
	}
	console := logging.NewConsoleLogger(stderr, level, globalFlags.NoColor || !isTerminal(stderr))

	if cfg.Logging.File == "" {
		return console, nil
	}

	format := logging.FormatText
	if cfg.Logging.Format == string(logging.FormatJSON) {
		format = logging.FormatJSON
	}
	file, err := logging.NewFileLogger(logging.FileLoggerConfig{
		Path:       cfg.Logging.File,
		Format:     format,
		Level:      logging.ParseLevel(cfg.Logging.Level),
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackups,
	})
	if err != nil {
		return nil, err
	}
	return logging.Tee(console, file), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// loadIgnore merges the home, left and right ignore files
func loadIgnore(cfg *config.Config) (*ignore.Matcher, error) {
	home, _ := os.UserHomeDir()
	return ignore.Load(afero.NewOsFs(), ignore.Sources{
		Home:  home,
		Left:  treeFlags.Left,
		Right: treeFlags.Right,
	}, cfg.NoIgnore)
}
