package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/cutroom/internal/config"
)

// DefaultSession is the session token used when neither --session nor the
// script names one.
const DefaultSession = "cli"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Database   string // journal path; empty means Config.Journal
	Session    string

	Config config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootOptions returns options carrying the default config. Commands built
// outside the root (in tests) use it directly.
func NewRootOptions() *RootOptions {
	return &RootOptions{
		Format: "text",
		Config: config.Default(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// NewRootCommand creates the root command for the cutroom CLI.
func NewRootCommand() *cobra.Command {
	opts := NewRootOptions()

	cmd := &cobra.Command{
		Use:   "cutroom",
		Short: "cutroom - timeline editing engine",
		Long: `A journaled engine for multi-track timeline editing.

Every edit is a command appended to a SQLite journal; replaying the journal
rebuilds the timeline exactly. Commands can be run one at a time, from a
script, over HTTP, or from the terminal editor.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.load(cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default $XDG_CONFIG_HOME/cutroom/config.toml)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "journal database (default from config)")
	cmd.PersistentFlags().StringVar(&opts.Session, "session", "", "session token")

	cmd.AddCommand(NewInvokeCommand(opts))
	cmd.AddCommand(NewExecCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewTUICommand(opts))
	cmd.AddCommand(NewTemplatesCommand(opts))

	return cmd
}

// load reads the config file and installs the process logger.
func (o *RootOptions) load(stderr io.Writer) error {
	var (
		cfg config.Config
		err error
	)
	if o.ConfigPath != "" {
		cfg, err = config.LoadFile(o.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	o.Config = cfg

	level, _ := cfg.LogLevel()
	if o.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(stderr, handlerOpts)
	} else {
		handler = slog.NewTextHandler(stderr, handlerOpts)
	}
	o.Logger = slog.New(handler)
	slog.SetDefault(o.Logger)
	return nil
}

// databasePath returns --db, falling back to the configured journal.
func (o *RootOptions) databasePath() string {
	if o.Database != "" {
		return o.Database
	}
	return o.Config.Journal
}

func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
