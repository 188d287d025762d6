// Package cli wires the formguard commands.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formguard/internal/config"
	"github.com/goliatone/go-formguard/pkg/controller"
	"github.com/goliatone/go-formguard/pkg/field"
	"github.com/goliatone/go-formguard/pkg/presenter"
)

// These variables are set at build time via -ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// ErrBlocked is returned by commands whose submission was blocked, so the
// process exits non-zero.
var ErrBlocked = errors.New("submission blocked")

type rootOptions struct {
	configPath string
	logLevel   string
	noColor    bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "formguard",
		Short: "Validate and gate public form submissions",
		Long: `formguard validates public form fields, blocks invalid submissions
with inline annotations and adapts pages for mobile and in-app browsers.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to formguard.yaml")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		newServeCmd(opts),
		newCheckCmd(opts),
		newFillCmd(opts),
		newRenderCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "formguard version %s (commit: %s, built: %s)\n", Version, Commit, BuildDate)
		},
	}
}

// load resolves configuration and a logger writing to the command's stderr.
func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, *log.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	level, err := cfg.Log.ParsedLevel()
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(cmd.ErrOrStderr(), level)
	return cfg, logger, nil
}

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{Level: level, Prefix: "formguard"})
}

func newValidator(cfg *config.Config) *field.Validator {
	options := []field.Option{field.WithLocale(cfg.Validation.Locale)}
	if cfg.Validation.StrictNumbers {
		options = append(options, field.WithStrictNumbers())
	}
	return field.New(options...)
}

func controllerOptions(cfg *config.Config, validator *field.Validator, logger *log.Logger) []controller.Option {
	return []controller.Option{
		controller.WithValidator(validator),
		controller.WithPresenter(presenter.New()),
		controller.WithFormClass(cfg.Gate.FormClass),
		controller.WithSubmittingLabel(cfg.Gate.SubmittingLabel),
		controller.WithBusyClass(cfg.Gate.BusyClass),
		controller.WithLogger(logger),
	}
}
