// Package cli implements the adkit command line: one cobra command per
// operation of the ad service, plus serve for the playground.
package cli

import (
	"fmt"

	"github.com/coderi421/adkit/internal/config"
	"github.com/coderi421/adkit/internal/logger"
	"github.com/coderi421/adkit/internal/telemetry"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// RootOptions holds the global flags and what PersistentPreRunE builds from
// them. Subcommands read Config and Logger only inside RunE.
type RootOptions struct {
	ConfigPath string
	Format     string
	Verbose    bool

	Config *config.Config
	Logger zerolog.Logger

	shutdown telemetry.Shutdown
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "adkit",
		Short:         "adkit - command line client for the ad management service",
		Long:          "List, filter and update entities of an ad network, run PQL queries, keep local snapshots and serve the playground.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.shutdown == nil {
				return nil
			}
			return opts.shutdown(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "adkit.yaml", "path of the YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log every remote call")

	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewPQLCommand(opts))
	cmd.AddCommand(NewActionCommand(opts))
	cmd.AddCommand(NewNetworksCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

func (o *RootOptions) setup(cmd *cobra.Command) error {
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load configuration", err)
	}
	if o.Verbose {
		cfg.Log.Level = "debug"
	}
	l, err := logger.NewWithWriter(&cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return WrapExitError(ExitCommandError, "build logger", err)
	}
	shutdown, err := telemetry.Setup(cfg.Telemetry)
	if err != nil {
		return WrapExitError(ExitCommandError, "set up tracing", err)
	}

	o.Config = cfg
	o.Logger = l
	o.shutdown = shutdown
	return nil
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
