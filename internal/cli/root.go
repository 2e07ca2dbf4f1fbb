// Package cli holds the cobra command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"StarlinkWatch/internal/app"
	"StarlinkWatch/internal/config"
	"StarlinkWatch/internal/logging"
)

type rootOptions struct {
	configPath string
	force      bool
	version    string
}

// NewRootCommand assembles every subcommand.
func NewRootCommand(version string) *cobra.Command {
	opts := &rootOptions{version: version}

	root := &cobra.Command{
		Use:   "starlinkwatch",
		Short: "Starlink constellation metrics and incident archive",
		Long: "starlinkwatch derives mass and alumina estimates from CelesTrak data\n" +
			"and merges the daily digest into append-only per-domain archives.",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Version: version,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to the YAML config (default $STARLINK_WATCH_CONFIG or data/starlink_config.yml)")

	root.AddCommand(
		newMetricsCmd(opts),
		newDigestCmd(opts),
		newRunCmd(opts),
		newWatchCmd(opts),
		newServeCmd(opts),
		newHistoryCmd(opts),
		newVersionCmd(opts),
	)
	return root
}

// open loads config and builds the application for one command.
func (o *rootOptions) open() (*app.Application, config.Config, error) {
	cfg, err := config.Load(config.ResolvePath(o.configPath))
	if err != nil {
		return nil, config.Config{}, err
	}
	if o.force {
		cfg.ForceEmit = true
	}

	logger := logging.New(cfg.Logging.Level)
	application, err := app.New(cfg, logger)
	if err != nil {
		return nil, config.Config{}, err
	}
	return application, cfg, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func newVersionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "starlinkwatch %s\n", opts.version)
		},
	}
}
