// Package cmd wires the command line interface.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/cmd/alerts"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/cmd/evaluate"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/cmd/migrate"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/cmd/serve"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/cmd/threshold"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/app"
)

// RootCommand creates and returns the root command
func RootCommand(ctx *app.Context) *cobra.Command {
	var (
		configFile string
		debug      bool
	)

	rootCmd := &cobra.Command{
		Use:           "zozi-alerts",
		Short:         "Inspection score threshold alerts",
		Version:       ctx.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config.yaml (default: search standard locations)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug output")

	rootCmd.AddCommand(
		serve.Command(ctx),
		threshold.Command(ctx),
		alerts.Command(ctx),
		evaluate.Command(ctx),
		migrate.Command(ctx),
	)

	// Settings are loaded after flag parsing so --config is honored.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return ctx.Load(configFile, debug)
	}
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return ctx.Close()
	}

	return rootCmd
}
