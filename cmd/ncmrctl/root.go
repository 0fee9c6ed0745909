package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ncmr/internal/ncmr/app"
	"ncmr/internal/platform/config"
	"ncmr/internal/platform/logger"
)

// cli carries global flags shared by every subcommand.
type cli struct {
	outputFmt  string
	configFile string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "ncmrctl",
		Short: "Manage Non-Conformance Material Reports",
		Long: `ncmrctl lists, creates, updates and deletes NCMRs against the configured
backend. Configuration comes from NCMR_* environment variables or --config.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return validateOutput(c.outputFmt)
		},
	}

	root.PersistentFlags().StringVarP(&c.outputFmt, "output", "o", "table", "Output format: table, json, yaml")
	root.PersistentFlags().StringVar(&c.configFile, "config", os.Getenv("NCMR_CONFIG"), "Config file (yaml, json or toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log backend activity to stderr")

	root.AddCommand(c.listCmd())
	root.AddCommand(c.summaryCmd())
	root.AddCommand(c.createCmd())
	root.AddCommand(c.statusCmd())
	root.AddCommand(c.deleteCmd())
	return root
}

// open builds the controller and loads the collection. The caller must
// close the returned app.
func (c *cli) open(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.Load(c.configFile)
	if err != nil {
		return nil, err
	}
	level := "warn"
	if c.verbose {
		level = "debug"
	}
	log := logger.NewWithWriter(cmd.ErrOrStderr(), level, cfg.Log.Format)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.New(ctx, cfg, log, nil)
	if err != nil {
		return nil, err
	}
	if err := a.Controller.Load(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func closeApp(cmd *cobra.Command, a *app.App) {
	if err := a.Close(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: close store: %v\n", err)
	}
}
