package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"publishing-ops-api/app"
	"publishing-ops-api/config"

	"github.com/spf13/cobra"
)

// commandContext lazily builds the app graph for subcommands.
type commandContext struct {
	verbose bool
	ops     *app.App
}

func (c *commandContext) app(ctx context.Context) (*app.App, error) {
	if c.ops != nil {
		return c.ops, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	var sqlLog io.Writer = io.Discard
	level := "warn"
	if c.verbose {
		sqlLog = os.Stderr
		level = "debug"
	}
	logger := config.NewLogger(config.LogConfig{Level: level, Format: cfg.Log.Format}, os.Stderr)
	if c.verbose {
		logger.Debug("opsctl config loaded", slog.String("driver", cfg.Database.Driver))
	}

	ops, err := app.New(ctx, cfg, logger, sqlLog)
	if err != nil {
		return nil, err
	}
	c.ops = ops
	return ops, nil
}

func (c *commandContext) close() {
	if c.ops != nil {
		_ = c.ops.Close()
	}
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "opsctl",
		Short:         "Publishing ops administration CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&ctx.verbose, "verbose", "v", false, "Log SQL and debug output to stderr")

	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newJobsCommand(ctx))
	rootCmd.AddCommand(newUsersCommand(ctx))
	return rootCmd
}
