package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"publishing-ops-api/apperrors"
	"publishing-ops-api/models"
	"publishing-ops-api/repository"
	"publishing-ops-api/services"

	"github.com/spf13/cobra"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := ctx.app(cmd.Context())
			if err != nil {
				return err
			}
			if err := ops.DB.WithContext(cmd.Context()).AutoMigrate(models.All()...); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d tables\n", len(models.All()))
			return nil
		},
	}
}

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Run scheduled jobs and inspect the run log",
	}

	jobsCmd.AddCommand(&cobra.Command{
		Use:       "run <job>",
		Short:     "Run a job now (logged with trigger \"cli\")",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{services.JobDigest, services.JobDeadlines, services.JobSLAReminders, services.JobDirectorySync},
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := ctx.app(cmd.Context())
			if err != nil {
				return err
			}
			outcome, err := ops.Jobs.Run(cmd.Context(), args[0], services.TriggerCLI)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(outcome.Body(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			if !outcome.OK() {
				return fmt.Errorf("%s failed: %s", args[0], outcome.ErrorMessage())
			}
			return nil
		},
	})

	var jobFilter string
	var limit int
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent job runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := ctx.app(cmd.Context())
			if err != nil {
				return err
			}
			runs, total, err := ops.RunLogs.List(cmd.Context(), jobFilter, repository.Page{Limit: limit})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRuns(runs))
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d runs\n", len(runs), total)
			return nil
		},
	}
	runsCmd.Flags().StringVar(&jobFilter, "job", "", "Only show runs of this job")
	runsCmd.Flags().IntVar(&limit, "limit", 20, "Maximum rows to show (max 100)")
	jobsCmd.AddCommand(runsCmd)

	return jobsCmd
}

func newUsersCommand(ctx *commandContext) *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users",
	}
	usersCmd.AddCommand(&cobra.Command{
		Use:   "grant-admin <email>",
		Short: "Give a user the admin role, creating the user if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := ctx.app(cmd.Context())
			if err != nil {
				return err
			}
			email := strings.ToLower(strings.TrimSpace(args[0]))
			user, err := ops.Users.GetByEmail(cmd.Context(), email)
			switch {
			case apperrors.IsNotFound(err):
				user = &models.User{Email: email, Role: models.RoleAdmin, Active: true}
				if err := ops.Users.Create(cmd.Context(), user); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s\n", email)
				return nil
			case err != nil:
				return err
			}
			if _, err := ops.Users.Update(cmd.Context(), user.ID, map[string]any{"role": models.RoleAdmin, "active": true}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Granted admin to %s\n", email)
			return nil
		},
	})
	return usersCmd
}
