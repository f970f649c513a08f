// Package commands implements jobboardctl, the operator CLI for the job
// board: schema migrations, counter reconciliation and provisioning.
package commands

import (
	"context"
	"os/signal"
	"syscall"

	"go-jobboard-backend/config"
	"go-jobboard-backend/internal/app"
	"go-jobboard-backend/pkg/logger"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jobboardctl",
	Short: "Operate the job board backend",
	Long: `jobboardctl - operator tooling for the job board backend.

Reads the same environment (or .env) as the API server.

Examples:
  jobboardctl migrate up                 # Apply pending migrations
  jobboardctl migrate status             # Show applied migrations
  jobboardctl reconcile                  # Recompute job application counts
  jobboardctl create-admin --id sub --email ops@example.com
  jobboardctl seed-company --name Acme --owner <user-id> --verified`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		logger.Init(level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "debug, info, warn or error")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(createAdminCmd)
	rootCmd.AddCommand(seedCompanyCmd)
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// openStorage loads config and connects storage without auto-migrating;
// migrations only run through `migrate up`.
func openStorage(ctx context.Context) (*app.Storage, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	cfg.RunMigrations = false
	return app.OpenStorage(ctx, cfg)
}
