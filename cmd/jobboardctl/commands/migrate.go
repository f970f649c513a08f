package commands

import (
	"go-jobboard-backend/pkg/database"
	"go-jobboard-backend/pkg/logger"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		storage, err := openStorage(cmd.Context())
		if err != nil {
			return err
		}
		defer storage.Close()
		pool, err := storage.RequirePool()
		if err != nil {
			return err
		}
		if err := database.Migrate(cmd.Context(), pool); err != nil {
			return err
		}
		logger.Log.Info("migrations applied")
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of every migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		storage, err := openStorage(cmd.Context())
		if err != nil {
			return err
		}
		defer storage.Close()
		pool, err := storage.RequirePool()
		if err != nil {
			return err
		}
		return database.MigrationStatus(cmd.Context(), pool)
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}
