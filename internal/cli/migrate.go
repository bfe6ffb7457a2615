package cli

import (
	"database/sql"
	"fmt"

	"github.com/allenwoods/naive-coreterra/internal/config"
	"github.com/allenwoods/naive-coreterra/internal/database"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var databasePath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the reward ledger schema",
	}
	cmd.PersistentFlags().StringVar(&databasePath, "database", envOrDefault("DATABASE_PATH", config.Default().DatabasePath), "Path to the ledger database")

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd, databasePath, func(db *sql.DB) error {
				return database.MigrateContext(cmd.Context(), db)
			})
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Revert the latest migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd, databasePath, func(db *sql.DB) error {
				return database.Rollback(cmd.Context(), db)
			})
		},
	}

	cmd.AddCommand(up, down)
	return cmd
}

// withDatabase runs action against the ledger and prints the resulting schema
// version.
func withDatabase(cmd *cobra.Command, databasePath string, action func(*sql.DB) error) error {
	db, err := database.Open(databasePath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := action(db); err != nil {
		return err
	}
	version, err := database.Version(cmd.Context(), db)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
	return nil
}
