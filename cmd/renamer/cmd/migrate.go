package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solatis/renamer/internal/core/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if dbURL == "" {
			return fmt.Errorf("--db-url required")
		}
		database, err := db.Open(dbURL)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()
		return db.MigrateUp(database, logger)
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if dbURL == "" {
			return fmt.Errorf("--db-url required")
		}
		database, err := db.Open(dbURL)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()

		statuses, err := db.MigrateStatus(database)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, s := range statuses {
			if s.Applied && s.AppliedAt != nil {
				fmt.Fprintf(out, "%s\tapplied\t%s\t%dms\n", s.ID, s.AppliedAt.UTC().Format("2006-01-02T15:04:05Z"), s.ExecutionMs)
			} else {
				fmt.Fprintf(out, "%s\tpending\n", s.ID)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}
