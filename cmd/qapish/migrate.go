package main

import (
	"fmt"
	"log/slog"

	"github.com/qapish/qapish/internal/cli"
	"github.com/qapish/qapish/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Creates the catalog, order and account tables, their indexes, and the
demo organization that unauthenticated orders belong to.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current schema version without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	status, _ := cmd.Flags().GetBool("status")

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	store, err := storage.NewSQLiteStorage(settings.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if status {
		current, err := store.SchemaVersion(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox("Database Migration Status", fmt.Sprintf(
			"Database: %s\nCurrent version: %d\nLatest version: %d",
			store.Path(), current, storage.ExpectedSchemaVersion)))
		return nil
	}

	slog.Info("Running database migrations", "database", store.Path())
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Database at schema version %d", storage.ExpectedSchemaVersion)))
	return nil
}
