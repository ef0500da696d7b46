package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// DemoOrgID is the organization orders are filed under until real
// authentication exists.
const DemoOrgID = "550e8400-e29b-41d4-a716-446655440000"

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Catalog schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS packages (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					sku TEXT UNIQUE,
					description TEXT NOT NULL DEFAULT '',
					hardware_description TEXT NOT NULL DEFAULT '',
					cpu_cores INTEGER NOT NULL,
					ram_gb INTEGER NOT NULL,
					storage_gb INTEGER NOT NULL,
					gpu_class TEXT NOT NULL,
					gpu_count INTEGER NOT NULL DEFAULT 0,
					vram_gb INTEGER NOT NULL DEFAULT 0,
					setup_price_usdc INTEGER NOT NULL,
					monthly_price_usdc INTEGER NOT NULL,
					availability_type TEXT NOT NULL DEFAULT 'in_stock',
					availability_value INTEGER,
					is_active BOOLEAN NOT NULL DEFAULT 1,
					created_at DATETIME NOT NULL
				)`,

				`CREATE TABLE IF NOT EXISTS package_depreciation_rules (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					package_id TEXT NOT NULL UNIQUE,
					final_depreciated_percentage REAL NOT NULL,
					full_depreciation_hours INTEGER NOT NULL,
					depreciation_curve TEXT NOT NULL,
					created_at DATETIME NOT NULL,
					updated_at DATETIME NOT NULL,
					FOREIGN KEY (package_id) REFERENCES packages(id) ON DELETE CASCADE
				)`,

				`CREATE TABLE IF NOT EXISTS package_provenance (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					package_id TEXT NOT NULL,
					provenance_type TEXT NOT NULL,
					usage_hours INTEGER NOT NULL DEFAULT 0,
					quantity_available INTEGER NOT NULL DEFAULT 0,
					is_active BOOLEAN NOT NULL DEFAULT 1,
					calculated_price_usdc INTEGER,
					discount_percentage REAL,
					created_at DATETIME NOT NULL,
					updated_at DATETIME NOT NULL,
					FOREIGN KEY (package_id) REFERENCES packages(id) ON DELETE CASCADE
				)`,

				`CREATE TABLE IF NOT EXISTS package_images (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					package_id TEXT NOT NULL,
					filename TEXT NOT NULL,
					title TEXT NOT NULL DEFAULT '',
					description TEXT NOT NULL DEFAULT '',
					sort_order INTEGER NOT NULL DEFAULT 0,
					FOREIGN KEY (package_id) REFERENCES packages(id) ON DELETE CASCADE
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Organizations, users and server orders",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS organizations (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS users (
					id TEXT PRIMARY KEY,
					org_id TEXT NOT NULL,
					email TEXT NOT NULL UNIQUE,
					pwd_hash TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (org_id) REFERENCES organizations(id)
				)`,

				`CREATE TABLE IF NOT EXISTS server_orders (
					id TEXT PRIMARY KEY,
					org_id TEXT NOT NULL,
					plan_cpu_cores INTEGER NOT NULL,
					plan_ram_gb INTEGER NOT NULL,
					plan_storage_gb INTEGER NOT NULL,
					plan_gpu TEXT NOT NULL,
					pq_enabled BOOLEAN NOT NULL DEFAULT 0,
					notes TEXT,
					status TEXT NOT NULL DEFAULT 'queued',
					created_at DATETIME NOT NULL,
					FOREIGN KEY (org_id) REFERENCES organizations(id)
				)`,

				`INSERT OR IGNORE INTO organizations (id, name) VALUES ('` + DemoOrgID + `', 'Demo organization')`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Catalog and order lookup indexes",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE INDEX IF NOT EXISTS idx_packages_active_price ON packages(is_active, setup_price_usdc)`,
				`CREATE INDEX IF NOT EXISTS idx_provenance_package ON package_provenance(package_id, is_active, usage_hours)`,
				`CREATE INDEX IF NOT EXISTS idx_images_package ON package_images(package_id, sort_order)`,
				`CREATE INDEX IF NOT EXISTS idx_orders_org_created ON server_orders(org_id, created_at)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
}

// Migrate brings the schema up to ExpectedSchemaVersion.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion reports the applied schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
