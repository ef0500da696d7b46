// Package testutil provides test databases seeded with catalog fixtures.
package testutil

import (
	"context"
	"testing"

	"github.com/qapish/qapish/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
	Entries []storage.CatalogEntry
}

// SetupTestDB creates a new in-memory test database holding entries.
// It automatically handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t,
//		packages.New(t, "Node", "QP-1").WithSetupPrice(2500).WithUsed(13140, 1).Entry(),
//	)
func SetupTestDB(t *testing.T, entries ...storage.CatalogEntry) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{Entries: entries})
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup    func(context.Context, *storage.SQLiteStorage) error
	Entries        []storage.CatalogEntry
	SkipMigrations bool
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	saved := make([]storage.CatalogEntry, 0, len(opts.Entries))
	for _, entry := range opts.Entries {
		if err := store.SaveCatalogEntry(ctx, &entry); err != nil {
			t.Fatalf("failed to seed package %q: %v", entry.Package.Name, err)
		}
		saved = append(saved, entry)
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{
		Storage: store,
		Entries: saved,
		t:       t,
	}
}

// MustGetEntry returns the seeded entry with the given SKU or fails the test.
func (db *TestDB) MustGetEntry(sku string) storage.CatalogEntry {
	db.t.Helper()
	for _, entry := range db.Entries {
		if entry.Package.SKU.String == sku {
			return entry
		}
	}
	db.t.Fatalf("package %q not found in test data", sku)
	return storage.CatalogEntry{}
}
