// Package service defines the interfaces shared between application layers.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/qapish/qapish/internal/storage"
)

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Package operations
	GetActivePackages(ctx context.Context) ([]storage.PackageRecord, error)
	GetPackageBySKU(ctx context.Context, sku string) (*storage.PackageRecord, error)
	GetPackageByID(ctx context.Context, id uuid.UUID) (*storage.PackageRecord, error)
	SavePackage(ctx context.Context, pkg *storage.PackageRecord) error
	SaveCatalogEntry(ctx context.Context, entry *storage.CatalogEntry) error

	// Depreciation rule operations
	GetDepreciationRules(ctx context.Context) ([]storage.DepreciationRuleRecord, error)
	GetDepreciationRuleByPackageID(ctx context.Context, packageID uuid.UUID) (*storage.DepreciationRuleRecord, error)
	SaveDepreciationRule(ctx context.Context, rule *storage.DepreciationRuleRecord) error

	// Provenance and image operations
	GetPackageProvenances(ctx context.Context, packageID uuid.UUID) ([]storage.ProvenanceRecord, error)
	GetAllPackageProvenances(ctx context.Context) ([]storage.ProvenanceRecord, error)
	SaveProvenance(ctx context.Context, option *storage.ProvenanceRecord) error
	GetPackageImages(ctx context.Context, packageID uuid.UUID) ([]storage.ImageRecord, error)
	SavePackageImage(ctx context.Context, image *storage.ImageRecord) error

	// Organization and order operations
	CreateOrganization(ctx context.Context, name string) (uuid.UUID, error)
	CreateUser(ctx context.Context, orgID uuid.UUID, email, pwdHash string) (uuid.UUID, error)
	CreateOrder(ctx context.Context, order *storage.OrderRecord) error
	GetOrdersForOrg(ctx context.Context, orgID uuid.UUID) ([]storage.OrderRecord, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

var _ Storage = (*storage.SQLiteStorage)(nil)
