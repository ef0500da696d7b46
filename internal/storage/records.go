package storage

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Records mirror table rows. Variant columns stay as text and nullable columns
// as sql.Null* values; translation into model types happens in the catalog.

// PackageRecord is a row of the packages table.
type PackageRecord struct {
	CreatedAt           time.Time
	SKU                 sql.NullString
	AvailabilityValue   sql.NullInt64
	Name                string
	Description         string
	HardwareDescription string
	GPUClass            string
	AvailabilityType    string
	StorageGB           int64
	SetupPriceUSDC      int64
	MonthlyPriceUSDC    int64
	CPUCores            int64
	RAMGB               int64
	GPUCount            int64
	VRAMGB              int64
	ID                  uuid.UUID
	IsActive            bool
}

// DepreciationRuleRecord is a row of the package_depreciation_rules table.
type DepreciationRuleRecord struct {
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
	DepreciationCurve          string
	FinalDepreciatedPercentage float64
	ID                         int64
	FullDepreciationHours      int64
	PackageID                  uuid.UUID
}

// ProvenanceRecord is a row of the package_provenance table.
type ProvenanceRecord struct {
	CreatedAt           time.Time
	UpdatedAt           time.Time
	CalculatedPriceUSDC sql.NullInt64
	DiscountPercentage  sql.NullFloat64
	ProvenanceType      string
	ID                  int64
	UsageHours          int64
	QuantityAvailable   int64
	PackageID           uuid.UUID
	IsActive            bool
}

// ImageRecord is a row of the package_images table.
type ImageRecord struct {
	Filename    string
	Title       string
	Description string
	SortOrder   int
	PackageID   uuid.UUID
}

// OrderRecord is a row of the server_orders table.
type OrderRecord struct {
	CreatedAt     time.Time
	Notes         sql.NullString
	PlanGPU       string
	Status        string
	PlanCPUCores  int64
	PlanRAMGB     int64
	PlanStorageGB int64
	ID            uuid.UUID
	OrgID         uuid.UUID
	PQEnabled     bool
}

// CatalogEntry is a package with everything attached to it, written in one
// transaction by SaveCatalogEntry.
type CatalogEntry struct {
	Rule        *DepreciationRuleRecord
	Package     PackageRecord
	Provenances []ProvenanceRecord
	Images      []ImageRecord
}
