package packages

import (
	"database/sql"
	"testing"
	"time"

	"github.com/qapish/qapish/internal/model"
	"github.com/qapish/qapish/internal/storage"
)

// Builder provides a fluent interface for constructing catalog entries.
type Builder interface {
	// WithSetupPrice sets the original price in USDC.
	WithSetupPrice(usdc int64) Builder

	// WithGPU sets the GPU class text stored for the package.
	WithGPU(gpu string) Builder

	// WithAvailability sets the stored availability type and optional value.
	WithAvailability(kind string, value *int64) Builder

	// WithRule attaches a depreciation rule.
	WithRule(curve model.DepreciationCurve, finalPct float64, fullHours int64) Builder

	// WithNew adds a new-equipment option.
	WithNew(qty int64) Builder

	// WithUsed adds a used option priced by depreciation.
	WithUsed(hours, qty int64) Builder

	// WithOverride adds a used option with a stored price.
	WithOverride(hours, qty, priceUSDC int64) Builder

	// WithImage appends a gallery image.
	WithImage(filename, title string) Builder

	// Inactive hides the package from listings.
	Inactive() Builder

	// Entry returns the built entry.
	Entry() storage.CatalogEntry
}

type builder struct {
	t     *testing.T
	entry storage.CatalogEntry
}

// New creates a builder for an active in-stock RTX 4090 package.
func New(t *testing.T, name, sku string) Builder {
	t.Helper()
	return &builder{
		t: t,
		entry: storage.CatalogEntry{
			Package: storage.PackageRecord{
				Name:             name,
				SKU:              sql.NullString{String: sku, Valid: sku != ""},
				Description:      name,
				CPUCores:         16,
				RAMGB:            64,
				StorageGB:        2000,
				GPUClass:         string(model.GPURTX4090),
				GPUCount:         1,
				VRAMGB:           24,
				SetupPriceUSDC:   2500,
				MonthlyPriceUSDC: 100,
				AvailabilityType: string(model.AvailabilityInStock),
				IsActive:         true,
				CreatedAt:        time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
			},
		},
	}
}

func (b *builder) WithSetupPrice(usdc int64) Builder {
	b.entry.Package.SetupPriceUSDC = usdc
	return b
}

func (b *builder) WithGPU(gpu string) Builder {
	b.entry.Package.GPUClass = gpu
	return b
}

func (b *builder) WithAvailability(kind string, value *int64) Builder {
	b.entry.Package.AvailabilityType = kind
	b.entry.Package.AvailabilityValue = sql.NullInt64{}
	if value != nil {
		b.entry.Package.AvailabilityValue = sql.NullInt64{Int64: *value, Valid: true}
	}
	return b
}

func (b *builder) WithRule(curve model.DepreciationCurve, finalPct float64, fullHours int64) Builder {
	b.entry.Rule = &storage.DepreciationRuleRecord{
		DepreciationCurve:          string(curve),
		FinalDepreciatedPercentage: finalPct,
		FullDepreciationHours:      fullHours,
	}
	return b
}

func (b *builder) WithNew(qty int64) Builder {
	b.entry.Provenances = append(b.entry.Provenances, storage.ProvenanceRecord{
		ProvenanceType:    string(model.ProvenanceNew),
		QuantityAvailable: qty,
		IsActive:          true,
	})
	return b
}

func (b *builder) WithUsed(hours, qty int64) Builder {
	b.entry.Provenances = append(b.entry.Provenances, storage.ProvenanceRecord{
		ProvenanceType:    string(model.ProvenanceUsed),
		UsageHours:        hours,
		QuantityAvailable: qty,
		IsActive:          true,
	})
	return b
}

func (b *builder) WithOverride(hours, qty, priceUSDC int64) Builder {
	b.entry.Provenances = append(b.entry.Provenances, storage.ProvenanceRecord{
		ProvenanceType:      string(model.ProvenanceUsed),
		UsageHours:          hours,
		QuantityAvailable:   qty,
		IsActive:            true,
		CalculatedPriceUSDC: sql.NullInt64{Int64: priceUSDC, Valid: true},
	})
	return b
}

func (b *builder) WithImage(filename, title string) Builder {
	b.entry.Images = append(b.entry.Images, storage.ImageRecord{
		Filename:  filename,
		Title:     title,
		SortOrder: len(b.entry.Images),
	})
	return b
}

func (b *builder) Inactive() Builder {
	b.entry.Package.IsActive = false
	return b
}

func (b *builder) Entry() storage.CatalogEntry {
	b.t.Helper()
	entry := b.entry
	entry.Provenances = append([]storage.ProvenanceRecord(nil), b.entry.Provenances...)
	entry.Images = append([]storage.ImageRecord(nil), b.entry.Images...)
	if b.entry.Rule != nil {
		rule := *b.entry.Rule
		entry.Rule = &rule
	}
	return entry
}
