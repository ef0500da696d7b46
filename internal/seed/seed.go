// Package seed loads catalog packages from YAML files into storage.
package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/qapish/qapish/internal/model"
	"github.com/qapish/qapish/internal/storage"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSeed is returned when a seed file parses but describes an
// impossible catalog.
var ErrInvalidSeed = errors.New("invalid seed file")

// File is a catalog seed document.
type File struct {
	Packages []Package `yaml:"packages"`
}

// Package is one package entry of a seed file.
type Package struct {
	Active              *bool        `yaml:"active,omitempty"`
	BuildHours          *int         `yaml:"build_hours,omitempty"`
	Depreciation        *Rule        `yaml:"depreciation,omitempty"`
	Name                string       `yaml:"name"`
	SKU                 string       `yaml:"sku"`
	Description         string       `yaml:"description"`
	HardwareDescription string       `yaml:"hardware_description"`
	GPUClass            string       `yaml:"gpu_class"`
	Availability        string       `yaml:"availability"`
	Provenance          []Provenance `yaml:"provenance"`
	Images              []Image      `yaml:"images"`
	StorageGB           uint32       `yaml:"storage_gb"`
	SetupPriceUSDC      uint32       `yaml:"setup_price_usdc"`
	MonthlyPriceUSDC    uint32       `yaml:"monthly_price_usdc"`
	CPUCores            uint16       `yaml:"cpu_cores"`
	RAMGB               uint16       `yaml:"ram_gb"`
	GPUCount            uint16       `yaml:"gpu_count"`
	VRAMGB              uint16       `yaml:"vram_gb"`
}

// Rule is a package's depreciation rule.
type Rule struct {
	Curve           string  `yaml:"curve"`
	FinalPercentage float64 `yaml:"final_percentage"`
	FullHours       uint32  `yaml:"full_hours"`
}

// Provenance is one purchasable condition. PriceUSDC overrides depreciation.
type Provenance struct {
	PriceUSDC          *uint32  `yaml:"price_usdc,omitempty"`
	DiscountPercentage *float64 `yaml:"discount_percentage,omitempty"`
	Type               string   `yaml:"type"`
	UsageHours         uint32   `yaml:"usage_hours"`
	Quantity           uint32   `yaml:"quantity"`
}

// Image is a gallery image.
type Image struct {
	Filename    string `yaml:"filename"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// LoadFile reads and validates a seed file from disk.
func LoadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// Load parses and validates a seed document. Variant text is checked with the
// same parsers the catalog uses, so a file that loads also lists.
func Load(r io.Reader) (*File, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidSeed)
		}
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	if err := file.Validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

// Validate checks every package of the file.
func (f *File) Validate() error {
	if len(f.Packages) == 0 {
		return fmt.Errorf("%w: no packages", ErrInvalidSeed)
	}

	skus := make(map[string]int, len(f.Packages))
	for i, p := range f.Packages {
		if err := p.validate(); err != nil {
			return fmt.Errorf("package %d (%s): %w", i+1, p.Name, err)
		}
		if prev, dup := skus[p.SKU]; dup {
			return fmt.Errorf("%w: sku %q used by packages %d and %d", ErrInvalidSeed, p.SKU, prev, i+1)
		}
		skus[p.SKU] = i + 1
	}
	return nil
}

func (p Package) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSeed)
	}
	if strings.TrimSpace(p.SKU) == "" {
		return fmt.Errorf("%w: sku is required", ErrInvalidSeed)
	}
	if _, err := model.ParseGPUClass(p.GPUClass); err != nil {
		return err
	}
	if _, err := model.ParseAvailability(p.availability(), p.BuildHours); err != nil {
		return err
	}
	if p.Depreciation != nil {
		if _, err := model.ParseDepreciationCurve(p.Depreciation.Curve); err != nil {
			return err
		}
		if p.Depreciation.FinalPercentage < 0 || p.Depreciation.FinalPercentage > 100 {
			return fmt.Errorf("%w: final_percentage must be between 0 and 100", ErrInvalidSeed)
		}
	}
	for j, prov := range p.Provenance {
		kind, err := model.ParseProvenanceType(prov.Type)
		if err != nil {
			return fmt.Errorf("provenance %d: %w", j+1, err)
		}
		if kind == model.ProvenanceNew && prov.UsageHours != 0 {
			return fmt.Errorf("%w: provenance %d: new units have no usage hours", ErrInvalidSeed, j+1)
		}
		if d := prov.DiscountPercentage; d != nil && (*d < 0 || *d > 100) {
			return fmt.Errorf("%w: provenance %d: discount_percentage must be between 0 and 100", ErrInvalidSeed, j+1)
		}
	}
	for j, img := range p.Images {
		if strings.TrimSpace(img.Filename) == "" {
			return fmt.Errorf("%w: image %d: filename is required", ErrInvalidSeed, j+1)
		}
	}
	return nil
}

func (p Package) availability() string {
	if p.Availability == "" {
		return string(model.AvailabilityInStock)
	}
	return p.Availability
}

// Entry converts the package into storage rows.
func (p Package) Entry() storage.CatalogEntry {
	active := p.Active == nil || *p.Active

	rec := storage.PackageRecord{
		Name:                p.Name,
		SKU:                 sql.NullString{String: p.SKU, Valid: true},
		Description:         p.Description,
		HardwareDescription: p.HardwareDescription,
		CPUCores:            int64(p.CPUCores),
		RAMGB:               int64(p.RAMGB),
		StorageGB:           int64(p.StorageGB),
		GPUClass:            p.GPUClass,
		GPUCount:            int64(p.GPUCount),
		VRAMGB:              int64(p.VRAMGB),
		SetupPriceUSDC:      int64(p.SetupPriceUSDC),
		MonthlyPriceUSDC:    int64(p.MonthlyPriceUSDC),
		AvailabilityType:    p.availability(),
		IsActive:            active,
	}
	if p.BuildHours != nil {
		rec.AvailabilityValue = sql.NullInt64{Int64: int64(*p.BuildHours), Valid: true}
	}

	entry := storage.CatalogEntry{Package: rec}
	if p.Depreciation != nil {
		entry.Rule = &storage.DepreciationRuleRecord{
			DepreciationCurve:          p.Depreciation.Curve,
			FinalDepreciatedPercentage: p.Depreciation.FinalPercentage,
			FullDepreciationHours:      int64(p.Depreciation.FullHours),
		}
	}
	for _, prov := range p.Provenance {
		opt := storage.ProvenanceRecord{
			ProvenanceType:    prov.Type,
			UsageHours:        int64(prov.UsageHours),
			QuantityAvailable: int64(prov.Quantity),
			IsActive:          true,
		}
		if prov.PriceUSDC != nil {
			opt.CalculatedPriceUSDC = sql.NullInt64{Int64: int64(*prov.PriceUSDC), Valid: true}
		}
		if prov.DiscountPercentage != nil {
			opt.DiscountPercentage = sql.NullFloat64{Float64: *prov.DiscountPercentage, Valid: true}
		}
		entry.Provenances = append(entry.Provenances, opt)
	}
	for i, img := range p.Images {
		entry.Images = append(entry.Images, storage.ImageRecord{
			Filename:    img.Filename,
			Title:       img.Title,
			Description: img.Description,
			SortOrder:   i,
		})
	}
	return entry
}

// Store is the part of storage that Apply writes through.
type Store interface {
	GetPackageBySKU(ctx context.Context, sku string) (*storage.PackageRecord, error)
	SaveCatalogEntry(ctx context.Context, entry *storage.CatalogEntry) error
}

// Apply writes each package of file in order. A package whose SKU is already
// listed is updated in place and its options and images replaced. progress,
// if not nil, is called after each package.
func Apply(ctx context.Context, store Store, file *File, progress func()) (int, error) {
	applied := 0
	for _, p := range file.Packages {
		if err := ctx.Err(); err != nil {
			return applied, err
		}

		entry := p.Entry()
		existing, err := store.GetPackageBySKU(ctx, p.SKU)
		if err != nil {
			return applied, fmt.Errorf("failed to look up %q: %w", p.SKU, err)
		}
		if existing != nil {
			entry.Package.ID = existing.ID
			entry.Package.CreatedAt = existing.CreatedAt
		}

		if err := store.SaveCatalogEntry(ctx, &entry); err != nil {
			return applied, fmt.Errorf("failed to save %q: %w", p.SKU, err)
		}
		applied++

		slog.Debug("Seeded package", "sku", p.SKU, "updated", existing != nil)
		if progress != nil {
			progress()
		}
	}
	return applied, nil
}
