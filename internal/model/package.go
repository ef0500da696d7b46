package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AvailabilityType says when a package can be delivered.
type AvailabilityType string

const (
	// AvailabilityInStock ships from stock.
	AvailabilityInStock AvailabilityType = "in_stock"
	// AvailabilityPreorder is taken on preorder.
	AvailabilityPreorder AvailabilityType = "preorder"
	// AvailabilityBuild is assembled to order within BuildHours.
	AvailabilityBuild AvailabilityType = "build"
)

// DefaultBuildHours applies to build-to-order packages stored without a value.
const DefaultBuildHours = 48

// Availability is a package's delivery state.
type Availability struct {
	Type       AvailabilityType `json:"type"`
	BuildHours uint16           `json:"build_hours,omitempty"`
}

// ParseAvailability maps the stored type text and optional value to an availability.
func ParseAvailability(s string, value *int) (Availability, error) {
	switch AvailabilityType(s) {
	case AvailabilityInStock, AvailabilityPreorder:
		return Availability{Type: AvailabilityType(s)}, nil
	case AvailabilityBuild:
		hours := DefaultBuildHours
		if value != nil {
			hours = *value
		}
		if hours < 0 || hours > 0xFFFF {
			return Availability{}, fmt.Errorf("%w: build hours %d out of range", ErrUnknownVariant, hours)
		}
		return Availability{Type: AvailabilityBuild, BuildHours: uint16(hours)}, nil
	default:
		return Availability{}, unknownVariant("availability", s)
	}
}

// PackageImage is a gallery image for a package.
type PackageImage struct {
	Filename    string `json:"filename"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Package is a rentable server configuration as shown to shoppers.
// SetupPriceUSDC is the original price used for depreciation and as the range
// fallback. MinPriceUSDC and MaxPriceUSDC span the provenance option prices.
type Package struct {
	CreatedAt           time.Time          `json:"created_at"`
	DepreciationRule    *DepreciationRule  `json:"depreciation_rule,omitempty"`
	Name                string             `json:"name"`
	SKU                 string             `json:"sku"`
	Description         string             `json:"description"`
	HardwareDescription string             `json:"hardware_description"`
	GPUClass            GPUClass           `json:"gpu_class"`
	Availability        Availability       `json:"availability"`
	Images              []PackageImage     `json:"images"`
	Provenances         []ProvenanceOption `json:"provenances"`
	ID                  uuid.UUID          `json:"id"`
	StorageGB           uint32             `json:"storage_gb"`
	SetupPriceUSDC      uint32             `json:"setup_price_usdc"`
	MonthlyPriceUSDC    uint32             `json:"monthly_price_usdc"`
	MinPriceUSDC        uint32             `json:"min_price_usdc"`
	MaxPriceUSDC        uint32             `json:"max_price_usdc"`
	CPUCores            uint16             `json:"cpu_cores"`
	RAMGB               uint16             `json:"ram_gb"`
	GPUCount            uint16             `json:"gpu_count"`
	VRAMGB              uint16             `json:"vram_gb"`
}
