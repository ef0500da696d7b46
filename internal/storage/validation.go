package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrInvalidPackage   = errors.New("invalid package")
	ErrInvalidRule      = errors.New("invalid depreciation rule")
	ErrInvalidOption    = errors.New("invalid provenance option")
	ErrInvalidImage     = errors.New("invalid package image")
	ErrInvalidOrder     = errors.New("invalid order")
	ErrInvalidUser      = errors.New("invalid user")
	ErrInvalidReference = errors.New("invalid reference")
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateID(id uuid.UUID, paramName string) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: %s", ErrInvalidReference, paramName)
	}
	return nil
}

func validatePackage(p *PackageRecord) error {
	if p == nil {
		return fmt.Errorf("%w: package", ErrNilParameter)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidPackage)
	}
	if p.SKU.Valid && strings.TrimSpace(p.SKU.String) == "" {
		return fmt.Errorf("%w: blank sku", ErrInvalidPackage)
	}
	if p.GPUClass == "" {
		return fmt.Errorf("%w: missing gpu class", ErrInvalidPackage)
	}
	if p.AvailabilityType == "" {
		return fmt.Errorf("%w: missing availability", ErrInvalidPackage)
	}
	if p.SetupPriceUSDC < 0 || p.MonthlyPriceUSDC < 0 {
		return fmt.Errorf("%w: negative price", ErrInvalidPackage)
	}
	if p.CPUCores < 0 || p.RAMGB < 0 || p.StorageGB < 0 || p.GPUCount < 0 || p.VRAMGB < 0 {
		return fmt.Errorf("%w: negative hardware quantity", ErrInvalidPackage)
	}
	return nil
}

// validateRule checks structure only. Whether a rule can price anything is
// decided by the pricing package when the catalog is loaded.
func validateRule(r *DepreciationRuleRecord) error {
	if r == nil {
		return fmt.Errorf("%w: rule", ErrNilParameter)
	}
	if err := validateID(r.PackageID, "package_id"); err != nil {
		return err
	}
	if r.DepreciationCurve == "" {
		return fmt.Errorf("%w: missing curve", ErrInvalidRule)
	}
	if r.FullDepreciationHours < 0 {
		return fmt.Errorf("%w: negative full depreciation hours", ErrInvalidRule)
	}
	return nil
}

func validateProvenance(p *ProvenanceRecord) error {
	if p == nil {
		return fmt.Errorf("%w: provenance", ErrNilParameter)
	}
	if err := validateID(p.PackageID, "package_id"); err != nil {
		return err
	}
	if p.ProvenanceType == "" {
		return fmt.Errorf("%w: missing provenance type", ErrInvalidOption)
	}
	if p.UsageHours < 0 || p.QuantityAvailable < 0 {
		return fmt.Errorf("%w: negative usage or quantity", ErrInvalidOption)
	}
	if p.CalculatedPriceUSDC.Valid && p.CalculatedPriceUSDC.Int64 < 0 {
		return fmt.Errorf("%w: negative price", ErrInvalidOption)
	}
	if p.DiscountPercentage.Valid && (p.DiscountPercentage.Float64 < 0 || p.DiscountPercentage.Float64 > 100) {
		return fmt.Errorf("%w: discount must be between 0 and 100", ErrInvalidOption)
	}
	return nil
}

func validateImage(img *ImageRecord) error {
	if img == nil {
		return fmt.Errorf("%w: image", ErrNilParameter)
	}
	if err := validateID(img.PackageID, "package_id"); err != nil {
		return err
	}
	if strings.TrimSpace(img.Filename) == "" {
		return fmt.Errorf("%w: missing filename", ErrInvalidImage)
	}
	return nil
}

func validateOrder(o *OrderRecord) error {
	if o == nil {
		return fmt.Errorf("%w: order", ErrNilParameter)
	}
	if err := validateID(o.OrgID, "org_id"); err != nil {
		return err
	}
	if o.PlanGPU == "" {
		return fmt.Errorf("%w: missing gpu", ErrInvalidOrder)
	}
	if o.PlanCPUCores < 0 || o.PlanRAMGB < 0 || o.PlanStorageGB < 0 {
		return fmt.Errorf("%w: negative plan quantity", ErrInvalidOrder)
	}
	return nil
}
