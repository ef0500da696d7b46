package catalog

import (
	"fmt"
	"log/slog"

	"github.com/qapish/qapish/internal/model"
	"github.com/qapish/qapish/internal/pricing"
	"github.com/qapish/qapish/internal/storage"
)

// compose builds a priced package from its rows. Variant text that matches no
// known value is an error; a rule the pricing engine refuses is logged and the
// package is shown at undepreciated prices.
func compose(entry storage.CatalogEntry) (model.Package, error) {
	rec := entry.Package
	pkg, err := composeHeader(rec)
	if err != nil {
		return model.Package{}, fmt.Errorf("package %q: %w", rec.Name, err)
	}

	if entry.Rule != nil {
		rule, err := composeRule(*entry.Rule)
		if err != nil {
			return model.Package{}, fmt.Errorf("package %q: %w", rec.Name, err)
		}
		pkg.DepreciationRule = &rule
	}

	pricingRule := pkg.DepreciationRule
	if pricingRule != nil {
		if _, err := pricing.RuleFrom(*pricingRule); err != nil {
			slog.Warn("Depreciation rule refused, showing undepreciated prices",
				"package", rec.Name,
				"sku", pkg.SKU,
				"error", err)
			pricingRule = nil
		}
	}

	pkg.Provenances = make([]model.ProvenanceOption, 0, len(entry.Provenances))
	for _, prov := range entry.Provenances {
		opt, err := composeOption(prov, pkg.SetupPriceUSDC, pricingRule)
		if err != nil {
			return model.Package{}, fmt.Errorf("package %q: %w", rec.Name, err)
		}
		pkg.Provenances = append(pkg.Provenances, opt)
	}

	pkg.Images = make([]model.PackageImage, 0, len(entry.Images))
	for _, img := range entry.Images {
		pkg.Images = append(pkg.Images, model.PackageImage{
			Filename:    img.Filename,
			Title:       img.Title,
			Description: img.Description,
		})
	}

	pkg.MinPriceUSDC, pkg.MaxPriceUSDC = pricing.PriceRange(pkg.Provenances, pkg.SetupPriceUSDC)
	return pkg, nil
}

func composeHeader(rec storage.PackageRecord) (model.Package, error) {
	gpu, err := model.ParseGPUClass(rec.GPUClass)
	if err != nil {
		return model.Package{}, err
	}

	var value *int
	if rec.AvailabilityValue.Valid {
		v := int(rec.AvailabilityValue.Int64)
		value = &v
	}
	availability, err := model.ParseAvailability(rec.AvailabilityType, value)
	if err != nil {
		return model.Package{}, err
	}

	pkg := model.Package{
		ID:                  rec.ID,
		Name:                rec.Name,
		SKU:                 rec.SKU.String,
		Description:         rec.Description,
		HardwareDescription: rec.HardwareDescription,
		GPUClass:            gpu,
		Availability:        availability,
		CreatedAt:           rec.CreatedAt,
	}

	var errs []error
	pkg.CPUCores, errs = narrow16(rec.CPUCores, "cpu_cores", errs)
	pkg.RAMGB, errs = narrow16(rec.RAMGB, "ram_gb", errs)
	pkg.GPUCount, errs = narrow16(rec.GPUCount, "gpu_count", errs)
	pkg.VRAMGB, errs = narrow16(rec.VRAMGB, "vram_gb", errs)
	pkg.StorageGB, errs = narrow32(rec.StorageGB, "storage_gb", errs)
	pkg.SetupPriceUSDC, errs = narrow32(rec.SetupPriceUSDC, "setup_price_usdc", errs)
	pkg.MonthlyPriceUSDC, errs = narrow32(rec.MonthlyPriceUSDC, "monthly_price_usdc", errs)
	if len(errs) > 0 {
		return model.Package{}, errs[0]
	}

	return pkg, nil
}

func composeRule(rec storage.DepreciationRuleRecord) (model.DepreciationRule, error) {
	curve, err := model.ParseDepreciationCurve(rec.DepreciationCurve)
	if err != nil {
		return model.DepreciationRule{}, err
	}
	hours, errs := narrow32(rec.FullDepreciationHours, "full_depreciation_hours", nil)
	if len(errs) > 0 {
		return model.DepreciationRule{}, errs[0]
	}
	return model.DepreciationRule{
		PackageID:                  rec.PackageID,
		FinalDepreciatedPercentage: rec.FinalDepreciatedPercentage,
		FullDepreciationHours:      hours,
		DepreciationCurve:          curve,
	}, nil
}

func composeOption(rec storage.ProvenanceRecord, setupPrice uint32, rule *model.DepreciationRule) (model.ProvenanceOption, error) {
	kind, err := model.ParseProvenanceType(rec.ProvenanceType)
	if err != nil {
		return model.ProvenanceOption{}, err
	}

	opt := model.ProvenanceOption{ProvenanceType: kind}
	var errs []error
	opt.QuantityAvailable, errs = narrow32(rec.QuantityAvailable, "quantity_available", errs)
	if kind == model.ProvenanceUsed {
		opt.UsageHours, errs = narrow32(rec.UsageHours, "usage_hours", errs)
	}
	if rec.DiscountPercentage.Valid {
		d := rec.DiscountPercentage.Float64
		opt.DiscountPercentage = &d
	}

	switch {
	case rec.CalculatedPriceUSDC.Valid:
		opt.CalculatedPrice, errs = narrow32(rec.CalculatedPriceUSDC.Int64, "calculated_price_usdc", errs)
		opt.PriceOverridden = true
	case opt.IsUsed():
		opt.CalculatedPrice = pricing.Quote(setupPrice, opt.UsageHours, rule).Price
	default:
		opt.CalculatedPrice = setupPrice
	}

	if len(errs) > 0 {
		return model.ProvenanceOption{}, errs[0]
	}
	return opt, nil
}

func narrow16(v int64, field string, errs []error) (uint16, []error) {
	if v < 0 || v > 0xFFFF {
		return 0, append(errs, fmt.Errorf("%w: %s = %d", ErrOutOfRange, field, v))
	}
	return uint16(v), errs
}

func narrow32(v int64, field string, errs []error) (uint32, []error) {
	if v < 0 || v > 0xFFFFFFFF {
		return 0, append(errs, fmt.Errorf("%w: %s = %d", ErrOutOfRange, field, v))
	}
	return uint32(v), errs
}
