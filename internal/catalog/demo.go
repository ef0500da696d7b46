package catalog

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/qapish/qapish/internal/storage"
)

// threeYears of continuous operation, in hours.
const threeYears = 26280

var demoCreatedAt = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

func demoPackage(id, name, sku, gpu string, cpu, ram, storageGB, gpuCount, vram, setup, monthly int64) storage.PackageRecord {
	return storage.PackageRecord{
		ID:               uuid.MustParse(id),
		Name:             name,
		SKU:              sql.NullString{String: sku, Valid: true},
		GPUClass:         gpu,
		CPUCores:         cpu,
		RAMGB:            ram,
		StorageGB:        storageGB,
		GPUCount:         gpuCount,
		VRAMGB:           vram,
		SetupPriceUSDC:   setup,
		MonthlyPriceUSDC: monthly,
		AvailabilityType: "in_stock",
		IsActive:         true,
		CreatedAt:        demoCreatedAt,
	}
}

func demoRule(curve string, finalPct float64, hours int64) *storage.DepreciationRuleRecord {
	return &storage.DepreciationRuleRecord{
		DepreciationCurve:          curve,
		FinalDepreciatedPercentage: finalPct,
		FullDepreciationHours:      hours,
	}
}

func newOption(qty int64) storage.ProvenanceRecord {
	return storage.ProvenanceRecord{ProvenanceType: "new", QuantityAvailable: qty, IsActive: true}
}

func usedOption(hours, qty int64) storage.ProvenanceRecord {
	return storage.ProvenanceRecord{ProvenanceType: "used", UsageHours: hours, QuantityAvailable: qty, IsActive: true}
}

// DemoEntries returns the built-in catalog served in memory mode, ordered by
// setup price.
func DemoEntries() []storage.CatalogEntry {
	workstation := demoPackage("0b7f8f8e-4c1a-4d43-9d0e-7e2a4f1c0001",
		"Strix Halo Workstation", "QP-WS-8060S", "Radeon_8060S",
		16, 128, 2000, 1, 96, 2500, 90)
	workstation.Description = "Compact unified-memory box for local inference."
	workstation.HardwareDescription = "AMD Ryzen AI Max+ 395, 128 GB LPDDR5X, 2 TB NVMe"

	inference := demoPackage("0b7f8f8e-4c1a-4d43-9d0e-7e2a4f1c0002",
		"Inference Node", "QP-INF-4090", "RTX_4090",
		24, 128, 4000, 2, 48, 6000, 220)
	inference.Description = "Dual consumer GPUs for fine-tuning and serving mid-size models."
	inference.HardwareDescription = "AMD Threadripper 7960X, 2x RTX 4090, 128 GB DDR5, 4 TB NVMe"

	builder := demoPackage("0b7f8f8e-4c1a-4d43-9d0e-7e2a4f1c0003",
		"Blackwell Builder", "QP-BLD-5090", "RTX_5090",
		32, 256, 8000, 4, 128, 14000, 480)
	builder.Description = "Four-GPU tower assembled to order."
	builder.HardwareDescription = "AMD Threadripper PRO 7975WX, 4x RTX 5090, 256 GB DDR5 ECC, 8 TB NVMe"
	builder.AvailabilityType = "build"
	builder.AvailabilityValue = sql.NullInt64{Int64: 72, Valid: true}

	datacenter := demoPackage("0b7f8f8e-4c1a-4d43-9d0e-7e2a4f1c0004",
		"H100 Training Server", "QP-DC-H100", "H100_80G",
		64, 1024, 16000, 8, 640, 250000, 9000)
	datacenter.Description = "Rack server for large-scale training."
	datacenter.HardwareDescription = "2x AMD EPYC 9354, 8x H100 80GB SXM, 1 TB DDR5 ECC, 16 TB NVMe"
	datacenter.AvailabilityType = "preorder"

	return []storage.CatalogEntry{
		{
			Package:     workstation,
			Rule:        demoRule("linear", 30, threeYears),
			Provenances: []storage.ProvenanceRecord{newOption(5), usedOption(4000, 2)},
			Images: []storage.ImageRecord{
				{Filename: "strix-halo-front.jpg", Title: "Front", Description: "Front panel"},
			},
		},
		{
			Package:     inference,
			Rule:        demoRule("stepped", 40, threeYears),
			Provenances: []storage.ProvenanceRecord{newOption(3), usedOption(8760, 1), usedOption(17520, 1)},
		},
		{
			Package:     builder,
			Rule:        demoRule("exponential", 35, threeYears),
			Provenances: []storage.ProvenanceRecord{newOption(2)},
		},
		{
			Package: datacenter,
			Rule:    demoRule("linear", 25, threeYears),
			Provenances: []storage.ProvenanceRecord{
				newOption(1),
				{
					ProvenanceType:      "used",
					UsageHours:          13140,
					QuantityAvailable:   1,
					IsActive:            true,
					CalculatedPriceUSDC: sql.NullInt64{Int64: 190000, Valid: true},
				},
			},
		},
	}
}
