package catalog

import (
	"context"
	"testing"

	"github.com/qapish/qapish/internal/common"
	"github.com/qapish/qapish/internal/model"
	"github.com/qapish/qapish/internal/testutil"
	"github.com/qapish/qapish/internal/testutil/packages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findSKU(t *testing.T, pkgs []model.Package, sku string) model.Package {
	t.Helper()
	for _, p := range pkgs {
		if p.SKU == sku {
			return p
		}
	}
	t.Fatalf("package %q not in listing", sku)
	return model.Package{}
}

func prices(opts []model.ProvenanceOption) []uint32 {
	out := make([]uint32, len(opts))
	for i, o := range opts {
		out[i] = o.CalculatedPrice
	}
	return out
}

func TestPersisted_Packages(t *testing.T) {
	db := testutil.SetupTestDB(t, packages.Standard(t)...)
	src := NewPersisted(db.Storage)

	pkgs, err := src.Packages(context.Background())
	require.NoError(t, err)
	require.Len(t, pkgs, 6)

	for i := 1; i < len(pkgs); i++ {
		assert.LessOrEqual(t, pkgs[i-1].SetupPriceUSDC, pkgs[i].SetupPriceUSDC)
	}

	tests := []struct {
		sku        string
		wantPrices []uint32
		wantMin    uint32
		wantMax    uint32
	}{
		// New keeps setup price, options are listed least used first.
		{sku: packages.SKULinear, wantPrices: []uint32{2500, 1625, 750}, wantMin: 750, wantMax: 2500},
		{sku: packages.SKUStepped, wantPrices: []uint32{1690}, wantMin: 1690, wantMax: 1690},
		{sku: packages.SKUExponential, wantPrices: []uint32{1478}, wantMin: 1478, wantMax: 1478},
		{sku: packages.SKUOverride, wantPrices: []uint32{2800, 1999}, wantMin: 1999, wantMax: 2800},
		{sku: packages.SKUInvalidRule, wantPrices: []uint32{2900}, wantMin: 2900, wantMax: 2900},
		{sku: packages.SKUBare, wantPrices: []uint32{}, wantMin: 3000, wantMax: 3000},
	}

	for _, tt := range tests {
		t.Run(tt.sku, func(t *testing.T) {
			p := findSKU(t, pkgs, tt.sku)
			assert.Equal(t, tt.wantPrices, prices(p.Provenances))
			assert.Equal(t, tt.wantMin, p.MinPriceUSDC)
			assert.Equal(t, tt.wantMax, p.MaxPriceUSDC)
		})
	}

	t.Run("override is flagged", func(t *testing.T) {
		p := findSKU(t, pkgs, packages.SKUOverride)
		require.Len(t, p.Provenances, 2)
		assert.False(t, p.Provenances[0].PriceOverridden)
		assert.True(t, p.Provenances[1].PriceOverridden)
	})

	t.Run("rule and images are attached", func(t *testing.T) {
		p := findSKU(t, pkgs, packages.SKULinear)
		require.NotNil(t, p.DepreciationRule)
		assert.Equal(t, model.CurveLinear, p.DepreciationRule.DepreciationCurve)
		assert.Equal(t, uint32(packages.ThreeYears), p.DepreciationRule.FullDepreciationHours)
		assert.Equal(t, p.ID, p.DepreciationRule.PackageID)
		require.Len(t, p.Images, 1)
		assert.Equal(t, "linear.jpg", p.Images[0].Filename)
		assert.Equal(t, model.GPURTX4090, p.GPUClass)
	})

	t.Run("invalid rule still shown", func(t *testing.T) {
		p := findSKU(t, pkgs, packages.SKUInvalidRule)
		require.NotNil(t, p.DepreciationRule)
		assert.Equal(t, model.CurveExponential, p.DepreciationRule.DepreciationCurve)
	})
}

func TestPersisted_HidesInactive(t *testing.T) {
	db := testutil.SetupTestDB(t,
		packages.New(t, "Shown", "QP-SHOWN").Entry(),
		packages.New(t, "Hidden", "QP-HIDDEN").Inactive().Entry(),
	)
	src := NewPersisted(db.Storage)
	ctx := context.Background()

	pkgs, err := src.Packages(ctx)
	require.NoError(t, err)
	require.Len(t, pkgs, 1)
	assert.Equal(t, "QP-SHOWN", pkgs[0].SKU)

	p, err := src.PackageBySKU(ctx, "QP-HIDDEN")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestPersisted_PackageBySKU(t *testing.T) {
	db := testutil.SetupTestDB(t, packages.Standard(t)...)
	src := NewPersisted(db.Storage)
	ctx := context.Background()

	p, err := src.PackageBySKU(ctx, packages.SKULinear)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Linear Node", p.Name)
	assert.Equal(t, []uint32{2500, 1625, 750}, prices(p.Provenances))
	assert.Equal(t, uint32(750), p.MinPriceUSDC)

	missing, err := src.PackageBySKU(ctx, "NO-SUCH-SKU")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPersisted_IntegrityErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func(t *testing.T) packages.Builder
	}{
		{
			name: "unknown gpu",
			build: func(t *testing.T) packages.Builder {
				return packages.New(t, "Broken GPU", "QP-BRK").WithGPU("TPU_V5")
			},
		},
		{
			name: "unknown curve",
			build: func(t *testing.T) packages.Builder {
				return packages.New(t, "Broken Curve", "QP-BRK").WithRule("sigmoid", 30, 1000)
			},
		},
		{
			name: "unknown availability",
			build: func(t *testing.T) packages.Builder {
				return packages.New(t, "Broken Availability", "QP-BRK").WithAvailability("someday", nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := tt.build(t).Entry()
			db := testutil.SetupTestDB(t, entry)
			src := NewPersisted(db.Storage)

			_, err := src.Packages(context.Background())
			require.ErrorIs(t, err, model.ErrUnknownVariant)
			assert.Contains(t, err.Error(), entry.Package.Name)

			_, err = src.PackageBySKU(context.Background(), "QP-BRK")
			assert.ErrorIs(t, err, model.ErrUnknownVariant)
		})
	}
}

func TestPersisted_BuildAvailability(t *testing.T) {
	hours := int64(96)
	db := testutil.SetupTestDB(t,
		packages.New(t, "Default Build", "QP-B1").WithAvailability("build", nil).Entry(),
		packages.New(t, "Slow Build", "QP-B2").WithAvailability("build", &hours).Entry(),
	)
	src := NewPersisted(db.Storage)
	ctx := context.Background()

	p, err := src.PackageBySKU(ctx, "QP-B1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, model.Availability{Type: model.AvailabilityBuild, BuildHours: model.DefaultBuildHours}, p.Availability)

	p, err = src.PackageBySKU(ctx, "QP-B2")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, uint16(96), p.Availability.BuildHours)
}

func TestPersisted_Orders(t *testing.T) {
	db := testutil.SetupTestDB(t)
	src := NewPersisted(db.Storage)
	ctx := context.Background()

	notes := "rack near the window"
	first, err := src.CreateOrder(ctx, model.CreateOrderRequest{
		Plan: model.Plan{CPUCores: 8, RAMGB: 32, StorageGB: 500, GPU: model.GPUL4},
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderQueued, first.Status)

	second, err := src.CreateOrder(ctx, model.CreateOrderRequest{
		Plan:      model.Plan{CPUCores: 64, RAMGB: 512, StorageGB: 8000, GPU: model.GPUH100_80G},
		PQEnabled: true,
		Notes:     &notes,
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.OrderID, second.OrderID)

	orders, err := src.Orders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.OrderID, orders[0].ID)
	assert.Equal(t, model.GPUH100_80G, orders[0].Plan.GPU)
	assert.Equal(t, uint32(8000), orders[0].Plan.StorageGB)
	assert.Equal(t, first.OrderID, orders[1].ID)
	assert.Equal(t, model.OrderQueued, orders[1].Status)

	t.Run("missing gpu is a user error", func(t *testing.T) {
		_, err := src.CreateOrder(ctx, model.CreateOrderRequest{Plan: model.Plan{CPUCores: 4}})
		require.ErrorIs(t, err, ErrMissingGPU)
		_, ok := common.IsUserError(err)
		assert.True(t, ok)
	})

	t.Run("unknown gpu is a user error", func(t *testing.T) {
		_, err := src.CreateOrder(ctx, model.CreateOrderRequest{Plan: model.Plan{GPU: "TPU_V5"}})
		require.ErrorIs(t, err, model.ErrUnknownVariant)
		_, ok := common.IsUserError(err)
		assert.True(t, ok)
	})
}
