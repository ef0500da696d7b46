package seed

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/qapish/qapish/internal/catalog"
	"github.com/qapish/qapish/internal/model"
	"github.com/qapish/qapish/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	file, err := LoadFile("testdata/catalog.yaml")
	require.NoError(t, err)
	require.Len(t, file.Packages, 2)

	ws := file.Packages[0]
	assert.Equal(t, "QP-WS-8060S", ws.SKU)
	require.NotNil(t, ws.Depreciation)
	assert.Equal(t, "linear", ws.Depreciation.Curve)
	assert.Len(t, ws.Provenance, 2)
	assert.Len(t, ws.Images, 2)

	builder := file.Packages[1]
	require.NotNil(t, builder.BuildHours)
	assert.Equal(t, 72, *builder.BuildHours)
	require.NotNil(t, builder.Provenance[1].PriceUSDC)
	assert.Equal(t, uint32(11000), *builder.Provenance[1].PriceUSDC)
}

func TestLoad_Errors(t *testing.T) {
	valid := `
packages:
  - name: Node
    sku: QP-1
    gpu_class: L4
    setup_price_usdc: 1000
`
	_, err := Load(strings.NewReader(valid))
	require.NoError(t, err)

	tests := []struct {
		wantErr error
		name    string
		doc     string
	}{
		{name: "empty document", doc: ``, wantErr: ErrInvalidSeed},
		{name: "no packages", doc: `packages: []`, wantErr: ErrInvalidSeed},
		{name: "missing sku", doc: "packages:\n  - name: Node\n    gpu_class: L4\n", wantErr: ErrInvalidSeed},
		{name: "unknown gpu", doc: "packages:\n  - name: Node\n    sku: A\n    gpu_class: TPU\n", wantErr: model.ErrUnknownVariant},
		{name: "unknown curve", doc: "packages:\n  - name: Node\n    sku: A\n    gpu_class: L4\n    depreciation:\n      curve: sigmoid\n", wantErr: model.ErrUnknownVariant},
		{name: "unknown provenance", doc: "packages:\n  - name: Node\n    sku: A\n    gpu_class: L4\n    provenance:\n      - type: refurbished\n", wantErr: model.ErrUnknownVariant},
		{name: "unknown availability", doc: "packages:\n  - name: Node\n    sku: A\n    gpu_class: L4\n    availability: someday\n", wantErr: model.ErrUnknownVariant},
		{name: "new with hours", doc: "packages:\n  - name: Node\n    sku: A\n    gpu_class: L4\n    provenance:\n      - type: new\n        usage_hours: 5\n", wantErr: ErrInvalidSeed},
		{name: "floor above 100", doc: "packages:\n  - name: Node\n    sku: A\n    gpu_class: L4\n    depreciation:\n      curve: linear\n      final_percentage: 120\n", wantErr: ErrInvalidSeed},
		{name: "duplicate sku", doc: "packages:\n  - name: A\n    sku: A\n    gpu_class: L4\n  - name: B\n    sku: A\n    gpu_class: L4\n", wantErr: ErrInvalidSeed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("unknown field", func(t *testing.T) {
		_, err := Load(strings.NewReader("packages:\n  - name: A\n    sku: A\n    gpu_class: L4\n    colour: red\n"))
		assert.Error(t, err)
	})

	t.Run("negative price", func(t *testing.T) {
		_, err := Load(strings.NewReader("packages:\n  - name: A\n    sku: A\n    gpu_class: L4\n    setup_price_usdc: -5\n"))
		assert.Error(t, err)
	})
}

func TestPackage_EntryDefaults(t *testing.T) {
	inactive := false
	entry := Package{Name: "A", SKU: "A", GPUClass: "L4", Active: &inactive}.Entry()
	assert.Equal(t, "in_stock", entry.Package.AvailabilityType)
	assert.False(t, entry.Package.IsActive)
	assert.False(t, entry.Package.AvailabilityValue.Valid)
	assert.Nil(t, entry.Rule)

	assert.True(t, Package{Name: "B", SKU: "B", GPUClass: "L4"}.Entry().Package.IsActive)
}

func TestApply(t *testing.T) {
	file, err := LoadFile("testdata/catalog.yaml")
	require.NoError(t, err)

	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	calls := 0
	n, err := Apply(ctx, db.Storage, file, func() { calls++ })
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, calls)

	src := catalog.NewPersisted(db.Storage)
	pkgs, err := src.Packages(ctx)
	require.NoError(t, err)
	require.Len(t, pkgs, 2)

	ws := pkgs[0]
	assert.Equal(t, "QP-WS-8060S", ws.SKU)
	require.Len(t, ws.Provenances, 2)
	assert.Equal(t, uint32(1625), ws.Provenances[1].CalculatedPrice)
	assert.Equal(t, "strix-halo-front.jpg", ws.Images[0].Filename)

	builder := pkgs[1]
	assert.Equal(t, model.Availability{Type: model.AvailabilityBuild, BuildHours: 72}, builder.Availability)
	assert.Equal(t, uint32(11000), builder.MinPriceUSDC)
	assert.Equal(t, uint32(14000), builder.MaxPriceUSDC)

	t.Run("reapply updates in place", func(t *testing.T) {
		file.Packages[0].SetupPriceUSDC = 3000
		file.Packages[0].Provenance = file.Packages[0].Provenance[:1]

		_, err := Apply(ctx, db.Storage, file, nil)
		require.NoError(t, err)

		p, err := src.PackageBySKU(ctx, "QP-WS-8060S")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, ws.ID, p.ID)
		assert.Equal(t, uint32(3000), p.SetupPriceUSDC)
		assert.Len(t, p.Provenances, 1)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		n, err := Apply(cctx, db.Storage, file, nil)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, n)
	})
}

func TestExampleCatalog(t *testing.T) {
	f, err := os.Open("../../catalog.example.yaml")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	file, err := Load(f)
	require.NoError(t, err)
	assert.NotEmpty(t, file.Packages)
}
