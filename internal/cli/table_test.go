package cli

import (
	"bytes"
	"testing"

	"github.com/qapish/qapish/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestFormatUSDC(t *testing.T) {
	tests := []struct {
		want   string
		amount uint32
	}{
		{amount: 0, want: "0 USDC"},
		{amount: 750, want: "750 USDC"},
		{amount: 2500, want: "2,500 USDC"},
		{amount: 250000, want: "250,000 USDC"},
		{amount: 4294967295, want: "4,294,967,295 USDC"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatUSDC(tt.amount))
	}
}

func TestFormatRange(t *testing.T) {
	assert.Equal(t, "1,000 USDC", FormatRange(1000, 1000))
	assert.Equal(t, "750 USDC – 2,500 USDC", FormatRange(750, 2500))
}

func TestFormatAvailability(t *testing.T) {
	assert.Equal(t, "in stock", FormatAvailability(model.Availability{Type: model.AvailabilityInStock}))
	assert.Equal(t, "preorder", FormatAvailability(model.Availability{Type: model.AvailabilityPreorder}))
	assert.Equal(t, "built in 48h", FormatAvailability(model.Availability{Type: model.AvailabilityBuild, BuildHours: 48}))
}

func TestPackagesTable(t *testing.T) {
	out := PackagesTable([]model.Package{
		{
			SKU:            "QP-INF-4090",
			Name:           "Inference Node",
			GPUClass:       model.GPURTX4090,
			GPUCount:       2,
			SetupPriceUSDC: 6000,
			MinPriceUSDC:   3900,
			MaxPriceUSDC:   6000,
			Availability:   model.Availability{Type: model.AvailabilityInStock},
		},
	})

	assert.Contains(t, out, "SKU")
	assert.Contains(t, out, "QP-INF-4090")
	assert.Contains(t, out, "2x RTX_4090")
	assert.Contains(t, out, "3,900 USDC – 6,000 USDC")
}

func TestFormatMessages(t *testing.T) {
	assert.Contains(t, FormatSuccess("seeded"), "seeded")
	assert.Contains(t, FormatError("failed"), "failed")
	assert.Contains(t, FormatWarning("careful"), "careful")
	assert.Contains(t, FormatInfo("note"), "note")
	assert.Contains(t, FormatTitle("Catalog"), "Catalog")
	assert.Contains(t, RenderBox("Quote", "1,625 USDC"), "1,625 USDC")
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgress(&buf, 2, "Seeding packages...")
	Step(bar)
	Step(bar)
	Step(nil)

	assert.True(t, bar.IsFinished())
	assert.Contains(t, buf.String(), "2/2")
}
