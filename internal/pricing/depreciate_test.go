package pricing

import (
	"sync"
	"testing"

	"github.com/qapish/qapish/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const threeYears = 26280

var curves = []model.DepreciationCurve{
	model.CurveLinear,
	model.CurveExponential,
	model.CurveStepped,
}

func mustRule(t *testing.T, finalPct float64, fullHours uint32, curve model.DepreciationCurve) Rule {
	t.Helper()
	r, err := NewRule(finalPct, fullHours, curve)
	require.NoError(t, err)
	return r
}

func TestNewRule_Validation(t *testing.T) {
	tests := []struct {
		name      string
		curve     model.DepreciationCurve
		finalPct  float64
		fullHours uint32
		wantErr   bool
	}{
		{name: "linear", finalPct: 25, fullHours: threeYears, curve: model.CurveLinear},
		{name: "zero floor linear", finalPct: 0, fullHours: 100, curve: model.CurveLinear},
		{name: "zero floor stepped", finalPct: 0, fullHours: 100, curve: model.CurveStepped},
		{name: "full floor exponential", finalPct: 100, fullHours: 100, curve: model.CurveExponential},
		{name: "zero hours", finalPct: 25, fullHours: 0, curve: model.CurveLinear, wantErr: true},
		{name: "negative floor", finalPct: -1, fullHours: 100, curve: model.CurveLinear, wantErr: true},
		{name: "floor above 100", finalPct: 100.5, fullHours: 100, curve: model.CurveStepped, wantErr: true},
		{name: "zero floor exponential", finalPct: 0, fullHours: 100, curve: model.CurveExponential, wantErr: true},
		{name: "unknown curve", finalPct: 25, fullHours: 100, curve: "sigmoid", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRule(tt.finalPct, tt.fullHours, tt.curve)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRule)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDepreciate_ZeroRule(t *testing.T) {
	_, err := Depreciate(3000, 100, Rule{})
	assert.ErrorIs(t, err, ErrInvalidRule)
}

func TestDepreciate_Scenarios(t *testing.T) {
	tests := []struct {
		name  string
		curve model.DepreciationCurve
		hours uint32
		want  uint32
	}{
		{name: "linear midpoint", curve: model.CurveLinear, hours: 13140, want: 1875},
		{name: "stepped midpoint", curve: model.CurveStepped, hours: 13140, want: 1875},
		{name: "stepped off-boundary", curve: model.CurveStepped, hours: 10000, want: 2250},
		{name: "linear off-boundary", curve: model.CurveLinear, hours: 10000, want: 2143},
		{name: "exponential midpoint", curve: model.CurveExponential, hours: 13140, want: 1500},
		{name: "linear threshold", curve: model.CurveLinear, hours: threeYears, want: 750},
		{name: "stepped threshold", curve: model.CurveStepped, hours: threeYears, want: 750},
		{name: "exponential threshold", curve: model.CurveExponential, hours: threeYears, want: 750},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := mustRule(t, 25, threeYears, tt.curve)
			got, err := Depreciate(3000, tt.hours, rule)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDepreciate_NewEquipmentKeepsPrice(t *testing.T) {
	for _, curve := range curves {
		rule := mustRule(t, 10, 1000, curve)
		for _, price := range []uint32{0, 1, 999, 3000, 4_294_967_295} {
			got, err := Depreciate(price, 0, rule)
			require.NoError(t, err)
			assert.Equal(t, price, got, "curve %s price %d", curve, price)
		}
	}
}

func TestDepreciate_PinnedBeyondThreshold(t *testing.T) {
	for _, curve := range curves {
		rule := mustRule(t, 33.3, 5000, curve)
		want := uint32(3000 * 333 / 1000)
		for _, hours := range []uint32{5000, 5001, 10_000, 4_294_967_295} {
			got, err := Depreciate(3000, hours, rule)
			require.NoError(t, err)
			assert.Equal(t, want, got, "curve %s hours %d", curve, hours)
		}
	}
}

func TestDepreciate_Monotonic(t *testing.T) {
	floors := []float64{0.5, 10, 25, 50, 99, 100}
	for _, curve := range curves {
		for _, pct := range floors {
			rule := mustRule(t, pct, 1200, curve)
			prev := uint32(12000)
			for hours := uint32(0); hours <= 1300; hours += 7 {
				got, err := Depreciate(12000, hours, rule)
				require.NoError(t, err)
				assert.LessOrEqual(t, got, prev, "curve %s pct %v hours %d", curve, pct, hours)
				prev = got
			}
		}
	}
}

func TestDepreciate_Bounds(t *testing.T) {
	prices := []uint32{0, 1, 7, 1999, 3000, 250_000, 4_294_967_295}
	for _, curve := range curves {
		rule := mustRule(t, 37.5, 800, curve)
		for _, price := range prices {
			floor := uint64(price) * 375 / 1000
			for hours := uint32(0); hours <= 900; hours += 50 {
				got, err := Depreciate(price, hours, rule)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, uint64(got), floor)
				assert.LessOrEqual(t, got, price)
			}
		}
	}
}

func TestDepreciate_SteppedPlateaus(t *testing.T) {
	rule := mustRule(t, 40, 600, model.CurveStepped)

	seen := map[uint32]bool{}
	for hours := uint32(1); hours < 600; hours++ {
		got, err := Depreciate(600, hours, rule)
		require.NoError(t, err)
		seen[got] = true
	}

	// 100, 90, 80, 70, 60, 50 percent of 600.
	assert.Len(t, seen, stepCount)
	for _, p := range []uint32{600, 540, 480, 420, 360, 300} {
		assert.True(t, seen[p], "missing plateau %d", p)
	}
}

func TestDepreciate_ZeroFloorReachesZero(t *testing.T) {
	rule := mustRule(t, 0, 100, model.CurveLinear)

	got, err := Depreciate(3000, 50, rule)
	require.NoError(t, err)
	assert.Equal(t, uint32(1500), got)

	got, err = Depreciate(3000, 100, rule)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), got)
}

func TestDepreciate_Truncates(t *testing.T) {
	// 999 * 62.5% = 624.375
	rule := mustRule(t, 25, 100, model.CurveLinear)
	got, err := Depreciate(999, 50, rule)
	require.NoError(t, err)
	assert.Equal(t, uint32(624), got)
}

func TestDepreciate_Concurrent(t *testing.T) {
	rule := mustRule(t, 25, threeYears, model.CurveLinear)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Depreciate(3000, 13140, rule)
			assert.NoError(t, err)
			assert.Equal(t, uint32(1875), got)
		}()
	}
	wg.Wait()
}

func TestRule_Accessors(t *testing.T) {
	rule := mustRule(t, 25, threeYears, model.CurveStepped)
	assert.Equal(t, model.CurveStepped, rule.Curve())
	assert.InDelta(t, 25.0, rule.FinalPercentage(), 1e-9)
	assert.Equal(t, uint32(threeYears), rule.FullHours())
}
