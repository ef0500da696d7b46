package packages

import (
	"testing"

	"github.com/qapish/qapish/internal/model"
	"github.com/qapish/qapish/internal/storage"
)

// ThreeYears is 24 * 365 * 3 hours.
const ThreeYears = 26280

// SKUs of the Standard fixture.
const (
	SKULinear      = "FX-LIN"
	SKUStepped     = "FX-STP"
	SKUExponential = "FX-EXP"
	SKUOverride    = "FX-OVR"
	SKUInvalidRule = "FX-BAD"
	SKUBare        = "FX-BARE"
)

// Standard returns one package per pricing case. All have a setup price of
// 2500 USDC and a three year horizon with a 30% floor unless noted.
func Standard(t *testing.T) []storage.CatalogEntry {
	t.Helper()
	return []storage.CatalogEntry{
		New(t, "Linear Node", SKULinear).
			WithRule(model.CurveLinear, 30, ThreeYears).
			WithNew(3).WithUsed(13140, 1).WithUsed(ThreeYears, 1).
			WithImage("linear.jpg", "Linear").
			Entry(),
		New(t, "Stepped Node", SKUStepped).WithSetupPrice(2600).
			WithRule(model.CurveStepped, 30, ThreeYears).
			WithUsed(13140, 2).
			Entry(),
		New(t, "Exponential Node", SKUExponential).WithSetupPrice(2700).
			WithRule(model.CurveExponential, 30, ThreeYears).
			WithUsed(13140, 1).
			Entry(),
		// 40% floor; the override must win over the 1960 depreciation would give.
		New(t, "Override Node", SKUOverride).WithSetupPrice(2800).
			WithRule(model.CurveLinear, 40, ThreeYears).
			WithOverride(13140, 1, 1999).WithNew(1).
			Entry(),
		// Exponential with a zero floor is refused by the pricing engine.
		New(t, "Invalid Rule Node", SKUInvalidRule).WithSetupPrice(2900).
			WithRule(model.CurveExponential, 0, ThreeYears).
			WithUsed(13140, 1).
			Entry(),
		New(t, "Bare Node", SKUBare).WithSetupPrice(3000).
			Entry(),
	}
}
