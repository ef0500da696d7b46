package pricing

import (
	"math"

	"github.com/qapish/qapish/internal/model"
	"github.com/shopspring/decimal"
)

// stepCount is the number of plateaus on the stepped curve.
const stepCount = 6

// exponentialSnap absorbs float error on exponential factors that land on a
// whole price, e.g. exp(-ln 2) evaluating to 0.49999999999999994.
const exponentialSnap = 1e-9

// Depreciate returns the price of equipment with usageHours on it.
//
// New equipment (zero hours) keeps its original price. From the rule's
// full-depreciation hours onwards the price is pinned at the floor,
// originalPrice * finalPct / 100. In between, the rule's curve gives the
// percentage of the original price retained.
//
// Every path truncates to whole currency units; fractions are dropped,
// never rounded up.
func Depreciate(originalPrice, usageHours uint32, rule Rule) (uint32, error) {
	if !rule.valid() {
		return 0, ErrInvalidRule
	}
	if usageHours == 0 {
		return originalPrice, nil
	}

	original := decimal.NewFromInt(int64(originalPrice))
	floor := truncate(original.Mul(rule.finalPct), hundred)
	if usageHours >= rule.fullHours {
		return toPrice(floor), nil
	}

	var price decimal.Decimal
	switch rule.curve {
	case model.CurveLinear:
		price = linear(original, usageHours, rule)
	case model.CurveStepped:
		price = stepped(original, usageHours, rule)
	case model.CurveExponential:
		price = exponential(originalPrice, usageHours, rule)
	default:
		return 0, ErrInvalidRule
	}

	return toPrice(clamp(price, floor, original)), nil
}

// linear computes original * (100 - (100-pct) * usage/full) / 100 as a
// single exact division.
func linear(original decimal.Decimal, usage uint32, rule Rule) decimal.Decimal {
	full := decimal.NewFromInt(int64(rule.fullHours))
	drop := hundred.Sub(rule.finalPct).Mul(decimal.NewFromInt(int64(usage)))
	retained := hundred.Mul(full).Sub(drop)
	return truncate(original.Mul(retained), hundred.Mul(full))
}

// stepped quantizes usage into stepCount equal-width steps across
// [0, full) and drops (100-pct)/stepCount percent per step.
func stepped(original decimal.Decimal, usage uint32, rule Rule) decimal.Decimal {
	step := uint64(usage) * stepCount / uint64(rule.fullHours)
	if step > stepCount-1 {
		step = stepCount - 1
	}
	steps := decimal.NewFromInt(stepCount)
	drop := hundred.Sub(rule.finalPct).Mul(decimal.NewFromInt(int64(step)))
	retained := hundred.Mul(steps).Sub(drop)
	return truncate(original.Mul(retained), hundred.Mul(steps))
}

// exponential decays with k = -ln(pct/100), so the factor reaches pct
// exactly at full usage.
func exponential(originalPrice, usage uint32, rule Rule) decimal.Decimal {
	ratio := float64(usage) / float64(rule.fullHours)
	k := -math.Log(rule.finalPct.InexactFloat64() / 100)
	price := float64(originalPrice) * math.Exp(-k*ratio)
	return decimal.NewFromFloat(math.Floor(price + exponentialSnap))
}

// truncate divides and drops the fractional part. Operands are never negative.
func truncate(num, den decimal.Decimal) decimal.Decimal {
	q, _ := num.QuoRem(den, 0)
	return q
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}

func toPrice(d decimal.Decimal) uint32 {
	if d.LessThan(zero) {
		return 0
	}
	return uint32(d.IntPart())
}
