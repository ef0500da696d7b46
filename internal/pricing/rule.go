// Package pricing computes depreciated prices for used equipment and the
// price ranges shown for a package. All functions are pure and safe for
// concurrent use.
package pricing

import (
	"errors"
	"fmt"
	"math"

	"github.com/qapish/qapish/internal/model"
	"github.com/shopspring/decimal"
)

// ErrInvalidRule is returned for rules that cannot produce a meaningful price.
var ErrInvalidRule = errors.New("invalid depreciation rule")

var (
	hundred = decimal.NewFromInt(100)
	zero    = decimal.Zero
)

// Rule is a validated depreciation rule. The zero Rule is invalid.
type Rule struct {
	curve     model.DepreciationCurve
	finalPct  decimal.Decimal
	fullHours uint32
}

// NewRule validates a floor percentage, full-depreciation hours and curve.
// An exponential curve cannot decay to a zero floor, so that combination
// is rejected.
func NewRule(finalPct float64, fullHours uint32, curve model.DepreciationCurve) (Rule, error) {
	if fullHours == 0 {
		return Rule{}, fmt.Errorf("%w: full depreciation hours must be positive", ErrInvalidRule)
	}
	if math.IsNaN(finalPct) || finalPct < 0 || finalPct > 100 {
		return Rule{}, fmt.Errorf("%w: final percentage %v outside [0,100]", ErrInvalidRule, finalPct)
	}
	if _, err := model.ParseDepreciationCurve(string(curve)); err != nil {
		return Rule{}, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	if curve == model.CurveExponential && finalPct == 0 {
		return Rule{}, fmt.Errorf("%w: exponential curve needs a floor above zero", ErrInvalidRule)
	}

	return Rule{
		curve:     curve,
		finalPct:  decimal.NewFromFloat(finalPct),
		fullHours: fullHours,
	}, nil
}

// RuleFrom validates a catalog rule.
func RuleFrom(r model.DepreciationRule) (Rule, error) {
	return NewRule(r.FinalDepreciatedPercentage, r.FullDepreciationHours, r.DepreciationCurve)
}

// Curve returns the rule's curve.
func (r Rule) Curve() model.DepreciationCurve {
	return r.curve
}

// FinalPercentage returns the floor percentage.
func (r Rule) FinalPercentage() float64 {
	return r.finalPct.InexactFloat64()
}

// FullHours returns the usage at which the floor is reached.
func (r Rule) FullHours() uint32 {
	return r.fullHours
}

func (r Rule) valid() bool {
	return r.fullHours > 0 && r.curve != ""
}
