package pricing

import "github.com/qapish/qapish/internal/model"

// Result is the outcome of pricing one unit against an optional rule.
// Depreciated is false when no rule applies or the rule is invalid; Price
// is then the original price and Err says why the rule was refused.
type Result struct {
	Err         error
	Price       uint32
	Depreciated bool
}

// Quote prices one unit. A nil rule means no depreciation applies.
func Quote(originalPrice, usageHours uint32, rule *model.DepreciationRule) Result {
	if rule == nil {
		return Result{Price: originalPrice}
	}

	r, err := RuleFrom(*rule)
	if err != nil {
		return Result{Price: originalPrice, Err: err}
	}

	price, err := Depreciate(originalPrice, usageHours, r)
	if err != nil {
		return Result{Price: originalPrice, Err: err}
	}

	return Result{Price: price, Depreciated: true}
}
