package pricing

import "github.com/qapish/qapish/internal/model"

// PriceRange returns the lowest and highest CalculatedPrice across options,
// or the fallback twice when there are none. Prices are taken as given;
// depreciation has already been applied upstream.
func PriceRange(options []model.ProvenanceOption, fallback uint32) (minPrice, maxPrice uint32) {
	if len(options) == 0 {
		return fallback, fallback
	}

	minPrice = options[0].CalculatedPrice
	for _, o := range options[1:] {
		if o.CalculatedPrice < minPrice {
			minPrice = o.CalculatedPrice
		}
	}

	maxPrice = options[0].CalculatedPrice
	for _, o := range options[1:] {
		if o.CalculatedPrice > maxPrice {
			maxPrice = o.CalculatedPrice
		}
	}

	return minPrice, maxPrice
}
