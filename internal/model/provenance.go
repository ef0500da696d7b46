package model

import "encoding/json"

// ProvenanceType is the condition of a unit offered for sale.
type ProvenanceType string

const (
	// ProvenanceNew is a unit with no usage.
	ProvenanceNew ProvenanceType = "new"
	// ProvenanceUsed is a unit with accumulated usage hours.
	ProvenanceUsed ProvenanceType = "used"
)

// ParseProvenanceType maps stored text to a provenance type.
func ParseProvenanceType(s string) (ProvenanceType, error) {
	switch ProvenanceType(s) {
	case ProvenanceNew, ProvenanceUsed:
		return ProvenanceType(s), nil
	default:
		return "", unknownVariant("provenance type", s)
	}
}

// String returns the storage representation.
func (p ProvenanceType) String() string {
	return string(p)
}

// UnmarshalJSON rejects unknown provenance types.
func (p *ProvenanceType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseProvenanceType(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ProvenanceOption is one purchasable condition or batch of a package.
// UsageHours is always zero for new units. CalculatedPrice is final: either a
// stored override or the depreciated setup price.
type ProvenanceOption struct {
	DiscountPercentage *float64       `json:"discount_percentage,omitempty"`
	ProvenanceType     ProvenanceType `json:"provenance_type"`
	UsageHours         uint32         `json:"usage_hours"`
	QuantityAvailable  uint32         `json:"quantity_available"`
	CalculatedPrice    uint32         `json:"calculated_price"`
	PriceOverridden    bool           `json:"price_overridden"`
}

// IsUsed reports whether the option carries usage hours subject to depreciation.
func (o ProvenanceOption) IsUsed() bool {
	return o.ProvenanceType == ProvenanceUsed
}
