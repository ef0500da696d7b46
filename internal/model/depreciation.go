package model

import (
	"encoding/json"

	"github.com/google/uuid"
)

// DepreciationCurve is the shape of the price decline against usage.
type DepreciationCurve string

const (
	// CurveLinear declines at a constant rate.
	CurveLinear DepreciationCurve = "linear"
	// CurveExponential decays towards the floor.
	CurveExponential DepreciationCurve = "exponential"
	// CurveStepped declines in six equal plateaus.
	CurveStepped DepreciationCurve = "stepped"
)

// ParseDepreciationCurve maps stored text to a curve.
func ParseDepreciationCurve(s string) (DepreciationCurve, error) {
	switch DepreciationCurve(s) {
	case CurveLinear, CurveExponential, CurveStepped:
		return DepreciationCurve(s), nil
	default:
		return "", unknownVariant("depreciation curve", s)
	}
}

// String returns the storage representation.
func (c DepreciationCurve) String() string {
	return string(c)
}

// UnmarshalJSON rejects unknown curves.
func (c *DepreciationCurve) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDepreciationCurve(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// DepreciationRule describes how a package's price declines with usage hours.
// FinalDepreciatedPercentage is the floor, as a percent of the original price,
// reached once usage meets FullDepreciationHours.
type DepreciationRule struct {
	DepreciationCurve          DepreciationCurve `json:"depreciation_curve"`
	FinalDepreciatedPercentage float64           `json:"final_depreciated_percentage"`
	PackageID                  uuid.UUID         `json:"package_id"`
	FullDepreciationHours      uint32            `json:"full_depreciation_hours"`
}
