package matching

import (
	"github.com/shopspring/decimal"
)

// Valid ranges for the tolerance settings.
const (
	MinDateToleranceDays = 0
	MaxDateToleranceDays = 7
	MinSimilarity        = 0.5
	MaxSimilarity        = 1.0
)

var (
	minValueTolerance = decimal.Zero
	maxValueTolerance = decimal.NewFromInt(1)
)

// ToleranceConfig controls the automatic pass of one run. It is passed by
// value and never shared.
type ToleranceConfig struct {
	DateToleranceDays   int             `json:"date_tolerance_days" yaml:"date_tolerance_days"`
	ValueTolerance      decimal.Decimal `json:"value_tolerance" yaml:"value_tolerance"`
	SimilarityThreshold float64         `json:"similarity_threshold" yaml:"similarity_threshold"`
}

// DefaultToleranceConfig returns 1 day, 0.02 currency units and 0.70
// similarity.
func DefaultToleranceConfig() ToleranceConfig {
	return ToleranceConfig{
		DateToleranceDays:   1,
		ValueTolerance:      decimal.RequireFromString("0.02"),
		SimilarityThreshold: 0.70,
	}
}

// Validate checks every field against its documented range.
func (c ToleranceConfig) Validate() error {
	if c.DateToleranceDays < MinDateToleranceDays || c.DateToleranceDays > MaxDateToleranceDays {
		return &ValidationError{Field: "date_tolerance_days", Reason: "must be between 0 and 7"}
	}
	if c.ValueTolerance.LessThan(minValueTolerance) || c.ValueTolerance.GreaterThan(maxValueTolerance) {
		return &ValidationError{Field: "value_tolerance", Reason: "must be between 0 and 1"}
	}
	if c.SimilarityThreshold < MinSimilarity || c.SimilarityThreshold > MaxSimilarity {
		return &ValidationError{Field: "similarity_threshold", Reason: "must be between 0.5 and 1.0"}
	}
	return nil
}
