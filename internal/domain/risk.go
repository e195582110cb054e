package domain

import "fmt"

// RiskLevel represents how risky a mission is to execute.
// This is a value object that enforces valid risk values.
type RiskLevel string

// Valid risk levels
const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "med"
	RiskHigh   RiskLevel = "high"
)

// NewRiskLevel creates a new RiskLevel value object with validation
func NewRiskLevel(value string) (RiskLevel, error) {
	r := RiskLevel(value)
	if err := r.Validate(); err != nil {
		return "", err
	}
	return r, nil
}

// Validate checks if the risk level is valid
func (r RiskLevel) Validate() error {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return nil
	default:
		return fmt.Errorf("invalid risk level %q: must be low, med, or high", string(r))
	}
}

// String returns the string representation
func (r RiskLevel) String() string {
	return string(r)
}

// IsHigherThan checks if this risk level is higher than another
func (r RiskLevel) IsHigherThan(other RiskLevel) bool {
	return riskRank(r) > riskRank(other)
}

// riskRank returns the numeric rank of a risk level (higher = riskier)
func riskRank(r RiskLevel) int {
	switch r {
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	case RiskLow:
		return 1
	default:
		return 0
	}
}
