package model

// RiskTier is the coarse classification derived from a tool's declared
// behavioural hints.
type RiskTier string

const (
	RiskLow    RiskTier = "LOW"
	RiskMedium RiskTier = "MEDIUM"
	RiskHigh   RiskTier = "HIGH"
)

// IsValid reports whether the tier is one of the known classifications.
// Policy evaluation treats anything else as HIGH.
func (t RiskTier) IsValid() bool {
	switch t {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}
