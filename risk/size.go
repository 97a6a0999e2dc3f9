package risk

import "math"

// DefaultFallbackUnits is used when a signal arrives with a degenerate stop
// distance. The copy-pasted systems this replaces disagreed on the value
// (10000 vs 20000); it is a config input here, with this default.
const DefaultFallbackUnits = 10000

// Sizer converts account balance and stop distance into an order size.
type Sizer struct {
	RiskFraction  float64 // fraction of balance put at risk, (0, 1]
	FallbackUnits int     // used when stop distance is not positive
}

func NewSizer(riskFraction float64, fallbackUnits int) Sizer {
	if fallbackUnits <= 0 {
		fallbackUnits = DefaultFallbackUnits
	}
	return Sizer{RiskFraction: riskFraction, FallbackUnits: fallbackUnits}
}

// Units returns floor(balance * riskFraction / stopDistance). Only a
// degenerate stop distance (zero, negative, or non-finite) falls back to
// FallbackUnits. A stop wider than the risk budget floors to zero; the
// pre-trade gate skips those rather than inflating them to the fallback size.
func (s Sizer) Units(balance, stopDistance float64) int {
	if stopDistance <= 0 || math.IsNaN(stopDistance) || math.IsInf(stopDistance, 0) {
		return s.FallbackUnits
	}
	return int(math.Floor(balance * s.RiskFraction / stopDistance))
}

// RiskAmount returns the account-currency amount at risk for a balance.
func (s Sizer) RiskAmount(balance float64) float64 {
	return balance * s.RiskFraction
}
