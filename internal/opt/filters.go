package opt

import "math"

// QuantityCheck reports a quantity-range verdict with the over/under amount
// for diagnostics.
type QuantityCheck struct {
	OK       bool
	Underage float64
	Overage  float64
}

// CheckQuantityRange verifies a quantity against the optional contractual
// band. An absent band always passes.
func CheckQuantityRange(r *QuantityRange, qty float64) QuantityCheck {
	if r == nil {
		return QuantityCheck{OK: true}
	}
	c := QuantityCheck{OK: qty >= r.Min && qty <= r.Max}
	if qty < r.Min {
		c.Underage = r.Min - qty
	}
	if qty > r.Max {
		c.Overage = qty - r.Max
	}
	return c
}

// CheckWeight verifies that the cargo quantity fits the vessel deadweight.
// Non-finite or non-positive inputs are always infeasible.
func CheckWeight(qty, dwt float64) bool {
	if !isFinite(qty) || !isFinite(dwt) {
		return false
	}
	return dwt > 0 && qty > 0 && qty <= dwt
}

// PositiveFreight reports whether a freight rate can ever yield revenue.
// Checked once per cargo: it does not depend on quantity or speed.
func PositiveFreight(rate float64) bool {
	return isFinite(rate) && rate > 0
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
