package opt

import (
	"iter"
	"math"
	"time"
)

// blendSteps covers 0.00..1.00 in 0.01 increments per leg.
const blendSteps = 101

// GridPoint is one candidate operating point for a vessel/cargo pair.
type GridPoint struct {
	Quantity float64
	Blend    SpeedBlend
}

func quantityStep(c Cargo) float64 {
	step := 0.01 * c.Quantity
	if step < 1 {
		step = 1
	}
	return step
}

func quantityAxis(c Cargo) []float64 {
	if c.Range == nil {
		return []float64{c.Quantity}
	}
	step := quantityStep(c)
	var qs []float64
	for i := 0; ; i++ {
		q := c.Range.Min + float64(i)*step
		if q > c.Range.Max+1e-6 {
			break
		}
		qs = append(qs, q)
	}
	return qs
}

// QuantitySteps is the number of points on the quantity axis: min to max
// inclusive in steps of max(1% of base quantity, 1), or a single point when
// the cargo has no contractual range.
func QuantitySteps(c Cargo) int {
	return len(quantityAxis(c))
}

// Combinations is the theoretical grid size for one pair, independent of how
// many points actually get evaluated.
func Combinations(c Cargo) int64 {
	return int64(QuantitySteps(c)) * blendSteps * blendSteps
}

// GridPoints lazily enumerates the search grid: quantity outer, ballast
// blend middle, laden blend inner. The order is part of the contract — ties
// on adjusted profit keep the first point found.
func GridPoints(c Cargo) iter.Seq[GridPoint] {
	return func(yield func(GridPoint) bool) {
		for _, q := range quantityAxis(c) {
			for bi := 0; bi < blendSteps; bi++ {
				for li := 0; li < blendSteps; li++ {
					gp := GridPoint{
						Quantity: q,
						Blend: SpeedBlend{
							Ballast: float64(bi) / 100,
							Laden:   float64(li) / 100,
						},
					}
					if !yield(gp) {
						return
					}
				}
			}
		}
	}
}

// SearchBestPair finds the profit-maximizing operating point for one
// vessel/cargo pair. It returns nil with a reason when the pair can never
// produce a result: non-positive freight, a missing laycan window, or a
// laycan missed outright at the natural departure date. The laycan verdict
// is computed once up front at the warranted ballast speed — it depends on
// the departure date, not on the interior grid variables.
func SearchBestPair(v Vessel, c Cargo, d Distances, costs Costs, refDate time.Time) (*PairResult, SkipReason) {
	if !PositiveFreight(c.FreightRate) {
		return nil, SkipFreight
	}
	if c.Laycan == nil {
		return nil, SkipLaycanMissing
	}

	departure := refDate
	if v.OpenDate != nil {
		departure = *v.OpenDate
	}
	lc := EvaluateLaycan(departure, d.BallastNm, v.Warranted.BallastKnots, *c.Laycan)
	if lc.Status == LaycanInfeasible {
		return nil, SkipLaycanMissed
	}
	waitCost := WaitingCost(v, costs, lc.WaitingDays)

	var best *PairResult
	for gp := range GridPoints(c) {
		if !CheckQuantityRange(c.Range, gp.Quantity).OK {
			continue
		}
		if !CheckWeight(gp.Quantity, v.DWT) {
			continue
		}
		cc := c
		cc.Quantity = gp.Quantity
		voyage := ComputeVoyage(v, cc, d, costs, gp.Blend)
		adjusted := voyage.Profit - waitCost
		if math.IsNaN(adjusted) || math.IsInf(adjusted, 0) {
			continue
		}
		if best == nil || adjusted > best.AdjustedProfit {
			best = &PairResult{
				Vessel:         v.Name,
				Cargo:          c.Name,
				Voyage:         voyage,
				Quantity:       gp.Quantity,
				Blend:          gp.Blend,
				Laycan:         lc,
				WaitingCost:    waitCost,
				AdjustedProfit: adjusted,
				Distances:      d,
			}
		}
	}
	if best == nil {
		return nil, SkipNoQuantity
	}
	best.Combinations = Combinations(c)
	return best, SkipNone
}
