package opt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetnav/internal/opt"
)

// TestCombinations_NoRange: a cargo without a contractual band has exactly
// one quantity point, so the space is 101x101.
func TestCombinations_NoRange(t *testing.T) {
	c := soyCargo()
	c.Range = nil
	assert.Equal(t, 1, opt.QuantitySteps(c))
	assert.Equal(t, int64(101*101), opt.Combinations(c))
}

// TestCombinations_WithRange: +-5% around 150000 with a 1500 MT step is 11
// quantity points inclusive of both ends.
func TestCombinations_WithRange(t *testing.T) {
	c := soyCargo()
	assert.Equal(t, 11, opt.QuantitySteps(c))
	assert.Equal(t, int64(11*101*101), opt.Combinations(c))
}

// TestGridPoints_OrderAndBounds spot-checks the enumeration order (quantity
// outer, ballast middle, laden inner) and the blend bounds.
func TestGridPoints_OrderAndBounds(t *testing.T) {
	c := soyCargo()
	c.Range = nil

	var points []opt.GridPoint
	for gp := range opt.GridPoints(c) {
		points = append(points, gp)
		if len(points) == 103 {
			break
		}
	}
	require.Len(t, points, 103)
	assert.Equal(t, opt.SpeedBlend{Ballast: 0, Laden: 0}, points[0].Blend)
	assert.Equal(t, opt.SpeedBlend{Ballast: 0, Laden: 0.01}, points[1].Blend)
	// After 101 laden steps the ballast blend advances.
	assert.Equal(t, opt.SpeedBlend{Ballast: 0.01, Laden: 0}, points[101].Blend)
	for _, gp := range points {
		assert.Equal(t, c.Quantity, gp.Quantity)
	}
}

// TestSearchBestPair_SkipReasons covers the upfront short circuits: freight,
// missing laycan data, and a laycan missed at the natural departure. Missing
// data and a timing miss must surface as different reasons.
func TestSearchBestPair_SkipReasons(t *testing.T) {
	v := capesizeVessel()
	costs := opt.DefaultCosts()
	d := fullDistances()

	c := soyCargo()
	c.FreightRate = 0
	pr, reason := opt.SearchBestPair(v, c, d, costs, refDate)
	assert.Nil(t, pr)
	assert.Equal(t, opt.SkipFreight, reason)

	c = soyCargo()
	c.Laycan = nil
	pr, reason = opt.SearchBestPair(v, c, d, costs, refDate)
	assert.Nil(t, pr)
	assert.Equal(t, opt.SkipLaycanMissing, reason)

	c = soyCargo()
	c.Laycan = &opt.Laycan{Start: refDate.AddDate(0, 0, -20), End: refDate.AddDate(0, 0, -10)}
	pr, reason = opt.SearchBestPair(v, c, d, costs, refDate)
	assert.Nil(t, pr)
	assert.Equal(t, opt.SkipLaycanMissed, reason)
}

// TestSearchBestPair_NoFeasibleQuantity: every grid point fails the weight
// filter when the whole contractual band exceeds deadweight.
func TestSearchBestPair_NoFeasibleQuantity(t *testing.T) {
	v := capesizeVessel()
	v.DWT = 100000
	c := soyCargo()

	pr, reason := opt.SearchBestPair(v, c, fullDistances(), opt.DefaultCosts(), refDate)
	assert.Nil(t, pr)
	assert.Equal(t, opt.SkipNoQuantity, reason)
}

// TestSearchBestPair_TieKeepsFirst: with identical eco and warranted
// profiles the profit surface is flat across all blends, so the winner must
// be the first enumerated point, blend 0/0.
func TestSearchBestPair_TieKeepsFirst(t *testing.T) {
	v := flatVessel()
	c := soyCargo()
	c.Range = nil

	pr, reason := opt.SearchBestPair(v, c, fullDistances(), opt.DefaultCosts(), refDate)
	require.Equal(t, opt.SkipNone, reason)
	require.NotNil(t, pr)
	assert.Equal(t, opt.SpeedBlend{Ballast: 0, Laden: 0}, pr.Blend)
	assert.Equal(t, int64(101*101), pr.Combinations)
}

// TestSearchBestPair_WaitingAdjustment: an early arrival subtracts waiting
// cost from every grid point's profit.
func TestSearchBestPair_WaitingAdjustment(t *testing.T) {
	v := flatVessel()
	c := soyCargo()
	c.Range = nil
	// Window opens 5 days after the immediate ETA (ballast distance 0).
	c.Laycan = &opt.Laycan{Start: refDate.AddDate(0, 0, 5), End: refDate.AddDate(0, 0, 12)}
	costs := opt.DefaultCosts()

	pr, reason := opt.SearchBestPair(v, c, fullDistances(), costs, refDate)
	require.Equal(t, opt.SkipNone, reason)
	require.NotNil(t, pr)

	assert.Equal(t, opt.LaycanEarly, pr.Laycan.Status)
	assert.InDelta(t, 5.0, pr.Laycan.WaitingDays, 1e-9)
	wantWait := opt.WaitingCost(v, costs, 5)
	assert.InDelta(t, wantWait, pr.WaitingCost, 1e-6)
	assert.InDelta(t, pr.Voyage.Profit-wantWait, pr.AdjustedProfit, 1e-6)
}

// TestSearchBestPair_Idempotent: identical inputs give identical results,
// byte for byte.
func TestSearchBestPair_Idempotent(t *testing.T) {
	v := capesizeVessel()
	c := soyCargo()
	costs := opt.DefaultCosts()

	first, r1 := opt.SearchBestPair(v, c, fullDistances(), costs, refDate)
	second, r2 := opt.SearchBestPair(v, c, fullDistances(), costs, refDate)
	require.Equal(t, r1, r2)
	require.NotNil(t, first)
	assert.Equal(t, *first, *second)
}

// TestSearchBestPair_PrefersFasterWhenWorthIt: with the fixture economics a
// faster laden leg saves far more hire than the extra bunker spend, so the
// search should land above the warranted laden point.
func TestSearchBestPair_PrefersFasterWhenWorthIt(t *testing.T) {
	v := capesizeVessel()
	c := soyCargo()

	pr, reason := opt.SearchBestPair(v, c, fullDistances(), opt.DefaultCosts(), refDate)
	require.Equal(t, opt.SkipNone, reason)
	require.NotNil(t, pr)

	warranted := opt.ComputeVoyage(v, c, fullDistances(), opt.DefaultCosts(), opt.SpeedBlend{})
	assert.GreaterOrEqual(t, pr.AdjustedProfit, warranted.Profit,
		"best point can never be worse than the warranted baseline")
}
