package opt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fleetnav/internal/opt"
)

func fullDistances() opt.Distances {
	return opt.Distances{BallastNm: 0, BallastExact: true, LadenNm: 11000, LadenExact: true}
}

// TestComputeVoyage_Durations checks the duration arithmetic at the
// warranted operating point.
func TestComputeVoyage_Durations(t *testing.T) {
	v := capesizeVessel()
	c := soyCargo()
	costs := opt.DefaultCosts()

	res := opt.ComputeVoyage(v, c, fullDistances(), costs, opt.SpeedBlend{})

	assert.Zero(t, res.BallastDays, "open at the load port")
	assert.InDelta(t, 11000.0/12/24, res.LadenDays, 1e-9)
	// 150000/30000 + 1 turn + 2 idle allowance.
	assert.InDelta(t, 8.0, res.LoadDays, 1e-9)
	// 150000/25000 + 1 turn, no idle at discharge.
	assert.InDelta(t, 7.0, res.DischargeDays, 1e-9)
	wantTotal := res.BallastDays + res.LadenDays + costs.BunkerDays + res.LoadDays + res.DischargeDays
	assert.InDelta(t, wantTotal, res.TotalDays, 1e-9)
}

// TestComputeVoyage_ZeroSpeedGuard verifies degenerate speeds yield zero
// transit days rather than a fault.
func TestComputeVoyage_ZeroSpeedGuard(t *testing.T) {
	v := capesizeVessel()
	v.Warranted.LadenKnots = 0
	v.Eco.LadenKnots = 0
	res := opt.ComputeVoyage(v, soyCargo(), fullDistances(), opt.DefaultCosts(), opt.SpeedBlend{})
	assert.Zero(t, res.LadenDays)
	assert.False(t, res.TotalDays != res.TotalDays, "total days must not be NaN")
}

// TestComputeVoyage_LoadedQuantityCaps checks the contractual, volumetric
// and deadweight caps compose with min semantics.
func TestComputeVoyage_LoadedQuantityCaps(t *testing.T) {
	v := capesizeVessel()
	c := soyCargo()
	costs := opt.DefaultCosts()

	// Deadweight binds.
	c.Quantity = 200000
	res := opt.ComputeVoyage(v, c, fullDistances(), costs, opt.SpeedBlend{})
	assert.InDelta(t, v.DWT, res.LoadedQuantity, 1e-9)

	// Volumetric cap binds tighter than deadweight.
	v.GrainCuft = 2400000
	c.StowFactor = 48
	res = opt.ComputeVoyage(v, c, fullDistances(), costs, opt.SpeedBlend{})
	assert.InDelta(t, 50000, res.LoadedQuantity, 1e-9)
}

// TestComputeVoyage_Economics verifies the revenue and expense identities on
// the warranted point.
func TestComputeVoyage_Economics(t *testing.T) {
	v := capesizeVessel()
	c := soyCargo()
	costs := opt.DefaultCosts()

	res := opt.ComputeVoyage(v, c, fullDistances(), costs, opt.SpeedBlend{})

	assert.InDelta(t, 150000*22, res.FreightGross, 1e-6)
	assert.InDelta(t, res.FreightGross*(1-0.05), res.FreightNet, 1e-6)
	assert.InDelta(t, res.FreightNet+c.BallastBonus, res.RevenueNet, 1e-6)
	assert.InDelta(t, v.DailyHire*res.TotalDays*(1-v.AddressCommission), res.HireNet, 1e-6)
	assert.InDelta(t, res.IFOBurn*costs.IFOPrice+res.MDOBurn*costs.MDOPrice, res.BunkerExpense, 1e-6)
	assert.InDelta(t, c.LoadPortCost+c.DischargePortCost, res.PortDisbursements, 1e-6)

	wantProfit := res.RevenueNet - (res.HireNet + res.BunkerExpense +
		res.PortDisbursements + res.OperatingExpense + res.MiscExpense)
	assert.InDelta(t, wantProfit, res.Profit, 1e-6)
	assert.InDelta(t, res.Profit/res.TotalDays, res.TCE, 1e-6)
	assert.Greater(t, res.Profit, 0.0, "fixture voyage should be profitable")
}

// TestComputeVoyage_TCEGuard: a fully degenerate voyage has zero duration
// and therefore zero TCE, not a division fault.
func TestComputeVoyage_TCEGuard(t *testing.T) {
	var v opt.Vessel
	var c opt.Cargo
	costs := opt.Costs{}
	res := opt.ComputeVoyage(v, c, opt.Distances{}, costs, opt.SpeedBlend{})
	assert.Zero(t, res.TotalDays)
	assert.Zero(t, res.TCE)
}
