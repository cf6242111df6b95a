// Package opt implements the voyage-economics and fleet-assignment core:
// per-pair parametric search over cargo quantity and speed blend, and an
// exact Hungarian solver that pairs vessels with cargo contracts for
// maximum fleet profit.
package opt

import "time"

// SpeedProfile holds a vessel's speed and daily fuel consumption for the
// ballast and laden leg types. Consumption is split by fuel grade: IFO
// (heavy fuel) and MDO (marine diesel), both in MT/day.
type SpeedProfile struct {
	BallastKnots float64
	LadenKnots   float64
	BallastIFO   float64
	BallastMDO   float64
	LadenIFO     float64
	LadenMDO     float64
}

// Vessel is one fleet unit as supplied by the dataset loader. Immutable for
// the duration of an optimization run.
type Vessel struct {
	Name     string
	OpenPort string
	// OpenDate is the earliest departure date. Nil means the caller's
	// reference date applies.
	OpenDate *time.Time
	// DWT is the deadweight in MT; the hard cargo weight limit.
	DWT float64
	// GrainCuft is the grain capacity in cubic feet. Zero disables the
	// volumetric cap.
	GrainCuft float64

	Eco       SpeedProfile
	Warranted SpeedProfile

	// Port consumption in MT/day while working cargo vs. sitting idle.
	PortWorkIFO float64
	PortWorkMDO float64
	PortIdleIFO float64
	PortIdleMDO float64

	DailyHire float64
	// AddressCommission is the fraction of hire retained by the charterer.
	AddressCommission float64
}

// Laycan is the contractual load-port arrival window.
type Laycan struct {
	Start time.Time
	End   time.Time
}

// QuantityRange is the contractual [min,max] band around a cargo quantity.
type QuantityRange struct {
	Min float64
	Max float64
}

// Cargo is one cargo contract as supplied by the dataset loader.
type Cargo struct {
	Name     string
	Quantity float64
	// Range is the optional contractual quantity band. Nil means the base
	// quantity is fixed.
	Range *QuantityRange

	LoadPort      string
	DischargePort string

	// FreightRate in USD/MT of loaded cargo.
	FreightRate float64
	// Commissions are the brokerage splits as fractions of gross freight.
	Commissions []float64
	// StowFactor in cuft/MT. Zero disables the volumetric cap.
	StowFactor float64
	// BallastBonus is a flat incentive payment added to net revenue.
	BallastBonus float64

	// Handling rates in MT/day and fixed turn times in days.
	LoadRate          float64
	DischargeRate     float64
	LoadTurnDays      float64
	DischargeTurnDays float64
	// PortIdleDays is the contractual idle allowance at the load port.
	PortIdleDays float64

	// Laycan is nil when the source data had no parseable window; such a
	// cargo is excluded from the search rather than treated as infeasible.
	Laycan *Laycan

	LoadPortCost      float64
	DischargePortCost float64
}

// CommissionTotal sums the brokerage splits.
func (c Cargo) CommissionTotal() float64 {
	total := 0.0
	for _, f := range c.Commissions {
		total += f
	}
	return total
}

// SpeedBlend positions each leg between the warranted profile (0.0) and the
// economical profile (1.0).
type SpeedBlend struct {
	Ballast float64
	Laden   float64
}

// Distances carries the two leg distances for a vessel/cargo pair, each
// tagged with its provenance: an exact table entry or the fallback default.
type Distances struct {
	BallastNm    float64
	BallastExact bool
	LadenNm      float64
	LadenExact   bool
}

// Costs are the bunker prices and fixed voyage overheads shared by every
// evaluation in one optimization run.
type Costs struct {
	// Bunker prices in USD/MT.
	IFOPrice float64
	MDOPrice float64
	// BunkerDays is a fixed operational buffer added to every voyage
	// duration.
	BunkerDays float64
	// Fixed overhead bundle: victualling/communications, idle and lube
	// allowance, bunker delivery fee. MiscExpense is a flat catch-all.
	Victualling       float64
	IdleLube          float64
	BunkerDeliveryFee float64
	MiscExpense       float64
}

// DefaultCosts returns the standing cost assumptions used when a run does
// not override them.
func DefaultCosts() Costs {
	return Costs{
		IFOPrice:          480,
		MDOPrice:          650,
		BunkerDays:        5,
		Victualling:       1500,
		IdleLube:          1000,
		BunkerDeliveryFee: 500,
		MiscExpense:       5000,
	}
}

// VoyageResult is the full P&L breakdown for one vessel/cargo evaluation at
// a fixed quantity and speed blend.
type VoyageResult struct {
	BallastDays    float64
	LadenDays      float64
	LoadDays       float64
	DischargeDays  float64
	TotalDays      float64
	LoadedQuantity float64

	IFOBurn float64
	MDOBurn float64

	FreightGross float64
	FreightNet   float64
	RevenueNet   float64

	HireNet           float64
	BunkerExpense     float64
	PortDisbursements float64
	OperatingExpense  float64
	MiscExpense       float64

	Profit float64
	TCE    float64
}

// LaycanStatus classifies an ETA against the laycan window.
type LaycanStatus int

const (
	LaycanFeasible LaycanStatus = iota
	LaycanEarly
	LaycanInfeasible
)

func (s LaycanStatus) String() string {
	switch s {
	case LaycanFeasible:
		return "feasible"
	case LaycanEarly:
		return "early"
	case LaycanInfeasible:
		return "infeasible"
	}
	return "unknown"
}

// LaycanEvaluation is the derived timing verdict for one departure.
type LaycanEvaluation struct {
	Status      LaycanStatus
	ETA         time.Time
	WaitingDays float64
	BallastDays float64
}

// SkipReason explains why a vessel/cargo pair produced no PairResult. The
// data-quality reasons (missing laycan, non-positive freight) are kept
// distinct from the timing miss so the audit report can tell them apart.
type SkipReason int

const (
	SkipNone SkipReason = iota
	SkipFreight
	SkipLaycanMissing
	SkipLaycanMissed
	SkipNoQuantity
)

func (r SkipReason) String() string {
	switch r {
	case SkipNone:
		return "none"
	case SkipFreight:
		return "freight_not_positive"
	case SkipLaycanMissing:
		return "laycan_missing"
	case SkipLaycanMissed:
		return "laycan_missed"
	case SkipNoQuantity:
		return "no_feasible_quantity"
	}
	return "unknown"
}

// PairResult is one vessel/cargo pair evaluated at its best grid point.
type PairResult struct {
	Vessel string
	Cargo  string

	Voyage   VoyageResult
	Quantity float64
	Blend    SpeedBlend

	Laycan      LaycanEvaluation
	WaitingCost float64
	// AdjustedProfit is voyage profit minus waiting cost; the quantity the
	// assignment solver maximizes.
	AdjustedProfit float64

	Distances Distances
	// Combinations is the theoretical grid size for this pair, reported for
	// audit even when the search short-circuits.
	Combinations int64
}

// SearchStats aggregates a fleet-wide pair precomputation for the report.
type SearchStats struct {
	Pairs        int
	Evaluated    int
	Combinations int64

	SkippedFreight       int
	SkippedLaycanMissing int
	SkippedLaycanMissed  int
	SkippedNoQuantity    int
}

// Match binds a vessel to the cargo it was assigned, with the pair's chosen
// operating point.
type Match struct {
	VesselIndex int
	CargoIndex  int
	Pair        *PairResult
}

// Assignment is the fleet-level optimization result. Vessels with no
// profitable feasible cargo are listed as unassigned; that is a valid
// outcome, not an error.
type Assignment struct {
	Matches           []Match
	UnassignedVessels []int
	UnusedCargos      []int
	TotalProfit       float64
}
