// Package model holds the wire-level types exchanged with API clients and
// stored datasets. Parsing/validation to core types happens at the API
// boundary; the optimizer core never sees these.
package model

import "time"

// SpeedProfileIn is one operating mode: knots and MT/day per leg type.
type SpeedProfileIn struct {
	BallastKnots float64 `json:"ballastKnots"`
	LadenKnots   float64 `json:"ladenKnots"`
	BallastIFO   float64 `json:"ballastIfo"`
	BallastMDO   float64 `json:"ballastMdo"`
	LadenIFO     float64 `json:"ladenIfo"`
	LadenMDO     float64 `json:"ladenMdo"`
}

// VesselIn is a fleet record as uploaded by a client, already parsed from
// whatever source format the client used.
type VesselIn struct {
	Name     string `json:"name"`
	OpenPort string `json:"openPort"`
	// OpenDate is RFC3339 or YYYY-MM-DD; empty means "use the run's
	// reference date".
	OpenDate  string  `json:"openDate,omitempty"`
	DWT       float64 `json:"dwt"`
	GrainCuft float64 `json:"grainCuft,omitempty"`

	Eco       SpeedProfileIn `json:"eco"`
	Warranted SpeedProfileIn `json:"warranted"`

	PortWorkIFO float64 `json:"portWorkIfo,omitempty"`
	PortWorkMDO float64 `json:"portWorkMdo,omitempty"`
	PortIdleIFO float64 `json:"portIdleIfo,omitempty"`
	PortIdleMDO float64 `json:"portIdleMdo,omitempty"`

	DailyHire         float64 `json:"dailyHire"`
	AddressCommission float64 `json:"addressCommission,omitempty"`
}

// CargoIn is a cargo contract record as uploaded by a client.
type CargoIn struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	MinQty   float64 `json:"minQty,omitempty"`
	MaxQty   float64 `json:"maxQty,omitempty"`

	LoadPort      string `json:"loadPort"`
	DischargePort string `json:"dischargePort"`

	FreightRate  float64   `json:"freightRate"`
	Commissions  []float64 `json:"commissions,omitempty"`
	StowFactor   float64   `json:"stowFactor,omitempty"`
	BallastBonus float64   `json:"ballastBonus,omitempty"`

	LoadRate          float64 `json:"loadRate"`
	DischargeRate     float64 `json:"dischargeRate"`
	LoadTurnDays      float64 `json:"loadTurnDays,omitempty"`
	DischargeTurnDays float64 `json:"dischargeTurnDays,omitempty"`
	PortIdleDays      float64 `json:"portIdleDays,omitempty"`

	// Laycan window, RFC3339 or YYYY-MM-DD. Both empty means the source had
	// no parseable laycan; such a cargo is excluded from the search.
	LaycanStart string `json:"laycanStart,omitempty"`
	LaycanEnd   string `json:"laycanEnd,omitempty"`

	LoadPortCost      float64 `json:"loadPortCost,omitempty"`
	DischargePortCost float64 `json:"dischargePortCost,omitempty"`
}

// CostsIn overrides the default bunker prices and voyage overheads for one
// run. Zero-valued fields keep the defaults.
type CostsIn struct {
	IFOPrice          float64 `json:"ifoPrice,omitempty"`
	MDOPrice          float64 `json:"mdoPrice,omitempty"`
	BunkerDays        float64 `json:"bunkerDays,omitempty"`
	Victualling       float64 `json:"victualling,omitempty"`
	IdleLube          float64 `json:"idleLube,omitempty"`
	BunkerDeliveryFee float64 `json:"bunkerDeliveryFee,omitempty"`
	MiscExpense       float64 `json:"miscExpense,omitempty"`
}

// OptimizeRequest triggers a fleet optimization run. Vessels/cargos may be
// supplied inline; when omitted, the tenant's stored datasets are used.
type OptimizeRequest struct {
	TenantID      string     `json:"tenantId,omitempty"`
	Vessels       []VesselIn `json:"vessels,omitempty"`
	Cargos        []CargoIn  `json:"cargos,omitempty"`
	ReferenceDate string     `json:"referenceDate,omitempty"`
	Costs         *CostsIn   `json:"costs,omitempty"`
}

// PairRequest asks for the best operating point of a single vessel/cargo
// pair, without running the fleet solver.
type PairRequest struct {
	Vessel        VesselIn `json:"vessel"`
	Cargo         CargoIn  `json:"cargo"`
	ReferenceDate string   `json:"referenceDate,omitempty"`
	Costs         *CostsIn `json:"costs,omitempty"`
}

// LegOut is one leg's distance with its provenance for the audit trail.
type LegOut struct {
	Nm     float64 `json:"nm"`
	Source string  `json:"source"` // table or fallback
}

// PairOut is the API view of a best-pair result.
type PairOut struct {
	Vessel string `json:"vessel"`
	Cargo  string `json:"cargo"`

	Quantity     float64 `json:"quantity"`
	BallastBlend float64 `json:"ballastBlend"`
	LadenBlend   float64 `json:"ladenBlend"`

	BallastLeg LegOut `json:"ballastLeg"`
	LadenLeg   LegOut `json:"ladenLeg"`

	ETA          string  `json:"eta"`
	LaycanStatus string  `json:"laycanStatus"`
	WaitingDays  float64 `json:"waitingDays"`
	WaitingCost  float64 `json:"waitingCost"`

	TotalDays      float64 `json:"totalDays"`
	Profit         float64 `json:"profit"`
	AdjustedProfit float64 `json:"adjustedProfit"`
	TCE            float64 `json:"tce"`

	Combinations int64 `json:"combinations"`
}

// StatsOut mirrors the search statistics for the audit trail.
type StatsOut struct {
	Pairs        int   `json:"pairs"`
	Evaluated    int   `json:"evaluated"`
	Combinations int64 `json:"combinations"`

	SkippedFreight       int `json:"skippedFreight"`
	SkippedLaycanMissing int `json:"skippedLaycanMissing"`
	SkippedLaycanMissed  int `json:"skippedLaycanMissed"`
	SkippedNoQuantity    int `json:"skippedNoQuantity"`
}

// PlanOut is a persisted optimization run.
type PlanOut struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	CreatedAt time.Time `json:"createdAt"`

	Matches           []PairOut `json:"matches"`
	UnassignedVessels []string  `json:"unassignedVessels"`
	UnusedCargos      []string  `json:"unusedCargos"`
	TotalProfit       float64   `json:"totalProfit"`

	Stats  StatsOut `json:"stats"`
	Report string   `json:"report,omitempty"`

	DurationMs int64 `json:"durationMs,omitempty"`
}

// SubscriptionRequest registers a webhook for plan lifecycle events.
type SubscriptionRequest struct {
	TenantID string   `json:"tenantId"`
	URL      string   `json:"url"`
	Events   []string `json:"events"`
	Secret   string   `json:"secret"`
}

// Subscription is a stored webhook registration.
type Subscription struct {
	ID       string   `json:"id"`
	TenantID string   `json:"tenantId"`
	URL      string   `json:"url"`
	Events   []string `json:"events"`
	Secret   string   `json:"secret,omitempty"`
}
