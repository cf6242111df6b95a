package opt

// ComputeVoyage produces the full P&L breakdown for one vessel/cargo pair at
// a given speed blend. Pure and deterministic; degenerate inputs (zero
// speeds, zero rates) flow through the division guards and produce zero
// durations instead of faults.
func ComputeVoyage(v Vessel, c Cargo, d Distances, costs Costs, blend SpeedBlend) VoyageResult {
	prof := Interpolate(v.Eco, v.Warranted, blend)

	var res VoyageResult
	res.BallastDays = transitDays(d.BallastNm, prof.BallastKnots)
	res.LadenDays = transitDays(d.LadenNm, prof.LadenKnots)

	// The loaded quantity is capped by the most restrictive of the
	// contractual quantity, the volumetric limit and the deadweight.
	qty := c.Quantity
	if c.StowFactor > 0 && v.GrainCuft > 0 {
		if volCap := v.GrainCuft / c.StowFactor; volCap < qty {
			qty = volCap
		}
	}
	if v.DWT > 0 && qty > v.DWT {
		qty = v.DWT
	}
	res.LoadedQuantity = qty

	res.LoadDays = safeDiv(qty, c.LoadRate) + c.LoadTurnDays + c.PortIdleDays
	res.DischargeDays = safeDiv(qty, c.DischargeRate) + c.DischargeTurnDays
	res.TotalDays = res.BallastDays + res.LadenDays + costs.BunkerDays +
		res.LoadDays + res.DischargeDays

	// At-sea burn per leg plus in-port burn, split working vs. idle.
	workDays := res.LoadDays + res.DischargeDays - c.PortIdleDays
	res.IFOBurn = res.BallastDays*prof.BallastIFO + res.LadenDays*prof.LadenIFO +
		workDays*v.PortWorkIFO + c.PortIdleDays*v.PortIdleIFO
	res.MDOBurn = res.BallastDays*prof.BallastMDO + res.LadenDays*prof.LadenMDO +
		workDays*v.PortWorkMDO + c.PortIdleDays*v.PortIdleMDO

	res.FreightGross = qty * c.FreightRate
	res.FreightNet = res.FreightGross * (1 - c.CommissionTotal())
	res.RevenueNet = res.FreightNet + c.BallastBonus

	res.HireNet = v.DailyHire * res.TotalDays * (1 - v.AddressCommission)
	res.BunkerExpense = res.IFOBurn*costs.IFOPrice + res.MDOBurn*costs.MDOPrice
	res.PortDisbursements = c.LoadPortCost + c.DischargePortCost
	res.OperatingExpense = costs.Victualling + costs.IdleLube + costs.BunkerDeliveryFee
	res.MiscExpense = costs.MiscExpense

	res.Profit = res.RevenueNet - (res.HireNet + res.BunkerExpense +
		res.PortDisbursements + res.OperatingExpense + res.MiscExpense)
	if res.TotalDays > 0 {
		res.TCE = res.Profit / res.TotalDays
	}
	return res
}

func safeDiv(a, b float64) float64 {
	if b <= 0 {
		return 0
	}
	return a / b
}
