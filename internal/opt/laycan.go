package opt

import "time"

// transitDays converts a leg distance and speed into days at sea. A
// non-positive speed yields zero days rather than a division fault.
func transitDays(nm, knots float64) float64 {
	if knots <= 0 {
		return 0
	}
	return nm / knots / 24
}

func daysToDuration(days float64) time.Duration {
	return time.Duration(days * 24 * float64(time.Hour))
}

// EvaluateLaycan computes the load-port ETA for a departure and classifies
// it against the laycan window: after the window is infeasible, before it is
// early (the vessel waits at anchor on hire), inside it is feasible.
func EvaluateLaycan(departure time.Time, ballastNm, ballastKnots float64, lc Laycan) LaycanEvaluation {
	days := transitDays(ballastNm, ballastKnots)
	eta := departure.Add(daysToDuration(days))
	ev := LaycanEvaluation{ETA: eta, BallastDays: days}
	switch {
	case eta.After(lc.End):
		ev.Status = LaycanInfeasible
	case eta.Before(lc.Start):
		ev.Status = LaycanEarly
		ev.WaitingDays = lc.Start.Sub(eta).Hours() / 24
	default:
		ev.Status = LaycanFeasible
	}
	return ev
}

// WaitingCost converts waiting days at the load port into USD: hire keeps
// running and the vessel burns at idle consumption.
func WaitingCost(v Vessel, costs Costs, waitingDays float64) float64 {
	if waitingDays <= 0 {
		return 0
	}
	perDay := v.DailyHire + v.PortIdleIFO*costs.IFOPrice + v.PortIdleMDO*costs.MDOPrice
	return waitingDays * perDay
}
