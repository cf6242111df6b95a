package opt

import (
	"fmt"
	"strings"
)

// Provenance renders a distance source tag for the audit report.
func Provenance(exact bool) string {
	if exact {
		return "table"
	}
	return "fallback"
}

// RenderReport formats an assignment and its search statistics into a
// human-auditable plain-text report. It always reports totals, so an
// all-unassigned outcome reads as "no profitable plan" rather than looking
// like a computation bug.
func RenderReport(vessels []Vessel, cargos []Cargo, a Assignment, stats SearchStats) string {
	var b strings.Builder

	b.WriteString("FLEET ASSIGNMENT REPORT\n")
	b.WriteString("=======================\n\n")

	fmt.Fprintf(&b, "Vessels: %d  Cargos: %d  Pairs: %d\n", len(vessels), len(cargos), stats.Pairs)
	b.WriteString("Filters applied: freight > 0, laycan window, quantity range, deadweight\n")
	fmt.Fprintf(&b, "Search space: quantity steps x %d x %d speed blends per pair; total %d combinations\n",
		blendSteps, blendSteps, stats.Combinations)
	fmt.Fprintf(&b, "Pairs evaluated: %d\n", stats.Evaluated)
	fmt.Fprintf(&b, "Pairs excluded: freight=%d laycan_missing=%d laycan_missed=%d no_feasible_quantity=%d\n\n",
		stats.SkippedFreight, stats.SkippedLaycanMissing, stats.SkippedLaycanMissed, stats.SkippedNoQuantity)

	if len(a.Matches) == 0 {
		b.WriteString("No profitable fleet plan found; all vessels unassigned.\n")
	}
	for _, m := range a.Matches {
		pr := m.Pair
		fmt.Fprintf(&b, "%s -> %s\n", pr.Vessel, pr.Cargo)
		fmt.Fprintf(&b, "  quantity %.0f MT, blend ballast %.2f / laden %.2f\n",
			pr.Quantity, pr.Blend.Ballast, pr.Blend.Laden)
		fmt.Fprintf(&b, "  ballast %.0f nm (%s), laden %.0f nm (%s)\n",
			pr.Distances.BallastNm, Provenance(pr.Distances.BallastExact),
			pr.Distances.LadenNm, Provenance(pr.Distances.LadenExact))
		fmt.Fprintf(&b, "  laycan %s, eta %s, waiting %.2f d (cost %.0f)\n",
			pr.Laycan.Status, pr.Laycan.ETA.Format("2006-01-02"), pr.Laycan.WaitingDays, pr.WaitingCost)
		fmt.Fprintf(&b, "  voyage %.1f d, profit %.0f, adjusted %.0f, tce %.0f/d\n",
			pr.Voyage.TotalDays, pr.Voyage.Profit, pr.AdjustedProfit, pr.Voyage.TCE)
	}
	b.WriteString("\n")

	if len(a.UnassignedVessels) > 0 {
		names := make([]string, 0, len(a.UnassignedVessels))
		for _, i := range a.UnassignedVessels {
			names = append(names, vessels[i].Name)
		}
		fmt.Fprintf(&b, "Unassigned vessels: %s\n", strings.Join(names, ", "))
	}
	if len(a.UnusedCargos) > 0 {
		names := make([]string, 0, len(a.UnusedCargos))
		for _, j := range a.UnusedCargos {
			names = append(names, cargos[j].Name)
		}
		fmt.Fprintf(&b, "Unused cargos: %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(&b, "Total adjusted profit: %.0f\n", a.TotalProfit)
	return b.String()
}
