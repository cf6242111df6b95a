package opt

// infeasiblePenalty keeps hopeless cells out of the matching unless the
// matrix shape forces them in, in which case the result is filtered below.
const infeasiblePenalty = 1e9

// feasiblePair reports whether a pair result may enter the assignment:
// present, finite, and strictly profitable after the waiting adjustment.
func feasiblePair(pr *PairResult) bool {
	return pr != nil && isFinite(pr.AdjustedProfit) && pr.AdjustedProfit > 0
}

// SolveAssignment finds the one-to-one vessel/cargo pairing that maximizes
// total adjusted profit. The profit matrix is converted to a minimization
// problem (cost = maxProfit − adjustedProfit) over a square matrix padded
// with dummy rows/columns priced at maxProfit, so leaving a vessel
// unassigned is always available at zero marginal profit. Empty inputs and
// all-infeasible matrices yield a valid zero-profit assignment.
func SolveAssignment(vessels []Vessel, cargos []Cargo, pairs [][]*PairResult) Assignment {
	var a Assignment
	n, m := len(vessels), len(cargos)
	if n == 0 || m == 0 {
		for i := 0; i < n; i++ {
			a.UnassignedVessels = append(a.UnassignedVessels, i)
		}
		for j := 0; j < m; j++ {
			a.UnusedCargos = append(a.UnusedCargos, j)
		}
		return a
	}

	maxProfit := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			if pr := pairs[i][j]; feasiblePair(pr) && pr.AdjustedProfit > maxProfit {
				maxProfit = pr.AdjustedProfit
			}
		}
	}

	size := n
	if m > size {
		size = m
	}
	cost := make([][]float64, size)
	for i := range cost {
		cost[i] = make([]float64, size)
		for j := range cost[i] {
			switch {
			case i >= n || j >= m:
				cost[i][j] = maxProfit
			case feasiblePair(pairs[i][j]):
				cost[i][j] = maxProfit - pairs[i][j].AdjustedProfit
			default:
				cost[i][j] = maxProfit + infeasiblePenalty
			}
		}
	}

	assign := solveHungarian(cost)

	usedCargo := make([]bool, m)
	for i := 0; i < n; i++ {
		j := assign[i]
		if j < m && feasiblePair(pairs[i][j]) {
			a.Matches = append(a.Matches, Match{VesselIndex: i, CargoIndex: j, Pair: pairs[i][j]})
			a.TotalProfit += pairs[i][j].AdjustedProfit
			usedCargo[j] = true
		} else {
			a.UnassignedVessels = append(a.UnassignedVessels, i)
		}
	}
	for j, used := range usedCargo {
		if !used {
			a.UnusedCargos = append(a.UnusedCargos, j)
		}
	}
	return a
}
