package opt

import "math"

// solveHungarian computes a minimum-cost perfect matching on a square cost
// matrix using the O(n³) shortest-augmenting-path variant of the
// Kuhn-Munkres algorithm with row/column potentials. The returned slice maps
// each row to its assigned column. Fully deterministic: no random
// tie-breaking anywhere.
func solveHungarian(cost [][]float64) []int {
	n := len(cost)
	if n == 0 {
		return nil
	}

	u := make([]float64, n) // row potentials
	v := make([]float64, n+1)
	// rowOf[j] is the row matched to column j; column n is a virtual slot
	// holding the row currently being augmented.
	rowOf := make([]int, n+1)
	way := make([]int, n+1)
	for j := range rowOf {
		rowOf[j] = -1
	}

	for i := 0; i < n; i++ {
		rowOf[n] = i
		j0 := n
		minv := make([]float64, n+1)
		used := make([]bool, n+1)
		for j := range minv {
			minv[j] = math.Inf(1)
		}

		// Grow the alternating tree until a free column is reached.
		for {
			used[j0] = true
			i0 := rowOf[j0]
			delta := math.Inf(1)
			j1 := -1
			for j := 0; j < n; j++ {
				if used[j] {
					continue
				}
				reduced := cost[i0][j] - u[i0] - v[j]
				if reduced < minv[j] {
					minv[j] = reduced
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= n; j++ {
				if used[j] {
					u[rowOf[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if rowOf[j0] == -1 {
				break
			}
		}

		// Flip matched edges back along the path.
		for j0 != n {
			j1 := way[j0]
			rowOf[j0] = rowOf[j1]
			j0 = j1
		}
	}

	assign := make([]int, n)
	for j := 0; j < n; j++ {
		if rowOf[j] >= 0 {
			assign[rowOf[j]] = j
		}
	}
	return assign
}
