package opt

import (
	"runtime"
	"sync"
	"time"
)

// DistanceFunc resolves the sailing distance in nautical miles between two
// ports. exact is false when the value is a fallback default rather than a
// table entry.
type DistanceFunc func(from, to string) (nm float64, exact bool)

// PairDistances looks up the two legs of a vessel/cargo pairing.
func PairDistances(v Vessel, c Cargo, lookup DistanceFunc) Distances {
	ballastNm, ballastExact := lookup(v.OpenPort, c.LoadPort)
	ladenNm, ladenExact := lookup(c.LoadPort, c.DischargePort)
	return Distances{
		BallastNm:    ballastNm,
		BallastExact: ballastExact,
		LadenNm:      ladenNm,
		LadenExact:   ladenExact,
	}
}

// BuildPairMatrix runs the per-pair search for every vessel×cargo
// combination. This is the expensive step; each cell is independent, so the
// grid searches run on a bounded worker pool. The result matrix and stats
// are deterministic regardless of scheduling, since every goroutine writes
// only its own cell.
func BuildPairMatrix(vessels []Vessel, cargos []Cargo, lookup DistanceFunc, costs Costs, refDate time.Time) ([][]*PairResult, SearchStats) {
	pairs := make([][]*PairResult, len(vessels))
	reasons := make([][]SkipReason, len(vessels))
	for i := range vessels {
		pairs[i] = make([]*PairResult, len(cargos))
		reasons[i] = make([]SkipReason, len(cargos))
	}

	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	var wg sync.WaitGroup
	for i := range vessels {
		for j := range cargos {
			wg.Add(1)
			go func(i, j int) {
				sem <- struct{}{}
				defer wg.Done()
				defer func() { <-sem }()
				d := PairDistances(vessels[i], cargos[j], lookup)
				pairs[i][j], reasons[i][j] = SearchBestPair(vessels[i], cargos[j], d, costs, refDate)
			}(i, j)
		}
	}
	wg.Wait()

	var stats SearchStats
	for i := range vessels {
		for j := range cargos {
			stats.Pairs++
			stats.Combinations += Combinations(cargos[j])
			switch reasons[i][j] {
			case SkipFreight:
				stats.SkippedFreight++
			case SkipLaycanMissing:
				stats.SkippedLaycanMissing++
			case SkipLaycanMissed:
				stats.SkippedLaycanMissed++
			case SkipNoQuantity:
				stats.SkippedNoQuantity++
				stats.Evaluated++
			case SkipNone:
				stats.Evaluated++
			}
		}
	}
	return pairs, stats
}
