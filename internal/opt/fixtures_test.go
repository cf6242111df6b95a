package opt_test

import (
	"time"

	"fleetnav/internal/opt"
)

// refDate is the deterministic "today" used across tests.
var refDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

// capesizeVessel is a vessel open at Santos with a conventional eco/warranted
// speed split.
func capesizeVessel() opt.Vessel {
	return opt.Vessel{
		Name:     "Coral Trader",
		OpenPort: "Santos",
		DWT:      180000,
		Eco: opt.SpeedProfile{
			BallastKnots: 14, LadenKnots: 13.5,
			BallastIFO: 38, BallastMDO: 0.4,
			LadenIFO: 42, LadenMDO: 0.4,
		},
		Warranted: opt.SpeedProfile{
			BallastKnots: 12, LadenKnots: 12,
			BallastIFO: 33, BallastMDO: 0.3,
			LadenIFO: 35, LadenMDO: 0.3,
		},
		PortWorkIFO:       5,
		PortWorkMDO:       0.5,
		PortIdleIFO:       3,
		PortIdleMDO:       0.3,
		DailyHire:         18000,
		AddressCommission: 0.0375,
	}
}

// soyCargo is a Santos->Qingdao contract with a +-5% quantity band and a
// laycan that a vessel already open at Santos meets immediately.
func soyCargo() opt.Cargo {
	return opt.Cargo{
		Name:              "SOY Santos/Qingdao",
		Quantity:          150000,
		Range:             &opt.QuantityRange{Min: 142500, Max: 157500},
		LoadPort:          "Santos",
		DischargePort:     "Qingdao",
		FreightRate:       22,
		Commissions:       []float64{0.0375, 0.0125},
		LoadRate:          30000,
		DischargeRate:     25000,
		LoadTurnDays:      1,
		DischargeTurnDays: 1,
		PortIdleDays:      2,
		Laycan: &opt.Laycan{
			Start: refDate.AddDate(0, 0, -1),
			End:   refDate.AddDate(0, 0, 5),
		},
		LoadPortCost:      150000,
		DischargePortCost: 120000,
	}
}

// testLookup is a fixed port-distance table with a 3000 nm fallback,
// mirroring the external distance collaborator.
func testLookup(from, to string) (float64, bool) {
	if from == to {
		return 0, true
	}
	table := map[string]float64{
		"Santos|Qingdao":    11000,
		"Rotterdam|Santos":  5100,
		"Rotterdam|Qingdao": 10500,
	}
	if nm, ok := table[from+"|"+to]; ok {
		return nm, true
	}
	if nm, ok := table[to+"|"+from]; ok {
		return nm, true
	}
	return 3000, false
}

// flatVessel has identical eco and warranted profiles so voyage profit is
// constant across the whole blend surface.
func flatVessel() opt.Vessel {
	v := capesizeVessel()
	v.Eco = v.Warranted
	return v
}
