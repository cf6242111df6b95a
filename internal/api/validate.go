package api

import (
	"fmt"
	"time"

	"fleetnav/internal/model"
	"fleetnav/internal/opt"
)

// parseDate accepts RFC3339 or plain YYYY-MM-DD (midnight UTC).
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want RFC3339 or YYYY-MM-DD", s)
	}
	return t.UTC(), nil
}

func toProfile(in model.SpeedProfileIn) opt.SpeedProfile {
	return opt.SpeedProfile{
		BallastKnots: in.BallastKnots,
		LadenKnots:   in.LadenKnots,
		BallastIFO:   in.BallastIFO,
		BallastMDO:   in.BallastMDO,
		LadenIFO:     in.LadenIFO,
		LadenMDO:     in.LadenMDO,
	}
}

func toVessel(in model.VesselIn) (opt.Vessel, error) {
	if in.Name == "" {
		return opt.Vessel{}, fmt.Errorf("vessel name required")
	}
	if in.OpenPort == "" {
		return opt.Vessel{}, fmt.Errorf("vessel %s: openPort required", in.Name)
	}
	if in.DWT <= 0 {
		return opt.Vessel{}, fmt.Errorf("vessel %s: dwt must be > 0", in.Name)
	}
	if in.Warranted.BallastKnots <= 0 || in.Warranted.LadenKnots <= 0 {
		return opt.Vessel{}, fmt.Errorf("vessel %s: warranted speeds must be > 0", in.Name)
	}
	if in.Eco.BallastKnots <= 0 || in.Eco.LadenKnots <= 0 {
		return opt.Vessel{}, fmt.Errorf("vessel %s: eco speeds must be > 0", in.Name)
	}
	if in.DailyHire < 0 {
		return opt.Vessel{}, fmt.Errorf("vessel %s: dailyHire must be >= 0", in.Name)
	}
	if in.AddressCommission < 0 || in.AddressCommission >= 1 {
		return opt.Vessel{}, fmt.Errorf("vessel %s: addressCommission must be in [0,1)", in.Name)
	}
	v := opt.Vessel{
		Name:              in.Name,
		OpenPort:          in.OpenPort,
		DWT:               in.DWT,
		GrainCuft:         in.GrainCuft,
		Eco:               toProfile(in.Eco),
		Warranted:         toProfile(in.Warranted),
		PortWorkIFO:       in.PortWorkIFO,
		PortWorkMDO:       in.PortWorkMDO,
		PortIdleIFO:       in.PortIdleIFO,
		PortIdleMDO:       in.PortIdleMDO,
		DailyHire:         in.DailyHire,
		AddressCommission: in.AddressCommission,
	}
	if in.OpenDate != "" {
		t, err := parseDate(in.OpenDate)
		if err != nil {
			return opt.Vessel{}, fmt.Errorf("vessel %s: %w", in.Name, err)
		}
		v.OpenDate = &t
	}
	return v, nil
}

func toCargo(in model.CargoIn) (opt.Cargo, error) {
	if in.Name == "" {
		return opt.Cargo{}, fmt.Errorf("cargo name required")
	}
	if in.LoadPort == "" || in.DischargePort == "" {
		return opt.Cargo{}, fmt.Errorf("cargo %s: loadPort and dischargePort required", in.Name)
	}
	if in.Quantity <= 0 {
		return opt.Cargo{}, fmt.Errorf("cargo %s: quantity must be > 0", in.Name)
	}
	for _, f := range in.Commissions {
		if f < 0 || f >= 1 {
			return opt.Cargo{}, fmt.Errorf("cargo %s: commission fractions must be in [0,1)", in.Name)
		}
	}
	c := opt.Cargo{
		Name:              in.Name,
		Quantity:          in.Quantity,
		LoadPort:          in.LoadPort,
		DischargePort:     in.DischargePort,
		FreightRate:       in.FreightRate,
		Commissions:       in.Commissions,
		StowFactor:        in.StowFactor,
		BallastBonus:      in.BallastBonus,
		LoadRate:          in.LoadRate,
		DischargeRate:     in.DischargeRate,
		LoadTurnDays:      in.LoadTurnDays,
		DischargeTurnDays: in.DischargeTurnDays,
		PortIdleDays:      in.PortIdleDays,
		LoadPortCost:      in.LoadPortCost,
		DischargePortCost: in.DischargePortCost,
	}
	if in.MinQty != 0 || in.MaxQty != 0 {
		if in.MinQty <= 0 || in.MaxQty <= 0 || in.MinQty > in.MaxQty {
			return opt.Cargo{}, fmt.Errorf("cargo %s: quantity range must satisfy 0 < min <= max", in.Name)
		}
		c.Range = &opt.QuantityRange{Min: in.MinQty, Max: in.MaxQty}
	}
	switch {
	case in.LaycanStart == "" && in.LaycanEnd == "":
		// no parseable laycan in the source; the search skips this cargo
	case in.LaycanStart == "" || in.LaycanEnd == "":
		return opt.Cargo{}, fmt.Errorf("cargo %s: laycanStart and laycanEnd must both be set", in.Name)
	default:
		start, err := parseDate(in.LaycanStart)
		if err != nil {
			return opt.Cargo{}, fmt.Errorf("cargo %s: %w", in.Name, err)
		}
		end, err := parseDate(in.LaycanEnd)
		if err != nil {
			return opt.Cargo{}, fmt.Errorf("cargo %s: %w", in.Name, err)
		}
		if end.Before(start) {
			return opt.Cargo{}, fmt.Errorf("cargo %s: laycanEnd before laycanStart", in.Name)
		}
		c.Laycan = &opt.Laycan{Start: start, End: end}
	}
	return c, nil
}

func toVessels(ins []model.VesselIn) ([]opt.Vessel, error) {
	out := make([]opt.Vessel, 0, len(ins))
	for _, in := range ins {
		v, err := toVessel(in)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func toCargos(ins []model.CargoIn) ([]opt.Cargo, error) {
	out := make([]opt.Cargo, 0, len(ins))
	for _, in := range ins {
		c, err := toCargo(in)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// toCosts overlays non-zero request fields on the defaults.
func toCosts(in *model.CostsIn) opt.Costs {
	costs := opt.DefaultCosts()
	if in == nil {
		return costs
	}
	if in.IFOPrice > 0 {
		costs.IFOPrice = in.IFOPrice
	}
	if in.MDOPrice > 0 {
		costs.MDOPrice = in.MDOPrice
	}
	if in.BunkerDays > 0 {
		costs.BunkerDays = in.BunkerDays
	}
	if in.Victualling > 0 {
		costs.Victualling = in.Victualling
	}
	if in.IdleLube > 0 {
		costs.IdleLube = in.IdleLube
	}
	if in.BunkerDeliveryFee > 0 {
		costs.BunkerDeliveryFee = in.BunkerDeliveryFee
	}
	if in.MiscExpense > 0 {
		costs.MiscExpense = in.MiscExpense
	}
	return costs
}
