package opt

// Interpolate blends the warranted and economical profiles. Blend fractions
// are clamped to [0,1]; 0 reproduces the warranted profile exactly and 1 the
// economical one. Speed and both fuel rates interpolate linearly, per leg.
func Interpolate(eco, warranted SpeedProfile, blend SpeedBlend) SpeedProfile {
	b := clamp01(blend.Ballast)
	l := clamp01(blend.Laden)
	return SpeedProfile{
		BallastKnots: lerp(warranted.BallastKnots, eco.BallastKnots, b),
		BallastIFO:   lerp(warranted.BallastIFO, eco.BallastIFO, b),
		BallastMDO:   lerp(warranted.BallastMDO, eco.BallastMDO, b),
		LadenKnots:   lerp(warranted.LadenKnots, eco.LadenKnots, l),
		LadenIFO:     lerp(warranted.LadenIFO, eco.LadenIFO, l),
		LadenMDO:     lerp(warranted.LadenMDO, eco.LadenMDO, l),
	}
}

func lerp(from, to, t float64) float64 {
	return from + (to-from)*t
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
