package scoring

// Deduction weights of the score model. These are design constants
// tuned together with the smoother; changing them breaks output
// compatibility with recorded runs, so they are deliberately not part
// of Config.
const (
	gazeHWeight = 0.8
	gazeHScale  = 40.0
	gazeVWeight = 0.6
	gazeVScale  = 25.0
	earWeight   = 1.0
	earScale    = 40.0
	blinkWeight = 1.2
	blinkScale  = 10.0

	// "Perfect posture" bonus: gaze pinned to center, no blink run,
	// eyes open near target lifts the score to at least bonusFloor.
	bonusGazeEps  = 0.02
	bonusEARSlack = 0.01
	bonusFloor    = 98.0

	targetEps = 1e-6
)

// ComputeScore converts one feature vector into a raw attention score
// in [0,100]. It is a pure function: gaze offsets and eye openness are
// penalized against the calibrated target, a sustained blink run adds
// a further deduction, and a near-perfect posture is floored at 98 so
// the gauge can actually reach the top of its range.
func ComputeScore(gazeH, gazeV, ear float64, blinkStreak int, target float64) float64 {
	s := 100.0
	s -= gazeHWeight * clamp01(gazeH) * gazeHScale
	s -= gazeVWeight * clamp01(gazeV) * gazeVScale
	s -= earWeight * maxf(0, target-maxf(0, ear)) * earScale / maxf(target, targetEps)
	s -= blinkWeight * clamp01(float64(blinkStreak)/10.0) * blinkScale

	s = clamp(s, 0, 100)

	if gazeH < bonusGazeEps && gazeV < bonusGazeEps && blinkStreak == 0 && ear >= target-bonusEARSlack {
		s = maxf(s, bonusFloor)
	}

	return s
}

func clamp01(x float64) float64 {
	return clamp(x, 0, 1)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
