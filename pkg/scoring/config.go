// Package scoring turns noisy per-frame eye/gaze measurements into a
// stable 0-100 attention gauge. It is a small stack of tick-driven
// filters: a presence hysteresis gate, a one-shot eye-openness
// calibrator, a blink-run tracker, a weighted score model and an
// EMA/slew smoother, orchestrated by a Session.
package scoring

import "time"

// Config holds all tunable parameters for the scoring pipeline.
// DefaultConfig supplies the values the gauge was tuned with; override
// individual fields before creating a Session if needed.
type Config struct {
	// Presence hysteresis
	HitConsec  int // Consecutive detections required to assert presence
	MissConsec int // Consecutive misses required to clear presence

	// Calibration (personal EAR target)
	CalibWindow      time.Duration // Length of the calibration window
	EARTargetDefault float64       // Fallback eye-openness target
	EARTargetMin     float64       // Lower clamp for the calibrated target
	EARTargetMax     float64       // Upper clamp for the calibrated target

	// Blink tracking
	EARClosedThresh float64 // EAR below this counts as closed eyes
	BlinkStreakMax  int     // Cap on the closed-run length

	// Smoothing
	EMAAlpha           float64       // Exponential smoothing factor (0-1, higher = more raw)
	WarmupDuration     time.Duration // Ramp length after face re-acquisition
	WarmupStartScore   float64       // Ceiling at the start of the ramp
	WarmupEndScore     float64       // Ceiling at the end of the ramp
	MaxRisePerStep     float64       // Max score increase per tick
	MaxFallPerStep     float64       // Max score decrease per tick
	AbsentDecayPerStep float64       // Score decay per tick while the face is absent

	// StartAt100 seeds the gauge at 100 and disables the warm-up
	// ceiling, so the score never has to be re-earned after
	// re-acquisition.
	StartAt100 bool
}

// DefaultConfig returns the recommended configuration for a stable
// on-screen gauge at ~10 Hz processing.
func DefaultConfig() Config {
	return Config{
		// Presence - quick to acquire, slow to give up
		HitConsec:  3,
		MissConsec: 6,

		// Calibration
		CalibWindow:      2 * time.Second,
		EARTargetDefault: 0.25,
		EARTargetMin:     0.20,
		EARTargetMax:     0.30,

		// Blink
		EARClosedThresh: 0.21,
		BlinkStreakMax:  10,

		// Smoothing
		EMAAlpha:           0.30,
		WarmupDuration:     1500 * time.Millisecond,
		WarmupStartScore:   40.0,
		WarmupEndScore:     100.0,
		MaxRisePerStep:     2.5,
		MaxFallPerStep:     100.0, // Effectively unbounded fall
		AbsentDecayPerStep: 1.5,
	}
}
