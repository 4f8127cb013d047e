package scoring

import (
	"sort"
	"time"
)

// Calibrator bootstraps a personal eye-openness target during a single
// timed window at the start of a session. Samples are collected only
// while the face is present and the gaze sits inside the upstream
// deadzone (looking straight), and the median is clamped so the
// calibrated target can never exceed the default baseline.
//
// If the window closes with zero qualifying samples the target stays
// unset for the rest of the session and EffectiveTarget falls back to
// the default; calibration is not retried.
type Calibrator struct {
	window        time.Duration
	targetDefault float64
	targetMin     float64
	targetMax     float64

	started   bool
	running   bool
	start     time.Time
	samples   []float64
	target    float64
	hasTarget bool
}

// NewCalibrator creates an idle calibrator; the window starts on the
// first present tick.
func NewCalibrator(cfg Config) *Calibrator {
	return &Calibrator{
		window:        cfg.CalibWindow,
		targetDefault: cfg.EARTargetDefault,
		targetMin:     cfg.EARTargetMin,
		targetMax:     cfg.EARTargetMax,
	}
}

// Update feeds one tick. It does nothing unless present is true.
func (c *Calibrator) Update(present bool, gazeH, gazeV, ear float64, now time.Time) {
	if !present {
		return
	}

	// The window opens exactly once per session. Once it has closed,
	// even empty, it never reopens.
	if !c.started {
		c.started = true
		c.running = true
		c.start = now
	}

	if !c.running {
		return
	}

	// Only centered-gaze ticks qualify; the extractor squashes
	// in-deadzone offsets to exactly zero.
	if gazeH == 0 && gazeV == 0 {
		c.samples = append(c.samples, ear)
	}

	if now.Sub(c.start) >= c.window {
		c.running = false
		if len(c.samples) > 0 {
			m := clamp(median(c.samples), c.targetMin, c.targetMax)
			// Never calibrate above the default, or an open-eyed
			// user would be permanently penalized.
			c.target = minf(c.targetDefault, m)
			c.hasTarget = true
		}
	}
}

// EffectiveTarget returns the calibrated target, or the default if
// calibration has not (or never) produced one.
func (c *Calibrator) EffectiveTarget() float64 {
	if c.hasTarget {
		return c.target
	}
	return c.targetDefault
}

// Running reports whether the calibration window is open.
func (c *Calibrator) Running() bool {
	return c.running
}

// Calibrated reports whether a personal target has been set.
func (c *Calibrator) Calibrated() bool {
	return c.hasTarget
}

// median returns the median of the values, averaging the two middle
// elements for even counts. The input is not modified.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
