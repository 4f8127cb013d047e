package scoring

import "time"

// Smoother turns the raw per-tick score into the displayed score. It
// applies exponential smoothing toward the raw value, caps the result
// under a warm-up ramp for a short period after each face
// re-acquisition, and slew-limits the per-tick change (rises are slow,
// falls are effectively unconstrained). While the face is absent the
// smoother owns the decay path instead.
type Smoother struct {
	alpha          float64
	warmupDuration time.Duration
	warmupStart    float64
	warmupEnd      float64
	maxRise        float64
	maxFall        float64
	absentDecay    float64
	startAt100     bool

	ema          float64
	warmupActive bool
	warmupT0     time.Time
}

// NewSmoother creates a smoother seeded at 100 in start-at-100 mode,
// otherwise at the warm-up start score.
func NewSmoother(cfg Config) *Smoother {
	s := &Smoother{
		alpha:          cfg.EMAAlpha,
		warmupDuration: cfg.WarmupDuration,
		warmupStart:    cfg.WarmupStartScore,
		warmupEnd:      cfg.WarmupEndScore,
		maxRise:        cfg.MaxRisePerStep,
		maxFall:        cfg.MaxFallPerStep,
		absentDecay:    cfg.AbsentDecayPerStep,
		startAt100:     cfg.StartAt100,
	}
	if cfg.StartAt100 {
		s.ema = 100.0
	} else {
		s.ema = cfg.WarmupStartScore
	}
	return s
}

// ApplyRaw feeds one raw score while the face is present and returns
// the new displayed score.
//
// On the re-acquisition tick the warm-up ramp is armed and, outside
// start-at-100 mode, the score snaps down to the warm-up start so the
// gauge visibly re-earns its value.
func (s *Smoother) ApplyRaw(raw float64, justAcquired bool, now time.Time) float64 {
	if justAcquired {
		s.warmupActive = true
		s.warmupT0 = now
		if !s.startAt100 {
			s.ema = minf(s.ema, s.warmupStart)
		}
	}

	target := (1-s.alpha)*s.ema + s.alpha*raw

	if s.warmupActive && !s.startAt100 {
		t := now.Sub(s.warmupT0)
		if t >= s.warmupDuration {
			s.warmupActive = false
		} else {
			// Ceiling ramps linearly from the warm-up start to the
			// warm-up end over the warm-up window.
			allow := s.warmupStart + (s.warmupEnd-s.warmupStart)*(t.Seconds()/s.warmupDuration.Seconds())
			target = minf(target, allow)
		}
	}

	// Slew limit toward the target.
	if target > s.ema {
		s.ema = minf(target, s.ema+s.maxRise)
	} else {
		s.ema = maxf(target, s.ema-s.maxFall)
	}

	return s.ema
}

// DecayAbsent walks the score down one step while the face is absent.
// The EMA, warm-up and slew paths are bypassed entirely.
func (s *Smoother) DecayAbsent() float64 {
	s.ema = maxf(0, s.ema-s.absentDecay)
	return s.ema
}

// Score returns the current displayed score without advancing it.
func (s *Smoother) Score() float64 {
	return s.ema
}

// WarmingUp reports whether the warm-up ceiling is active.
func (s *Smoother) WarmingUp() bool {
	return s.warmupActive && !s.startAt100
}
