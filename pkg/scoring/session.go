package scoring

import "time"

// FrameSignal is the per-tick input from the feature extractor. Gaze
// offsets must already be deadzone-squashed: in-deadzone offsets are
// exactly zero. When Detected is false the feature fields carry no
// information and are ignored once presence clears.
type FrameSignal struct {
	Timestamp time.Time
	EAR       float64
	GazeH     float64 // Horizontal gaze offset, 0-1
	GazeV     float64 // Vertical gaze offset, 0-1
	Detected  bool
}

// ScoreSample is the per-tick output: the smoothed attention score
// plus the features it was derived from. This is the exact record the
// telemetry layer serializes as one row.
type ScoreSample struct {
	Timestamp time.Time `json:"ts"`
	Score     float64   `json:"score"`
	EAR       float64   `json:"ear"`
	GazeH     float64   `json:"gaze_h"`
	GazeV     float64   `json:"gaze_v"`
}

// Session owns all mutable scoring state and orchestrates the
// pipeline: presence gate, blink tracker, calibrator, score model and
// smoother. It is single-writer: only the goroutine driving
// ProcessTick may touch it. Pause and cancel belong to the driver
// (stop calling ProcessTick, or drop the session).
type Session struct {
	cfg      Config
	gate     *PresenceGate
	blinks   *BlinkTracker
	cal      *Calibrator
	smoother *Smoother
}

// NewSession creates a session in the absent state with all filters at
// their initial values.
func NewSession(cfg Config) *Session {
	return &Session{
		cfg:      cfg,
		gate:     NewPresenceGate(cfg),
		blinks:   NewBlinkTracker(cfg),
		cal:      NewCalibrator(cfg),
		smoother: NewSmoother(cfg),
	}
}

// ProcessTick advances every filter by one tick and returns the
// resulting sample. The frame's timestamp is the session's only clock.
func (s *Session) ProcessTick(frame FrameSignal) ScoreSample {
	now := frame.Timestamp

	present, justAcquired := s.gate.Update(frame.Detected)

	if !present {
		return ScoreSample{
			Timestamp: now,
			Score:     s.smoother.DecayAbsent(),
		}
	}

	streak := s.blinks.Update(frame.EAR)
	s.cal.Update(present, frame.GazeH, frame.GazeV, frame.EAR, now)
	raw := ComputeScore(frame.GazeH, frame.GazeV, frame.EAR, streak, s.cal.EffectiveTarget())
	score := s.smoother.ApplyRaw(raw, justAcquired, now)

	return ScoreSample{
		Timestamp: now,
		Score:     score,
		EAR:       frame.EAR,
		GazeH:     frame.GazeH,
		GazeV:     frame.GazeV,
	}
}

// Present reports the debounced face-presence state.
func (s *Session) Present() bool {
	return s.gate.Present()
}

// Calibrating reports whether the EAR calibration window is open.
func (s *Session) Calibrating() bool {
	return s.cal.Running()
}

// WarmingUp reports whether the warm-up ceiling is active.
func (s *Session) WarmingUp() bool {
	return s.smoother.WarmingUp()
}

// EARTarget returns the eye-openness target currently in effect.
func (s *Session) EARTarget() float64 {
	return s.cal.EffectiveTarget()
}

// Score returns the current displayed score without advancing state.
func (s *Session) Score() float64 {
	return s.smoother.Score()
}
