// Package runner drives one scoring run: it pulls frames from a
// source at a fixed cadence, feeds them through the scoring session
// and fans the resulting samples out to the telemetry writer and the
// dashboard hub.
package runner

import (
	"context"
	"sync"
	"time"

	"github.com/teslashibe/go-attention/internal/log"
	"github.com/teslashibe/go-attention/pkg/scoring"
)

// FrameSource supplies per-tick frame signals.
type FrameSource interface {
	Next() (scoring.FrameSignal, error)
}

// SampleWriter persists samples. Write failures are logged, not
// propagated; the scoring loop keeps going.
type SampleWriter interface {
	Append(scoring.ScoreSample) error
}

// SampleBroadcaster pushes samples to live subscribers.
type SampleBroadcaster interface {
	BroadcastSample(scoring.ScoreSample) error
}

// Config holds runner parameters.
type Config struct {
	// Interval is the tick cadence. Frames arriving faster than this
	// are never processed; the source is polled once per tick.
	Interval time.Duration

	// Scoring configures the session owned by this run.
	Scoring scoring.Config
}

// DefaultConfig returns the runner defaults (10 Hz).
func DefaultConfig() Config {
	return Config{
		Interval: 100 * time.Millisecond,
		Scoring:  scoring.DefaultConfig(),
	}
}

// Snapshot is a point-in-time view of a run for the status API.
type Snapshot struct {
	Running     bool                 `json:"running"`
	Paused      bool                 `json:"paused"`
	RunID       string               `json:"run_id"`
	Present     bool                 `json:"present"`
	Calibrating bool                 `json:"calibrating"`
	WarmingUp   bool                 `json:"warming_up"`
	EARTarget   float64              `json:"ear_target"`
	LastSample  *scoring.ScoreSample `json:"last_sample,omitempty"`
}

// Runner owns the session for a single run. The session is only ever
// touched from the run loop goroutine; everything the API needs is
// mirrored into the snapshot under the mutex.
type Runner struct {
	cfg    Config
	runID  string
	source FrameSource
	writer SampleWriter
	bcast  SampleBroadcaster

	session *scoring.Session

	mu      sync.RWMutex
	running bool
	paused  bool
	last    *scoring.ScoreSample
	snap    Snapshot

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a runner for one run. Writer and broadcaster may be nil.
func New(cfg Config, runID string, source FrameSource, writer SampleWriter, bcast SampleBroadcaster) *Runner {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	return &Runner{
		cfg:     cfg,
		runID:   runID,
		source:  source,
		writer:  writer,
		bcast:   bcast,
		session: scoring.NewSession(cfg.Scoring),
		done:    make(chan struct{}),
	}
}

// RunID returns the run this runner drives.
func (r *Runner) RunID() string {
	return r.runID
}

// Start launches the run loop in its own goroutine.
func (r *Runner) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	r.cancel = cancel
	r.running = true
	r.mu.Unlock()

	log.Info("run started", "run_id", r.runID, "interval", r.cfg.Interval)
	go r.run(ctx)
}

func (r *Runner) run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()
	defer close(r.done)

	for {
		select {
		case <-ctx.Done():
			r.mu.Lock()
			r.running = false
			r.mu.Unlock()
			log.Info("run stopped", "run_id", r.runID)
			return

		case <-ticker.C:
			if r.Paused() {
				continue
			}
			r.step()
		}
	}
}

// step processes one tick: pull a frame, score it, fan the sample out.
func (r *Runner) step() {
	frame, err := r.source.Next()
	if err != nil {
		// A failed extraction is an absent frame, not a run failure.
		log.Warn("frame source error", "run_id", r.runID, "error", err)
		frame = scoring.FrameSignal{Timestamp: time.Now()}
	}

	sample := r.session.ProcessTick(frame)

	if r.writer != nil {
		if err := r.writer.Append(sample); err != nil {
			log.Warn("telemetry write failed", "run_id", r.runID, "error", err)
		}
	}
	if r.bcast != nil {
		if err := r.bcast.BroadcastSample(sample); err != nil {
			log.Warn("sample broadcast failed", "run_id", r.runID, "error", err)
		}
	}

	r.mu.Lock()
	r.last = &sample
	r.snap = Snapshot{
		Present:     r.session.Present(),
		Calibrating: r.session.Calibrating(),
		WarmingUp:   r.session.WarmingUp(),
		EARTarget:   r.session.EARTarget(),
	}
	r.mu.Unlock()
}

// Pause suspends scoring. Frames arriving while paused are dropped.
func (r *Runner) Pause() {
	r.mu.Lock()
	r.paused = true
	r.mu.Unlock()
	log.Info("run paused", "run_id", r.runID)
}

// Resume re-enables scoring after a pause. The session state is
// untouched, so the gate and smoother pick up where they left off.
func (r *Runner) Resume() {
	r.mu.Lock()
	r.paused = false
	r.mu.Unlock()
	log.Info("run resumed", "run_id", r.runID)
}

// Paused reports whether the run is paused.
func (r *Runner) Paused() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.paused
}

// Running reports whether the run loop is alive.
func (r *Runner) Running() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.running
}

// Stop cancels the run loop and waits for it to exit.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()

	if cancel != nil {
		cancel()
		<-r.done
	}
}

// Snapshot returns the current run state for the status API.
func (r *Runner) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := r.snap
	snap.Running = r.running
	snap.Paused = r.paused
	snap.RunID = r.runID
	if r.last != nil {
		last := *r.last
		snap.LastSample = &last
	}
	return snap
}
