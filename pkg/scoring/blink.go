package scoring

// BlinkTracker counts how many consecutive ticks the eyes have been
// closed. The run is capped, and open-eye ticks recover twice as fast
// as closed ticks accumulate, so a normal blink barely dents the score
// while a long eye closure keeps penalizing it.
type BlinkTracker struct {
	closedThresh float64
	streakMax    int

	wasClosed bool
	streak    int
}

// NewBlinkTracker creates a tracker with open eyes and a zero streak.
func NewBlinkTracker(cfg Config) *BlinkTracker {
	return &BlinkTracker{
		closedThresh: cfg.EARClosedThresh,
		streakMax:    cfg.BlinkStreakMax,
	}
}

// Update feeds one eye-openness sample and returns the new run length.
func (b *BlinkTracker) Update(ear float64) int {
	if ear < b.closedThresh {
		if b.wasClosed {
			b.streak = min(b.streakMax, b.streak+1)
		} else {
			b.wasClosed = true
			b.streak = 1
		}
	} else {
		b.wasClosed = false
		b.streak = max(0, b.streak-2)
	}
	return b.streak
}

// Streak returns the current closed-run length without advancing it.
func (b *BlinkTracker) Streak() int {
	return b.streak
}
