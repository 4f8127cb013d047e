package scoring

import "testing"

func TestBlinkTracker_OnsetAndCap(t *testing.T) {
	cfg := DefaultConfig()
	b := NewBlinkTracker(cfg)

	closed := cfg.EARClosedThresh - 0.05

	if got := b.Update(closed); got != 1 {
		t.Fatalf("first closed tick: streak = %d, want 1", got)
	}
	for i := 0; i < 20; i++ {
		b.Update(closed)
	}
	if got := b.Streak(); got != cfg.BlinkStreakMax {
		t.Fatalf("long closure: streak = %d, want cap %d", got, cfg.BlinkStreakMax)
	}
}

func TestBlinkTracker_RecoveryIsTwiceAsFast(t *testing.T) {
	cfg := DefaultConfig()
	closed := cfg.EARClosedThresh - 0.05
	open := cfg.EARClosedThresh + 0.05

	tests := []struct {
		name        string
		closedTicks int
		want        int
	}{
		{"streak 5 recovers to 3", 5, 3},
		{"streak 2 recovers to 0", 2, 0},
		{"streak 1 floors at 0", 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBlinkTracker(cfg)
			for i := 0; i < tt.closedTicks; i++ {
				b.Update(closed)
			}
			if got := b.Update(open); got != tt.want {
				t.Errorf("got streak %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBlinkTracker_StreakNeverNegative(t *testing.T) {
	cfg := DefaultConfig()
	b := NewBlinkTracker(cfg)

	for i := 0; i < 10; i++ {
		if got := b.Update(cfg.EARClosedThresh + 0.1); got < 0 {
			t.Fatalf("streak went negative: %d", got)
		}
	}
}

func TestBlinkTracker_ReclosureStartsAtOne(t *testing.T) {
	cfg := DefaultConfig()
	b := NewBlinkTracker(cfg)

	closed := cfg.EARClosedThresh - 0.05
	open := cfg.EARClosedThresh + 0.05

	for i := 0; i < 8; i++ {
		b.Update(closed)
	}
	b.Update(open) // streak 6, eyes open

	// Closing again starts a fresh run rather than resuming the old one.
	if got := b.Update(closed); got != 1 {
		t.Fatalf("re-closure streak = %d, want 1", got)
	}
}
