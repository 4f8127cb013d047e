package scoring

// PresenceGate converts the per-tick face-detected flag into a
// debounced presence state using asymmetric hysteresis: HitConsec
// consecutive detections to assert, MissConsec consecutive misses to
// clear. Single-frame flicker in either direction is absorbed.
type PresenceGate struct {
	hitConsec  int
	missConsec int

	hits    int
	misses  int
	present bool
}

// NewPresenceGate creates a gate in the absent state.
func NewPresenceGate(cfg Config) *PresenceGate {
	return &PresenceGate{
		hitConsec:  cfg.HitConsec,
		missConsec: cfg.MissConsec,
	}
}

// Update feeds one detection sample and returns the debounced presence
// state plus an edge flag that is true exactly on the tick where
// presence flips from absent to present.
func (g *PresenceGate) Update(detected bool) (present, justAcquired bool) {
	wasPresent := g.present

	if detected {
		g.hits = min(g.hitConsec, g.hits+1)
		g.misses = 0
		if g.hits >= g.hitConsec {
			g.present = true
		}
		// A partial miss streak already zeroed hits, but presence
		// holds until the full miss threshold is reached.
	} else {
		g.misses = min(g.missConsec, g.misses+1)
		g.hits = 0
		if g.misses >= g.missConsec {
			g.present = false
		}
	}

	return g.present, g.present && !wasPresent
}

// Present returns the current debounced state without advancing it.
func (g *PresenceGate) Present() bool {
	return g.present
}
