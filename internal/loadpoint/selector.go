// Package loadpoint decides which of the two charging sessions occupies
// the single car slot on the panel. A session that is the only one
// charging always wins; when neither (or both) charge, the slot rotates
// between the two on a fairness timer.
package loadpoint

import (
	"time"

	"github.com/sweeney/evcc-panel/internal/logstore"
	"github.com/sweeney/evcc-panel/internal/telemetry"
)

// Selector is a two-state machine over the display slot. State is owned
// exclusively by the Selector and mutated only inside Active.
type Selector struct {
	interval time.Duration

	// current selects loadpoint 0 when true, loadpoint 1 otherwise.
	current      bool
	lastRotation time.Time

	log *logstore.Store
}

// NewSelector creates a Selector that rotates idle sessions every
// interval. It starts on loadpoint 0. log may be nil.
func NewSelector(interval time.Duration, now time.Time, log *logstore.Store) *Selector {
	return &Selector{
		interval:     interval,
		current:      true,
		lastRotation: now,
		log:          log,
	}
}

// Active returns the index (0 or 1) of the session to display this tick.
//
// Exactly one session charging wins unconditionally and does not consume
// the rotation timer. Otherwise the selection flips once the rotation
// interval has elapsed and holds in between.
func (s *Selector) Active(snap telemetry.Snapshot, now time.Time) int {
	lp0 := snap.Loadpoint(0)
	lp1 := snap.Loadpoint(1)

	if lp0.Charging && !lp1.Charging {
		return 0
	}
	if lp1.Charging && !lp0.Charging {
		return 1
	}

	if now.Sub(s.lastRotation) >= s.interval {
		s.current = !s.current
		s.lastRotation = now
		if s.log != nil {
			s.log.Infof("Rotating to loadpoint %d", s.index()+1)
		}
	}
	return s.index()
}

func (s *Selector) index() int {
	if s.current {
		return 0
	}
	return 1
}
