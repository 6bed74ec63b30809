// Package status provides a thread-safe tracker of daemon state for the
// HTTP handlers. The render loop writes into it every tick; readers get
// value-type views that are safe to use after the lock is released.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/evcc-panel/internal/engine"
	"github.com/sweeney/evcc-panel/internal/telemetry"
)

// Config contains daemon configuration for display.
type Config struct {
	EvccURL     string
	PollMs      int64
	RotationMs  int64
	Broker      string
	HTTPAddr    string
	LogCapacity int
	LogMinLevel string
}

// View is a point-in-time copy of daemon state.
type View struct {
	Telemetry  telemetry.Snapshot
	Frame      engine.Frame
	FrameValid bool

	FetchFailures int
	LastFetchErr  string
	LastUpdate    time.Time

	MQTTConnected bool

	StartTime time.Time
	Now       time.Time
	Config    Config
}

// Uptime returns the duration since the daemon started.
func (v View) Uptime() time.Duration {
	return v.Now.Sub(v.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	view View
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		view: View{
			Telemetry: telemetry.EmptySnapshot(),
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update stores the latest successful telemetry snapshot and the frame
// rendered from it. Called from the run loop on every tick.
func (t *Tracker) Update(snap telemetry.Snapshot, frame engine.Frame) {
	t.mu.Lock()
	t.view.Telemetry = snap
	t.view.Frame = frame
	t.view.FrameValid = true
	t.view.FetchFailures = 0
	t.view.LastFetchErr = ""
	t.view.LastUpdate = snap.LastUpdate
	t.mu.Unlock()
}

// FetchFailed records a failed poll. The last good snapshot and frame
// stay in place.
func (t *Tracker) FetchFailed(consecutive int, err error) {
	t.mu.Lock()
	t.view.FetchFailures = consecutive
	if err != nil {
		t.view.LastFetchErr = err.Error()
	}
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.view.MQTTConnected = connected
	t.mu.Unlock()
}

// View returns a point-in-time copy of the daemon state. The Now field is
// set to the current time at the moment of the call.
func (t *Tracker) View() View {
	t.mu.RLock()
	v := t.view
	t.mu.RUnlock()
	v.Now = time.Now()
	return v
}
