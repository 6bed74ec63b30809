// Package logstore provides a bounded in-memory diagnostic log for the
// evcc-panel daemon. Records live in a fixed-capacity ring that overwrites
// oldest-first; the web log viewer reads point-in-time snapshots.
// Safe for concurrent use.
package logstore

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Level is a log severity. Lower values are more severe.
type Level uint8

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
	LevelVerbose
)

// String returns the short three-letter tag used on the log page.
func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERR"
	case LevelWarn:
		return "WRN"
	case LevelInfo:
		return "INF"
	case LevelDebug:
		return "DBG"
	case LevelVerbose:
		return "VRB"
	default:
		return "UNK"
	}
}

// ParseLevel maps a query-string name to a Level. Unknown names return
// the given fallback.
func ParseLevel(s string, fallback Level) Level {
	switch s {
	case "error":
		return LevelError
	case "warn":
		return LevelWarn
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	case "verbose":
		return LevelVerbose
	default:
		return fallback
	}
}

// MaxMessageLen is the fixed message capacity. Longer messages are
// silently truncated, never rejected.
const MaxMessageLen = 96

// Record is one stored log entry.
type Record struct {
	// Since is the monotonic offset from store creation.
	Since time.Duration
	// Epoch is the wall-clock time of the write. Zero if the clock was
	// not yet synchronized when the record was written.
	Epoch   time.Time
	Level   Level
	Message string
}

// Stats are the observability counters exposed on /status.
type Stats struct {
	Total      uint64
	Count      int
	Overwrites uint64
	Dropped    uint64
	MinLevel   Level
}

// Store is a fixed-capacity overwrite-on-full log ring.
type Store struct {
	minLevel Level
	start    time.Time
	now      func() time.Time

	// echo mirrors accepted records to the process log when set.
	// Toggled from the web debug endpoint.
	echo atomic.Bool

	mu         sync.Mutex
	buf        []Record
	head       int // next write position
	count      int
	total      uint64
	overwrites uint64
	dropped    uint64
}

// New creates a Store holding at most capacity records, storing only
// records at or above minLevel severity order.
func New(capacity int, minLevel Level) *Store {
	if capacity < 1 {
		capacity = 1
	}
	return &Store{
		minLevel: minLevel,
		start:    time.Now(),
		now:      time.Now,
		buf:      make([]Record, capacity),
	}
}

// Record stores a message at the given level. Levels outside the defined
// range clamp to the nearest defined value; messages longer than
// MaxMessageLen are truncated. Never fails.
func (s *Store) Record(level Level, message string) {
	if level > LevelVerbose {
		level = LevelVerbose
	}
	if level < s.minLevel {
		s.mu.Lock()
		s.dropped++
		s.mu.Unlock()
		return
	}
	if len(message) > MaxMessageLen {
		message = message[:MaxMessageLen]
	}
	now := s.now()
	rec := Record{
		Since:   now.Sub(s.start),
		Epoch:   now,
		Level:   level,
		Message: message,
	}

	s.mu.Lock()
	s.buf[s.head] = rec
	s.head = (s.head + 1) % len(s.buf)
	if s.count < len(s.buf) {
		s.count++
	} else {
		s.overwrites++
	}
	s.total++
	s.mu.Unlock()

	if s.echo.Load() {
		log.Printf("%s %s", level, message)
	}
}

// Errorf, Warnf, Infof and Debugf are fmt-style conveniences.

func (s *Store) Errorf(format string, args ...any) { s.recordf(LevelError, format, args...) }
func (s *Store) Warnf(format string, args ...any)  { s.recordf(LevelWarn, format, args...) }
func (s *Store) Infof(format string, args ...any)  { s.recordf(LevelInfo, format, args...) }
func (s *Store) Debugf(format string, args ...any) { s.recordf(LevelDebug, format, args...) }

func (s *Store) recordf(level Level, format string, args ...any) {
	s.Record(level, fmt.Sprintf(format, args...))
}

// Snapshot returns a copy of the held records, oldest first. Records stay
// in the ring until overwritten by later writes.
func (s *Store) Snapshot() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.count == 0 {
		return nil
	}
	out := make([]Record, s.count)
	start := (s.head - s.count + len(s.buf)) % len(s.buf)
	for i := 0; i < s.count; i++ {
		out[i] = s.buf[(start+i)%len(s.buf)]
	}
	return out
}

// Stats returns the counters and the configured minimum level.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Total:      s.total,
		Count:      s.count,
		Overwrites: s.overwrites,
		Dropped:    s.dropped,
		MinLevel:   s.minLevel,
	}
}

// SetEcho enables or disables mirroring accepted records to stderr.
func (s *Store) SetEcho(on bool) { s.echo.Store(on) }

// Echo reports whether echo mode is on.
func (s *Store) Echo() bool { return s.echo.Load() }

// Uptime returns the elapsed time since the store was created.
func (s *Store) Uptime() time.Duration { return s.now().Sub(s.start) }
