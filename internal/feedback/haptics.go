package feedback

import (
	"sync"

	"go.uber.org/zap"
)

// Cue is a haptic pattern.
type Cue int

const (
	// CuePositive marks the start of a pulse.
	CuePositive Cue = iota
	// CueNegative marks the pulse settling back.
	CueNegative
)

func (c Cue) String() string {
	switch c {
	case CuePositive:
		return "positive"
	case CueNegative:
		return "negative"
	default:
		return "unknown"
	}
}

// MarshalText encodes the cue by name.
func (c Cue) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Haptics plays a cue. Play must return promptly; implementations that talk
// to slow devices should queue.
type Haptics interface {
	Play(c Cue)
}

// HapticsFunc adapts a function to Haptics.
type HapticsFunc func(Cue)

// Play calls f(c).
func (f HapticsFunc) Play(c Cue) { f(c) }

// LogHaptics writes each cue to the log. It stands in for an actuator on
// hosts without one.
type LogHaptics struct {
	logger *zap.SugaredLogger
}

// NewLogHaptics returns a log-backed actuator.
func NewLogHaptics(logger *zap.SugaredLogger) *LogHaptics {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &LogHaptics{logger: logger}
}

// Play logs the cue.
func (h *LogHaptics) Play(c Cue) {
	h.logger.Debugf("Haptic cue: %s", c)
}

// Multi fans a cue out to several actuators. Safe to Add while playing.
type Multi struct {
	mu      sync.RWMutex
	targets []Haptics
}

// NewMulti returns a fan-out over targets; nil entries are skipped.
func NewMulti(targets ...Haptics) *Multi {
	m := &Multi{}
	for _, t := range targets {
		m.Add(t)
	}
	return m
}

// Add registers another actuator.
func (m *Multi) Add(h Haptics) {
	if h == nil {
		return
	}
	m.mu.Lock()
	m.targets = append(m.targets, h)
	m.mu.Unlock()
}

// Play forwards c to every actuator in registration order.
func (m *Multi) Play(c Cue) {
	m.mu.RLock()
	targets := m.targets
	m.mu.RUnlock()
	for _, t := range targets {
		t.Play(c)
	}
}
