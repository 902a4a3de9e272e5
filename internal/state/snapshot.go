package state

import (
	"fmt"
	"time"

	"ble-pulse.klederson.com/internal/bluetooth"
	"ble-pulse.klederson.com/internal/motion"
)

// Phase is the stage of an axis pulse.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseExpanding
	PhaseContracting
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseExpanding:
		return "expanding"
	case PhaseContracting:
		return "contracting"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// MarshalText encodes the phase name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// AxisView is what the presentation layer draws for one axis circle.
type AxisView struct {
	Axis      motion.Axis   `json:"axis"`
	Value     float64       `json:"value"`     // latest raw reading (g)
	OffsetX   float64       `json:"offset_x"`  // points
	OffsetY   float64       `json:"offset_y"`  // points
	Scale     float64       `json:"scale"`     // target scale
	Opacity   float64       `json:"opacity"`   // target opacity
	Animation time.Duration `json:"animation"` // time to reach the targets
	Phase     Phase         `json:"phase"`
	Pulses    int           `json:"pulses"` // pulses started this session
}

// Snapshot is an immutable copy of the published state.
type Snapshot struct {
	Seq          uint64              `json:"seq"`
	UpdatedAt    time.Time           `json:"updated_at"`
	Axes         [3]AxisView         `json:"axes"`
	Peers        []bluetooth.Peer    `json:"peers"`
	Distance     float64             `json:"distance"` // meters, -1 when unknown
	Advertising  bool                `json:"advertising"`
	Scanning     bool                `json:"scanning"`
	SensorActive bool                `json:"sensor_active"`
	Radio        bluetooth.Readiness `json:"radio"`
}

// Axis returns the view for a single axis.
func (s Snapshot) Axis(a motion.Axis) AxisView {
	return s.Axes[a]
}

// PeerFound reports whether at least one matching peer has been seen.
func (s Snapshot) PeerFound() bool {
	return len(s.Peers) > 0
}

// DistanceText is the one-line distance readout.
func (s Snapshot) DistanceText() string {
	if !s.PeerFound() || s.Distance < 0 {
		return "Searching for device..."
	}
	return fmt.Sprintf("Distance: %.2f meters", s.Distance)
}

func (s Snapshot) clone() Snapshot {
	cp := s
	if s.Peers != nil {
		cp.Peers = append([]bluetooth.Peer(nil), s.Peers...)
	}
	return cp
}
