package motion

import (
	"fmt"
	"time"
)

// Axis identifies one accelerometer axis.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Axes lists every axis in display order.
var Axes = [...]Axis{AxisX, AxisY, AxisZ}

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// MarshalText encodes the axis as its lowercase letter.
func (a Axis) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses "x", "y" or "z".
func (a *Axis) UnmarshalText(b []byte) error {
	switch string(b) {
	case "x":
		*a = AxisX
	case "y":
		*a = AxisY
	case "z":
		*a = AxisZ
	default:
		return fmt.Errorf("unknown axis %q", string(b))
	}
	return nil
}

// Sample is one tri-axis accelerometer reading, in g.
type Sample struct {
	X  float64   `json:"x"`
	Y  float64   `json:"y"`
	Z  float64   `json:"z"`
	At time.Time `json:"at"`
}

// Component returns the reading for a single axis.
func (s Sample) Component(a Axis) float64 {
	switch a {
	case AxisX:
		return s.X
	case AxisY:
		return s.Y
	default:
		return s.Z
	}
}

// Offset returns the on-screen displacement of an axis circle for this sample.
// X moves horizontally, Y vertically, Z diagonally.
func (s Sample) Offset(a Axis, factor float64) (dx, dy float64) {
	switch a {
	case AxisX:
		return s.X * factor, 0
	case AxisY:
		return 0, s.Y * factor
	default:
		return s.Z * factor, s.Z * factor
	}
}

// Event signals that one axis jerked past its threshold.
type Event struct {
	Axis       Axis      `json:"axis"`
	DetectedAt time.Time `json:"detected_at"`
	Delta      float64   `json:"delta"`
}
