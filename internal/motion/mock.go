package motion

import (
	"math"
	"math/rand"
	"time"
)

// MockSource generates a gently wobbling wrist with an occasional sharp
// flick on a random axis. Used for demo mode.
type MockSource struct {
	start     time.Time
	jerkEvery time.Duration
	nextJerk  time.Time
	jerkAxis  Axis
	jerkLeft  int
}

// NewMockSource creates a generator that flicks roughly every jerkEvery.
func NewMockSource(jerkEvery time.Duration) *MockSource {
	if jerkEvery <= 0 {
		jerkEvery = 3 * time.Second
	}
	now := time.Now()
	return &MockSource{
		start:     now,
		jerkEvery: jerkEvery,
		nextJerk:  now.Add(jerkEvery),
	}
}

// Subscribe starts the generator.
func (m *MockSource) Subscribe(interval time.Duration) (Subscription, error) {
	return startPolling(interval, m.next, nil), nil
}

func (m *MockSource) next(t time.Time) (Sample, error) {
	elapsed := t.Sub(m.start).Seconds()

	// Resting watch: gravity mostly on Z, small sway on X/Y
	s := Sample{
		X:  0.05 * math.Sin(elapsed*1.3),
		Y:  0.05 * math.Cos(elapsed*0.9),
		Z:  -1 + 0.03*math.Sin(elapsed*0.5),
		At: t,
	}

	if !t.Before(m.nextJerk) && m.jerkLeft == 0 {
		m.jerkAxis = Axes[rand.Intn(len(Axes))]
		m.jerkLeft = 2
		jitter := time.Duration(rand.Int63n(int64(m.jerkEvery)))
		m.nextJerk = t.Add(m.jerkEvery/2 + jitter)
	}

	if m.jerkLeft > 0 {
		kick := 0.8 + rand.Float64()*0.6
		if m.jerkLeft == 1 {
			kick = -kick / 2
		}
		switch m.jerkAxis {
		case AxisX:
			s.X += kick
		case AxisY:
			s.Y += kick
		case AxisZ:
			s.Z += kick
		}
		m.jerkLeft--
	}

	return s, nil
}
