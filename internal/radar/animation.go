package radar

import (
	"time"

	"ble-pulse.klederson.com/internal/state"
)

// EaseInOut maps linear progress p in [0,1] onto a quadratic ease-in-out curve.
func EaseInOut(p float64) float64 {
	switch {
	case p <= 0:
		return 0
	case p >= 1:
		return 1
	case p < 0.5:
		return 2 * p * p
	default:
		q := -2*p + 2
		return 1 - q*q/2
	}
}

// Tween animates one value toward a target over a fixed duration.
type Tween struct {
	from, to float64
	start    time.Time
	dur      time.Duration
}

// NewTween returns a tween resting at v.
func NewTween(v float64) Tween {
	return Tween{from: v, to: v}
}

// Retarget starts a new animation from wherever the tween is at now.
func (t *Tween) Retarget(to float64, d time.Duration, now time.Time) {
	t.from = t.Value(now)
	t.to = to
	t.start = now
	t.dur = d
}

// Value returns the eased value at now.
func (t Tween) Value(now time.Time) float64 {
	if t.dur <= 0 {
		return t.to
	}
	p := float64(now.Sub(t.start)) / float64(t.dur)
	return t.from + (t.to-t.from)*EaseInOut(p)
}

// Target is where the tween is heading.
func (t Tween) Target() float64 { return t.to }

// Done reports whether the tween has reached its target.
func (t Tween) Done(now time.Time) bool {
	return t.dur <= 0 || now.Sub(t.start) >= t.dur
}

// Pulse animates one axis circle toward the targets its published view names.
type Pulse struct {
	Scale   Tween
	Opacity Tween

	phase  state.Phase
	pulses int
}

// NewPulse returns a circle at rest.
func NewPulse(scale, opacity float64) Pulse {
	return Pulse{Scale: NewTween(scale), Opacity: NewTween(opacity)}
}

// Apply retargets the animation when the view has moved to a new stage.
// A stage that keeps the current targets leaves a running tween alone.
func (p *Pulse) Apply(v state.AxisView, now time.Time) {
	if v.Phase == p.phase && v.Pulses == p.pulses {
		return
	}
	p.phase = v.Phase
	p.pulses = v.Pulses
	if v.Scale != p.Scale.Target() {
		p.Scale.Retarget(v.Scale, v.Animation, now)
	}
	if v.Opacity != p.Opacity.Target() {
		p.Opacity.Retarget(v.Opacity, v.Animation, now)
	}
}

// Animating reports whether a frame at now would differ from the final one.
func (p Pulse) Animating(now time.Time) bool {
	return !p.Scale.Done(now) || !p.Opacity.Done(now)
}
