package radar

import (
	"time"

	"ble-pulse.klederson.com/internal/config"
	"ble-pulse.klederson.com/internal/motion"
	"ble-pulse.klederson.com/internal/state"
	"github.com/charmbracelet/lipgloss"
)

// AxisColors are the circle colors for X, Y and Z.
var AxisColors = [3]lipgloss.Color{
	motion.AxisX: "#FF3B30",
	motion.AxisY: "#34C759",
	motion.AxisZ: "#0A84FF",
}

var axisLabels = [3]rune{motion.AxisX: 'X', motion.AxisY: 'Y', motion.AxisZ: 'Z'}

// Field keeps the animation state of the three axis circles between frames.
type Field struct {
	pulses [3]Pulse
	views  [3]state.AxisView
}

// NewField returns a field with every circle at rest.
func NewField() *Field {
	f := &Field{}
	for _, a := range motion.Axes {
		f.pulses[a] = NewPulse(config.RestScale, config.RestOpacity)
		f.views[a] = state.AxisView{Axis: a, Scale: config.RestScale, Opacity: config.RestOpacity}
	}
	return f
}

// Update folds a published snapshot into the running animations.
func (f *Field) Update(snap state.Snapshot, now time.Time) {
	for _, a := range motion.Axes {
		v := snap.Axis(a)
		f.views[a] = v
		f.pulses[a].Apply(v, now)
	}
}

// Animating reports whether any circle is still moving at now.
func (f *Field) Animating(now time.Time) bool {
	for _, p := range f.pulses {
		if p.Animating(now) {
			return true
		}
	}
	return false
}

// Circles lays out the three circles for a field of the given radius.
func (f *Field) Circles(fieldRadius float64, now time.Time) []Circle {
	rest := RestRadius(fieldRadius)
	out := make([]Circle, 0, len(motion.Axes))
	for _, a := range motion.Axes {
		v := f.views[a]
		p := f.pulses[a]
		out = append(out, Circle{
			Label:   axisLabels[a],
			DX:      PointsToCells(v.OffsetX, rest),
			DY:      PointsToCells(v.OffsetY, rest),
			Radius:  rest * p.Scale.Value(now),
			Opacity: p.Opacity.Value(now),
			Color:   AxisColors[a],
		})
	}
	return out
}
