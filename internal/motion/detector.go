package motion

import (
	"math"
	"time"

	"ble-pulse.klederson.com/internal/config"
)

// DetectorOptions tunes per-axis sensitivity and debounce.
type DetectorOptions struct {
	Thresholds [3]float64 // indexed by Axis
	Cooldown   time.Duration
}

// DefaultDetectorOptions returns the stock thresholds and one-second cooldown.
func DefaultDetectorOptions() DetectorOptions {
	return DetectorOptions{
		Thresholds: [3]float64{config.ThresholdX, config.ThresholdY, config.ThresholdZ},
		Cooldown:   config.Cooldown,
	}
}

type axisState struct {
	baseline    float64
	hasBaseline bool
	lastEvent   time.Time
	fired       bool // false means the last event was infinitely long ago
}

// Detector turns a sample stream into per-axis motion events. Each axis
// compares against the immediately preceding sample and is debounced
// independently. A Detector is not safe for concurrent use; feed it from a
// single goroutine.
type Detector struct {
	opts DetectorOptions
	axes [3]axisState
	now  func() time.Time
}

// NewDetector creates a detector with no baselines.
func NewDetector(opts DetectorOptions) *Detector {
	return &Detector{
		opts: opts,
		now:  time.Now,
	}
}

// Observe processes one sample and returns the events it raised, in axis
// order. The sample timestamp is the detection time; a zero timestamp falls
// back to the wall clock.
func (d *Detector) Observe(s Sample) []Event {
	now := s.At
	if now.IsZero() {
		now = d.now()
	}

	var events []Event
	for _, axis := range Axes {
		st := &d.axes[axis]
		cur := s.Component(axis)

		if !st.hasBaseline {
			st.baseline = cur
			st.hasBaseline = true
			continue
		}

		delta := math.Abs(cur - st.baseline)
		st.baseline = cur

		if delta <= d.opts.Thresholds[axis] {
			continue
		}
		if st.fired && now.Sub(st.lastEvent) <= d.opts.Cooldown {
			continue
		}

		st.lastEvent = now
		st.fired = true
		events = append(events, Event{Axis: axis, DetectedAt: now, Delta: delta})
	}
	return events
}

// Baseline returns the stored comparison value for an axis and whether one
// exists yet.
func (d *Detector) Baseline(a Axis) (float64, bool) {
	st := d.axes[a]
	return st.baseline, st.hasBaseline
}

// Reset forgets every baseline and cooldown.
func (d *Detector) Reset() {
	d.axes = [3]axisState{}
}
