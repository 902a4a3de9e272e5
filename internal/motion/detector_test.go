package motion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// xSeries builds samples whose consecutive X deltas match deltas, starting
// from a zero baseline, spaced by step.
func xSeries(start time.Time, step time.Duration, deltas []float64) []Sample {
	samples := []Sample{{At: start}}
	x := 0.0
	for i, d := range deltas {
		// Alternate direction so the value stays bounded.
		if i%2 == 0 {
			x += d
		} else {
			x -= d
		}
		samples = append(samples, Sample{X: x, At: start.Add(time.Duration(i+1) * step)})
	}
	return samples
}

func xOnlyOptions() DetectorOptions {
	return DetectorOptions{
		Thresholds: [3]float64{0.3, 100, 100},
		Cooldown:   time.Second,
	}
}

func TestDetector_FirstSampleSeedsBaseline(t *testing.T) {
	d := NewDetector(DefaultDetectorOptions())

	_, ok := d.Baseline(AxisX)
	require.False(t, ok)

	events := d.Observe(Sample{X: 5, Y: -5, Z: 9, At: time.Now()})
	assert.Empty(t, events, "a baseline-only sample never fires")

	for _, axis := range Axes {
		_, ok := d.Baseline(axis)
		assert.True(t, ok, "axis %s should have a baseline", axis)
	}
}

func TestDetector_BaselineTracksPreviousSample(t *testing.T) {
	d := NewDetector(xOnlyOptions())
	now := time.Now()

	d.Observe(Sample{X: 0, At: now})
	d.Observe(Sample{X: 0.2, At: now.Add(100 * time.Millisecond)})
	d.Observe(Sample{X: 0.4, At: now.Add(200 * time.Millisecond)})

	b, _ := d.Baseline(AxisX)
	assert.Equal(t, 0.4, b)

	// A slow drift of 0.2 per sample never crosses 0.3 even though the
	// total tilt does.
	events := d.Observe(Sample{X: 0.6, At: now.Add(300 * time.Millisecond)})
	assert.Empty(t, events)
}

func TestDetector_CooldownSuppressesRapidCrossings(t *testing.T) {
	d := NewDetector(xOnlyOptions())
	samples := xSeries(time.Now(), 100*time.Millisecond, []float64{0.1, 0.5, 0.1, 0.6})

	var fired []int
	for i, s := range samples {
		if evs := d.Observe(s); len(evs) > 0 {
			require.Len(t, evs, 1)
			assert.Equal(t, AxisX, evs[0].Axis)
			fired = append(fired, i-1) // index into the delta list
		}
	}

	assert.Equal(t, []int{1}, fired)
}

func TestDetector_SpacedCrossingsBothFire(t *testing.T) {
	d := NewDetector(xOnlyOptions())
	samples := xSeries(time.Now(), 1500*time.Millisecond, []float64{0.1, 0.5, 0.1, 0.6})

	var fired []int
	for i, s := range samples {
		if evs := d.Observe(s); len(evs) > 0 {
			fired = append(fired, i-1)
		}
	}

	assert.Equal(t, []int{1, 3}, fired)
}

func TestDetector_ThresholdIsExclusive(t *testing.T) {
	d := NewDetector(DetectorOptions{Thresholds: [3]float64{0.5, 0.5, 0.5}, Cooldown: time.Second})
	now := time.Now()

	d.Observe(Sample{At: now})
	assert.Empty(t, d.Observe(Sample{X: 0.5, At: now.Add(time.Second)}))
	assert.Len(t, d.Observe(Sample{X: 1.25, At: now.Add(2 * time.Second)}), 1)
}

func TestDetector_AxesDebounceIndependently(t *testing.T) {
	d := NewDetector(DefaultDetectorOptions())
	now := time.Now()

	d.Observe(Sample{At: now})
	evs := d.Observe(Sample{X: 1, At: now.Add(100 * time.Millisecond)})
	require.Len(t, evs, 1)
	assert.Equal(t, AxisX, evs[0].Axis)

	// X is cooling down, Y and Z are not.
	evs = d.Observe(Sample{X: 0, Y: 1, Z: 1, At: now.Add(200 * time.Millisecond)})
	require.Len(t, evs, 2)
	assert.Equal(t, AxisY, evs[0].Axis)
	assert.Equal(t, AxisZ, evs[1].Axis)
	assert.InDelta(t, 1.0, evs[1].Delta, 1e-9)
}

func TestDetector_ZeroTimestampUsesClock(t *testing.T) {
	d := NewDetector(xOnlyOptions())
	fixed := time.Date(2025, 2, 4, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return fixed }

	d.Observe(Sample{})
	evs := d.Observe(Sample{X: 1})
	require.Len(t, evs, 1)
	assert.Equal(t, fixed, evs[0].DetectedAt)
}

func TestDetector_Reset(t *testing.T) {
	d := NewDetector(xOnlyOptions())
	now := time.Now()
	d.Observe(Sample{At: now})
	require.Len(t, d.Observe(Sample{X: 1, At: now.Add(10 * time.Millisecond)}), 1)

	d.Reset()

	_, ok := d.Baseline(AxisX)
	assert.False(t, ok)
	d.Observe(Sample{At: now.Add(20 * time.Millisecond)})
	assert.Len(t, d.Observe(Sample{X: 1, At: now.Add(30 * time.Millisecond)}), 1, "cooldown forgotten after reset")
}

func TestAxis_TextRoundTrip(t *testing.T) {
	for _, a := range Axes {
		b, err := a.MarshalText()
		require.NoError(t, err)
		var got Axis
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, a, got)
	}

	var bad Axis
	assert.Error(t, bad.UnmarshalText([]byte("w")))
}

func TestSample_Offset(t *testing.T) {
	s := Sample{X: 0.5, Y: -0.2, Z: 1}

	dx, dy := s.Offset(AxisX, 50)
	assert.Equal(t, [2]float64{25, 0}, [2]float64{dx, dy})
	dx, dy = s.Offset(AxisY, 50)
	assert.Equal(t, [2]float64{0, -10}, [2]float64{dx, dy})
	dx, dy = s.Offset(AxisZ, 50)
	assert.Equal(t, [2]float64{50, 50}, [2]float64{dx, dy})
}
