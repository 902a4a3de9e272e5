package feedback

import (
	"sync"
	"testing"
	"time"

	"ble-pulse.klederson.com/internal/motion"
	"ble-pulse.klederson.com/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type pulseRecord struct {
	axis      motion.Axis
	phase     state.Phase
	scale     float64
	opacity   float64
	animation time.Duration
	at        time.Time
}

type recordingPulses struct {
	mu      sync.Mutex
	records []pulseRecord
}

func (r *recordingPulses) SetAxisPulse(a motion.Axis, phase state.Phase, scale, opacity float64, animation time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, pulseRecord{a, phase, scale, opacity, animation, time.Now()})
}

func (r *recordingPulses) all() []pulseRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]pulseRecord(nil), r.records...)
}

func (r *recordingPulses) phases(a motion.Axis) []state.Phase {
	var out []state.Phase
	for _, rec := range r.all() {
		if rec.axis == a {
			out = append(out, rec.phase)
		}
	}
	return out
}

type recordingHaptics struct {
	mu   sync.Mutex
	cues []Cue
}

func (h *recordingHaptics) Play(c Cue) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cues = append(h.cues, c)
}

func (h *recordingHaptics) played() []Cue {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Cue(nil), h.cues...)
}

func fastOptions() SequencerOptions {
	opts := DefaultSequencerOptions()
	opts.Expand = 20 * time.Millisecond
	opts.Contract = 40 * time.Millisecond
	return opts
}

func newTestSequencer(t *testing.T, opts SequencerOptions) (*Sequencer, *recordingPulses, *recordingHaptics) {
	t.Helper()
	sink := &recordingPulses{}
	haptics := &recordingHaptics{}
	s := NewSequencer(sink, haptics, opts, zaptest.NewLogger(t).Sugar())
	t.Cleanup(s.Close)
	return s, sink, haptics
}

func TestDefaultSequencerOptions(t *testing.T) {
	opts := DefaultSequencerOptions()
	assert.Equal(t, 200*time.Millisecond, opts.Expand)
	assert.Equal(t, 500*time.Millisecond, opts.Contract)
	assert.Equal(t, 1.5, opts.PeakScale)
	assert.Equal(t, 1.0, opts.PeakOpacity)
	assert.Equal(t, 1.0, opts.RestScale)
	assert.Equal(t, 0.0, opts.RestOpacity)
	assert.Equal(t, OverlapAllow, opts.Overlap)
}

func TestSequencer_TwoStagePulse(t *testing.T) {
	opts := fastOptions()
	s, sink, haptics := newTestSequencer(t, opts)

	start := time.Now()
	id := s.Trigger(motion.Event{Axis: motion.AxisY, Delta: 0.5})
	assert.NotEmpty(t, id)
	assert.Less(t, time.Since(start), opts.Expand, "trigger must not wait for the pulse")

	s.Wait()

	recs := sink.all()
	require.Len(t, recs, 3)

	assert.Equal(t, pulseRecord{motion.AxisY, state.PhaseExpanding, 1.5, 1.0, opts.Expand, recs[0].at}, recs[0])
	assert.Equal(t, pulseRecord{motion.AxisY, state.PhaseContracting, 1.0, 0.0, opts.Contract, recs[1].at}, recs[1])
	assert.Equal(t, state.PhaseIdle, recs[2].phase)

	assert.GreaterOrEqual(t, recs[1].at.Sub(recs[0].at), opts.Expand)
	assert.GreaterOrEqual(t, recs[2].at.Sub(recs[1].at), opts.Contract)

	assert.Equal(t, []Cue{CuePositive, CueNegative}, haptics.played())
}

func TestSequencer_AllowOverlap(t *testing.T) {
	opts := fastOptions()
	s, sink, haptics := newTestSequencer(t, opts)

	s.Trigger(motion.Event{Axis: motion.AxisX, Delta: 0.4})
	time.Sleep(5 * time.Millisecond)
	s.Trigger(motion.Event{Axis: motion.AxisX, Delta: 0.7})
	s.Wait()

	phases := sink.phases(motion.AxisX)
	count := map[state.Phase]int{}
	for _, p := range phases {
		count[p]++
	}
	assert.Equal(t, 2, count[state.PhaseExpanding])
	assert.Equal(t, 2, count[state.PhaseContracting])
	assert.Equal(t, 2, count[state.PhaseIdle])
	assert.Len(t, haptics.played(), 4)
	assert.Equal(t, state.PhaseIdle, phases[len(phases)-1])
}

func TestSequencer_SupersedeCancelsRunningPulse(t *testing.T) {
	opts := fastOptions()
	opts.Expand = 150 * time.Millisecond
	opts.Contract = 10 * time.Millisecond
	opts.Overlap = OverlapSupersede
	s, sink, haptics := newTestSequencer(t, opts)

	first := s.Trigger(motion.Event{Axis: motion.AxisZ, Delta: 0.5})
	require.Eventually(t, func() bool { return len(sink.all()) == 1 }, time.Second, time.Millisecond)

	// Still expanding: the second event takes over the axis.
	second := s.Trigger(motion.Event{Axis: motion.AxisZ, Delta: 0.9})
	assert.NotEqual(t, first, second)
	s.Wait()

	assert.Equal(t, []state.Phase{
		state.PhaseExpanding,
		state.PhaseExpanding,
		state.PhaseContracting,
		state.PhaseIdle,
	}, sink.phases(motion.AxisZ))
	assert.Equal(t, []Cue{CuePositive, CuePositive, CueNegative}, haptics.played())

	recs := sink.all()
	assert.Less(t, recs[1].at.Sub(recs[0].at), opts.Expand, "first pulse was not cut short")
	assert.GreaterOrEqual(t, recs[2].at.Sub(recs[1].at), opts.Expand, "second pulse runs its full expand stage")
}

func TestSequencer_SupersedeIsPerAxis(t *testing.T) {
	opts := fastOptions()
	opts.Overlap = OverlapSupersede
	s, sink, _ := newTestSequencer(t, opts)

	s.Trigger(motion.Event{Axis: motion.AxisX})
	s.Trigger(motion.Event{Axis: motion.AxisY})
	s.Wait()

	want := []state.Phase{state.PhaseExpanding, state.PhaseContracting, state.PhaseIdle}
	assert.Equal(t, want, sink.phases(motion.AxisX))
	assert.Equal(t, want, sink.phases(motion.AxisY))
}

func TestSequencer_CloseSettlesToRest(t *testing.T) {
	opts := fastOptions()
	opts.Expand = time.Hour
	sink := &recordingPulses{}
	s := NewSequencer(sink, nil, opts, zaptest.NewLogger(t).Sugar())

	s.Trigger(motion.Event{Axis: motion.AxisX})
	require.Eventually(t, func() bool { return len(sink.all()) == 1 }, time.Second, time.Millisecond)

	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not cancel the running pulse")
	}

	recs := sink.all()
	require.Len(t, recs, 4)
	for i, a := range motion.Axes {
		rec := recs[1+i]
		assert.Equal(t, a, rec.axis)
		assert.Equal(t, state.PhaseIdle, rec.phase)
		assert.Equal(t, 1.0, rec.scale)
		assert.Equal(t, 0.0, rec.opacity)
	}

	assert.Empty(t, s.Trigger(motion.Event{Axis: motion.AxisY}))
	s.Close()
	assert.Len(t, sink.all(), 4)
}

func TestSequencer_PublishesToStore(t *testing.T) {
	store := state.NewStore()
	s := NewSequencer(store, NewLogHaptics(zaptest.NewLogger(t).Sugar()), fastOptions(), nil)
	defer s.Close()

	s.Trigger(motion.Event{Axis: motion.AxisX, Delta: 0.5})
	require.Eventually(t, func() bool {
		return store.Snapshot().Axis(motion.AxisX).Phase != state.PhaseIdle
	}, time.Second, time.Millisecond)

	s.Wait()
	x := store.Snapshot().Axis(motion.AxisX)
	assert.Equal(t, state.PhaseIdle, x.Phase)
	assert.Equal(t, 1, x.Pulses)
	assert.Equal(t, 1.0, x.Scale)
	assert.Equal(t, 0.0, x.Opacity)
	assert.Zero(t, store.Snapshot().Axis(motion.AxisY).Pulses)
}

func TestParseOverlapPolicy(t *testing.T) {
	p, err := ParseOverlapPolicy("supersede")
	require.NoError(t, err)
	assert.Equal(t, OverlapSupersede, p)

	p, err = ParseOverlapPolicy("allow")
	require.NoError(t, err)
	assert.Equal(t, OverlapAllow, p)
	assert.Equal(t, "allow", p.String())

	_, err = ParseOverlapPolicy("queue")
	assert.Error(t, err)
}
