// Package feedback turns motion events into timed visual and haptic pulses.
package feedback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ble-pulse.klederson.com/internal/config"
	"ble-pulse.klederson.com/internal/motion"
	"ble-pulse.klederson.com/internal/state"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OverlapPolicy decides what happens when an axis fires while its previous
// pulse is still running.
type OverlapPolicy int

const (
	// OverlapAllow runs every pulse to completion; stages of overlapping
	// pulses interleave and the latest write wins.
	OverlapAllow OverlapPolicy = iota
	// OverlapSupersede cancels the running pulse on that axis first.
	OverlapSupersede
)

func (p OverlapPolicy) String() string {
	switch p {
	case OverlapAllow:
		return "allow"
	case OverlapSupersede:
		return "supersede"
	default:
		return fmt.Sprintf("overlap(%d)", int(p))
	}
}

// ParseOverlapPolicy accepts "allow" or "supersede".
func ParseOverlapPolicy(s string) (OverlapPolicy, error) {
	switch s {
	case "allow", "":
		return OverlapAllow, nil
	case "supersede":
		return OverlapSupersede, nil
	default:
		return OverlapAllow, fmt.Errorf("unknown overlap policy %q (want allow or supersede)", s)
	}
}

// PulseSink receives the published stage of each axis.
type PulseSink interface {
	SetAxisPulse(a motion.Axis, phase state.Phase, scale, opacity float64, animation time.Duration)
}

// SequencerOptions holds stage timings and visual targets.
type SequencerOptions struct {
	Expand      time.Duration
	Contract    time.Duration
	PeakScale   float64
	PeakOpacity float64
	RestScale   float64
	RestOpacity float64
	Overlap     OverlapPolicy
}

// DefaultSequencerOptions returns the stock 200ms expand / 500ms contract pulse.
func DefaultSequencerOptions() SequencerOptions {
	return SequencerOptions{
		Expand:      config.ExpandDuration,
		Contract:    config.ContractDuration,
		PeakScale:   config.PeakScale,
		PeakOpacity: config.PeakOpacity,
		RestScale:   config.RestScale,
		RestOpacity: config.RestOpacity,
		Overlap:     OverlapAllow,
	}
}

type pulseTask struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}
}

// Sequencer runs one two-stage pulse per motion event. Trigger never blocks;
// each pulse lives in its own goroutine until its last stage ends.
type Sequencer struct {
	opts    SequencerOptions
	haptics Haptics
	sink    PulseSink
	logger  *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	tasks  map[motion.Axis]*pulseTask
	closed bool
}

// NewSequencer creates a sequencer publishing to sink. haptics may be nil.
func NewSequencer(sink PulseSink, haptics Haptics, opts SequencerOptions, logger *zap.SugaredLogger) *Sequencer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if haptics == nil {
		haptics = HapticsFunc(func(Cue) {})
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Sequencer{
		opts:    opts,
		haptics: haptics,
		sink:    sink,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		tasks:   make(map[motion.Axis]*pulseTask),
	}
}

// Trigger starts a pulse for ev and returns its task id. After Close it does
// nothing and returns "".
func (s *Sequencer) Trigger(ev motion.Event) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ""
	}

	ctx, cancel := context.WithCancel(s.ctx)
	task := &pulseTask{
		id:     uuid.NewString(),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	var prev *pulseTask
	if s.opts.Overlap == OverlapSupersede {
		if prev = s.tasks[ev.Axis]; prev != nil {
			prev.cancel()
		}
		s.tasks[ev.Axis] = task
	}

	s.logger.Debugf("Pulse %s on %s axis (delta %.3f)", task.id[:8], ev.Axis, ev.Delta)

	s.wg.Add(1)
	go s.run(ctx, ev.Axis, task, prev, s.opts)
	return task.id
}

func (s *Sequencer) run(ctx context.Context, a motion.Axis, task, prev *pulseTask, opts SequencerOptions) {
	defer s.wg.Done()
	defer close(task.done)
	defer task.cancel()
	defer s.release(a, task)

	if prev != nil {
		<-prev.done
	}
	if ctx.Err() != nil {
		return
	}

	s.haptics.Play(CuePositive)
	s.sink.SetAxisPulse(a, state.PhaseExpanding, opts.PeakScale, opts.PeakOpacity, opts.Expand)
	if !sleep(ctx, opts.Expand) {
		return
	}

	s.haptics.Play(CueNegative)
	s.sink.SetAxisPulse(a, state.PhaseContracting, opts.RestScale, opts.RestOpacity, opts.Contract)
	if !sleep(ctx, opts.Contract) {
		return
	}

	s.sink.SetAxisPulse(a, state.PhaseIdle, opts.RestScale, opts.RestOpacity, 0)
}

func (s *Sequencer) release(a motion.Axis, task *pulseTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tasks[a] == task {
		delete(s.tasks, a)
	}
}

// sleep waits d or until ctx ends; false means cancelled.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// Wait blocks until every started pulse has finished.
func (s *Sequencer) Wait() {
	s.wg.Wait()
}

// Close cancels running pulses, waits for them and leaves every axis at rest.
// Triggers after Close are ignored.
func (s *Sequencer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	for _, a := range motion.Axes {
		s.sink.SetAxisPulse(a, state.PhaseIdle, s.opts.RestScale, s.opts.RestOpacity, 0)
	}
}
