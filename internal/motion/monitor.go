package motion

import (
	"context"
	"errors"
	"sync"
	"time"

	"ble-pulse.klederson.com/internal/config"
	"go.uber.org/zap"
)

// Observer is told about every processed sample, e.g. to publish raw values
// and circle offsets.
type Observer interface {
	ObserveSample(s Sample)
	SetSensorActive(active bool)
}

// Handler receives motion events on the sample goroutine. Handlers must not
// block; long work belongs in its own goroutine.
type Handler func(Event)

// MonitorOptions configures the sample loop.
type MonitorOptions struct {
	Interval time.Duration
	Detector DetectorOptions
}

// DefaultMonitorOptions returns a 100ms sample interval and stock detector.
func DefaultMonitorOptions() MonitorOptions {
	return MonitorOptions{
		Interval: config.SampleInterval,
		Detector: DefaultDetectorOptions(),
	}
}

// Monitor owns the accelerometer subscription and feeds samples, strictly in
// arrival order, through a Detector.
type Monitor struct {
	src    Source
	opts   MonitorOptions
	det    *Detector
	logger *zap.SugaredLogger

	mu       sync.Mutex
	observer Observer
	handlers []Handler
	running  bool
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewMonitor creates an idle monitor for src.
func NewMonitor(src Source, opts MonitorOptions, logger *zap.SugaredLogger) *Monitor {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if opts.Interval <= 0 {
		opts.Interval = config.SampleInterval
	}
	return &Monitor{
		src:    src,
		opts:   opts,
		det:    NewDetector(opts.Detector),
		logger: logger,
	}
}

// SetObserver registers the sample observer. Call before Start.
func (m *Monitor) SetObserver(o Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observer = o
}

// OnEvent adds an event handler. Call before Start.
func (m *Monitor) OnEvent(h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, h)
}

// Start subscribes to the source and begins processing samples in a
// goroutine. An unavailable sensor is logged and leaves the monitor idle.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return ErrAlreadyStarted
	}

	sub, err := m.src.Subscribe(m.opts.Interval)
	if err != nil {
		if errors.Is(err, ErrSensorUnavailable) {
			m.logger.Warnf("accelerometer not available, motion feedback disabled: %v", err)
		} else {
			m.logger.Errorf("accelerometer subscribe failed: %v", err)
		}
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	m.running = true
	m.det.Reset()

	handlers := append([]Handler(nil), m.handlers...)
	observer := m.observer
	if observer != nil {
		observer.SetSensorActive(true)
	}

	m.logger.Infof("motion monitor started, interval=%s cooldown=%s", m.opts.Interval, m.opts.Detector.Cooldown)
	go m.loop(ctx, sub, observer, handlers, m.done)
	return nil
}

func (m *Monitor) loop(ctx context.Context, sub Subscription, observer Observer, handlers []Handler, done chan struct{}) {
	defer close(done)
	defer func() {
		sub.Unsubscribe()
		if observer != nil {
			observer.SetSensorActive(false)
		}
		m.mu.Lock()
		if m.done == done {
			m.running = false
		}
		m.mu.Unlock()
	}()

	samples := sub.Samples()
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-samples:
			if !ok {
				if err := sub.Err(); err != nil {
					m.logger.Errorf("accelerometer stream ended: %v", err)
				} else {
					m.logger.Infof("accelerometer stream closed")
				}
				return
			}
			if ctx.Err() != nil {
				return
			}
			m.process(s, observer, handlers)
		}
	}
}

func (m *Monitor) process(s Sample, observer Observer, handlers []Handler) {
	if observer != nil {
		observer.ObserveSample(s)
	}
	for _, ev := range m.det.Observe(s) {
		m.logger.Debugf("motion event axis=%s delta=%.3f", ev.Axis, ev.Delta)
		for _, h := range handlers {
			h(ev)
		}
	}
}

// Stop halts the sample loop and releases the sensor. It returns once no
// further events can be emitted. Safe to call more than once.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel, done := m.cancel, m.done
	m.running = false
	m.mu.Unlock()

	cancel()
	<-done
	m.logger.Infof("motion monitor stopped")
}

// Done is closed when the current sample loop exits, whether by Stop or by
// the stream ending. It returns nil if the monitor was never started.
func (m *Monitor) Done() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done
}
