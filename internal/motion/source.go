package motion

import (
	"sync"
	"time"
)

// Source is anything that can stream accelerometer samples: a real IMU, the
// demo generator, or a replay.
type Source interface {
	// Subscribe starts delivering samples at roughly the given interval.
	// It returns ErrSensorUnavailable (possibly wrapped) when the hardware is
	// missing or not authorized.
	Subscribe(interval time.Duration) (Subscription, error)
}

// Subscription is a live sample stream.
type Subscription interface {
	// Samples is closed when the source stops or fails.
	Samples() <-chan Sample
	// Err reports why the stream ended, nil for a clean stop.
	Err() error
	// Unsubscribe releases the sensor. Safe to call more than once.
	Unsubscribe()
}

// pollSubscription drives a read function from a ticker, the way the IMU
// producers poll their hardware.
type pollSubscription struct {
	samples chan Sample
	stop    chan struct{}
	done    chan struct{}
	release func()
	once    sync.Once

	mu  sync.Mutex
	err error
}

func startPolling(interval time.Duration, read func(time.Time) (Sample, error), release func()) *pollSubscription {
	p := &pollSubscription{
		samples: make(chan Sample),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		release: release,
	}
	go p.loop(interval, read)
	return p
}

func (p *pollSubscription) loop(interval time.Duration, read func(time.Time) (Sample, error)) {
	defer close(p.done)
	defer close(p.samples)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case t := <-ticker.C:
			s, err := read(t)
			if err != nil {
				p.mu.Lock()
				p.err = err
				p.mu.Unlock()
				return
			}
			select {
			case p.samples <- s:
			case <-p.stop:
				return
			}
		}
	}
}

func (p *pollSubscription) Samples() <-chan Sample {
	return p.samples
}

func (p *pollSubscription) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *pollSubscription) Unsubscribe() {
	p.once.Do(func() {
		close(p.stop)
		<-p.done
		if p.release != nil {
			p.release()
		}
	})
}
