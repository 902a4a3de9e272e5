// Package state holds everything the presentation layer may observe. All
// writes go through one serialized path; readers only ever see copies.
package state

import (
	"sync"
	"time"

	"ble-pulse.klederson.com/internal/bluetooth"
	"ble-pulse.klederson.com/internal/config"
	"ble-pulse.klederson.com/internal/motion"
)

// Store is the published state container.
type Store struct {
	mu   sync.Mutex
	snap Snapshot
	subs map[int]chan Snapshot
	next int
	now  func() time.Time
}

// NewStore creates a store at rest: every axis idle, distance unknown.
func NewStore() *Store {
	s := &Store{
		subs: make(map[int]chan Snapshot),
		now:  time.Now,
	}
	for _, a := range motion.Axes {
		s.snap.Axes[a] = AxisView{
			Axis:    a,
			Scale:   config.RestScale,
			Opacity: config.RestOpacity,
		}
	}
	s.snap.Distance = bluetooth.UnknownDistance
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.clone()
}

// Subscribe returns a channel that receives a snapshot after every change.
// A subscriber that falls behind loses the oldest pending snapshot, never
// the newest. Call cancel to unsubscribe; it closes the channel.
func (s *Store) Subscribe(buffer int) (<-chan Snapshot, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Snapshot, buffer)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	ch <- s.snap.clone()
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// update applies fn under the lock and fans the result out.
func (s *Store) update(fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.snap)
	s.snap.Seq++
	s.snap.UpdatedAt = s.now()

	for _, ch := range s.subs {
		snap := s.snap.clone()
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// SetAxisPulse publishes a pulse stage for one axis: the presentation should
// animate toward scale/opacity over the given duration.
func (s *Store) SetAxisPulse(a motion.Axis, phase Phase, scale, opacity float64, animation time.Duration) {
	s.update(func(snap *Snapshot) {
		av := &snap.Axes[a]
		if phase == PhaseExpanding {
			av.Pulses++
		}
		av.Phase = phase
		av.Scale = scale
		av.Opacity = opacity
		av.Animation = animation
	})
}

// ObserveSample publishes raw readings and circle offsets.
func (s *Store) ObserveSample(sample motion.Sample) {
	s.update(func(snap *Snapshot) {
		for _, a := range motion.Axes {
			av := &snap.Axes[a]
			av.Value = sample.Component(a)
			av.OffsetX, av.OffsetY = sample.Offset(a, config.OffsetFactor)
		}
	})
}

// SetSensorActive records whether the accelerometer stream is running.
func (s *Store) SetSensorActive(active bool) {
	s.update(func(snap *Snapshot) { snap.SensorActive = active })
}

// SetPeers replaces the discovered peer list.
func (s *Store) SetPeers(peers []bluetooth.Peer) {
	cp := append([]bluetooth.Peer(nil), peers...)
	s.update(func(snap *Snapshot) { snap.Peers = cp })
}

// SetDistance publishes the latest estimated distance in meters.
func (s *Store) SetDistance(meters float64) {
	s.update(func(snap *Snapshot) { snap.Distance = meters })
}

// SetAdvertising records the broadcast state.
func (s *Store) SetAdvertising(on bool) {
	s.update(func(snap *Snapshot) { snap.Advertising = on })
}

// SetScanning records the discovery state.
func (s *Store) SetScanning(on bool) {
	s.update(func(snap *Snapshot) { snap.Scanning = on })
}

// SetRadio records the last readiness reported by the radio.
func (s *Store) SetRadio(r bluetooth.Readiness) {
	s.update(func(snap *Snapshot) { snap.Radio = r })
}
