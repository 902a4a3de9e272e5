package bluetooth

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"
)

var mockDeviceNames = []string{
	"iPhone 15 Pro",
	"Galaxy S24 Ultra",
	"AirPods Pro",
	"Fitbit Charge 6",
	"Tile Tracker",
	"JBL Flip 6",
	"", // unnamed beacon
}

type mockDevice struct {
	id        string
	name      string
	vendor    string
	baseRSSI  float64
	phase     float64
	amplitude float64
	active    bool
}

// MockRadio simulates a powered-on radio with one cooperating peer walking
// toward and away from us among unrelated devices. Used for demo mode.
type MockRadio struct {
	mu        sync.Mutex
	state     Readiness
	watchers  map[int]chan Readiness
	nextID    int
	devices   []mockDevice
	advName   string
	advOn     bool
	tick      time.Duration
	startTime time.Time
}

// NewMockRadio creates a mock radio advertising peers as identity.
func NewMockRadio(identity string) *MockRadio {
	devices := []mockDevice{{
		id:        randomMAC(),
		name:      identity,
		vendor:    VendorName(0x004C),
		baseRSSI:  -65,
		phase:     rand.Float64() * 2 * math.Pi,
		amplitude: 12,
		active:    true,
	}}
	for _, name := range mockDeviceNames {
		devices = append(devices, mockDevice{
			id:        randomMAC(),
			name:      name,
			baseRSSI:  -40 - rand.Float64()*50, // -40 to -90 dBm
			phase:     rand.Float64() * 2 * math.Pi,
			amplitude: 3 + rand.Float64()*8,
			active:    true,
		})
	}
	return &MockRadio{
		state:     ReadinessPoweredOn,
		watchers:  make(map[int]chan Readiness),
		devices:   devices,
		tick:      200 * time.Millisecond,
		startTime: time.Now(),
	}
}

// Readiness streams the simulated power state.
func (m *MockRadio) Readiness(ctx context.Context) <-chan Readiness {
	ch := make(chan Readiness, 4)

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.watchers[id] = ch
	ch <- m.state
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.watchers, id)
		m.mu.Unlock()
		close(ch)
	}()
	return ch
}

// SetReadiness simulates the radio changing state, e.g. the user toggling
// Bluetooth off.
func (m *MockRadio) SetReadiness(r Readiness) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == r {
		return
	}
	m.state = r
	for _, ch := range m.watchers {
		select {
		case ch <- r:
		default:
		}
	}
}

// Toggle flips between powered on and off.
func (m *MockRadio) Toggle() Readiness {
	m.mu.Lock()
	next := ReadinessPoweredOff
	if m.state != ReadinessPoweredOn {
		next = ReadinessPoweredOn
	}
	m.mu.Unlock()
	m.SetReadiness(next)
	return next
}

// StartAdvertising records the advertised name.
func (m *MockRadio) StartAdvertising(localName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.Ready() {
		return ErrNotReady
	}
	m.advName = localName
	m.advOn = true
	return nil
}

// StopAdvertising clears the advertisement.
func (m *MockRadio) StopAdvertising() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advOn = false
	return nil
}

// Advertising returns the name on air, if any.
func (m *MockRadio) Advertising() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.advName, m.advOn
}

// Scan emits simulated advertisements until ctx ends.
func (m *MockRadio) Scan(ctx context.Context) (<-chan Advertisement, error) {
	m.mu.Lock()
	ready := m.state.Ready()
	m.mu.Unlock()
	if !ready {
		return nil, ErrNotReady
	}

	ch := make(chan Advertisement, len(m.devices))
	go m.loop(ctx, ch)
	return ch, nil
}

func (m *MockRadio) loop(ctx context.Context, ch chan<- Advertisement) {
	defer close(ch)

	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for _, adv := range m.emit(now) {
				select {
				case ch <- adv:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

func (m *MockRadio) emit(now time.Time) []Advertisement {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := now.Sub(m.startTime).Seconds()
	var out []Advertisement
	for i := range m.devices {
		d := &m.devices[i]

		// The cooperating peer never disappears.
		if i > 0 && rand.Float64() < 0.005 {
			d.active = !d.active
		}
		if !d.active {
			continue
		}

		// Sinusoidal RSSI fluctuation + noise
		rssi := d.baseRSSI + d.amplitude*math.Sin(t*0.3+d.phase) + (rand.Float64()-0.5)*4
		if rssi > -1 {
			rssi = -1
		}

		out = append(out, Advertisement{
			LocalName: d.name,
			PeerID:    d.id,
			RSSI:      int16(rssi),
			SeenAt:    now,
		})
	}
	return out
}

func randomMAC() string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = byte(rand.Intn(256))
	}
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", b[0], b[1], b[2], b[3], b[4], b[5])
}
