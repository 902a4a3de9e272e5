package bluetooth

import (
	"sync"
	"time"

	"github.com/XieJCHenry/gokits/collections/slice"
)

// PeerStore is a thread-safe, insertion-ordered set of discovered peers.
// Entries are updated in place and never removed within a session.
type PeerStore struct {
	mu    sync.RWMutex
	order slice.Slice[*Peer]
	index map[string]*Peer
	cal   Calibration
}

// NewPeerStore creates an empty store that estimates distance with cal.
func NewPeerStore(cal Calibration) *PeerStore {
	return &PeerStore{
		order: slice.New[*Peer](),
		index: make(map[string]*Peer),
		cal:   cal,
	}
}

// Upsert records a sighting. A new ID is appended at the end; a known ID
// has its RSSI, distance and last-seen time overwritten. An empty vendor
// keeps the one already known. Returns a copy of the stored peer and
// whether it was created.
func (s *PeerStore) Upsert(id string, rssi int16, vendor string, seenAt time.Time) (Peer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dist := s.cal.Distance(rssi)

	if existing, ok := s.index[id]; ok {
		existing.RSSI = rssi
		existing.Distance = dist
		existing.LastSeen = seenAt
		existing.Sightings++
		if vendor != "" {
			existing.Vendor = vendor
		}
		return *existing, false
	}

	p := &Peer{
		ID:        id,
		RSSI:      rssi,
		Distance:  dist,
		FirstSeen: seenAt,
		LastSeen:  seenAt,
		Sightings: 1,
		Vendor:    vendor,
	}
	s.index[id] = p
	s.order.Append(p)
	return *p, true
}

// Snapshot returns copies of all peers in discovery order.
func (s *PeerStore) Snapshot() []Peer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Peer, 0, s.order.Size())
	for i := 0; i < s.order.Size(); i++ {
		result = append(result, *s.order.At(i))
	}
	return result
}

// Primary returns the first peer ever discovered, the one the distance
// readout follows.
func (s *PeerStore) Primary() (Peer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.order.Size() == 0 {
		return Peer{}, false
	}
	return *s.order.At(0), true
}

// Closest returns the peer with the smallest known distance.
func (s *PeerStore) Closest() (Peer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *Peer
	for i := 0; i < s.order.Size(); i++ {
		p := s.order.At(i)
		if p.Distance < 0 {
			continue
		}
		if best == nil || p.Distance < best.Distance {
			best = p
		}
	}
	if best == nil {
		return Peer{}, false
	}
	return *best, true
}

// Count returns the number of known peers.
func (s *PeerStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.order.Size()
}
