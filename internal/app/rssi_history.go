package app

// RSSIRing is a circular buffer of RSSI samples for one peer.
type RSSIRing struct {
	peer  string
	buf   []float64
	pos   int
	count int
}

// NewRSSIRing creates an empty ring with the given capacity.
func NewRSSIRing(capacity int) *RSSIRing {
	if capacity < 1 {
		capacity = 1
	}
	return &RSSIRing{buf: make([]float64, capacity)}
}

// Track switches the ring to peer, dropping history that belongs to another.
func (r *RSSIRing) Track(peer string) {
	if peer == r.peer {
		return
	}
	r.peer = peer
	r.pos, r.count = 0, 0
}

// Peer is the peer whose samples are held.
func (r *RSSIRing) Peer() string { return r.peer }

// Push adds a value to the ring buffer.
func (r *RSSIRing) Push(val float64) {
	r.buf[r.pos] = val
	r.pos = (r.pos + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// Values returns all stored values in chronological order.
func (r *RSSIRing) Values() []float64 {
	if r.count == 0 {
		return nil
	}
	result := make([]float64, r.count)
	if r.count < len(r.buf) {
		copy(result, r.buf[:r.count])
		return result
	}
	n := copy(result, r.buf[r.pos:])
	copy(result[n:], r.buf[:r.pos])
	return result
}

// Len returns the number of stored values.
func (r *RSSIRing) Len() int {
	return r.count
}
