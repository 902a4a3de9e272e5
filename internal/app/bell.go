package app

import (
	"io"
	"sync"

	"ble-pulse.klederson.com/internal/feedback"
)

// Bell rings the terminal bell as a stand-in haptic: one ring when a pulse
// starts, nothing when it settles.
type Bell struct {
	mu sync.Mutex
	w  io.Writer
}

// NewBell writes BEL characters to w, normally the controlling terminal.
func NewBell(w io.Writer) *Bell {
	return &Bell{w: w}
}

// Play implements feedback.Haptics.
func (b *Bell) Play(c feedback.Cue) {
	if c != feedback.CuePositive {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, _ = b.w.Write([]byte{'\a'})
}
