package bluetooth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func runBroadcaster(t *testing.T, radio *fakeRadio) (*Broadcaster, *recordingSink, context.CancelFunc, chan error) {
	t.Helper()
	b := NewBroadcaster(radio, "MyWatchApp", zaptest.NewLogger(t).Sugar())
	sink := &recordingSink{}
	b.SetSink(sink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()
	return b, sink, cancel, done
}

func TestBroadcaster_FollowsReadiness(t *testing.T) {
	radio := newFakeRadio()
	b, sink, cancel, done := runBroadcaster(t, radio)

	radio.readiness <- ReadinessPoweredOn
	radio.readiness <- ReadinessPoweredOn
	require.Eventually(t, b.Advertising, time.Second, 5*time.Millisecond)

	starts, stops := radio.counts()
	assert.Equal(t, 1, starts)
	assert.Zero(t, stops)
	assert.Equal(t, "MyWatchApp", radio.advName)

	for _, r := range []Readiness{ReadinessPoweredOff, ReadinessUnauthorized, ReadinessUnsupported} {
		radio.readiness <- r
	}
	radio.readiness <- ReadinessResetting
	assert.False(t, b.Advertising())
	_, stops = radio.counts()
	assert.Equal(t, 1, stops, "stop is issued once per advertising session")

	radio.readiness <- ReadinessPoweredOn
	cancel()
	require.NoError(t, <-done)

	starts, stops = radio.counts()
	assert.Equal(t, 2, starts)
	assert.Equal(t, 2, stops, "shutdown stops advertising cleanly")
	assert.False(t, b.Advertising())

	sink.mu.Lock()
	assert.Equal(t, []bool{true, false, true, false}, sink.advertising)
	sink.mu.Unlock()
}

func TestBroadcaster_StartFailureStaysIdle(t *testing.T) {
	radio := newFakeRadio()
	radio.startErr = errors.New("advertising not supported")
	b, sink, cancel, done := runBroadcaster(t, radio)

	radio.readiness <- ReadinessPoweredOn
	radio.readiness <- ReadinessPoweredOff
	cancel()
	require.NoError(t, <-done)

	assert.False(t, b.Advertising())
	_, stops := radio.counts()
	assert.Zero(t, stops)
	assert.Empty(t, sink.advertising)
}

func TestBroadcaster_ReadinessClosed(t *testing.T) {
	radio := newFakeRadio()
	b, _, cancel, done := runBroadcaster(t, radio)
	defer cancel()

	radio.readiness <- ReadinessPoweredOn
	close(radio.readiness)
	require.NoError(t, <-done)
	assert.False(t, b.Advertising())
}
