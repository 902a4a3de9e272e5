package bluetooth

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
)

// AdvertisingSink receives broadcast state changes.
type AdvertisingSink interface {
	SetAdvertising(on bool)
}

// Broadcaster advertises the identity token whenever the radio is powered
// on, so a remote Discovery can find this device.
type Broadcaster struct {
	adv      Advertiser
	identity string
	logger   *zap.SugaredLogger
	sink     AdvertisingSink

	advertising atomic.Bool
}

// NewBroadcaster creates a broadcaster for identity.
func NewBroadcaster(adv Advertiser, identity string, logger *zap.SugaredLogger) *Broadcaster {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Broadcaster{
		adv:      adv,
		identity: identity,
		logger:   logger,
	}
}

// SetSink registers where advertising state is published. Call before Run.
func (b *Broadcaster) SetSink(s AdvertisingSink) {
	b.sink = s
}

// Advertising reports whether the identity is currently on air.
func (b *Broadcaster) Advertising() bool {
	return b.advertising.Load()
}

// Run follows radio readiness until ctx ends, then stops advertising.
func (b *Broadcaster) Run(ctx context.Context) error {
	readiness := b.adv.Readiness(ctx)
	defer b.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case r, ok := <-readiness:
			if !ok {
				return nil
			}
			b.apply(r)
		}
	}
}

func (b *Broadcaster) apply(r Readiness) {
	if !r.Ready() {
		if b.Advertising() {
			b.stop()
			b.logger.Infof("advertising stopped; state: %s", r)
		} else {
			b.logger.Infof("peripheral state: %s", r)
		}
		return
	}

	if b.Advertising() {
		return
	}
	if err := b.adv.StartAdvertising(b.identity); err != nil {
		b.logger.Warnf("advertising %q failed: %v", b.identity, err)
		return
	}
	b.setAdvertising(true)
	b.logger.Infof("advertising started as %q", b.identity)
}

func (b *Broadcaster) stop() {
	if !b.Advertising() {
		return
	}
	if err := b.adv.StopAdvertising(); err != nil {
		b.logger.Warnf("stop advertising: %v", err)
	}
	b.setAdvertising(false)
}

func (b *Broadcaster) setAdvertising(on bool) {
	b.advertising.Store(on)
	if b.sink != nil {
		b.sink.SetAdvertising(on)
	}
}
