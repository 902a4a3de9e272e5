package bluetooth

import (
	"context"
	"time"

	"ble-pulse.klederson.com/internal/config"
	"go.uber.org/zap"
)

// PeerSink receives discovery results for publication.
type PeerSink interface {
	SetPeers(peers []Peer)
	SetDistance(meters float64)
	SetScanning(on bool)
	SetRadio(r Readiness)
}

// DiscoveryOptions configures the peer filter and distance model.
type DiscoveryOptions struct {
	Identity    string
	Calibration Calibration
}

// DefaultDiscoveryOptions returns the shared identity token and free-space
// calibration.
func DefaultDiscoveryOptions() DiscoveryOptions {
	return DiscoveryOptions{
		Identity: config.IdentityToken,
		Calibration: Calibration{
			MeasuredPower: config.MeasuredPower,
			PathLossExp:   config.PathLossExp,
		},
	}
}

// Discovery scans for peers advertising the shared identity and tracks their
// signal strength. Scanning starts whenever the radio powers on and pauses
// while it is not ready.
type Discovery struct {
	scanner Scanner
	opts    DiscoveryOptions
	store   *PeerStore
	logger  *zap.SugaredLogger
	sink    PeerSink
	now     func() time.Time
}

// NewDiscovery creates a discovery service on top of scanner.
func NewDiscovery(scanner Scanner, opts DiscoveryOptions, logger *zap.SugaredLogger) *Discovery {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Discovery{
		scanner: scanner,
		opts:    opts,
		store:   NewPeerStore(opts.Calibration),
		logger:  logger,
		now:     time.Now,
	}
}

// SetSink registers where results are published. Call before Run.
func (d *Discovery) SetSink(s PeerSink) {
	d.sink = s
}

// Store exposes the discovered peers.
func (d *Discovery) Store() *PeerStore {
	return d.store
}

// Run drives discovery until ctx ends. Radio problems are logged, never
// returned.
func (d *Discovery) Run(ctx context.Context) error {
	readiness := d.scanner.Readiness(ctx)

	var (
		ads        <-chan Advertisement
		cancelScan context.CancelFunc = func() {}
	)
	pause := func(reason string) {
		if ads == nil {
			return
		}
		cancelScan()
		ads = nil
		d.publishScanning(false)
		d.logger.Infof("scanning paused: %s", reason)
	}
	defer func() { pause("shutting down") }()

	for {
		select {
		case <-ctx.Done():
			return nil

		case r, ok := <-readiness:
			if !ok {
				return nil
			}
			if d.sink != nil {
				d.sink.SetRadio(r)
			}
			if !r.Ready() {
				if ads == nil {
					d.logger.Infof("central state: %s", r)
				}
				pause(r.String())
				continue
			}
			if ads != nil {
				continue
			}
			scanCtx, cancel := context.WithCancel(ctx)
			ch, err := d.scanner.Scan(scanCtx)
			if err != nil {
				cancel()
				d.logger.Warnf("scan start failed: %v", err)
				continue
			}
			ads, cancelScan = ch, cancel
			d.publishScanning(true)
			d.logger.Infof("scanning started for %q", d.opts.Identity)

		case adv, ok := <-ads:
			if !ok {
				pause("radio stopped scanning")
				continue
			}
			d.handle(adv)
		}
	}
}

// handle applies one advertisement. Anything not carrying the identity
// token is dropped without a trace.
func (d *Discovery) handle(adv Advertisement) {
	if adv.LocalName != d.opts.Identity {
		return
	}

	seenAt := adv.SeenAt
	if seenAt.IsZero() {
		seenAt = d.now()
	}

	peer, created := d.store.Upsert(adv.PeerID, adv.RSSI, adv.Vendor, seenAt)
	if created {
		d.logger.Infof("discovered %s (%s) with RSSI %d", adv.LocalName, peer.ID, peer.RSSI)
	} else {
		d.logger.Debugf("peer %s RSSI %d, ~%.2fm", peer.ID, peer.RSSI, peer.Distance)
	}

	if d.sink == nil {
		return
	}
	d.sink.SetPeers(d.store.Snapshot())
	if primary, ok := d.store.Primary(); ok {
		d.sink.SetDistance(primary.Distance)
	}
}

func (d *Discovery) publishScanning(on bool) {
	if d.sink != nil {
		d.sink.SetScanning(on)
	}
}
