package bluetooth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"tinygo.org/x/bluetooth"
)

// AdapterRadio is a Radio backed by the host Bluetooth adapter.
type AdapterRadio struct {
	adapter *bluetooth.Adapter
	logger  *zap.SugaredLogger

	enableOnce sync.Once
	state      Readiness
	enableErr  error

	mu  sync.Mutex
	adv *bluetooth.Advertisement
}

// NewAdapterRadio wraps the default adapter. The adapter is enabled lazily,
// on the first readiness request.
func NewAdapterRadio(logger *zap.SugaredLogger) *AdapterRadio {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &AdapterRadio{
		adapter: bluetooth.DefaultAdapter,
		logger:  logger,
	}
}

func (r *AdapterRadio) enable() Readiness {
	r.enableOnce.Do(func() {
		if err := r.adapter.Enable(); err != nil {
			r.enableErr = fmt.Errorf("%w: %w (try running with sudo or setcap cap_net_admin+ep)", ErrAdapterUnavailable, err)
			r.state = classifyEnableError(err)
			r.logger.Warnf("bluetooth adapter: %v", r.enableErr)
			return
		}
		r.state = ReadinessPoweredOn
	})
	return r.state
}

// Err returns the adapter enable error, if any.
func (r *AdapterRadio) Err() error {
	r.enable()
	return r.enableErr
}

func classifyEnableError(err error) Readiness {
	if errors.Is(err, os.ErrPermission) {
		return ReadinessUnauthorized
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "permission") || strings.Contains(msg, "not authorized") || strings.Contains(msg, "access denied") {
		return ReadinessUnauthorized
	}
	return ReadinessUnsupported
}

// Readiness reports the adapter state once. The host stack gives no power
// notifications, so the state never changes afterwards.
func (r *AdapterRadio) Readiness(ctx context.Context) <-chan Readiness {
	ch := make(chan Readiness, 1)
	go func() {
		defer close(ch)
		select {
		case ch <- r.enable():
		case <-ctx.Done():
			return
		}
		<-ctx.Done()
	}()
	return ch
}

// StartAdvertising puts localName on air.
func (r *AdapterRadio) StartAdvertising(localName string) error {
	if !r.enable().Ready() {
		return ErrNotReady
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	adv := r.adapter.DefaultAdvertisement()
	if err := adv.Configure(bluetooth.AdvertisementOptions{LocalName: localName}); err != nil {
		return fmt.Errorf("configure advertisement: %w", err)
	}
	if err := adv.Start(); err != nil {
		return fmt.Errorf("start advertisement: %w", err)
	}
	r.adv = adv
	return nil
}

// StopAdvertising takes the advertisement off air.
func (r *AdapterRadio) StopAdvertising() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.adv == nil {
		return nil
	}
	err := r.adv.Stop()
	r.adv = nil
	if err != nil {
		return fmt.Errorf("stop advertisement: %w", err)
	}
	return nil
}

// Scan begins BLE scanning in a goroutine. The stream ends when ctx does.
func (r *AdapterRadio) Scan(ctx context.Context) (<-chan Advertisement, error) {
	if !r.enable().Ready() {
		return nil, ErrNotReady
	}

	ch := make(chan Advertisement, 32)
	go func() {
		<-ctx.Done()
		_ = r.adapter.StopScan()
	}()

	go func() {
		defer close(ch)
		err := r.adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
			var companies []uint16
			for _, md := range result.ManufacturerData() {
				companies = append(companies, md.CompanyID)
			}
			adv := Advertisement{
				LocalName: result.LocalName(),
				PeerID:    result.Address.String(),
				RSSI:      result.RSSI,
				Vendor:    firstVendor(companies...),
				SeenAt:    time.Now(),
			}
			select {
			case ch <- adv:
			case <-ctx.Done():
			}
		})
		if err != nil && ctx.Err() == nil {
			r.logger.Warnf("ble scan ended: %v", err)
		}
	}()

	return ch, nil
}
