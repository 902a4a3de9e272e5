package bluetooth

import (
	"context"
	"fmt"
	"time"
)

// Readiness mirrors the power/authorization states a platform radio reports.
type Readiness int

const (
	ReadinessUnknown Readiness = iota
	ReadinessResetting
	ReadinessUnsupported
	ReadinessUnauthorized
	ReadinessPoweredOff
	ReadinessPoweredOn
)

func (r Readiness) String() string {
	switch r {
	case ReadinessResetting:
		return "resetting"
	case ReadinessUnsupported:
		return "unsupported"
	case ReadinessUnauthorized:
		return "unauthorized"
	case ReadinessPoweredOff:
		return "powered-off"
	case ReadinessPoweredOn:
		return "powered-on"
	case ReadinessUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("readiness(%d)", int(r))
	}
}

// MarshalText encodes the readiness name.
func (r Readiness) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Ready reports whether the radio can advertise and scan.
func (r Readiness) Ready() bool {
	return r == ReadinessPoweredOn
}

// Advertisement is one received advertising packet.
type Advertisement struct {
	LocalName string // empty when the packet carries no name
	PeerID    string // platform-assigned device identifier
	RSSI      int16
	Vendor    string // manufacturer name, empty when absent or unknown
	SeenAt    time.Time
}

// ReadinessNotifier streams radio readiness changes. The channel delivers the
// current state first and is closed when ctx ends.
type ReadinessNotifier interface {
	Readiness(ctx context.Context) <-chan Readiness
}

// Advertiser can broadcast this device's identity.
type Advertiser interface {
	ReadinessNotifier
	StartAdvertising(localName string) error
	StopAdvertising() error
}

// Scanner can listen for advertisements. The returned channel is closed when
// ctx ends or the radio stops scanning.
type Scanner interface {
	ReadinessNotifier
	Scan(ctx context.Context) (<-chan Advertisement, error)
}

// Radio is a full BLE stack: both roles run concurrently on each device.
type Radio interface {
	Advertiser
	Scanner
}
