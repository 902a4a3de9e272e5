package bluetooth

import (
	"math"
	"time"
)

// UnknownDistance is reported when a reading carries no signal strength.
const UnknownDistance = -1.0

// Peer is a discovered device advertising the shared identity.
type Peer struct {
	ID        string    `json:"id"`
	RSSI      int16     `json:"rssi"`
	Distance  float64   `json:"distance"` // Estimated distance in meters
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
	Sightings int       `json:"sightings"`
	Vendor    string    `json:"vendor,omitempty"` // From manufacturer data, when known
}

// Calibration holds the constants of the log-distance path loss model.
type Calibration struct {
	MeasuredPower float64 // RSSI at 1 meter (dBm)
	PathLossExp   float64 // Environment factor, 2.0 in free space
}

// Distance estimates meters for an RSSI reading with this calibration.
func (c Calibration) Distance(rssi int16) float64 {
	return RSSIToDistance(rssi, c.MeasuredPower, c.PathLossExp)
}

// RSSIToDistance estimates distance from RSSI using the log-distance path loss model.
// Formula: d = 10^((measuredPower - rssi) / (10 * n))
// A zero reading means "no signal strength" and yields UnknownDistance.
func RSSIToDistance(rssi int16, measuredPower, pathLossExp float64) float64 {
	if rssi == 0 {
		return UnknownDistance
	}
	return math.Pow(10, (measuredPower-float64(rssi))/(10*pathLossExp))
}
