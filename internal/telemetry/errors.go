package telemetry

import "errors"

// ErrNotConnected is returned when publishing before Connect succeeded.
var ErrNotConnected = errors.New("telemetry: not connected to broker")
