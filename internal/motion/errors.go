package motion

import "errors"

var (
	ErrSensorUnavailable = errors.New("accelerometer unavailable")
	ErrAlreadyStarted    = errors.New("motion monitor already started")
)
