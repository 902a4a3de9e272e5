package bluetooth

import "errors"

var (
	ErrAdapterUnavailable = errors.New("bluetooth adapter unavailable")
	ErrNotReady           = errors.New("bluetooth radio not powered on")
)
