package backend

import "errors"

var (
	// ErrBackendOpenFailed is returned when the native output device
	// could not be opened (no device, permission denied, driver error).
	ErrBackendOpenFailed = errors.New("backend: failed to open audio device")

	// ErrContextClosed is returned by operations attempted on a
	// Context after Close has run.
	ErrContextClosed = errors.New("backend: context closed")
)
