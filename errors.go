package mal

import "errors"

// Sentinel errors returned by Mal's constructors and mutators. Callers
// compare with errors.Is rather than matching error strings, following
// the error-kinds table in the engine's design document.
var (
	// ErrBackendUnavailable wraps any error from backend.NewAuto in
	// Create. NewAuto falls back to a mock backend (no audio output)
	// instead of failing when no real device can be opened, so a
	// missing device or permission does not make Create fail.
	ErrBackendUnavailable = errors.New("mal: audio backend unavailable")

	// ErrInvalidFormat is returned when a requested PCM format fails
	// Context.IsFormatValid.
	ErrInvalidFormat = errors.New("mal: invalid format")

	// ErrInvalidArgument covers zero-length buffers, nil data, and
	// other caller-fixable argument errors.
	ErrInvalidArgument = errors.New("mal: invalid argument")

	// ErrPoolExhausted is returned by Context.CreatePlayer when the context's
	// voice/bus pool is full and the backend cannot grow it further.
	ErrPoolExhausted = errors.New("mal: player pool exhausted")

	// ErrStateRejected names a state transition that is not legal from
	// the current state (most commonly: Playing requested with no
	// buffer attached). Player.SetState reports such a rejection by
	// returning false; nothing in this package returns this error.
	ErrStateRejected = errors.New("mal: state transition rejected")

	// ErrFreed is returned by operations attempted on an object whose
	// Free method has already run.
	ErrFreed = errors.New("mal: object already freed")
)
