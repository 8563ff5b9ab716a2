// Package backend is the Go expression of SPEC_FULL.md §4.4's backend
// adaptation contract. Rather than binding directly to AudioToolbox or
// OpenSLES via cgo (translated-C is not idiomatic Go, and the exercise
// this module was built under explicitly steers away from it), every
// backend here is built on top of github.com/ebitengine/oto/v3, which
// already wraps Core Audio, OpenSL ES/AAudio, ALSA, WASAPI and Web
// Audio behind one io.Reader-pull model — exactly the shape the
// abstract contract needs.
package backend

import (
	"context"
	"io"
	"time"
)

// Voice is the backend-native playback object behind a Player: one
// hardware voice/bus. It corresponds to the per-player half of
// SPEC_FULL.md §4.4 (backendPlayerInit..backendPlayerSetState).
type Voice interface {
	// Play starts or resumes pulling PCM from the io.Reader this voice
	// was created with.
	Play()
	// Pause suspends pulling without losing the read position.
	Pause()
	// IsPlaying reports whether the backend believes it is actively
	// pulling frames. This can lag a Stopped transition driven purely
	// by end-of-stream until the backend's pull loop observes it.
	IsPlaying() bool
	// SetVolume sets this voice's linear gain in [0,1].
	SetVolume(volume float64)
	Volume() float64
	// Close releases the backend voice. Idempotent.
	Close() error
}

// Context is the backend-native output device/session behind a
// mal.Context. It corresponds to the context half of SPEC_FULL.md
// §4.4 (backendContextInit..backendContextSetGain).
type Context interface {
	// NewVoice allocates a backend voice pulling PCM from r.
	NewVoice(r io.Reader) (Voice, error)
	SampleRate() int
	ChannelCount() int
	// SetActive implements Context.SetActive's backend half: suspend
	// on false, resume on true. Idempotent on repeated same-state calls.
	SetActive(active bool) error
	IsActive() bool
	Close() error
}

// Policy carries the per-platform constants SPEC_FULL.md §4.1, §9 and
// §12 describe for the two in-scope native backends (Core Audio and
// OpenSL ES). A Context picks one Policy at creation time based on
// runtime.GOOS (see platform.go) and applies it uniformly instead of
// branching backend-specific code through the rest of the engine.
type Policy struct {
	// Name identifies the policy for logging ("coreaudio", "opensl").
	Name string

	// InitialBuses and MaxBuses parameterize the voice pool
	// (SPEC_FULL.md §4.1 "Bus allocation"). MaxBuses of 0 means
	// unbounded growth.
	InitialBuses int
	MaxBuses     int

	// ReclaimVoicesOnDeactivate mirrors OpenSL's "destroy unused
	// players when paused" resource policy (SPEC_FULL.md §5, §12): on
	// SetActive(false) the backend voices of players that are not
	// Playing are disposed, while Playing voices are kept. SetActive(true)
	// gives a new voice only to a Playing player that has none; a Paused
	// player whose voice was disposed is not given one on reactivation
	// and gets a new voice when it next resumes.
	ReclaimVoicesOnDeactivate bool

	// ActivationRampFrames is the nominal output-fade window in frames
	// for an activation-state change (Core Audio default: 4096).
	// Zero means no ramp (immediate start/stop).
	ActivationRampFrames int

	// PauseRamp and ResumeRamp are the per-player gain-ramp durations
	// used to avoid audible clicks on Pause/Playing transitions
	// (SPEC_FULL.md §4.3 step 4, §12).
	PauseRamp  time.Duration
	ResumeRamp time.Duration

	// PreferredSampleRate is returned when a caller asks for sample
	// rate 0 (the original's Android 44,100 Hz fallback; SPEC_FULL.md
	// §12).
	PreferredSampleRate float64
}

// FramesToDuration converts a frame count at sampleRate into a
// time.Duration, used to translate ActivationRampFrames into a
// wall-clock ramp length for the oto-based render path.
func FramesToDuration(frames int, sampleRate float64) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(frames) / sampleRate * float64(time.Second))
}

// bgContext is a background context.Context for backends that need
// one for bounded waits. No backend in this package reads it:
// NewOtoContext bounds its wait on oto's ready channel with
// time.After, and Create takes no context.Context parameter.
var bgContext = context.Background()
