package mal

import "fmt"

// Format describes the layout of linear PCM data: sample rate in Hz,
// bit depth per sample, and channel count. Equality is exact on all
// three fields.
type Format struct {
	SampleRate  float64
	BitDepth    uint8
	NumChannels uint8
}

// BytesPerFrame returns the byte length of one interleaved frame
// (one sample per channel).
func (f Format) BytesPerFrame() int {
	return int(f.NumChannels) * int(f.BitDepth) / 8
}

// valid reports whether f satisfies the backend-independent format
// constraints: bitDepth in {8,16}, numChannels in {1,2}, sampleRate > 0.
// Backends may impose additional constraints via Context.IsFormatValid.
func (f Format) valid() bool {
	if f.SampleRate <= 0 {
		return false
	}
	switch f.BitDepth {
	case 8, 16:
	default:
		return false
	}
	switch f.NumChannels {
	case 1, 2:
	default:
		return false
	}
	return true
}

func (f Format) String() string {
	return fmt.Sprintf("%gHz/%dbit/%dch", f.SampleRate, f.BitDepth, f.NumChannels)
}

// PlayerState is the playback state of a Player.
type PlayerState int

const (
	// Stopped is the initial state and the state reached after an
	// explicit stop, an implicit stop, or end-of-stream.
	Stopped PlayerState = iota
	// Playing indicates the render path is actively advancing the
	// player's cursor.
	Playing
	// Paused indicates playback is suspended at the current cursor
	// position and will resume from there on the next Playing transition.
	Paused
)

func (s PlayerState) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// Route is an abstract output destination. It is informational only;
// Mal does not let callers select a route, only query whether one is
// active on backends that report routing.
type Route int

const (
	RouteReceiver Route = iota
	RouteSpeaker
	RouteHeadphones
	RouteLineOut
	RouteWireless
)

func (r Route) String() string {
	switch r {
	case RouteReceiver:
		return "receiver"
	case RouteSpeaker:
		return "speaker"
	case RouteHeadphones:
		return "headphones"
	case RouteLineOut:
		return "line-out"
	case RouteWireless:
		return "wireless"
	default:
		return "unknown"
	}
}
