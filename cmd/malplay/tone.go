package main

import (
	"encoding/binary"
	"math"

	"github.com/brackeen/mal"
)

// sineTone generates a mono 16-bit PCM buffer holding a pure tone at
// frequencyHz for the given duration, for use as malplay's demo
// payload. The engine itself has no tone generator (decoding and
// synthesis are non-goals; see SPEC_FULL.md §1), so this lives in the
// CLI, not the library.
func sineTone(format mal.Format, frequencyHz float64, numFrames int) []byte {
	data := make([]byte, numFrames*2)
	for i := 0; i < numFrames; i++ {
		t := float64(i) / format.SampleRate
		sample := math.Sin(2 * math.Pi * frequencyHz * t)
		v := int16(sample * 0.5 * math.MaxInt16)
		binary.LittleEndian.PutUint16(data[i*2:], uint16(v))
	}
	return data
}
