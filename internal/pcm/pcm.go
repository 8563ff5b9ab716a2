// Package pcm holds the small set of byte-layout helpers the engine
// needs to validate and size linear PCM buffers. It deliberately does
// not include resampling, mixing, or normalization: format conversion
// and software mixing are non-goals of the engine (see SPEC_FULL.md
// §1 Non-goals), so those helpers were cut rather than carried over.
package pcm

import "fmt"

// BytesPerFrame returns the byte length of one interleaved frame for
// the given bit depth and channel count.
func BytesPerFrame(bitDepth, numChannels uint8) int {
	return int(numChannels) * int(bitDepth) / 8
}

// ByteLength returns the total byte length of numFrames frames at the
// given bit depth and channel count.
func ByteLength(numFrames int, bitDepth, numChannels uint8) int {
	return numFrames * BytesPerFrame(bitDepth, numChannels)
}

// Validate checks that data is a non-empty payload holding a whole
// number of frames for the given bit depth and channel count.
func Validate(data []byte, bitDepth, numChannels uint8) error {
	if len(data) == 0 {
		return fmt.Errorf("pcm: empty data")
	}
	bpf := BytesPerFrame(bitDepth, numChannels)
	if bpf == 0 {
		return fmt.Errorf("pcm: invalid format (bitDepth=%d numChannels=%d)", bitDepth, numChannels)
	}
	if len(data)%bpf != 0 {
		return fmt.Errorf("pcm: data length %d is not aligned to %d-byte frames", len(data), bpf)
	}
	return nil
}

// NumFrames returns the number of complete frames held in data.
func NumFrames(data []byte, bitDepth, numChannels uint8) int {
	bpf := BytesPerFrame(bitDepth, numChannels)
	if bpf == 0 {
		return 0
	}
	return len(data) / bpf
}
