package pcm

import "testing"

func TestByteLength(t *testing.T) {
	cases := []struct {
		frames      int
		bitDepth    uint8
		numChannels uint8
		want        int
	}{
		{22050, 16, 1, 44100},
		{1000, 16, 2, 4000},
		{1000, 8, 1, 1000},
	}
	for _, c := range cases {
		if got := ByteLength(c.frames, c.bitDepth, c.numChannels); got != c.want {
			t.Errorf("ByteLength(%d,%d,%d) = %d, want %d", c.frames, c.bitDepth, c.numChannels, got, c.want)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(nil, 16, 1); err == nil {
		t.Error("expected error for empty data")
	}
	if err := Validate([]byte{1, 2, 3}, 16, 1); err == nil {
		t.Error("expected error for misaligned data")
	}
	if err := Validate([]byte{1, 2, 3, 4}, 16, 1); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNumFrames(t *testing.T) {
	if n := NumFrames(make([]byte, 4000), 16, 2); n != 1000 {
		t.Errorf("NumFrames = %d, want 1000", n)
	}
}
