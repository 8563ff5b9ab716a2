package backend

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"
)

// MockContext is a Context that never touches real audio hardware. It
// drains whatever io.Reader each Voice is given so the Player's render
// algorithm still runs and still eventually sees io.EOF, but it does
// not actually schedule any hardware pull thread — tests drive voices
// directly. Grounded on the teacher's pkg/tts/audio_context_mock.go
// MockAudioContext/MockAudioPlayer pair.
type MockContext struct {
	mu         sync.Mutex
	closed     bool
	active     bool
	sampleRate int
	channels   int

	// VoicesCreated counts NewVoice calls, for tests asserting pool
	// behavior without inspecting the caller's own bookkeeping.
	VoicesCreated int
}

// NewMockContext creates a ready, active mock context.
func NewMockContext(sampleRate, channelCount int) *MockContext {
	log.Debug("backend: creating mock context", "sample_rate", sampleRate, "channels", channelCount)
	return &MockContext{
		active:     true,
		sampleRate: sampleRate,
		channels:   channelCount,
	}
}

func (c *MockContext) NewVoice(r io.Reader) (Voice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrContextClosed
	}
	c.VoicesCreated++
	return &MockVoice{reader: r, volume: 1}, nil
}

func (c *MockContext) SampleRate() int   { return c.sampleRate }
func (c *MockContext) ChannelCount() int { return c.channels }

func (c *MockContext) SetActive(active bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrContextClosed
	}
	c.active = active
	return nil
}

func (c *MockContext) IsActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *MockContext) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

// MockVoice is the Voice half of MockContext. Play only marks the
// voice as playing; nothing is pulled from the reader until a caller
// invokes Pump, which reads one fixed-size chunk per call on the
// calling goroutine. This stands in for the real backend's pull
// thread closely enough to exercise a Player's render algorithm
// deterministically in tests — no sleeping, no real clock.
type MockVoice struct {
	mu      sync.Mutex
	reader  io.Reader
	playing bool
	closed  bool
	volume  float64
	scratch [4096]byte

	// Drained is set once the reader has returned io.EOF.
	Drained bool
}

// Pump reads and discards up to len(v.scratch) (4096) bytes from the
// underlying reader while playing, returning the number of bytes
// consumed and whether the reader has reported end-of-stream. Tests
// call this explicitly instead of relying on a background goroutine,
// keeping playback progress fully deterministic; nothing outside the
// tests calls it, so under the mock backend the demo CLI's players
// never advance.
func (v *MockVoice) Pump() (n int, eof bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.playing || v.closed {
		return 0, v.Drained
	}
	read, err := v.reader.Read(v.scratch[:])
	if err == io.EOF {
		v.Drained = true
		v.playing = false
	}
	return read, v.Drained
}

func (v *MockVoice) Play() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.closed && !v.Drained {
		v.playing = true
	}
}

func (v *MockVoice) Pause() {
	v.mu.Lock()
	v.playing = false
	v.mu.Unlock()
}

func (v *MockVoice) IsPlaying() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.playing
}

func (v *MockVoice) SetVolume(volume float64) {
	v.mu.Lock()
	v.volume = volume
	v.mu.Unlock()
}

func (v *MockVoice) Volume() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.volume
}

func (v *MockVoice) Close() error {
	v.mu.Lock()
	v.closed = true
	v.playing = false
	v.mu.Unlock()
	return nil
}
