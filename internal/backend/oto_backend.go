//go:build !nocgo

package backend

import (
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// otoContext is the Context implementation backed by a real
// ebitengine/oto/v3 output. This is the one piece of the engine that
// actually talks to Core Audio / OpenSL ES / ALSA / WASAPI / Web
// Audio, via oto's own platform drivers — grounded on the teacher's
// pkg/tts/audio_context_production.go, including its per-OS buffer
// size heuristic and ready-channel wait.
type otoContext struct {
	mu       sync.Mutex
	ctx      *oto.Context
	active   bool
	sampleRate int
	channels   int
}

// NewOtoContext opens a real audio output device at the given sample
// rate and channel count. It waits up to readyTimeout for oto to
// report the context ready, matching the teacher's platform-scaled
// timeout (10s on darwin, 5s elsewhere) for Core Audio's occasionally
// slow first-open.
func NewOtoContext(sampleRate, channelCount int) (Context, error) {
	bufferMillis := 50
	readyTimeout := 5 * time.Second
	switch runtime.GOOS {
	case "darwin":
		bufferMillis = 100
		readyTimeout = 10 * time.Second
	case "windows":
		bufferMillis = 80
	}

	options := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   time.Duration(bufferMillis) * time.Millisecond,
	}

	log.Debug("backend: opening oto context", "sample_rate", sampleRate, "channels", channelCount, "buffer_ms", bufferMillis)

	otoCtx, readyChan, err := oto.NewContext(options)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendOpenFailed, err)
	}

	select {
	case <-readyChan:
	case <-time.After(readyTimeout):
		return nil, fmt.Errorf("%w: timed out waiting for device", ErrBackendOpenFailed)
	}

	return &otoContext{
		ctx:        otoCtx,
		active:     true,
		sampleRate: sampleRate,
		channels:   channelCount,
	}, nil
}

func (c *otoContext) NewVoice(r io.Reader) (Voice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctx == nil {
		return nil, ErrContextClosed
	}
	p := c.ctx.NewPlayer(r)
	return &otoVoice{player: p}, nil
}

func (c *otoContext) SampleRate() int   { return c.sampleRate }
func (c *otoContext) ChannelCount() int { return c.channels }

func (c *otoContext) SetActive(active bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctx == nil {
		return ErrContextClosed
	}
	if c.active == active {
		return nil
	}
	if active {
		c.ctx.Resume()
	} else {
		c.ctx.Suspend()
	}
	c.active = active
	return nil
}

func (c *otoContext) IsActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *otoContext) Close() error {
	// oto.Context in v3 exposes no Close method; the context and its
	// platform driver are reclaimed by the garbage collector once
	// unreferenced, matching the teacher's own noted limitation
	// (pkg/tts/audio_context_production.go).
	c.mu.Lock()
	c.ctx = nil
	c.mu.Unlock()
	return nil
}

// otoVoice adapts *oto.Player to the Voice interface.
type otoVoice struct {
	player *oto.Player
}

func (v *otoVoice) Play()                      { v.player.Play() }
func (v *otoVoice) Pause()                     { v.player.Pause() }
func (v *otoVoice) IsPlaying() bool            { return v.player.IsPlaying() }
func (v *otoVoice) SetVolume(volume float64)   { v.player.SetVolume(volume) }
func (v *otoVoice) Volume() float64            { return v.player.Volume() }
func (v *otoVoice) Close() error               { return v.player.Close() }
