package mal

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/brackeen/mal/internal/backend"
	"github.com/brackeen/mal/internal/registry"
)

// rampSteps is the number of discrete volume steps used to approximate
// a linear gain ramp on Pause/Resume. oto has no sample-accurate volume
// automation API, so this module steps SetVolume in a sleep-paced loop instead of
// scheduling a per-sample ramp the way the original Core Audio backend
// does with AudioUnitParameterEvent; see DESIGN.md for the tradeoff.
const rampSteps = 8

// Player is one of a Context's fixed (but growable) pool of playback
// voices. A Player holds at most one Buffer at a time, advances an
// independent read cursor through it, and can be looped, muted, gain-
// adjusted, and observed via a finished callback.
type Player struct {
	ctx *Context

	mu      sync.Mutex
	format  Format
	buffer  *Buffer
	cursor  int
	looping bool
	gain    float64
	muted   bool
	state   PlayerState

	busIndex int

	voice  backend.Voice
	reader *playerReader

	finishedFunc func(*Player)
	finishedID   uint64

	rampGen int // bumped on every state change to cancel in-flight ramps

	freed bool
}

// CreatePlayer allocates a Player from the context's voice pool in the
// given format. It returns ErrPoolExhausted if the pool is full and the
// backend policy does not allow it to grow further.
func (c *Context) CreatePlayer(format Format) (*Player, error) {
	if c == nil {
		return nil, ErrFreed
	}
	if !format.valid() {
		return nil, ErrInvalidFormat
	}

	c.mu.Lock()
	if c.freed {
		c.mu.Unlock()
		return nil, ErrFreed
	}
	c.mu.Unlock()

	idx, ok := c.pool.Acquire()
	if !ok {
		return nil, ErrPoolExhausted
	}

	p := &Player{
		ctx:      c,
		format:   format,
		gain:     1,
		state:    Stopped,
		busIndex: idx,
	}
	p.reader = &playerReader{p: p}

	c.mu.Lock()
	if c.freed {
		c.mu.Unlock()
		c.pool.Release(idx)
		return nil, ErrFreed
	}
	c.players[p] = struct{}{}
	c.mu.Unlock()

	log.Debug("mal: player created", "format", format.String(), "bus", idx)
	return p, nil
}

// Format returns the player's PCM format.
func (p *Player) Format() Format {
	if p == nil {
		return Format{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.format
}

// SetFormat changes the player's expected format. Per SPEC_FULL.md
// §4.3, a format change implicitly stops the player (no finished
// callback) since any attached buffer's frames are no longer
// necessarily valid for the new format.
func (p *Player) SetFormat(format Format) error {
	if p == nil {
		return ErrFreed
	}
	if !format.valid() {
		return ErrInvalidFormat
	}
	p.mu.Lock()
	if p.freed {
		p.mu.Unlock()
		return ErrFreed
	}
	p.stopLocked(false)
	p.format = format
	p.mu.Unlock()
	return nil
}

// Buffer returns the player's currently attached buffer, or nil.
func (p *Player) Buffer() *Buffer {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buffer
}

// SetBuffer attaches buf to the player, or detaches the current buffer
// if buf is nil. Attaching implicitly stops the player first (no
// finished callback), matching SPEC_FULL.md §4.3.
func (p *Player) SetBuffer(buf *Buffer) error {
	if p == nil {
		return ErrFreed
	}
	p.mu.Lock()
	if p.freed {
		p.mu.Unlock()
		return ErrFreed
	}
	p.stopLocked(false)
	old := p.buffer
	p.buffer = buf
	p.cursor = 0
	p.mu.Unlock()

	if old != nil {
		old.detachPlayer(p)
	}
	if buf != nil {
		buf.attachPlayer(p)
	}
	return nil
}

// detachBuffer is called by Buffer.Free when buf is being destroyed
// while still attached to p.
func (p *Player) detachBuffer(buf *Buffer) {
	p.mu.Lock()
	if p.buffer != buf {
		p.mu.Unlock()
		return
	}
	p.stopLocked(false)
	p.buffer = nil
	p.cursor = 0
	p.mu.Unlock()
}

// GetMute, SetMute, GetGain, SetGain control this player's own
// gain/mute, independent of the context's master gain/mute. Effective
// output volume is the product of the two.
func (p *Player) GetMute() bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted
}

func (p *Player) SetMute(mute bool) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.muted = mute
	p.mu.Unlock()
	p.applyEffectiveGain()
}

func (p *Player) GetGain() float64 {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gain
}

func (p *Player) SetGain(gain float64) {
	if p == nil {
		return
	}
	if gain < 0 {
		gain = 0
	} else if gain > 1 {
		gain = 1
	}
	p.mu.Lock()
	p.gain = gain
	p.mu.Unlock()
	p.applyEffectiveGain()
}

// IsLooping and SetLooping control whether the player restarts from
// frame 0 instead of stopping when its cursor reaches the end of its
// buffer.
func (p *Player) IsLooping() bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.looping
}

func (p *Player) SetLooping(looping bool) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.looping = looping
	p.mu.Unlock()
}

// SetFinishedFunc sets (or, with fn nil, clears) the callback invoked
// when this player reaches the end of a non-looping buffer. A Go
// closure already carries whatever user data the caller needs, so
// unlike the original's malPlayerSetFinishedFunc(func, userData) pair,
// there is only the one parameter here.
func (p *Player) SetFinishedFunc(fn func(*Player)) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finishedID != 0 {
		registry.Unregister(p.finishedID)
		p.finishedID = 0
	}
	p.finishedFunc = fn
	if fn != nil {
		p.finishedID = registry.NewID()
		registry.Register(p.finishedID, p)
	}
}

// FinishedFunc reports whether a finished callback is currently set.
func (p *Player) FinishedFunc() (fn func(*Player), set bool) {
	if p == nil {
		return nil, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.finishedFunc, p.finishedFunc != nil
}

// GetState returns the player's current playback state.
func (p *Player) GetState() PlayerState {
	if p == nil {
		return Stopped
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// SetState requests a playback state transition, per the table in
// SPEC_FULL.md §4.3. It returns false if the transition is rejected
// (most commonly: Playing requested with no buffer attached). Same-
// state transitions are a no-op that returns true.
func (p *Player) SetState(want PlayerState) bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	if p.freed {
		p.mu.Unlock()
		return false
	}
	old := p.state
	if old == want {
		p.mu.Unlock()
		return true
	}

	switch want {
	case Playing:
		if p.buffer == nil {
			p.mu.Unlock()
			return false
		}
		if old == Stopped {
			p.cursor = 0
		}
		if p.voice == nil {
			// Either coming from Stopped, or resuming a Paused player
			// that was paused directly from Stopped (so no backend
			// voice was ever created for it) — start fresh.
			if err := p.startVoiceLocked(); err != nil {
				p.mu.Unlock()
				return false
			}
			p.state = Playing
			p.mu.Unlock()
			return true
		}
		// old == Paused with a live voice: resume in place.
		voice := p.voice
		p.state = Playing
		p.rampGen++
		gen := p.rampGen
		ramp := p.ctx.policy.ResumeRamp
		target := p.effectiveGainLocked()
		p.mu.Unlock()
		p.runRamp(voice, gen, 0, target, ramp)
		voice.Play()
		return true

	case Paused:
		if p.buffer == nil {
			p.mu.Unlock()
			return false
		}
		if old == Stopped {
			// Pausing playback that never started has no backend voice
			// to pause and no cursor progress to preserve beyond 0;
			// the original (mal_audio_coreaudio.h, mal_audio_opensl.h)
			// honors this unconditionally once a buffer is attached,
			// rather than rejecting it.
			p.state = Paused
			p.mu.Unlock()
			return true
		}
		// old == Playing: pause in place, optionally fading out first.
		voice := p.voice
		p.state = Paused
		p.rampGen++
		gen := p.rampGen
		ramp := p.ctx.policy.PauseRamp
		current := p.effectiveGainLocked()
		p.mu.Unlock()
		if voice != nil {
			p.runRamp(voice, gen, current, 0, ramp)
			voice.Pause()
		}
		return true

	case Stopped:
		p.stopLocked(false)
		p.mu.Unlock()
		return true
	}

	p.mu.Unlock()
	return false
}

// stopLocked transitions to Stopped, resets the cursor, and releases
// the backend voice. p.mu must be held. deliverFinished controls
// whether the registry fires a finished callback; explicit stops never
// do (SPEC_FULL.md §4.3, testable property 6), only natural end-of-
// stream does.
func (p *Player) stopLocked(deliverFinished bool) {
	voice := p.voice
	p.voice = nil
	p.state = Stopped
	p.cursor = 0
	p.rampGen++
	id := p.finishedID
	if voice != nil {
		go voice.Close()
	}
	if deliverFinished && p.ctx != nil && id != 0 {
		select {
		case p.ctx.finishedCh <- id:
		default:
			log.Warn("mal: finished-event channel full, dropping event", "bus", p.busIndex)
		}
	}
}

// transitionToStoppedLocked is called by the render path (playerReader.Read)
// when it observes natural end-of-stream on a non-looping buffer. p.mu
// must already be held by the caller (Read holds it for its whole body).
func (p *Player) transitionToStoppedLocked() {
	p.stopLocked(true)
}

func (p *Player) startVoiceLocked() error {
	voice, err := p.ctx.be.NewVoice(p.reader)
	if err != nil {
		return fmt.Errorf("mal: %w", err)
	}
	voice.SetVolume(p.effectiveGainLocked())
	voice.Play()
	p.voice = voice
	return nil
}

// effectiveGainLocked computes this player's output volume: the
// product of context master gain/mute and player gain/mute. p.mu must
// be held; it reads p.ctx fields without p.ctx.mu, which is safe
// because Context.effectiveMasterGain takes its own lock internally.
func (p *Player) effectiveGainLocked() float64 {
	master := 0.0
	if p.ctx != nil {
		master = p.ctx.effectiveMasterGain()
	}
	if p.muted {
		return 0
	}
	return master * p.gain
}

// applyEffectiveGain pushes the current effective gain to the backend
// voice, if one exists. Called whenever any input to the gain
// computation changes (player gain/mute, context gain/mute).
func (p *Player) applyEffectiveGain() {
	p.mu.Lock()
	voice := p.voice
	gain := p.effectiveGainLocked()
	p.mu.Unlock()
	if voice != nil {
		voice.SetVolume(gain)
	}
}

// runRamp steps voice's volume from `from` to `to` over dur, in
// rampSteps increments, unless superseded by a later state change
// (tracked via gen). A zero or negative duration applies the target
// volume immediately and returns. This runs synchronously on the
// caller's goroutine (never the render path), so callers that want it
// to run in the background do so via their own dispatch.
func (p *Player) runRamp(voice backend.Voice, gen int, from, to float64, dur time.Duration) {
	if dur <= 0 || rampSteps <= 0 {
		voice.SetVolume(to)
		return
	}
	step := dur / rampSteps
	for i := 1; i <= rampSteps; i++ {
		p.mu.Lock()
		if p.rampGen != gen {
			p.mu.Unlock()
			return
		}
		p.mu.Unlock()
		v := from + (to-from)*float64(i)/float64(rampSteps)
		voice.SetVolume(v)
		if i < rampSteps {
			time.Sleep(step)
		}
	}
}

// onContextActiveChanged implements the OpenSL-flavored policy's voice
// reclamation (SPEC_FULL.md §5, §12): on deactivate, backend voices for
// non-playing players are disposed; on reactivate, a fresh voice is
// recreated for any player left in the Playing state (Paused players
// simply stay without a live backend voice until resumed, since
// nothing needs to keep pulling from them).
func (p *Player) onContextActiveChanged(active bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.freed {
		return
	}
	if !active {
		if p.state != Playing && p.voice != nil {
			voice := p.voice
			p.voice = nil
			go voice.Close()
		}
		return
	}
	if p.state == Playing && p.voice == nil && p.buffer != nil {
		if err := p.startVoiceLocked(); err != nil {
			log.Warn("mal: failed to recreate voice on reactivate", "bus", p.busIndex, "error", err)
			p.state = Stopped
			p.cursor = 0
		}
	}
}

// Free stops the player, releases its bus back to the context's voice
// pool, detaches it from its buffer, and unregisters its finished
// callback. Free is idempotent and nil-receiver safe.
func (p *Player) Free() {
	if p == nil {
		return
	}
	p.mu.Lock()
	if p.freed {
		p.mu.Unlock()
		return
	}
	p.freed = true
	p.stopLocked(false)
	buf := p.buffer
	p.buffer = nil
	id := p.finishedID
	p.finishedID = 0
	p.finishedFunc = nil
	ctx := p.ctx
	idx := p.busIndex
	p.mu.Unlock()

	if id != 0 {
		registry.Unregister(id)
	}
	if buf != nil {
		buf.detachPlayer(p)
	}
	if ctx != nil {
		ctx.mu.Lock()
		delete(ctx.players, p)
		ctx.mu.Unlock()
		ctx.pool.Release(idx)
	}
}

// playerReader is the Player's render path: an io.Reader pulled by the
// backend's own playback thread (oto's mux loop, or a test driving
// MockVoice.Pump directly). It implements the five-step algorithm from
// SPEC_FULL.md §4.3 ("Render algorithm"): while Playing, copy bytes
// from the attached buffer starting at the cursor; at end of buffer,
// loop back to frame 0 if looping, otherwise transition to Stopped and
// queue the finished callback, then report io.EOF. All of this runs
// under the player's own short lock, matching the "acquire the
// player's lock, never block" constraint on the real render thread.
type playerReader struct {
	p *Player
}

func (r *playerReader) Read(dst []byte) (int, error) {
	p := r.p
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.freed || p.buffer == nil || p.state != Playing {
		return 0, io.EOF
	}

	data := p.buffer.data
	if p.cursor >= len(data) {
		if p.looping {
			p.cursor = 0
		} else {
			p.transitionToStoppedLocked()
			return 0, io.EOF
		}
	}

	n := copy(dst, data[p.cursor:])
	p.cursor += n
	return n, nil
}
