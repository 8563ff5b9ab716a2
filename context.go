package mal

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/brackeen/mal/internal/backend"
	"github.com/brackeen/mal/internal/voicepool"
)

// finishedEventBuffer is the size of a Context's finished-event
// delivery channel. It is sized generously so a send from the render
// path never blocks; see SPEC_FULL.md §9 "Render-thread allocation".
const finishedEventBuffer = 256

// activationRampSteps is the number of discrete gain steps used to
// approximate the linear output fade SPEC_FULL.md §4.1 describes for
// SetActive on the Core-Audio-flavored policy (4096 frames, ~0.1s),
// the same coarse-ramp tradeoff runRamp makes for per-player
// Pause/Resume fades, since neither oto nor this module's Voice
// interface expose a sample-accurate volume automation API.
const activationRampSteps = 8

// Context is the per-process audio session. It owns every Buffer and
// Player created through it, the backend device handle, and the
// finished-callback delivery goroutine. The zero Context is not
// usable; construct one with Create.
type Context struct {
	mu sync.Mutex

	be     backend.Context
	policy backend.Policy
	pool   *voicepool.Pool

	buffers map[*Buffer]struct{}
	players map[*Player]struct{}

	gain            float64
	muted           bool
	active          bool
	freed           bool
	activationScale float64

	sampleRate float64

	finishedCh     chan uint64
	stopDeliveryCh chan struct{}
	deliveryDone   sync.WaitGroup
}

// Create opens the backend device at the given output sample rate and
// returns a ready, active Context. outputSampleRate of 0 requests the
// platform's preferred rate (44,100 Hz, the original Android
// fallback carried forward per SPEC_FULL.md §12). platformHandle is
// accepted for API-surface parity with the original (an Android
// Activity handle used to query the real output rate) but is unused
// in this module: there is no JNI binding in scope here.
func Create(outputSampleRate float64, platformHandle any) (*Context, error) {
	policy := backend.DefaultPolicy()
	if outputSampleRate <= 0 {
		outputSampleRate = policy.PreferredSampleRate
	}

	be, err := backend.NewAuto(int(outputSampleRate), 2)
	if err != nil {
		return nil, fmt.Errorf("mal: %w: %v", ErrBackendUnavailable, err)
	}

	return newContext(be, policy), nil
}

// newContext builds a Context around an already-open backend. It is
// unexported so tests in this package can inject backend.NewMockContext
// without expanding the public API with a backend-selection parameter
// the specification does not call for.
func newContext(be backend.Context, policy backend.Policy) *Context {
	c := &Context{
		be:              be,
		policy:          policy,
		pool:            voicepool.New(policy.InitialBuses, policy.MaxBuses),
		buffers:         make(map[*Buffer]struct{}),
		players:         make(map[*Player]struct{}),
		gain:            1,
		active:          true,
		activationScale: 1,
		sampleRate:      float64(be.SampleRate()),
		finishedCh:      make(chan uint64, finishedEventBuffer),
		stopDeliveryCh:  make(chan struct{}),
	}
	c.deliveryDone.Add(1)
	go c.runDelivery()
	log.Debug("mal: context created", "sample_rate", c.sampleRate, "policy", policy.Name)
	return c
}

// SampleRate returns the backend's actual output sample rate, which
// may differ from the rate requested at Create.
func (c *Context) SampleRate() float64 {
	if c == nil {
		return 0
	}
	return c.sampleRate
}

// SetActive transitions the context between foreground and background.
// Per SPEC_FULL.md §4.1 "Output fade on activation change", the
// transition ramps master output gain to/from 0 over
// Policy.ActivationRampFrames before suspending (deactivate) and after
// resuming (reactivate) the backend, instead of cutting output
// abruptly. Deactivating also releases reclaimable backend voices for
// non-playing players (the OpenSL-flavored policy) or simply suspends
// the backend graph (the Core-Audio-flavored policy); reactivating
// restores them. Calling SetActive with the current state is a no-op
// (testable property 10).
func (c *Context) SetActive(active bool) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	if c.freed {
		c.mu.Unlock()
		return ErrFreed
	}
	if c.active == active {
		c.mu.Unlock()
		return nil
	}
	c.active = active
	players := c.playersSnapshotLocked()
	reclaim := c.policy.ReclaimVoicesOnDeactivate
	rampDur := backend.FramesToDuration(c.policy.ActivationRampFrames, c.sampleRate)
	c.mu.Unlock()

	if !active {
		c.rampActivationScale(players, 1, 0, rampDur)
		if err := c.be.SetActive(false); err != nil {
			log.Warn("mal: backend SetActive failed", "active", active, "error", err)
		}
		if reclaim {
			for _, p := range players {
				p.onContextActiveChanged(false)
			}
		}
	} else {
		if err := c.be.SetActive(true); err != nil {
			log.Warn("mal: backend SetActive failed", "active", active, "error", err)
		}
		if reclaim {
			for _, p := range players {
				p.onContextActiveChanged(true)
			}
		}
		c.rampActivationScale(players, 0, 1, rampDur)
	}

	log.Debug("mal: context active changed", "active", active)
	return nil
}

// rampActivationScale steps the context's activation gain multiplier
// from `from` to `to` over dur, pushing the updated effective gain to
// every player's backend voice at each step. A zero or negative
// duration (the OpenSL-flavored policy, which sets
// ActivationRampFrames to 0) applies the target immediately.
func (c *Context) rampActivationScale(players []*Player, from, to float64, dur time.Duration) {
	if dur <= 0 || activationRampSteps <= 0 {
		c.mu.Lock()
		c.activationScale = to
		c.mu.Unlock()
		for _, p := range players {
			p.applyEffectiveGain()
		}
		return
	}
	step := dur / activationRampSteps
	for i := 1; i <= activationRampSteps; i++ {
		v := from + (to-from)*float64(i)/float64(activationRampSteps)
		c.mu.Lock()
		c.activationScale = v
		c.mu.Unlock()
		for _, p := range players {
			p.applyEffectiveGain()
		}
		if i < activationRampSteps {
			time.Sleep(step)
		}
	}
}

// IsActive reports the context's current active/inactive state.
func (c *Context) IsActive() bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// GetMute and SetMute control master mute. Mute is equivalent to
// output gain 0 but preserves the stored gain so SetMute(false) restores it.
func (c *Context) GetMute() bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

func (c *Context) SetMute(mute bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.muted = mute
	players := c.playersSnapshotLocked()
	c.mu.Unlock()
	for _, p := range players {
		p.applyEffectiveGain()
	}
}

// GetGain and SetGain control master gain, clamped to [0,1].
func (c *Context) GetGain() float64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gain
}

func (c *Context) SetGain(gain float64) {
	if c == nil {
		return
	}
	if gain < 0 {
		gain = 0
	} else if gain > 1 {
		gain = 1
	}
	c.mu.Lock()
	c.gain = gain
	players := c.playersSnapshotLocked()
	c.mu.Unlock()
	for _, p := range players {
		p.applyEffectiveGain()
	}
}

// effectiveMasterGain returns 0 when muted, else the stored gain
// scaled by the in-progress activation ramp (1 outside of a SetActive
// transition).
func (c *Context) effectiveMasterGain() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.muted {
		return 0
	}
	return c.gain * c.activationScale
}

func (c *Context) playersSnapshotLocked() []*Player {
	players := make([]*Player, 0, len(c.players))
	for p := range c.players {
		players = append(players, p)
	}
	return players
}

// IsFormatValid reports whether format satisfies the engine's format
// constraints (SPEC_FULL.md §4.1).
func (c *Context) IsFormatValid(format Format) bool {
	return format.valid()
}

// IsRouteEnabled is introspection-only; this module's backends do not
// report routing, so it always returns false.
func (c *Context) IsRouteEnabled(route Route) bool {
	return false
}

// PollEvents drains the pending-finished queue on backends that defer
// delivery to the main thread. Both in-scope backends (Core Audio,
// OpenSL) dispatch finished events directly through Context's own
// delivery goroutine, so this is a no-op here; it exists for API
// parity with the PulseAudio-style deferred model, which is out of
// scope for this module (SPEC_FULL.md §1).
func (c *Context) PollEvents() {}

// Free stops and detaches every player, frees every buffer, and
// releases the backend handle, in that order (SPEC_FULL.md §3
// invariant 5). Free is idempotent.
func (c *Context) Free() {
	if c == nil {
		return
	}
	c.mu.Lock()
	if c.freed {
		c.mu.Unlock()
		return
	}
	c.freed = true
	players := c.playersSnapshotLocked()
	buffers := make([]*Buffer, 0, len(c.buffers))
	for b := range c.buffers {
		buffers = append(buffers, b)
	}
	c.mu.Unlock()

	for _, p := range players {
		p.Free()
	}
	for _, b := range buffers {
		b.Free()
	}

	close(c.stopDeliveryCh)
	c.deliveryDone.Wait()

	if err := c.be.Close(); err != nil {
		log.Warn("mal: backend close failed", "error", err)
	}
	log.Debug("mal: context freed")
}

// runDelivery is the context's finished-callback delivery goroutine:
// the Go analogue of Core Audio's dispatch_async_f-to-main-thread hop
// and OpenSL's pipe-fd-into-ALooper hop (SPEC_FULL.md §4.3 "Finished-
// callback delivery"). It runs on neither the host thread nor the
// backend's real-time pull goroutine, so a slow user callback cannot
// stall either of them for long (a panic in a user callback is not
// recovered), and every delivery goes through the registry so a freed
// player is silently skipped.
func (c *Context) runDelivery() {
	defer c.deliveryDone.Done()
	for {
		select {
		case id := <-c.finishedCh:
			deliverFinished(id)
		case <-c.stopDeliveryCh:
			// Drain whatever is already queued before exiting so a
			// finished event racing with Free is not lost.
			for {
				select {
				case id := <-c.finishedCh:
					deliverFinished(id)
				default:
					return
				}
			}
		}
	}
}
