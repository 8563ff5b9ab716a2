package mal

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/brackeen/mal/internal/pcm"
)

// Buffer is an immutable block of linear PCM data in a fixed Format.
// A Buffer may be attached to any number of Players simultaneously;
// each Player keeps its own read cursor into the shared data.
type Buffer struct {
	ctx    *Context
	format Format

	// data is the buffer's PCM payload. It is never mutated after
	// construction, so concurrent Players may read it without locking.
	data []byte

	// adopted records whether Data() should expose the underlying
	// slice. CreateCopied hides it (mirrors the original's "forced
	// copy" buffers returning NULL from malBufferGetData); CreateAdopted
	// always exposes it, since this module's Go backends never need to
	// force an internal copy of already-Go-owned memory.
	adopted bool

	dealloc func([]byte)

	mu       sync.Mutex
	attached map[*Player]struct{}
	freed    bool
}

// CreateCopied creates a Buffer by copying data into engine-owned
// memory. numFrames must match data's length under format; data may be
// discarded or reused by the caller immediately after this call returns.
func (c *Context) CreateCopied(format Format, numFrames int, data []byte) (*Buffer, error) {
	return c.createBuffer(format, numFrames, data, true, nil)
}

// CreateAdopted creates a Buffer that takes ownership of data directly
// instead of copying it. dealloc, if non-nil, is invoked exactly once
// when the Buffer is freed (the Go analogue of the original's
// malBufferDeallocatorFunc, typically used to release a C-allocated or
// mmap'd backing store; Go-allocated slices usually pass nil and let
// the garbage collector reclaim them).
func (c *Context) CreateAdopted(format Format, numFrames int, data []byte, dealloc func([]byte)) (*Buffer, error) {
	return c.createBuffer(format, numFrames, data, false, dealloc)
}

func (c *Context) createBuffer(format Format, numFrames int, data []byte, copyData bool, dealloc func([]byte)) (*Buffer, error) {
	if c == nil {
		return nil, ErrFreed
	}
	if !format.valid() {
		return nil, ErrInvalidFormat
	}
	if err := pcm.Validate(data, format.BitDepth, format.NumChannels); err != nil {
		return nil, fmt.Errorf("mal: %w: %v", ErrInvalidArgument, err)
	}
	if pcm.NumFrames(data, format.BitDepth, format.NumChannels) != numFrames {
		return nil, fmt.Errorf("mal: %w: numFrames does not match data length", ErrInvalidArgument)
	}

	stored := data
	if copyData {
		stored = make([]byte, len(data))
		copy(stored, data)
	}

	b := &Buffer{
		ctx:      c,
		format:   format,
		data:     stored,
		adopted:  !copyData,
		dealloc:  dealloc,
		attached: make(map[*Player]struct{}),
	}

	c.mu.Lock()
	if c.freed {
		c.mu.Unlock()
		return nil, ErrFreed
	}
	c.buffers[b] = struct{}{}
	c.mu.Unlock()

	log.Debug("mal: buffer created", "format", format.String(), "num_frames", numFrames, "copied", copyData)
	return b, nil
}

// Format returns the buffer's PCM format.
func (b *Buffer) Format() Format {
	if b == nil {
		return Format{}
	}
	return b.format
}

// NumFrames returns the number of PCM frames in the buffer.
func (b *Buffer) NumFrames() int {
	if b == nil {
		return 0
	}
	return pcm.NumFrames(b.data, b.format.BitDepth, b.format.NumChannels)
}

// Data returns the buffer's raw PCM bytes if it was created with
// CreateAdopted, or nil if it was created with CreateCopied (the data
// is engine-owned and not exposed).
func (b *Buffer) Data() []byte {
	if b == nil || !b.adopted {
		return nil
	}
	return b.data
}

// Free detaches the buffer from every Player it is currently attached
// to (each such Player implicitly stops, per SPEC_FULL.md §4.3) and
// releases it from its Context. Free is idempotent and nil-receiver
// safe, matching the invariant that objects may be destroyed in any
// order.
func (b *Buffer) Free() {
	if b == nil {
		return
	}
	b.mu.Lock()
	if b.freed {
		b.mu.Unlock()
		return
	}
	b.freed = true
	players := make([]*Player, 0, len(b.attached))
	for p := range b.attached {
		players = append(players, p)
	}
	b.attached = nil
	ctx := b.ctx
	dealloc := b.dealloc
	data := b.data
	b.mu.Unlock()

	for _, p := range players {
		p.detachBuffer(b)
	}

	if ctx != nil {
		ctx.mu.Lock()
		delete(ctx.buffers, b)
		ctx.mu.Unlock()
	}

	if dealloc != nil {
		dealloc(data)
	}
}

func (b *Buffer) attachPlayer(p *Player) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.freed {
		return
	}
	b.attached[p] = struct{}{}
}

func (b *Buffer) detachPlayer(p *Player) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.attached != nil {
		delete(b.attached, p)
	}
}
