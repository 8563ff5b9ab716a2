package mal

import (
	"testing"

	"github.com/brackeen/mal/internal/backend"
)

func newTestContext(t *testing.T) (*Context, *backend.MockContext) {
	t.Helper()
	be := backend.NewMockContext(44100, 2)
	policy := backend.PolicyFor(backend.OSOther)
	// Zero the ramps so tests don't sleep on Pause/Resume transitions.
	policy.PauseRamp = 0
	policy.ResumeRamp = 0
	ctx := newContext(be, policy)
	t.Cleanup(ctx.Free)
	return ctx, be
}

func testFormat() Format {
	return Format{SampleRate: 44100, BitDepth: 16, NumChannels: 1}
}

func testTone(numFrames int) []byte {
	data := make([]byte, numFrames*2)
	for i := range data {
		data[i] = byte(i)
	}
	return data
}

func TestContextGainAndMute(t *testing.T) {
	ctx, _ := newTestContext(t)

	if got := ctx.GetGain(); got != 1 {
		t.Fatalf("default gain = %v, want 1", got)
	}
	ctx.SetGain(0.5)
	if got := ctx.GetGain(); got != 0.5 {
		t.Fatalf("gain after SetGain(0.5) = %v, want 0.5", got)
	}
	ctx.SetGain(5) // out of range, clamps to 1
	if got := ctx.GetGain(); got != 1 {
		t.Fatalf("gain after SetGain(5) = %v, want clamped 1", got)
	}

	if ctx.GetMute() {
		t.Fatal("expected unmuted by default")
	}
	ctx.SetMute(true)
	if !ctx.GetMute() {
		t.Fatal("expected muted after SetMute(true)")
	}
}

func TestContextSetActiveIsNoOpWhenUnchanged(t *testing.T) {
	ctx, _ := newTestContext(t)
	if !ctx.IsActive() {
		t.Fatal("expected context active by default")
	}
	if err := ctx.SetActive(true); err != nil {
		t.Fatalf("SetActive(true) on already-active context: %v", err)
	}
	if err := ctx.SetActive(false); err != nil {
		t.Fatalf("SetActive(false): %v", err)
	}
	if ctx.IsActive() {
		t.Fatal("expected inactive after SetActive(false)")
	}
}

func TestContextIsFormatValid(t *testing.T) {
	ctx, _ := newTestContext(t)
	if !ctx.IsFormatValid(testFormat()) {
		t.Fatal("expected valid format to be valid")
	}
	if ctx.IsFormatValid(Format{SampleRate: 44100, BitDepth: 24, NumChannels: 1}) {
		t.Fatal("expected 24-bit format to be invalid")
	}
}

func TestContextFreeStopsAllPlayersAndBuffers(t *testing.T) {
	ctx, _ := newTestContext(t)
	format := testFormat()
	buf, err := ctx.CreateCopied(format, 100, testTone(100))
	if err != nil {
		t.Fatalf("CreateCopied: %v", err)
	}
	player, err := ctx.CreatePlayer(format)
	if err != nil {
		t.Fatalf("CreatePlayer: %v", err)
	}
	if err := player.SetBuffer(buf); err != nil {
		t.Fatalf("SetBuffer: %v", err)
	}
	if !player.SetState(Playing) {
		t.Fatal("expected SetState(Playing) to succeed")
	}

	ctx.Free()

	if player.GetState() != Stopped {
		t.Fatalf("state after Context.Free = %v, want Stopped", player.GetState())
	}
	// Free must be idempotent.
	ctx.Free()
}
