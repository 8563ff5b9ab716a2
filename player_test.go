package mal

import (
	"testing"
	"time"

	"github.com/brackeen/mal/internal/backend"
)

func newPlayingPlayer(t *testing.T, ctx *Context, numFrames int) (*Player, *backend.MockVoice) {
	t.Helper()
	format := testFormat()
	buf, err := ctx.CreateCopied(format, numFrames, testTone(numFrames))
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
	mv, ok := player.voice.(*backend.MockVoice)
	if !ok {
		t.Fatalf("expected *backend.MockVoice, got %T", player.voice)
	}
	return player, mv
}

func TestPlayerRejectsPlayingWithoutBuffer(t *testing.T) {
	ctx, _ := newTestContext(t)
	player, err := ctx.CreatePlayer(testFormat())
	if err != nil {
		t.Fatalf("CreatePlayer: %v", err)
	}
	if player.SetState(Playing) {
		t.Fatal("expected SetState(Playing) to fail with no buffer attached")
	}
	if player.GetState() != Stopped {
		t.Fatalf("state = %v, want Stopped", player.GetState())
	}
}

func TestPlayerPauseResumeRoundTrip(t *testing.T) {
	ctx, _ := newTestContext(t)
	player, mv := newPlayingPlayer(t, ctx, 4096) // 8192 bytes, two 4096-byte Pumps

	if n, _ := mv.Pump(); n == 0 {
		t.Fatal("expected Pump to read some bytes while playing")
	}
	cursorAfterFirstPump := player.cursor

	if !player.SetState(Paused) {
		t.Fatal("expected Pause to succeed")
	}
	if player.GetState() != Paused {
		t.Fatalf("state = %v, want Paused", player.GetState())
	}
	if n, _ := mv.Pump(); n != 0 {
		t.Fatalf("expected no bytes read while paused, got %d", n)
	}
	if player.cursor != cursorAfterFirstPump {
		t.Fatal("expected cursor unchanged while paused")
	}

	if !player.SetState(Playing) {
		t.Fatal("expected resume to succeed")
	}
	if n, _ := mv.Pump(); n == 0 {
		t.Fatal("expected bytes to resume flowing after Playing")
	}
	if player.cursor <= cursorAfterFirstPump {
		t.Fatal("expected cursor to advance past pre-pause position")
	}
}

func TestPlayerExplicitStopResetsCursorWithoutCallback(t *testing.T) {
	ctx, _ := newTestContext(t)
	player, mv := newPlayingPlayer(t, ctx, 1000)
	mv.Pump()

	fired := make(chan struct{}, 1)
	player.SetFinishedFunc(func(*Player) { fired <- struct{}{} })

	if !player.SetState(Stopped) {
		t.Fatal("expected explicit stop to succeed")
	}
	if player.cursor != 0 {
		t.Fatalf("cursor after stop = %d, want 0", player.cursor)
	}
	if player.GetState() != Stopped {
		t.Fatalf("state after stop = %v, want Stopped", player.GetState())
	}

	select {
	case <-fired:
		t.Fatal("explicit stop must not invoke the finished callback")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPlayerFinishedCallbackFiresOnNaturalEndOfStream(t *testing.T) {
	ctx, _ := newTestContext(t)
	player, mv := newPlayingPlayer(t, ctx, 10) // small buffer, 20 bytes

	fired := make(chan *Player, 1)
	player.SetFinishedFunc(func(p *Player) { fired <- p })

	for i := 0; i < 10; i++ {
		if _, eof := mv.Pump(); eof {
			break
		}
	}

	select {
	case got := <-fired:
		if got != player {
			t.Fatal("callback received wrong player")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected finished callback to fire after end-of-stream")
	}

	if player.GetState() != Stopped {
		t.Fatalf("state after natural end-of-stream = %v, want Stopped", player.GetState())
	}
}

func TestPlayerLoopingNeverReachesEndOfStream(t *testing.T) {
	ctx, _ := newTestContext(t)
	player, mv := newPlayingPlayer(t, ctx, 4) // 8 bytes, smaller than scratch buffer
	player.SetLooping(true)

	for i := 0; i < 50; i++ {
		if _, eof := mv.Pump(); eof {
			t.Fatal("looping player should never report end-of-stream")
		}
	}
	if player.GetState() != Playing {
		t.Fatalf("state = %v, want Playing", player.GetState())
	}
}

func TestPlayerFreeReleasesPoolSlotForReuse(t *testing.T) {
	ctx, _ := newTestContext(t)
	format := testFormat()

	first, err := ctx.CreatePlayer(format)
	if err != nil {
		t.Fatalf("CreatePlayer: %v", err)
	}
	firstIndex := first.busIndex
	first.Free()

	second, err := ctx.CreatePlayer(format)
	if err != nil {
		t.Fatalf("CreatePlayer: %v", err)
	}
	if second.busIndex != firstIndex {
		t.Fatalf("expected reused bus index %d, got %d", firstIndex, second.busIndex)
	}
}

func TestPlayerGainIsClampedAndAffectsVoiceVolume(t *testing.T) {
	ctx, _ := newTestContext(t)
	player, mv := newPlayingPlayer(t, ctx, 1000)

	player.SetGain(0.25)
	if got := mv.Volume(); got != 0.25 {
		t.Fatalf("voice volume = %v, want 0.25", got)
	}

	player.SetGain(2) // clamps to 1
	if got := player.GetGain(); got != 1 {
		t.Fatalf("gain = %v, want clamped 1", got)
	}

	player.SetMute(true)
	if got := mv.Volume(); got != 0 {
		t.Fatalf("voice volume while muted = %v, want 0", got)
	}
}

func TestPlayerSetBufferImplicitlyStopsWithoutCallback(t *testing.T) {
	ctx, _ := newTestContext(t)
	player, mv := newPlayingPlayer(t, ctx, 1000)
	mv.Pump()

	fired := make(chan struct{}, 1)
	player.SetFinishedFunc(func(*Player) { fired <- struct{}{} })

	other, _ := ctx.CreateCopied(testFormat(), 10, testTone(10))
	if err := player.SetBuffer(other); err != nil {
		t.Fatalf("SetBuffer: %v", err)
	}
	if player.GetState() != Stopped {
		t.Fatalf("state after SetBuffer = %v, want Stopped", player.GetState())
	}

	select {
	case <-fired:
		t.Fatal("implicit stop from SetBuffer must not invoke the finished callback")
	case <-time.After(50 * time.Millisecond):
	}
}
