package backend

import "testing"

func TestNewAutoUsesMockUnderCI(t *testing.T) {
	t.Setenv("CI", "true")
	ctx, err := NewAuto(44100, 2)
	if err != nil {
		t.Fatalf("NewAuto: %v", err)
	}
	if _, ok := ctx.(*MockContext); !ok {
		t.Fatalf("expected *MockContext under CI, got %T", ctx)
	}
}

func TestMockContextNewVoiceAfterCloseFails(t *testing.T) {
	ctx := NewMockContext(44100, 2)
	ctx.Close()
	if _, err := ctx.NewVoice(nil); err == nil {
		t.Fatal("expected error creating a voice on a closed context")
	}
}
