package backend

import "testing"

func TestPolicyForAndroidReclaimsVoices(t *testing.T) {
	p := PolicyFor(OSAndroid)
	if p.Name != "opensl" {
		t.Fatalf("Name = %q, want opensl", p.Name)
	}
	if !p.ReclaimVoicesOnDeactivate {
		t.Fatal("expected opensl policy to reclaim voices on deactivate")
	}
	if p.MaxBuses != 32 {
		t.Fatalf("MaxBuses = %d, want 32", p.MaxBuses)
	}
}

func TestPolicyForDarwinAndOtherUseCoreAudioFlavor(t *testing.T) {
	for _, os := range []OS{OSDarwin, OSOther} {
		p := PolicyFor(os)
		if p.Name != "coreaudio" {
			t.Fatalf("PolicyFor(%v).Name = %q, want coreaudio", os, p.Name)
		}
		if p.ReclaimVoicesOnDeactivate {
			t.Fatalf("PolicyFor(%v) should not reclaim voices", os)
		}
		if p.ActivationRampFrames != 4096 {
			t.Fatalf("ActivationRampFrames = %d, want 4096", p.ActivationRampFrames)
		}
	}
}

func TestFramesToDuration(t *testing.T) {
	d := FramesToDuration(44100, 44100)
	if d.Seconds() != 1 {
		t.Fatalf("FramesToDuration(44100, 44100) = %v, want 1s", d)
	}
	if got := FramesToDuration(100, 0); got != 0 {
		t.Fatalf("FramesToDuration with zero sample rate = %v, want 0", got)
	}
}

func TestIsCIRespectsEnv(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("CONTINUOUS_INTEGRATION", "")
	t.Setenv("GITHUB_ACTIONS", "")
	t.Setenv("GITLAB_CI", "")
	t.Setenv("BUILDKITE", "")
	if IsCI() {
		t.Fatal("expected IsCI to be false with no CI env vars set")
	}
	t.Setenv("GITHUB_ACTIONS", "true")
	if !IsCI() {
		t.Fatal("expected IsCI to be true with GITHUB_ACTIONS=true")
	}
}
