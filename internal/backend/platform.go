package backend

import (
	"os"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
)

// OS is a coarse platform classification, grounded on the teacher's
// own PlatformInfo/Platform type (pkg/tts/platform.go) and trimmed to
// what Mal's policy selection actually branches on.
type OS string

const (
	OSDarwin  OS = "darwin"
	OSAndroid OS = "android"
	OSOther   OS = "other"
)

// DetectOS classifies runtime.GOOS into the three buckets Mal's
// backend policy cares about: darwin gets the Core-Audio-flavored
// policy, android gets the OpenSL-flavored policy, everything else
// (linux/ALSA/PulseAudio, windows/WASAPI, js/WebAudio under oto) gets
// the Core-Audio-flavored policy as the reasonable default, since none
// of those platforms reclaim voices the way OpenSL does.
func DetectOS() OS {
	switch runtime.GOOS {
	case "darwin":
		return OSDarwin
	case "android":
		return OSAndroid
	default:
		return OSOther
	}
}

// PolicyFor returns the Policy this engine uses for the given OS
// classification. The constants below are carried verbatim from the
// original C implementation's Core Audio and OpenSL backends
// (SPEC_FULL.md §12): a 4096-frame activation ramp, ~0.1s resume and
// ~0.05s pause ramps on the Core-Audio-flavored policy, and voice
// reclamation on the OpenSL-flavored one.
func PolicyFor(os OS) Policy {
	switch os {
	case OSAndroid:
		return Policy{
			Name:                      "opensl",
			InitialBuses:              8,
			MaxBuses:                  32,
			ReclaimVoicesOnDeactivate: true,
			ActivationRampFrames:      0,
			PauseRamp:                 0,
			ResumeRamp:                0,
			PreferredSampleRate:       44100,
		}
	default:
		return Policy{
			Name:                      "coreaudio",
			InitialBuses:              8,
			MaxBuses:                  0,
			ReclaimVoicesOnDeactivate: false,
			ActivationRampFrames:      4096,
			PauseRamp:                 50 * time.Millisecond,
			ResumeRamp:                100 * time.Millisecond,
			PreferredSampleRate:       44100,
		}
	}
}

// DefaultPolicy returns PolicyFor(DetectOS()).
func DefaultPolicy() Policy {
	p := PolicyFor(DetectOS())
	log.Debug("backend: selected platform policy", "os", runtime.GOOS, "policy", p.Name,
		"initial_buses", p.InitialBuses, "reclaims_voices", p.ReclaimVoicesOnDeactivate)
	return p
}

// IsCI reports whether the process appears to be running inside a CI
// runner, in which case real audio hardware is unlikely to be present
// and the mock backend should be preferred. Grounded on the teacher's
// pkg/tts/audio_context_factory.go IsCI helper.
func IsCI() bool {
	for _, v := range []string{"CI", "CONTINUOUS_INTEGRATION", "GITHUB_ACTIONS", "GITLAB_CI", "BUILDKITE"} {
		if val := os.Getenv(v); val != "" && val != "false" {
			log.Debug("backend: CI environment detected", "variable", v)
			return true
		}
	}
	return false
}
