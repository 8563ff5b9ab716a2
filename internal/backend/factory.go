package backend

import "github.com/charmbracelet/log"

// NewAuto picks a Context implementation the way the teacher's
// pkg/tts/audio_context_factory.go NewAudioContext(AudioContextAuto)
// picks one: prefer the real backend, fall back to the mock backend
// when CI is detected or the real backend fails to open. Unlike the
// teacher, a failed real-backend open here falls back rather than
// propagating the error, since a missing audio device should never
// make an otherwise-correct program uncallable in a test or CI runner.
func NewAuto(sampleRate, channelCount int) (Context, error) {
	if IsCI() {
		log.Info("backend: CI detected, using mock backend")
		return NewMockContext(sampleRate, channelCount), nil
	}

	ctx, err := NewOtoContext(sampleRate, channelCount)
	if err != nil {
		log.Warn("backend: real backend unavailable, falling back to mock", "error", err)
		return NewMockContext(sampleRate, channelCount), nil
	}
	return ctx, nil
}
