// Package mal is a portable low-level audio playback engine. It plays
// fully-decoded PCM buffers through a small pool of players, with
// per-player gain, mute, looping and state, and delivers a "finished"
// callback when a non-looping player reaches the end of its buffer.
//
// Mal has no opinion about file formats, decoding, or mixing: callers
// hand it linear PCM and get playback. A Context owns every Buffer and
// Player it creates; destroying objects in any order is safe, and the
// render path never touches memory a mutator has already freed.
package mal
