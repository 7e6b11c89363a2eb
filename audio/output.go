package audio

import "errors"

// ErrClosed is returned by outputs used after Close.
var ErrClosed = errors.New("audio output closed")

// Voice is one fire-and-forget playback request.
type Voice struct {
	ID     string // sound identifier, used by outputs that don't render samples (MIDI)
	Buffer *Buffer
	Gain   float64 // linear, 0..1
}

// Output is the platform audio graph. Play must not block on the sound
// finishing and must not retain the Voice past mixing it.
type Output interface {
	// Resume asks a suspended output to start producing sound. Callers do not
	// wait for the device to actually come up.
	Resume() error
	Play(v Voice)
	Close() error
}
