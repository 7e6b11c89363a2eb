//go:build headless

package audio

import "errors"

// OtoOutput is unavailable in headless builds.
type OtoOutput struct{}

func NewOtoOutput(sampleRate int) (*OtoOutput, error) {
	return nil, errors.New("built with headless tag: no sound device")
}

func (o *OtoOutput) Resume() error { return ErrClosed }
func (o *OtoOutput) Play(v Voice)  {}
func (o *OtoOutput) Close() error  { return nil }
