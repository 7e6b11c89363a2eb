//go:build !headless

package audio

import (
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// OtoOutput plays voices through the system sound device.
type OtoOutput struct {
	ctx    *oto.Context
	player *oto.Player
	mixer  *Mixer
	closed bool
	mutex  sync.Mutex // Only for setup/control operations
}

// NewOtoOutput opens the sound device. It fails instead of deferring the error
// to the first Play.
func NewOtoOutput(sampleRate int) (*OtoOutput, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   20 * time.Millisecond,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	o := &OtoOutput{
		ctx:   ctx,
		mixer: NewMixer(sampleRate),
	}
	o.player = ctx.NewPlayer(o.mixer)
	o.player.Play()
	return o, nil
}

func (o *OtoOutput) Resume() error {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	if o.closed {
		return ErrClosed
	}
	return o.ctx.Resume()
}

func (o *OtoOutput) Play(v Voice) {
	o.mixer.Add(v)
}

func (o *OtoOutput) Close() error {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	if o.closed {
		return nil
	}
	o.closed = true
	if err := o.player.Close(); err != nil {
		return err
	}
	return o.ctx.Suspend()
}
