package audio

import (
	"encoding/binary"
	"math"
	"sync"
)

// maxVoices caps simultaneous voices; the oldest is dropped when exceeded.
const maxVoices = 64

// Mixer sums triggered voices into a mono float32 little-endian stream.
// It implements io.Reader for oto.
type Mixer struct {
	mu         sync.Mutex
	sampleRate int
	voices     []*mixVoice
}

type mixVoice struct {
	buf  *Buffer
	pos  float64
	step float64 // source samples per output sample
	gain float32
}

// NewMixer creates a mixer producing sampleRate frames per second.
func NewMixer(sampleRate int) *Mixer {
	return &Mixer{sampleRate: sampleRate}
}

// Add queues a voice to start on the next Read.
func (m *Mixer) Add(v Voice) {
	if v.Buffer == nil || v.Buffer.Len() == 0 {
		return
	}
	step := 1.0
	if v.Buffer.SampleRate > 0 && v.Buffer.SampleRate != m.sampleRate {
		step = float64(v.Buffer.SampleRate) / float64(m.sampleRate)
	}
	m.mu.Lock()
	if len(m.voices) >= maxVoices {
		m.voices = m.voices[1:]
	}
	m.voices = append(m.voices, &mixVoice{buf: v.Buffer, step: step, gain: float32(v.Gain)})
	m.mu.Unlock()
}

// Active returns the number of voices still sounding.
func (m *Mixer) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.voices)
}

// Read implements io.Reader.
func (m *Mixer) Read(p []byte) (int, error) {
	frames := len(p) / 4
	m.mu.Lock()
	for i := 0; i < frames; i++ {
		var sum float32
		for idx := 0; idx < len(m.voices); idx++ {
			v := m.voices[idx]
			n := int(v.pos)
			if n >= len(v.buf.Samples) {
				m.voices = append(m.voices[:idx], m.voices[idx+1:]...)
				idx--
				continue
			}
			sum += v.buf.Samples[n] * v.gain
			v.pos += v.step
		}
		if sum > 1 {
			sum = 1
		} else if sum < -1 {
			sum = -1
		}
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(sum))
	}
	m.mu.Unlock()
	return frames * 4, nil
}
