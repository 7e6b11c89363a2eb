// Package audio is the platform seam for sample playback: immutable mono
// buffers, the Output that plays them, and WAV encode/decode.
package audio

import (
	"math"
	"time"
)

// Buffer is mono float sample data in [-1,1]. Treat it as immutable once it
// has been handed to a Bank or an Output.
type Buffer struct {
	Samples    []float32
	SampleRate int
}

// NewBuffer allocates a silent buffer of n samples.
func NewBuffer(n, sampleRate int) *Buffer {
	return &Buffer{Samples: make([]float32, n), SampleRate: sampleRate}
}

// Len returns the number of samples.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Samples)
}

// Duration returns the playing time at the buffer's own sample rate.
func (b *Buffer) Duration() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(b.Samples)) / float64(b.SampleRate) * float64(time.Second))
}

// Peak returns the largest absolute sample value.
func (b *Buffer) Peak() float64 {
	var peak float64
	for _, s := range b.Samples {
		if a := math.Abs(float64(s)); a > peak {
			peak = a
		}
	}
	return peak
}

// RMS returns the root mean square of samples [from, to).
func (b *Buffer) RMS(from, to int) float64 {
	if from < 0 {
		from = 0
	}
	if to > len(b.Samples) {
		to = len(b.Samples)
	}
	if to <= from {
		return 0
	}
	var sum float64
	for _, s := range b.Samples[from:to] {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(to-from))
}
