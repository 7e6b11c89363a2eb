package audio

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
	"time"
)

func sineBuffer(n, rate int, freq float64) *Buffer {
	b := NewBuffer(n, rate)
	for i := range b.Samples {
		b.Samples[i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return b
}

func TestBufferDuration(t *testing.T) {
	b := NewBuffer(22050, 44100)
	if got := b.Duration(); got != 500*time.Millisecond {
		t.Fatalf("Duration() = %v, want 500ms", got)
	}
	var nilBuf *Buffer
	if nilBuf.Len() != 0 || nilBuf.Duration() != 0 {
		t.Fatal("nil buffer should be empty")
	}
}

func TestWAVRoundTrip(t *testing.T) {
	src := sineBuffer(4410, 44100, 440)

	var out bytes.Buffer
	if err := WriteWAV(&out, src); err != nil {
		t.Fatalf("WriteWAV() error = %v", err)
	}

	got, err := DecodeWAV(out.Bytes())
	if err != nil {
		t.Fatalf("DecodeWAV() error = %v", err)
	}
	if got.SampleRate != 44100 {
		t.Fatalf("SampleRate = %d, want 44100", got.SampleRate)
	}
	if got.Len() != src.Len() {
		t.Fatalf("Len() = %d, want %d", got.Len(), src.Len())
	}
	for i := range src.Samples {
		if d := math.Abs(float64(got.Samples[i] - src.Samples[i])); d > 1e-3 {
			t.Fatalf("sample %d: got %v, want %v", i, got.Samples[i], src.Samples[i])
		}
	}
}

func TestDecodeWAVGarbage(t *testing.T) {
	if _, err := DecodeWAV([]byte("definitely not a riff file")); err == nil {
		t.Fatal("expected error for garbage input")
	}
}

func TestMixerSumsAndClips(t *testing.T) {
	m := NewMixer(8)
	one := &Buffer{Samples: []float32{0.75, 0.75}, SampleRate: 8}
	m.Add(Voice{Buffer: one, Gain: 1})
	m.Add(Voice{Buffer: one, Gain: 1})
	m.Add(Voice{Buffer: one, Gain: 0.5})

	p := make([]byte, 4*3)
	n, err := m.Read(p)
	if err != nil || n != len(p) {
		t.Fatalf("Read() = %d, %v", n, err)
	}
	first := math.Float32frombits(binary.LittleEndian.Uint32(p[0:]))
	if first != 1 {
		t.Fatalf("first frame = %v, want clipped 1", first)
	}
	last := math.Float32frombits(binary.LittleEndian.Uint32(p[8:]))
	if last != 0 {
		t.Fatalf("third frame = %v, want silence after voices end", last)
	}
	if m.Active() != 0 {
		t.Fatalf("Active() = %d, want 0", m.Active())
	}
}

func TestMixerResamples(t *testing.T) {
	m := NewMixer(4)
	src := &Buffer{Samples: []float32{0.1, 0.2, 0.3, 0.4}, SampleRate: 8}
	m.Add(Voice{Buffer: src, Gain: 1})

	p := make([]byte, 4*2)
	m.Read(p)
	second := math.Float32frombits(binary.LittleEndian.Uint32(p[4:]))
	if math.Abs(float64(second-0.3)) > 1e-6 {
		t.Fatalf("second frame = %v, want 0.3 (every other source sample)", second)
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	r.Resume()
	r.Play(Voice{ID: "kick", Gain: 0.5})
	if got := r.Played(); len(got) != 1 || got[0].ID != "kick" {
		t.Fatalf("Played() = %+v", got)
	}
	r.Close()
	r.Play(Voice{ID: "snare"})
	if len(r.Played()) != 1 {
		t.Fatal("closed recorder must ignore Play")
	}
	if err := r.Resume(); err != ErrClosed {
		t.Fatalf("Resume() after close = %v, want ErrClosed", err)
	}
}
