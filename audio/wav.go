package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	wav "github.com/youpy/go-wav"
)

// ErrEmptyWAV is returned for a well-formed file with no sample frames.
var ErrEmptyWAV = errors.New("wav contains no samples")

// ReadWAV decodes a whole WAV stream, mixing all channels down to mono.
func ReadWAV(r io.Reader) (*Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return DecodeWAV(data)
}

// DecodeWAV decodes WAV file bytes, mixing all channels down to mono.
func DecodeWAV(data []byte) (*Buffer, error) {
	r := wav.NewReader(bytes.NewReader(data))
	format, err := r.Format()
	if err != nil {
		return nil, fmt.Errorf("read wav format: %w", err)
	}
	if format.NumChannels == 0 || format.SampleRate == 0 {
		return nil, fmt.Errorf("invalid wav format: %d channels at %d Hz", format.NumChannels, format.SampleRate)
	}

	buf := &Buffer{SampleRate: int(format.SampleRate)}
	channels := uint(format.NumChannels)
	for {
		samples, err := r.ReadSamples()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read wav samples: %w", err)
		}
		for _, sample := range samples {
			var v float64
			for ch := uint(0); ch < channels; ch++ {
				v += r.FloatValue(sample, ch)
			}
			buf.Samples = append(buf.Samples, float32(v/float64(channels)))
		}
	}
	if len(buf.Samples) == 0 {
		return nil, ErrEmptyWAV
	}
	return buf, nil
}

// WriteWAV encodes buf as 16-bit mono PCM.
func WriteWAV(w io.Writer, buf *Buffer) error {
	samples := make([]wav.Sample, len(buf.Samples))
	for i, s := range buf.Samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		samples[i].Values[0] = int(s * 32767)
	}
	ww := wav.NewWriter(w, uint32(len(samples)), 1, uint32(buf.SampleRate), 16)
	return ww.WriteSamples(samples)
}
