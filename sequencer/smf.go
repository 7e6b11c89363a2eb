package sequencer

import (
	"fmt"
	"io"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	smfResolution   = 960
	smfTicksPerStep = smfResolution / 4
	smfNoteLength   = smfTicksPerStep / 2
	smfVelocity     = 100

	// DrumChannel is MIDI channel 10 (zero based).
	DrumChannel = 9
)

// WriteSMF writes snap as a Standard MIDI File: a tempo track, then one track
// per channel on the drum channel. note maps a sound id to a drum note.
func WriteSMF(w io.Writer, snap Snapshot, note func(sound string) uint8) error {
	if len(snap.Grid) == 0 {
		return fmt.Errorf("%w: empty grid", ErrSnapshot)
	}
	bpm := snap.BPM
	if bpm <= 0 {
		bpm = DefaultBPM
	}

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(smfResolution)

	var tempo smf.Track
	tempo.Add(0, smf.MetaMeter(4, 4))
	tempo.Add(0, smf.MetaTempo(bpm))
	tempo.Close(0)
	if err := sm.Add(tempo); err != nil {
		return fmt.Errorf("error adding tempo track: %w", err)
	}

	channels := len(snap.Grid[0])
	for ch := 0; ch < channels; ch++ {
		id := ""
		if ch < len(snap.SoundAssignment) {
			id = snap.SoundAssignment[ch]
		}
		key := note(id)

		var track smf.Track
		var pos, last uint32
		for _, block := range snap.Grid {
			if ch >= len(block) {
				return fmt.Errorf("%w: ragged grid", ErrSnapshot)
			}
			for _, v := range block[ch] {
				if v == 1 {
					track.Add(pos-last, gomidi.NoteOn(DrumChannel, key, smfVelocity))
					track.Add(smfNoteLength, gomidi.NoteOff(DrumChannel, key))
					last = pos + smfNoteLength
				}
				pos += smfTicksPerStep
			}
		}
		track.Close(pos - last)
		if err := sm.Add(track); err != nil {
			return fmt.Errorf("error adding track %d: %w", ch, err)
		}
	}

	if _, err := sm.WriteTo(w); err != nil {
		return fmt.Errorf("error writing MIDI file: %w", err)
	}
	return nil
}
