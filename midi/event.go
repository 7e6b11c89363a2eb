package midi

import gomidi "gitlab.com/gomidi/midi/v2"

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
)

// Event is one outgoing note message.
type Event struct {
	Type     uint8 // NoteOn, NoteOff
	Channel  uint8
	Note     uint8
	Velocity uint8
}

// Message encodes the event for a gomidi sender.
func (e Event) Message() gomidi.Message {
	if e.Type == NoteOff {
		return gomidi.NoteOff(e.Channel, e.Note)
	}
	return gomidi.NoteOn(e.Channel, e.Note, e.Velocity)
}

// Velocity maps a gain in [0,1] to a note-on velocity in 1..127.
func Velocity(gain float64) uint8 {
	if gain <= 0 {
		return 1
	}
	if gain >= 1 {
		return 127
	}
	return uint8(1 + gain*126 + 0.5)
}
