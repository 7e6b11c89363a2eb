package midi

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go-drum/audio"
	"go-drum/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// DrumChannel is MIDI channel 10 (zero based).
const DrumChannel uint8 = 9

// DefaultGate is how long a note is held before its note-off.
const DefaultGate = 50 * time.Millisecond

var ErrNoPort = errors.New("no MIDI output port")

// Output sends voices to an external drum machine as notes instead of
// playing samples. It implements audio.Output.
type Output struct {
	Gate time.Duration

	mu      sync.Mutex
	send    func(gomidi.Message) error
	port    drivers.Out
	kit     Kit
	channel uint8
	held    map[uint8]int
	closed  bool
}

// NewOutput wraps a sender, e.g. from gomidi.SendTo.
func NewOutput(send func(gomidi.Message) error, kit Kit) *Output {
	return &Output{
		Gate:    DefaultGate,
		send:    send,
		kit:     kit,
		channel: DrumChannel,
		held:    make(map[uint8]int),
	}
}

// OpenOutput opens the first output port whose name contains portName
// (any port when empty).
func OpenOutput(portName string, kit Kit) (*Output, error) {
	port, err := findOutPort(portName)
	if err != nil {
		return nil, err
	}
	send, err := gomidi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("open output %s: %w", port, err)
	}
	o := NewOutput(send, kit)
	o.port = port
	debug.Log("midi", "output on %s (%s kit)", port, kit.Name)
	return o, nil
}

func findOutPort(name string) (drivers.Out, error) {
	want := strings.ToLower(name)
	for _, port := range gomidi.GetOutPorts() {
		if want == "" || strings.Contains(strings.ToLower(port.String()), want) {
			return port, nil
		}
	}
	if name == "" {
		return nil, ErrNoPort
	}
	return nil, fmt.Errorf("%w matching %q", ErrNoPort, name)
}

func (o *Output) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return audio.ErrClosed
	}
	return nil
}

// Play sends a note-on now and the matching note-off after Gate.
func (o *Output) Play(v audio.Voice) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	note := o.kit.Note(v.ID)
	o.emit(Event{Type: NoteOn, Channel: o.channel, Note: note, Velocity: Velocity(v.Gain)})
	o.held[note]++

	time.AfterFunc(o.Gate, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.closed || o.held[note] == 0 {
			return
		}
		o.held[note]--
		o.emit(Event{Type: NoteOff, Channel: o.channel, Note: note})
	})
}

// Close releases held notes and the port.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil
	}
	for note, n := range o.held {
		if n > 0 {
			o.emit(Event{Type: NoteOff, Channel: o.channel, Note: note})
		}
	}
	clear(o.held)
	o.closed = true
	if o.port != nil {
		return o.port.Close()
	}
	return nil
}

// caller holds mu
func (o *Output) emit(e Event) {
	if err := o.send(e.Message()); err != nil {
		debug.Warn("midi", "send %v: %v", e, err)
	}
}
