package sequencer

import (
	"fmt"
	"sync"

	"go-drum/debug"
)

// EventKind identifies what changed. StepChanged is an edit of a cell in the
// current block, StepPlaying marks the playhead passing a cell, GridReset asks
// for a repaint of every cell in the current block.
type EventKind int

const (
	StepChanged EventKind = iota
	StepPlaying
	PlayingCleared
	MuteChanged
	BlockChanged
	VolumeChanged
	TempoChanged
	TransportChanged
	GridReset
	SoundChanged
)

var eventNames = [...]string{
	"step", "playing", "cleared", "mute", "block", "volume", "tempo", "transport", "reset", "sound",
}

func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventNames) {
		return eventNames[k]
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is a change descriptor for presentation layers. Only the fields
// relevant to Kind are set.
type Event struct {
	Kind    EventKind
	Block   int
	Channel int
	Step    int
	Cursor  int

	Active bool // StepChanged: new cell value. StepPlaying: cell is set
	Fired  bool // StepPlaying: a sound was triggered
	Muted  bool

	Volume float64
	Angle  float64 // dial rotation in degrees

	Current int // BlockChanged
	Count   int
	CanPrev bool
	CanNext bool
	Label   string // "2/4"

	BPM     float64
	Playing bool
	Sound   string
}

// DialAngle maps a volume in [0,1] to a knob rotation in degrees.
func DialAngle(volume float64) float64 {
	return -135 + volume*270
}

// bus fans events out to subscribers without ever blocking the publisher.
// A slow subscriber loses events.
type bus struct {
	mu      sync.Mutex
	subs    map[int]chan Event
	next    int
	dropped uint64
	closed  bool
}

func newBus() *bus {
	return &bus{subs: make(map[int]chan Event)}
}

func (b *bus) subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.next
	b.next++
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
	return ch, cancel
}

func (b *bus) publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.dropped++
			debug.LogEvery(50, "events", "dropped %s event (total %d)", e.Kind, b.dropped)
		}
	}
}

func (b *bus) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

func (b *bus) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
