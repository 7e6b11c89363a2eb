package sequencer

import (
	"sync"
	"time"

	"go-drum/debug"
)

// StepDuration is the length of one sixteenth note at bpm.
func StepDuration(bpm float64) time.Duration {
	if bpm <= 0 {
		bpm = DefaultBPM
	}
	return time.Duration(60 / bpm / 4 * float64(time.Second))
}

// Grid is the read side of the pattern the transport plays.
type Grid interface {
	Channels() int
	StepsPerBlock() int
	BlockCount() int
	Cell(block, channel, step int) bool
	Muted(channel int) bool
	Volume(channel int) float64
	Sound(channel int) string
	BPM() float64
}

// Trigger starts a sound. It reports false when the sound is missing.
type Trigger interface {
	Trigger(id string, gain float64) bool
}

// Hit is one channel's outcome for a step.
type Hit struct {
	Channel int
	Active  bool // cell is set
	Muted   bool
	Fired   bool // active and not muted
	Missing bool // fired but the sound was not in the bank
	Sound   string
}

// Tick describes one advanced step.
type Tick struct {
	Cursor int
	Block  int
	Step   int
	Hits   []Hit
}

// TransportOptions wires a Transport. Locker must be the same lock that
// guards writes to Grid. Callbacks run with Locker held and must not call
// back into the transport.
type TransportOptions struct {
	Grid    Grid
	Player  Trigger
	Clock   Clock
	Locker  sync.Locker
	Resume  func() error
	OnStart func()
	OnTick  func(Tick)
	OnHalt  func(cursor int, stopped bool)
}

// Transport advances the play cursor on a ticker and triggers sounds.
type Transport struct {
	opts TransportOptions
	mu   sync.Locker

	cursor   int
	last     int // cursor of the latest step, -1 after a stop
	playing  bool
	gen      uint64
	ticker   Ticker
	stop     chan struct{}
	interval time.Duration
}

func NewTransport(opts TransportOptions) *Transport {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Locker == nil {
		opts.Locker = &sync.Mutex{}
	}
	return &Transport{opts: opts, mu: opts.Locker, last: -1}
}

func (t *Transport) Playing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playing
}

func (t *Transport) Cursor() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cursor
}

// Interval is the tick period of the current run (0 when stopped).
func (t *Transport) Interval() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.playing {
		return 0
	}
	return t.interval
}

// Play starts ticking from the current cursor. No-op when already playing.
func (t *Transport) Play() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.play()
}

// Pause stops ticking and keeps the cursor.
func (t *Transport) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.playing {
		t.halt(true, false)
	}
}

// Stop stops ticking and rewinds to step 0. OnHalt runs whenever the
// cursor moves, so a stop while paused still clears the playhead.
func (t *Transport) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.playing {
		t.halt(true, true)
		return
	}
	if t.cursor == 0 && t.last < 0 {
		return
	}
	t.cursor = 0
	t.last = -1
	debug.Log("transport", "rewind while paused")
	if t.opts.OnHalt != nil {
		t.opts.OnHalt(0, true)
	}
}

// Toggle plays when stopped and pauses when playing. Returns the new state.
func (t *Transport) Toggle() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.playing {
		t.halt(true, false)
	} else {
		t.play()
	}
	return t.playing
}

// Retime restarts the ticker at the grid's current tempo, keeping the cursor.
func (t *Transport) Retime() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.playing {
		return
	}
	t.halt(false, false)
	t.play()
}

// Step advances one step immediately. Hosts that drive their own clock call
// this instead of Play.
func (t *Transport) Step() Tick {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.step()
}

// caller holds mu
func (t *Transport) play() {
	if t.playing {
		return
	}
	if t.opts.Resume != nil {
		// The first step can fire before the device is running; that step is lost.
		if err := t.opts.Resume(); err != nil {
			debug.Warn("transport", "resume output: %v", err)
		}
	}
	t.playing = true
	t.gen++
	t.interval = StepDuration(t.opts.Grid.BPM())
	t.ticker = t.opts.Clock.NewTicker(t.interval)
	t.stop = make(chan struct{})
	debug.Log("transport", "play cursor=%d interval=%v", t.cursor, t.interval)
	go t.run(t.gen, t.ticker, t.stop)
	if t.opts.OnStart != nil {
		t.opts.OnStart()
	}
}

// caller holds mu
func (t *Transport) halt(notify, stopped bool) {
	t.playing = false
	t.gen++
	t.ticker.Stop()
	close(t.stop)
	t.ticker = nil
	t.stop = nil
	if stopped {
		t.cursor = 0
		t.last = -1
	}
	debug.Log("transport", "halt cursor=%d stopped=%v", t.cursor, stopped)
	if notify && t.opts.OnHalt != nil {
		t.opts.OnHalt(t.cursor, stopped)
	}
}

func (t *Transport) run(gen uint64, tk Ticker, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-tk.C():
			t.mu.Lock()
			if !t.playing || t.gen != gen {
				t.mu.Unlock()
				return
			}
			t.step()
			t.mu.Unlock()
		}
	}
}

// caller holds mu
func (t *Transport) step() Tick {
	g := t.opts.Grid
	steps := g.StepsPerBlock()
	length := g.BlockCount() * steps

	// the block count may have shrunk since the last step
	cursor := t.cursor
	if cursor >= length {
		cursor %= length
	}
	tick := Tick{
		Cursor: cursor,
		Block:  cursor / steps,
		Step:   cursor % steps,
		Hits:   make([]Hit, g.Channels()),
	}
	for c := range tick.Hits {
		h := Hit{
			Channel: c,
			Active:  g.Cell(tick.Block, c, tick.Step),
			Muted:   g.Muted(c),
			Sound:   g.Sound(c),
		}
		if h.Active && !h.Muted {
			h.Fired = true
			if t.opts.Player != nil {
				h.Missing = !t.opts.Player.Trigger(h.Sound, g.Volume(c))
			}
		}
		tick.Hits[c] = h
	}

	t.last = cursor
	t.cursor = (cursor + 1) % length
	debug.LogEvery(64, "transport", "cursor=%d", cursor)
	if t.opts.OnTick != nil {
		t.opts.OnTick(tick)
	}
	return tick
}
