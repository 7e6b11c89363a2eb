package sequencer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go-drum/audio"
	"go-drum/debug"
	"go-drum/sound"
	"go-drum/synth"
)

const DefaultSampleRate = 44100

var (
	ErrAudioUnavailable = errors.New("audio output unavailable")
	ErrUnknownDemo      = errors.New("unknown demo")
)

// Options configures a Machine. Zero values pick defaults.
type Options struct {
	Config     Config
	SampleRate int
	Kit        []synth.Family // family per channel, default synth.KitFor(Channels)
	NewOutput  func() (audio.Output, error)
	Clock      Clock
	Bank       *sound.Bank // default: every voice synthesized at SampleRate
}

// Machine ties the store, sound bank, player and transport together and
// publishes change events. All methods are safe for concurrent use.
type Machine struct {
	mu        sync.Mutex
	store     *Store
	kit       []synth.Family
	bank      *sound.Bank
	player    *sound.Player
	out       audio.Output
	transport *Transport
	events    *bus
	closed    bool
}

// ChannelFrame is one channel's row in a Frame.
type ChannelFrame struct {
	Family synth.Family
	Sound  string
	Muted  bool
	Volume float64
	Steps  []bool // current block
}

// Frame is a consistent copy of everything a renderer draws.
type Frame struct {
	BPM      float64
	Blocks   int
	Current  int
	Capacity int
	Steps    int
	Cursor   int // next step to play
	Last     int // step played last, -1 after a stop
	Playing  bool
	Channels []ChannelFrame
}

// CursorBlock is the block holding the playhead.
func (f Frame) CursorBlock() int { return f.Cursor / f.Steps }

// CursorStep is the playhead's step within its block.
func (f Frame) CursorStep() int { return f.Cursor % f.Steps }

// PlayheadStep is the step last played when it lies in the block being
// edited, otherwise -1.
func (f Frame) PlayheadStep() int {
	if f.Last < 0 || f.Last/f.Steps != f.Current {
		return -1
	}
	return f.Last % f.Steps
}

// New builds a Machine. A failing output constructor is reported as
// ErrAudioUnavailable.
func New(opts Options) (*Machine, error) {
	if opts.Config == (Config{}) {
		opts.Config = DefaultConfig()
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = DefaultSampleRate
	}
	if opts.Kit == nil {
		opts.Kit = synth.KitFor(opts.Config.Channels)
	}
	if len(opts.Kit) != opts.Config.Channels {
		return nil, fmt.Errorf("%w: kit has %d families for %d channels", ErrConfig, len(opts.Kit), opts.Config.Channels)
	}

	var out audio.Output = audio.NewRecorder()
	if opts.NewOutput != nil {
		o, err := opts.NewOutput()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAudioUnavailable, err)
		}
		out = o
	}

	bank := opts.Bank
	if bank == nil {
		voices := append(synth.Catalog(), synth.Voice{Family: synth.Tone, Variant: 1})
		bank = sound.NewSynthBank(opts.SampleRate, voices)
	}

	sounds := make([]string, len(opts.Kit))
	for c, f := range opts.Kit {
		sounds[c] = synth.Voice{Family: f, Variant: 1}.ID()
	}
	store, err := NewStore(opts.Config, sounds)
	if err != nil {
		return nil, err
	}

	m := &Machine{
		store:  store,
		kit:    slices.Clone(opts.Kit),
		bank:   bank,
		player: sound.NewPlayer(bank, out),
		out:    out,
		events: newBus(),
	}
	m.transport = NewTransport(TransportOptions{
		Grid:    store,
		Player:  m.player,
		Clock:   opts.Clock,
		Locker:  &m.mu,
		Resume:  m.player.Resume,
		OnStart: m.onStart,
		OnTick:  m.onTick,
		OnHalt:  m.onHalt,
	})
	debug.Log("machine", "ready: %d channels, %d steps, %d blocks, %d sounds",
		opts.Config.Channels, opts.Config.StepsPerBlock, opts.Config.BlockCapacity, bank.Len())
	return m, nil
}

// Subscribe returns a channel of change events and a cancel func. Events are
// dropped rather than queued when the channel is full.
func (m *Machine) Subscribe(buffer int) (<-chan Event, func()) {
	return m.events.subscribe(buffer)
}

// DroppedEvents counts events lost to full subscriber channels.
func (m *Machine) DroppedEvents() uint64 {
	return m.events.Dropped()
}

func (m *Machine) Config() Config    { return m.store.Config() }
func (m *Machine) Bank() *sound.Bank { return m.bank }

// Kit returns the family of each channel.
func (m *Machine) Kit() []synth.Family { return slices.Clone(m.kit) }

// SoundOptions lists the sounds offered for a channel.
func (m *Machine) SoundOptions(channel int) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store.checkChannel(channel)
	opts := synth.FamilyIDs(m.kit[channel])
	if cur := m.store.Sound(channel); !slices.Contains(opts, cur) {
		opts = append(opts, cur)
	}
	return opts
}

// Toggle flips a step in the current block.
func (m *Machine) Toggle(channel, step int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	on := m.store.Toggle(channel, step)
	m.events.publish(Event{Kind: StepChanged, Block: m.store.CurrentBlock(), Channel: channel, Step: step, Active: on})
	return on
}

func (m *Machine) SetBlockCount(n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.SetBlockCount(n); err != nil {
		return err
	}
	m.publishBlock()
	return nil
}

func (m *Machine) NavigateBlock(delta int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.store.CurrentBlock()
	cur := m.store.NavigateBlock(delta)
	if cur != prev {
		m.publishBlock()
	}
	return cur
}

func (m *Machine) ClearCurrentBlock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store.ClearCurrentBlock()
	m.events.publish(Event{Kind: GridReset, Block: m.store.CurrentBlock()})
}

func (m *Machine) ClearAllBlocks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store.ClearAllBlocks()
	m.events.publish(Event{Kind: GridReset, Block: m.store.CurrentBlock()})
}

// LoadDemo loads a demo pattern resolved against the machine's kit.
func (m *Machine) LoadDemo(key string) error {
	d, ok := LookupDemo(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownDemo, key)
	}
	steps := m.Config().StepsPerBlock
	debug.Log("machine", "load demo %s", key)
	if steps != DemoSteps {
		debug.Log("machine", "demo %s written for %d steps, laid out on %d", key, DemoSteps, steps)
	}
	return m.LoadPattern(d.Pattern(m.kit, steps))
}

// LoadPattern replaces the pattern. A playing transport picks up a new tempo.
func (m *Machine) LoadPattern(p Pattern) error {
	return m.replace(func() error { return m.store.Load(p) })
}

// Import applies a snapshot; see Store.Import.
func (m *Machine) Import(snap Snapshot) error {
	return m.replace(func() error { return m.store.Import(snap) })
}

func (m *Machine) Export() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Export()
}

func (m *Machine) replace(apply func() error) error {
	m.mu.Lock()
	oldBPM := m.store.BPM()
	if err := apply(); err != nil {
		m.mu.Unlock()
		return err
	}
	m.publishState()
	retime := m.transport.playing && m.store.BPM() != oldBPM
	m.mu.Unlock()

	if retime {
		m.transport.Retime()
	}
	return nil
}

func (m *Machine) SetMute(channel int, muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store.SetMute(channel, muted)
	m.events.publish(Event{Kind: MuteChanged, Channel: channel, Muted: muted})
}

// ToggleMute flips a channel's mute and returns the new state.
func (m *Machine) ToggleMute(channel int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	muted := !m.store.Muted(channel)
	m.store.SetMute(channel, muted)
	m.events.publish(Event{Kind: MuteChanged, Channel: channel, Muted: muted})
	return muted
}

// SetVolume clamps v to [0, 1] and returns the stored value.
func (m *Machine) SetVolume(channel int, v float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	v = m.store.SetVolume(channel, v)
	m.events.publish(Event{Kind: VolumeChanged, Channel: channel, Volume: v, Angle: DialAngle(v)})
	return v
}

func (m *Machine) SetSound(channel int, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store.SetSound(channel, id)
	m.events.publish(Event{Kind: SoundChanged, Channel: channel, Sound: id})
}

// SetBPM clamps and stores the tempo. While playing, the ticker restarts at
// the new interval from the current cursor.
func (m *Machine) SetBPM(bpm float64) float64 {
	m.mu.Lock()
	bpm = m.store.SetBPM(bpm)
	m.events.publish(Event{Kind: TempoChanged, BPM: bpm})
	playing := m.transport.playing
	m.mu.Unlock()

	if playing {
		m.transport.Retime()
	}
	return bpm
}

func (m *Machine) Play()  { m.transport.Play() }
func (m *Machine) Pause() { m.transport.Pause() }
func (m *Machine) Stop()  { m.transport.Stop() }

// TogglePlay plays or pauses and returns whether the machine is now playing.
func (m *Machine) TogglePlay() bool { return m.transport.Toggle() }

func (m *Machine) Playing() bool { return m.transport.Playing() }

// Step advances the transport by one step without the ticker.
func (m *Machine) Step() Tick { return m.transport.Step() }

// Audition plays a channel's sound once at its volume, ignoring mute.
// Unknown channels play nothing.
func (m *Machine) Audition(channel int) bool {
	if channel < 0 || channel >= m.store.Channels() {
		return false
	}
	m.mu.Lock()
	id, gain := m.store.Sound(channel), m.store.Volume(channel)
	m.mu.Unlock()

	if err := m.player.Resume(); err != nil {
		debug.Warn("machine", "resume for audition: %v", err)
	}
	return m.player.Trigger(id, gain)
}

// LoadSoundFile loads a WAV sample from a path or URL into the bank under id.
func (m *Machine) LoadSoundFile(ctx context.Context, id, url string) bool {
	return m.bank.LoadFromSource(ctx, id, sound.SourceFor(url))
}

// LoadSoundLibrary loads many samples concurrently.
func (m *Machine) LoadSoundLibrary(ctx context.Context, entries []sound.Entry) sound.LibraryResult {
	return m.bank.LoadLibrary(ctx, entries)
}

// Frame copies the state a renderer needs.
func (m *Machine) Frame() Frame {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.store
	f := Frame{
		BPM:      s.BPM(),
		Blocks:   s.BlockCount(),
		Current:  s.CurrentBlock(),
		Capacity: s.BlockCapacity(),
		Steps:    s.StepsPerBlock(),
		Cursor:   m.transport.cursor,
		Last:     m.transport.last,
		Playing:  m.transport.playing,
		Channels: make([]ChannelFrame, s.Channels()),
	}
	for c := range f.Channels {
		steps := make([]bool, f.Steps)
		for st := range steps {
			steps[st] = s.Cell(f.Current, c, st)
		}
		f.Channels[c] = ChannelFrame{
			Family: m.kit[c],
			Sound:  s.Sound(c),
			Muted:  s.Muted(c),
			Volume: s.Volume(c),
			Steps:  steps,
		}
	}
	return f
}

// Close stops playback, closes subscriber channels and the output.
func (m *Machine) Close() error {
	m.transport.Stop()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.events.close()
	return m.out.Close()
}

// caller holds mu
func (m *Machine) publishBlock() {
	cur, count := m.store.CurrentBlock(), m.store.BlockCount()
	m.events.publish(Event{
		Kind:    BlockChanged,
		Current: cur,
		Count:   count,
		CanPrev: cur > 0,
		CanNext: cur < count-1,
		Label:   fmt.Sprintf("%d/%d", cur+1, count),
	})
	m.events.publish(Event{Kind: GridReset, Block: cur})
}

// caller holds mu
func (m *Machine) publishState() {
	m.events.publish(Event{Kind: TempoChanged, BPM: m.store.BPM()})
	for c := 0; c < m.store.Channels(); c++ {
		m.events.publish(Event{Kind: SoundChanged, Channel: c, Sound: m.store.Sound(c)})
	}
	m.publishBlock()
}

// transport callbacks, called with mu held

func (m *Machine) onStart() {
	m.events.publish(Event{Kind: TransportChanged, Playing: true, Cursor: m.transport.cursor})
}

func (m *Machine) onTick(t Tick) {
	for _, h := range t.Hits {
		m.events.publish(Event{
			Kind:    StepPlaying,
			Block:   t.Block,
			Channel: h.Channel,
			Step:    t.Step,
			Cursor:  t.Cursor,
			Active:  h.Active,
			Fired:   h.Fired,
			Muted:   h.Muted,
			Sound:   h.Sound,
		})
	}
}

func (m *Machine) onHalt(cursor int, stopped bool) {
	m.events.publish(Event{Kind: PlayingCleared, Cursor: cursor})
	m.events.publish(Event{Kind: TransportChanged, Playing: false, Cursor: cursor})
}
