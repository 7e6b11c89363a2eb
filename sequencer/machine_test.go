package sequencer

import (
	"errors"
	"slices"
	"testing"
	"time"

	"go-drum/audio"
	"go-drum/synth"
)

const testRate = 8000

func newTestMachine(t *testing.T, cfg Config) (*Machine, *audio.Recorder, *manualClock) {
	t.Helper()
	rec := audio.NewRecorder()
	clock := &manualClock{}
	m, err := New(Options{
		Config:     cfg,
		SampleRate: testRate,
		Clock:      clock,
		NewOutput:  func() (audio.Output, error) { return rec, nil },
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m, rec, clock
}

func waitFor(t *testing.T, ch <-chan Event, kind EventKind) Event {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case e, ok := <-ch:
			if !ok {
				t.Fatalf("event channel closed waiting for %s", kind)
			}
			if e.Kind == kind {
				return e
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", kind)
		}
	}
}

func TestNewAudioUnavailable(t *testing.T) {
	_, err := New(Options{
		SampleRate: testRate,
		NewOutput:  func() (audio.Output, error) { return nil, errors.New("no device") },
	})
	if !errors.Is(err, ErrAudioUnavailable) {
		t.Fatalf("error = %v, want ErrAudioUnavailable", err)
	}
}

func TestNewDefaults(t *testing.T) {
	m, _, _ := newTestMachine(t, Config{})
	f := m.Frame()
	if len(f.Channels) != 8 || f.Steps != 16 || f.Capacity != 8 || f.Blocks != 1 {
		t.Fatalf("frame = %+v", f)
	}
	if f.Channels[0].Sound != "kick" || f.Channels[7].Sound != "fx" {
		t.Fatalf("default sounds = %q, %q", f.Channels[0].Sound, f.Channels[7].Sound)
	}
	for _, v := range synth.Catalog() {
		if !m.Bank().Has(v.ID()) {
			t.Fatalf("bank missing %s", v.ID())
		}
	}
}

func TestToggleEmitsStepChanged(t *testing.T) {
	m, _, _ := newTestMachine(t, DefaultConfig())
	events, cancel := m.Subscribe(64)
	defer cancel()

	m.SetBlockCount(2)
	m.NavigateBlock(1)
	m.Toggle(4, 7)

	e := waitFor(t, events, StepChanged)
	if e.Block != 1 || e.Channel != 4 || e.Step != 7 || !e.Active {
		t.Fatalf("event = %+v", e)
	}
}

func TestBlockEvents(t *testing.T) {
	m, _, _ := newTestMachine(t, DefaultConfig())
	events, cancel := m.Subscribe(64)
	defer cancel()

	if err := m.SetBlockCount(4); err != nil {
		t.Fatal(err)
	}
	e := waitFor(t, events, BlockChanged)
	if e.Count != 4 || e.Current != 0 || e.CanPrev || !e.CanNext || e.Label != "1/4" {
		t.Fatalf("event = %+v", e)
	}
	waitFor(t, events, GridReset)

	m.NavigateBlock(3)
	e = waitFor(t, events, BlockChanged)
	if !e.CanPrev || e.CanNext || e.Label != "4/4" {
		t.Fatalf("event = %+v", e)
	}

	if err := m.SetBlockCount(0); !errors.Is(err, ErrBlockCount) {
		t.Fatalf("error = %v", err)
	}
}

func TestVolumeEventCarriesDialAngle(t *testing.T) {
	m, _, _ := newTestMachine(t, DefaultConfig())
	events, cancel := m.Subscribe(8)
	defer cancel()

	m.SetVolume(2, 2)
	e := waitFor(t, events, VolumeChanged)
	if e.Volume != 1 || e.Angle != 135 {
		t.Fatalf("event = %+v", e)
	}
	if DialAngle(0) != -135 || DialAngle(0.5) != 0 {
		t.Fatal("dial angle endpoints")
	}
}

func TestPlayTriggersSounds(t *testing.T) {
	m, rec, clock := newTestMachine(t, DefaultConfig())
	if err := m.LoadDemo("basic"); err != nil {
		t.Fatal(err)
	}
	events, cancel := m.Subscribe(256)
	defer cancel()

	m.Play()
	if e := waitFor(t, events, TransportChanged); !e.Playing {
		t.Fatal("expected playing event")
	}
	if rec.Resumes() != 1 {
		t.Fatalf("resumes = %d", rec.Resumes())
	}

	clock.last().fire()
	e := waitFor(t, events, StepPlaying)
	if e.Step != 0 || e.Block != 0 {
		t.Fatalf("first step event = %+v", e)
	}

	var ids []string
	for _, v := range rec.Played() {
		ids = append(ids, v.ID)
	}
	want := []string{"kick", "hihat", "cymbal"}
	if !slices.Equal(ids, want) {
		t.Fatalf("played %v, want %v", ids, want)
	}
	if g := rec.Played()[0].Gain; g != DefaultVolume {
		t.Fatalf("gain = %v", g)
	}

	m.Stop()
	waitFor(t, events, PlayingCleared)
	if m.Playing() || m.Frame().Cursor != 0 {
		t.Fatal("stop did not rewind")
	}
}

func TestMutedChannelIsSilent(t *testing.T) {
	m, rec, _ := newTestMachine(t, DefaultConfig())
	m.LoadDemo("basic")
	if !m.ToggleMute(0) {
		t.Fatal("ToggleMute should report muted")
	}

	tick := m.Step()
	for _, v := range rec.Played() {
		if v.ID == "kick" {
			t.Fatal("muted kick was played")
		}
	}
	if !tick.Hits[0].Active || tick.Hits[0].Fired {
		t.Fatalf("kick hit = %+v", tick.Hits[0])
	}
	if !m.Frame().Channels[0].Steps[0] {
		t.Fatal("mute changed the grid")
	}
}

func TestFramePlayhead(t *testing.T) {
	m, _, _ := newTestMachine(t, DefaultConfig())
	if f := m.Frame(); f.PlayheadStep() != -1 {
		t.Fatalf("playhead before any step = %d", f.PlayheadStep())
	}
	m.Step()
	m.Step()
	f := m.Frame()
	if f.Cursor != 2 || f.Last != 1 || f.PlayheadStep() != 1 {
		t.Fatalf("cursor = %d last = %d playhead = %d", f.Cursor, f.Last, f.PlayheadStep())
	}

	m.SetBlockCount(2)
	m.NavigateBlock(1)
	if m.Frame().PlayheadStep() != -1 {
		t.Fatal("playhead shown in a block it is not in")
	}
	m.Stop()
	if f := m.Frame(); f.Last != -1 || f.Cursor != 0 {
		t.Fatalf("after stop: %+v", f)
	}
}

func TestAuditionIgnoresMute(t *testing.T) {
	m, rec, _ := newTestMachine(t, DefaultConfig())
	m.SetMute(1, true)
	m.SetVolume(1, 0.25)
	if !m.Audition(1) {
		t.Fatal("Audition(1) played nothing")
	}
	played := rec.Played()
	if len(played) != 1 || played[0].ID != "snare" || played[0].Gain != 0.25 {
		t.Fatalf("played = %+v", played)
	}
	if m.Audition(-1) || m.Audition(8) {
		t.Fatal("out of range channel auditioned")
	}
}

func TestSetBPMWhilePlayingRetimes(t *testing.T) {
	m, _, clock := newTestMachine(t, DefaultConfig())
	m.Step()
	m.Step()
	m.Play()

	if got := m.SetBPM(60); got != 60 {
		t.Fatalf("bpm = %v", got)
	}
	if clock.count() != 2 || clock.last().d != 250*time.Millisecond {
		t.Fatalf("tickers = %d, last interval = %v", clock.count(), clock.last().d)
	}
	if f := m.Frame(); !f.Playing || f.Cursor != 2 {
		t.Fatalf("frame playing = %v cursor = %d", f.Playing, f.Cursor)
	}
}

func TestLoadDemoRetimesAndRepaints(t *testing.T) {
	m, _, clock := newTestMachine(t, DefaultConfig())
	events, cancel := m.Subscribe(256)
	defer cancel()

	m.Play()
	if err := m.LoadDemo("house"); err != nil {
		t.Fatal(err)
	}
	if e := waitFor(t, events, TempoChanged); e.BPM != 124 {
		t.Fatalf("tempo event = %+v", e)
	}
	if e := waitFor(t, events, BlockChanged); e.Count != 4 {
		t.Fatalf("block event = %+v", e)
	}
	waitFor(t, events, GridReset)
	if clock.last().d != StepDuration(124) {
		t.Fatalf("interval = %v", clock.last().d)
	}

	if err := m.LoadDemo("nope"); !errors.Is(err, ErrUnknownDemo) {
		t.Fatalf("error = %v", err)
	}
}

func TestExportImportThroughMachine(t *testing.T) {
	m, _, _ := newTestMachine(t, DefaultConfig())
	m.LoadDemo("breakbeat")
	snap := m.Export()

	other, _, _ := newTestMachine(t, DefaultConfig())
	if err := other.Import(snap); err != nil {
		t.Fatal(err)
	}
	if f := other.Frame(); f.Blocks != 2 || f.BPM != 140 {
		t.Fatalf("imported frame blocks = %d bpm = %v", f.Blocks, f.BPM)
	}
}

func TestSoundOptions(t *testing.T) {
	m, _, _ := newTestMachine(t, DefaultConfig())
	opts := m.SoundOptions(1)
	if len(opts) != synth.Variants || opts[0] != "snare" || opts[4] != "snare5" {
		t.Fatalf("options = %v", opts)
	}
	m.SetSound(1, "my-sample")
	if opts := m.SoundOptions(1); opts[len(opts)-1] != "my-sample" {
		t.Fatalf("custom sound not offered: %v", opts)
	}
}

func TestSlowSubscriberDropsEvents(t *testing.T) {
	m, _, _ := newTestMachine(t, DefaultConfig())
	_, cancel := m.Subscribe(1)
	defer cancel()

	for i := 0; i < 5; i++ {
		m.Toggle(0, i)
	}
	if m.DroppedEvents() != 4 {
		t.Fatalf("dropped = %d, want 4", m.DroppedEvents())
	}
}

func TestCloseEndsSubscriptions(t *testing.T) {
	m, rec, _ := newTestMachine(t, DefaultConfig())
	events, _ := m.Subscribe(4)
	m.Play()
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	for range events {
	}
	if rec.Resume() == nil {
		t.Fatal("output still open after Close")
	}
}

func TestSimpleKitMachine(t *testing.T) {
	m, _, _ := newTestMachine(t, SimpleConfig())
	if err := m.LoadDemo("funk"); err != nil {
		t.Fatal(err)
	}
	f := m.Frame()
	if len(f.Channels) != 4 || f.Channels[3].Family != synth.Perc {
		t.Fatalf("channels = %+v", f.Channels)
	}
	if f.Channels[3].Sound != "perc2" || !f.Channels[3].Steps[8] {
		t.Fatalf("perc channel = %+v", f.Channels[3])
	}
}

func TestStopWhilePausedClearsPlayhead(t *testing.T) {
	m, _, _ := newTestMachine(t, DefaultConfig())
	m.Step()
	m.Step()
	events, cancel := m.Subscribe(16)
	defer cancel()

	m.Stop()
	waitFor(t, events, PlayingCleared)
	e := waitFor(t, events, TransportChanged)
	if e.Playing || e.Cursor != 0 {
		t.Fatalf("transport event = %+v", e)
	}
	if f := m.Frame(); f.Cursor != 0 || f.Last != -1 || f.PlayheadStep() != -1 {
		t.Fatalf("frame after stop = cursor %d last %d", f.Cursor, f.Last)
	}
}
