package pads

import (
	"testing"

	"go-drum/midi"
	"go-drum/sequencer"
	"go-drum/synth"
	"go-drum/theme"
)

type fakeEngine struct {
	frame   sequencer.Frame
	calls   []string
	toggled [][2]int
}

func newFakeEngine(channels int) *fakeEngine {
	f := sequencer.Frame{BPM: 120, Blocks: 2, Capacity: 8, Steps: 16, Last: -1}
	for _, fam := range synth.KitFor(channels) {
		f.Channels = append(f.Channels, sequencer.ChannelFrame{Family: fam, Volume: 0.8, Steps: make([]bool, 16)})
	}
	return &fakeEngine{frame: f}
}

func (e *fakeEngine) Toggle(channel, step int) bool {
	e.toggled = append(e.toggled, [2]int{channel, step})
	s := e.frame.Channels[channel].Steps
	s[step] = !s[step]
	return s[step]
}

func (e *fakeEngine) ToggleMute(channel int) bool {
	e.calls = append(e.calls, "mute")
	e.frame.Channels[channel].Muted = !e.frame.Channels[channel].Muted
	return e.frame.Channels[channel].Muted
}

func (e *fakeEngine) NavigateBlock(delta int) int {
	e.calls = append(e.calls, "navigate")
	e.frame.Current += delta
	return e.frame.Current
}

func (e *fakeEngine) SetBlockCount(n int) error {
	e.calls = append(e.calls, "count")
	e.frame.Blocks = n
	return nil
}

func (e *fakeEngine) TogglePlay() bool {
	e.calls = append(e.calls, "play")
	e.frame.Playing = !e.frame.Playing
	return e.frame.Playing
}

func (e *fakeEngine) Stop()                  { e.calls = append(e.calls, "stop") }
func (e *fakeEngine) ClearCurrentBlock()     { e.calls = append(e.calls, "clear") }
func (e *fakeEngine) Frame() sequencer.Frame { return e.frame }

func TestPressTogglesPagedStep(t *testing.T) {
	e := newFakeEngine(8)
	h := NewHost(e, nil)

	h.Press(midi.PadEvent{Row: 7, Col: 2})
	h.Press(midi.PadEvent{Row: 8, Col: ButtonNextPage})
	h.Press(midi.PadEvent{Row: 8, Col: ButtonNextPage}) // already on the last page
	h.Press(midi.PadEvent{Row: 0, Col: 5})

	want := [][2]int{{0, 2}, {7, 13}}
	if len(e.toggled) != len(want) || e.toggled[0] != want[0] || e.toggled[1] != want[1] {
		t.Fatalf("toggled = %v, want %v", e.toggled, want)
	}
	if h.Page() != 1 {
		t.Fatalf("page = %d", h.Page())
	}
}

func TestPressOnSmallKitIgnoresEmptyRows(t *testing.T) {
	e := newFakeEngine(4)
	h := NewHost(e, nil)
	if h.Press(midi.PadEvent{Row: 0, Col: 0}) {
		t.Fatal("row for channel 7 on a 4 channel kit did something")
	}
	if !h.Press(midi.PadEvent{Row: 4, Col: 0}) {
		t.Fatal("row for channel 3 did nothing")
	}
}

func TestButtons(t *testing.T) {
	e := newFakeEngine(8)
	h := NewHost(e, nil)
	for _, col := range []int{ButtonNextBlock, ButtonPlay, ButtonStop, ButtonClear, ButtonAddBlock} {
		if !h.Press(midi.PadEvent{Row: 8, Col: col}) {
			t.Fatalf("button %d ignored", col)
		}
	}
	h.Press(midi.PadEvent{Row: 3, Col: 8})

	want := []string{"navigate", "play", "stop", "clear", "count", "mute"}
	if len(e.calls) != len(want) {
		t.Fatalf("calls = %v", e.calls)
	}
	for i := range want {
		if e.calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", e.calls, want)
		}
	}
	if e.frame.Blocks != 3 || !e.frame.Channels[4].Muted {
		t.Fatalf("frame = %+v", e.frame)
	}
}

func TestAddBlockWraps(t *testing.T) {
	e := newFakeEngine(8)
	e.frame.Blocks = 8
	NewHost(e, nil).Press(midi.PadEvent{Row: 8, Col: ButtonAddBlock})
	if e.frame.Blocks != 1 {
		t.Fatalf("blocks = %d", e.frame.Blocks)
	}
}

func TestRender(t *testing.T) {
	e := newFakeEngine(8)
	th := theme.New(nil)
	h := NewHost(e, th)

	e.frame.Channels[0].Steps[1] = true
	e.frame.Channels[1].Steps[2] = true
	e.frame.Channels[1].Muted = true
	e.frame.Playing = true
	e.frame.Cursor = 3
	e.frame.Last = 2

	f := h.Render(e.frame)
	if f[7][1] != th.FamilyRGB(synth.Kick) {
		t.Fatalf("kick step color = %v", f[7][1])
	}
	if f[6][2] != white {
		t.Fatalf("playhead on hit = %v", f[6][2])
	}
	if f[6][8] != red {
		t.Fatalf("muted side button = %v", f[6][8])
	}
	if f[7][3] != (theme.RGB{}) {
		t.Fatalf("empty off-beat step lit: %v", f[7][3])
	}
	if f[8][ButtonPrevBlock] != (theme.RGB{}) || f[8][ButtonNextBlock] == (theme.RGB{}) {
		t.Fatal("block buttons should show only the available direction")
	}

	leds := h.LEDs(e.frame)
	if len(leds) != 80 {
		t.Fatalf("%d LED updates", len(leds))
	}
	pulsing := 0
	for _, u := range leds {
		if u.Channel == midi.ChannelPulse {
			pulsing++
			if u.Row != 8 || u.Col != ButtonPlay {
				t.Fatalf("unexpected pulse at %d,%d", u.Row, u.Col)
			}
		}
	}
	if pulsing != 1 {
		t.Fatalf("%d pulsing LEDs", pulsing)
	}
}

func TestRenderHidesPlayheadInOtherBlock(t *testing.T) {
	e := newFakeEngine(8)
	h := NewHost(e, nil)
	e.frame.Playing = true
	e.frame.Last = 16 + 3 // block 1
	f := h.Render(e.frame)
	for row := 0; row < 8; row++ {
		if f[row][3] == white {
			t.Fatal("playhead drawn in the wrong block")
		}
	}
}
