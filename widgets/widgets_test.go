package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"go-drum/theme"
)

func TestDialPointer(t *testing.T) {
	cases := map[float64]rune{
		-135: '↙',
		-100: '←',
		0:    '↑',
		30:   '↗',
		135:  '↘',
		500:  '↘',
		-500: '↙',
	}
	for angle, want := range cases {
		if got := DialPointer(angle); got != want {
			t.Errorf("DialPointer(%v) = %c, want %c", angle, got, want)
		}
	}
}

func TestRenderStepSymbols(t *testing.T) {
	th := theme.New(nil)
	color := th.Accent()
	cases := []struct {
		state StepState
		want  string
	}{
		{StepState{}, "·"},
		{StepState{Active: true}, "●"},
		{StepState{Playhead: true}, "▶"},
		{StepState{Playhead: true, Active: true}, "◆"},
		{StepState{Cursor: true}, "○"},
		{StepState{Cursor: true, Active: true}, "◉"},
		{StepState{Cursor: true, Playhead: true}, "▷"},
	}
	for _, c := range cases {
		if got := RenderStep(th, c.state, color); !strings.Contains(got, c.want) {
			t.Errorf("RenderStep(%+v) = %q, want %s", c.state, got, c.want)
		}
	}
}

func TestRenderStepRowGroups(t *testing.T) {
	th := theme.New(nil)
	row := RenderStepRow(th, make([]StepState, 16), lipgloss.Color("#ffffff"))
	if n := strings.Count(row, "·"); n != 16 {
		t.Fatalf("row has %d cells: %q", n, row)
	}
	if strings.Count(row, "  ") < 3 {
		t.Fatalf("row not grouped in fours: %q", row)
	}
}

func TestRenderBlocks(t *testing.T) {
	th := theme.New(nil)
	got := RenderBlocks(th, 1, 3, 8, -1)
	if strings.Count(got, "◼") != 1 || strings.Count(got, "▪") != 2 || strings.Count(got, "▫") != 5 {
		t.Fatalf("RenderBlocks = %q", got)
	}
}

func TestRenderPadGrid(t *testing.T) {
	var f PadFrame
	f[0][0] = theme.RGB{255, 0, 0}
	f[8][3] = theme.RGB{0, 255, 0}
	lines := strings.Split(RenderPadGrid(&f), "\n")
	if len(lines) != 9 {
		t.Fatalf("%d lines", len(lines))
	}
	if strings.Count(lines[0], "■") != 1 || strings.Count(lines[0], "□") != 7 {
		t.Fatalf("top row = %q", lines[0])
	}
	if !strings.HasPrefix(stripStyle(lines[8]), "■") {
		t.Fatalf("bottom row = %q", lines[8])
	}
}

func TestRenderKeyHelp(t *testing.T) {
	out := RenderKeyHelp([]KeySection{{Title: "Transport", Keys: []KeyBinding{{Key: "p", Desc: "play"}}}})
	if !strings.Contains(out, "Transport") || !strings.Contains(out, "play") {
		t.Fatalf("help = %q", out)
	}
}

// stripStyle drops ANSI escapes when the renderer emits them.
func stripStyle(s string) string {
	var b strings.Builder
	esc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			esc = true
		case esc && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			esc = false
		case !esc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
