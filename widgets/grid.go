package widgets

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-drum/theme"
)

// StepState is what a single grid cell shows.
type StepState struct {
	Active   bool
	Playhead bool
	Cursor   bool
	Muted    bool
}

// RenderStep draws one cell. color is the channel's color; muted channels
// fall back to the theme's muted color.
func RenderStep(th *theme.Theme, s StepState, color lipgloss.Color) string {
	sym := th.Symbols
	var r rune
	switch {
	case s.Cursor && s.Playhead:
		r = sym.CursorPlayhead
	case s.Cursor && s.Active:
		r = sym.CursorActive
	case s.Cursor:
		r = sym.CursorEmpty
	case s.Playhead && s.Active:
		r = sym.StepFiring
	case s.Playhead:
		r = sym.StepPlayhead
	case s.Active:
		r = sym.StepActive
	default:
		r = sym.StepEmpty
	}

	style := lipgloss.NewStyle()
	switch {
	case s.Cursor:
		style = style.Foreground(th.Cursor())
	case s.Playhead && s.Active && !s.Muted:
		style = style.Foreground(th.Success()).Bold(true)
	case s.Playhead:
		style = style.Foreground(th.Warning())
	case s.Muted:
		style = style.Foreground(th.Muted())
	case s.Active:
		style = style.Foreground(color)
	default:
		style = style.Foreground(th.Muted())
	}
	return style.Render(string(r))
}

// RenderStepRow draws a channel's steps, grouping them in fours.
func RenderStepRow(th *theme.Theme, states []StepState, color lipgloss.Color) string {
	var b strings.Builder
	for i, s := range states {
		if i > 0 && i%4 == 0 {
			b.WriteString("  ")
		} else if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(RenderStep(th, s, color))
	}
	return b.String()
}

var dialPointers = []rune{'↙', '←', '↖', '↑', '↗', '→', '↘'}

// DialPointer picks the arrow closest to a dial angle in degrees, where
// -135 is fully left and +135 fully right.
func DialPointer(angle float64) rune {
	if math.IsNaN(angle) {
		angle = -135
	}
	i := int(math.Round((angle + 135) / 45))
	if i < 0 {
		i = 0
	}
	if i >= len(dialPointers) {
		i = len(dialPointers) - 1
	}
	return dialPointers[i]
}

// RenderDial shows a volume knob: pointer plus percentage.
func RenderDial(th *theme.Theme, volume, angle float64) string {
	pointer := lipgloss.NewStyle().Foreground(th.Accent()).Render(string(DialPointer(angle)))
	return fmt.Sprintf("%s%3.0f%%", pointer, volume*100)
}

// RenderBlocks draws one mark per block slot: the edited block, the other
// active blocks, then unused capacity. The block under the playhead is
// highlighted while playing.
func RenderBlocks(th *theme.Theme, current, count, capacity, playing int) string {
	sym := th.Symbols
	var b strings.Builder
	for i := 0; i < capacity; i++ {
		r := sym.BlockUnused
		style := lipgloss.NewStyle().Foreground(th.Muted())
		switch {
		case i == current:
			r = sym.BlockCurrent
			style = style.Foreground(th.Accent())
		case i < count:
			r = sym.BlockActive
			style = style.Foreground(th.FG())
		}
		if i == playing {
			style = style.Foreground(th.Success())
		}
		b.WriteString(style.Render(string(r)))
	}
	return b.String()
}
