package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-drum/theme"
)

// PadFrame is the color of every Launchpad X button: rows 0-7 are the grid
// (row 0 at the bottom) with column 8 as the side buttons, row 8 is the top
// row of round buttons.
type PadFrame [9][9]theme.RGB

// RenderPad renders a single colored pad
func RenderPad(color theme.RGB) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Hex(color)))
	if color == (theme.RGB{}) {
		return style.Render("□")
	}
	return style.Render("■")
}

// RenderPadRow renders a row of colored pads with spacing
func RenderPadRow(colors []theme.RGB) string {
	var out strings.Builder
	for i, c := range colors {
		if i > 0 {
			out.WriteString(" ")
		}
		out.WriteString(RenderPad(c))
	}
	return out.String()
}

// RenderPadGrid draws the frame the way the device sits on a desk: top row
// first, then grid rows 7 down to 0 with the side buttons on the right.
func RenderPadGrid(f *PadFrame) string {
	lines := []string{RenderPadRow(f[8][:8])}
	for row := 7; row >= 0; row-- {
		lines = append(lines, RenderPadRow(f[row][:]))
	}
	return strings.Join(lines, "\n")
}

// RenderLegendItem renders a single legend item: "■ Name - description"
func RenderLegendItem(color theme.RGB, name, desc string) string {
	return fmt.Sprintf("  %s %s - %s", RenderPad(color), name, desc)
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
