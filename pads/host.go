// Package pads lays the drum machine out on a Launchpad X: the 8x8 grid
// shows eight steps of the current block per channel, one channel per row
// with the first channel at the top.
package pads

import (
	"sync"

	"go-drum/debug"
	"go-drum/midi"
	"go-drum/sequencer"
	"go-drum/theme"
	"go-drum/widgets"
)

// Width is the number of steps one page of pads shows.
const Width = 8

// Top row buttons
const (
	ButtonPrevBlock = iota
	ButtonNextBlock
	ButtonPrevPage
	ButtonNextPage
	ButtonPlay
	ButtonStop
	ButtonClear
	ButtonAddBlock
)

// Engine is the part of the machine the pads drive.
type Engine interface {
	Toggle(channel, step int) bool
	ToggleMute(channel int) bool
	NavigateBlock(delta int) int
	SetBlockCount(n int) error
	TogglePlay() bool
	Stop()
	ClearCurrentBlock()
	Frame() sequencer.Frame
}

// Host maps pad presses to engine calls and renders LED frames.
type Host struct {
	engine Engine
	theme  *theme.Theme

	mu   sync.Mutex
	page int
}

func NewHost(engine Engine, th *theme.Theme) *Host {
	if th == nil {
		th = theme.New(nil)
	}
	return &Host{engine: engine, theme: th}
}

// Page is the step page shown, 0 for steps 0-7.
func (h *Host) Page() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.page
}

func pages(steps int) int {
	return (steps + Width - 1) / Width
}

// Press handles one pad event. It reports whether the press did anything.
func (h *Host) Press(ev midi.PadEvent) bool {
	f := h.engine.Frame()
	if ev.Row == 8 {
		return h.button(ev.Col, f)
	}
	if ev.Row < 0 || ev.Row > 7 {
		return false
	}
	channel := 7 - ev.Row
	if channel >= len(f.Channels) {
		return false
	}
	if ev.Col == 8 {
		h.engine.ToggleMute(channel)
		return true
	}

	step := h.Page()*Width + ev.Col
	if step >= f.Steps {
		return false
	}
	on := h.engine.Toggle(channel, step)
	debug.Log("pads", "toggle ch=%d step=%d -> %v", channel, step, on)
	return true
}

func (h *Host) button(col int, f sequencer.Frame) bool {
	switch col {
	case ButtonPrevBlock:
		h.engine.NavigateBlock(-1)
	case ButtonNextBlock:
		h.engine.NavigateBlock(1)
	case ButtonPrevPage, ButtonNextPage:
		h.mu.Lock()
		if col == ButtonPrevPage && h.page > 0 {
			h.page--
		} else if col == ButtonNextPage && h.page < pages(f.Steps)-1 {
			h.page++
		}
		h.mu.Unlock()
	case ButtonPlay:
		h.engine.TogglePlay()
	case ButtonStop:
		h.engine.Stop()
	case ButtonClear:
		h.engine.ClearCurrentBlock()
	case ButtonAddBlock:
		n := f.Blocks + 1
		if n > f.Capacity {
			n = 1
		}
		if err := h.engine.SetBlockCount(n); err != nil {
			debug.Warn("pads", "block count %d: %v", n, err)
			return false
		}
	default:
		return false
	}
	return true
}

var (
	white = theme.RGB{255, 255, 255}
	red   = theme.RGB{255, 0, 0}
	green = theme.RGB{0, 255, 0}
)

// Render draws f as it appears on the pads.
func (h *Host) Render(f sequencer.Frame) widgets.PadFrame {
	var out widgets.PadFrame
	page := h.Page()
	if page >= pages(f.Steps) {
		page = 0
	}
	playhead := f.PlayheadStep()

	beat := h.theme.RGB(theme.RoleSurface).Scale(0.5)
	for c, ch := range f.Channels {
		if c > 7 {
			break
		}
		row := 7 - c
		color := h.theme.FamilyRGB(ch.Family)
		if ch.Muted {
			color = color.Scale(0.25)
		}
		for col := 0; col < Width; col++ {
			step := page*Width + col
			if step >= f.Steps {
				continue
			}
			on := ch.Steps[step]
			switch {
			case step == playhead && on:
				out[row][col] = white
			case step == playhead:
				out[row][col] = h.theme.RGB(theme.RoleWarning).Scale(0.4)
			case on:
				out[row][col] = color
			case step%4 == 0:
				out[row][col] = beat
			}
		}
		if ch.Muted {
			out[row][8] = red
		} else {
			out[row][8] = h.theme.FamilyRGB(ch.Family).Scale(0.5)
		}
	}

	dim := h.theme.RGB(theme.RoleMuted)
	lit := h.theme.RGB(theme.RoleAccent)
	top := &out[8]
	if f.Current > 0 {
		top[ButtonPrevBlock] = lit
	}
	if f.Current < f.Blocks-1 {
		top[ButtonNextBlock] = lit
	}
	if page > 0 {
		top[ButtonPrevPage] = lit
	} else {
		top[ButtonPrevPage] = dim
	}
	if page < pages(f.Steps)-1 {
		top[ButtonNextPage] = lit
	} else {
		top[ButtonNextPage] = dim
	}
	if f.Playing {
		top[ButtonPlay] = green
	} else {
		top[ButtonPlay] = green.Scale(0.4)
	}
	top[ButtonStop] = red.Scale(0.5)
	top[ButtonClear] = h.theme.RGB(theme.RoleWarning).Scale(0.5)
	top[ButtonAddBlock] = dim
	return out
}

// LEDs converts a rendered frame into controller updates. The play button
// pulses while playing.
func (h *Host) LEDs(f sequencer.Frame) []midi.LEDUpdate {
	frame := h.Render(f)
	updates := make([]midi.LEDUpdate, 0, 81)
	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			if row == 8 && col == 8 {
				continue
			}
			u := midi.LEDUpdate{Row: row, Col: col, Color: frame[row][col]}
			if row == 8 && col == ButtonPlay && f.Playing {
				u.Channel = midi.ChannelPulse
			}
			updates = append(updates, u)
		}
	}
	return updates
}
