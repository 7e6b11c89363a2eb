package main

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"go-drum/debug"
	"go-drum/midi"
	"go-drum/pads"
	"go-drum/sequencer"
	"go-drum/tui"
)

// ledFPS caps how often LED frames are pushed to grid controllers.
const ledFPS = 30

// controllerHost connects hot-plugged controllers to the machine: grid
// presses go through the pad layout, keyboard notes audition the channel
// playing that instrument, and LEDs follow machine events.
type controllerHost struct {
	machine *sequencer.Machine
	pads    *pads.Host
	kit     midi.Kit
	notify  func(tea.Msg)

	mu    sync.Mutex
	grids map[string]midi.Controller
}

func newControllerHost(m *sequencer.Machine, p *pads.Host, kit midi.Kit, notify func(tea.Msg)) *controllerHost {
	if notify == nil {
		notify = func(tea.Msg) {}
	}
	return &controllerHost{
		machine: m,
		pads:    p,
		kit:     kit,
		notify:  notify,
		grids:   make(map[string]midi.Controller),
	}
}

// run handles device events and repaints until ctx is done or the device
// manager stops.
func (h *controllerHost) run(ctx context.Context, devices <-chan midi.DeviceEvent) {
	events, cancel := h.machine.Subscribe(512)
	defer cancel()

	ticker := time.NewTicker(time.Second / ledFPS)
	defer ticker.Stop()

	dirty := true
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-devices:
			if !ok {
				return
			}
			h.device(ev)
			dirty = true
		case _, ok := <-events:
			if !ok {
				return
			}
			dirty = true
		case <-ticker.C:
			if dirty {
				h.paint()
				dirty = false
			}
		}
	}
}

func (h *controllerHost) device(ev midi.DeviceEvent) {
	switch ev.Type {
	case midi.DeviceConnected:
		c := ev.Controller
		switch c.Type() {
		case midi.ControllerLaunchpad:
			h.mu.Lock()
			h.grids[ev.ID] = c
			h.mu.Unlock()
			go h.readPads(c)
		case midi.ControllerKeyboard:
			go h.readNotes(c)
		}
		h.notify(tui.ControllerMsg{Name: ev.ID, Connected: true})
	case midi.DeviceDisconnected:
		h.mu.Lock()
		delete(h.grids, ev.ID)
		h.mu.Unlock()
		h.notify(tui.ControllerMsg{Name: ev.ID})
	}
}

// readPads ends when the controller closes its channel.
func (h *controllerHost) readPads(c midi.Controller) {
	for ev := range c.PadEvents() {
		h.pads.Press(ev)
	}
}

func (h *controllerHost) readNotes(c midi.Controller) {
	for ev := range c.NoteEvents() {
		h.audition(ev.Note)
	}
}

// audition plays the first channel whose instrument the kit maps note to.
func (h *controllerHost) audition(note uint8) bool {
	fam, ok := h.kit.Family(note)
	if !ok {
		return false
	}
	for c, f := range h.machine.Kit() {
		if f == fam {
			return h.machine.Audition(c)
		}
	}
	debug.Log("controllers", "no channel plays note %d (%s)", note, fam)
	return false
}

func (h *controllerHost) paint() {
	h.mu.Lock()
	grids := make([]midi.Controller, 0, len(h.grids))
	for _, c := range h.grids {
		grids = append(grids, c)
	}
	h.mu.Unlock()
	if len(grids) == 0 {
		return
	}

	leds := h.pads.LEDs(h.machine.Frame())
	for _, c := range grids {
		if err := c.SetLEDBatch(leds); err != nil {
			debug.Warn("controllers", "LEDs on %s: %v", c.ID(), err)
		}
	}
}
