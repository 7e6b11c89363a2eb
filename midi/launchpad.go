package midi

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go-drum/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Launchpad X programmer-mode SysEx bodies (without F0/F7)
var (
	sysexProgrammerMode = []byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x00, 0x7F}
	sysexBrightness     = []byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x08, 0x7F}
	sysexLEDFeedback    = []byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x0A, 0x01, 0x01}
)

// LaunchpadController handles a Novation Launchpad X in programmer mode.
// LED writes are diffed against what the device already shows.
type LaunchpadController struct {
	id       string
	outPort  drivers.Out
	send     func(msg gomidi.Message) error
	stopFunc func()

	padChan  chan PadEvent
	noteChan chan NoteEvent

	mu     sync.Mutex
	shown  map[[2]int]LEDUpdate
	sent   atomic.Uint64
	closed bool
}

// NewLaunchpadController opens the ports and switches the device to programmer mode
func NewLaunchpadController(id string, inPort drivers.In, outPort drivers.Out) (*LaunchpadController, error) {
	var send func(gomidi.Message) error
	if outPort != nil {
		s, err := gomidi.SendTo(outPort)
		if err != nil {
			return nil, fmt.Errorf("open output: %w", err)
		}
		send = s
	}
	lp := newLaunchpad(id, send)
	lp.outPort = outPort
	lp.init()

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			lp.handle(msg)
		})
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		lp.stopFunc = stop
	}
	return lp, nil
}

func newLaunchpad(id string, send func(gomidi.Message) error) *LaunchpadController {
	return &LaunchpadController{
		id:       id,
		send:     send,
		padChan:  make(chan PadEvent, 32),
		noteChan: make(chan NoteEvent),
		shown:    make(map[[2]int]LEDUpdate),
	}
}

func (lp *LaunchpadController) init() {
	if lp.send == nil {
		return
	}
	for _, body := range [][]byte{sysexProgrammerMode, sysexBrightness, sysexLEDFeedback} {
		if err := lp.send(gomidi.SysEx(body)); err != nil {
			debug.Warn("launchpad", "sysex: %v", err)
		}
	}
}

// handle turns pad notes (grid and side column) and top-row CCs into PadEvents
func (lp *LaunchpadController) handle(msg gomidi.Message) {
	var channel, key, value uint8
	row, col := -1, -1
	switch {
	case msg.GetNoteOn(&channel, &key, &value) && value > 0:
		row, col = noteToRowCol(key)
	case msg.GetControlChange(&channel, &key, &value) && value > 0:
		row, col = ccToRowCol(key)
	}
	if row < 0 {
		return
	}
	select {
	case lp.padChan <- PadEvent{Row: row, Col: col, Velocity: value}:
	default:
		debug.Warn("launchpad", "pad event dropped %d,%d", row, col)
	}
}

func (lp *LaunchpadController) ID() string {
	return lp.id
}

func (lp *LaunchpadController) Type() ControllerType {
	return ControllerLaunchpad
}

func (lp *LaunchpadController) PadEvents() <-chan PadEvent {
	return lp.padChan
}

// NoteEvents never delivers; pads arrive as PadEvents.
func (lp *LaunchpadController) NoteEvents() <-chan NoteEvent {
	return lp.noteChan
}

// SetLEDBatch sends the updates that differ from the last color sent for
// each pad. Individual NoteOn messages are used; SysEx batching had color issues.
func (lp *LaunchpadController) SetLEDBatch(updates []LEDUpdate) error {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	if lp.send == nil || lp.closed {
		return nil
	}

	n := 0
	for _, u := range updates {
		key := [2]int{u.Row, u.Col}
		if prev, ok := lp.shown[key]; ok && prev == u {
			continue
		}
		if err := lp.send(gomidi.NoteOn(u.Channel, rowColToNote(u.Row, u.Col), mapRGBToLaunchpad(u.Color))); err != nil {
			return err
		}
		lp.shown[key] = u
		n++
	}

	count := lp.sent.Add(uint64(n))
	if n > 0 && count%100 < uint64(n) {
		debug.Log("lp-send", "batch count=%d (this batch=%d)", count, n)
	}
	return nil
}

// Sent counts LED messages actually written.
func (lp *LaunchpadController) Sent() uint64 {
	return lp.sent.Load()
}

// launchpadPalette holds approximate RGB values of Launchpad X palette
// entries: {velocity, R, G, B}
var launchpadPalette = [][4]uint8{
	{0, 0, 0, 0},         // off
	{5, 255, 0, 0},       // red
	{6, 255, 80, 80},     // bright red
	{7, 180, 60, 60},     // dim red
	{9, 255, 100, 0},     // orange
	{11, 180, 80, 40},    // dim orange
	{13, 255, 200, 0},    // yellow
	{17, 0, 180, 0},      // green
	{19, 0, 100, 0},      // dim green
	{21, 0, 255, 0},      // bright green
	{37, 0, 200, 200},    // cyan
	{43, 40, 60, 120},    // dim blue
	{45, 0, 100, 255},    // blue
	{49, 150, 0, 200},    // purple
	{53, 255, 80, 180},   // pink
	{84, 255, 150, 50},   // bright orange
	{87, 150, 255, 100},  // lime
	{103, 20, 20, 20},    // near black
	{119, 255, 255, 255}, // white
}

// mapRGBToLaunchpad finds the nearest palette velocity for an RGB value
func mapRGBToLaunchpad(rgb [3]uint8) uint8 {
	best, bestDist := uint8(0), -1
	r, g, b := int(rgb[0]), int(rgb[1]), int(rgb[2])
	for _, p := range launchpadPalette {
		dr, dg, db := r-int(p[1]), g-int(p[2]), b-int(p[3])
		dist := dr*dr + dg*dg + db*db
		if bestDist < 0 || dist < bestDist {
			best, bestDist = p[0], dist
		}
	}
	return best
}

// Close blanks every LED, stops listening and closes the event channels
func (lp *LaunchpadController) Close() error {
	var blank []LEDUpdate
	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			if row == 8 && col == 8 {
				continue // no LED at 8,8
			}
			blank = append(blank, LEDUpdate{Row: row, Col: col})
		}
	}
	lp.SetLEDBatch(blank)

	lp.mu.Lock()
	if lp.closed {
		lp.mu.Unlock()
		return nil
	}
	lp.closed = true
	lp.mu.Unlock()

	if lp.stopFunc != nil {
		lp.stopFunc()
	}
	close(lp.padChan)
	close(lp.noteChan)
	return nil
}

// Launchpad X note mapping
// 8x8 Grid:  Row 0 (bottom) = notes 11-18, Row 7 = notes 81-88
// Side col:  Col 8 = notes 19, 29, ... 89
// Top row:   Row 8 = CC 91-98 (LEDs addressed as notes 91-98)

func rowColToNote(row, col int) uint8 {
	if row == 8 {
		return uint8(91 + col)
	}
	return uint8((row+1)*10 + col + 1)
}

func noteToRowCol(note uint8) (row, col int) {
	if note >= 91 && note <= 98 {
		return 8, int(note - 91)
	}
	row = int(note/10) - 1
	col = int(note%10) - 1
	if row < 0 || row > 7 || col < 0 || col > 8 {
		return -1, -1
	}
	return row, col
}

func ccToRowCol(cc uint8) (row, col int) {
	if cc >= 91 && cc <= 98 {
		return 8, int(cc - 91)
	}
	return -1, -1
}
