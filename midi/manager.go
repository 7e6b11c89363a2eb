package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	"go-drum/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// DeviceOptions selects which inputs become controllers.
type DeviceOptions struct {
	PollRate  time.Duration
	Keyboards bool     // open non-Launchpad inputs for auditioning
	Match     []string // name substrings a keyboard port must contain (any when empty)
}

// DeviceManager handles hot-plug detection of MIDI controllers
type DeviceManager struct {
	opts        DeviceOptions
	controllers map[string]Controller
	mu          sync.RWMutex
	events      chan DeviceEvent
}

// NewDeviceManager creates a new device manager
func NewDeviceManager(opts DeviceOptions) *DeviceManager {
	if opts.PollRate <= 0 {
		opts.PollRate = time.Second
	}
	return &DeviceManager{
		opts:        opts,
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
	}
}

// Events returns a channel of device connect/disconnect events. It is
// closed when Run returns.
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controllers returns a snapshot of connected controllers
func (dm *DeviceManager) Controllers() map[string]Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	out := make(map[string]Controller, len(dm.controllers))
	for k, v := range dm.controllers {
		out[k] = v
	}
	return out
}

// Run polls for devices until ctx is cancelled (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.opts.PollRate)
	defer ticker.Stop()

	dm.scan(ctx)
	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan(ctx)
		}
	}
}

func (dm *DeviceManager) scan(ctx context.Context) {
	type portsResult struct {
		in  []drivers.In
		out []drivers.Out
	}

	// CoreMIDI can hang; give up on this scan rather than block
	ch := make(chan portsResult, 1)
	go func() {
		ch <- portsResult{in: gomidi.GetInPorts(), out: gomidi.GetOutPorts()}
	}()

	var ports portsResult
	select {
	case ports = <-ch:
	case <-time.After(3 * time.Second):
		debug.Warn("devices", "port scan timed out")
		return
	case <-ctx.Done():
		return
	}

	seen := make(map[string]bool)
	for _, in := range ports.in {
		id := in.String()
		kind := dm.classify(id)
		if kind == ControllerUnknown {
			continue
		}
		seen[id] = true

		dm.mu.RLock()
		_, exists := dm.controllers[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		c, err := dm.open(kind, id, in, ports.out)
		if err != nil {
			debug.Warn("devices", "open %s: %v", id, err)
			continue
		}
		dm.mu.Lock()
		dm.controllers[id] = c
		dm.mu.Unlock()
		debug.Log("devices", "connected %s (%s)", id, kind)
		dm.emit(ctx, DeviceEvent{Type: DeviceConnected, Controller: c, ID: id})
	}

	dm.mu.Lock()
	var gone []string
	for id, c := range dm.controllers {
		if !seen[id] {
			c.Close()
			delete(dm.controllers, id)
			gone = append(gone, id)
		}
	}
	dm.mu.Unlock()

	for _, id := range gone {
		debug.Log("devices", "disconnected %s", id)
		dm.emit(ctx, DeviceEvent{Type: DeviceDisconnected, ID: id})
	}
}

func (dm *DeviceManager) open(kind ControllerType, id string, in drivers.In, outs []drivers.Out) (Controller, error) {
	if kind == ControllerKeyboard {
		return NewKeyboardController(id, in)
	}
	// Launchpad output port carries the same name as its input
	var out drivers.Out
	for _, op := range outs {
		if strings.EqualFold(op.String(), id) {
			out = op
			break
		}
	}
	return NewLaunchpadController(id, in, out)
}

func (dm *DeviceManager) emit(ctx context.Context, e DeviceEvent) {
	select {
	case dm.events <- e:
	case <-ctx.Done():
	}
}

// classify decides what an input port is used for
func (dm *DeviceManager) classify(name string) ControllerType {
	if isLaunchpad(name) {
		return ControllerLaunchpad
	}
	if !dm.opts.Keyboards {
		return ControllerUnknown
	}
	lower := strings.ToLower(name)
	if strings.Contains(lower, "through") || strings.Contains(lower, "launchpad") {
		return ControllerUnknown
	}
	if len(dm.opts.Match) == 0 {
		return ControllerKeyboard
	}
	for _, m := range dm.opts.Match {
		if strings.Contains(lower, strings.ToLower(m)) {
			return ControllerKeyboard
		}
	}
	return ControllerUnknown
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

func isLaunchpad(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}

// ListPorts returns the names of all input and output ports.
func ListPorts() (ins, outs []string) {
	for _, p := range gomidi.GetInPorts() {
		ins = append(ins, p.String())
	}
	for _, p := range gomidi.GetOutPorts() {
		outs = append(outs, p.String())
	}
	return ins, outs
}
