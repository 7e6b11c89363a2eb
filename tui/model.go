package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-drum/debug"
	"go-drum/pads"
	"go-drum/sequencer"
	"go-drum/theme"
	"go-drum/widgets"
)

const (
	tempoStep  = 5
	volumeStep = 0.1
)

// Options wires a Model to a machine.
type Options struct {
	Machine     *sequencer.Machine
	Theme       *theme.Theme
	SnapshotDir string
	Demo        string                   // key of the demo already loaded
	Pads        *pads.Host               // Launchpad preview, optional
	Notes       func(sound string) uint8 // drum note per sound for .mid export
}

type Model struct {
	machine *sequencer.Machine
	theme   *theme.Theme
	keys    keyMap
	help    help.Model

	events <-chan sequencer.Event
	cancel func()
	frame  sequencer.Frame
	fired  []bool

	row, col    int
	demos       []sequencer.DemoInfo
	demo        int
	snapshotDir string
	pads        *pads.Host
	showPads    bool
	notes       func(string) uint8

	status      string
	controllers []string
	quitting    bool
}

// StatusMsg puts a line in the status bar.
type StatusMsg string

// ControllerMsg reports a controller connecting or going away.
type ControllerMsg struct {
	Name      string
	Connected bool
}

type eventMsg sequencer.Event

type closedMsg struct{}

func NewModel(opts Options) Model {
	th := opts.Theme
	if th == nil {
		th = theme.New(nil)
	}
	events, cancel := opts.Machine.Subscribe(256)
	f := opts.Machine.Frame()

	m := Model{
		machine:     opts.Machine,
		theme:       th,
		keys:        defaultKeyMap(),
		help:        help.New(),
		events:      events,
		cancel:      cancel,
		frame:       f,
		fired:       make([]bool, len(f.Channels)),
		demos:       sequencer.DemoList(),
		snapshotDir: opts.SnapshotDir,
		pads:        opts.Pads,
		showPads:    opts.Pads != nil,
		notes:       opts.Notes,
	}
	for i, d := range m.demos {
		if d.Key == opts.Demo {
			m.demo = i
		}
	}
	return m
}

// waitForEvent delivers the next machine event as a message.
func waitForEvent(ch <-chan sequencer.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return closedMsg{}
		}
		return eventMsg(e)
	}
}

func (m Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		}
		m = m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case eventMsg:
		m = m.apply(sequencer.Event(msg))
		return m, waitForEvent(m.events)

	case closedMsg:
		return m, tea.Quit

	case StatusMsg:
		m.status = string(msg)

	case ControllerMsg:
		if msg.Connected {
			m.controllers = append(m.controllers, msg.Name)
			m.status = "connected " + msg.Name
		} else {
			m.controllers = slices.DeleteFunc(m.controllers, func(n string) bool { return n == msg.Name })
			m.status = "disconnected " + msg.Name
		}
	}
	return m, nil
}

// apply folds an event into the local frame. Playhead events only move the
// cursor; anything else re-reads the machine.
func (m Model) apply(e sequencer.Event) Model {
	switch e.Kind {
	case sequencer.StepPlaying:
		m.frame.Last = e.Cursor
		if n := m.frame.Blocks * m.frame.Steps; n > 0 {
			m.frame.Cursor = (e.Cursor + 1) % n
		}
		if e.Channel < len(m.fired) {
			m.fired[e.Channel] = e.Fired
		}
	case sequencer.PlayingCleared:
		clear(m.fired)
		m.frame = m.machine.Frame()
	default:
		m.frame = m.machine.Frame()
	}
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) Model {
	mc := m.machine
	f := mc.Frame()
	m.frame = f
	k := m.keys

	switch {
	case key.Matches(msg, k.Up):
		if m.row > 0 {
			m.row--
		}
	case key.Matches(msg, k.Down):
		if m.row < len(f.Channels)-1 {
			m.row++
		}
	case key.Matches(msg, k.Left):
		if m.col > 0 {
			m.col--
		}
	case key.Matches(msg, k.Right):
		if m.col < f.Steps-1 {
			m.col++
		}

	case key.Matches(msg, k.Toggle):
		mc.Toggle(m.row, m.col)
	case key.Matches(msg, k.Play):
		mc.TogglePlay()
	case key.Matches(msg, k.Stop):
		mc.Stop()
	case key.Matches(msg, k.Step):
		mc.Step()
	case key.Matches(msg, k.PrevBlock):
		mc.NavigateBlock(-1)
	case key.Matches(msg, k.NextBlock):
		mc.NavigateBlock(1)
	case key.Matches(msg, k.AddBlock):
		m.setBlocks(f.Blocks + 1)
	case key.Matches(msg, k.DropBlock):
		m.setBlocks(f.Blocks - 1)
	case key.Matches(msg, k.Clear):
		mc.ClearCurrentBlock()
	case key.Matches(msg, k.ClearAll):
		mc.ClearAllBlocks()

	case key.Matches(msg, k.Mute):
		mc.ToggleMute(m.row)
	case key.Matches(msg, k.Audition):
		if !mc.Audition(m.row) {
			m.status = "sound not loaded: " + f.Channels[m.row].Sound
		}
	case key.Matches(msg, k.Sound):
		opts := mc.SoundOptions(m.row)
		next := opts[(slices.Index(opts, f.Channels[m.row].Sound)+1)%len(opts)]
		mc.SetSound(m.row, next)
		mc.Audition(m.row)
		m.status = fmt.Sprintf("%s: %s", f.Channels[m.row].Family, next)
	case key.Matches(msg, k.VolUp):
		mc.SetVolume(m.row, f.Channels[m.row].Volume+volumeStep)
	case key.Matches(msg, k.VolDown):
		mc.SetVolume(m.row, f.Channels[m.row].Volume-volumeStep)
	case key.Matches(msg, k.Faster):
		mc.SetBPM(f.BPM + tempoStep)
	case key.Matches(msg, k.Slower):
		mc.SetBPM(f.BPM - tempoStep)

	case key.Matches(msg, k.Demo):
		m.demo = (m.demo + 1) % len(m.demos)
		d := m.demos[m.demo]
		if err := mc.LoadDemo(d.Key); err != nil {
			m.status = err.Error()
		} else {
			m.status = fmt.Sprintf("demo: %s (%.0f bpm)", d.Name, d.BPM)
		}
	case key.Matches(msg, k.Save):
		m.status = m.save()
	case key.Matches(msg, k.Load):
		m.status = m.load()
	case key.Matches(msg, k.Export):
		m.status = m.export()
	case key.Matches(msg, k.Pads):
		m.showPads = !m.showPads && m.pads != nil
	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m
}

func (m *Model) setBlocks(n int) {
	if err := m.machine.SetBlockCount(n); err != nil {
		m.status = err.Error()
	}
}

func (m Model) save() string {
	if m.snapshotDir == "" {
		return "no snapshot directory"
	}
	path, err := sequencer.SaveSnapshot(m.snapshotDir, "", m.machine.Export())
	if err != nil {
		debug.Warn("tui", "save: %v", err)
		return "save failed: " + err.Error()
	}
	return "saved " + filepath.Base(path)
}

func (m Model) load() string {
	if m.snapshotDir == "" {
		return "no snapshot directory"
	}
	snap, err := sequencer.LoadLatestSnapshot(m.snapshotDir)
	if err != nil {
		return "load failed: " + err.Error()
	}
	if err := m.machine.Import(snap); err != nil {
		return "import failed: " + err.Error()
	}
	return "loaded latest snapshot"
}

func (m Model) export() string {
	if m.snapshotDir == "" || m.notes == nil {
		return "midi export unavailable"
	}
	if err := os.MkdirAll(m.snapshotDir, 0755); err != nil {
		return err.Error()
	}
	path := filepath.Join(m.snapshotDir, time.Now().Format("2006-01-02_15-04-05")+".mid")
	out, err := os.Create(path)
	if err != nil {
		return err.Error()
	}
	defer out.Close()
	if err := sequencer.WriteSMF(out, m.machine.Export(), m.notes); err != nil {
		debug.Warn("tui", "export: %v", err)
		return "export failed: " + err.Error()
	}
	return "exported " + filepath.Base(path)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	f := m.frame
	th := m.theme

	headerStyle := lipgloss.NewStyle().Foreground(th.Accent()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(th.Muted())
	labelStyle := lipgloss.NewStyle().Width(8)

	playState := "STOP"
	switch {
	case f.Playing:
		playState = "PLAY"
	case f.Last >= 0:
		playState = "PAUSE"
	}
	devices := ""
	if len(m.controllers) > 0 {
		devices = "  [" + strings.Join(m.controllers, ", ") + "]"
	}
	header := headerStyle.Render(fmt.Sprintf("go-drum  %s  %3.0f bpm  block %d/%d", playState, f.BPM, f.Current+1, f.Blocks))
	blocks := widgets.RenderBlocks(th, f.Current, f.Blocks, f.Capacity, playingBlock(f))

	playhead := f.PlayheadStep()
	var rows []string
	for c, ch := range f.Channels {
		states := make([]widgets.StepState, len(ch.Steps))
		for st, on := range ch.Steps {
			states[st] = widgets.StepState{
				Active:   on,
				Playhead: st == playhead,
				Cursor:   c == m.row && st == m.col,
				Muted:    ch.Muted,
			}
		}

		name := labelStyle.Foreground(th.FamilyColor(ch.Family)).Render(ch.Family.String())
		if c == m.row {
			name = labelStyle.Foreground(th.Cursor()).Bold(true).Render("> " + ch.Family.String())
		}
		flag := " "
		if ch.Muted {
			flag = lipgloss.NewStyle().Foreground(th.Warning()).Render("M")
		} else if c < len(m.fired) && m.fired[c] && f.Playing {
			flag = lipgloss.NewStyle().Foreground(th.Success()).Render("*")
		}
		rows = append(rows, fmt.Sprintf("%s %s %s  %s  %s",
			name, flag,
			widgets.RenderStepRow(th, states, th.FamilyColor(ch.Family)),
			widgets.RenderDial(th, ch.Volume, sequencer.DialAngle(ch.Volume)),
			dimStyle.Render(ch.Sound)))
	}

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("  ")
	out.WriteString(blocks)
	out.WriteString(dimStyle.Render(devices))
	out.WriteString("\n\n")
	out.WriteString(strings.Join(rows, "\n"))
	out.WriteString("\n")

	if m.showPads && m.pads != nil {
		out.WriteString("\n")
		pf := m.pads.Render(f)
		out.WriteString(widgets.RenderPadGrid(&pf))
		out.WriteString("\n")
	}

	if m.status != "" {
		out.WriteString("\n")
		out.WriteString(lipgloss.NewStyle().Foreground(th.FG()).Render(m.status))
	}
	out.WriteString("\n\n")
	out.WriteString(m.help.View(m.keys))
	return out.String()
}

// playingBlock is the block under the playhead, -1 when stopped.
func playingBlock(f sequencer.Frame) int {
	if f.Last < 0 {
		return -1
	}
	return f.Last / f.Steps
}
