package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-drum/audio"
	"go-drum/config"
	"go-drum/debug"
	"go-drum/midi"
	"go-drum/pads"
	"go-drum/sequencer"
	"go-drum/sound"
	"go-drum/theme"
	"go-drum/tui"
)

func main() {
	debugFlag := flag.Bool("debug", false, "write a debug log to ~/.config/go-drum/debug.log")
	configPath := flag.String("config", "", "config file (default ~/.config/go-drum/config.json)")
	backend := flag.String("backend", "", "audio backend: oto, midi or headless")
	demo := flag.String("demo", "", "demo pattern to load at start")
	flag.Parse()

	if *debugFlag {
		if err := debug.Enable(""); err != nil {
			fmt.Fprintf(os.Stderr, "debug log: %v\n", err)
		}
		defer debug.Disable()
	}

	if err := run(*configPath, *backend, *demo); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, backend, demo string) error {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if backend != "" {
		cfg.Audio.Backend = backend
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	palette, err := theme.LoadOrDefault(cfg.UI.Palette)
	if err != nil {
		debug.Warn("main", "palette: %v", err)
		palette = theme.Plasma()
	}
	th := theme.New(palette)
	kit := midi.GetKit(cfg.Audio.MIDIKit)

	machine, err := newMachine(cfg, kit)
	if err != nil {
		return err
	}
	defer machine.Close()

	if demo == "" {
		demo = cfg.UI.LastDemo
	}
	if demo != "" {
		if err := machine.LoadDemo(demo); err != nil {
			return err
		}
	} else if cfg.Machine.BPM > 0 {
		machine.SetBPM(cfg.Machine.BPM)
	}

	snapshotDir := cfg.SnapshotDir
	if snapshotDir == "" {
		if snapshotDir, err = sequencer.SnapshotsDir(); err != nil {
			debug.Warn("main", "snapshot dir: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	padHost := pads.NewHost(machine, th)
	model := tui.NewModel(tui.Options{
		Machine:     machine,
		Theme:       th,
		SnapshotDir: snapshotDir,
		Demo:        demo,
		Pads:        padHost,
		Notes:       kit.Note,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	go loadSounds(ctx, machine, cfg.Sounds, p.Send)

	deviceMgr := midi.NewDeviceManager(midi.DeviceOptions{
		Keyboards: len(cfg.KeyboardPorts()) > 0,
		Match:     cfg.KeyboardPorts(),
	})
	go deviceMgr.Run(ctx)
	go newControllerHost(machine, padHost, kit, p.Send).run(ctx, deviceMgr.Events())

	_, err = p.Run()
	return err
}

// newMachine opens the configured backend. A device that cannot be opened is
// fatal; the headless backend runs without sound.
func newMachine(cfg *config.Config, kit midi.Kit) (*sequencer.Machine, error) {
	opts := sequencer.Options{
		Config: sequencer.Config{
			Channels:      cfg.Machine.Channels,
			StepsPerBlock: cfg.Machine.StepsPerBlock,
			BlockCapacity: cfg.Machine.BlockCapacity,
		},
		SampleRate: cfg.Audio.SampleRate,
	}
	switch cfg.Audio.Backend {
	case config.BackendOto:
		opts.NewOutput = func() (audio.Output, error) { return audio.NewOtoOutput(cfg.Audio.SampleRate) }
	case config.BackendMIDI:
		opts.NewOutput = func() (audio.Output, error) { return midi.OpenOutput(cfg.Audio.MIDIPort, kit) }
	}

	m, err := sequencer.New(opts)
	if errors.Is(err, sequencer.ErrAudioUnavailable) {
		return nil, fmt.Errorf("%w (use -backend %s to run without sound)", err, config.BackendHeadless)
	}
	return m, err
}

// loadSounds fetches the configured samples and assigns those that name a
// channel.
func loadSounds(ctx context.Context, m *sequencer.Machine, files []config.SoundFile, send func(tea.Msg)) {
	if len(files) == 0 {
		return
	}
	entries := make([]sound.Entry, len(files))
	for i, f := range files {
		entries[i] = sound.Entry{Name: f.Name, URL: f.URL}
	}
	res := m.LoadSoundLibrary(ctx, entries)
	for i, f := range files {
		if res.OK[i] && f.Channel > 0 && f.Channel <= m.Config().Channels {
			m.SetSound(f.Channel-1, f.Name)
		}
	}
	send(tui.StatusMsg(fmt.Sprintf("loaded %d/%d sounds", res.Loaded, res.Total)))
}
