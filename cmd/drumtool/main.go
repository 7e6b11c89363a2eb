// drumtool works with go-drum patterns and voices outside the TUI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-drum/audio"
	"go-drum/midi"
	"go-drum/sequencer"
	"go-drum/sound"
	"go-drum/synth"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	args := os.Args[2:]
	switch os.Args[1] {
	case "list":
		err = listPorts()
	case "voices":
		listVoices()
	case "demos":
		listDemos()
	case "render":
		err = render(args)
	case "export":
		err = export(args)
	case "play":
		err = play(args)
	case "saves":
		err = saves(args)
	case "leds":
		err = testLEDs()
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("go-drum tools")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                              - List all MIDI ports")
	fmt.Println("  voices                            - List synthesized voices")
	fmt.Println("  demos                             - List demo patterns")
	fmt.Println("  render [-rate n] [-seed n] <voice> <out.wav>")
	fmt.Println("                                    - Render a voice to WAV")
	fmt.Println("  export [-kit gm] <demo|save.json> <out.mid>")
	fmt.Println("                                    - Write a pattern as a Standard MIDI File")
	fmt.Println("  play [-loops n] [-midi port] <demo|save.json>")
	fmt.Println("                                    - Play a pattern and exit")
	fmt.Println("  saves [-dir d] [rm <file> | mv <file> <name>]")
	fmt.Println("                                    - List, delete or rename saved patterns")
	fmt.Println("  leds                              - Show a demo on a Launchpad X")
}

func listPorts() error {
	fmt.Println("=== MIDI Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct{ ins, outs []string }
	ch := make(chan result, 1)
	go func() {
		ins, outs := midi.ListPorts()
		ch <- result{ins, outs}
	}()

	select {
	case r := <-ch:
		fmt.Println("Inputs:")
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p)
		}
		fmt.Println("Outputs:")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p)
		}
		return nil
	case <-time.After(3 * time.Second):
		return errors.New("port scan timed out (CoreMIDI hung? try: sudo killall coreaudiod midiserver)")
	}
}

func listVoices() {
	for _, f := range synth.Families {
		var ids []string
		for _, v := range synth.FamilyVoices(f) {
			ids = append(ids, fmt.Sprintf("%s (%s)", v.ID(), v.Name()))
		}
		fmt.Printf("%-7s %s\n", f, strings.Join(ids, ", "))
	}
}

func listDemos() {
	for _, d := range sequencer.DemoList() {
		fmt.Printf("  %-10s %-14s %3.0f bpm\n", d.Key, d.Name, d.BPM)
	}
}

func render(args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	rate := fs.Int("rate", sequencer.DefaultSampleRate, "sample rate")
	seed := fs.Uint64("seed", 0, "noise seed (0 = random)")
	fs.Parse(args)
	if fs.NArg() != 2 {
		return errors.New("usage: render <voice> <out.wav>")
	}

	v := synth.ParseVoice(fs.Arg(0))
	s := *seed
	if s == 0 {
		s = rand.Uint64()
	}
	buf := synth.SynthesizeWith(v, *rate, rand.New(rand.NewPCG(s, s)))

	f, err := os.Create(fs.Arg(1))
	if err != nil {
		return err
	}
	defer f.Close()
	if err := audio.WriteWAV(f, buf); err != nil {
		return err
	}
	fmt.Printf("%s: %d samples (%v), peak %.2f\n", v.ID(), buf.Len(), buf.Duration(), buf.Peak())
	return nil
}

// loadPattern builds a silent machine holding a demo or a saved snapshot.
func loadPattern(name string, opts sequencer.Options) (*sequencer.Machine, error) {
	m, err := sequencer.New(opts)
	if err != nil {
		return nil, err
	}
	if _, ok := sequencer.LookupDemo(name); ok {
		err = m.LoadDemo(name)
	} else {
		var snap sequencer.Snapshot
		snap, err = sequencer.LoadSnapshot(name)
		if err == nil {
			err = m.Import(snap)
		}
	}
	if err != nil {
		m.Close()
		return nil, err
	}
	return m, nil
}

func export(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	kitName := fs.String("kit", "gm", "note mapping: "+strings.Join(midi.KitNames(), ", "))
	fs.Parse(args)
	if fs.NArg() != 2 {
		return errors.New("usage: export <demo|save.json> <out.mid>")
	}

	m, err := loadPattern(fs.Arg(0), sequencer.Options{Bank: sound.NewBank()})
	if err != nil {
		return err
	}
	defer m.Close()

	f, err := os.Create(fs.Arg(1))
	if err != nil {
		return err
	}
	defer f.Close()
	snap := m.Export()
	if err := sequencer.WriteSMF(f, snap, midi.GetKit(*kitName).Note); err != nil {
		return err
	}
	fmt.Printf("wrote %d blocks at %.0f bpm to %s\n", snap.ActiveBlockCount, snap.BPM, fs.Arg(1))
	return nil
}

func play(args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	loops := fs.Int("loops", 2, "times through the pattern")
	port := fs.String("midi", "", "send to a MIDI port instead of the sound card")
	kitName := fs.String("kit", "gm", "note mapping for -midi")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("usage: play <demo|save.json>")
	}

	opts := sequencer.Options{
		NewOutput: func() (audio.Output, error) { return audio.NewOtoOutput(sequencer.DefaultSampleRate) },
	}
	if *port != "" {
		opts.NewOutput = func() (audio.Output, error) { return midi.OpenOutput(*port, midi.GetKit(*kitName)) }
	}
	m, err := loadPattern(fs.Arg(0), opts)
	if err != nil {
		return err
	}
	defer m.Close()

	f := m.Frame()
	length := time.Duration(*loops*f.Blocks*f.Steps) * sequencer.StepDuration(f.BPM)
	fmt.Printf("playing %s for %v\n", fs.Arg(0), length.Round(time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), length)
	defer cancel()
	m.Play()
	<-ctx.Done()
	m.Stop()
	// let the last voices ring out
	time.Sleep(300 * time.Millisecond)
	return nil
}

func saves(args []string) error {
	fs := flag.NewFlagSet("saves", flag.ExitOnError)
	dir := fs.String("dir", "", "snapshot directory (default ~/.config/go-drum/patterns)")
	fs.Parse(args)
	if *dir == "" {
		d, err := sequencer.SnapshotsDir()
		if err != nil {
			return err
		}
		*dir = d
	}

	switch fs.Arg(0) {
	case "":
		list, err := sequencer.ListSnapshots(*dir)
		if err != nil {
			return err
		}
		for _, s := range list {
			fmt.Printf("  %s  %-20s %s\n", s.Timestamp.Format("2006-01-02 15:04:05"), s.Name, s.Filename)
		}
		if len(list) == 0 {
			fmt.Println("no saves in", *dir)
		}
		return nil
	case "rm":
		if fs.NArg() != 2 {
			return errors.New("usage: saves rm <file>")
		}
		return sequencer.DeleteSnapshot(*dir, fs.Arg(1))
	case "mv":
		if fs.NArg() != 3 {
			return errors.New("usage: saves mv <file> <name>")
		}
		name, err := sequencer.RenameSnapshot(*dir, fs.Arg(1), fs.Arg(2))
		if err != nil {
			return err
		}
		fmt.Println("renamed to", name)
		return nil
	}
	return fmt.Errorf("unknown saves command %q", fs.Arg(0))
}

func testLEDs() error {
	dm := midi.NewDeviceManager(midi.DeviceOptions{PollRate: 500 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go dm.Run(ctx)

	fmt.Println("Looking for Launchpad X...")
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-dm.Events():
			if ev.Type != midi.DeviceConnected || ev.Controller.Type() != midi.ControllerLaunchpad {
				continue
			}
			fmt.Printf("Found %s\n", ev.ID)
			return showDemo(ev.Controller)
		case <-timeout:
			return errors.New("no Launchpad X found")
		}
	}
}
