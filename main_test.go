package main

import (
	"errors"
	"strings"
	"testing"

	"go-drum/config"
	"go-drum/midi"
	"go-drum/sequencer"
)

func TestNewMachineHeadless(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Audio.Backend = config.BackendHeadless
	cfg.Audio.SampleRate = 8000
	m, err := newMachine(cfg, midi.GetKit("gm"))
	if err != nil {
		t.Fatalf("headless backend: %v", err)
	}
	m.Close()
}

func TestNewMachineMissingDeviceIsFatal(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Audio.Backend = config.BackendMIDI
	cfg.Audio.MIDIPort = "go-drum no such port"
	m, err := newMachine(cfg, midi.GetKit("gm"))
	if err == nil {
		m.Close()
		t.Fatal("missing MIDI port should not fall back to silence")
	}
	if !errors.Is(err, sequencer.ErrAudioUnavailable) {
		t.Fatalf("error = %v, want ErrAudioUnavailable", err)
	}
	if !strings.Contains(err.Error(), "-backend headless") {
		t.Fatalf("error %q does not mention the headless backend", err)
	}
}
