package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := DefaultConfig()
	cfg.Audio.Backend = BackendMIDI
	cfg.Audio.MIDIPort = "TR-8S"
	cfg.Sounds = []SoundFile{{Name: "kick", URL: "samples/kick.wav", Channel: 1}}
	cfg.AddController(ControllerConfig{PortName: "KeyStep", Type: ControllerKeyboard, AutoConnect: true})

	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Fatalf("round trip:\n got %+v\nwant %+v", got, cfg)
	}
	if ports := got.KeyboardPorts(); len(ports) != 1 || ports[0] != "KeyStep" {
		t.Fatalf("keyboard ports = %v", ports)
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte(`{"audio": {"backend": "headless", "sampleRate": 22050}}`), 0644)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Audio.Backend != BackendHeadless || cfg.Audio.SampleRate != 22050 {
		t.Fatalf("audio = %+v", cfg.Audio)
	}
	if cfg.Machine.Channels != 8 || cfg.UI.LastDemo != "basic" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Audio.Backend = "alsa"
	cfg.Machine.Channels = 0
	cfg.Sounds = []SoundFile{{Name: "x"}, {Name: "y", URL: "y.wav", Channel: 9}}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	for _, want := range []string{"backend", "channels", "sounds[0]", "sounds[1]: channel 9"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}

	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte(`{"audio": {"backend": "alsa"}}`), 0644)
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("LoadFrom accepted an invalid backend")
	}
	os.WriteFile(path, []byte(`{`), 0644)
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("LoadFrom accepted broken JSON")
	}
}

func TestControllers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AddController(ControllerConfig{PortName: "Launchpad X LPX MIDI", Type: ControllerLaunchpadX})
	if len(cfg.Controllers) != 1 {
		t.Fatal("AddController duplicated an entry")
	}
	if c := cfg.FindController("Launchpad X LPX MIDI"); c == nil || c.AutoConnect {
		t.Fatalf("controller = %+v", c)
	}
	if len(cfg.AutoConnectControllers()) != 0 {
		t.Fatal("auto connect list should be empty")
	}
}
