package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Audio backends
const (
	BackendOto      = "oto"
	BackendMIDI     = "midi"
	BackendHeadless = "headless"
)

// ControllerType identifies the kind of controller
type ControllerType string

const (
	ControllerLaunchpadX ControllerType = "launchpad-x"
	ControllerKeyboard   ControllerType = "keyboard"
)

// ControllerConfig defines a saved controller configuration
type ControllerConfig struct {
	PortName    string         `json:"portName"`
	Type        ControllerType `json:"type"`
	AutoConnect bool           `json:"autoConnect"`
}

// MachineConfig fixes the grid shape and starting tempo
type MachineConfig struct {
	Channels      int     `json:"channels"`
	StepsPerBlock int     `json:"stepsPerBlock"`
	BlockCapacity int     `json:"blockCapacity"`
	BPM           float64 `json:"bpm,omitempty"`
}

// AudioConfig selects where triggered sounds go
type AudioConfig struct {
	Backend    string `json:"backend"`
	SampleRate int    `json:"sampleRate"`
	MIDIPort   string `json:"midiPort,omitempty"` // substring of the output port name
	MIDIKit    string `json:"midiKit,omitempty"`  // note mapping for the external machine
}

// SoundFile is a sample loaded into the bank at startup
type SoundFile struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Channel int    `json:"channel,omitempty"` // 1-based channel to assign once loaded
}

// UIConfig stores UI preferences
type UIConfig struct {
	LastDemo string `json:"lastDemo,omitempty"`
	Palette  string `json:"palette,omitempty"` // path to a GIMP .gpl palette
}

// Config is the main configuration structure
type Config struct {
	Machine     MachineConfig      `json:"machine"`
	Audio       AudioConfig        `json:"audio"`
	Sounds      []SoundFile        `json:"sounds,omitempty"`
	Controllers []ControllerConfig `json:"controllers,omitempty"`
	UI          UIConfig           `json:"ui,omitempty"`
	SnapshotDir string             `json:"snapshotDir,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Machine: MachineConfig{
			Channels:      8,
			StepsPerBlock: 16,
			BlockCapacity: 8,
			BPM:           120,
		},
		Audio: AudioConfig{
			Backend:    BackendOto,
			SampleRate: 44100,
			MIDIKit:    "gm",
		},
		Controllers: []ControllerConfig{
			{
				PortName:    "Launchpad X LPX MIDI",
				Type:        ControllerLaunchpadX,
				AutoConnect: true,
			},
		},
		UI: UIConfig{
			LastDemo: "basic",
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-drum"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from the default path, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads a config file. Fields missing from the file keep their
// defaults; a missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports every problem at once
func (c *Config) Validate() error {
	var errs []error
	m := c.Machine
	if m.Channels < 1 || m.StepsPerBlock < 1 || m.BlockCapacity < 1 {
		errs = append(errs, fmt.Errorf("machine: channels, stepsPerBlock and blockCapacity must be positive"))
	}
	if m.BPM < 0 {
		errs = append(errs, fmt.Errorf("machine: bpm %v", m.BPM))
	}
	switch c.Audio.Backend {
	case BackendOto, BackendMIDI, BackendHeadless:
	default:
		errs = append(errs, fmt.Errorf("audio: unknown backend %q", c.Audio.Backend))
	}
	if c.Audio.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("audio: sampleRate %d", c.Audio.SampleRate))
	}
	for i, s := range c.Sounds {
		if s.Name == "" || s.URL == "" {
			errs = append(errs, fmt.Errorf("sounds[%d]: name and url are required", i))
		}
		if s.Channel < 0 || s.Channel > m.Channels {
			errs = append(errs, fmt.Errorf("sounds[%d]: channel %d", i, s.Channel))
		}
	}
	return errors.Join(errs...)
}

// FindController finds a controller config by port name
func (c *Config) FindController(portName string) *ControllerConfig {
	for i := range c.Controllers {
		if c.Controllers[i].PortName == portName {
			return &c.Controllers[i]
		}
	}
	return nil
}

// AddController adds or updates a controller config
func (c *Config) AddController(ctrl ControllerConfig) {
	for i := range c.Controllers {
		if c.Controllers[i].PortName == ctrl.PortName {
			c.Controllers[i] = ctrl
			return
		}
	}
	c.Controllers = append(c.Controllers, ctrl)
}

// AutoConnectControllers returns controllers with autoConnect enabled
func (c *Config) AutoConnectControllers() []ControllerConfig {
	var result []ControllerConfig
	for _, ctrl := range c.Controllers {
		if ctrl.AutoConnect {
			result = append(result, ctrl)
		}
	}
	return result
}

// KeyboardPorts lists auto-connect keyboard port names
func (c *Config) KeyboardPorts() []string {
	var ports []string
	for _, ctrl := range c.AutoConnectControllers() {
		if ctrl.Type == ControllerKeyboard {
			ports = append(ports, ctrl.PortName)
		}
	}
	return ports
}
