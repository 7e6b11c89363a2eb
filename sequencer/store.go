package sequencer

import (
	"errors"
	"fmt"
	"math"
)

// Tempo limits and defaults
const (
	MinBPM        = 20
	MaxBPM        = 300
	DefaultBPM    = 120
	DefaultVolume = 0.8
)

var (
	ErrBlockCount = errors.New("block count out of range")
	ErrConfig     = errors.New("invalid machine config")
)

// Config fixes the grid shape for the lifetime of a Store.
type Config struct {
	Channels      int `json:"channels"`
	StepsPerBlock int `json:"stepsPerBlock"`
	BlockCapacity int `json:"blockCapacity"`
}

// DefaultConfig is the 8-channel, 16-step, 8-block machine.
func DefaultConfig() Config {
	return Config{Channels: 8, StepsPerBlock: 16, BlockCapacity: 8}
}

// SimpleConfig is the 4-channel variant.
func SimpleConfig() Config {
	return Config{Channels: 4, StepsPerBlock: 16, BlockCapacity: 8}
}

func (c Config) Validate() error {
	switch {
	case c.Channels < 1:
		return fmt.Errorf("%w: channels = %d", ErrConfig, c.Channels)
	case c.StepsPerBlock < 1:
		return fmt.Errorf("%w: stepsPerBlock = %d", ErrConfig, c.StepsPerBlock)
	case c.BlockCapacity < 1:
		return fmt.Errorf("%w: blockCapacity = %d", ErrConfig, c.BlockCapacity)
	}
	return nil
}

// Pattern is the loading contract shared by demos and hosts.
// Grid is channel × column, where column = block*StepsPerBlock + step.
// Columns past the end of a row load as rests. Sounds entries that are
// empty keep the channel's current assignment.
type Pattern struct {
	BPM       float64
	BlockSpan int
	Sounds    []string
	Grid      [][]bool
}

// Store holds the pattern grid and per-channel settings. It does no locking;
// the owner (normally a Machine) serializes access.
type Store struct {
	cfg     Config
	cells   []bool // [block][channel][step], allocated once
	blocks  int
	current int

	sounds []string
	muted  []bool
	volume []float64
	bpm    float64
}

// NewStore allocates the full grid. sounds gives the initial assignment per
// channel; missing entries stay empty.
func NewStore(cfg Config, sounds []string) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Store{
		cfg:    cfg,
		cells:  make([]bool, cfg.BlockCapacity*cfg.Channels*cfg.StepsPerBlock),
		blocks: 1,
		sounds: make([]string, cfg.Channels),
		muted:  make([]bool, cfg.Channels),
		volume: make([]float64, cfg.Channels),
		bpm:    DefaultBPM,
	}
	copy(s.sounds, sounds)
	for c := range s.volume {
		s.volume[c] = DefaultVolume
	}
	return s, nil
}

func (s *Store) index(block, channel, step int) int {
	if block < 0 || block >= s.cfg.BlockCapacity {
		panic(fmt.Sprintf("sequencer: block %d out of range", block))
	}
	if channel < 0 || channel >= s.cfg.Channels {
		panic(fmt.Sprintf("sequencer: channel %d out of range", channel))
	}
	if step < 0 || step >= s.cfg.StepsPerBlock {
		panic(fmt.Sprintf("sequencer: step %d out of range", step))
	}
	return (block*s.cfg.Channels+channel)*s.cfg.StepsPerBlock + step
}

func (s *Store) checkChannel(channel int) {
	if channel < 0 || channel >= s.cfg.Channels {
		panic(fmt.Sprintf("sequencer: channel %d out of range", channel))
	}
}

func (s *Store) Config() Config     { return s.cfg }
func (s *Store) Channels() int      { return s.cfg.Channels }
func (s *Store) StepsPerBlock() int { return s.cfg.StepsPerBlock }
func (s *Store) BlockCapacity() int { return s.cfg.BlockCapacity }
func (s *Store) BlockCount() int    { return s.blocks }
func (s *Store) CurrentBlock() int  { return s.current }
func (s *Store) BPM() float64       { return s.bpm }
func (s *Store) PatternLength() int { return s.blocks * s.cfg.StepsPerBlock }
func (s *Store) Sounds() []string   { return append([]string(nil), s.sounds...) }

func (s *Store) Cell(block, channel, step int) bool {
	return s.cells[s.index(block, channel, step)]
}

func (s *Store) Sound(channel int) string {
	s.checkChannel(channel)
	return s.sounds[channel]
}

func (s *Store) Muted(channel int) bool {
	s.checkChannel(channel)
	return s.muted[channel]
}

func (s *Store) Volume(channel int) float64 {
	s.checkChannel(channel)
	return s.volume[channel]
}

// Toggle flips a cell in the current block and returns its new value.
func (s *Store) Toggle(channel, step int) bool {
	i := s.index(s.current, channel, step)
	s.cells[i] = !s.cells[i]
	return s.cells[i]
}

// Set writes a cell in the current block.
func (s *Store) Set(channel, step int, on bool) {
	s.cells[s.index(s.current, channel, step)] = on
}

// SetBlockCount changes how many blocks the pattern spans. The current
// block falls back to 0 when it no longer exists.
func (s *Store) SetBlockCount(n int) error {
	if n < 1 || n > s.cfg.BlockCapacity {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrBlockCount, n, s.cfg.BlockCapacity)
	}
	s.blocks = n
	if s.current >= n {
		s.current = 0
	}
	return nil
}

// NavigateBlock moves the current block by delta, clamped to the active range.
func (s *Store) NavigateBlock(delta int) int {
	s.current = max(0, min(s.blocks-1, s.current+delta))
	return s.current
}

func (s *Store) ClearCurrentBlock() {
	s.clearBlock(s.current)
}

// ClearAllBlocks clears every block, including those past the active count.
func (s *Store) ClearAllBlocks() {
	clear(s.cells)
}

func (s *Store) clearBlock(block int) {
	n := s.cfg.Channels * s.cfg.StepsPerBlock
	clear(s.cells[block*n : (block+1)*n])
}

func (s *Store) SetMute(channel int, muted bool) {
	s.checkChannel(channel)
	s.muted[channel] = muted
}

// SetVolume clamps v to [0, 1] and returns the stored value.
func (s *Store) SetVolume(channel int, v float64) float64 {
	s.checkChannel(channel)
	if math.IsNaN(v) {
		v = 0
	}
	s.volume[channel] = max(0, min(1, v))
	return s.volume[channel]
}

func (s *Store) SetSound(channel int, id string) {
	s.checkChannel(channel)
	s.sounds[channel] = id
}

// SetBPM clamps bpm to [MinBPM, MaxBPM] and returns the stored value.
func (s *Store) SetBPM(bpm float64) float64 {
	if math.IsNaN(bpm) {
		bpm = DefaultBPM
	}
	s.bpm = max(MinBPM, min(MaxBPM, bpm))
	return s.bpm
}

// Load replaces the pattern. Active blocks are cleared and filled from
// p.Grid; short rows are padded with rests rather than wrapped.
func (s *Store) Load(p Pattern) error {
	span := p.BlockSpan
	if span == 0 {
		span = 1
	}
	if span < 1 || span > s.cfg.BlockCapacity {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrBlockCount, span, s.cfg.BlockCapacity)
	}

	if p.BPM > 0 {
		s.SetBPM(p.BPM)
	}
	for c, id := range p.Sounds {
		if c < s.cfg.Channels && id != "" {
			s.sounds[c] = id
		}
	}
	if err := s.SetBlockCount(span); err != nil {
		return err
	}

	steps := s.cfg.StepsPerBlock
	for b := 0; b < span; b++ {
		s.clearBlock(b)
		for c := 0; c < s.cfg.Channels && c < len(p.Grid); c++ {
			row := p.Grid[c]
			for st := 0; st < steps; st++ {
				col := b*steps + st
				if col < len(row) && row[col] {
					s.cells[s.index(b, c, st)] = true
				}
			}
		}
	}
	return nil
}
