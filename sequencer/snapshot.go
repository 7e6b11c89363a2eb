package sequencer

import (
	"errors"
	"fmt"
)

var ErrSnapshot = errors.New("invalid snapshot")

// Snapshot is the plain export format. Zero values mean "absent" on import:
// BPM 0, ActiveBlockCount 0 and nil slices leave the store unchanged.
type Snapshot struct {
	Name             string    `json:"name,omitempty"`
	BPM              float64   `json:"bpm,omitempty"`
	ActiveBlockCount int       `json:"activeBlockCount,omitempty"`
	SoundAssignment  []string  `json:"soundAssignment,omitempty"`
	Grid             [][][]int `json:"grid,omitempty"`
}

// Export copies the active blocks and settings into a Snapshot.
func (s *Store) Export() Snapshot {
	snap := Snapshot{
		BPM:              s.bpm,
		ActiveBlockCount: s.blocks,
		SoundAssignment:  s.Sounds(),
		Grid:             make([][][]int, s.blocks),
	}
	for b := range snap.Grid {
		block := make([][]int, s.cfg.Channels)
		for c := range block {
			row := make([]int, s.cfg.StepsPerBlock)
			for st := range row {
				if s.cells[s.index(b, c, st)] {
					row[st] = 1
				}
			}
			block[c] = row
		}
		snap.Grid[b] = block
	}
	return snap
}

// Import applies the fields present in snap. The snapshot is validated as a
// whole first, so a malformed one changes nothing.
func (s *Store) Import(snap Snapshot) error {
	if err := s.validate(snap); err != nil {
		return err
	}

	if snap.BPM != 0 {
		s.SetBPM(snap.BPM)
	}
	if snap.SoundAssignment != nil {
		copy(s.sounds, snap.SoundAssignment)
	}

	blocks := snap.ActiveBlockCount
	if blocks == 0 && snap.Grid != nil {
		blocks = len(snap.Grid)
	}
	if blocks != 0 {
		if err := s.SetBlockCount(blocks); err != nil {
			return err
		}
	}

	for b, block := range snap.Grid {
		s.clearBlock(b)
		for c, row := range block {
			for st, v := range row {
				s.cells[s.index(b, c, st)] = v == 1
			}
		}
	}
	return nil
}

func (s *Store) validate(snap Snapshot) error {
	if snap.BPM < 0 {
		return fmt.Errorf("%w: bpm %v", ErrSnapshot, snap.BPM)
	}
	if n := snap.ActiveBlockCount; n != 0 && (n < 1 || n > s.cfg.BlockCapacity) {
		return fmt.Errorf("%w: %w: %d", ErrSnapshot, ErrBlockCount, n)
	}
	if snap.SoundAssignment != nil && len(snap.SoundAssignment) != s.cfg.Channels {
		return fmt.Errorf("%w: %d sounds for %d channels", ErrSnapshot, len(snap.SoundAssignment), s.cfg.Channels)
	}
	if snap.Grid == nil {
		return nil
	}

	blocks := snap.ActiveBlockCount
	if blocks == 0 {
		blocks = len(snap.Grid)
	}
	if len(snap.Grid) != blocks || blocks < 1 || blocks > s.cfg.BlockCapacity {
		return fmt.Errorf("%w: grid has %d blocks, want %d", ErrSnapshot, len(snap.Grid), blocks)
	}
	for b, block := range snap.Grid {
		if len(block) != s.cfg.Channels {
			return fmt.Errorf("%w: block %d has %d channels, want %d", ErrSnapshot, b, len(block), s.cfg.Channels)
		}
		for c, row := range block {
			if len(row) != s.cfg.StepsPerBlock {
				return fmt.Errorf("%w: block %d channel %d has %d steps, want %d", ErrSnapshot, b, c, len(row), s.cfg.StepsPerBlock)
			}
			for st, v := range row {
				if v != 0 && v != 1 {
					return fmt.Errorf("%w: block %d channel %d step %d = %d", ErrSnapshot, b, c, st, v)
				}
			}
		}
	}
	return nil
}
