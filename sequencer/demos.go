package sequencer

import (
	"fmt"
	"strings"

	"go-drum/synth"
)

// DemoSteps is the block length demos are written for.
const DemoSteps = 16

// Demo is a preset pattern. Rows and selections are keyed by instrument
// family so one preset serves any kit: a channel plays the row of its family,
// or nothing. Rows use 'x' for a hit and '.' for a rest.
type Demo struct {
	Key        string
	Name       string
	BPM        float64
	BlockSpan  int
	Selections map[synth.Family]int // variant index, 0-based
	Rows       map[synth.Family]string
}

// DemoInfo is the menu entry for a demo.
type DemoInfo struct {
	Key  string
	Name string
	BPM  float64
}

var demos = []Demo{
	{
		Key: "basic", Name: "Basic Rock", BPM: 120, BlockSpan: 1,
		Rows: map[synth.Family]string{
			synth.Kick:   "x...x...x...x...",
			synth.Snare:  "....x.......x...",
			synth.HiHat:  "x.x.x.x.x.x.x.x.",
			synth.Cymbal: "x...............",
		},
	},
	{
		Key: "funk", Name: "Funk Groove", BPM: 105, BlockSpan: 1,
		Selections: map[synth.Family]int{synth.Kick: 4, synth.Snare: 1, synth.Perc: 1},
		Rows: map[synth.Family]string{
			synth.Kick:  "x.....x.....x...",
			synth.Snare: "....x..x....x...",
			synth.HiHat: "x.xxx.xxx.xxx.xx",
			synth.Perc:  "........x.......",
			synth.Clap:  "............x...",
		},
	},
	{
		Key: "hiphop", Name: "Hip Hop", BPM: 90, BlockSpan: 1,
		Selections: map[synth.Family]int{synth.Kick: 1, synth.Snare: 3, synth.HiHat: 2},
		Rows: map[synth.Family]string{
			synth.Kick:  "x.......x.....x.",
			synth.Snare: "....x.......x...",
			synth.HiHat: "xxxxxxxxxxxxxxxx",
			synth.Perc:  "..x...x...x...x.",
			synth.Clap:  "....x.......x...",
		},
	},
	{
		Key: "techno", Name: "Techno", BPM: 128, BlockSpan: 1,
		Selections: map[synth.Family]int{synth.Kick: 4, synth.HiHat: 2, synth.Perc: 4},
		Rows: map[synth.Family]string{
			synth.Kick:   "x...x...x...x...",
			synth.Snare:  "........x.......",
			synth.HiHat:  "xxxxxxxxxxxxxxxx",
			synth.Perc:   "..x...x...x...x.",
			synth.Clap:   "....x.......x...",
			synth.Cymbal: "..x...x...x...x.",
			synth.FX:     "x...............",
		},
	},
	{
		Key: "breakbeat", Name: "Breakbeat", BPM: 140, BlockSpan: 2,
		Selections: map[synth.Family]int{synth.Snare: 2, synth.Tom: 1},
		Rows: map[synth.Family]string{
			synth.Kick:  "x.........x....." + "..x.......x.....",
			synth.Snare: "....x.......x..x" + ".x..x.......x...",
			synth.HiHat: "x.x.x.x.x.x.x.x." + "x.x.x.x.x.x.xxxx",
			synth.Tom:   "................" + "............x.xx",
			synth.Perc:  "......x......." + "x." + "......x.........",
		},
	},
	{
		Key: "house", Name: "House Build", BPM: 124, BlockSpan: 4,
		Selections: map[synth.Family]int{synth.Clap: 1, synth.Cymbal: 2, synth.FX: 0},
		Rows: map[synth.Family]string{
			synth.Kick:   strings.Repeat("x...x...x...x...", 4),
			synth.Clap:   strings.Repeat(".", 16) + strings.Repeat("....x.......x...", 3),
			synth.HiHat:  strings.Repeat(".", 32) + strings.Repeat("..x...x...x...x.", 2),
			synth.Perc:   strings.Repeat(".", 48) + "x.xxx.xxx.xxx.xx",
			synth.Cymbal: "x..............." + strings.Repeat(".", 48),
			synth.FX:     strings.Repeat(".", 48) + "x...............",
		},
	},
}

func init() {
	seen := make(map[string]bool)
	for _, d := range demos {
		if err := d.validate(); err != nil {
			panic(err)
		}
		if seen[d.Key] {
			panic("sequencer: duplicate demo " + d.Key)
		}
		seen[d.Key] = true
	}
}

func (d Demo) validate() error {
	if d.BlockSpan < 1 || d.BlockSpan > DefaultConfig().BlockCapacity {
		return fmt.Errorf("demo %s: block span %d", d.Key, d.BlockSpan)
	}
	if d.BPM < MinBPM || d.BPM > MaxBPM {
		return fmt.Errorf("demo %s: bpm %v", d.Key, d.BPM)
	}
	want := d.BlockSpan * DemoSteps
	for f, row := range d.Rows {
		if len(row) != want {
			return fmt.Errorf("demo %s: %s row has %d steps, want %d", d.Key, f, len(row), want)
		}
		if strings.Trim(row, "x.") != "" {
			return fmt.Errorf("demo %s: %s row has invalid characters", d.Key, f)
		}
	}
	for f, sel := range d.Selections {
		if sel < 0 || sel >= synth.Variants {
			return fmt.Errorf("demo %s: %s selection %d", d.Key, f, sel)
		}
	}
	return nil
}

// DemoList returns the demos in menu order.
func DemoList() []DemoInfo {
	list := make([]DemoInfo, len(demos))
	for i, d := range demos {
		list[i] = DemoInfo{Key: d.Key, Name: d.Name, BPM: d.BPM}
	}
	return list
}

// LookupDemo finds a demo by key.
func LookupDemo(key string) (Demo, bool) {
	for _, d := range demos {
		if d.Key == key {
			return d, true
		}
	}
	return Demo{}, false
}

// Pattern resolves the demo against a kit (the family of each channel) and
// a block length. Each demo block is laid out on its own: a shorter block
// drops the demo's trailing steps, a longer one rests after them.
// Channels whose family has no row load as silence; channels with no
// selection keep their sound.
func (d Demo) Pattern(kit []synth.Family, steps int) Pattern {
	if steps <= 0 {
		steps = DemoSteps
	}
	p := Pattern{
		BPM:       d.BPM,
		BlockSpan: d.BlockSpan,
		Sounds:    make([]string, len(kit)),
		Grid:      make([][]bool, len(kit)),
	}
	for c, f := range kit {
		if sel, ok := d.Selections[f]; ok {
			p.Sounds[c] = synth.FamilyIDs(f)[sel]
		}
		row, ok := d.Rows[f]
		if !ok {
			continue
		}
		cells := make([]bool, d.BlockSpan*steps)
		for b := 0; b < d.BlockSpan; b++ {
			for st := 0; st < steps && st < DemoSteps; st++ {
				cells[b*steps+st] = row[b*DemoSteps+st] == 'x'
			}
		}
		p.Grid[c] = cells
	}
	return p
}
