package sequencer

import (
	"testing"

	"go-drum/synth"
)

func TestDemosLoadIntoBothKits(t *testing.T) {
	for _, cfg := range []Config{DefaultConfig(), SimpleConfig()} {
		kit := synth.KitFor(cfg.Channels)
		for _, info := range DemoList() {
			d, ok := LookupDemo(info.Key)
			if !ok {
				t.Fatalf("LookupDemo(%q) failed", info.Key)
			}
			s, err := NewStore(cfg, nil)
			if err != nil {
				t.Fatal(err)
			}
			if err := s.Load(d.Pattern(kit, cfg.StepsPerBlock)); err != nil {
				t.Fatalf("%s into %d channels: %v", d.Key, cfg.Channels, err)
			}
			if s.BlockCount() != d.BlockSpan || s.BPM() != d.BPM {
				t.Fatalf("%s: blocks = %d bpm = %v", d.Key, s.BlockCount(), s.BPM())
			}
		}
	}
}

func TestDemoListOrder(t *testing.T) {
	list := DemoList()
	if len(list) < 4 {
		t.Fatalf("only %d demos", len(list))
	}
	for i, key := range []string{"basic", "funk", "hiphop", "techno"} {
		if list[i].Key != key {
			t.Fatalf("demo %d = %q, want %q", i, list[i].Key, key)
		}
	}
}

func TestBasicDemoPattern(t *testing.T) {
	d, _ := LookupDemo("basic")
	p := d.Pattern(synth.SimpleKit, DemoSteps)
	kick := p.Grid[0]
	for i, on := range kick {
		if on != (i%4 == 0) {
			t.Fatalf("kick step %d = %v", i, on)
		}
	}
	if len(p.Grid[3]) != 0 {
		t.Fatal("basic has no perc row")
	}
	for c, id := range p.Sounds {
		if id != "" {
			t.Fatalf("channel %d selection %q, basic selects nothing", c, id)
		}
	}
}

func TestMultiBlockDemo(t *testing.T) {
	d, _ := LookupDemo("house")
	s, _ := NewStore(DefaultConfig(), nil)
	s.Load(d.Pattern(synth.Families, DemoSteps))
	clap := 3
	for st := 0; st < 16; st++ {
		if s.Cell(0, clap, st) {
			t.Fatalf("clap plays in the intro block at step %d", st)
		}
	}
	if !s.Cell(1, clap, 4) || !s.Cell(3, clap, 12) {
		t.Fatal("clap missing after the intro")
	}
	if s.Sound(clap) != "clap2" {
		t.Fatalf("clap sound = %q", s.Sound(clap))
	}
}

func TestDemoValidateCatchesBadRows(t *testing.T) {
	bad := Demo{Key: "bad", BPM: 120, BlockSpan: 1, Rows: map[synth.Family]string{synth.Kick: "x..."}}
	if bad.validate() == nil {
		t.Fatal("short row accepted")
	}
	bad.Rows[synth.Kick] = "x...o...x...x..."
	if bad.validate() == nil {
		t.Fatal("invalid character accepted")
	}
	bad.Rows[synth.Kick] = "x...x...x...x..."
	bad.Selections = map[synth.Family]int{synth.Kick: synth.Variants}
	if bad.validate() == nil {
		t.Fatal("selection out of range accepted")
	}
}

func TestDemoBlocksKeepTheirOwnSteps(t *testing.T) {
	d, _ := LookupDemo("breakbeat")
	cfg := Config{Channels: 8, StepsPerBlock: 12, BlockCapacity: 8}
	s, _ := NewStore(cfg, nil)
	if err := s.Load(d.Pattern(synth.Families, cfg.StepsPerBlock)); err != nil {
		t.Fatal(err)
	}
	kick := 0
	want := map[[2]int]bool{{0, 0}: true, {0, 10}: true, {1, 2}: true, {1, 10}: true}
	for b := 0; b < 2; b++ {
		for st := 0; st < 12; st++ {
			if got := s.Cell(b, kick, st); got != want[[2]int{b, st}] {
				t.Fatalf("kick block %d step %d = %v", b, st, got)
			}
		}
	}
}

func TestDemoOnLongBlocks(t *testing.T) {
	m, _, _ := newTestMachine(t, Config{Channels: 8, StepsPerBlock: 32, BlockCapacity: 8})
	if err := m.LoadDemo("basic"); err != nil {
		t.Fatal(err)
	}
	kick := m.Frame().Channels[0].Steps
	for st, on := range kick {
		if on != (st < DemoSteps && st%4 == 0) {
			t.Fatalf("kick step %d = %v", st, on)
		}
	}

	m, _, _ = newTestMachine(t, Config{Channels: 8, StepsPerBlock: 12, BlockCapacity: 8})
	if err := m.LoadDemo("basic"); err != nil {
		t.Fatal(err)
	}
	kick = m.Frame().Channels[0].Steps
	if len(kick) != 12 || !kick[0] || !kick[4] || !kick[8] {
		t.Fatalf("kick on 12 steps = %v", kick)
	}
}
