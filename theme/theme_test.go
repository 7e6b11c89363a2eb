package theme

import (
	"strings"
	"testing"

	"go-drum/synth"
)

const testGPL = `GIMP Palette
Name: Test
Columns: 2
# comment
  0   0   0	black
255 255 255	white
`

func TestParseGPL(t *testing.T) {
	p, err := ParseGPL(strings.NewReader(testGPL))
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Test" || len(p.Colors) != 2 {
		t.Fatalf("palette = %+v", p)
	}
	if got := p.Lookup(0.5); got != (RGB{127, 127, 127}) {
		t.Fatalf("Lookup(0.5) = %v", got)
	}
	if p.Lookup(-1) != p.Colors[0] || p.Lookup(2) != p.Colors[1] {
		t.Fatal("Lookup should clamp")
	}
	if p.Index(9) != p.Colors[1] {
		t.Fatal("Index should clamp")
	}

	if _, err := ParseGPL(strings.NewReader("GIMP Palette\n")); err == nil {
		t.Fatal("empty palette accepted")
	}
}

func TestLoadOrDefault(t *testing.T) {
	p, err := LoadOrDefault("")
	if err != nil || p.Name != "Plasma" {
		t.Fatalf("LoadOrDefault(\"\") = %v, %v", p, err)
	}
	if _, err := LoadOrDefault("/nonexistent/palette.gpl"); err == nil {
		t.Fatal("missing palette file accepted")
	}
}

func TestFamilyColorsDistinct(t *testing.T) {
	th := New(nil)
	seen := make(map[RGB]synth.Family)
	for _, f := range synth.Families {
		c := th.FamilyRGB(f)
		if prev, dup := seen[c]; dup {
			t.Fatalf("%s and %s share color %v", prev, f, c)
		}
		seen[c] = f
	}
	if Hex(RGB{255, 0, 16}) != "#ff0010" {
		t.Fatal("Hex")
	}
	if (RGB{200, 100, 50}).Scale(0.5) != (RGB{100, 50, 25}) {
		t.Fatal("Scale")
	}
}
