// Package synth procedurally generates the drum machine's percussion voices.
package synth

import (
	"strconv"
	"strings"
)

// Family is an instrument family. Tone is the plain sine used for anything
// that isn't a known family.
type Family int

const (
	Tone Family = iota
	Kick
	Snare
	HiHat
	Clap
	Tom
	Perc
	Cymbal
	FX
)

// Variants is the number of variants every family has.
const Variants = 5

var familyNames = [...]string{
	Tone:   "tone",
	Kick:   "kick",
	Snare:  "snare",
	HiHat:  "hihat",
	Clap:   "clap",
	Tom:    "tom",
	Perc:   "perc",
	Cymbal: "cymbal",
	FX:     "fx",
}

// Families lists the percussion families in channel order for an 8 channel kit.
var Families = []Family{Kick, Snare, HiHat, Clap, Tom, Perc, Cymbal, FX}

// SimpleKit is the channel order of the 4 channel machine.
var SimpleKit = []Family{Kick, Snare, HiHat, Perc}

func (f Family) String() string {
	if f < 0 || int(f) >= len(familyNames) {
		return "tone"
	}
	return familyNames[f]
}

// ParseFamily looks a family up by name.
func ParseFamily(name string) (Family, bool) {
	for f, n := range familyNames {
		if n == name {
			return Family(f), true
		}
	}
	return Tone, false
}

// Voice is one concrete sound: a family and a variant in 1..Variants.
type Voice struct {
	Family  Family
	Variant int
}

// ID returns the sound identifier: "kick" for variant 1, "kick2".."kick5" after.
func (v Voice) ID() string {
	if v.Variant <= 1 {
		return v.Family.String()
	}
	return v.Family.String() + strconv.Itoa(v.Variant)
}

func (v Voice) String() string { return v.ID() }

// Name is a human readable label for menus.
func (v Voice) Name() string {
	if v.Family == Tone {
		return "Tone"
	}
	return variantNames[v.Family][v.normalized().Variant-1]
}

// normalized maps out of range variants to the family's first entry.
func (v Voice) normalized() Voice {
	if v.Variant < 1 || v.Variant > Variants {
		v.Variant = 1
	}
	return v
}

// ParseVoice maps an identifier such as "snare3" to a Voice. A known family
// with an unknown variant suffix falls back to the family's first variant; an
// unknown family yields Tone.
func ParseVoice(id string) Voice {
	id = strings.ToLower(strings.TrimSpace(id))
	prefix := strings.TrimRight(id, "0123456789")
	fam, ok := ParseFamily(prefix)
	if !ok || fam == Tone {
		return Voice{Family: Tone, Variant: 1}
	}
	v := Voice{Family: fam, Variant: 1}
	if suffix := id[len(prefix):]; suffix != "" {
		if n, err := strconv.Atoi(suffix); err == nil {
			v.Variant = n
		}
	}
	return v.normalized()
}

// FamilyVoices lists a family's variants in order.
func FamilyVoices(f Family) []Voice {
	if f == Tone {
		return []Voice{{Family: Tone, Variant: 1}}
	}
	voices := make([]Voice, Variants)
	for i := range voices {
		voices[i] = Voice{Family: f, Variant: i + 1}
	}
	return voices
}

// FamilyIDs lists a family's sound identifiers, the options for one channel.
func FamilyIDs(f Family) []string {
	voices := FamilyVoices(f)
	ids := make([]string, len(voices))
	for i, v := range voices {
		ids[i] = v.ID()
	}
	return ids
}

// Catalog lists every percussion voice.
func Catalog() []Voice {
	var all []Voice
	for _, f := range Families {
		all = append(all, FamilyVoices(f)...)
	}
	return all
}

// KitFor returns the family assigned to each of n channels: the 4 channel kit
// for n == 4, otherwise the families in order, wrapping around.
func KitFor(n int) []Family {
	kit := make([]Family, n)
	for i := range kit {
		if n == len(SimpleKit) {
			kit[i] = SimpleKit[i]
		} else {
			kit[i] = Families[i%len(Families)]
		}
	}
	return kit
}

var variantNames = map[Family][Variants]string{
	Kick:   {"Kick", "Kick Deep", "Kick Tight", "Kick Boom", "Kick Punch"},
	Snare:  {"Snare", "Snare Low", "Snare High", "Snare Fat", "Snare Crack"},
	HiHat:  {"Hi-Hat Closed", "Hi-Hat Open", "Hi-Hat Tick", "Hi-Hat Half", "Hi-Hat Wash"},
	Clap:   {"Clap", "Clap Tight", "Clap Loose", "Clap Snap", "Clap Echo"},
	Tom:    {"Tom Mid", "Tom Low", "Tom High", "Tom Floor", "Tom Rack"},
	Perc:   {"Shaker", "Cowbell", "Conga", "Woodblock", "Tambourine"},
	Cymbal: {"Crash", "Ride", "Splash", "China", "Sizzle"},
	FX:     {"Riser", "Drop", "Stab", "Rumble", "Organ"},
}
