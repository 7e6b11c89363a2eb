package midi

import "go-drum/synth"

// Kit maps each voice (family × variant) to a drum note on an external
// machine. Variants index from 0 here.
type Kit struct {
	Name  string
	Notes map[synth.Family][synth.Variants]uint8
	Tone  uint8 // note for anything that isn't a known family
}

// Kits contains all available drum note mappings
var Kits = map[string]Kit{
	"gm": {
		Name: "General MIDI",
		Notes: map[synth.Family][synth.Variants]uint8{
			synth.Kick:   {36, 35, 36, 35, 36},
			synth.Snare:  {38, 40, 38, 40, 37}, // last is rimshot
			synth.HiHat:  {42, 46, 44, 42, 46}, // closed, open, pedal
			synth.Clap:   {39, 39, 39, 39, 39},
			synth.Tom:    {45, 41, 48, 43, 50},
			synth.Perc:   {70, 56, 64, 76, 54}, // maracas, cowbell, conga, woodblock, tambourine
			synth.Cymbal: {49, 51, 55, 52, 57},
			synth.FX:     {81, 80, 39, 58, 53},
		},
		Tone: 75,
	},
	"rd8": {
		Name: "Behringer RD-8",
		Notes: map[synth.Family][synth.Variants]uint8{
			synth.Kick:   {36, 36, 36, 36, 36},
			synth.Snare:  {40, 40, 40, 40, 37}, // RD-8 uses 40, not 38
			synth.HiHat:  {42, 46, 42, 42, 46},
			synth.Clap:   {39, 39, 39, 39, 39},
			synth.Tom:    {45, 48, 50, 45, 48},
			synth.Perc:   {70, 56, 64, 75, 63},
			synth.Cymbal: {49, 51, 49, 49, 51},
			synth.FX:     {75, 56, 39, 37, 51},
		},
		Tone: 75,
	},
	"tr8s": {
		Name: "Roland TR-8S",
		Notes: map[synth.Family][synth.Variants]uint8{
			synth.Kick:   {36, 36, 36, 36, 36},
			synth.Snare:  {38, 38, 38, 38, 37},
			synth.HiHat:  {42, 46, 42, 42, 46},
			synth.Clap:   {39, 39, 39, 39, 39},
			synth.Tom:    {45, 41, 43, 41, 45},
			synth.Perc:   {70, 56, 62, 75, 63},
			synth.Cymbal: {49, 51, 49, 49, 51},
			synth.FX:     {75, 56, 39, 37, 51},
		},
		Tone: 75,
	},
}

// KitNames returns the list of available kit names
func KitNames() []string {
	return []string{"gm", "rd8", "tr8s"}
}

// GetKit returns a kit by name, defaulting to GM if not found
func GetKit(name string) Kit {
	if k, ok := Kits[name]; ok {
		return k
	}
	return Kits["gm"]
}

// Note returns the drum note for a sound identifier.
func (k Kit) Note(id string) uint8 {
	v := synth.ParseVoice(id)
	notes, ok := k.Notes[v.Family]
	if !ok {
		return k.Tone
	}
	return notes[v.Variant-1]
}

// Family finds the first family that uses note, for mapping pads or keys
// on an external controller back to channels.
func (k Kit) Family(note uint8) (synth.Family, bool) {
	for _, f := range synth.Families {
		for _, n := range k.Notes[f] {
			if n == note {
				return f, true
			}
		}
	}
	return synth.Tone, false
}
