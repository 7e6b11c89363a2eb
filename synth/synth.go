package synth

import (
	"math"
	"math/rand/v2"

	"go-drum/audio"
)

// Params is the fixed shape of one voice.
type Params struct {
	Duration float64 // seconds
	Freq     float64 // base frequency in Hz (cutoff for filtered noise)
	Decay    float64 // envelope time constant in seconds
}

var toneParams = Params{Duration: 0.2, Freq: 800, Decay: 0.15}

var params = map[Family][Variants]Params{
	Kick: {
		{0.5, 150, 0.3},
		{0.5, 100, 0.3},
		{0.5, 180, 0.3},
		{0.8, 60, 0.5},
		{0.3, 200, 0.12},
	},
	Snare: {
		{0.3, 200, 0.2},
		{0.3, 180, 0.2},
		{0.3, 220, 0.2},
		{0.4, 160, 0.3},
		{0.2, 250, 0.08},
	},
	HiHat: {
		{0.1, 8000, 0.05},
		{0.3, 8000, 0.2},
		{0.08, 10000, 0.03},
		{0.2, 7000, 0.1},
		{0.5, 6000, 0.35},
	},
	Clap: {
		{0.3, 1000, 0.1},
		{0.2, 1200, 0.06},
		{0.4, 900, 0.15},
		{0.15, 1500, 0.04},
		{0.5, 1000, 0.18},
	},
	Tom: {
		{0.4, 200, 0.25},
		{0.4, 150, 0.25},
		{0.35, 250, 0.2},
		{0.5, 100, 0.3},
		{0.3, 300, 0.18},
	},
	Perc: {
		{0.15, 40, 0.06},  // shaker: gate rate
		{0.3, 560, 0.15},  // cowbell
		{0.3, 300, 0.12},  // conga
		{0.1, 1200, 0.03}, // woodblock
		{0.25, 2000, 0.1}, // tambourine
	},
	Cymbal: {
		{1.5, 0, 0.8},
		{1.0, 0, 0.5},
		{0.5, 0, 0.25},
		{1.2, 0, 0.6},
		{0.8, 0, 0.4},
	},
	FX: {
		{0.5, 200, 0.4},
		{0.5, 2000, 0.4},
		{0.15, 0, 0.04},
		{0.6, 400, 0.3},
		{1.0, 220, 0.5},
	},
}

// burst is a clap gating profile.
type burst struct {
	period float64 // seconds
	duty   float64 // open fraction of each period
	echo   float64 // offset of a second gate, 0 for none
}

var clapBursts = [Variants]burst{
	{period: 0.010, duty: 0.5},
	{period: 0.006, duty: 0.35},
	{period: 0.020, duty: 0.6},
	{period: 0.004, duty: 0.25},
	{period: 0.012, duty: 0.5, echo: 0.035},
}

// Params returns the voice's parameter record.
func (v Voice) Params() Params {
	if v.Family == Tone {
		return toneParams
	}
	table, ok := params[v.Family]
	if !ok {
		return toneParams
	}
	return table[v.normalized().Variant-1]
}

// Length returns the sample count of the voice at sampleRate.
func (v Voice) Length(sampleRate int) int {
	return int(math.Round(float64(sampleRate) * v.Params().Duration))
}

// Synthesize renders v at sampleRate. Noise based voices differ on every call.
func Synthesize(v Voice, sampleRate int) *audio.Buffer {
	return SynthesizeWith(v, sampleRate, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
}

// SynthesizeID renders the voice named by id.
func SynthesizeID(id string, sampleRate int) *audio.Buffer {
	return Synthesize(ParseVoice(id), sampleRate)
}

// SynthesizeWith renders v drawing noise from rng, so a fixed seed gives a
// fixed buffer.
func SynthesizeWith(v Voice, sampleRate int, rng *rand.Rand) *audio.Buffer {
	v = v.normalized()
	p := v.Params()
	buf := audio.NewBuffer(v.Length(sampleRate), sampleRate)
	sr := float64(sampleRate)
	noise := func() float64 { return rng.Float64()*2 - 1 }

	// state for the one-pole filter voice
	var lp float64
	alpha := 1 - math.Exp(-2*math.Pi*p.Freq/sr)
	makeup := math.Sqrt((2 - alpha) / alpha)

	for i := range buf.Samples {
		t := float64(i) / sr
		env := math.Exp(-t / p.Decay)
		var s float64

		switch v.Family {
		case Kick:
			f := p.Freq * math.Exp(-15*t)
			s = math.Sin(2*math.Pi*f*t) * env
		case Snare:
			s = (0.5*noise() + 0.5*math.Sin(2*math.Pi*p.Freq*t)) * env
		case HiHat, Cymbal:
			s = noise() * env
		case Clap:
			s = noise() * clapGate(clapBursts[v.Variant-1], t) * env
		case Tom:
			f := p.Freq * math.Exp(-8*t)
			s = math.Sin(2*math.Pi*f*t) * env
		case Perc:
			s = perc(v.Variant, p, t, noise) * env
		case FX:
			switch v.Variant {
			case 1:
				f := p.Freq * math.Exp(4*t)
				s = math.Sin(2*math.Pi*f*t) * env
			case 2:
				f := p.Freq * math.Exp(-6*t)
				s = math.Sin(2*math.Pi*f*t) * env
			case 3:
				s = noise() * env
			case 4:
				lp += alpha * (noise() - lp)
				s = clamp(lp*makeup) * env
			case 5:
				var sum, norm float64
				for k := 1.0; k <= 5; k++ {
					sum += math.Sin(2*math.Pi*k*p.Freq*t) / k
					norm += 1 / k
				}
				s = sum / norm * env
			}
		default:
			s = math.Sin(2*math.Pi*p.Freq*t) * env
		}
		buf.Samples[i] = float32(s)
	}
	return buf
}

func perc(variant int, p Params, t float64, noise func() float64) float64 {
	switch variant {
	case 1: // shaker
		if math.Mod(t*p.Freq, 1) < 0.5 {
			return noise()
		}
		return 0.2 * noise()
	case 2: // cowbell
		return 0.5 * (math.Sin(2*math.Pi*p.Freq*t) + math.Sin(2*math.Pi*p.Freq*1.8*t))
	case 3: // conga
		f := p.Freq * math.Exp(-4*t)
		return math.Sin(2 * math.Pi * f * t)
	case 4: // woodblock
		attack := 1 - math.Exp(-t/0.001)
		return math.Sin(2*math.Pi*p.Freq*t) * attack
	default: // tambourine
		return 0.3 * (math.Sin(2*math.Pi*p.Freq*t) +
			math.Sin(2*math.Pi*p.Freq*1.3*t) +
			math.Sin(2*math.Pi*p.Freq*1.6*t))
	}
}

func clapGate(b burst, t float64) float64 {
	g := gate(b.period, b.duty, t)
	if b.echo > 0 && t >= b.echo {
		g = math.Max(g, 0.6*gate(b.period, b.duty, t-b.echo+b.period/2))
	}
	return g
}

func gate(period, duty, t float64) float64 {
	if math.Mod(t, period) < period*duty {
		return 1
	}
	return 0
}

func clamp(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}
