package sound

import (
	"go-drum/audio"
	"go-drum/debug"
)

// Player triggers bank sounds on an output.
type Player struct {
	bank *Bank
	out  audio.Output
}

func NewPlayer(bank *Bank, out audio.Output) *Player {
	return &Player{bank: bank, out: out}
}

// Trigger plays id once at gain (clamped to 0..1). A missing sound is logged
// and skipped; it reports whether anything was played.
func (p *Player) Trigger(id string, gain float64) bool {
	buf, ok := p.bank.Get(id)
	if !ok {
		debug.Warn("sound", "sound not found: %s", id)
		return false
	}
	if gain < 0 {
		gain = 0
	} else if gain > 1 {
		gain = 1
	}
	p.out.Play(audio.Voice{ID: id, Buffer: buf, Gain: gain})
	return true
}

// Resume forwards to the output.
func (p *Player) Resume() error {
	return p.out.Resume()
}

// Bank returns the bank the player reads from.
func (p *Player) Bank() *Bank {
	return p.bank
}
