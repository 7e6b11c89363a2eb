// Package sound holds the sound bank, sample loading and the player that
// turns a sound identifier into output.
package sound

import (
	"sort"
	"sync"

	"go-drum/audio"
	"go-drum/synth"
)

// Bank maps sound identifiers to buffers. Entries are replaced, never removed.
// Safe for concurrent use: the transport reads on every tick while loaders write.
type Bank struct {
	mu      sync.RWMutex
	buffers map[string]*audio.Buffer
}

func NewBank() *Bank {
	return &Bank{buffers: make(map[string]*audio.Buffer)}
}

// NewSynthBank returns a bank holding every voice rendered at sampleRate.
func NewSynthBank(sampleRate int, voices []synth.Voice) *Bank {
	b := NewBank()
	for _, v := range voices {
		b.Set(v.ID(), synth.Synthesize(v, sampleRate))
	}
	return b
}

// Get looks up a buffer. Callers must not hold on to it past one trigger.
func (b *Bank) Get(id string) (*audio.Buffer, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	buf, ok := b.buffers[id]
	return buf, ok
}

// Set inserts or overwrites an entry. A nil buffer is ignored.
func (b *Bank) Set(id string, buf *audio.Buffer) {
	if buf == nil {
		return
	}
	b.mu.Lock()
	b.buffers[id] = buf
	b.mu.Unlock()
}

// Has reports whether id is registered.
func (b *Bank) Has(id string) bool {
	_, ok := b.Get(id)
	return ok
}

// IDs returns all registered identifiers, sorted.
func (b *Bank) IDs() []string {
	b.mu.RLock()
	ids := make([]string, 0, len(b.buffers))
	for id := range b.buffers {
		ids = append(ids, id)
	}
	b.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Len returns the number of entries.
func (b *Bank) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.buffers)
}
