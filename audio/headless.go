package audio

import "sync"

// Recorder is an Output that keeps every voice it is asked to play instead of
// producing sound. Used by the headless backend and tests.
type Recorder struct {
	mu      sync.Mutex
	played  []Voice
	resumes int
	closed  bool
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Resume() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	r.resumes++
	return nil
}

func (r *Recorder) Play(v Voice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.played = append(r.played, v)
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Played returns a copy of the voices played so far.
func (r *Recorder) Played() []Voice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Voice(nil), r.played...)
}

// Resumes returns how many times Resume was called.
func (r *Recorder) Resumes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resumes
}

// Reset forgets recorded voices.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.played = nil
}
