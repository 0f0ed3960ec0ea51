package audio

import "sync"

// Tap keeps a rolling window of the most recently written frames, mixed down
// to mono, for the visualizer.
type Tap struct {
	mu   sync.Mutex
	buf  []float64
	pos  int
	size int
}

// NewTap creates a tap remembering capacity frames
func NewTap(capacity int) *Tap {
	return &Tap{buf: make([]float64, capacity)}
}

// Write appends the mono mix of samples
func (t *Tap) Write(samples [][2]float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, s := range samples {
		t.buf[t.pos] = (s[0] + s[1]) / 2
		t.pos = (t.pos + 1) % len(t.buf)
	}
	t.size = min(t.size+len(samples), len(t.buf))
}

// Samples returns up to n frames ending lag frames before the newest one.
// Fewer frames are returned when the tap has not seen enough audio.
func (t *Tap) Samples(n, lag int) []float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	avail := t.size - lag
	if n > avail {
		n = avail
	}
	if n <= 0 {
		return nil
	}

	out := make([]float64, n)
	start := t.pos - lag - n
	for i := range out {
		j := (start + i) % len(t.buf)
		if j < 0 {
			j += len(t.buf)
		}
		out[i] = t.buf[j]
	}
	return out
}

// Reset forgets all recorded frames
func (t *Tap) Reset() {
	t.mu.Lock()
	t.pos = 0
	t.size = 0
	t.mu.Unlock()
}
