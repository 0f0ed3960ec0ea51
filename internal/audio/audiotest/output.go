package audiotest

import (
	"sync"

	"github.com/jscyril/juke/internal/audio"
	playerrors "github.com/jscyril/juke/pkg/errors"
)

// MemOutput is an audio.Output that plays nothing until Consume is called
type MemOutput struct {
	mu        sync.Mutex
	depth     int
	queue     []*audio.Block
	off       int
	written   []*audio.Block
	played    []float64
	paused    bool
	volume    float64
	clears    int
	closed    bool
	writeErr  error
	underruns int
}

// NewMemOutput creates an output accepting up to depth queued blocks
func NewMemOutput(depth int) *MemOutput {
	return &MemOutput{depth: depth, paused: true}
}

func (o *MemOutput) Ready() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queue) < o.depth
}

func (o *MemOutput) Write(b *audio.Block) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.writeErr != nil {
		return o.writeErr
	}
	if len(o.queue) >= o.depth {
		return playerrors.ErrOutputBusy
	}
	o.queue = append(o.queue, b)
	o.written = append(o.written, b)
	return nil
}

func (o *MemOutput) Buffered() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	n := -o.off
	for _, b := range o.queue {
		n += len(b.Samples)
	}
	return n
}

func (o *MemOutput) SetPaused(paused bool) {
	o.mu.Lock()
	o.paused = paused
	o.mu.Unlock()
}

func (o *MemOutput) SetVolume(level float64) {
	o.mu.Lock()
	o.volume = level
	o.mu.Unlock()
}

func (o *MemOutput) Clear() {
	o.mu.Lock()
	o.queue = nil
	o.off = 0
	o.clears++
	o.mu.Unlock()
}

func (o *MemOutput) Close() error {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	return nil
}

// Consume plays up to n queued frames and returns how many were played.
// Nothing is played while paused; running short of frames counts as an
// underrun.
func (o *MemOutput) Consume(n int) int {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.paused {
		return 0
	}
	played := 0
	for played < n && len(o.queue) > 0 {
		b := o.queue[0]
		k := min(n-played, len(b.Samples)-o.off)
		for _, s := range b.Samples[o.off : o.off+k] {
			o.played = append(o.played, s[0])
		}
		played += k
		o.off += k
		if o.off == len(b.Samples) {
			o.queue = o.queue[1:]
			o.off = 0
		}
	}
	if played < n {
		o.underruns++
	}
	return played
}

// Underruns returns how many Consume calls ran out of queued frames
func (o *MemOutput) Underruns() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.underruns
}

// FailWrites makes every later Write return err
func (o *MemOutput) FailWrites(err error) {
	o.mu.Lock()
	o.writeErr = err
	o.mu.Unlock()
}

// Written returns every block accepted so far
func (o *MemOutput) Written() []*audio.Block {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*audio.Block(nil), o.written...)
}

// Played returns the left channel of every frame consumed so far
func (o *MemOutput) Played() []float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]float64(nil), o.played...)
}

func (o *MemOutput) Paused() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.paused
}

func (o *MemOutput) Volume() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.volume
}

func (o *MemOutput) Clears() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.clears
}

func (o *MemOutput) Closed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}
