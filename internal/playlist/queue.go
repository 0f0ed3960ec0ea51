package playlist

import (
	"math/rand"
	"sync"
	"time"

	"github.com/jscyril/juke/api"
)

// Direction selects which way Advance moves through the queue
type Direction int

const (
	Next Direction = iota
	Previous
)

// Queue represents a playback queue. Tracks keep their original order;
// order is the play order over track indices and is the identity unless
// shuffle is on.
type Queue struct {
	tracks     []*api.Track
	order      []int
	pos        int // position in order
	repeatMode api.RepeatMode
	shuffle    bool
	rng        *rand.Rand
	mu         sync.RWMutex
}

// NewQueue creates a new empty queue
func NewQueue() *Queue {
	return &Queue{
		tracks:     make([]*api.Track, 0),
		order:      make([]int, 0),
		repeatMode: api.RepeatOff,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetRand replaces the random source used for shuffling
func (q *Queue) SetRand(rng *rand.Rand) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rng = rng
}

// Set replaces the entire queue with new tracks and selects the first one
func (q *Queue) Set(tracks []*api.Track) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.tracks = make([]*api.Track, len(tracks))
	copy(q.tracks, tracks)
	q.order = identity(len(tracks))
	q.pos = 0
	if q.shuffle {
		q.shuffleFrom(1)
	}
}

// Current returns the current track
func (q *Queue) Current() *api.Track {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if len(q.tracks) == 0 {
		return nil
	}
	return q.tracks[q.order[q.pos]]
}

// Advance moves to the next or previous track and returns it. It reports
// false, leaving the queue unchanged, when Next runs off the end with
// repeat off.
func (q *Queue) Advance(dir Direction) (*api.Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tracks) == 0 {
		return nil, false
	}
	if dir == Previous {
		return q.back(), true
	}
	if q.repeatMode == api.RepeatOne {
		return q.tracks[q.order[q.pos]], true
	}
	return q.forward(q.repeatMode == api.RepeatAll)
}

// Skip moves past a track that could not be played. Unlike Advance it does
// not stay on the track with repeat one; it wraps with repeat all or one.
func (q *Queue) Skip() (*api.Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tracks) == 0 {
		return nil, false
	}
	return q.forward(q.repeatMode != api.RepeatOff)
}

func (q *Queue) forward(wrap bool) (*api.Track, bool) {
	if q.pos < len(q.order)-1 {
		q.pos++
		return q.tracks[q.order[q.pos]], true
	}
	if !wrap {
		return nil, false
	}

	if q.shuffle {
		last := q.order[q.pos]
		q.shuffleFrom(0)
		if len(q.order) > 1 && q.order[0] == last {
			j := 1 + q.rng.Intn(len(q.order)-1)
			q.order[0], q.order[j] = q.order[j], q.order[0]
		}
	}
	q.pos = 0
	return q.tracks[q.order[q.pos]], true
}

func (q *Queue) back() *api.Track {
	switch {
	case q.pos > 0:
		q.pos--
	case q.repeatMode == api.RepeatAll:
		q.pos = len(q.order) - 1
	}
	return q.tracks[q.order[q.pos]]
}

// Select jumps to the track at index in the original order. Out of range
// indices are ignored.
func (q *Queue) Select(index int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if index < 0 || index >= len(q.tracks) {
		return false
	}
	for i, idx := range q.order {
		if idx == index {
			q.pos = i
			break
		}
	}
	return true
}

// ToggleShuffle turns shuffle on or off and reports the new state.
// Enabling shuffles only the tracks after the current one; disabling
// restores the original order. The current track never changes.
func (q *Queue) ToggleShuffle() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.shuffle = !q.shuffle
	if len(q.tracks) == 0 {
		return q.shuffle
	}

	if q.shuffle {
		q.shuffleFrom(q.pos + 1)
	} else {
		current := q.order[q.pos]
		q.order = identity(len(q.tracks))
		q.pos = current
	}
	return q.shuffle
}

// shuffleFrom permutes order[from:] in place
func (q *Queue) shuffleFrom(from int) {
	if from >= len(q.order) {
		return
	}
	rest := q.order[from:]
	q.rng.Shuffle(len(rest), func(i, j int) {
		rest[i], rest[j] = rest[j], rest[i]
	})
}

// CycleRepeat rotates the repeat mode Off → All → One → Off
func (q *Queue) CycleRepeat() api.RepeatMode {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.repeatMode = q.repeatMode.Next()
	return q.repeatMode
}

// SetRepeatMode sets the repeat mode
func (q *Queue) SetRepeatMode(mode api.RepeatMode) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.repeatMode = mode
}

// RepeatMode returns the current repeat mode
func (q *Queue) RepeatMode() api.RepeatMode {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.repeatMode
}

// IsShuffled returns whether the queue is shuffled
func (q *Queue) IsShuffled() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.shuffle
}

// Tracks returns a copy of all tracks in their original order
func (q *Queue) Tracks() []*api.Track {
	q.mu.RLock()
	defer q.mu.RUnlock()

	result := make([]*api.Track, len(q.tracks))
	copy(result, q.tracks)
	return result
}

// Order returns a copy of the play order as track indices
func (q *Queue) Order() []int {
	q.mu.RLock()
	defer q.mu.RUnlock()

	result := make([]int, len(q.order))
	copy(result, q.order)
	return result
}

// Len returns the number of tracks in the queue
func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.tracks)
}

// Index returns the original index of the current track, or -1 when empty
func (q *Queue) Index() int {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if len(q.tracks) == 0 {
		return -1
	}
	return q.order[q.pos]
}

func identity(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}
