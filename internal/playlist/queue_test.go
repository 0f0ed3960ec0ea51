package playlist

import (
	"fmt"
	"math/rand"
	"slices"
	"testing"

	"github.com/jscyril/juke/api"
)

func makeTracks(n int) []*api.Track {
	tracks := make([]*api.Track, n)
	for i := range tracks {
		id := fmt.Sprintf("t%d", i)
		tracks[i] = &api.Track{ID: id, Title: id, FilePath: "/music/" + id + ".mp3"}
	}
	return tracks
}

func newTestQueue(n int, seed int64) *Queue {
	q := NewQueue()
	q.SetRand(rand.New(rand.NewSource(seed)))
	q.Set(makeTracks(n))
	return q
}

func TestEmptyQueue(t *testing.T) {
	q := NewQueue()

	if q.Current() != nil || q.Index() != -1 {
		t.Error("empty queue should have no current track")
	}
	if _, ok := q.Advance(Next); ok {
		t.Error("Advance on empty queue should report false")
	}
	if _, ok := q.Skip(); ok {
		t.Error("Skip on empty queue should report false")
	}
	if q.Select(0) {
		t.Error("Select on empty queue should fail")
	}
	q.ToggleShuffle()
}

func TestRepeatAllVisitsEveryTrackOnce(t *testing.T) {
	for n := 1; n <= 6; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			q := newTestQueue(n, 1)
			q.SetRepeatMode(api.RepeatAll)
			start := q.Current()

			seen := map[string]int{}
			for i := 0; i < n; i++ {
				track, ok := q.Advance(Next)
				if !ok {
					t.Fatal("Advance should never be exhausted with repeat all")
				}
				seen[track.ID]++
			}
			if q.Current() != start {
				t.Errorf("after %d advances current = %s, want %s", n, q.Current().ID, start.ID)
			}
			if len(seen) != n {
				t.Errorf("visited %d distinct tracks, want %d", len(seen), n)
			}
		})
	}
}

func TestRepeatOnePinsNext(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		q := newTestQueue(n, 1)
		q.SetRepeatMode(api.RepeatOne)
		q.Select(n - 1)
		want := q.Current()

		for i := 0; i < 3; i++ {
			if got, ok := q.Advance(Next); !ok || got != want {
				t.Fatalf("n=%d: Advance(Next) = %v, want %s", n, got, want.ID)
			}
		}
	}
}

func TestRepeatOffExhausts(t *testing.T) {
	q := newTestQueue(2, 1)

	if got, ok := q.Advance(Next); !ok || got.ID != "t1" {
		t.Fatalf("Advance(Next) = %v, %v, want t1", got, ok)
	}
	if got, ok := q.Advance(Next); ok || got != nil {
		t.Errorf("Advance past the end = %v, %v, want exhausted", got, ok)
	}
	if q.Current().ID != "t1" {
		t.Error("an exhausted advance must not change the current track")
	}
}

func TestAdvancePrevious(t *testing.T) {
	tests := []struct {
		name   string
		repeat api.RepeatMode
		want   string
	}{
		{"off stays on first", api.RepeatOff, "t0"},
		{"all wraps to last", api.RepeatAll, "t2"},
		{"one stays on first", api.RepeatOne, "t0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := newTestQueue(3, 1)
			q.SetRepeatMode(tt.repeat)
			got, ok := q.Advance(Previous)
			if !ok || got.ID != tt.want {
				t.Errorf("Advance(Previous) = %v, want %s", got, tt.want)
			}
		})
	}

	q := newTestQueue(3, 1)
	q.SetRepeatMode(api.RepeatOne)
	q.Select(2)
	if got, _ := q.Advance(Previous); got.ID != "t1" {
		t.Errorf("Previous with repeat one = %s, want t1", got.ID)
	}
}

func TestSkipIgnoresRepeatOne(t *testing.T) {
	q := newTestQueue(3, 1)
	q.SetRepeatMode(api.RepeatOne)

	if got, ok := q.Skip(); !ok || got.ID != "t1" {
		t.Errorf("Skip = %v, want t1", got)
	}
	q.Select(2)
	if got, ok := q.Skip(); !ok || got.ID != "t0" {
		t.Errorf("Skip at the end with repeat one = %v, want wrap to t0", got)
	}

	q.SetRepeatMode(api.RepeatOff)
	q.Select(2)
	if _, ok := q.Skip(); ok {
		t.Error("Skip at the end with repeat off should be exhausted")
	}
}

func TestShuffleKeepsPlayedPrefix(t *testing.T) {
	q := newTestQueue(10, 42)
	q.Select(3)

	if !q.ToggleShuffle() {
		t.Fatal("ToggleShuffle should report shuffle on")
	}
	order := q.Order()
	if !slices.Equal(order[:4], []int{0, 1, 2, 3}) {
		t.Errorf("played prefix changed: %v", order[:4])
	}
	if q.Index() != 3 {
		t.Errorf("current index = %d, want 3", q.Index())
	}
	rest := slices.Clone(order[4:])
	slices.Sort(rest)
	if !slices.Equal(rest, []int{4, 5, 6, 7, 8, 9}) {
		t.Errorf("remaining order %v is not a permutation of the unplayed tracks", order[4:])
	}
}

func TestShuffleThenUnshuffleRestoresOrder(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		q := newTestQueue(8, seed)
		q.Select(2)
		q.ToggleShuffle()
		q.Advance(Next)
		current := q.Current()

		if q.ToggleShuffle() {
			t.Fatal("second ToggleShuffle should report shuffle off")
		}
		if !slices.Equal(q.Order(), []int{0, 1, 2, 3, 4, 5, 6, 7}) {
			t.Fatalf("seed %d: order after unshuffle = %v", seed, q.Order())
		}
		if q.Current() != current {
			t.Errorf("seed %d: current changed from %s to %s", seed, current.ID, q.Current().ID)
		}
	}
}

func TestRepeatAllReshufflesOnWrap(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		q := newTestQueue(4, seed)
		q.SetRepeatMode(api.RepeatAll)
		q.ToggleShuffle()

		for i := 0; i < 3; i++ {
			q.Advance(Next)
		}
		last := q.Current()
		first, ok := q.Advance(Next)
		if !ok {
			t.Fatal("wrap should succeed with repeat all")
		}
		if first == last {
			t.Fatalf("seed %d: new pass starts with the track that just played", seed)
		}

		order := slices.Clone(q.Order())
		slices.Sort(order)
		if !slices.Equal(order, []int{0, 1, 2, 3}) {
			t.Fatalf("seed %d: order %v is not a permutation", seed, q.Order())
		}
	}
}

func TestSelect(t *testing.T) {
	q := newTestQueue(5, 7)
	q.ToggleShuffle()

	if !q.Select(4) || q.Current().ID != "t4" {
		t.Errorf("Select(4) current = %s, want t4", q.Current().ID)
	}
	for _, idx := range []int{-1, 5, 100} {
		if q.Select(idx) {
			t.Errorf("Select(%d) should fail", idx)
		}
		if q.Current().ID != "t4" {
			t.Errorf("Select(%d) changed the current track", idx)
		}
	}
}

func TestCycleRepeat(t *testing.T) {
	q := NewQueue()
	want := []api.RepeatMode{api.RepeatAll, api.RepeatOne, api.RepeatOff, api.RepeatAll}
	for i, w := range want {
		if got := q.CycleRepeat(); got != w {
			t.Errorf("cycle %d = %v, want %v", i, got, w)
		}
	}
	if q.RepeatMode() != api.RepeatAll {
		t.Errorf("RepeatMode = %v, want All", q.RepeatMode())
	}
}

func TestSetKeepsShuffleOn(t *testing.T) {
	q := newTestQueue(3, 3)
	q.ToggleShuffle()
	q.Set(makeTracks(6))

	if !q.IsShuffled() || q.Len() != 6 {
		t.Fatalf("IsShuffled = %v, Len = %d", q.IsShuffled(), q.Len())
	}
	if q.Order()[0] != 0 || q.Current().ID != "t0" {
		t.Errorf("Set should start at the first track, got %s", q.Current().ID)
	}
	if got := q.Tracks(); got[5].ID != "t5" {
		t.Error("Tracks should keep the original order")
	}
}
