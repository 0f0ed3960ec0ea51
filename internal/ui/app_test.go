package ui

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jscyril/juke/api"
	"github.com/jscyril/juke/internal/audio"
	"github.com/jscyril/juke/internal/audio/audiotest"
	"github.com/jscyril/juke/internal/playlist"
	playerrors "github.com/jscyril/juke/pkg/errors"
	"github.com/jscyril/juke/pkg/events"
)

const rate = 1000

type harness struct {
	m       Model
	tracks  map[string]*api.Track
	queue   *playlist.Queue
	engine  *audio.Engine
	decoder *audiotest.SynthDecoder
	out     *audiotest.MemOutput
	bus     *events.EventBus
}

type synth struct {
	name  string
	track audiotest.SynthTrack
}

func newHarness(t *testing.T, opts Options, tracks ...synth) *harness {
	t.Helper()
	h := &harness{
		tracks:  make(map[string]*api.Track),
		queue:   playlist.NewQueue(),
		decoder: audiotest.NewSynthDecoder(rate),
		out:     audiotest.NewMemOutput(4),
		bus:     events.NewEventBus(),
	}

	list := make([]*api.Track, 0, len(tracks))
	for _, s := range tracks {
		h.decoder.Add(s.name, s.track)
		track := &api.Track{ID: s.name, Title: s.name, FilePath: s.name}
		h.tracks[s.name] = track
		list = append(list, track)
	}
	h.queue.Set(list)

	h.engine = audio.NewEngine(h.decoder, h.out, audio.Options{BufferBlocks: 4, Volume: 0.5, Bus: h.bus})
	t.Cleanup(func() {
		h.engine.Close()
		h.bus.Close()
	})

	opts.Bus = h.bus
	h.m = NewModel(h.engine, h.queue, opts)
	return h
}

func (h *harness) update(msg tea.Msg) tea.Cmd {
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

func (h *harness) press(msgs ...tea.KeyMsg) {
	for _, msg := range msgs {
		h.update(msg)
	}
}

func (h *harness) typeText(s string) {
	for _, r := range s {
		h.press(runeKey(r))
	}
}

// pump ticks the model and drains the output until done reports true
func (h *harness) pump(t *testing.T, done func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		h.update(TickMsg(time.Now()))
		if done() {
			return
		}
		h.out.Consume(100)
		time.Sleep(100 * time.Microsecond)
	}
	t.Fatal("timed out pumping the model")
}

func TestAutoAdvanceThenStop(t *testing.T) {
	h := newHarness(t, Options{},
		synth{"a", audiotest.SynthTrack{Frames: 300}},
		synth{"b", audiotest.SynthTrack{Frames: 500}},
	)

	h.update(startMsg{})
	if s := h.engine.Snapshot(); s.CurrentTrack != h.tracks["a"] || s.Status != api.StatusPlaying {
		t.Fatalf("after start: %+v, want a playing", s)
	}

	h.pump(t, func() bool {
		s := h.engine.Snapshot()
		return s.CurrentTrack == h.tracks["b"] && s.Status == api.StatusStopped
	})

	played := h.out.Played()
	if len(played) != 800 {
		t.Fatalf("played %d frames, want 800", len(played))
	}
	if played[299] != 299 || played[300] != 0 || played[799] != 499 {
		t.Errorf("frames around the boundary: %v %v %v", played[299], played[300], played[799])
	}
	if h.m.state.Status != api.StatusStopped {
		t.Errorf("model state = %v, want Stopped", h.m.state.Status)
	}
}

func TestSkipTrackThatFailsToOpen(t *testing.T) {
	h := newHarness(t, Options{},
		synth{"bad", audiotest.SynthTrack{OpenErr: errors.New("corrupt header")}},
		synth{"good", audiotest.SynthTrack{Frames: 300}},
	)
	skipped := h.bus.Subscribe(api.EventTrackSkipped)

	h.update(startMsg{})
	h.pump(t, func() bool {
		return h.engine.Snapshot().CurrentTrack == h.tracks["good"] && !h.engine.Loading()
	})

	if s := h.engine.Snapshot(); s.Status != api.StatusPlaying || s.SampleRate != rate {
		t.Fatalf("snapshot = %+v, want good playing", s)
	}
	select {
	case ev := <-skipped:
		if ev.Payload != h.tracks["bad"] {
			t.Errorf("skipped payload = %v, want bad", ev.Payload)
		}
		h.update(noticeMsg(ev))
		if !strings.Contains(h.m.status, "Skipped") {
			t.Errorf("status = %q, want a skip notice", h.m.status)
		}
	default:
		t.Error("no TrackSkipped event")
	}

	h.pump(t, func() bool { return len(h.out.Played()) >= 300 })
}

func TestAllTracksFailToOpen(t *testing.T) {
	h := newHarness(t, Options{},
		synth{"bad1", audiotest.SynthTrack{OpenErr: errors.New("corrupt")}},
		synth{"bad2", audiotest.SynthTrack{OpenErr: errors.New("corrupt")}},
	)
	h.queue.SetRepeatMode(api.RepeatAll)

	h.update(startMsg{})
	h.pump(t, func() bool { return strings.Contains(h.m.status, "No playable track") })

	if got := h.decoder.Opened(); len(got) != 2 {
		t.Errorf("opened %v, want each track tried once", got)
	}
	s := h.engine.Snapshot()
	if s.CurrentTrack != nil || s.Status != api.StatusStopped {
		t.Errorf("snapshot = %+v, want nothing loaded", s)
	}
}

func TestSlowOpenDoesNotBlockUpdate(t *testing.T) {
	h := newHarness(t, Options{},
		synth{"slow", audiotest.SynthTrack{Frames: 300}},
	)
	gate := make(chan struct{})
	h.decoder.OpenGate = gate
	defer close(gate)

	h.update(startMsg{})
	h.update(TickMsg(time.Now()))

	s := h.engine.Snapshot()
	if s.CurrentTrack != h.tracks["slow"] || s.Status != api.StatusPlaying {
		t.Fatalf("snapshot while opening = %+v, want slow playing", s)
	}
	if s.Duration != -1 || !h.engine.Loading() {
		t.Errorf("Duration = %d, Loading = %v, want an unknown length while opening", s.Duration, h.engine.Loading())
	}
}

func TestNextAtEndOfQueueStops(t *testing.T) {
	h := newHarness(t, Options{}, synth{"a", audiotest.SynthTrack{Frames: 5000}})
	h.update(startMsg{})

	h.press(runeKey('n'))

	s := h.engine.Snapshot()
	if s.Status != api.StatusStopped || s.CurrentTrack != h.tracks["a"] {
		t.Errorf("snapshot = %+v, want a stopped", s)
	}
}

func TestPrevRestartsTrack(t *testing.T) {
	h := newHarness(t, Options{},
		synth{"a", audiotest.SynthTrack{Frames: 1000}},
		synth{"b", audiotest.SynthTrack{Frames: 10000}},
	)
	h.update(startMsg{})
	h.press(runeKey('n'))

	h.pump(t, func() bool { return h.engine.Snapshot().Elapsed() > 3500*time.Millisecond })
	h.press(runeKey('p'))
	h.pump(t, func() bool { return !h.engine.Seeking() })

	s := h.engine.Snapshot()
	if s.CurrentTrack != h.tracks["b"] || s.Elapsed() > time.Second {
		t.Fatalf("after prev: %+v, want b restarted", s)
	}

	h.press(runeKey('p'))
	if s := h.engine.Snapshot(); s.CurrentTrack != h.tracks["a"] {
		t.Errorf("second prev: %+v, want a", s)
	}
}

func TestViewTransitions(t *testing.T) {
	h := newHarness(t, Options{}, synth{"a", audiotest.SynthTrack{Frames: 300}})

	steps := []struct {
		key  tea.KeyMsg
		want View
	}{
		{runeKey('?'), ViewHelp},
		{runeKey('?'), ViewNowPlaying},
		{runeKey('t'), ViewTrackList},
		{runeKey('q'), ViewTrackList},
		{tea.KeyMsg{Type: tea.KeyF1}, ViewHelp},
		{tea.KeyMsg{Type: tea.KeyEsc}, ViewTrackList},
		{tea.KeyMsg{Type: tea.KeyEsc}, ViewNowPlaying},
		{runeKey('h'), ViewHelp},
		{tea.KeyMsg{Type: tea.KeyEsc}, ViewNowPlaying},
	}
	for i, step := range steps {
		h.press(step.key)
		if h.m.view != step.want {
			t.Fatalf("step %d (%s): view = %v, want %v", i, step.key, h.m.view, step.want)
		}
	}

	cmd := h.update(runeKey('q'))
	if cmd == nil {
		t.Fatal("q in now playing should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not return tea.Quit")
	}
}

func TestSearchAndConfirm(t *testing.T) {
	h := newHarness(t, Options{},
		synth{"Alpha", audiotest.SynthTrack{Frames: 1000}},
		synth{"Beta", audiotest.SynthTrack{Frames: 1000}},
		synth{"Gamma", audiotest.SynthTrack{Frames: 1000}},
	)
	h.update(startMsg{})

	h.press(runeKey('/'))
	h.typeText("gax")
	h.press(tea.KeyMsg{Type: tea.KeyBackspace})

	if q := h.m.trackList.Query(); q != "ga" {
		t.Fatalf("query = %q, want ga", q)
	}
	if got := h.m.trackList.Matches(); len(got) != 1 || got[0] != 2 {
		t.Fatalf("matches = %v, want [2]", got)
	}

	h.press(tea.KeyMsg{Type: tea.KeyEnter})

	if h.m.view != ViewNowPlaying {
		t.Errorf("view = %v, want NowPlaying", h.m.view)
	}
	if s := h.engine.Snapshot(); s.CurrentTrack != h.tracks["Gamma"] || s.Status != api.StatusPlaying {
		t.Errorf("snapshot = %+v, want Gamma playing", s)
	}
	if h.queue.Index() != 2 {
		t.Errorf("queue index = %d, want 2", h.queue.Index())
	}
}

func TestConfirmWithNoMatchesDoesNothing(t *testing.T) {
	h := newHarness(t, Options{}, synth{"Alpha", audiotest.SynthTrack{Frames: 1000}})
	h.press(runeKey('t'))
	h.typeText("zzz")
	h.press(tea.KeyMsg{Type: tea.KeyEnter})

	if h.m.view != ViewTrackList {
		t.Errorf("view = %v, want TrackList", h.m.view)
	}
	if s := h.engine.Snapshot(); s.CurrentTrack != nil {
		t.Errorf("loaded %v with no match", s.CurrentTrack)
	}
}

func TestQueueModeKeys(t *testing.T) {
	h := newHarness(t, Options{},
		synth{"a", audiotest.SynthTrack{Frames: 100}},
		synth{"b", audiotest.SynthTrack{Frames: 100}},
	)

	h.press(runeKey('r'))
	if got := h.queue.RepeatMode(); got != api.RepeatAll {
		t.Errorf("repeat = %v, want All", got)
	}
	h.press(runeKey('S'))
	if !h.queue.IsShuffled() {
		t.Error("shuffle should be on")
	}
	if h.m.nowPlaying.Repeat != api.RepeatAll || !h.m.nowPlaying.Shuffle {
		t.Error("now playing view not refreshed")
	}
}

func TestVolumeKeys(t *testing.T) {
	h := newHarness(t, Options{}, synth{"a", audiotest.SynthTrack{Frames: 100}})

	h.press(runeKey('+'))
	if v := h.engine.Snapshot().Volume; v < 0.549 || v > 0.551 {
		t.Errorf("volume = %v, want 0.55", v)
	}
	h.press(runeKey('-'), runeKey('-'))
	if v := h.out.Volume(); v < 0.449 || v > 0.451 {
		t.Errorf("output volume = %v, want 0.45", v)
	}
}

func TestSaveQueue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lists", "queue.m3u")
	h := newHarness(t, Options{QueuePath: path},
		synth{"a", audiotest.SynthTrack{Frames: 100}},
		synth{"b", audiotest.SynthTrack{Frames: 100}},
	)

	h.press(runeKey('w'))

	entries, err := playlist.ReadM3U(path)
	if err != nil {
		t.Fatalf("ReadM3U: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("saved %d entries, want 2", len(entries))
	}
	if !strings.Contains(h.m.status, "Queue saved") {
		t.Errorf("status = %q", h.m.status)
	}
}

func TestDeviceErrorQuits(t *testing.T) {
	h := newHarness(t, Options{}, synth{"a", audiotest.SynthTrack{Frames: 5000}})
	h.update(startMsg{})
	h.out.FailWrites(errors.New("device unplugged"))

	deadline := time.Now().Add(5 * time.Second)
	for h.m.Err() == nil && time.Now().Before(deadline) {
		h.update(TickMsg(time.Now()))
		time.Sleep(100 * time.Microsecond)
	}
	if !errors.Is(h.m.Err(), playerrors.ErrDevice) {
		t.Fatalf("Err() = %v, want ErrDevice", h.m.Err())
	}
}

func TestSmallTerminalWarning(t *testing.T) {
	h := newHarness(t, Options{}, synth{"a", audiotest.SynthTrack{Frames: 100}})

	h.update(tea.WindowSizeMsg{Width: 30, Height: 8})
	if v := h.m.View(); !strings.Contains(v, "too small") {
		t.Errorf("View() = %q, want size warning", v)
	}

	h.update(tea.WindowSizeMsg{Width: 80, Height: 24})
	if v := h.m.View(); strings.Contains(v, "too small") {
		t.Error("warning shown at 80x24")
	}
}
