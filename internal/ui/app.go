package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jscyril/juke/api"
	"github.com/jscyril/juke/internal/config"
	"github.com/jscyril/juke/internal/playlist"
	"github.com/jscyril/juke/internal/ui/views"
	"github.com/jscyril/juke/internal/visual"
	playerrors "github.com/jscyril/juke/pkg/errors"
	"github.com/jscyril/juke/pkg/events"
)

const (
	minWidth  = 40
	minHeight = 10

	volumeStep     = 0.05
	restartAfter   = 3 * time.Second
	statusLifetime = 5 * time.Second
)

// Options configures the interaction loop
type Options struct {
	SeekStep    time.Duration
	Tick        time.Duration
	QueuePath   string // where the save_queue key writes the queue
	Bands       int
	KeyBindings config.KeyBindings
	Bus         *events.EventBus
	Logger      *slog.Logger
}

// Model is the main bubbletea model
type Model struct {
	// Dimensions
	width  int
	height int

	// Current view and the one Back returns to
	view     View
	prevView View

	// Components
	engine  api.Player
	queue   *playlist.Queue
	sampler *visual.Sampler
	keys    KeyMap
	bus     *events.EventBus
	notices <-chan api.AudioEvent
	log     *slog.Logger

	seekStep  time.Duration
	tick      time.Duration
	queuePath string

	// State
	state    api.PlaybackState
	status   string
	statusAt time.Time
	fatal    error
	// tracks that failed to open since one last opened
	failed int

	// Views
	nowPlaying views.NowPlayingView
	trackList  views.TrackListView
	help       views.HelpView

	warningStyle lipgloss.Style
	statusStyle  lipgloss.Style
	headerStyle  lipgloss.Style
}

// TickMsg drives the engine and redraws the screen
type TickMsg time.Time

// startMsg begins playback of the queue's current track
type startMsg struct{}

// noticeMsg carries an event for the status line
type noticeMsg api.AudioEvent

// NewModel creates a new application model playing queue through engine
func NewModel(engine api.Player, queue *playlist.Queue, opts Options) Model {
	if opts.SeekStep <= 0 {
		opts.SeekStep = 10 * time.Second
	}
	if opts.Tick <= 0 {
		opts.Tick = 33 * time.Millisecond
	}
	if opts.Bands <= 0 {
		opts.Bands = 12
	}
	if opts.KeyBindings == nil {
		opts.KeyBindings = config.DefaultKeyBindings()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	state := engine.Snapshot()
	m := Model{
		width:     80,
		height:    24,
		view:      ViewNowPlaying,
		prevView:  ViewNowPlaying,
		engine:    engine,
		queue:     queue,
		sampler:   visual.NewSampler(opts.Bands, state.SampleRate),
		keys:      NewKeyMap(opts.KeyBindings),
		bus:       opts.Bus,
		log:       opts.Logger,
		seekStep:  opts.SeekStep,
		tick:      opts.Tick,
		queuePath: opts.QueuePath,
		state:     state,
		warningStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),
		statusStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")),
		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),
	}
	if m.bus != nil {
		m.notices = m.bus.Subscribe(api.EventTrackSkipped, api.EventError)
	}

	m.nowPlaying = views.NewNowPlayingView(m.width, m.height-2)
	m.nowPlaying.Hint = m.hint()
	m.trackList = views.NewTrackListView(m.width, m.height-2)
	m.trackList.SetTracks(queue.Tracks())
	m.help = views.NewHelpView(m.width, m.helpEntries())
	m.refresh()

	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return startMsg{} },
		m.tickCmd(),
		m.listenForEvents(),
	)
}

// tickCmd schedules the next engine tick
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// listenForEvents waits for the next status line event
func (m Model) listenForEvents() tea.Cmd {
	if m.notices == nil {
		return nil
	}
	notices := m.notices
	return func() tea.Msg {
		event, ok := <-notices
		if !ok {
			return nil
		}
		return noticeMsg(event)
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateViewSizes()

	case startMsg:
		if m.queue.Current() != nil {
			m.loadAndPlay()
		}
		m.refresh()

	case TickMsg:
		loading := m.engine.Snapshot().CurrentTrack
		sig, err := m.engine.Tick()
		switch {
		case sig == api.SignalLoadFailed:
			m.skip(loading, err)
		case err != nil && errors.Is(err, playerrors.ErrDevice):
			m.log.Error("audio device failed", "error", err)
			m.fatal = err
			return m, tea.Quit
		case err != nil:
			m.setStatus(err.Error())
		}
		switch sig {
		case api.SignalTrackOpened:
			m.failed = 0
			m.sampler.SetSampleRate(m.engine.Snapshot().SampleRate)
		case api.SignalTrackFinished:
			m.advance(playlist.Next)
		}
		if !m.statusAt.IsZero() && time.Time(msg).Sub(m.statusAt) > statusLifetime {
			m.status = ""
			m.statusAt = time.Time{}
		}
		m.refresh()
		return m, m.tickCmd()

	case noticeMsg:
		m.notice(api.AudioEvent(msg))
		return m, m.listenForEvents()

	case tea.KeyMsg:
		action, ok := m.keys.Resolve(msg, m.view)
		if !ok {
			return m, nil
		}
		if action.Command == CmdQuit {
			m.engine.Stop()
			return m, tea.Quit
		}
		m.apply(action)
		m.refresh()
	}

	return m, nil
}

// apply runs a resolved action against the engine, queue and views
func (m *Model) apply(action Action) {
	switch action.Command {
	case CmdPlayPause:
		if m.engine.Snapshot().CurrentTrack == nil {
			m.loadAndPlay()
			return
		}
		m.engine.TogglePause()

	case CmdStop:
		m.engine.Stop()

	case CmdNext:
		m.advance(playlist.Next)

	case CmdPrev:
		if m.engine.Snapshot().Elapsed() > restartAfter {
			m.engine.SeekTo(0)
			return
		}
		m.advance(playlist.Previous)

	case CmdSeekForward:
		m.engine.SeekBy(m.seekStep)

	case CmdSeekBack:
		m.engine.SeekBy(-m.seekStep)

	case CmdToggleShuffle:
		m.queue.ToggleShuffle()

	case CmdCycleRepeat:
		m.queue.CycleRepeat()

	case CmdVolumeUp, CmdVolumeDown:
		step := volumeStep
		if action.Command == CmdVolumeDown {
			step = -step
		}
		level := math.Round((m.engine.Snapshot().Volume+step)*100) / 100
		if err := m.engine.SetVolume(min(max(level, 0), 1)); err != nil {
			m.setStatus(err.Error())
		}

	case CmdSaveQueue:
		m.saveQueue()

	case CmdOpenTrackList:
		m.trackList.SetTracks(m.queue.Tracks())
		m.switchTo(ViewTrackList)

	case CmdOpenHelp:
		if m.view == ViewHelp {
			m.back()
			return
		}
		m.switchTo(ViewHelp)

	case CmdBack:
		m.back()

	case CmdNavigateUp:
		m.trackList.MoveUp()

	case CmdNavigateDown:
		m.trackList.MoveDown()

	case CmdAppendSearchChar:
		m.trackList.AppendQuery(action.Rune)

	case CmdBackspace:
		m.trackList.Backspace()

	case CmdConfirmSelection:
		index := m.trackList.SelectedIndex()
		if index < 0 || !m.queue.Select(index) {
			return
		}
		m.loadAndPlay()
		m.view = ViewNowPlaying
		m.prevView = ViewNowPlaying
	}
}

func (m *Model) switchTo(view View) {
	if m.view == view {
		return
	}
	m.prevView = m.view
	m.view = view
}

// back leaves the active view. Help returns to where it was opened from;
// every other view returns to NowPlaying.
func (m *Model) back() {
	switch m.view {
	case ViewHelp:
		m.view = m.prevView
	default:
		m.view = ViewNowPlaying
	}
	m.prevView = ViewNowPlaying
}

// advance moves the queue and plays the new track. Running off the end of
// the queue leaves the engine stopped.
func (m *Model) advance(dir playlist.Direction) {
	if _, ok := m.queue.Advance(dir); !ok {
		m.engine.Stop()
		m.log.Info("end of queue")
		return
	}
	m.loadAndPlay()
}

// loadAndPlay starts the queue's current track. The engine opens it in the
// background; a failed open comes back from Tick and is handled by skip.
func (m *Model) loadAndPlay() {
	track := m.queue.Current()
	if track == nil {
		return
	}
	if err := m.engine.Load(track); err != nil {
		m.log.Warn("cannot load track", "path", track.FilePath, "error", err)
		return
	}
	m.sampler.Reset()
	m.engine.Play()
}

// skip moves past a track that could not be opened, trying each track in
// the queue at most once until one opens.
func (m *Model) skip(track *api.Track, err error) {
	m.log.Warn("skipping track", "path", track.FilePath, "error", err)
	m.bus.Publish(api.AudioEvent{Type: api.EventTrackSkipped, Payload: track})

	m.failed++
	if m.failed < m.queue.Len() {
		if _, ok := m.queue.Skip(); ok {
			m.loadAndPlay()
			return
		}
	}
	m.failed = 0
	m.log.Warn("no playable track left in queue")
	m.setStatus("No playable track")
}

func (m *Model) saveQueue() {
	if m.queuePath == "" {
		m.setStatus("No queue file configured")
		return
	}
	if err := playlist.SaveM3U(m.queuePath, m.queue.Tracks()); err != nil {
		m.log.Error("saving queue", "path", m.queuePath, "error", err)
		m.setStatus(fmt.Sprintf("Cannot save queue: %v", err))
		return
	}
	m.log.Info("queue saved", "path", m.queuePath)
	m.setStatus("Queue saved to " + m.queuePath)
}

// notice turns a bus event into a status line message
func (m *Model) notice(event api.AudioEvent) {
	switch event.Type {
	case api.EventTrackSkipped:
		if track, ok := event.Payload.(*api.Track); ok {
			m.setStatus("Skipped unplayable track: " + track.DisplayTitle())
		}
	case api.EventError:
		if err, ok := event.Payload.(error); ok {
			var perr *playerrors.PlayerError
			if errors.As(err, &perr) && perr.Op == "seek" {
				m.setStatus("Seek failed, playback continues")
				return
			}
			m.setStatus(err.Error())
		}
	}
}

func (m *Model) setStatus(text string) {
	m.status = text
	m.statusAt = time.Now()
}

// refresh copies engine and queue state into the views
func (m *Model) refresh() {
	m.state = m.engine.Snapshot()
	m.nowPlaying.SetState(m.state, m.queue.RepeatMode(), m.queue.IsShuffled())

	var samples []float64
	if m.state.Status == api.StatusPlaying {
		samples = m.engine.Samples(visual.WindowSize)
	}
	m.nowPlaying.Bands = m.sampler.Sample(samples)
	m.trackList.TrackList.Current = m.state.CurrentTrack
}

// updateViewSizes updates view dimensions
func (m *Model) updateViewSizes() {
	// header and status line
	body := m.height - 2
	m.nowPlaying.SetSize(m.width, body)
	m.trackList.SetSize(m.width, body)
	m.help.Width = m.width
}

// View renders the UI
func (m Model) View() string {
	if m.width < minWidth || m.height < minHeight {
		return m.warningStyle.Render(fmt.Sprintf(
			"Terminal too small: %dx%d, need at least %dx%d", m.width, m.height, minWidth, minHeight))
	}

	var sb strings.Builder

	// Header
	sb.WriteString(m.headerStyle.Render("juke · " + m.view.String()))
	sb.WriteString("\n")

	// Main content
	switch m.view {
	case ViewTrackList:
		sb.WriteString(m.trackList.View())
	case ViewHelp:
		sb.WriteString(m.help.View())
	default:
		sb.WriteString(m.nowPlaying.View())
	}

	// Status line
	if m.status != "" {
		sb.WriteString("\n")
		sb.WriteString(m.statusStyle.Render(m.status))
	}

	return sb.String()
}

// hint lists the main keys under the now playing view
func (m Model) hint() string {
	parts := []string{}
	for _, h := range []struct {
		cmd   Command
		label string
	}{
		{CmdPlayPause, "Play/Pause"},
		{CmdNext, "Next"},
		{CmdPrev, "Prev"},
		{CmdOpenTrackList, "Tracks"},
		{CmdOpenHelp, "Help"},
		{CmdQuit, "Quit"},
	} {
		if keys := m.keys.Keys(h.cmd); len(keys) > 0 {
			parts = append(parts, fmt.Sprintf("[%s] %s", keys[0], h.label))
		}
	}
	return strings.Join(parts, "  ")
}

func (m Model) helpEntries() []views.HelpEntry {
	entries := []struct {
		cmd   Command
		label string
	}{
		{CmdPlayPause, "Play or pause"},
		{CmdStop, "Stop"},
		{CmdNext, "Next track"},
		{CmdPrev, "Previous track, or restart the current one"},
		{CmdSeekForward, fmt.Sprintf("Seek forward %s", m.seekStep)},
		{CmdSeekBack, fmt.Sprintf("Seek back %s", m.seekStep)},
		{CmdVolumeUp, "Volume up"},
		{CmdVolumeDown, "Volume down"},
		{CmdToggleShuffle, "Toggle shuffle"},
		{CmdCycleRepeat, "Cycle repeat (Off, All, One)"},
		{CmdOpenTrackList, "Track list and search"},
		{CmdNavigateUp, "Move up in the track list"},
		{CmdNavigateDown, "Move down in the track list"},
		{CmdConfirmSelection, "Play the selected track"},
		{CmdBackspace, "Delete a search character"},
		{CmdBack, "Go back"},
		{CmdSaveQueue, "Save the queue as M3U"},
		{CmdOpenHelp, "Toggle this help"},
		{CmdQuit, "Quit (ctrl+c works everywhere)"},
	}

	out := make([]views.HelpEntry, len(entries))
	for i, e := range entries {
		out[i] = views.HelpEntry{Keys: m.keys.describe(e.cmd), Description: e.label}
	}
	return out
}

// Err returns the error that ended the program, if any
func (m Model) Err() error {
	return m.fatal
}

// Run starts the bubbletea program and returns once the user quits or the
// audio device fails
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok {
		return fm.Err()
	}
	return nil
}
