package audio

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jscyril/juke/api"
	playerrors "github.com/jscyril/juke/pkg/errors"
	"github.com/jscyril/juke/pkg/events"
)

// Ensure Engine implements Player interface at compile time
var _ api.Player = (*Engine)(nil)

const (
	defaultBufferBlocks = 32
	tapFrames           = 1 << 15
)

// Options configures an Engine
type Options struct {
	BufferBlocks int
	Volume       float64
	Logger       *slog.Logger
	Bus          *events.EventBus
}

// Engine drives playback of one track at a time. A decode worker fills the
// ring buffer in the background; Tick moves blocks from the ring to the
// output. All methods except Snapshot and Samples must be called from the
// same goroutine.
type Engine struct {
	decoder Decoder
	out     Output
	ring    *RingBuffer
	tap     *Tap
	bus     *events.EventBus
	log     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	track  *api.Track
	worker *decodeWorker
	opened bool
	format Format
	length int
	status api.Status
	clock  int
	ended  bool
	volume float64

	// epoch tags the blocks being fed; requested is the newest seek handed
	// to the worker and acked the newest one it has answered
	epoch     uint64
	requested uint64
	acked     uint64

	state atomic.Pointer[api.PlaybackState]
}

// NewEngine creates an engine reading through decoder and writing to out
func NewEngine(decoder Decoder, out Output, opts Options) *Engine {
	if opts.BufferBlocks <= 0 {
		opts.BufferBlocks = defaultBufferBlocks
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Volume < 0 || opts.Volume > 1 {
		opts.Volume = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		decoder: decoder,
		out:     out,
		ring:    NewRingBuffer(opts.BufferBlocks),
		tap:     NewTap(tapFrames),
		bus:     opts.Bus,
		log:     opts.Logger,
		ctx:     ctx,
		cancel:  cancel,
		volume:  opts.Volume,
	}
	out.SetPaused(true)
	out.SetVolume(e.volume)
	e.publish()
	return e
}

// Load hands track to a new decode worker and leaves the engine Stopped at
// position zero. Any previous session is torn down first. The worker opens
// the file in the background; Tick reports SignalTrackOpened once the format
// and length are known, or SignalLoadFailed with an ErrDecodeOpen error.
func (e *Engine) Load(track *api.Track) error {
	if track == nil {
		return playerrors.ErrTrackNotFound
	}
	e.unload()
	defer e.publish()

	e.track = track
	e.length = -1
	e.requested++
	e.epoch, e.acked = e.requested, e.requested
	e.worker = startDecodeWorker(e.ctx, e.decoder, e.ring, track.FilePath, e.epoch, e.log, e.bus)
	return nil
}

// Loading reports whether the loaded track is still being opened
func (e *Engine) Loading() bool {
	return e.worker != nil && !e.opened
}

// checkOpen adopts the worker's open result. A track that failed to open is
// unloaded.
func (e *Engine) checkOpen() (api.Signal, error) {
	r := e.worker.opened.Load()
	if r == nil {
		return api.SignalNone, nil
	}
	if r.err != nil {
		e.log.Warn("cannot open track", "path", e.track.FilePath, "error", r.err)
		e.unload()
		return api.SignalLoadFailed, r.err
	}

	e.opened = true
	e.format = r.format
	e.length = r.length
	e.log.Debug("track loaded", "path", e.track.FilePath, "rate", e.format.SampleRate, "frames", e.length)
	return api.SignalTrackOpened, nil
}

func (e *Engine) unload() {
	if e.worker != nil {
		e.worker.stop()
		e.worker = nil
	}
	e.ring.Reset()
	e.out.SetPaused(true)
	e.out.Clear()
	e.tap.Reset()

	e.track = nil
	e.opened = false
	e.format = Format{}
	e.length = 0
	e.status = api.StatusStopped
	e.clock = 0
	e.ended = false
}

// Play starts or resumes playback. A track that already finished restarts
// from the beginning.
func (e *Engine) Play() {
	if e.worker == nil || e.status == api.StatusPlaying {
		return
	}
	if e.ended {
		e.SeekTo(0)
	}
	from := e.status
	e.status = api.StatusPlaying
	e.out.SetPaused(false)
	e.publish()
	if from == api.StatusStopped {
		e.bus.Publish(api.AudioEvent{Type: api.EventTrackStarted, Payload: e.track})
	}
	e.bus.Publish(api.AudioEvent{Type: api.EventStateChange, Payload: e.Snapshot()})
}

// Pause halts the device while keeping the position
func (e *Engine) Pause() {
	if e.status != api.StatusPlaying {
		return
	}
	e.status = api.StatusPaused
	e.out.SetPaused(true)
	e.publish()
	e.bus.Publish(api.AudioEvent{Type: api.EventStateChange, Payload: e.Snapshot()})
}

// TogglePause switches between Playing and Paused, starting a Stopped track
func (e *Engine) TogglePause() {
	if e.status == api.StatusPlaying {
		e.Pause()
		return
	}
	e.Play()
}

// Stop halts playback and rewinds to the start of the track
func (e *Engine) Stop() {
	if e.worker == nil {
		return
	}
	e.status = api.StatusStopped
	e.out.SetPaused(true)
	e.SeekTo(0)
	e.publish()
	e.bus.Publish(api.AudioEvent{Type: api.EventStateChange, Payload: e.Snapshot()})
}

// SeekTo asks the decode worker to move playback to frame, clamped to the
// track bounds. The old position keeps playing until the worker has moved the
// cursor; Tick then discards the audio queued before the seek. A failed seek
// leaves playback where it was.
func (e *Engine) SeekTo(frame int) {
	if e.worker == nil {
		return
	}
	if frame < 0 {
		frame = 0
	}
	if e.length >= 0 && frame > e.length {
		frame = e.length
	}

	e.requested++
	e.worker.requestSeek(seekRequest{frame: frame, epoch: e.requested})
}

// Seeking reports whether a seek is still waiting for the decode worker
func (e *Engine) Seeking() bool {
	return e.acked < e.requested
}

// settle switches to the stream the worker decodes after its latest seek and
// reports whether the position moved
func (e *Engine) settle() bool {
	r := e.worker.applied.Load()
	if r == nil {
		return false
	}
	e.acked = max(e.acked, r.req)
	if r.epoch <= e.epoch {
		return false
	}

	e.epoch = r.epoch
	e.dropStale()
	e.out.Clear()
	e.tap.Reset()
	e.clock = r.frame
	e.ended = false
	return true
}

// SeekBy moves playback relative to the current position
func (e *Engine) SeekBy(delta time.Duration) {
	if e.worker == nil || e.format.SampleRate <= 0 {
		return
	}
	frames := int(delta * time.Duration(e.format.SampleRate) / time.Second)
	e.SeekTo(e.position() + frames)
}

// SetVolume sets the volume level (0.0 to 1.0)
func (e *Engine) SetVolume(level float64) error {
	if level < 0 || level > 1 {
		return playerrors.ErrInvalidVolume
	}
	e.volume = level
	e.out.SetVolume(level)
	e.publish()
	return nil
}

// Tick feeds the output from the ring buffer and reports when the loaded
// track has been opened or has played to the end.
func (e *Engine) Tick() (api.Signal, error) {
	if e.worker == nil {
		return api.SignalNone, nil
	}
	defer e.publish()

	if !e.opened {
		return e.checkOpen()
	}
	e.settle()
	e.dropStale()
	if e.status != api.StatusPlaying {
		return api.SignalNone, nil
	}

	for e.out.Ready() {
		b := e.ring.Peek()
		if b == nil {
			break
		}
		if b.epoch > e.epoch {
			// the worker answered the seek before pushing this block
			if !e.settle() {
				break
			}
			continue
		}
		e.ring.Pop()
		e.worker.wake()
		if b.epoch < e.epoch {
			continue
		}
		if err := e.out.Write(b); err != nil {
			e.status = api.StatusStopped
			e.out.SetPaused(true)
			err = playerrors.NewPlayerError("write", e.track.FilePath, playerrors.Wrap(playerrors.ErrDevice, err))
			e.bus.Publish(api.AudioEvent{Type: api.EventError, Payload: err})
			return api.SignalNone, err
		}
		e.clock = b.Pos + b.Frames()
		e.tap.Write(b.Samples)
	}

	if !e.Seeking() && e.worker.ended(e.epoch) && e.ring.Len() == 0 && e.out.Buffered() == 0 {
		e.status = api.StatusStopped
		e.ended = true
		e.out.SetPaused(true)
		e.bus.Publish(api.AudioEvent{Type: api.EventTrackEnded, Payload: e.track})
		return api.SignalTrackFinished, nil
	}
	return api.SignalNone, nil
}

// dropStale discards blocks decoded before the adopted seek
func (e *Engine) dropStale() {
	for {
		b := e.ring.Peek()
		if b == nil || b.epoch >= e.epoch {
			return
		}
		e.ring.Pop()
		e.worker.wake()
	}
}

// Snapshot returns the state as of the last engine operation
func (e *Engine) Snapshot() api.PlaybackState {
	return *e.state.Load()
}

// Samples returns up to n of the most recently played mono samples
func (e *Engine) Samples(n int) []float64 {
	return e.tap.Samples(n, e.out.Buffered())
}

// Close stops playback and releases the output device
func (e *Engine) Close() error {
	e.unload()
	e.cancel()
	e.publish()
	return e.out.Close()
}

func (e *Engine) position() int {
	p := e.clock - e.out.Buffered()
	if p < 0 {
		return 0
	}
	return p
}

func (e *Engine) publish() {
	e.state.Store(&api.PlaybackState{
		Status:       e.status,
		CurrentTrack: e.track,
		Position:     e.position(),
		Duration:     e.length,
		SampleRate:   e.format.SampleRate,
		Volume:       e.volume,
	})
}
