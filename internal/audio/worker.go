package audio

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/jscyril/juke/api"
	playerrors "github.com/jscyril/juke/pkg/errors"
	"github.com/jscyril/juke/pkg/events"
)

// openResult describes the session the worker opened, or why it could not
type openResult struct {
	format Format
	length int
	err    error
}

type seekRequest struct {
	frame int
	epoch uint64
}

// seekResult answers a seek request. epoch and frame describe the stream the
// worker decodes from now on; a failed seek leaves both unchanged.
type seekResult struct {
	req   uint64
	epoch uint64
	frame int
	err   error
}

// decodeWorker owns one decoder session from open to close and is the only
// goroutine touching its cursor. It fills the ring with blocks tagged by the
// current seek epoch.
type decodeWorker struct {
	decoder Decoder
	session Session
	ring    *RingBuffer
	path    string
	log     *slog.Logger
	bus     *events.EventBus

	seeks  chan seekRequest
	space  chan struct{}
	cancel context.CancelFunc
	done   chan struct{}

	opened atomic.Pointer[openResult]
	// epoch+1 once the stream end has been reached in that epoch
	end atomic.Uint64
	// stored before any block of a new epoch is pushed
	applied atomic.Pointer[seekResult]
}

func startDecodeWorker(ctx context.Context, decoder Decoder, ring *RingBuffer, path string, epoch uint64, log *slog.Logger, bus *events.EventBus) *decodeWorker {
	ctx, cancel := context.WithCancel(ctx)
	w := &decodeWorker{
		decoder: decoder,
		ring:    ring,
		path:    path,
		log:     log,
		bus:     bus,
		seeks:   make(chan seekRequest, 1),
		space:   make(chan struct{}, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go w.run(ctx, epoch)
	return w
}

func (w *decodeWorker) run(ctx context.Context, first uint64) {
	defer close(w.done)

	session, err := w.decoder.Open(w.path)
	if err != nil {
		if !errors.Is(err, playerrors.ErrDecodeOpen) {
			err = playerrors.NewPlayerError("open", w.path, playerrors.Wrap(playerrors.ErrDecodeOpen, err))
		}
		w.opened.Store(&openResult{err: err})
		return
	}
	defer func() {
		if err := session.Close(); err != nil {
			w.log.Warn("closing decoder", "path", w.path, "error", err)
		}
	}()
	w.session = session
	w.opened.Store(&openResult{format: session.Format(), length: session.Len()})

	var pending *Block
	cur := seekResult{epoch: first}
	for {
		epoch := cur.epoch
		if w.end.Load() == epoch+1 {
			select {
			case <-ctx.Done():
				return
			case req := <-w.seeks:
				cur = w.seek(req, cur)
			}
			continue
		}

		select {
		case <-ctx.Done():
			return
		case req := <-w.seeks:
			if cur = w.seek(req, cur); cur.epoch != epoch {
				pending = nil
			}
			continue
		default:
		}

		if pending == nil {
			b, err := w.session.NextBlock()
			if err != nil {
				w.log.Warn("decode failed, ending track early", "path", w.path, "error", err)
				w.bus.Publish(api.AudioEvent{Type: api.EventError, Payload: playerrors.NewPlayerError("decode", w.path, err)})
				w.end.Store(epoch + 1)
				continue
			}
			if b == nil {
				w.end.Store(epoch + 1)
				continue
			}
			b.epoch = epoch
			pending = b
		}

		if w.ring.Push(pending) {
			pending = nil
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-w.space:
		case req := <-w.seeks:
			if cur = w.seek(req, cur); cur.epoch != epoch {
				pending = nil
			}
		}
	}
}

// seek moves the cursor for req and publishes the outcome. On failure the
// worker keeps decoding the current stream from where it was.
func (w *decodeWorker) seek(req seekRequest, cur seekResult) seekResult {
	res := seekResult{req: req.epoch, epoch: cur.epoch, frame: cur.frame}
	if err := w.session.Seek(req.frame); err != nil {
		w.log.Warn("seek failed", "path", w.path, "frame", req.frame, "error", err)
		w.bus.Publish(api.AudioEvent{Type: api.EventError, Payload: playerrors.NewPlayerError("seek", w.path, err)})
		res.err = err
	} else {
		res.epoch, res.frame = req.epoch, req.frame
	}
	w.applied.Store(&res)
	return res
}

// requestSeek replaces any seek the worker has not picked up yet
func (w *decodeWorker) requestSeek(req seekRequest) {
	for {
		select {
		case w.seeks <- req:
			return
		default:
		}
		select {
		case <-w.seeks:
		default:
		}
	}
}

// wake tells a worker waiting on a full ring that a slot was freed
func (w *decodeWorker) wake() {
	select {
	case w.space <- struct{}{}:
	default:
	}
}

func (w *decodeWorker) ended(epoch uint64) bool {
	return w.end.Load() == epoch+1
}

func (w *decodeWorker) stop() {
	w.cancel()
	<-w.done
}
