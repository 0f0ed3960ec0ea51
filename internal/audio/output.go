package audio

import (
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
	playerrors "github.com/jscyril/juke/pkg/errors"
)

// Output is the sink the engine writes decoded blocks to.
// Buffered reports frames accepted but not yet played.
type Output interface {
	Ready() bool
	Write(b *Block) error
	Buffered() int
	SetPaused(paused bool)
	SetVolume(level float64)
	Clear()
	Close() error
}

// SpeakerOutput feeds blocks to the system audio device through beep's
// speaker. The speaker goroutine pulls from a bounded block queue and plays
// silence when it runs dry.
type SpeakerOutput struct {
	blocks   chan *Block
	buffered atomic.Int64
	ctrl     *beep.Ctrl
	volume   *effects.Volume

	// owned by the speaker callback
	cur *Block
	off int
}

// NewSpeakerOutput opens the audio device at sampleRate with room for depth
// queued blocks
func NewSpeakerOutput(sampleRate, depth int) (*SpeakerOutput, error) {
	if depth < 1 {
		depth = 1
	}
	rate := beep.SampleRate(sampleRate)
	if err := speaker.Init(rate, rate.N(time.Second/20)); err != nil {
		return nil, playerrors.NewPlayerError("speaker_init", "", playerrors.Wrap(playerrors.ErrDevice, err))
	}

	o := &SpeakerOutput{blocks: make(chan *Block, depth)}
	o.ctrl = &beep.Ctrl{Streamer: beep.StreamerFunc(o.stream), Paused: true}
	o.volume = &effects.Volume{
		Streamer: o.ctrl,
		Base:     2,
		Volume:   0,
		Silent:   false,
	}
	speaker.Play(o.volume)
	return o, nil
}

// stream runs on the speaker goroutine with the speaker lock held
func (o *SpeakerOutput) stream(samples [][2]float64) (int, bool) {
	filled := 0
	for filled < len(samples) {
		if o.cur == nil {
			select {
			case b := <-o.blocks:
				o.cur, o.off = b, 0
			default:
			}
		}
		if o.cur == nil {
			break
		}
		n := copy(samples[filled:], o.cur.Samples[o.off:])
		filled += n
		o.off += n
		if o.off >= len(o.cur.Samples) {
			o.cur = nil
		}
	}
	o.buffered.Add(-int64(filled))
	clear(samples[filled:])
	return len(samples), true
}

// Ready reports whether a block can be written without blocking
func (o *SpeakerOutput) Ready() bool {
	return len(o.blocks) < cap(o.blocks)
}

// Write queues a block, returning ErrOutputBusy when the queue is full
func (o *SpeakerOutput) Write(b *Block) error {
	o.buffered.Add(int64(len(b.Samples)))
	select {
	case o.blocks <- b:
		return nil
	default:
		o.buffered.Add(-int64(len(b.Samples)))
		return playerrors.ErrOutputBusy
	}
}

// Buffered returns the number of queued frames not yet played
func (o *SpeakerOutput) Buffered() int {
	n := o.buffered.Load()
	if n < 0 {
		return 0
	}
	return int(n)
}

// SetPaused pauses or resumes the device stream
func (o *SpeakerOutput) SetPaused(paused bool) {
	speaker.Lock()
	o.ctrl.Paused = paused
	speaker.Unlock()
}

// SetVolume sets the volume level (0.0 to 1.0)
func (o *SpeakerOutput) SetVolume(level float64) {
	speaker.Lock()
	// Convert 0-1 range to decibel-like scale
	o.volume.Volume = level*2 - 1
	o.volume.Silent = level <= 0
	speaker.Unlock()
}

// Clear discards every queued frame
func (o *SpeakerOutput) Clear() {
	speaker.Lock()
	defer speaker.Unlock()

	for {
		select {
		case <-o.blocks:
		default:
			o.cur = nil
			o.off = 0
			o.buffered.Store(0)
			return
		}
	}
}

// Close stops the device
func (o *SpeakerOutput) Close() error {
	speaker.Clear()
	speaker.Close()
	return nil
}
