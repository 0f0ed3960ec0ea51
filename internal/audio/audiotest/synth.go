// Package audiotest provides in-memory decoders and outputs for exercising
// the playback engine without files or an audio device.
package audiotest

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jscyril/juke/internal/audio"
	playerrors "github.com/jscyril/juke/pkg/errors"
)

// SynthTrack describes a generated track. Every frame carries its own index
// as the sample value on both channels, so tests can tell where audio came
// from.
type SynthTrack struct {
	Frames        int
	UnknownLength bool
	OpenErr       error
	SeekErr       error
	// DecodeErrAt makes NextBlock fail once the cursor reaches this frame
	DecodeErrAt int
}

// SynthDecoder opens SynthTracks by path. When Gate is set every NextBlock
// call consumes one token from it, letting tests pace the decoder. Open
// waits on OpenGate the same way.
type SynthDecoder struct {
	Rate      int
	BlockSize int
	Gate      chan struct{}
	OpenGate  chan struct{}

	mu      sync.Mutex
	tracks  map[string]SynthTrack
	opened  []string
	live    int
	decoded atomic.Int64
}

// NewSynthDecoder creates a decoder producing frames at rate
func NewSynthDecoder(rate int) *SynthDecoder {
	return &SynthDecoder{Rate: rate, BlockSize: 64, tracks: make(map[string]SynthTrack)}
}

// Add registers a track under path
func (d *SynthDecoder) Add(path string, track SynthTrack) {
	d.mu.Lock()
	d.tracks[path] = track
	d.mu.Unlock()
}

// Open implements audio.Decoder
func (d *SynthDecoder) Open(path string) (audio.Session, error) {
	if d.OpenGate != nil {
		<-d.OpenGate
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.opened = append(d.opened, path)
	track, ok := d.tracks[path]
	if !ok {
		return nil, playerrors.NewPlayerError("open", path, playerrors.Wrap(playerrors.ErrDecodeOpen, fmt.Errorf("no such track")))
	}
	if track.OpenErr != nil {
		return nil, playerrors.NewPlayerError("open", path, playerrors.Wrap(playerrors.ErrDecodeOpen, track.OpenErr))
	}
	d.live++
	return &synthSession{decoder: d, track: track}, nil
}

// Opened returns every path passed to Open, in order
func (d *SynthDecoder) Opened() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.opened...)
}

// Decoded returns the number of blocks produced across all sessions
func (d *SynthDecoder) Decoded() int {
	return int(d.decoded.Load())
}

// Live returns the number of sessions opened and not yet closed
func (d *SynthDecoder) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.live
}

type synthSession struct {
	decoder *SynthDecoder
	track   SynthTrack
	pos     int
	closed  bool
}

func (s *synthSession) Format() audio.Format {
	return audio.Format{SampleRate: s.decoder.Rate, Channels: 2}
}

func (s *synthSession) Len() int {
	if s.track.UnknownLength {
		return -1
	}
	return s.track.Frames
}

func (s *synthSession) NextBlock() (*audio.Block, error) {
	if s.decoder.Gate != nil {
		<-s.decoder.Gate
	}
	if s.track.DecodeErrAt > 0 && s.pos >= s.track.DecodeErrAt {
		return nil, playerrors.Wrap(playerrors.ErrDecode, fmt.Errorf("corrupt frame at %d", s.pos))
	}
	if s.pos >= s.track.Frames {
		return nil, nil
	}

	n := min(s.decoder.BlockSize, s.track.Frames-s.pos)
	samples := make([][2]float64, n)
	for i := range samples {
		v := float64(s.pos + i)
		samples[i] = [2]float64{v, v}
	}
	b := &audio.Block{Samples: samples, Channels: 2, Pos: s.pos}
	s.pos += n
	s.decoder.decoded.Add(1)
	return b, nil
}

func (s *synthSession) Seek(frame int) error {
	if s.track.SeekErr != nil {
		return playerrors.Wrap(playerrors.ErrSeek, s.track.SeekErr)
	}
	s.pos = max(0, min(frame, s.track.Frames))
	return nil
}

func (s *synthSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.decoder.mu.Lock()
	s.decoder.live--
	s.decoder.mu.Unlock()
	return nil
}
