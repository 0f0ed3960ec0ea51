package audio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
	playerrors "github.com/jscyril/juke/pkg/errors"
)

// Decoder opens decode sessions for audio files
type Decoder interface {
	Open(path string) (Session, error)
}

// Session is an open decoder positioned inside one file.
// NextBlock returns a nil block at the end of the stream. Len returns -1
// when the length is unknown.
type Session interface {
	Format() Format
	Len() int
	NextBlock() (*Block, error)
	Seek(frame int) error
	Close() error
}

// SupportedFormats returns list of supported audio formats
func SupportedFormats() []string {
	return []string{".mp3", ".flac", ".ogg", ".wav"}
}

// IsSupported checks if a file format is supported
func IsSupported(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

// DecodeAudio decodes an audio file based on its extension
func DecodeAudio(r io.ReadSeekCloser, filePath string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".mp3":
		return mp3.Decode(r)
	case ".wav":
		return wav.Decode(r)
	case ".flac":
		return flac.Decode(r)
	case ".ogg":
		return vorbis.Decode(r)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %s", playerrors.ErrInvalidFormat, ext)
	}
}

// FileDecoder decodes files from disk with beep. When SampleRate is set the
// decoded stream is resampled to it so every session matches the device.
type FileDecoder struct {
	SampleRate int
}

// NewFileDecoder creates a decoder producing frames at sampleRate
func NewFileDecoder(sampleRate int) *FileDecoder {
	return &FileDecoder{SampleRate: sampleRate}
}

// Open starts a decode session positioned at frame 0
func (d *FileDecoder) Open(path string) (Session, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, playerrors.NewPlayerError("open", path, playerrors.Wrap(playerrors.ErrDecodeOpen, err))
	}

	streamer, format, err := DecodeAudio(file, path)
	if err != nil {
		file.Close()
		return nil, playerrors.NewPlayerError("decode", path, playerrors.Wrap(playerrors.ErrDecodeOpen, err))
	}

	rate := format.SampleRate
	if d.SampleRate > 0 {
		rate = beep.SampleRate(d.SampleRate)
	}
	s := &fileSession{file: file, streamer: streamer, format: format, rate: rate}
	s.resetStream()
	return s, nil
}

// Probe returns the playing time of the file at path
func Probe(path string) (time.Duration, error) {
	session, err := (&FileDecoder{}).Open(path)
	if err != nil {
		return 0, err
	}
	defer session.Close()

	n := session.Len()
	if n < 0 {
		return 0, nil
	}
	return beep.SampleRate(session.Format().SampleRate).D(n), nil
}

// fileSession is a beep stream plus an optional resampler. Positions are
// reported in output frames.
type fileSession struct {
	file     *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
	rate     beep.SampleRate
	stream   beep.Streamer
	pos      int
}

func (s *fileSession) Format() Format {
	return Format{SampleRate: int(s.rate), Channels: s.format.NumChannels}
}

func (s *fileSession) Len() int {
	n := s.streamer.Len()
	if n <= 0 {
		return -1
	}
	return s.toOutput(n)
}

func (s *fileSession) NextBlock() (*Block, error) {
	samples := make([][2]float64, BlockFrames)
	n, ok := s.stream.Stream(samples)
	if !ok || n == 0 {
		if err := s.stream.Err(); err != nil {
			return nil, playerrors.Wrap(playerrors.ErrDecode, err)
		}
		return nil, nil
	}

	b := &Block{Samples: samples[:n], Channels: s.format.NumChannels, Pos: s.pos}
	s.pos += n
	return b, nil
}

func (s *fileSession) Seek(frame int) error {
	src := s.toSource(frame)
	if src < 0 {
		src = 0
	}
	if n := s.streamer.Len(); n > 0 && src > n {
		src = n
	}
	if err := s.streamer.Seek(src); err != nil {
		return playerrors.Wrap(playerrors.ErrSeek, err)
	}
	s.pos = s.toOutput(src)
	s.resetStream()
	return nil
}

func (s *fileSession) Close() error {
	err := s.streamer.Close()
	s.file.Close()
	return err
}

// resetStream rebuilds the resampler so no interpolation state survives a seek
func (s *fileSession) resetStream() {
	if s.format.SampleRate == s.rate {
		s.stream = s.streamer
		return
	}
	s.stream = beep.Resample(4, s.format.SampleRate, s.rate, s.streamer)
}

func (s *fileSession) toOutput(n int) int {
	if s.format.SampleRate == s.rate {
		return n
	}
	return int(int64(n) * int64(s.rate) / int64(s.format.SampleRate))
}

func (s *fileSession) toSource(n int) int {
	if s.format.SampleRate == s.rate {
		return n
	}
	return int(int64(n) * int64(s.format.SampleRate) / int64(s.rate))
}
