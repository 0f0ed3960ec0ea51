package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrTrackNotFound    = errors.New("track not found")
	ErrInvalidFormat    = errors.New("unsupported audio format")
	ErrDecodeOpen       = errors.New("cannot open audio stream")
	ErrDecode           = errors.New("audio decode failed")
	ErrSeek             = errors.New("seek failed")
	ErrDevice           = errors.New("audio device failure")
	ErrConfigParse      = errors.New("invalid configuration")
	ErrNoPlayableTracks = errors.New("no playable tracks found")
	ErrEmptyQueue       = errors.New("playback queue is empty")
	ErrInvalidVolume    = errors.New("volume must be between 0.0 and 1.0")
	ErrOutputBusy       = errors.New("output device is not ready")
)

// PlayerError wraps errors with additional context
type PlayerError struct {
	Op    string // Operation that failed
	Track string // Track path if applicable
	Err   error  // Underlying error
}

func (e *PlayerError) Error() string {
	if e.Track != "" {
		return fmt.Sprintf("%s failed for track %s: %v", e.Op, e.Track, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PlayerError) Unwrap() error {
	return e.Err
}

// NewPlayerError creates a new PlayerError
func NewPlayerError(op, track string, err error) *PlayerError {
	return &PlayerError{Op: op, Track: track, Err: err}
}

// Wrap tags err with a sentinel kind so callers can test it with errors.Is
func Wrap(kind, err error) error {
	if err == nil {
		return kind
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// ScanError represents an error during library scanning
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan error at %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// ConfigError reports a configuration entry that was replaced by its default
type ConfigError struct {
	Path  string
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config %s: field %q: %v", e.Path, e.Field, e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() []error {
	return []error{ErrConfigParse, e.Err}
}
