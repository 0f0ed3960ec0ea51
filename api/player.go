package api

import "time"

// Status is the playback status of the engine
type Status int

const (
	StatusStopped Status = iota
	StatusPlaying
	StatusPaused
)

func (s Status) String() string {
	switch s {
	case StatusPlaying:
		return "Playing"
	case StatusPaused:
		return "Paused"
	default:
		return "Stopped"
	}
}

// PlaybackState is an immutable snapshot of the engine state.
// Position and Duration are counted in frames at SampleRate; Duration is -1
// when the decoder cannot tell the stream length.
type PlaybackState struct {
	Status       Status
	CurrentTrack *Track
	Position     int
	Duration     int
	SampleRate   int
	Volume       float64
}

// Elapsed returns the position as a duration
func (s PlaybackState) Elapsed() time.Duration {
	return framesToDuration(s.Position, s.SampleRate)
}

// Total returns the track length, or zero when unknown
func (s PlaybackState) Total() time.Duration {
	if s.Duration < 0 {
		return 0
	}
	return framesToDuration(s.Duration, s.SampleRate)
}

// DurationKnown reports whether the track length is known
func (s PlaybackState) DurationKnown() bool {
	return s.Duration >= 0
}

func framesToDuration(frames, rate int) time.Duration {
	if rate <= 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(rate)
}

// Signal is returned by the engine tick to report transitions to the caller
type Signal int

const (
	SignalNone Signal = iota
	SignalTrackFinished
	// the loaded track is open and its format is known
	SignalTrackOpened
	// the loaded track could not be opened and was unloaded
	SignalLoadFailed
)

// EventType identifies an engine event published on the event bus
type EventType int

const (
	EventTrackStarted EventType = iota
	EventTrackEnded
	EventStateChange
	EventError
	EventTrackSkipped
)

// AudioEvent is published by the engine and the UI controller
type AudioEvent struct {
	Type    EventType
	Payload interface{}
}

// Player defines the playback controls the interaction loop relies on
type Player interface {
	Load(track *Track) error
	Play()
	Pause()
	TogglePause()
	Stop()
	SeekTo(frame int)
	SeekBy(delta time.Duration)
	SetVolume(level float64) error
	Tick() (Signal, error)
	Snapshot() PlaybackState
	Samples(n int) []float64
	Close() error
}
