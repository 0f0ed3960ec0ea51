package api

import (
	"path/filepath"
	"strings"
	"time"
)

// Track is an immutable entry of the play queue
type Track struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Artist   string        `json:"artist"`
	Album    string        `json:"album"`
	Duration time.Duration `json:"duration"` // zero when unknown
	FilePath string        `json:"file_path"`
}

// DisplayTitle returns the tag title, or the file name without extension
func (t *Track) DisplayTitle() string {
	if t.Title != "" {
		return t.Title
	}
	base := filepath.Base(t.FilePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// RepeatMode controls queue behavior at end-of-track and end-of-queue
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatAll
	RepeatOne
)

func (r RepeatMode) String() string {
	switch r {
	case RepeatAll:
		return "All"
	case RepeatOne:
		return "One"
	default:
		return "Off"
	}
}

// Next returns the mode that follows r in the Off -> All -> One cycle
func (r RepeatMode) Next() RepeatMode {
	return (r + 1) % 3
}
