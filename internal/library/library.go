package library

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jscyril/juke/api"
	"github.com/jscyril/juke/internal/audio"
	"github.com/jscyril/juke/internal/playlist"
	playerrors "github.com/jscyril/juke/pkg/errors"
	"github.com/samber/lo"
)

// Library builds the list of playable tracks from a directory, an M3U
// playlist or a single file
type Library struct {
	scanner *Scanner
	log     *slog.Logger
}

// NewLibrary creates a library reader
func NewLibrary(scanner *Scanner, log *slog.Logger) *Library {
	if log == nil {
		log = slog.Default()
	}
	return &Library{scanner: scanner, log: log}
}

// Load returns the tracks found at path. It fails with ErrNoPlayableTracks
// when nothing playable is found.
func (l *Library) Load(ctx context.Context, path string) ([]*api.Track, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open library: %w", err)
	}

	var tracks []*api.Track
	switch {
	case info.IsDir():
		tracks, err = l.scanner.Scan(ctx, path)
	case isPlaylist(path):
		tracks, err = l.loadPlaylist(ctx, path)
	case audio.IsSupported(path):
		tracks, err = l.scanner.ReadAll(ctx, []string{path})
	default:
		return nil, fmt.Errorf("%w: %s", playerrors.ErrInvalidFormat, path)
	}
	if err != nil {
		return nil, err
	}

	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w in %s", playerrors.ErrNoPlayableTracks, path)
	}
	l.log.Info("library loaded", "path", path, "tracks", len(tracks))
	return tracks, nil
}

func (l *Library) loadPlaylist(ctx context.Context, path string) ([]*api.Track, error) {
	entries, err := playlist.ReadM3U(path)
	if err != nil {
		return nil, err
	}

	supported := lo.Filter(entries, func(e playlist.Entry, _ int) bool {
		if !audio.IsSupported(e.Path) {
			l.log.Warn("skipping unsupported playlist entry", "playlist", path, "entry", e.Path)
			return false
		}
		return true
	})
	paths := lo.Map(supported, func(e playlist.Entry, _ int) string { return e.Path })

	tracks, err := l.scanner.ReadAll(ctx, paths)
	if err != nil {
		return nil, err
	}

	// #EXTINF lines override tags
	info := lo.SliceToMap(supported, func(e playlist.Entry) (string, playlist.Entry) { return e.Path, e })
	for i, t := range tracks {
		e := info[t.FilePath]
		if !e.HasInfo {
			continue
		}
		track := *t
		if e.Title != "" {
			track.Title = e.Title
		}
		if e.Duration > 0 {
			track.Duration = e.Duration
		}
		tracks[i] = &track
	}
	return tracks, nil
}

func isPlaylist(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".m3u" || ext == ".m3u8"
}

// Filter returns the indices of tracks whose display title contains query,
// ignoring case. An empty query matches every track.
func Filter(tracks []*api.Track, query string) []int {
	query = strings.ToLower(query)
	indices := make([]int, 0, len(tracks))
	for i, t := range tracks {
		if strings.Contains(strings.ToLower(t.DisplayTitle()), query) {
			indices = append(indices, i)
		}
	}
	return indices
}
