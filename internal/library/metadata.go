package library

import (
	"crypto/md5"
	"fmt"
	"os"
	"time"

	"github.com/dhowden/tag"
	"github.com/jscyril/juke/api"
)

// MetadataReader extracts metadata from audio files
type MetadataReader struct {
	probe func(path string) (time.Duration, error)
}

// NewMetadataReader creates a metadata reader that measures track length
// with probe. A nil probe leaves durations unknown.
func NewMetadataReader(probe func(path string) (time.Duration, error)) *MetadataReader {
	return &MetadataReader{probe: probe}
}

// Read extracts metadata from an audio file and returns a Track.
// Files without readable tags get an empty title so the display falls back
// to the file name.
func (r *MetadataReader) Read(filePath string) (*api.Track, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	track := &api.Track{
		ID:       generateTrackID(filePath),
		FilePath: filePath,
	}

	if metadata, err := tag.ReadFrom(file); err == nil {
		track.Title = metadata.Title()
		track.Artist = metadata.Artist()
		track.Album = metadata.Album()
	}

	if r.probe != nil {
		if d, err := r.probe(filePath); err == nil {
			track.Duration = d
		}
	}
	return track, nil
}

// generateTrackID creates a unique ID for a track based on its file path
func generateTrackID(filePath string) string {
	hash := md5.Sum([]byte(filePath))
	return fmt.Sprintf("track-%x", hash[:8])
}
