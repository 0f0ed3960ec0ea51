package library

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/jscyril/juke/api"
	"github.com/jscyril/juke/internal/audio"
	playerrors "github.com/jscyril/juke/pkg/errors"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Scanner finds audio files and reads their metadata using a worker pool
type Scanner struct {
	workers    int
	metaReader *MetadataReader
	log        *slog.Logger
}

// NewScanner creates a new file scanner
func NewScanner(workers int, metaReader *MetadataReader, log *slog.Logger) *Scanner {
	if workers <= 0 {
		workers = 4 // Default worker count
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scanner{
		workers:    workers,
		metaReader: metaReader,
		log:        log,
	}
}

// Scan walks root recursively and returns a track for every supported file,
// sorted by path. Entries that cannot be read are logged and skipped.
func (s *Scanner) Scan(ctx context.Context, root string) ([]*api.Track, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			s.log.Warn("skipping unreadable entry", "error", &playerrors.ScanError{Path: p, Err: err})
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() && audio.IsSupported(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, &playerrors.ScanError{Path: root, Err: err}
	}

	slices.Sort(files)
	return s.ReadAll(ctx, files)
}

// ReadAll reads metadata for paths concurrently, keeping their order.
// Files that cannot be read are logged and left out.
func (s *Scanner) ReadAll(ctx context.Context, paths []string) ([]*api.Track, error) {
	tracks := make([]*api.Track, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			track, err := s.metaReader.Read(p)
			if err != nil {
				s.log.Warn("skipping file", "error", &playerrors.ScanError{Path: p, Err: err})
				return nil
			}
			tracks[i] = track
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lo.Compact(tracks), nil
}
