package playlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jscyril/juke/api"
)

const extinfPrefix = "#EXTINF:"

// Entry is one path listed in an M3U playlist. Title and Duration come from
// a preceding #EXTINF line when HasInfo is set.
type Entry struct {
	Path     string
	Title    string
	Duration time.Duration
	HasInfo  bool
}

// ReadM3U parses the playlist file at path. Relative entries are resolved
// against the playlist's directory.
func ReadM3U(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open playlist: %w", err)
	}
	defer f.Close()

	return ParseM3U(f, filepath.Dir(path))
}

// ParseM3U reads M3U lines from r, resolving relative paths against dir
func ParseM3U(r io.Reader, dir string) ([]Entry, error) {
	var (
		entries []Entry
		info    *Entry
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, extinfPrefix):
			info = parseExtinf(strings.TrimPrefix(line, extinfPrefix))
		case strings.HasPrefix(line, "#"):
			continue
		default:
			e := Entry{Path: line}
			if !filepath.IsAbs(line) {
				e.Path = filepath.Join(dir, line)
			}
			if info != nil {
				e.Title, e.Duration, e.HasInfo = info.Title, info.Duration, true
				info = nil
			}
			entries = append(entries, e)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read playlist: %w", err)
	}
	return entries, nil
}

// parseExtinf parses "seconds,title". A negative length means unknown.
func parseExtinf(s string) *Entry {
	secs, title, ok := strings.Cut(s, ",")
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(secs))
	if err != nil {
		return nil
	}
	return &Entry{Title: strings.TrimSpace(title), Duration: time.Duration(max(n, 0)) * time.Second}
}

// WriteM3U writes tracks as an extended M3U playlist
func WriteM3U(w io.Writer, tracks []*api.Track) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "#EXTM3U")
	for _, t := range tracks {
		secs := -1
		if t.Duration > 0 {
			secs = int(t.Duration / time.Second)
		}
		fmt.Fprintf(bw, "%s%d,%s\n", extinfPrefix, secs, t.DisplayTitle())
		fmt.Fprintln(bw, t.FilePath)
	}
	return bw.Flush()
}

// SaveM3U writes tracks to the playlist file at path, creating its directory
func SaveM3U(path string, tracks []*api.Track) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create playlist directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create playlist file: %w", err)
	}
	if err := WriteM3U(f, tracks); err != nil {
		f.Close()
		return fmt.Errorf("write playlist file: %w", err)
	}
	return f.Close()
}
