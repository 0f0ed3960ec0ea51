package playlist

import (
	"bytes"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jscyril/juke/api"
)

func TestParseM3U(t *testing.T) {
	input := `#EXTM3U
#EXTINF:215,Artist - First
first.mp3

# a comment
/abs/second.flac
#EXTINF:bogus
sub/third.ogg
#EXTINF:-1,Unknown Length
fourth.wav
`
	entries, err := ParseM3U(strings.NewReader(input), "/lists")
	if err != nil {
		t.Fatalf("ParseM3U: %v", err)
	}

	want := []Entry{
		{Path: "/lists/first.mp3", Title: "Artist - First", Duration: 215 * time.Second, HasInfo: true},
		{Path: "/abs/second.flac"},
		{Path: "/lists/sub/third.ogg"},
		{Path: "/lists/fourth.wav", Title: "Unknown Length", HasInfo: true},
	}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d: %+v", len(entries), len(want), entries)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, entries[i], want[i])
		}
	}
}

func TestWriteM3U(t *testing.T) {
	tracks := []*api.Track{
		{Title: "Song", Duration: 90 * time.Second, FilePath: "/music/song.mp3"},
		{FilePath: "/music/untitled.flac"},
	}

	var buf bytes.Buffer
	if err := WriteM3U(&buf, tracks); err != nil {
		t.Fatalf("WriteM3U: %v", err)
	}

	want := "#EXTM3U\n#EXTINF:90,Song\n/music/song.mp3\n#EXTINF:-1,untitled\n/music/untitled.flac\n"
	if buf.String() != want {
		t.Errorf("WriteM3U output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestSaveAndReadM3U(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "queue.m3u")
	tracks := []*api.Track{{Title: "Song", Duration: 90 * time.Second, FilePath: "/music/song.mp3"}}

	if err := SaveM3U(path, tracks); err != nil {
		t.Fatalf("SaveM3U: %v", err)
	}
	entries, err := ReadM3U(path)
	if err != nil {
		t.Fatalf("ReadM3U: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "/music/song.mp3" || entries[0].Title != "Song" {
		t.Errorf("ReadM3U = %+v", entries)
	}

	if _, err := ReadM3U(filepath.Join(t.TempDir(), "missing.m3u")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadM3U(missing) error = %v, want not-exist", err)
	}
}
