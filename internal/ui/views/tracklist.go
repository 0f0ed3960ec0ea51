package views

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/jscyril/juke/api"
	"github.com/jscyril/juke/internal/library"
	"github.com/jscyril/juke/internal/ui/components"
)

// TrackListView lists the queue tracks in their original order, filtered by
// the search query
type TrackListView struct {
	Width       int
	Height      int
	TrackList   components.TrackList
	SearchBar   components.SearchInput
	AllTracks   []*api.Track
	matches     []int
	BorderStyle lipgloss.Style
}

// NewTrackListView creates a new track list view
func NewTrackListView(width, height int) TrackListView {
	trackList := components.NewTrackList(height-8, width-6)
	trackList.Title = "🎵 Tracks"

	return TrackListView{
		Width:     width,
		Height:    height,
		TrackList: trackList,
		SearchBar: components.NewSearchInput(width - 6),
		BorderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2),
	}
}

// SetSize updates the view dimensions
func (v *TrackListView) SetSize(width, height int) {
	v.Width = width
	v.Height = height
	v.TrackList.Width = width - 6
	v.TrackList.SetHeight(height - 8)
	v.SearchBar.Width = width - 6
}

// SetTracks sets the full track list and clears the query
func (v *TrackListView) SetTracks(tracks []*api.Track) {
	v.AllTracks = tracks
	v.SearchBar.Value = ""
	v.refilter()
}

// Reset clears the query and moves the selection to the top
func (v *TrackListView) Reset() {
	v.SearchBar.Value = ""
	v.refilter()
}

// Query returns the current search text
func (v TrackListView) Query() string {
	return v.SearchBar.Value
}

// AppendQuery adds r to the query and refilters
func (v *TrackListView) AppendQuery(r rune) {
	v.SearchBar.Append(r)
	v.refilter()
}

// Backspace removes the last query character and refilters
func (v *TrackListView) Backspace() {
	v.SearchBar.Backspace()
	v.refilter()
}

func (v *TrackListView) refilter() {
	v.matches = library.Filter(v.AllTracks, v.SearchBar.Value)
	items := make([]*api.Track, len(v.matches))
	for i, idx := range v.matches {
		items[i] = v.AllTracks[idx]
	}
	v.TrackList.SetItems(items)
}

// MoveUp moves the selection up
func (v *TrackListView) MoveUp() {
	v.TrackList.MoveUp()
}

// MoveDown moves the selection down
func (v *TrackListView) MoveDown() {
	v.TrackList.MoveDown()
}

// Matches returns the original indices of the tracks shown
func (v TrackListView) Matches() []int {
	return v.matches
}

// SelectedIndex returns the original index of the highlighted track, or -1
// when nothing matches the query
func (v TrackListView) SelectedIndex() int {
	if len(v.matches) == 0 {
		return -1
	}
	return v.matches[v.TrackList.Selected]
}

// View renders the track list view
func (v TrackListView) View() string {
	content := v.SearchBar.View() + "\n\n" + v.TrackList.View()
	return v.BorderStyle.Width(max(v.Width-4, 20)).Render(content)
}
