package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jscyril/juke/api"
	"github.com/mattn/go-runewidth"
)

// TrackList represents a scrollable list of tracks
type TrackList struct {
	Items         []*api.Track
	Selected      int
	Current       *api.Track // marked as now playing
	Height        int
	Width         int
	Offset        int
	Title         string
	ShowNumbers   bool
	SelectedStyle lipgloss.Style
	NormalStyle   lipgloss.Style
	CurrentStyle  lipgloss.Style
	TitleStyle    lipgloss.Style
}

// NewTrackList creates a new track list
func NewTrackList(height, width int) TrackList {
	return TrackList{
		Items:    make([]*api.Track, 0),
		Selected: 0,
		Height:   height,
		Width:    width,
		Offset:   0,
		SelectedStyle: lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230")).
			Bold(true).
			Padding(0, 1),
		NormalStyle: lipgloss.NewStyle().
			Padding(0, 1),
		CurrentStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Padding(0, 1),
		TitleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			MarginBottom(1),
		ShowNumbers: true,
	}
}

// SetItems sets the list items and resets the selection
func (l *TrackList) SetItems(items []*api.Track) {
	l.Items = items
	l.Selected = 0
	l.Offset = 0
}

// MoveUp moves selection up
func (l *TrackList) MoveUp() {
	if l.Selected > 0 {
		l.Selected--
		l.ensureVisible()
	}
}

// MoveDown moves selection down
func (l *TrackList) MoveDown() {
	if l.Selected < len(l.Items)-1 {
		l.Selected++
		l.ensureVisible()
	}
}

func (l *TrackList) visibleHeight() int {
	return max(1, l.Height-2) // Account for title and counter
}

// ensureVisible ensures the selected item is visible
func (l *TrackList) ensureVisible() {
	visible := l.visibleHeight()
	if l.Selected < l.Offset {
		l.Offset = l.Selected
	} else if l.Selected >= l.Offset+visible {
		l.Offset = l.Selected - visible + 1
	}
}

// SetHeight resizes the list keeping the selection visible
func (l *TrackList) SetHeight(height int) {
	l.Height = height
	l.ensureVisible()
}

// View renders the track list
func (l TrackList) View() string {
	var sb strings.Builder

	// Title
	if l.Title != "" {
		sb.WriteString(l.TitleStyle.Render(l.Title))
		sb.WriteString("\n")
	}

	if len(l.Items) == 0 {
		sb.WriteString(l.NormalStyle.Render("No matching tracks"))
		return sb.String()
	}

	visible := l.visibleHeight()
	end := min(l.Offset+visible, len(l.Items))

	for i := l.Offset; i < end; i++ {
		track := l.Items[i]

		label := track.DisplayTitle()
		if track.Artist != "" {
			label = track.Artist + " - " + label
		}
		line := label
		if l.ShowNumbers {
			line = fmt.Sprintf("%3d. %s", i+1, label)
		}
		line = runewidth.Truncate(line, max(4, l.Width-2), "…")

		switch {
		case i == l.Selected:
			sb.WriteString(l.SelectedStyle.Render(line))
		case track == l.Current:
			sb.WriteString(l.CurrentStyle.Render(line))
		default:
			sb.WriteString(l.NormalStyle.Render(line))
		}

		if i < end-1 {
			sb.WriteString("\n")
		}
	}

	// Scrollbar indicator
	if len(l.Items) > visible {
		sb.WriteString("\n")
		sb.WriteString(l.NormalStyle.Render(fmt.Sprintf("  [%d/%d]", l.Selected+1, len(l.Items))))
	}

	return sb.String()
}
