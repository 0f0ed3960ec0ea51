package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jscyril/juke/api"
	"github.com/jscyril/juke/internal/ui/components"
)

// NowPlayingView displays the current track, progress and spectrum
type NowPlayingView struct {
	Width       int
	Height      int
	State       api.PlaybackState
	Repeat      api.RepeatMode
	Shuffle     bool
	Bands       []float64
	Hint        string
	ProgressBar components.ProgressBar
	Spectrum    components.Spectrum

	// Styles
	TitleStyle    lipgloss.Style
	ArtistStyle   lipgloss.Style
	AlbumStyle    lipgloss.Style
	StatusStyle   lipgloss.Style
	ControlsStyle lipgloss.Style
	BorderStyle   lipgloss.Style
}

// NewNowPlayingView creates a new now playing view
func NewNowPlayingView(width, height int) NowPlayingView {
	return NowPlayingView{
		Width:       width,
		Height:      height,
		ProgressBar: components.NewProgressBar(width - 8),
		Spectrum:    components.NewSpectrum(6),
		TitleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),
		ArtistStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")),
		AlbumStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true),
		StatusStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true),
		ControlsStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
		BorderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2),
	}
}

// SetSize updates the view dimensions
func (v *NowPlayingView) SetSize(width, height int) {
	v.Width = width
	v.Height = height
	v.ProgressBar.Width = width - 8
	// title, artist, album, progress, volume, modes and hint take the rest
	v.Spectrum.Height = min(max(height-16, 0), 8)
}

// SetState updates the playback state
func (v *NowPlayingView) SetState(state api.PlaybackState, repeat api.RepeatMode, shuffle bool) {
	v.State = state
	v.Repeat = repeat
	v.Shuffle = shuffle
	v.ProgressBar.SetProgress(state.Elapsed(), state.Total(), state.DurationKnown())
}

// View renders the now playing view
func (v NowPlayingView) View() string {
	var sb strings.Builder

	if v.State.CurrentTrack == nil {
		sb.WriteString(v.TitleStyle.Render("♪ No track loaded"))
		sb.WriteString("\n\n")
		sb.WriteString(v.ControlsStyle.Render("Open the track list to pick a track"))
	} else {
		track := v.State.CurrentTrack

		// Status icon
		var statusIcon string
		switch v.State.Status {
		case api.StatusPlaying:
			statusIcon = "▶"
		case api.StatusPaused:
			statusIcon = "⏸"
		default:
			statusIcon = "⏹"
		}

		// Track info
		sb.WriteString(v.StatusStyle.Render(statusIcon + " "))
		sb.WriteString(v.TitleStyle.Render(track.DisplayTitle()))
		sb.WriteString("\n")
		sb.WriteString(v.ArtistStyle.Render(track.Artist))
		sb.WriteString("\n")
		sb.WriteString(v.AlbumStyle.Render(track.Album))
		sb.WriteString("\n\n")

		if s := v.Spectrum.View(v.Bands); s != "" {
			sb.WriteString(s)
			sb.WriteString("\n\n")
		}

		// Progress bar
		sb.WriteString(v.ProgressBar.View())
		sb.WriteString("\n\n")

		// Volume
		volumeBar := renderVolumeBar(v.State.Volume)
		sb.WriteString(fmt.Sprintf("Volume: %s %d%%", volumeBar, int(v.State.Volume*100+0.5)))
		sb.WriteString("\n")
	}

	// Repeat/Shuffle status
	modes := []string{"Repeat: " + v.Repeat.String()}
	if v.Shuffle {
		modes = append(modes, "Shuffle: On")
	} else {
		modes = append(modes, "Shuffle: Off")
	}
	sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render(strings.Join(modes, " | ")))

	if v.Hint != "" {
		sb.WriteString("\n\n")
		sb.WriteString(v.ControlsStyle.Render(v.Hint))
	}

	return v.BorderStyle.Width(max(v.Width-4, 20)).Render(sb.String())
}

// renderVolumeBar renders a volume bar
func renderVolumeBar(volume float64) string {
	filled := min(max(int(volume*10+0.5), 0), 10)
	empty := 10 - filled

	filledStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	return filledStyle.Render(strings.Repeat("●", filled)) + emptyStyle.Render(strings.Repeat("○", empty))
}
