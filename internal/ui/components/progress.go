package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// ProgressBar represents a progress bar component
type ProgressBar struct {
	Width       int
	Current     time.Duration
	Total       time.Duration
	Known       bool // false when the track length is unknown
	BarChar     string
	EmptyChar   string
	ShowTime    bool
	Style       lipgloss.Style
	FilledStyle lipgloss.Style
	EmptyStyle  lipgloss.Style
}

// NewProgressBar creates a new progress bar
func NewProgressBar(width int) ProgressBar {
	return ProgressBar{
		Width:       width,
		BarChar:     "█",
		EmptyChar:   "░",
		ShowTime:    true,
		Style:       lipgloss.NewStyle(),
		FilledStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		EmptyStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// SetProgress sets the current position and track length
func (p *ProgressBar) SetProgress(current, total time.Duration, known bool) {
	p.Current = current
	p.Total = total
	p.Known = known
}

// View renders the progress bar
func (p ProgressBar) View() string {
	var sb strings.Builder

	// Calculate progress percentage
	var percent float64
	if p.Known && p.Total > 0 {
		percent = float64(p.Current) / float64(p.Total)
	}
	percent = min(percent, 1)

	// Calculate bar segments
	barWidth := p.Width - 14 // Leave room for time display
	if barWidth < 10 {
		barWidth = 10
	}

	filled := int(float64(barWidth) * percent)
	empty := barWidth - filled

	sb.WriteString(p.FilledStyle.Render(strings.Repeat(p.BarChar, filled)))
	sb.WriteString(p.EmptyStyle.Render(strings.Repeat(p.EmptyChar, empty)))

	// Add time display
	if p.ShowTime {
		sb.WriteString(" ")
		sb.WriteString(FormatDuration(p.Current))
		sb.WriteString("/")
		if p.Known {
			sb.WriteString(FormatDuration(p.Total))
		} else {
			sb.WriteString("--:--")
		}
	}

	return p.Style.Render(sb.String())
}

// FormatDuration formats a duration as MM:SS
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d", m, s)
}
