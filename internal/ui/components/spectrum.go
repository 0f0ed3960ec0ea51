package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var barRunes = []rune(" ▁▂▃▄▅▆▇█")

// Spectrum draws visualizer bands as vertical bars
type Spectrum struct {
	Height   int
	BarWidth int
	Style    lipgloss.Style
}

// NewSpectrum creates a spectrum height rows tall
func NewSpectrum(height int) Spectrum {
	return Spectrum{
		Height:   height,
		BarWidth: 2,
		Style:    lipgloss.NewStyle().Foreground(lipgloss.Color("86")),
	}
}

// View renders bands, each expected in [0,1]
func (s Spectrum) View(bands []float64) string {
	if len(bands) == 0 || s.Height <= 0 {
		return ""
	}

	levels := len(barRunes) - 1
	rows := make([]string, s.Height)
	for row := range s.Height {
		// rows are drawn top down, each covering one step of the bar
		floor := s.Height - row - 1
		var sb strings.Builder
		for i, v := range bands {
			v = min(max(v, 0), 1)
			fill := v*float64(s.Height*levels) - float64(floor*levels)
			n := min(max(int(fill), 0), levels)
			sb.WriteString(strings.Repeat(string(barRunes[n]), s.BarWidth))
			if i < len(bands)-1 {
				sb.WriteByte(' ')
			}
		}
		rows[row] = sb.String()
	}
	return s.Style.Render(strings.Join(rows, "\n"))
}
