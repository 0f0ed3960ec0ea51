package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// SearchInput renders the track list query. Editing is driven by the key
// map, so the input only holds and draws the text.
type SearchInput struct {
	Value       string
	Placeholder string
	Width       int
	Style       lipgloss.Style
	Prompt      string
}

// NewSearchInput creates a new search input
func NewSearchInput(width int) SearchInput {
	return SearchInput{
		Placeholder: "type to filter",
		Width:       width,
		Prompt:      "/ ",
		Style: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("212")).
			Padding(0, 1),
	}
}

// Append adds r to the end of the query
func (s *SearchInput) Append(r rune) {
	s.Value += string(r)
}

// Backspace removes the last character of the query
func (s *SearchInput) Backspace() {
	runes := []rune(s.Value)
	if len(runes) > 0 {
		s.Value = string(runes[:len(runes)-1])
	}
}

// View renders the search input
func (s SearchInput) View() string {
	var content string
	if s.Value == "" {
		content = s.Prompt + lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render(s.Placeholder)
	} else {
		cursor := lipgloss.NewStyle().Background(lipgloss.Color("212")).Render(" ")
		value := s.Value
		// keep the end of a long query visible
		if over := runewidth.StringWidth(value) - max(1, s.Width-8); over > 0 {
			value = runewidth.TruncateLeft(value, over+1, "…")
		}
		content = s.Prompt + value + cursor
	}

	return s.Style.Width(max(10, s.Width)).Render(content)
}
