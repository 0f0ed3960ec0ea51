package views

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// HelpEntry is one line of the key reference
type HelpEntry struct {
	Keys        string
	Description string
}

// HelpView shows the key bindings in effect
type HelpView struct {
	Width       int
	Entries     []HelpEntry
	KeyStyle    lipgloss.Style
	TitleStyle  lipgloss.Style
	BorderStyle lipgloss.Style
}

// NewHelpView creates a help view listing entries
func NewHelpView(width int, entries []HelpEntry) HelpView {
	return HelpView{
		Width:   width,
		Entries: entries,
		KeyStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true),
		TitleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),
		BorderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2),
	}
}

// View renders the help view
func (v HelpView) View() string {
	var sb strings.Builder
	sb.WriteString(v.TitleStyle.Render("Keys"))
	sb.WriteString("\n\n")

	col := 0
	for _, e := range v.Entries {
		col = max(col, runewidth.StringWidth(e.Keys))
	}
	for i, e := range v.Entries {
		sb.WriteString(v.KeyStyle.Render(runewidth.FillRight(e.Keys, col)))
		sb.WriteString("  ")
		sb.WriteString(e.Description)
		if i < len(v.Entries)-1 {
			sb.WriteString("\n")
		}
	}
	return v.BorderStyle.Width(max(v.Width-4, 20)).Render(sb.String())
}
