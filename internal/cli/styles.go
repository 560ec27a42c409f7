package cli

import "github.com/charmbracelet/lipgloss"

const (
	colorBlue   = "#58a6ff"
	colorGreen  = "#3fb950"
	colorYellow = "#d29922"
	colorGray   = "#8b949e"
)

// styles holds the labels used by the chat transcript.
type styles struct {
	Title     lipgloss.Style
	Help      lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	Notice    lipgloss.Style
}

func defaultStyles() *styles {
	return &styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorBlue)),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorGray)),
		User: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorGreen)),
		Assistant: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorBlue)),
		Notice: lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorYellow)),
	}
}
