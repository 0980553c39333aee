package cli

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Result rendering styles. Applied only when stdout is a terminal.
var (
	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	styleMeta   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
	styleScore  = lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4"))
	styleNotice = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF"))
)

// stdoutIsTerminal reports whether styled output makes sense.
func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// styled applies a style only when writing to a terminal, so piped output
// stays plain.
func styled(style lipgloss.Style, s string) string {
	if !stdoutIsTerminal() {
		return s
	}
	return style.Render(s)
}
