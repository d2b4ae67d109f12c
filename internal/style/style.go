// Package style maps the colour tokens used by targets and reports to
// terminal styles.
package style

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Tokens understood by Render.
const (
	Reset   = "reset"
	Bright  = "bright"
	Dim     = "dim"
	Red     = "red"
	Green   = "green"
	Yellow  = "yellow"
	Blue    = "blue"
	Magenta = "magenta"
	Cyan    = "cyan"
	White   = "white"
)

var styles = map[string]lipgloss.Style{
	Reset:   lipgloss.NewStyle(),
	Bright:  lipgloss.NewStyle().Bold(true),
	Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	Red:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	Green:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	Yellow:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	Blue:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	Magenta: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	Cyan:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	White:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
}

// Get returns the style for token; unknown tokens get the plain style.
func Get(token string) lipgloss.Style {
	if s, ok := styles[token]; ok {
		return s
	}
	return styles[Reset]
}

// Known reports whether token names a style.
func Known(token string) bool {
	_, ok := styles[token]
	return ok
}

// Render styles text with token when enabled is true and returns text
// unchanged otherwise.
func Render(token, text string, enabled bool) string {
	if !enabled || text == "" {
		return text
	}
	return Get(token).Render(text)
}

// Enabled decides whether f should receive colour: it must be a terminal,
// NO_COLOR must be unset, and the caller must not have disabled it.
func Enabled(f *os.File, disabled bool) bool {
	if disabled || os.Getenv("NO_COLOR") != "" || f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
