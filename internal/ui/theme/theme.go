// Package theme holds the colors and text styles used by CLI output.
package theme

import (
	"charm.land/lipgloss/v2"
)

// Palette
var (
	Primary = lipgloss.Color("#8B5CF6") // purple
	Success = lipgloss.Color("#22C55E") // green
	Warning = lipgloss.Color("#F59E0B") // amber
	Error   = lipgloss.Color("#F43F5E") // rose
	Info    = lipgloss.Color("#14B8A6") // teal
	Text    = lipgloss.Color("#F8FAFC")
	TextDim = lipgloss.Color("#94A3B8")
	Border  = lipgloss.Color("#334155")
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Label = lipgloss.NewStyle().
		Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Text)

	Rule = lipgloss.NewStyle().
		Foreground(Border)
)

// States
var (
	Positive = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	Negative = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	Failed = lipgloss.NewStyle().
		Foreground(Error)
)

// Card frames a block such as a counseling brief.
var Card = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Border).
	Padding(0, 1)

// Quadrant styles keyed by ranking quadrant name.
var quadrantStyles = map[string]lipgloss.Style{
	"quick-win":    lipgloss.NewStyle().Foreground(Success).Bold(true),
	"major-effort": lipgloss.NewStyle().Foreground(Warning),
	"low-priority": lipgloss.NewStyle().Foreground(Info),
	"not-worth-it": lipgloss.NewStyle().Foreground(TextDim),
}

// Quadrant returns the style for a quadrant name, or Body.
func Quadrant(name string) lipgloss.Style {
	if s, ok := quadrantStyles[name]; ok {
		return s
	}
	return Body
}

// Signed styles a gain by its sign.
func Signed(v float64) lipgloss.Style {
	switch {
	case v > 0:
		return Positive
	case v < 0:
		return Negative
	}
	return Body
}
