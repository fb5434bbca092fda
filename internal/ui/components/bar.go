package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/counsel/internal/ui/theme"
)

// Bar is a horizontal bar showing Value relative to Max.
type Bar struct {
	Value float64
	Max   float64
	Width int
}

// Filled returns the number of filled cells.
func (b Bar) Filled() int {
	if b.Max <= 0 || b.Value <= 0 || b.Width <= 0 {
		return 0
	}
	n := int(float64(b.Width)*b.Value/b.Max + 0.5)
	return min(n, b.Width)
}

// View renders the bar.
func (b Bar) View() string {
	width := max(b.Width, 1)
	filled := b.Filled()

	filledStr := lipgloss.NewStyle().
		Foreground(theme.Info).
		Render(strings.Repeat("█", filled))

	emptyStr := lipgloss.NewStyle().
		Foreground(theme.Border).
		Render(strings.Repeat("░", width-filled))

	return filledStr + emptyStr
}
