package ui

import "github.com/charmbracelet/lipgloss"

// Color palette using ANSI color codes for terminal compatibility. CLI
// output (init, record, one-shot verbs) sticks to these so it degrades
// gracefully on basic terminals; the dashboard has its own richer palette.

// Semantic colors for status indication
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

// GradientColors is the cycle used by animated spinners.
var GradientColors = []lipgloss.Color{
	lipgloss.Color("6"), // Cyan
	lipgloss.Color("4"), // Blue
	lipgloss.Color("5"), // Magenta
	lipgloss.Color("6"), // Cyan
}
