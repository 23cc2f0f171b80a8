package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kovar/sps5000x/internal/psu"
)

// Dashboard color palette - phosphor bench-scope theme
const (
	// Background colors
	ColorDarkBg    = lipgloss.Color("#0B0E0C") // Near-black, green tint
	ColorSurfaceBg = lipgloss.Color("#121712") // Dark surface
	ColorBorder    = lipgloss.Color("#2E4034") // Muted green-gray border

	// Semantic state colors
	ColorHealthy  = lipgloss.Color("#33FF66") // Phosphor green
	ColorWarning  = lipgloss.Color("#FFB000") // Amber
	ColorCritical = lipgloss.Color("#FF3355") // Alarm red

	// Text colors
	ColorTextPrimary   = lipgloss.Color("#F2FFF5") // Near-white
	ColorTextSecondary = lipgloss.Color("#A8C4B0") // Sage gray
	ColorTextMuted     = lipgloss.Color("#5E7266") // Dim green-gray

	// Accent
	ColorAccent = lipgloss.Color("#00E5A0") // Spring green

	// Per-metric trace colors, oscilloscope style
	ColorVolt = lipgloss.Color("#00D7FF") // Cyan
	ColorAmp  = lipgloss.Color("#FFB000") // Amber
	ColorWatt = lipgloss.Color("#C879FF") // Violet
)

// Base styles for the dashboard
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1).
			MarginRight(1).
			MarginBottom(1)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	// Connection state styles
	StatusConnectedStyle    = lipgloss.NewStyle().Foreground(ColorHealthy)
	StatusConnectingStyle   = lipgloss.NewStyle().Foreground(ColorWarning)
	StatusDisconnectedStyle = lipgloss.NewStyle().Foreground(ColorCritical)

	// Flash message styles
	FlashInfoStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Padding(0, 1)

	FlashErrorStyle = lipgloss.NewStyle().
			Foreground(ColorCritical).
			Padding(0, 1)

	// Regulation mode badges
	BadgeCVStyle = lipgloss.NewStyle().
			Foreground(ColorHealthy).
			Bold(true)

	BadgeCCStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	BadgeUnknownStyle = lipgloss.NewStyle().
				Foreground(ColorTextMuted)

	PausedStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)
)

// Connection state indicator glyphs
const (
	StatusConnected    = "◉"
	StatusConnecting   = "◐" // Fallback when the spinner is not animating
	StatusDisconnected = "◌"
)

// MetricColor returns the trace color for a metric.
func MetricColor(m psu.Metric) lipgloss.Color {
	switch m {
	case psu.MetricVoltage:
		return ColorVolt
	case psu.MetricCurrent:
		return ColorAmp
	case psu.MetricPower:
		return ColorWatt
	default:
		return ColorTextSecondary
	}
}

// ModeBadge renders the regulation mode indicator for a channel.
// CV renders green, CC amber (the channel is current-limited), and an
// unrecognized token from newer firmware renders verbatim so it stays
// visible instead of vanishing.
func ModeBadge(mode psu.Mode) string {
	switch mode {
	case psu.ModeCV:
		return BadgeCVStyle.Render("● CV")
	case psu.ModeCC:
		return BadgeCCStyle.Render("● CC")
	case psu.ModeUnknown:
		return BadgeUnknownStyle.Render("○ --")
	default:
		return BadgeCCStyle.Render("● " + string(mode))
	}
}

// cardDividerStyle draws the thin rule between card sections.
var cardDividerStyle = lipgloss.NewStyle().Foreground(ColorBorder)

// renderCardDivider creates a subtle thin divider line.
func renderCardDivider(width int) string {
	return cardDividerStyle.Render(strings.Repeat("─", width))
}

// renderCardLine pads a content line to the card's inner width.
func renderCardLine(content string, width int) string {
	contentWidth := lipgloss.Width(content)
	if width > contentWidth {
		return content + strings.Repeat(" ", width-contentWidth)
	}
	return content
}
