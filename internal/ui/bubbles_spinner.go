package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

// SpinnerFrames defines the shared animation frames (◐ ◓ ◑ ◒) for Bubble
// Tea programs, keeping TUI spinners visually consistent with the CLI ones.
var SpinnerFrames = spinner.Spinner{
	Frames: []string{"◐", "◓", "◑", "◒"},
	FPS:    time.Second / 10, // 100ms per frame
}

// NewTUISpinner returns a spinner model configured with the shared frames,
// ready to embed in a dashboard model.
func NewTUISpinner(color lipgloss.Color) spinner.Model {
	sp := spinner.New()
	sp.Spinner = SpinnerFrames
	sp.Style = lipgloss.NewStyle().Foreground(color)
	return sp
}
