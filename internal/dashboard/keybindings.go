package dashboard

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kovar/sps5000x/internal/poller"
)

// Key bindings as constants for consistency.
const (
	KeyQuit        = "q"
	KeyQuitAlt     = "ctrl+c"
	KeyPause       = "p"
	KeyForceCycle  = "r"
	KeyResetStats  = "s"
	KeyClearGraphs = "c"
	KeyExportCSV   = "e"
	KeySpanGrow    = "+"
	KeySpanGrowAlt = "="
	KeySpanShrink  = "-"
	KeyConsole     = ":"
	KeyToggleHelp  = "?"
	KeySubmit      = "enter"
	KeyCancel      = "esc"
)

// HandleKeyMsg processes keyboard input and returns updated model state
// and command. Returns true if the key was handled.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	// Ctrl+C always quits, even with the console focused.
	if key == KeyQuitAlt {
		m.quitting = true
		return true, tea.Quit
	}

	// With the console focused, keys type into the input line.
	if m.consoleFocused {
		return m.handleConsoleKey(msg)
	}

	// Help toggle takes priority
	if key == KeyToggleHelp {
		m.showHelp = !m.showHelp
		return true, nil
	}
	if m.showHelp && key == KeyCancel {
		m.showHelp = false
		return true, nil
	}

	switch key {
	case KeyQuit:
		m.quitting = true
		return true, tea.Quit

	case KeyPause:
		return true, m.togglePause()

	case KeyForceCycle:
		return true, m.forceCycleCmd()

	case KeyResetStats:
		m.board.Reset()
		return true, m.setFlash("statistics reset", false)

	case KeyClearGraphs:
		m.window.Clear()
		return true, m.setFlash("history cleared", false)

	case KeyExportCSV:
		return true, m.exportCmd()

	case KeySpanGrow, KeySpanGrowAlt:
		return true, m.adjustSpan(2)

	case KeySpanShrink:
		return true, m.adjustSpan(0.5)

	case KeyConsole:
		return true, m.focusConsole()
	}

	return false, nil
}

// togglePause suspends or resumes the polling loop.
func (m *Model) togglePause() tea.Cmd {
	if m.paused {
		m.poller.Start()
		m.paused = false
		return m.setFlash("polling resumed", false)
	}
	m.poller.Stop()
	m.paused = true
	return m.setFlash("polling paused", false)
}

// forceCycleCmd triggers an immediate poll cycle off the tick schedule.
// The reading or error arrives through the usual bridge callbacks; only
// the in-flight rejection needs reporting here.
func (m *Model) forceCycleCmd() tea.Cmd {
	p := m.poller
	return func() tea.Msg {
		if _, err := p.Cycle(context.Background()); errors.Is(err, poller.ErrCycleInFlight) {
			return flashMsg{text: "cycle already in flight", isErr: true}
		}
		return nil
	}
}

// adjustSpan grows or shrinks the history window span by the factor,
// clamped to [10s, 1h].
func (m *Model) adjustSpan(factor float64) tea.Cmd {
	span := time.Duration(float64(m.window.Span()) * factor)
	if span < minSpan {
		span = minSpan
	}
	if span > maxSpan {
		span = maxSpan
	}
	m.window.SetSpan(span)
	return m.setFlash("window span "+span.String(), false)
}
