package dashboard

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kovar/sps5000x/internal/psu"
	"github.com/kovar/sps5000x/internal/scpi"
)

// Bridge forwards events from the polling and session goroutines to the
// Bubble Tea program via program.Send(). Send is goroutine-safe, and a
// no-op once the program has quit, so callbacks can stay registered for
// the session's whole lifetime.
type Bridge struct {
	program *tea.Program
}

// NewBridge creates a bridge bound to the given program.
func NewBridge(program *tea.Program) *Bridge {
	return &Bridge{program: program}
}

// OnReading forwards a completed cycle's snapshot to the TUI. It has the
// poller's reading-listener signature.
func (b *Bridge) OnReading(r psu.Reading) {
	b.program.Send(ReadingMsg{Reading: r})
}

// OnCycleError forwards a discarded cycle's error to the TUI.
func (b *Bridge) OnCycleError(err error) {
	b.program.Send(CycleErrorMsg{Err: err})
}

// OnSessionEvent forwards a connection state transition to the TUI.
func (b *Bridge) OnSessionEvent(ev scpi.Event) {
	b.program.Send(ConnMsg{Event: ev})
}
