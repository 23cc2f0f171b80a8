package dashboard

import (
	"context"
	stderrors "errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/kovar/sps5000x/internal/errors"
	"github.com/kovar/sps5000x/internal/history"
	"github.com/kovar/sps5000x/internal/poller"
	"github.com/kovar/sps5000x/internal/scpi"
	"github.com/kovar/sps5000x/internal/stats"
)

// Minimum terminal size for a usable layout.
const (
	minTermWidth  = 80
	minTermHeight = 24
)

// Options wires the dashboard to the running session and poller.
type Options struct {
	Session  *scpi.Session
	Poller   *poller.Poller
	Board    *stats.Board
	Window   *history.Window
	Channels int
	Address  string

	// Events is the session's event stream from Start().
	Events <-chan scpi.Event
}

// Run starts the dashboard TUI and blocks until the user quits or the
// context is cancelled. The caller owns the session and poller lifecycle;
// Run only registers listeners on them.
func Run(ctx context.Context, opts Options) error {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return errors.New(errors.ErrConfig,
			"The monitor dashboard needs an interactive terminal",
			"Run spsmon from a terminal, or use 'spsmon record' for headless capture")
	}
	if w, h, err := term.GetSize(fd); err == nil && (w < minTermWidth || h < minTermHeight) {
		return errors.New(errors.ErrConfig,
			"Terminal is too small for the dashboard",
			"Resize to at least 80x24, or use 'spsmon record' for headless capture")
	}

	model := NewModel(opts.Session, opts.Poller, opts.Board, opts.Window, opts.Channels, opts.Address)

	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	bridge := NewBridge(program)
	opts.Poller.OnReading(bridge.OnReading)
	opts.Poller.OnCycleError(bridge.OnCycleError)

	// Forward session events until the session closes its stream. Send is
	// a no-op after the program exits, so this goroutine drains cleanly.
	if opts.Events != nil {
		go func() {
			for ev := range opts.Events {
				bridge.OnSessionEvent(ev)
			}
		}()
	}

	if _, err := program.Run(); err != nil && !isShutdown(err) {
		return errors.Wrap(err, "Dashboard terminated unexpectedly")
	}
	return nil
}

// isShutdown reports whether the program exited because its context was
// cancelled, which is a normal shutdown path rather than a failure.
func isShutdown(err error) bool {
	return stderrors.Is(err, tea.ErrProgramKilled) || stderrors.Is(err, context.Canceled)
}
