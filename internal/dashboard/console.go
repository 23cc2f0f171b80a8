package dashboard

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kovar/sps5000x/internal/scpi"
)

// consoleBoxStyle frames the SCPI console at the bottom of the dashboard.
var consoleBoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder).
	Padding(0, 1)

var consoleFocusedBoxStyle = consoleBoxStyle.
	BorderForeground(ColorAccent)

// focusConsole gives the input line keyboard focus.
func (m *Model) focusConsole() tea.Cmd {
	m.consoleFocused = true
	m.consoleInput.Focus()
	return textinput.Blink
}

// blurConsole returns keyboard focus to the dashboard.
func (m *Model) blurConsole() {
	m.consoleFocused = false
	m.consoleInput.Blur()
}

// handleConsoleKey routes keys while the console is focused: Esc blurs,
// Enter dispatches, anything else edits the input line.
func (m *Model) handleConsoleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case KeyCancel:
		m.blurConsole()
		return true, nil

	case KeySubmit:
		cmd := strings.TrimSpace(m.consoleInput.Value())
		m.consoleInput.Reset()
		if cmd == "" {
			m.blurConsole()
			return true, nil
		}
		return true, dispatchConsoleCmd(m.session.Queue(), cmd)
	}

	var cmd tea.Cmd
	m.consoleInput, cmd = m.consoleInput.Update(msg)
	return true, cmd
}

// consoleReplyTimeout is more generous than the poll deadline: a manual
// query shares the wire with an in-flight cycle, so its reply can sit
// behind a full round of poll traffic.
const consoleReplyTimeout = 5 * time.Second

// dispatchConsoleCmd runs a console command against the queue off the UI
// goroutine. Queries await their reply line; setters are fire-and-forget
// and report only transmit errors.
func dispatchConsoleCmd(queue *scpi.Queue, cmd string) tea.Cmd {
	return func() tea.Msg {
		if scpi.IsQuery(cmd) {
			reply, err := queue.QueryTimeout(context.Background(), cmd, consoleReplyTimeout)
			return ConsoleReplyMsg{Cmd: cmd, Reply: reply, Err: err}
		}
		return ConsoleReplyMsg{Cmd: cmd, Err: queue.Send(cmd)}
	}
}

// renderConsole renders the console box: recent exchanges plus the input
// line when focused, or a one-line hint when not.
func (m Model) renderConsole(width int) string {
	innerWidth := width - 4
	if innerWidth < 10 {
		innerWidth = 10
	}

	var lines []string
	for _, entry := range m.consoleLog {
		lines = append(lines, renderCardLine(MutedStyle.Render("> ")+LabelStyle.Render(entry.cmd), innerWidth))
		switch {
		case entry.err != nil:
			lines = append(lines, renderCardLine(StatusDisconnectedStyle.Render("  "+entry.err.Error()), innerWidth))
		case entry.reply != "":
			lines = append(lines, renderCardLine(ValueStyle.Render("  "+entry.reply), innerWidth))
		default:
			lines = append(lines, renderCardLine(MutedStyle.Render("  sent"), innerWidth))
		}
	}

	style := consoleBoxStyle
	if m.consoleFocused {
		style = consoleFocusedBoxStyle
		lines = append(lines, renderCardLine(m.consoleInput.View(), innerWidth))
	} else {
		lines = append(lines, renderCardLine(MutedStyle.Render("press : to open the SCPI console"), innerWidth))
	}

	return style.Width(width - 2).Render(strings.Join(lines, "\n"))
}
