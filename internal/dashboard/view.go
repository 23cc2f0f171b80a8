package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/kovar/sps5000x/internal/psu"
	"github.com/kovar/sps5000x/internal/scpi"
	"github.com/kovar/sps5000x/internal/ui"
)

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	b.WriteString(m.renderChannelCards())
	b.WriteString("\n")

	b.WriteString(m.renderStatsSection())
	b.WriteString("\n\n")

	b.WriteString(m.renderConsole(m.contentWidth()))
	b.WriteString("\n")

	b.WriteString(m.renderStatusLine())
	b.WriteString(m.renderFooter())

	return b.String()
}

// contentWidth is the usable width for full-width sections.
func (m Model) contentWidth() int {
	if m.width == 0 {
		return 80
	}
	return m.width
}

// renderHeader renders the title bar: program name, instrument identity,
// connection state, cycle counters, and data age.
func (m Model) renderHeader() string {
	title := TitleStyle.Render("spsmon")

	caption := m.address
	if m.identity != "" {
		caption = m.identity
	}

	var state string
	switch m.connState {
	case scpi.StateConnected:
		state = StatusConnectedStyle.Render(StatusConnected + " connected")
	case scpi.StateConnecting:
		state = StatusConnectingStyle.Render(m.spin.View() + " connecting")
	default:
		state = StatusDisconnectedStyle.Render(StatusDisconnected + " disconnected")
		if m.connErr != nil {
			state += MutedStyle.Render(" (retrying)")
		}
	}

	completed := m.poller.Completed()
	failed := m.poller.Failed()
	cycles := fmt.Sprintf("%d cycles", completed)
	if failed > 0 {
		cycles += fmt.Sprintf(", %d discarded", failed)
	}

	var age string
	switch s := m.SecondsSinceUpdate(); {
	case m.lastUpdate.IsZero():
		age = "no data"
	case s == 0:
		age = "just now"
	case s == 1:
		age = "1s ago"
	default:
		age = fmt.Sprintf("%ds ago", s)
	}

	parts := []string{
		title,
		LabelStyle.Render(caption),
		state,
		LabelStyle.Render(cycles),
		LabelStyle.Render(age),
	}
	if m.paused {
		parts = append(parts, PausedStyle.Render("paused"))
	}

	sep := MutedStyle.Render(" │ ")
	return HeaderStyle.Render(strings.Join(parts, sep))
}

// renderChannelCards lays the per-channel cards out in rows.
func (m Model) renderChannelCards() string {
	cardWidth := m.cardWidth()

	cards := make([]string, 0, m.channels)
	for ch := 1; ch <= m.channels; ch++ {
		cards = append(cards, m.renderChannelCard(ch, cardWidth))
	}

	// Fit as many cards per row as the terminal allows.
	perRow := 1
	if m.width > 0 {
		perRow = m.width / (cardWidth + 3)
		if perRow < 1 {
			perRow = 1
		}
	} else {
		perRow = len(cards)
	}

	var rows []string
	for i := 0; i < len(cards); i += perRow {
		end := i + perRow
		if end > len(cards) {
			end = len(cards)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// cardWidth determines card width from the terminal width.
func (m Model) cardWidth() int {
	if m.width == 0 {
		return 38
	}
	if m.width >= 80 {
		return 38
	}
	w := m.width - 4
	if w < cardMinWidth {
		w = cardMinWidth
	}
	return w
}

// renderStatsSection renders the running statistics table, one row per
// quantity.
func (m Model) renderStatsSection() string {
	title := TitleStyle.Render("Statistics") +
		MutedStyle.Render(fmt.Sprintf("  (window %s)", m.window.Span()))

	columns := []ui.TableColumn{
		{Title: "Quantity", Width: 14},
		{Title: "Count", Width: 8},
		{Title: "Min", Width: 10},
		{Title: "Max", Width: 10},
		{Title: "Mean", Width: 10},
		{Title: "σ", Width: 10},
	}

	var rows []table.Row
	for _, q := range psu.Quantities(m.channels) {
		s := m.board.Summary(q)
		if s.Count == 0 {
			rows = append(rows, table.Row{q.Label(), "0", "-", "-", "-", "-"})
			continue
		}
		rows = append(rows, table.Row{
			q.Label(),
			fmt.Sprintf("%d", s.Count),
			fmt.Sprintf("%.3f", s.Min),
			fmt.Sprintf("%.3f", s.Max),
			fmt.Sprintf("%.3f", s.Mean),
			fmt.Sprintf("%.4f", s.StdDev),
		})
	}

	return title + "\n" + ui.NewTable(columns, rows).View()
}

// renderStatusLine renders the flash message or the most recent cycle
// error, or nothing.
func (m Model) renderStatusLine() string {
	switch {
	case m.flash != "":
		style := FlashInfoStyle
		if m.flashErr {
			style = FlashErrorStyle
		}
		return style.Render(m.flash) + "\n"
	case m.cycleErr != nil:
		return FlashErrorStyle.Render(
			fmt.Sprintf("cycle discarded %s: %s",
				m.cycleErrAt.Format("15:04:05"), m.cycleErr.Error())) + "\n"
	default:
		return ""
	}
}

// renderFooter renders the keyboard hint line.
func (m Model) renderFooter() string {
	hints := []string{
		"q quit",
		"p pause",
		"r cycle",
		"s reset stats",
		"c clear",
		"e export",
		"+/- span",
		": console",
		"? help",
	}
	return FooterStyle.Render(strings.Join(hints, " | "))
}
