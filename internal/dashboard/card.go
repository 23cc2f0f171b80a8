package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kovar/sps5000x/internal/psu"
	"github.com/kovar/sps5000x/internal/ui"
)

// Card layout constants
const (
	cardGraphHeight = 2  // braille graph rows per metric
	cardMinWidth    = 24 // narrowest useful card
)

// renderChannelCard renders one channel's card: name and mode badge on
// top, then a value line and history graph per metric.
func (m Model) renderChannelCard(ch int, width int) string {
	innerWidth := width - 4

	var lines []string

	// Channel header with regulation mode badge
	name := ValueStyle.Render(fmt.Sprintf("CH%d", ch))
	badge := ModeBadge(m.channelMode(ch))
	padding := ""
	if gap := innerWidth - lipgloss.Width(name) - lipgloss.Width(badge); gap > 0 {
		padding = strings.Repeat(" ", gap)
	}
	lines = append(lines, renderCardLine(name+padding+badge, innerWidth))

	if !m.haveReading {
		lines = append(lines, renderCardDivider(innerWidth))
		lines = append(lines, renderCardLine(MutedStyle.Render("  waiting for data..."), innerWidth))
		for i := 0; i < 2*(cardGraphHeight+2)+1; i++ {
			lines = append(lines, renderCardLine("", innerWidth))
		}
		return CardStyle.Width(width).Render(strings.Join(lines, "\n"))
	}

	for _, metric := range []psu.Metric{psu.MetricVoltage, psu.MetricCurrent} {
		lines = append(lines, renderCardDivider(innerWidth))
		lines = append(lines, m.renderMetricSection(ch, metric, innerWidth)...)
	}

	// Power is derived; a one-row block sparkline in place of the tall
	// braille graph keeps the card short.
	lines = append(lines, renderCardDivider(innerWidth))
	q := psu.Quantity{Channel: ch, Metric: psu.MetricPower}
	lines = append(lines, renderCardLine(
		metricValueLine(psu.MetricPower, m.reading.Value(q), innerWidth), innerWidth))
	if values := m.window.Values(q, innerWidth); len(values) > 1 {
		lines = append(lines, renderCardLine(
			ui.Sparkline(values, innerWidth, MetricColor(psu.MetricPower)), innerWidth))
	} else {
		lines = append(lines, renderCardLine("", innerWidth))
	}

	return CardStyle.Width(width).Render(strings.Join(lines, "\n"))
}

// renderMetricSection renders a metric's value line plus its braille
// history graph.
func (m Model) renderMetricSection(ch int, metric psu.Metric, lineWidth int) []string {
	q := psu.Quantity{Channel: ch, Metric: metric}

	lines := []string{
		renderCardLine(metricValueLine(metric, m.reading.Value(q), lineWidth), lineWidth),
	}

	values := m.window.Values(q, lineWidth*2)
	if len(values) > 1 {
		graph := ui.BrailleSparkline(values, lineWidth, cardGraphHeight, MetricColor(metric))
		for _, gl := range strings.Split(graph, "\n") {
			lines = append(lines, renderCardLine(gl, lineWidth))
		}
	} else {
		for i := 0; i < cardGraphHeight; i++ {
			lines = append(lines, renderCardLine("", lineWidth))
		}
	}

	return lines
}

// metricValueLine renders "Label ......... 5.001 V" right-aligned.
func metricValueLine(metric psu.Metric, v *float64, lineWidth int) string {
	label := LabelStyle.Render(metric.Label())
	value := lipgloss.NewStyle().
		Foreground(MetricColor(metric)).
		Bold(true).
		Render(formatMeasurement(v, metric.Unit()))

	padding := ""
	if gap := lineWidth - lipgloss.Width(label) - lipgloss.Width(value); gap > 0 {
		padding = strings.Repeat(" ", gap)
	}
	return label + padding + value
}

// formatMeasurement renders a measurement with its unit, or a dashed
// placeholder when the value was not collected this cycle.
func formatMeasurement(v *float64, unit string) string {
	if v == nil {
		return "--.--- " + unit
	}
	return fmt.Sprintf("%.3f %s", *v, unit)
}

// channelMode returns the regulation mode from the latest reading.
func (m Model) channelMode(ch int) psu.Mode {
	if !m.haveReading {
		return psu.ModeUnknown
	}
	cr, ok := m.reading.Channel(ch)
	if !ok {
		return psu.ModeUnknown
	}
	return cr.Mode
}
