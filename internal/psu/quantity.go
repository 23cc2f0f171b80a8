package psu

import "fmt"

// Metric identifies one of the per-channel measurements.
type Metric int

const (
	MetricVoltage Metric = iota
	MetricCurrent
	MetricPower
)

// String returns the lowercase metric name.
func (m Metric) String() string {
	switch m {
	case MetricVoltage:
		return "voltage"
	case MetricCurrent:
		return "current"
	case MetricPower:
		return "power"
	default:
		return "unknown"
	}
}

// Label returns the capitalized display name.
func (m Metric) Label() string {
	switch m {
	case MetricVoltage:
		return "Voltage"
	case MetricCurrent:
		return "Current"
	case MetricPower:
		return "Power"
	default:
		return "Unknown"
	}
}

// Unit returns the SI unit symbol for the metric.
func (m Metric) Unit() string {
	switch m {
	case MetricVoltage:
		return "V"
	case MetricCurrent:
		return "A"
	case MetricPower:
		return "W"
	default:
		return ""
	}
}

// short is the single-letter field suffix used in record keys (ch1_v, ch1_i, ch1_p).
func (m Metric) short() string {
	switch m {
	case MetricVoltage:
		return "v"
	case MetricCurrent:
		return "i"
	case MetricPower:
		return "p"
	default:
		return "x"
	}
}

// Metrics lists all metrics in display order.
var Metrics = []Metric{MetricVoltage, MetricCurrent, MetricPower}

// Quantity identifies one measured or derived series: a channel number
// paired with a metric. It is the key type for stats and history.
type Quantity struct {
	Channel int
	Metric  Metric
}

// Key returns the stable field key for sinks, e.g. "ch1_v".
func (q Quantity) Key() string {
	return fmt.Sprintf("ch%d_%s", q.Channel, q.Metric.short())
}

// Label returns the display label, e.g. "CH1 Voltage".
func (q Quantity) Label() string {
	return fmt.Sprintf("CH%d %s", q.Channel, q.Metric.Label())
}

// Quantities enumerates every quantity for the given channel count in
// stable order: channel-major, then voltage, current, power.
func Quantities(channels int) []Quantity {
	qs := make([]Quantity, 0, channels*len(Metrics))
	for ch := 1; ch <= channels; ch++ {
		for _, m := range Metrics {
			qs = append(qs, Quantity{Channel: ch, Metric: m})
		}
	}
	return qs
}
