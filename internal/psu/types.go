// Package psu defines the measurement domain for a multi-channel bench
// power supply: per-channel readings, regulation modes, and the quantity
// keys used by stats, history, and the recorder sinks.
package psu

import "time"

// Mode is the regulation mode reported by a channel.
// The instrument reports a closed set in practice, but unrecognized tokens
// are preserved verbatim so firmware variations surface instead of vanishing.
type Mode string

const (
	// ModeCV is constant-voltage regulation.
	ModeCV Mode = "CV"
	// ModeCC is constant-current regulation.
	ModeCC Mode = "CC"
	// ModeUnknown means no mode reply was collected.
	ModeUnknown Mode = ""
)

// Known reports whether the mode is one of the documented tokens.
func (m Mode) Known() bool {
	return m == ModeCV || m == ModeCC
}

// ChannelReading holds one channel's measurements from a single poll cycle.
// Voltage and Current are nil when the corresponding reply did not parse as
// a finite number.
type ChannelReading struct {
	Voltage *float64
	Current *float64
	Mode    Mode
}

// Power returns the derived power (V*I) in watts, or nil if either
// measurement is missing.
func (c ChannelReading) Power() *float64 {
	if c.Voltage == nil || c.Current == nil {
		return nil
	}
	p := *c.Voltage * *c.Current
	return &p
}

// Reading is a complete snapshot of all channels from one poll cycle.
// Readings are immutable once published: consumers receive them by value
// and must not retain references into Channels across cycles.
type Reading struct {
	At       time.Time
	Channels []ChannelReading
}

// Channel returns the reading for a 1-based channel number.
func (r Reading) Channel(n int) (ChannelReading, bool) {
	if n < 1 || n > len(r.Channels) {
		return ChannelReading{}, false
	}
	return r.Channels[n-1], true
}

// Value returns the measured or derived value for a quantity, or nil when
// the quantity is absent from this reading.
func (r Reading) Value(q Quantity) *float64 {
	ch, ok := r.Channel(q.Channel)
	if !ok {
		return nil
	}
	switch q.Metric {
	case MetricVoltage:
		return ch.Voltage
	case MetricCurrent:
		return ch.Current
	case MetricPower:
		return ch.Power()
	default:
		return nil
	}
}

// Complete reports whether every channel has both measurements and a mode.
func (r Reading) Complete() bool {
	for _, ch := range r.Channels {
		if ch.Voltage == nil || ch.Current == nil || ch.Mode == ModeUnknown {
			return false
		}
	}
	return len(r.Channels) > 0
}
