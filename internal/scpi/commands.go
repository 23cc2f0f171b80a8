package scpi

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CommandSet holds the query templates for the instrument's SCPI dialect.
// Per-channel templates take the channel number via %d. The defaults match
// the SPS5000X vocabulary; config can override them for other firmware.
type CommandSet struct {
	Voltage  string
	Current  string
	Mode     string
	Identify string
}

// DefaultCommands returns the SPS5000X query vocabulary.
func DefaultCommands() CommandSet {
	return CommandSet{
		Voltage:  "MEASURE:VOLTAGE? CH%d",
		Current:  "MEASURE:CURRENT? CH%d",
		Mode:     "MODE? CH%d",
		Identify: "*IDN?",
	}
}

// VoltageQuery returns the voltage query for a 1-based channel.
func (c CommandSet) VoltageQuery(ch int) string {
	return fmt.Sprintf(c.Voltage, ch)
}

// CurrentQuery returns the current query for a 1-based channel.
func (c CommandSet) CurrentQuery(ch int) string {
	return fmt.Sprintf(c.Current, ch)
}

// ModeQuery returns the regulation-mode query for a 1-based channel.
func (c CommandSet) ModeQuery(ch int) string {
	return fmt.Sprintf(c.Mode, ch)
}

// IsQuery reports whether a command expects a reply line. SCPI marks
// queries with a question mark anywhere in the command.
func IsQuery(cmd string) bool {
	return strings.Contains(cmd, "?")
}

// ParseMeasurement parses a measurement reply line as a float. Returns nil
// when the line does not parse or the value is not finite; a bad reply
// degrades to a missing field rather than an error.
func ParseMeasurement(line string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
