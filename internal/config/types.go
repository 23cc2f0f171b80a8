package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .spsmon.yaml configuration file.
type Config struct {
	Version    int              `yaml:"version" mapstructure:"version"`
	Instrument InstrumentConfig `yaml:"instrument" mapstructure:"instrument"`
	Poll       PollConfig       `yaml:"poll" mapstructure:"poll"`
	History    HistoryConfig    `yaml:"history" mapstructure:"history"`
	Recorder   RecorderConfig   `yaml:"recorder" mapstructure:"recorder"`
	HTTP       HTTPConfig       `yaml:"http" mapstructure:"http"`
}

// InstrumentConfig describes the power supply and how to talk to it.
type InstrumentConfig struct {
	// Address of the SCPI endpoint. Accepts tcp://host:port, host[:port]
	// (port defaults to 5025), usbtmc:///dev/usbtmcN, or a bare /dev path.
	Address string `yaml:"address" mapstructure:"address"`

	// Channels is the number of output channels to poll.
	Channels int `yaml:"channels" mapstructure:"channels"`

	// DialTimeout bounds connection establishment.
	DialTimeout time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`

	// ReplyTimeout is how long each query waits for its reply line.
	ReplyTimeout time.Duration `yaml:"reply_timeout" mapstructure:"reply_timeout"`

	// Commands overrides the SCPI query templates for instruments with a
	// different grammar.
	Commands CommandConfig `yaml:"commands" mapstructure:"commands"`
}

// CommandConfig holds the SCPI query templates. Measurement templates take
// the channel number via %d.
type CommandConfig struct {
	Voltage  string `yaml:"voltage" mapstructure:"voltage"`
	Current  string `yaml:"current" mapstructure:"current"`
	Mode     string `yaml:"mode" mapstructure:"mode"`
	Identify string `yaml:"identify" mapstructure:"identify"`
}

// PollConfig controls the measurement cycle.
type PollConfig struct {
	// Interval between poll cycles.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// HistoryConfig controls the in-memory sample window.
type HistoryConfig struct {
	// Span is the trailing window retained for graphs and export.
	Span time.Duration `yaml:"span" mapstructure:"span"`
}

// RecorderConfig selects where readings are persisted during `record`.
type RecorderConfig struct {
	CSV    CSVConfig    `yaml:"csv" mapstructure:"csv"`
	Influx InfluxConfig `yaml:"influx" mapstructure:"influx"`
}

// CSVConfig controls the CSV sink.
type CSVConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Path of the output file. Appended to if it exists.
	Path string `yaml:"path" mapstructure:"path"`
}

// InfluxConfig controls the InfluxDB v2 sink.
type InfluxConfig struct {
	Enabled     bool   `yaml:"enabled" mapstructure:"enabled"`
	URL         string `yaml:"url" mapstructure:"url"`
	Token       string `yaml:"token" mapstructure:"token"`
	Org         string `yaml:"org" mapstructure:"org"`
	Bucket      string `yaml:"bucket" mapstructure:"bucket"`
	Measurement string `yaml:"measurement" mapstructure:"measurement"`
}

// HTTPConfig controls the read-only HTTP API served during `record`.
type HTTPConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Addr    string `yaml:"addr" mapstructure:"addr"`
}

// DefaultConfig returns a Config with sensible defaults. The instrument
// address is deliberately empty; `spsmon init` or --address must supply it.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Instrument: InstrumentConfig{
			Address:      "",
			Channels:     3,
			DialTimeout:  5 * time.Second,
			ReplyTimeout: 2 * time.Second,
			Commands: CommandConfig{
				Voltage:  "MEASURE:VOLTAGE? CH%d",
				Current:  "MEASURE:CURRENT? CH%d",
				Mode:     "MODE? CH%d",
				Identify: "*IDN?",
			},
		},
		Poll: PollConfig{
			Interval: time.Second,
		},
		History: HistoryConfig{
			Span: 5 * time.Minute,
		},
		Recorder: RecorderConfig{
			CSV: CSVConfig{
				Enabled: true,
				Path:    "readings.csv",
			},
			Influx: InfluxConfig{
				Enabled:     false,
				Measurement: "psu",
			},
		},
		HTTP: HTTPConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9180",
		},
	}
}
