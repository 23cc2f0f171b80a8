package config

import (
	"fmt"
	"strings"

	"github.com/kovar/sps5000x/internal/errors"
)

// Validate checks the config for errors and returns structured error
// messages with fixes. The first problem found wins; one actionable error
// beats a wall of them.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but spsmon only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Grab the latest spsmon release, or re-run 'spsmon init'")
	}

	if err := validateInstrument(cfg.Instrument); err != nil {
		return err
	}

	if cfg.Poll.Interval <= 0 {
		return errors.New(errors.ErrConfig,
			"Poll interval must be positive",
			"Set poll.interval to something like '1s' in your .spsmon.yaml")
	}

	if cfg.History.Span <= 0 {
		return errors.New(errors.ErrConfig,
			"History span must be positive",
			"Set history.span to something like '5m' in your .spsmon.yaml")
	}

	if err := validateRecorder(cfg.Recorder); err != nil {
		return err
	}

	if cfg.HTTP.Enabled && cfg.HTTP.Addr == "" {
		return errors.New(errors.ErrConfig,
			"HTTP API is enabled but http.addr is empty",
			"Set http.addr to a listen address like '127.0.0.1:9180'")
	}

	return nil
}

func validateInstrument(ic InstrumentConfig) error {
	if ic.Address == "" {
		return errors.New(errors.ErrConfig,
			"No instrument address configured",
			"Run 'spsmon init', or set instrument.address (e.g. tcp://10.0.0.5:5025 or /dev/usbtmc0)")
	}

	if strings.Contains(ic.Address, "://") &&
		!strings.HasPrefix(ic.Address, "tcp://") &&
		!strings.HasPrefix(ic.Address, "usbtmc://") {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unsupported address scheme in '%s'", ic.Address),
			"Use tcp://host:port, host[:port], usbtmc:///dev/usbtmcN, or a bare /dev path")
	}

	if ic.Channels < 1 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Channel count %d makes no sense", ic.Channels),
			"Set instrument.channels to how many outputs the supply has (the SPS5000X has 3)")
	}

	if ic.DialTimeout <= 0 {
		return errors.New(errors.ErrConfig,
			"Dial timeout must be positive",
			"Set instrument.dial_timeout to something like '5s'")
	}

	if ic.ReplyTimeout <= 0 {
		return errors.New(errors.ErrConfig,
			"Reply timeout must be positive",
			"Set instrument.reply_timeout to something like '2s'")
	}

	return validateCommands(ic.Commands)
}

func validateCommands(cc CommandConfig) error {
	measurements := map[string]string{
		"voltage": cc.Voltage,
		"current": cc.Current,
		"mode":    cc.Mode,
	}
	for name, tmpl := range measurements {
		if tmpl == "" {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("The %s command template is empty", name),
				"Remove instrument.commands."+name+" to use the default, or set a full template")
		}
		if !strings.Contains(tmpl, "%d") {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("The %s command template '%s' has no channel placeholder", name, tmpl),
				"Put %d where the channel number goes, like 'MEASURE:VOLTAGE? CH%d'")
		}
		if !strings.Contains(tmpl, "?") {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("The %s command template '%s' is not a query", name, tmpl),
				"Measurement commands need a '?' so the instrument sends a reply")
		}
	}

	if cc.Identify == "" {
		return errors.New(errors.ErrConfig,
			"The identify command template is empty",
			"Remove instrument.commands.identify to use the default *IDN?")
	}

	return nil
}

func validateRecorder(rc RecorderConfig) error {
	if rc.CSV.Enabled && rc.CSV.Path == "" {
		return errors.New(errors.ErrConfig,
			"CSV recording is enabled but recorder.csv.path is empty",
			"Set recorder.csv.path to an output file, or disable the CSV sink")
	}

	if rc.Influx.Enabled {
		missing := ""
		switch {
		case rc.Influx.URL == "":
			missing = "url"
		case rc.Influx.Token == "":
			missing = "token"
		case rc.Influx.Org == "":
			missing = "org"
		case rc.Influx.Bucket == "":
			missing = "bucket"
		}
		if missing != "" {
			return errors.New(errors.ErrConfig,
				"InfluxDB recording is enabled but recorder.influx."+missing+" is empty",
				"Fill in the InfluxDB v2 connection details, or disable the influx sink")
		}
	}

	return nil
}
