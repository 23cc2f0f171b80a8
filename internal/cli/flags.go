package cli

import (
	"fmt"
	"time"

	"github.com/kovar/sps5000x/internal/config"
	"github.com/kovar/sps5000x/internal/errors"
	"github.com/kovar/sps5000x/internal/scpi"
)

// loadConfig resolves the effective config. An explicit --config path must
// exist and parse; without one the nearest .spsmon.yaml is used, falling
// back to defaults so flag-only invocations still work.
func loadConfig() (*config.Config, error) {
	if configFlag != "" {
		return config.Load(configFlag)
	}
	return config.LoadOrDefault()
}

// applyInstrumentFlags layers command-line overrides onto the loaded
// config. Zero values leave the config untouched.
func applyInstrumentFlags(cfg *config.Config, address string, channels int) {
	if address != "" {
		cfg.Instrument.Address = address
	}
	if channels > 0 {
		cfg.Instrument.Channels = channels
	}
}

// parseDurationFlag parses a duration flag like "2s" or "5m". Returns zero
// duration if the flag is empty.
func parseDurationFlag(flag, name string) (time.Duration, error) {
	if flag == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid %s", flag, name),
			"Try something like 500ms, 2s, or 5m.")
	}
	return d, nil
}

// commandSet converts config command templates into the scpi form.
func commandSet(cc config.CommandConfig) scpi.CommandSet {
	return scpi.CommandSet{
		Voltage:  cc.Voltage,
		Current:  cc.Current,
		Mode:     cc.Mode,
		Identify: cc.Identify,
	}
}
