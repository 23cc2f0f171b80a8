package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/kovar/sps5000x/internal/errors"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".spsmon.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/spsmon"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
)

// Load reads config from the specified path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'spsmon init' to create a config file, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .spsmon.yaml in current directory
// 3. .spsmon.yaml in parent directories (stops at git root or home)
// 4. ~/.config/spsmon/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	// 1. Explicit path takes precedence
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	// 2. Current directory
	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	// 3. Walk up to parent directories
	home, _ := os.UserHomeDir()
	dir := cwd
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		if home != "" && parent == home {
			// Don't go above home directory
			break
		}
		dir = parent

		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		// Stop at git root
		gitPath := filepath.Join(dir, ".git")
		if _, err := os.Stat(gitPath); err == nil {
			break
		}
	}

	// 4. Global config
	if home != "" {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// LoadOrDefault loads config from the found path, or returns defaults if
// not found. Commands like 'spsmon init' work without an existing config.
func LoadOrDefault() (*Config, error) {
	path, err := Find("")
	if err != nil {
		return nil, err
	}

	if path == "" {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	setDefaults(v)

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+path)
	}

	return cfg, nil
}

// setDefaults seeds viper so partial files merge over the full default
// tree. Durations are strings here; viper's decode hook parses them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("instrument.channels", 3)
	v.SetDefault("instrument.dial_timeout", "5s")
	v.SetDefault("instrument.reply_timeout", "2s")
	v.SetDefault("instrument.commands.voltage", "MEASURE:VOLTAGE? CH%d")
	v.SetDefault("instrument.commands.current", "MEASURE:CURRENT? CH%d")
	v.SetDefault("instrument.commands.mode", "MODE? CH%d")
	v.SetDefault("instrument.commands.identify", "*IDN?")
	v.SetDefault("poll.interval", "1s")
	v.SetDefault("history.span", "5m")
	v.SetDefault("recorder.csv.enabled", true)
	v.SetDefault("recorder.csv.path", "readings.csv")
	v.SetDefault("recorder.influx.measurement", "psu")
	v.SetDefault("http.addr", "127.0.0.1:9180")
}
