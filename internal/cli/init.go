package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"gopkg.in/yaml.v3"

	"github.com/kovar/sps5000x/internal/config"
	"github.com/kovar/sps5000x/internal/errors"
	"github.com/kovar/sps5000x/internal/ui"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Address        string // Pre-specified instrument address
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, use defaults
}

// Init creates a new .spsmon.yaml configuration file.
func Init(opts InitOptions) error {
	configPath := filepath.Join(".", config.ConfigFileName)

	// Check for existing config
	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		var overwrite bool

		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)

		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}

		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	// Collect configuration values
	address := opts.Address
	channelsStr := "3"
	intervalStr := "1s"
	csvPath := "readings.csv"

	if opts.NonInteractive {
		if address == "" {
			return errors.New(errors.ErrConfig,
				"Instrument address is required in non-interactive mode",
				"Provide --address or run interactively")
		}
	} else {
		// Interactive prompts using huh
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Instrument address").
					Description("tcp://host:port, host (port defaults to 5025), or /dev/usbtmc0").
					Placeholder("tcp://10.0.0.5:5025").
					Value(&address).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return fmt.Errorf("instrument address is required")
						}
						return nil
					}),
			),
			huh.NewGroup(
				huh.NewInput().
					Title("Output channels").
					Description("How many outputs the supply has").
					Placeholder("3").
					Value(&channelsStr).
					Validate(func(s string) error {
						n, err := strconv.Atoi(strings.TrimSpace(s))
						if err != nil || n < 1 {
							return fmt.Errorf("channels must be a positive number")
						}
						return nil
					}),
			),
			huh.NewGroup(
				huh.NewInput().
					Title("Poll interval").
					Description("How often to read voltage and current").
					Placeholder("1s").
					Value(&intervalStr).
					Validate(func(s string) error {
						d, err := time.ParseDuration(strings.TrimSpace(s))
						if err != nil {
							return fmt.Errorf("use a duration like 500ms or 1s")
						}
						if d < 200*time.Millisecond {
							return fmt.Errorf("minimum interval is 200ms")
						}
						return nil
					}),
			),
			huh.NewGroup(
				huh.NewInput().
					Title("CSV output path").
					Description("Where 'spsmon record' appends readings").
					Placeholder("readings.csv").
					Value(&csvPath).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return fmt.Errorf("path is required")
						}
						return nil
					}),
			),
		)

		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Check terminal compatibility, or pass --address and accept the defaults")
		}
	}

	address = strings.TrimSpace(address)
	channels, _ := strconv.Atoi(strings.TrimSpace(channelsStr))
	interval, _ := time.ParseDuration(strings.TrimSpace(intervalStr))

	// Test connection before saving
	fmt.Println()
	spinner := ui.NewSpinner("Testing connection to " + address)
	spinner.Start()

	identity, err := probeInstrument(address)
	if err != nil {
		spinner.Fail()

		// Connection failed, but still offer to save config
		if opts.NonInteractive {
			return err
		}

		fmt.Printf("\n%v\n", err)

		var saveAnyway bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Save config anyway? (You can fix the connection later)").
					Value(&saveAnyway),
			),
		)

		if formErr := form.Run(); formErr != nil {
			return err
		}

		if !saveAnyway {
			return err
		}
	} else {
		spinner.Success()
		if identity != "" {
			fmt.Printf("  %s\n", identity)
		}
		fmt.Println()
	}

	// Build config
	cfg := config.DefaultConfig()
	cfg.Instrument.Address = address
	if channels > 0 {
		cfg.Instrument.Channels = channels
	}
	if interval > 0 {
		cfg.Poll.Interval = interval
	}
	if strings.TrimSpace(csvPath) != "" {
		cfg.Recorder.CSV.Path = strings.TrimSpace(csvPath)
	}

	// Marshal to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to generate config",
			"This shouldn't happen - please report this bug")
	}

	// Add a header comment
	header := `# spsmon configuration
# Run 'spsmon monitor' for the live dashboard
# See: https://github.com/kovar/sps5000x for documentation

`
	content := header + string(data)

	// Write config file
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", configPath),
			"Check directory permissions")
	}

	fmt.Printf("%s Created %s\n\n", ui.SymbolSuccess, configPath)
	fmt.Println("Next steps:")
	fmt.Println("  spsmon monitor         - Live dashboard")
	fmt.Println("  spsmon record          - Log readings to CSV")
	fmt.Println("  spsmon query \"*IDN?\"   - Check the connection")

	return nil
}

// probeInstrument dials the instrument and asks it to identify itself.
func probeInstrument(address string) (string, error) {
	cfg := config.DefaultConfig()
	cfg.Instrument.Address = address

	queue, conn, err := openQueue(cfg)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	return queue.Query(context.Background(), cfg.Instrument.Commands.Identify)
}

// initCommand is the implementation called by the cobra command.
func initCommand(addressFlag string, force bool) error {
	return Init(InitOptions{
		Address:   addressFlag,
		Overwrite: force,
	})
}
