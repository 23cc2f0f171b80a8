package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kovar/sps5000x/internal/errors"
	"github.com/spf13/cobra"
)

// Command-specific flags
var (
	monitorAddressFlag  string
	monitorChannelsFlag int
	monitorIntervalFlag string
	recordAddressFlag   string
	recordChannelsFlag  int
	recordIntervalFlag  string
	recordDurationFlag  string
	recordCountFlag     int
	recordOutputFlag    string
	queryAddressFlag    string
	queryTimeoutFlag    string
	sendAddressFlag     string
	initAddressFlag     string
	initForce           bool
)

// monitorCmd starts the live TUI dashboard
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live dashboard for the power supply",
	Long: `Start an interactive TUI dashboard showing live readings from the
power supply.

Each output channel gets a card with voltage and current graphs, the
regulation mode (CV/CC), and computed power. A statistics table tracks
min/max/mean/stddev over the history window.

Keyboard shortcuts:
  q / Ctrl+C  Quit
  p           Pause / resume polling
  r           Force a poll cycle now
  s           Reset statistics
  c           Clear graphs
  e           Export history window to CSV
  + / -       Grow / shrink the history window
  :           Open the SCPI console
  ?           Show help

Examples:
  spsmon monitor
  spsmon monitor --address tcp://10.0.0.5:5025
  spsmon monitor --interval 500ms --channels 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Parse interval override
		interval := time.Duration(0)
		if monitorIntervalFlag != "" {
			parsed, err := time.ParseDuration(monitorIntervalFlag)
			if err != nil {
				return errors.WrapWithCode(err, errors.ErrConfig,
					fmt.Sprintf("Invalid interval: %s", monitorIntervalFlag),
					"Use a valid duration like 500ms, 1s, or 5s")
			}
			if parsed < 200*time.Millisecond {
				return errors.New(errors.ErrConfig,
					"Interval too short",
					"Minimum interval is 200ms; each cycle sends three queries per channel")
			}
			interval = parsed
		}

		return monitorCommand(monitorAddressFlag, monitorChannelsFlag, interval)
	},
}

// recordCmd logs readings headlessly
var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record readings to CSV or InfluxDB",
	Long: `Poll the power supply and append readings to the configured sinks
without a terminal UI. Suited to long captures and cron jobs.

Sinks are configured under recorder: in .spsmon.yaml. The CSV sink is on
by default; the InfluxDB sink needs connection details. When http.enabled
is set, a read-only JSON API with Prometheus metrics is served alongside.

Recording runs until interrupted, or until --duration or --count is hit.

Examples:
  spsmon record
  spsmon record --duration 1h
  spsmon record --count 1000 --output bench.csv
  spsmon record --interval 5s`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return recordCommand(recordOptions{
			Address:  recordAddressFlag,
			Channels: recordChannelsFlag,
			Interval: recordIntervalFlag,
			Duration: recordDurationFlag,
			Count:    recordCountFlag,
			Output:   recordOutputFlag,
		})
	},
}

// queryCmd sends one SCPI query and prints the reply
var queryCmd = &cobra.Command{
	Use:   "query <command>",
	Short: "Send one SCPI query and print the reply",
	Long: `Connect, send a single SCPI query, print the reply line, and
disconnect. The command must contain a '?' so the instrument replies.

Examples:
  spsmon query "*IDN?"
  spsmon query "MEASURE:VOLTAGE? CH1"
  spsmon query --address tcp://10.0.0.5:5025 "MODE? CH2"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return queryCommand(strings.Join(args, " "), queryAddressFlag, queryTimeoutFlag)
	},
}

// sendCmd sends one SCPI command without waiting for a reply
var sendCmd = &cobra.Command{
	Use:   "send <command>",
	Short: "Send one SCPI command, no reply expected",
	Long: `Connect, send a single SCPI command, and disconnect. Nothing is
read back, so this is for set commands rather than queries.

Examples:
  spsmon send "OUTPUT CH1,ON"
  spsmon send "CH1:VOLTAGE 12.0"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendCommand(strings.Join(args, " "), sendAddressFlag)
	},
}

// initCmd creates a new .spsmon.yaml configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .spsmon.yaml configuration",
	Long: `Initialize a new spsmon configuration file.

Creates a .spsmon.yaml file in the current directory with sensible
defaults. Guides you through instrument setup with interactive prompts
and tests the connection before saving.

Examples:
  spsmon init
  spsmon init --address tcp://10.0.0.5:5025
  spsmon init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initCommand(initAddressFlag, initForce)
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for spsmon.

Examples:
  # Bash
  spsmon completion bash > /etc/bash_completion.d/spsmon

  # Zsh
  spsmon completion zsh > "${fpath[1]}/_spsmon"

  # Fish
  spsmon completion fish > ~/.config/fish/completions/spsmon.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(os.Stdout)
		default:
			return errors.New(errors.ErrConfig,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	// monitor command flags
	monitorCmd.Flags().StringVar(&monitorAddressFlag, "address", "", "instrument address (overrides config)")
	monitorCmd.Flags().IntVar(&monitorChannelsFlag, "channels", 0, "number of output channels (overrides config)")
	monitorCmd.Flags().StringVar(&monitorIntervalFlag, "interval", "", "poll interval (e.g., 500ms, 1s, 5s)")

	// record command flags
	recordCmd.Flags().StringVar(&recordAddressFlag, "address", "", "instrument address (overrides config)")
	recordCmd.Flags().IntVar(&recordChannelsFlag, "channels", 0, "number of output channels (overrides config)")
	recordCmd.Flags().StringVar(&recordIntervalFlag, "interval", "", "poll interval (e.g., 1s, 5s, 1m)")
	recordCmd.Flags().StringVar(&recordDurationFlag, "duration", "", "stop after this long (e.g., 10m, 1h)")
	recordCmd.Flags().IntVar(&recordCountFlag, "count", 0, "stop after this many readings")
	recordCmd.Flags().StringVar(&recordOutputFlag, "output", "", "CSV output path (overrides config)")

	// query command flags
	queryCmd.Flags().StringVar(&queryAddressFlag, "address", "", "instrument address (overrides config)")
	queryCmd.Flags().StringVar(&queryTimeoutFlag, "timeout", "", "reply timeout (e.g., 2s, 10s)")

	// send command flags
	sendCmd.Flags().StringVar(&sendAddressFlag, "address", "", "instrument address (overrides config)")

	// init command flags
	initCmd.Flags().StringVar(&initAddressFlag, "address", "", "pre-specify instrument address")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")

	// Register all commands
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
}
