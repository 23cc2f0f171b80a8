package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Global flags available to all subcommands
var configFlag string

// rootCmd is the base command all subcommands hang off.
var rootCmd = &cobra.Command{
	Use:   "spsmon",
	Short: "Monitor a Siglent SPS5000X bench power supply",
	Long: `spsmon talks SCPI to a Siglent SPS5000X-class bench power supply over
LAN or USBTMC and keeps an eye on its output channels.

Readings are polled on a fixed interval: voltage, current, and regulation
mode per channel. The monitor command renders them as a live dashboard;
the record command logs them headlessly to CSV or InfluxDB.

Examples:
  spsmon init                        Create a config interactively
  spsmon monitor                     Live dashboard
  spsmon record --duration 1h        Log readings for an hour
  spsmon query "MEASURE:VOLTAGE? CH1"`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to config file (default: search for .spsmon.yaml)")
}

// Execute runs the root command and exits non-zero on error. Structured
// errors format themselves with the failure, cause, and suggestion.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
