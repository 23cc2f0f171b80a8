// Package cli implements the spsmon command-line interface.
//
// The package is organized around Cobra commands, with each command
// delegating to a small implementation function for the actual work. The
// general structure follows a clean separation between:
//
//   - Command definitions (cobra.Command instances in commands.go)
//   - Per-command implementations (monitor.go, record.go, query.go, init.go)
//   - Domain logic (in other internal packages)
//
// # Command Structure
//
// The root command is "spsmon" with subcommands for different operations:
//
//	spsmon monitor          - Live TUI dashboard
//	spsmon record           - Headless logging to CSV/InfluxDB
//	spsmon query <cmd>      - Send one SCPI query, print the reply
//	spsmon send <cmd>       - Send one SCPI command, no reply expected
//	spsmon init             - Create .spsmon.yaml config
//	spsmon version          - Print version information
//	spsmon completion       - Generate shell completions
//
// # Configuration
//
// All instrument-facing commands resolve config the same way: the --config
// flag wins, then .spsmon.yaml is searched from the current directory
// upward, then ~/.config/spsmon/config.yaml. Flags like --address and
// --channels layer on top of whatever file was found, so a config file is
// never strictly required.
//
// # Error Handling
//
// Implementation functions return structured errors from internal/errors;
// the root command prints them and exits non-zero. Errors carry a
// suggestion line so the fix travels with the failure.
package cli
