// Package dashboard provides the interactive Bubble Tea TUI for live
// instrument monitoring: per-channel measurement cards with sparkline
// graphs, a running statistics table, and an embedded SCPI console.
// External events (readings, cycle errors, connection changes) enter
// through a Bridge that forwards them to the program goroutine.
package dashboard
