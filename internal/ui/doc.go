// Package ui provides the shared terminal presentation pieces: the color
// palette, status symbols, a line spinner for CLI feedback, and the
// sparkline renderers the dashboard plots measurement history with.
package ui
