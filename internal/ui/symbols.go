package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓" // Step completed successfully
	SymbolFail     = "✗" // Step failed
	SymbolPending  = "○" // Not yet started
	SymbolComplete = "●" // Done (alternative to success)
	SymbolRecord   = "◉" // Actively recording
)
