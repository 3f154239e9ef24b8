package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓" // Operation completed
	SymbolFail     = "✗" // Operation failed
	SymbolPending  = "○" // Pending record or idle fetch
	SymbolProgress = "◐" // Fetch in flight
	SymbolComplete = "●" // Active record
	SymbolSkipped  = "⊘" // Suspended record
	SymbolUp       = "▲"
	SymbolDown     = "▼"
)
