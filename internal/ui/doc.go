// Package ui provides terminal styling shared by adminctl's commands and
// full-screen views.
//
// # Components Overview
//
//	Colors    - Semantic palette plus color profile selection (auto/always/never)
//	Symbols   - Status glyphs for users, organizations and fetch phases
//	Tables    - Bubbles table construction and plain-text table rendering
//	Sparkline - Mini line graphs for values sampled across refreshes
//	Spinner   - Bubble Tea spinner with the shared frame set
//	Format    - Human-readable counts, bytes, money and relative times
//
// # Color Scheme
//
// Colors are ANSI codes so they degrade well on limited terminals:
//
//	ColorSuccess   (green)  - Active records, healthy metrics
//	ColorError     (red)    - Failures, suspended records
//	ColorWarning   (yellow) - Pending records, retries
//	ColorInfo      (cyan)   - Informational text
//	ColorMuted     (gray)   - Secondary text, timestamps
//	ColorSecondary (blue)   - In-progress indicators
//
// Call SetColorMode once at startup with the output.color setting.
package ui
