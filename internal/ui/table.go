package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

func tableColumns(columns []TableColumn) []table.Column {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}
	return cols
}

// TableStyles returns the shared bubbles table styling.
func TableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.
		Foreground(ColorPrimary)
	s.Selected = s.Selected.
		Foreground(ColorPrimary).
		Background(ColorMuted).
		Bold(false)
	return s
}

// NewTable creates a Bubbles table with default styling. height is the
// number of visible rows; 0 sizes the table to fit rows.
func NewTable(columns []TableColumn, rows []table.Row, height int, focused bool) table.Model {
	if height <= 0 {
		height = len(rows) + 1 // +1 for header
	}
	t := table.New(
		table.WithColumns(tableColumns(columns)),
		table.WithRows(rows),
		table.WithFocused(focused),
		table.WithHeight(height),
	)
	t.SetStyles(TableStyles())
	return t
}

// RenderSimpleTable renders a non-interactive table string for plain
// command output.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	var b strings.Builder
	for i, c := range columns {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(headerStyle.Render(PadRight(Truncate(c.Title, c.Width), c.Width)))
	}
	b.WriteString("\n")
	for _, row := range rows {
		for i, c := range columns {
			if i > 0 {
				b.WriteString("  ")
			}
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(PadRight(Truncate(cell, c.Width), c.Width))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// StatusBadge renders a record status with its symbol and color.
func StatusBadge(status string) string {
	switch status {
	case "active":
		return Style(ColorSuccess).Render(SymbolComplete + " " + status)
	case "suspended":
		return Style(ColorError).Render(SymbolSkipped + " " + status)
	case "pending":
		return Style(ColorWarning).Render(SymbolPending + " " + status)
	default:
		return Style(ColorMuted).Render(SymbolPending + " " + status)
	}
}

// PadRight pads s to width, ignoring ANSI codes.
func PadRight(s string, width int) string {
	visibleLen := lipgloss.Width(s)
	if visibleLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visibleLen)
}

// Truncate shortens plain text to width runes, marking the cut with "…".
// Styled text that already fits is returned untouched.
func Truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
