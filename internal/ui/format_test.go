package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatters(t *testing.T) {
	plain(t)
	assert.Equal(t, "1,234,567", FormatCount(1234567))
	assert.Equal(t, "1.5 KiB", FormatBytes(1536))
	assert.Equal(t, "0 B", FormatBytes(-1))
	assert.Equal(t, "12,345.5 USD", FormatMoney(12345.5, "USD"))
	assert.Equal(t, "99", FormatMoney(99, ""))
	assert.Equal(t, "99.9%", FormatPercent(99.94))
	assert.Equal(t, SymbolUp+" 4.2%", FormatDelta(4.2))
	assert.Equal(t, SymbolDown+" 1.5%", FormatDelta(-1.5))
	assert.Equal(t, "0.0%", FormatDelta(0))
	assert.Equal(t, "-", FormatDate(time.Time{}))
	assert.Equal(t, "2026-03-14", FormatDate(time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC)))
}

func TestFormatAgo(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "never", FormatAgo(time.Time{}, now))
	assert.Equal(t, "just now", FormatAgo(now, now))
	assert.Equal(t, "3 minutes ago", FormatAgo(now.Add(-3*time.Minute), now))
}

func TestSetColorMode(t *testing.T) {
	t.Cleanup(func() { lipgloss.SetColorProfile(termenv.Ascii) })

	require.NoError(t, SetColorMode(ColorModeAlways, &bytes.Buffer{}))
	assert.Equal(t, termenv.ANSI256, lipgloss.ColorProfile())

	require.NoError(t, SetColorMode(ColorModeNever, &bytes.Buffer{}))
	assert.Equal(t, termenv.Ascii, lipgloss.ColorProfile())

	require.NoError(t, SetColorMode(ColorModeAuto, &bytes.Buffer{}))
	assert.Error(t, SetColorMode("rainbow", &bytes.Buffer{}))
}
