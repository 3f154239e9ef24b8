package ui

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatCount renders n with thousands separators.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}

// FormatBytes renders a byte count in IEC units.
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// FormatMoney renders an amount with up to two decimals and a currency code.
func FormatMoney(amount float64, currency string) string {
	s := humanize.CommafWithDigits(amount, 2)
	if currency == "" {
		return s
	}
	return s + " " + currency
}

// FormatPercent renders a percentage with one decimal.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// FormatDelta renders a signed percentage change with an arrow.
func FormatDelta(p float64) string {
	switch {
	case p > 0:
		return Style(ColorSuccess).Render(fmt.Sprintf("%s %.1f%%", SymbolUp, p))
	case p < 0:
		return Style(ColorError).Render(fmt.Sprintf("%s %.1f%%", SymbolDown, -p))
	default:
		return Style(ColorMuted).Render("0.0%")
	}
}

// FormatAgo renders t relative to now, e.g. "3 minutes ago". The zero
// time renders as "never".
func FormatAgo(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	if now.Sub(t) < time.Second {
		return "just now"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// FormatDate renders a timestamp as a short UTC date.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02")
}
