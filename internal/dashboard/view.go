package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/adminctl/internal/api"
	"github.com/rileyhilliard/adminctl/internal/hook"
	"github.com/rileyhilliard/adminctl/internal/ui"
)

const (
	cardWidth      = 30
	sparklineWidth = 12
)

func (m Model) renderDashboard() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	if banner := m.renderError(); banner != "" {
		b.WriteString(banner)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.renderBody())
	b.WriteString("\n")
	b.WriteString(FooterStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))
	return b.String()
}

func (m Model) renderHeader() string {
	title := TitleStyle.Render(m.opts.Title)
	return HeaderStyle.Render(title + LabelStyle.Render(" | ") + m.renderStatus())
}

// renderStatus describes the fetch in progress, the pending retry, or the
// age of the data shown.
func (m Model) renderStatus() string {
	s := m.state
	switch {
	case s.Phase == hook.PhaseRetrying:
		wait := max(s.NextRetry.Sub(m.now).Round(time.Second), 0)
		return WarningStyle.Render(fmt.Sprintf("retrying in %s (attempt %d/%d)", wait, s.RetryCount, m.opts.MaxRetries))
	case s.IsLoading:
		return m.spinner.View() + LabelStyle.Render(" loading")
	case s.IsRefreshing:
		return m.spinner.View() + LabelStyle.Render(" refreshing")
	case !s.LastUpdated.IsZero():
		return LabelStyle.Render("updated " + ui.FormatAgo(s.LastUpdated, m.now))
	}
	return LabelStyle.Render("waiting")
}

func (m Model) renderError() string {
	if m.state.Error == nil {
		return ""
	}
	line := ErrorStyle.Render(ui.SymbolFail + " " + m.state.Error.Message)
	if m.state.Error.Suggestion != "" {
		line += "  " + HintStyle.Render(m.state.Error.Suggestion)
	}
	if m.state.Data != nil {
		line += "  " + HintStyle.Render("showing data from "+ui.FormatAgo(m.state.LastUpdated, m.now))
	}
	return " " + line
}

func (m Model) renderBody() string {
	d := m.state.Data
	if d == nil {
		if m.state.Error != nil {
			return LabelStyle.Render(" No data available.")
		}
		return " " + m.spinner.View() + LabelStyle.Render(" Loading dashboard...")
	}

	cards := []string{
		renderCard("Users", [][2]string{
			{"Total", ui.FormatCount(d.TotalUsers)},
			{"Active", ui.FormatCount(d.ActiveUsers)},
			{"New today", ui.FormatCount(d.NewUsersToday)},
			{"Suspended", ui.FormatCount(d.SuspendedUsers)},
		}),
		renderCard("Organizations", [][2]string{
			{"Total", ui.FormatCount(d.TotalOrganizations)},
			{"Active", ui.FormatCount(d.ActiveOrganizations)},
		}),
		renderCard("Revenue", [][2]string{
			{"MRR", ui.FormatMoney(d.Revenue.MRR, d.Revenue.Currency)},
			{"ARR", ui.FormatMoney(d.Revenue.ARR, d.Revenue.Currency)},
			{"Growth", ui.FormatDelta(d.Revenue.GrowthRate)},
			{"Churn", ui.FormatPercent(d.Revenue.Churn)},
		}),
		renderCard("System", m.systemRows(d.System)),
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.layoutCards(cards),
		"",
		m.renderActivity(d.RecentActivity),
	)
}

func (m Model) systemRows(s api.SystemStats) [][2]string {
	rows := [][2]string{
		{"Uptime", ui.Style(uptimeColor(s.UptimePercent)).Render(ui.FormatPercent(s.UptimePercent))},
		{"Response", fmt.Sprintf("%.0f ms", s.AvgResponseMs)},
		{"Errors", ui.Style(errorRateColor(s.ErrorRate)).Render(ui.FormatPercent(s.ErrorRate))},
		{"Sessions", ui.FormatCount(s.ActiveSessions)},
	}
	if s.StorageLimitBytes > 0 {
		rows = append(rows, [2]string{"Storage", ui.FormatBytes(s.StorageUsedBytes) + " / " + ui.FormatBytes(s.StorageLimitBytes)})
	}
	if m.sessions.Len() > 1 {
		rows = append(rows,
			[2]string{"Sessions", ui.RenderSparkline(m.sessions.Values(), sparklineWidth, ui.ColorInfo)},
			[2]string{"Response", ui.RenderSparkline(m.latency.Values(), sparklineWidth, ui.ColorSecondary)},
		)
	}
	return rows
}

// renderCard draws a titled box of label/value rows.
func renderCard(title string, rows [][2]string) string {
	lines := []string{CardTitleStyle.Render(title)}
	for _, r := range rows {
		label := LabelStyle.Render(ui.PadRight(r[0], 11))
		lines = append(lines, label+ValueStyle.Render(r[1]))
	}
	return CardStyle.Width(cardWidth).Render(strings.Join(lines, "\n"))
}

// layoutCards arranges cards in rows based on terminal width.
func (m Model) layoutCards(cards []string) string {
	perRow := len(cards)
	if m.width > 0 {
		// border + margin
		perRow = max(1, m.width/(cardWidth+3))
	}

	var rows []string
	for i := 0; i < len(cards); i += perRow {
		end := min(i+perRow, len(cards))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderActivity(items []api.Activity) string {
	lines := []string{CardTitleStyle.Render(" Recent activity")}
	if len(items) == 0 {
		return strings.Join(append(lines, LabelStyle.Render("  nothing yet")), "\n")
	}
	for _, a := range items {
		when := LabelStyle.Render(ui.PadRight(ui.FormatAgo(a.OccurredAt, m.now), 16))
		lines = append(lines, "  "+when+ValueStyle.Render(a.Actor)+" "+a.Description)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderHelpOverlay() string {
	h := m.help
	h.ShowAll = true
	body := TitleStyle.Render("Keyboard Shortcuts") + "\n\n" +
		h.View(m.keys) + "\n\n" +
		LabelStyle.Render("Press ? to close")
	box := helpBoxStyle.Render(body)
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
