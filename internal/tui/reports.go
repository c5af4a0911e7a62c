package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mpeters/blocktrack/internal/store"
)

// reportsModel charts how many blocks got logged per day over a 7-day window.
type reportsModel struct {
	store  *store.Store
	width  int
	height int

	counts []store.DayCount
	offset int // 7-day blocks back from today (0 = current)

	chart barchart.Model
}

func newReportsModel(s *store.Store) reportsModel {
	return reportsModel{
		store: s,
		chart: barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

func (r reportsModel) refresh() tea.Cmd {
	from, to := r.dateRange()
	return func() tea.Msg {
		counts, err := r.store.DailyCounts(from, to)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error loading report: %v", err), isError: true}
		}
		return reportsDataMsg{counts: counts}
	}
}

func (r reportsModel) dateRange() (time.Time, time.Time) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := today.AddDate(0, 0, 1-7*r.offset)
	return end.AddDate(0, 0, -7), end
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		r.counts = msg.counts
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			return r, r.refresh()
		}
	}
	return r, nil
}

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	from, to := r.dateRange()
	byDate := make(map[string]int, len(r.counts))
	for _, c := range r.counts {
		byDate[c.Date] = c.Count
	}

	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		count := byDate[d.Format("2006-01-02")]
		style := lipgloss.NewStyle().Foreground(colorPrimary)
		if count == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label: d.Format("Mon 02"),
			Values: []barchart.BarValue{
				{Name: "blocks", Value: float64(count), Style: style},
			},
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	from, to := r.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s — %s",
		from.Format("Jan 02"), to.Add(-24*time.Hour).Format("Jan 02, 2006")))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Blocks logged per day"), "  ", dateLabel,
	)

	tableView := r.renderTable(w)
	nav := mutedStyle.Render("  ←/→: navigate weeks")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), "", tableView, "", nav,
		),
	)
}

func (r reportsModel) renderTable(w int) string {
	if len(r.counts) == 0 {
		return mutedStyle.Render("  No entries for this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %8s %10s", "Date", "Blocks", "Tracked")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 34))))

	for _, c := range r.counts {
		tracked := time.Duration(c.Count) * 15 * time.Minute
		rows = append(rows, fmt.Sprintf("  %-12s %8d %10s", c.Date, c.Count, formatTracked(tracked)))
	}

	return strings.Join(rows, "\n")
}

func formatTracked(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %02dm", h, m)
}
