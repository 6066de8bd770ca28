package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/teamtrack/internal/analytics"
)

type reportKind int

const (
	reportSummary reportKind = iota
	reportProjects
	reportUsers
	reportPatterns
)

var reportNames = []string{"Summary", "Projects", "Team", "Patterns"}

var rangeOrder = []analytics.Range{
	analytics.RangeDay,
	analytics.RangeWeek,
	analytics.RangeMonth,
	analytics.RangeQuarter,
	analytics.RangeYear,
}

var sortOrder = []analytics.SortKey{
	analytics.SortHours,
	analytics.SortEfficiency,
	analytics.SortCompletion,
	analytics.SortProductivity,
	analytics.SortConsistency,
	analytics.SortName,
}

type reportsModel struct {
	engine *analytics.Engine
	loc    *time.Location
	width  int
	height int

	kind    reportKind
	rngIdx  int
	sortIdx int

	// gen counts refreshes; a data message from an older refresh is stale
	// and dropped, so only the latest request ever lands.
	gen     int
	loading bool
	loadErr error

	summary  *analytics.SummaryReport
	projects *analytics.ProjectReport
	users    *analytics.UserReport
	patterns *analytics.PatternReport

	chart barchart.Model
}

func newReportsModel(engine *analytics.Engine, loc *time.Location) reportsModel {
	if loc == nil {
		loc = time.UTC
	}
	return reportsModel{
		engine: engine,
		loc:    loc,
		rngIdx: 1, // week
		chart:  barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

func (r reportsModel) window() analytics.Window {
	return analytics.WindowForRange(rangeOrder[r.rngIdx], time.Now(), r.loc)
}

type reportsDataMsg struct {
	gen      int
	kind     reportKind
	summary  *analytics.SummaryReport
	projects *analytics.ProjectReport
	users    *analytics.UserReport
	patterns *analytics.PatternReport
	err      error
}

func (r *reportsModel) refresh() tea.Cmd {
	r.gen++
	r.loading = true
	gen := r.gen
	kind := r.kind
	w := r.window()
	sortKey := sortOrder[r.sortIdx]
	engine := r.engine

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		msg := reportsDataMsg{gen: gen, kind: kind}
		switch kind {
		case reportSummary:
			msg.summary, msg.err = engine.Summary(ctx, w, analytics.Filters{})
		case reportProjects:
			msg.projects, msg.err = engine.Projects(ctx, w, analytics.Filters{}, sortKey)
		case reportUsers:
			msg.users, msg.err = engine.Users(ctx, w, analytics.Filters{}, sortKey)
		case reportPatterns:
			msg.patterns, msg.err = engine.Patterns(ctx, w, analytics.Filters{})
		}
		return msg
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		if msg.gen != r.gen {
			return r, nil // superseded by a newer refresh
		}
		r.loading = false
		r.loadErr = msg.err
		if msg.err != nil {
			return r, nil
		}
		switch msg.kind {
		case reportSummary:
			r.summary = msg.summary
			r.buildSummaryChart()
		case reportProjects:
			r.projects = msg.projects
		case reportUsers:
			r.users = msg.users
		case reportPatterns:
			r.patterns = msg.patterns
			r.buildHourlyChart()
		}
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.kind = (r.kind + 3) % 4
			cmd := r.refresh()
			return r, cmd
		case key.Matches(msg, keys.Right):
			r.kind = (r.kind + 1) % 4
			cmd := r.refresh()
			return r, cmd
		case key.Matches(msg, keys.Range):
			r.rngIdx = (r.rngIdx + 1) % len(rangeOrder)
			cmd := r.refresh()
			return r, cmd
		case key.Matches(msg, keys.Sort):
			if r.kind == reportProjects || r.kind == reportUsers {
				r.sortIdx = (r.sortIdx + 1) % len(sortOrder)
				cmd := r.refresh()
				return r, cmd
			}
		}
	}
	return r, nil
}

func (r *reportsModel) chartSize() (int, int) {
	w := r.width - 8
	if w < 20 {
		w = 20
	}
	h := 10
	if r.height > 30 {
		h = 14
	}
	return w, h
}

func (r *reportsModel) buildSummaryChart() {
	w, h := r.chartSize()
	r.chart = barchart.New(w, h)

	var bars []barchart.BarData
	for _, day := range r.summary.Days {
		label := day.Date
		if t, err := time.Parse("2006-01-02", day.Date); err == nil {
			label = t.Format("Mon 02")
		}
		bars = append(bars, barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{{
				Name:  "hours",
				Value: day.Hours,
				Style: lipgloss.NewStyle().Foreground(colorPrimary),
			}},
		})
	}
	if len(bars) == 0 {
		bars = []barchart.BarData{{
			Label:  "—",
			Values: []barchart.BarValue{{Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}},
		}}
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r *reportsModel) buildHourlyChart() {
	w, h := r.chartSize()
	r.chart = barchart.New(w, h)

	var bars []barchart.BarData
	for _, hb := range r.patterns.Hourly {
		style := lipgloss.NewStyle().Foreground(colorPrimary)
		if hb.Hours == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label: fmt.Sprintf("%02d", hb.Hour),
			Values: []barchart.BarValue{{
				Name:  "hours",
				Value: hb.Hours,
				Style: style,
			}},
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	var kinds []string
	for i, name := range reportNames {
		if reportKind(i) == r.kind {
			kinds = append(kinds, activeTabStyle.Render(name))
		} else {
			kinds = append(kinds, inactiveTabStyle.Render(name))
		}
	}
	kindTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, kinds...)

	win := r.window()
	rangeLabel := mutedStyle.Render(fmt.Sprintf("%s  %s — %s",
		rangeOrder[r.rngIdx],
		win.Start.Format("Jan 02"),
		win.End.Format("Jan 02, 2006"),
	))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", kindTabs, "  ", rangeLabel,
	)

	var body string
	switch {
	case r.loading:
		body = mutedStyle.Render("  Loading…")
	case r.loadErr != nil:
		body = errorStyle.Render("  Error: " + r.loadErr.Error())
	default:
		switch r.kind {
		case reportSummary:
			body = r.renderSummary()
		case reportProjects:
			body = r.renderProjects()
		case reportUsers:
			body = r.renderUsers()
		case reportPatterns:
			body = r.renderPatterns()
		}
	}

	nav := mutedStyle.Render("  ←/→: report  r: range  f: sort")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", nav),
	)
}

func (r reportsModel) renderSummary() string {
	if r.summary == nil {
		return mutedStyle.Render("  No data")
	}
	rep := r.summary

	scalars := fmt.Sprintf("  Total %s   Avg/day %s   Peak %s (%s)",
		highlightStyle.Render(formatHoursF(rep.TotalHours)),
		formatHoursF(rep.AvgHoursPerDay),
		rep.PeakDay,
		formatHoursF(rep.PeakDayHours),
	)

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %8s %6s %8s %6s %10s", "Date", "Hours", "Users", "Projects", "Tasks", "Completed")))
	for _, d := range rep.Days {
		rows = append(rows, fmt.Sprintf("  %-12s %8.2f %6d %8d %6d %10d",
			d.Date, d.Hours, d.Users, d.Projects, d.Tasks, d.CompletedTasks))
	}

	var projRows []string
	projRows = append(projRows, mutedStyle.Render(fmt.Sprintf("  %-20s %8s %6s %12s", "Project", "Hours", "Tasks", "Completion")))
	for _, p := range rep.Projects {
		projRows = append(projRows, fmt.Sprintf("  %-20s %8.2f %6d %11.1f%%",
			p.Name, p.Hours, p.Tasks, p.Completion))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		scalars, "", r.chart.View(), "",
		strings.Join(rows, "\n"), "",
		strings.Join(projRows, "\n"),
	)
}

func (r reportsModel) renderProjects() string {
	if r.projects == nil || len(r.projects.Rows) == 0 {
		return mutedStyle.Render("  No data for this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-20s %8s %8s %6s %12s %8s", "Project", "Hours", "Est", "Eff", "Completion", "Status")))
	for _, p := range r.projects.Rows {
		status := p.Status
		if p.Overdue {
			status = errorStyle.Render("overdue")
		}
		rows = append(rows, fmt.Sprintf("  %-20s %8.2f %8.2f %6.1f %11.1f%% %8s",
			p.Name, p.Hours, p.EstimatedHours, p.Efficiency, p.Completion, status))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  sorted by "+string(r.projects.Sort)))
	return strings.Join(rows, "\n")
}

func (r reportsModel) renderUsers() string {
	if r.users == nil || len(r.users.Rows) == 0 {
		return mutedStyle.Render("  No data for this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-14s %8s %6s %6s %6s %10s %9s", "Member", "Hours", "Eff", "Prod", "Cons", "Done/Tasks", "Peak hour")))
	for _, u := range r.users.Rows {
		rows = append(rows, fmt.Sprintf("  %-14s %8.2f %6.1f %6.2f %6.1f %6d/%-3d %8d:00",
			u.Name, u.Hours, u.Efficiency, u.Productivity, u.Consistency,
			u.CompletedTasks, u.Tasks, u.Pattern.PeakHour))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  sorted by "+string(r.users.Sort)))
	return strings.Join(rows, "\n")
}

func (r reportsModel) renderPatterns() string {
	if r.patterns == nil {
		return mutedStyle.Render("  No data")
	}
	rep := r.patterns

	scalars := fmt.Sprintf("  Total %s   Team efficiency %.1f   Team consistency %.1f",
		highlightStyle.Render(formatHoursF(rep.TotalHours)),
		rep.TeamEfficiency,
		rep.TeamConsistency,
	)

	var insights []string
	for _, in := range rep.Insights {
		insights = append(insights, "  "+toneStyle(in.Tone).Render("• "+in.Message))
	}
	if len(insights) == 0 {
		insights = append(insights, mutedStyle.Render("  No activity in this window"))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		scalars, "", r.chart.View(), "",
		strings.Join(insights, "\n"),
	)
}
