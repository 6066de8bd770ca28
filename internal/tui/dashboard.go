package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/teamtrack/internal/store"
)

type pickStage int

const (
	pickUser pickStage = iota
	pickProject
)

type dashboardModel struct {
	store  *store.Store
	timer  timerModel
	width  int
	height int

	todayTotal      int64
	recentIntervals []store.WorkInterval
	projects        []store.Project
	users           []store.User

	// Picker state: a timer needs a user and a project, picked in order.
	picking      bool
	stage        pickStage
	pickerCursor int
	pickedUser   int // index into users
}

func newDashboardModel(s *store.Store) dashboardModel {
	return dashboardModel{
		store: s,
		timer: newTimerModel(s),
	}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dashboardModel) isRunning() bool { return d.timer.running() }
func (d dashboardModel) isPaused() bool  { return d.timer.paused() }
func (d dashboardModel) elapsed() time.Duration {
	return d.timer.currentElapsed()
}

type dashboardDataMsg struct {
	todayTotal      int64
	recentIntervals []store.WorkInterval
	projects        []store.Project
	users           []store.User
}

func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		total, _ := d.store.GetTodayTotal(nil)
		intervals, _ := d.store.ListIntervals(store.IntervalFilter{Limit: 5})
		projects, _ := d.store.ListProjects(false)
		users, _ := d.store.ListUsers(false)

		return dashboardDataMsg{
			todayTotal:      total,
			recentIntervals: intervals,
			projects:        projects,
			users:           users,
		}
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.todayTotal = msg.todayTotal
		d.recentIntervals = msg.recentIntervals
		d.projects = msg.projects
		d.users = msg.users
		return d, nil

	case tickMsg:
		d.timer.tick()
		return d, nil

	case tea.KeyMsg:
		d.timer.recordActivity()

		if d.picking {
			return d.updatePicker(msg)
		}

		switch {
		case key.Matches(msg, keys.Start):
			if d.timer.running() {
				return d, nil
			}
			if len(d.users) == 0 {
				return d, func() tea.Msg {
					return errStatus("No team members yet. Press 4 to go to Team and add one.")
				}
			}
			if len(d.projects) == 0 {
				return d, func() tea.Msg {
					return errStatus("No projects yet. Press 3 to go to Projects and create one.")
				}
			}
			d.picking = true
			d.stage = pickUser
			d.pickerCursor = 0
			if len(d.users) == 1 {
				d.pickedUser = 0
				d.stage = pickProject
				if len(d.projects) == 1 {
					d.picking = false
					return d.startTimer(0, 0)
				}
			}
			return d, nil

		case key.Matches(msg, keys.Stop):
			return d.stopTimer()

		case key.Matches(msg, keys.Pause):
			d.timer.toggle()
			return d, nil
		}
	}
	return d, nil
}

func (d dashboardModel) updatePicker(msg tea.Msg) (dashboardModel, tea.Cmd) {
	limit := len(d.users) - 1
	if d.stage == pickProject {
		limit = len(d.projects) - 1
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if d.pickerCursor > 0 {
				d.pickerCursor--
			}
		case key.Matches(msg, keys.Down):
			if d.pickerCursor < limit {
				d.pickerCursor++
			}
		case key.Matches(msg, keys.Enter):
			if d.stage == pickUser {
				d.pickedUser = d.pickerCursor
				d.stage = pickProject
				d.pickerCursor = 0
				return d, nil
			}
			proj := d.pickerCursor
			d.picking = false
			return d.startTimer(d.pickedUser, proj)
		case key.Matches(msg, keys.Back):
			if d.stage == pickProject {
				d.stage = pickUser
				d.pickerCursor = d.pickedUser
				return d, nil
			}
			d.picking = false
		}
	}
	return d, nil
}

func (d dashboardModel) startTimer(userIdx, projIdx int) (dashboardModel, tea.Cmd) {
	u := d.users[userIdx]
	p := d.projects[projIdx]
	if err := d.timer.start(u.ID, u.Name, p.ID, p.Name, nil, ""); err != nil {
		return d, func() tea.Msg {
			return errStatus("Error: %v", err)
		}
	}
	return d, func() tea.Msg { return timerStartedMsg{} }
}

func (d dashboardModel) stopTimer() (dashboardModel, tea.Cmd) {
	iv, discarded, err := d.timer.stop()
	if err != nil {
		return d, func() tea.Msg {
			return errStatus("Error: %v", err)
		}
	}
	if discarded {
		return d, tea.Batch(
			d.loadData(),
			func() tea.Msg { return intervalDiscardedMsg{} },
		)
	}
	return d, tea.Batch(
		d.loadData(),
		func() tea.Msg { return timerStoppedMsg{interval: iv} },
	)
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	timerPanel := d.renderTimerPanel(contentWidth)
	summaryPanel := d.renderSummaryPanel(contentWidth)

	var bottomPanel string
	if d.picking {
		bottomPanel = d.renderPicker(contentWidth)
	} else {
		bottomPanel = d.renderRecentPanel(contentWidth)
	}

	return lipgloss.JoinVertical(lipgloss.Left, timerPanel, summaryPanel, bottomPanel)
}

func (d dashboardModel) renderTimerPanel(w int) string {
	var timeDisplay string
	var indicator string

	if d.timer.running() {
		elapsed := d.timer.currentElapsed()
		timeStr := formatDuration(elapsed)

		if d.timer.paused() {
			timeDisplay = timerPausedStyle.Width(w - 6).Render(timeStr)
			if d.timer.isIdle {
				indicator = warningStyle.Render("⏸  IDLE")
			} else {
				indicator = warningStyle.Render("⏸  PAUSED")
			}
		} else {
			timeDisplay = timerRunningStyle.Width(w - 6).Render(timeStr)
			indicator = successStyle.Render("●  RUNNING")
		}

		who := highlightStyle.Render(d.timer.userName)
		what := normalItemStyle.Render(" on " + d.timer.projectName)
		if d.timer.taskName != "" {
			what += mutedStyle.Render(" / " + d.timer.taskName)
		}

		content := lipgloss.JoinVertical(lipgloss.Center,
			timeDisplay,
			indicator,
			who+what,
		)
		return activePanelStyle.Width(w).Render(content)
	}

	timeDisplay = timerStyle.Width(w - 6).Render("00:00:00")
	indicator = mutedStyle.Render("■  STOPPED")
	hint := mutedStyle.Render("Press s to start tracking")

	content := lipgloss.JoinVertical(lipgloss.Center,
		timeDisplay,
		indicator,
		hint,
	)
	return panelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderSummaryPanel(w int) string {
	title := titleStyle.Render("Today")
	total := highlightStyle.Render(formatSeconds(d.todayTotal))
	header := fmt.Sprintf("%s  %s", title, total)

	teamLine := fmt.Sprintf("  %d team members, %d active projects", len(d.users), len(d.projects))

	content := lipgloss.JoinVertical(lipgloss.Left,
		header,
		mutedStyle.Render(teamLine),
	)
	return panelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderRecentPanel(w int) string {
	title := titleStyle.Render("Recent Intervals")
	if len(d.recentIntervals) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No work logged yet"),
		)
		return panelStyle.Width(w).Render(content)
	}

	userNames := make(map[int64]string, len(d.users))
	for _, u := range d.users {
		userNames[u.ID] = u.Name
	}
	projectNames := make(map[int64]string, len(d.projects))
	for _, p := range d.projects {
		projectNames[p.ID] = p.Name
	}

	var rows []string
	rows = append(rows, title)
	for _, iv := range d.recentIntervals {
		uName, pName := "?", "?"
		if iv.UserID != nil {
			if n, ok := userNames[*iv.UserID]; ok {
				uName = n
			}
		}
		if iv.ProjectID != nil {
			if n, ok := projectNames[*iv.ProjectID]; ok {
				pName = n
			}
		}
		dur := formatSeconds(int64(iv.Duration().Seconds()))
		startStr := iv.StartTime.Local().Format("15:04")
		status := "✓"
		if iv.EndTime == nil {
			status = "●"
			dur = "running"
		}
		row := fmt.Sprintf("  %s %s  %-12s %-16s %s", status, startStr, uName, pName, dur)
		rows = append(rows, row)
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderPicker(w int) string {
	title := titleStyle.Render("Who is working?")
	if d.stage == pickProject {
		title = titleStyle.Render("Select Project")
	}

	var rows []string
	rows = append(rows, title)
	if d.stage == pickUser {
		for i, u := range d.users {
			cursor := "  "
			style := normalItemStyle
			if i == d.pickerCursor {
				cursor = "> "
				style = selectedItemStyle
			}
			row := style.Render(cursor + u.Name)
			if u.Role != "" {
				row += mutedStyle.Render(" (" + u.Role + ")")
			}
			rows = append(rows, row)
		}
	} else {
		for i, p := range d.projects {
			cursor := "  "
			style := normalItemStyle
			if i == d.pickerCursor {
				cursor = "> "
				style = selectedItemStyle
			}
			rows = append(rows, style.Render(cursor+p.Name))
		}
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: select  esc: back"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
