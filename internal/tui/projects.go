package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/teamtrack/internal/store"
)

var projectStatuses = []string{"active", "on_hold", "completed"}

var taskStatuses = []string{
	store.StatusToDo,
	store.StatusInProgress,
	store.StatusReview,
	store.StatusBlocked,
	store.StatusCompleted,
}

type projectsModel struct {
	store  *store.Store
	width  int
	height int

	projects     []store.Project
	tasks        []store.Task
	users        []store.User
	cursor       int
	taskCursor   int
	viewingTasks bool // true = viewing tasks of selected project

	formActive bool
	form       *huh.Form
	formType   string // "project", "edit_project", "task", "task_status"

	// Form field pointers (survive value copies)
	formName     *string
	formStatus   *string
	formDeadline *string
	formAssignee *string
	formEstimate *string

	editingID int64
}

func newProjectsModel(s *store.Store) projectsModel {
	name, status, deadline, assignee, estimate := "", projectStatuses[0], "", "", ""
	return projectsModel{
		store:        s,
		formName:     &name,
		formStatus:   &status,
		formDeadline: &deadline,
		formAssignee: &assignee,
		formEstimate: &estimate,
	}
}

func (p *projectsModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type projectsDataMsg struct {
	projects []store.Project
	users    []store.User
}

type tasksDataMsg struct {
	tasks []store.Task
}

func (p projectsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		projects, _ := p.store.ListProjects(false)
		users, _ := p.store.ListUsers(false)
		return projectsDataMsg{projects: projects, users: users}
	}
}

func (p projectsModel) refreshTasks() tea.Cmd {
	if p.cursor >= len(p.projects) {
		return nil
	}
	pid := p.projects[p.cursor].ID
	return func() tea.Msg {
		tasks, _ := p.store.ListTasks(&pid, false)
		return tasksDataMsg{tasks: tasks}
	}
}

func (p projectsModel) update(msg tea.Msg) (projectsModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case projectsDataMsg:
		p.projects = msg.projects
		p.users = msg.users
		if p.cursor >= len(p.projects) {
			p.cursor = max(0, len(p.projects)-1)
		}
		return p, nil

	case tasksDataMsg:
		p.tasks = msg.tasks
		if p.taskCursor >= len(p.tasks) {
			p.taskCursor = max(0, len(p.tasks)-1)
		}
		return p, nil

	case tea.KeyMsg:
		if p.viewingTasks {
			return p.updateTaskView(msg)
		}
		return p.updateProjectList(msg)
	}
	return p, nil
}

func (p projectsModel) updateProjectList(msg tea.KeyMsg) (projectsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < len(p.projects)-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if len(p.projects) > 0 {
			p.viewingTasks = true
			p.taskCursor = 0
			return p, p.refreshTasks()
		}
	case key.Matches(msg, keys.New):
		return p.showProjectForm(false)
	case key.Matches(msg, keys.Edit):
		if len(p.projects) > 0 {
			return p.showProjectForm(true)
		}
	case key.Matches(msg, keys.Delete):
		if len(p.projects) > 0 {
			proj := p.projects[p.cursor]
			p.store.ArchiveProject(proj.ID)
			return p, p.refresh()
		}
	}
	return p, nil
}

func (p projectsModel) updateTaskView(msg tea.KeyMsg) (projectsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		p.viewingTasks = false
		return p, nil
	case key.Matches(msg, keys.Up):
		if p.taskCursor > 0 {
			p.taskCursor--
		}
	case key.Matches(msg, keys.Down):
		if p.taskCursor < len(p.tasks)-1 {
			p.taskCursor++
		}
	case key.Matches(msg, keys.New):
		return p.showNewTaskForm()
	case key.Matches(msg, keys.Status):
		if len(p.tasks) > 0 {
			return p.showTaskStatusForm()
		}
	case key.Matches(msg, keys.Delete):
		if len(p.tasks) > 0 {
			task := p.tasks[p.taskCursor]
			p.store.ArchiveTask(task.ID)
			return p, p.refreshTasks()
		}
	}
	return p, nil
}

func (p projectsModel) showProjectForm(edit bool) (projectsModel, tea.Cmd) {
	if edit {
		proj := p.projects[p.cursor]
		*p.formName = proj.Name
		*p.formStatus = proj.Status
		*p.formDeadline = ""
		if proj.Deadline != nil {
			*p.formDeadline = proj.Deadline.Format("2006-01-02")
		}
		p.formType = "edit_project"
		p.editingID = proj.ID
	} else {
		*p.formName = ""
		*p.formStatus = projectStatuses[0]
		*p.formDeadline = ""
		p.formType = "project"
	}

	statusOptions := make([]huh.Option[string], len(projectStatuses))
	for i, s := range projectStatuses {
		statusOptions[i] = huh.NewOption(s, s)
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Project Name").Value(p.formName),
			huh.NewSelect[string]().Title("Status").Options(statusOptions...).Value(p.formStatus),
			huh.NewInput().Title("Deadline (YYYY-MM-DD, empty for none)").Value(p.formDeadline),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p projectsModel) showNewTaskForm() (projectsModel, tea.Cmd) {
	*p.formName = ""
	*p.formAssignee = ""
	*p.formEstimate = ""
	p.formType = "task"

	assigneeOptions := []huh.Option[string]{huh.NewOption("unassigned", "")}
	for _, u := range p.users {
		assigneeOptions = append(assigneeOptions, huh.NewOption(u.Name, strconv.FormatInt(u.ID, 10)))
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task Name").Value(p.formName),
			huh.NewSelect[string]().Title("Assignee").Options(assigneeOptions...).Value(p.formAssignee),
			huh.NewInput().Title("Estimate (hours, empty for none)").Value(p.formEstimate),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p projectsModel) showTaskStatusForm() (projectsModel, tea.Cmd) {
	task := p.tasks[p.taskCursor]
	*p.formStatus = task.Status
	p.formType = "task_status"
	p.editingID = task.ID

	statusOptions := make([]huh.Option[string], len(taskStatuses))
	for i, s := range taskStatuses {
		statusOptions[i] = huh.NewOption(s, s)
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Status").Options(statusOptions...).Value(p.formStatus),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p projectsModel) updateForm(msg tea.Msg) (projectsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		switch p.formType {
		case "project":
			if *p.formName != "" {
				p.store.CreateProject(*p.formName, *p.formStatus, p.parsedDeadline())
			}
			return p, p.refresh()
		case "edit_project":
			if *p.formName != "" {
				p.store.UpdateProject(p.editingID, *p.formName, *p.formStatus, p.parsedDeadline())
			}
			return p, p.refresh()
		case "task":
			if *p.formName != "" && p.cursor < len(p.projects) {
				p.store.CreateTask(p.projects[p.cursor].ID, p.parsedAssignee(), *p.formName, p.parsedEstimate())
			}
			return p, p.refreshTasks()
		case "task_status":
			p.store.SetTaskStatus(p.editingID, *p.formStatus, nil)
			return p, p.refreshTasks()
		}
	}

	return p, cmd
}

func (p projectsModel) parsedDeadline() *time.Time {
	s := strings.TrimSpace(*p.formDeadline)
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

func (p projectsModel) parsedAssignee() *int64 {
	if *p.formAssignee == "" {
		return nil
	}
	id, err := strconv.ParseInt(*p.formAssignee, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

func (p projectsModel) parsedEstimate() *float64 {
	s := strings.TrimSpace(*p.formEstimate)
	if s == "" {
		return nil
	}
	est, err := strconv.ParseFloat(s, 64)
	if err != nil || est <= 0 {
		return nil
	}
	return &est
}

func (p projectsModel) view() string {
	if p.formActive && p.form != nil {
		title := titleStyle.Render("New Project")
		switch p.formType {
		case "edit_project":
			title = titleStyle.Render("Edit Project")
		case "task":
			title = titleStyle.Render("New Task")
		case "task_status":
			title = titleStyle.Render("Change Status")
		}
		formView := p.form.View()
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", formView)
		return panelStyle.Width(p.width - 4).Render(content)
	}

	if p.viewingTasks {
		return p.renderTaskView()
	}
	return p.renderProjectList()
}

func (p projectsModel) renderProjectList() string {
	w := p.width - 4
	title := titleStyle.Render("Projects")

	if len(p.projects) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No projects yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	header := mutedStyle.Render(fmt.Sprintf("  %-24s %-12s %-12s", "Name", "Status", "Deadline"))
	rows = append(rows, header)

	for i, proj := range p.projects {
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		deadline := "—"
		if proj.Deadline != nil {
			deadline = proj.Deadline.Format("2006-01-02")
		}
		row := style.Render(fmt.Sprintf("%s%-24s %-12s %-12s", cursor, proj.Name, proj.Status, deadline))
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: archive  enter: tasks"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (p projectsModel) renderTaskView() string {
	w := p.width - 4
	proj := p.projects[p.cursor]
	title := titleStyle.Render(proj.Name + " — Tasks")

	if len(p.tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tasks. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	userNames := make(map[int64]string, len(p.users))
	for _, u := range p.users {
		userNames[u.ID] = u.Name
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-28s %-12s %-14s %8s", "Task", "Status", "Assignee", "Estimate")))

	for i, task := range p.tasks {
		cursor := "  "
		style := normalItemStyle
		if i == p.taskCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		assignee := "—"
		if task.AssignedUserID != nil {
			if n, ok := userNames[*task.AssignedUserID]; ok {
				assignee = n
			}
		}
		estimate := "—"
		if task.EstimateHours != nil {
			estimate = fmt.Sprintf("%.1fh", *task.EstimateHours)
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-28s %-12s %-14s %8s",
			cursor, task.Name, taskStatusLabel(task.Status), assignee, estimate)))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new task  c: change status  d: archive  esc: back"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func taskStatusLabel(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}
