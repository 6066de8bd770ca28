package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/teamtrack/internal/store"
)

var teamRoles = []string{"developer", "designer", "manager", "qa", "other"}

type teamModel struct {
	store  *store.Store
	width  int
	height int

	users  []store.User
	cursor int

	formActive bool
	form       *huh.Form
	editing    bool
	editingID  int64

	formName *string
	formRole *string
}

func newTeamModel(s *store.Store) teamModel {
	name, role := "", teamRoles[0]
	return teamModel{
		store:    s,
		formName: &name,
		formRole: &role,
	}
}

func (m *teamModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type teamDataMsg struct {
	users []store.User
}

func (m teamModel) refresh() tea.Cmd {
	return func() tea.Msg {
		users, _ := m.store.ListUsers(false)
		return teamDataMsg{users: users}
	}
}

func (m teamModel) update(msg tea.Msg) (teamModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case teamDataMsg:
		m.users = msg.users
		if m.cursor >= len(m.users) {
			m.cursor = max(0, len(m.users)-1)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.users)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.New):
			return m.showForm(false)
		case key.Matches(msg, keys.Edit):
			if len(m.users) > 0 {
				return m.showForm(true)
			}
		case key.Matches(msg, keys.Delete):
			if len(m.users) > 0 {
				m.store.ArchiveUser(m.users[m.cursor].ID)
				return m, m.refresh()
			}
		}
	}
	return m, nil
}

func (m teamModel) showForm(edit bool) (teamModel, tea.Cmd) {
	if edit {
		u := m.users[m.cursor]
		*m.formName = u.Name
		*m.formRole = u.Role
		m.editingID = u.ID
	} else {
		*m.formName = ""
		*m.formRole = teamRoles[0]
	}
	m.editing = edit

	roleOptions := make([]huh.Option[string], len(teamRoles))
	for i, r := range teamRoles {
		roleOptions[i] = huh.NewOption(r, r)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(m.formName),
			huh.NewSelect[string]().Title("Role").Options(roleOptions...).Value(m.formRole),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m teamModel) updateForm(msg tea.Msg) (teamModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		if *m.formName != "" {
			if m.editing {
				m.store.UpdateUser(m.editingID, *m.formName, *m.formRole)
			} else {
				m.store.CreateUser(*m.formName, *m.formRole)
			}
		}
		return m, m.refresh()
	}

	return m, cmd
}

func (m teamModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Team Member")
		if m.editing {
			title = titleStyle.Render("Edit Team Member")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Team")

	if len(m.users) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No team members yet. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-24s %-14s", "Name", "Role")))

	for i, u := range m.users {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-24s %-14s", cursor, u.Name, u.Role)))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: archive"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
