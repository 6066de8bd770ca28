package tui

import (
	"fmt"
	"time"

	"github.com/sadopc/teamtrack/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewReports
	viewProjects
	viewTeam
	viewSettings
)

var viewNames = []string{"Dashboard", "Reports", "Projects", "Team", "Settings"}

// --- Messages ---

type timerStartedMsg struct {
	interval *store.WorkInterval
}

type timerStoppedMsg struct {
	interval *store.WorkInterval
}

type intervalDiscardedMsg struct{}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

func formatHoursF(hours float64) string {
	return fmt.Sprintf("%.1fh", hours)
}

func errStatus(format string, args ...any) statusMsg {
	return statusMsg{text: fmt.Sprintf(format, args...), isError: true}
}
