package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/teamtrack/internal/analytics"
	"github.com/sadopc/teamtrack/internal/store"
)

// IntervalsToCSV writes raw work intervals with resolved user and project
// names.
func IntervalsToCSV(intervals []store.WorkInterval, users map[int64]*store.User, projects map[int64]*store.Project, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"ID", "User", "Project", "Start", "End", "Duration (s)", "Duration", "Note"}); err != nil {
		return err
	}

	for _, iv := range intervals {
		endStr := ""
		if iv.EndTime != nil {
			endStr = iv.EndTime.UTC().Format(time.RFC3339)
		}
		durSec := int64(iv.Duration().Seconds())

		row := []string{
			fmt.Sprintf("%d", iv.ID),
			lookupUser(users, iv.UserID),
			lookupProject(projects, iv.ProjectID),
			iv.StartTime.UTC().Format(time.RFC3339),
			endStr,
			fmt.Sprintf("%d", durSec),
			formatDuration(durSec),
			iv.Note,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

// SummaryToCSV writes the per-day then per-project sections of a summary
// report as two CSV blocks separated by a blank row.
func SummaryToCSV(rep *analytics.SummaryReport, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"Date", "Hours", "Users", "Projects", "Tasks", "Completed"}); err != nil {
		return err
	}
	for _, d := range rep.Days {
		row := []string{
			d.Date,
			fmt.Sprintf("%.2f", d.Hours),
			fmt.Sprintf("%d", d.Users),
			fmt.Sprintf("%d", d.Projects),
			fmt.Sprintf("%d", d.Tasks),
			fmt.Sprintf("%d", d.CompletedTasks),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	if err := w.Write([]string{""}); err != nil {
		return err
	}
	if err := w.Write([]string{"Project", "Hours", "Users", "Tasks", "Completed", "Completion %"}); err != nil {
		return err
	}
	for _, p := range rep.Projects {
		row := []string{
			p.Name,
			fmt.Sprintf("%.2f", p.Hours),
			fmt.Sprintf("%d", p.Users),
			fmt.Sprintf("%d", p.Tasks),
			fmt.Sprintf("%d", p.CompletedTasks),
			fmt.Sprintf("%.2f", p.Completion),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
