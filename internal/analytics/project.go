package analytics

import (
	"fmt"
	"sort"
	"time"
)

type ProjectRow struct {
	ProjectID      int64      `json:"project_id"`
	Name           string     `json:"name"`
	Status         string     `json:"status,omitempty"`
	Hours          float64    `json:"hours"`
	EstimatedHours float64    `json:"estimated_hours"`
	Efficiency     float64    `json:"efficiency"`
	Users          int        `json:"users"`
	Tasks          int        `json:"tasks"`
	CompletedTasks int        `json:"completed_tasks"`
	Completion     float64    `json:"completion"`
	Deadline       *time.Time `json:"deadline,omitempty"`
	Overdue        bool       `json:"overdue"`
}

type ProjectReport struct {
	Window Window       `json:"window"`
	Sort   SortKey      `json:"sort"`
	Rows   []ProjectRow `json:"rows"`
}

type ProjectUserRow struct {
	UserID         int64   `json:"user_id"`
	Name           string  `json:"name"`
	Hours          float64 `json:"hours"`
	Tasks          int     `json:"tasks"`
	CompletedTasks int     `json:"completed_tasks"`
	Efficiency     float64 `json:"efficiency"`
}

type ProjectDetail struct {
	ProjectRow
	UserBreakdown []ProjectUserRow `json:"user_breakdown"`
}

// buildProjects emits one row per project with logged time in the window.
// Estimated hours sum over the project's distinct tasks touched in the
// window, so a task logged many times is estimated once. Overdue compares
// the deadline against the window end, which is "now" for live reports.
func buildProjects(agg *aggregate, snap *Snapshot, w Window, key SortKey) *ProjectReport {
	rep := &ProjectReport{Window: w, Sort: key, Rows: []ProjectRow{}}

	for _, id := range sortedProjectIDs(agg) {
		rep.Rows = append(rep.Rows, projectRow(id, agg.projects[id], snap, w))
	}
	sortProjectRows(rep.Rows, key)
	return rep
}

func projectRow(id int64, p *projectAcc, snap *Snapshot, w Window) ProjectRow {
	estimated := estimateOf(p.tasks, snap)
	completed := completedIn(p.tasks, snap)

	row := ProjectRow{
		ProjectID:      id,
		Name:           snap.projectName(id),
		Hours:          Round2(p.hours),
		EstimatedHours: Round2(estimated),
		Efficiency:     Round2(Efficiency(p.hours, estimated)),
		Users:          len(p.users),
		Tasks:          len(p.tasks),
		CompletedTasks: completed,
		Completion:     Round2(CompletionRate(completed, len(p.tasks))),
	}
	if meta, ok := snap.projectByID[id]; ok {
		row.Status = meta.Status
		row.Deadline = meta.Deadline
		row.Overdue = meta.Deadline != nil && meta.Deadline.Before(w.End)
	}
	return row
}

// buildProjectDetail is the drill-down to a single project's per-user
// breakdown, sorted descending by hours.
func buildProjectDetail(agg *aggregate, snap *Snapshot, w Window, projectID int64) (*ProjectDetail, error) {
	if _, ok := snap.projectByID[projectID]; !ok {
		return nil, fmt.Errorf("project %d: %w", projectID, ErrNotFound)
	}

	p := agg.projects[projectID]
	if p == nil {
		// No logged time in the window: an empty but valid breakdown.
		p = &projectAcc{
			users:  map[int64]struct{}{},
			tasks:  map[int64]struct{}{},
			byUser: map[int64]*cellAcc{},
		}
	}

	detail := &ProjectDetail{
		ProjectRow:    projectRow(projectID, p, snap, w),
		UserBreakdown: []ProjectUserRow{},
	}

	for _, uid := range sortedCellUsers(p.byUser) {
		c := p.byUser[uid]
		est := estimateOf(c.tasks, snap)
		detail.UserBreakdown = append(detail.UserBreakdown, ProjectUserRow{
			UserID:         uid,
			Name:           snap.userName(uid),
			Hours:          Round2(c.hours),
			Tasks:          len(c.tasks),
			CompletedTasks: completedIn(c.tasks, snap),
			Efficiency:     Round2(Efficiency(c.hours, est)),
		})
	}
	sort.SliceStable(detail.UserBreakdown, func(i, j int) bool {
		if detail.UserBreakdown[i].Hours != detail.UserBreakdown[j].Hours {
			return detail.UserBreakdown[i].Hours > detail.UserBreakdown[j].Hours
		}
		return detail.UserBreakdown[i].Name < detail.UserBreakdown[j].Name
	})
	return detail, nil
}

func sortedCellUsers(m map[int64]*cellAcc) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortProjectRows(rows []ProjectRow, key SortKey) {
	less := func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch key {
		case SortName:
			return a.Name < b.Name
		case SortEfficiency:
			if a.Efficiency != b.Efficiency {
				return a.Efficiency > b.Efficiency
			}
		case SortCompletion:
			if a.Completion != b.Completion {
				return a.Completion > b.Completion
			}
		default: // hours
			if a.Hours != b.Hours {
				return a.Hours > b.Hours
			}
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ProjectID < b.ProjectID
	}
	sort.SliceStable(rows, less)
}
