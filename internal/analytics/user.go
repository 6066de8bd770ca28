package analytics

import (
	"fmt"
	"sort"
)

// WorkPattern summarizes when and how a user works inside the window.
type WorkPattern struct {
	PeakDay         string  `json:"peak_day,omitempty"`
	PeakHour        int     `json:"peak_hour"`
	AvgSessionHours float64 `json:"avg_session_hours"`
	Sessions        int     `json:"sessions"`
}

type UserRow struct {
	UserID         int64       `json:"user_id"`
	Name           string      `json:"name"`
	Role           string      `json:"role,omitempty"`
	Hours          float64     `json:"hours"`
	AvgHoursPerDay float64     `json:"avg_hours_per_day"`
	Projects       int         `json:"projects"`
	Tasks          int         `json:"tasks"`
	CompletedTasks int         `json:"completed_tasks"`
	Efficiency     float64     `json:"efficiency"`
	Productivity   float64     `json:"productivity"`
	Consistency    float64     `json:"consistency"`
	Pattern        WorkPattern `json:"pattern"`
}

type UserReport struct {
	Window Window    `json:"window"`
	Sort   SortKey   `json:"sort"`
	Rows   []UserRow `json:"rows"`
}

type UserProjectRow struct {
	ProjectID      int64   `json:"project_id"`
	Name           string  `json:"name"`
	Hours          float64 `json:"hours"`
	Tasks          int     `json:"tasks"`
	CompletedTasks int     `json:"completed_tasks"`
	Efficiency     float64 `json:"efficiency"`
}

type UserDetail struct {
	UserRow
	ProjectBreakdown []UserProjectRow `json:"project_breakdown"`
}

func buildUsers(agg *aggregate, snap *Snapshot, w Window, key SortKey) *UserReport {
	rep := &UserReport{Window: w, Sort: key, Rows: []UserRow{}}

	for _, id := range sortedUserIDs(agg) {
		rep.Rows = append(rep.Rows, userRow(id, agg.users[id], snap))
	}
	sortUserRows(rep.Rows, key)
	return rep
}

func userRow(id int64, u *userAcc, snap *Snapshot) UserRow {
	estimated := estimateOf(u.tasks, snap)
	completed := completedIn(u.tasks, snap)

	row := UserRow{
		UserID:         id,
		Name:           snap.userName(id),
		Hours:          Round2(u.hours),
		Projects:       len(u.byProject),
		Tasks:          len(u.tasks),
		CompletedTasks: completed,
		Efficiency:     Round2(Efficiency(u.hours, estimated)),
		Productivity:   Round2(Productivity(completed, u.hours)),
		Consistency:    Round2(Consistency(dailySeries(u.byDay))),
		Pattern:        workPattern(u),
	}
	if meta, ok := snap.userByID[id]; ok {
		row.Role = meta.Role
	}
	if len(u.byDay) > 0 {
		row.AvgHoursPerDay = Round2(u.hours / float64(len(u.byDay)))
	}
	return row
}

// workPattern picks the user's peak day and peak hour deterministically:
// days are walked in ascending calendar order and hours from 0 to 23, the
// first strict maximum wins.
func workPattern(u *userAcc) WorkPattern {
	wp := WorkPattern{Sessions: u.sessions}

	dates := make([]string, 0, len(u.byDay))
	for d := range u.byDay {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	var peak float64
	for _, d := range dates {
		if u.byDay[d] > peak {
			peak = u.byDay[d]
			wp.PeakDay = d
		}
	}

	var peakHour float64
	for h, v := range u.byHour {
		if v > peakHour {
			peakHour = v
			wp.PeakHour = h
		}
	}

	if u.sessions > 0 {
		wp.AvgSessionHours = Round2(u.hours / float64(u.sessions))
	}
	return wp
}

// buildUserDetail is the drill-down to a single user's per-project
// breakdown, sorted descending by hours. Task sets per project come from
// the project accumulators, which track each (project, user) pair.
func buildUserDetail(agg *aggregate, snap *Snapshot, w Window, userID int64) (*UserDetail, error) {
	if _, ok := snap.userByID[userID]; !ok {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}

	u := agg.users[userID]
	if u == nil {
		u = &userAcc{
			byDay:     map[string]float64{},
			byProject: map[int64]float64{},
			tasks:     map[int64]struct{}{},
		}
	}

	detail := &UserDetail{
		UserRow:          userRow(userID, u, snap),
		ProjectBreakdown: []UserProjectRow{},
	}

	pids := make([]int64, 0, len(u.byProject))
	for pid := range u.byProject {
		pids = append(pids, pid)
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })

	for _, pid := range pids {
		row := UserProjectRow{
			ProjectID: pid,
			Name:      snap.projectName(pid),
			Hours:     Round2(u.byProject[pid]),
		}
		if p := agg.projects[pid]; p != nil {
			if c := p.byUser[userID]; c != nil {
				est := estimateOf(c.tasks, snap)
				row.Tasks = len(c.tasks)
				row.CompletedTasks = completedIn(c.tasks, snap)
				row.Efficiency = Round2(Efficiency(c.hours, est))
			}
		}
		detail.ProjectBreakdown = append(detail.ProjectBreakdown, row)
	}
	sort.SliceStable(detail.ProjectBreakdown, func(i, j int) bool {
		if detail.ProjectBreakdown[i].Hours != detail.ProjectBreakdown[j].Hours {
			return detail.ProjectBreakdown[i].Hours > detail.ProjectBreakdown[j].Hours
		}
		return detail.ProjectBreakdown[i].Name < detail.ProjectBreakdown[j].Name
	})
	return detail, nil
}

func sortUserRows(rows []UserRow, key SortKey) {
	less := func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch key {
		case SortName:
			return a.Name < b.Name
		case SortEfficiency:
			if a.Efficiency != b.Efficiency {
				return a.Efficiency > b.Efficiency
			}
		case SortProductivity:
			if a.Productivity != b.Productivity {
				return a.Productivity > b.Productivity
			}
		case SortConsistency:
			if a.Consistency != b.Consistency {
				return a.Consistency > b.Consistency
			}
		default: // hours
			if a.Hours != b.Hours {
				return a.Hours > b.Hours
			}
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.UserID < b.UserID
	}
	sort.SliceStable(rows, less)
}
