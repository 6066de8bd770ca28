package analytics

import "sort"

type DaySummary struct {
	Date           string  `json:"date"`
	Hours          float64 `json:"hours"`
	Users          int     `json:"users"`
	Projects       int     `json:"projects"`
	Tasks          int     `json:"tasks"`
	CompletedTasks int     `json:"completed_tasks"`
}

type ProjectSummary struct {
	ProjectID      int64   `json:"project_id"`
	Name           string  `json:"name"`
	Hours          float64 `json:"hours"`
	Users          int     `json:"users"`
	Tasks          int     `json:"tasks"`
	CompletedTasks int     `json:"completed_tasks"`
	Completion     float64 `json:"completion"`
}

type SummaryReport struct {
	Window         Window           `json:"window"`
	TotalHours     float64          `json:"total_hours"`
	AvgHoursPerDay float64          `json:"avg_hours_per_day"`
	PeakDay        string           `json:"peak_day,omitempty"`
	PeakDayHours   float64          `json:"peak_day_hours"`
	Days           []DaySummary     `json:"days"`
	Projects       []ProjectSummary `json:"projects"`
}

// buildSummary assembles the per-day breakdown (ascending by date), the
// per-project summary (descending by hours) and the top-level scalars.
// Average hours per day divides by the number of days that saw any work,
// not the calendar length of the window.
func buildSummary(agg *aggregate, snap *Snapshot, w Window) *SummaryReport {
	rep := &SummaryReport{
		Window:   w,
		Days:     []DaySummary{},
		Projects: []ProjectSummary{},
	}

	dates := agg.sortedDates()
	var peakHours float64
	for _, date := range dates {
		db := agg.days[date]
		rep.Days = append(rep.Days, DaySummary{
			Date:           date,
			Hours:          Round2(db.hours),
			Users:          len(db.users),
			Projects:       len(db.projects),
			Tasks:          len(db.tasks),
			CompletedTasks: completedIn(db.tasks, snap),
		})
		if db.hours > peakHours {
			peakHours = db.hours
			rep.PeakDay = date
		}
	}

	rep.TotalHours = Round2(agg.totalHours)
	rep.PeakDayHours = Round2(peakHours)
	if len(dates) > 0 {
		rep.AvgHoursPerDay = Round2(agg.totalHours / float64(len(dates)))
	}

	for _, id := range sortedProjectIDs(agg) {
		p := agg.projects[id]
		completed := completedIn(p.tasks, snap)
		rep.Projects = append(rep.Projects, ProjectSummary{
			ProjectID:      id,
			Name:           snap.projectName(id),
			Hours:          Round2(p.hours),
			Users:          len(p.users),
			Tasks:          len(p.tasks),
			CompletedTasks: completed,
			Completion:     Round2(CompletionRate(completed, len(p.tasks))),
		})
	}
	sort.SliceStable(rep.Projects, func(i, j int) bool {
		if rep.Projects[i].Hours != rep.Projects[j].Hours {
			return rep.Projects[i].Hours > rep.Projects[j].Hours
		}
		return rep.Projects[i].Name < rep.Projects[j].Name
	})

	return rep
}

func sortedProjectIDs(agg *aggregate) []int64 {
	ids := make([]int64, 0, len(agg.projects))
	for id := range agg.projects {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedUserIDs(agg *aggregate) []int64 {
	ids := make([]int64, 0, len(agg.users))
	for id := range agg.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
