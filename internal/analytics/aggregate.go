package analytics

import (
	"sort"
	"time"
)

// The accumulators below are a pure fold over the window-filtered interval
// set. They are rebuilt from scratch on every report call and never shared.
//
// Attribution rules: an interval counts only if it lies entirely inside the
// window, and its whole duration goes to the hour and calendar date of its
// start time. An interval spanning multiple hours is not split.

type hourBucket struct {
	hours         float64
	users         map[int64]struct{}
	estimateHours float64 // summed per log so repeated sessions weigh in repeatedly
	tasks         map[int64]struct{}
}

type dayBucket struct {
	hours    float64
	users    map[int64]struct{}
	projects map[int64]struct{}
	tasks    map[int64]struct{}
}

type userAcc struct {
	hours     float64
	byDay     map[string]float64
	byProject map[int64]float64
	byHour    [24]float64
	tasks     map[int64]struct{}
	sessions  int
}

// cellAcc accumulates one (project, user) pair for the drill-down views.
type cellAcc struct {
	hours float64
	tasks map[int64]struct{}
}

type projectAcc struct {
	hours  float64
	users  map[int64]struct{}
	tasks  map[int64]struct{}
	byUser map[int64]*cellAcc
}

type aggregate struct {
	loc        *time.Location
	hours      [24]*hourBucket
	days       map[string]*dayBucket
	users      map[int64]*userAcc
	projects   map[int64]*projectAcc
	totalHours float64
	sessions   int
}

func buildAggregate(snap *Snapshot, w Window, loc *time.Location) *aggregate {
	if loc == nil {
		loc = time.UTC
	}
	agg := &aggregate{
		loc:      loc,
		days:     make(map[string]*dayBucket),
		users:    make(map[int64]*userAcc),
		projects: make(map[int64]*projectAcc),
	}
	for i := range agg.hours {
		agg.hours[i] = &hourBucket{
			users: make(map[int64]struct{}),
			tasks: make(map[int64]struct{}),
		}
	}
	for _, iv := range snap.Intervals {
		if !w.Contains(iv.Start, iv.End) {
			continue
		}
		agg.add(iv, snap)
	}
	return agg
}

func (a *aggregate) add(iv Interval, snap *Snapshot) {
	hours := iv.Hours()
	start := iv.Start.In(a.loc)
	hour := start.Hour()
	day := start.Format("2006-01-02")

	a.totalHours += hours
	a.sessions++

	hb := a.hours[hour]
	hb.hours += hours
	if iv.UserID != nil {
		hb.users[*iv.UserID] = struct{}{}
	}
	if iv.TaskID != nil {
		hb.tasks[*iv.TaskID] = struct{}{}
		if t, ok := snap.task(*iv.TaskID); ok && t.EstimateHours != nil {
			hb.estimateHours += *t.EstimateHours
		}
	}

	db := a.day(day)
	db.hours += hours
	if iv.UserID != nil {
		db.users[*iv.UserID] = struct{}{}
	}
	if iv.ProjectID != nil {
		db.projects[*iv.ProjectID] = struct{}{}
	}
	if iv.TaskID != nil {
		db.tasks[*iv.TaskID] = struct{}{}
	}

	if iv.UserID != nil {
		u := a.user(*iv.UserID)
		u.hours += hours
		u.byDay[day] += hours
		u.byHour[hour] += hours
		u.sessions++
		if iv.ProjectID != nil {
			u.byProject[*iv.ProjectID] += hours
		}
		if iv.TaskID != nil {
			u.tasks[*iv.TaskID] = struct{}{}
		}
	}

	if iv.ProjectID != nil {
		p := a.project(*iv.ProjectID)
		p.hours += hours
		if iv.TaskID != nil {
			p.tasks[*iv.TaskID] = struct{}{}
		}
		if iv.UserID != nil {
			p.users[*iv.UserID] = struct{}{}
			c := p.byUser[*iv.UserID]
			if c == nil {
				c = &cellAcc{tasks: make(map[int64]struct{})}
				p.byUser[*iv.UserID] = c
			}
			c.hours += hours
			if iv.TaskID != nil {
				c.tasks[*iv.TaskID] = struct{}{}
			}
		}
	}
}

func (a *aggregate) day(date string) *dayBucket {
	db := a.days[date]
	if db == nil {
		db = &dayBucket{
			users:    make(map[int64]struct{}),
			projects: make(map[int64]struct{}),
			tasks:    make(map[int64]struct{}),
		}
		a.days[date] = db
	}
	return db
}

func (a *aggregate) user(id int64) *userAcc {
	u := a.users[id]
	if u == nil {
		u = &userAcc{
			byDay:     make(map[string]float64),
			byProject: make(map[int64]float64),
			tasks:     make(map[int64]struct{}),
		}
		a.users[id] = u
	}
	return u
}

func (a *aggregate) project(id int64) *projectAcc {
	p := a.projects[id]
	if p == nil {
		p = &projectAcc{
			users:  make(map[int64]struct{}),
			tasks:  make(map[int64]struct{}),
			byUser: make(map[int64]*cellAcc),
		}
		a.projects[id] = p
	}
	return p
}

// sortedDates returns the day bucket keys in ascending calendar order.
// Peak-day selection iterates this slice and keeps the first strict
// maximum, so ties resolve to the earliest date no matter what order the
// intervals arrived in.
func (a *aggregate) sortedDates() []string {
	dates := make([]string, 0, len(a.days))
	for d := range a.days {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// completedIn counts distinct completed tasks in a task set. Counting over
// the set rather than per interval is what keeps a task logged five times
// from being completed five times.
func completedIn(tasks map[int64]struct{}, snap *Snapshot) int {
	n := 0
	for id := range tasks {
		if t, ok := snap.task(id); ok && t.Status == StatusCompleted {
			n++
		}
	}
	return n
}

// estimateOf sums estimate hours across a distinct task set.
func estimateOf(tasks map[int64]struct{}, snap *Snapshot) float64 {
	var sum float64
	for id := range tasks {
		if t, ok := snap.task(id); ok && t.EstimateHours != nil {
			sum += *t.EstimateHours
		}
	}
	return sum
}

func sortedIDs(m map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func dailySeries(byDay map[string]float64) []float64 {
	dates := make([]string, 0, len(byDay))
	for d := range byDay {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	series := make([]float64, 0, len(dates))
	for _, d := range dates {
		series = append(series, byDay[d])
	}
	return series
}
