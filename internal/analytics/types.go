// Package analytics turns raw work-interval records into per-project,
// per-user and work-pattern productivity reports. Everything here is a pure
// computation over a per-call snapshot of store rows; nothing is cached
// between report builds.
package analytics

import "time"

// TaskStatus is the board column a task sits in. Only StatusCompleted
// affects aggregation.
type TaskStatus string

const (
	StatusToDo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusBlocked    TaskStatus = "blocked"
	StatusReview     TaskStatus = "review"
)

// Interval is one logged work session. The user, project and task
// references are optional weak references; a nil reference simply skips
// the corresponding accumulator.
type Interval struct {
	ID        int64
	UserID    *int64
	ProjectID *int64
	TaskID    *int64
	Start     time.Time
	End       time.Time
	Note      string
}

// Hours returns the interval duration in fractional hours.
func (iv Interval) Hours() float64 {
	return iv.End.Sub(iv.Start).Hours()
}

// Task carries the fields aggregation cares about: completion status and
// the optional estimate.
type Task struct {
	ID             int64
	ProjectID      int64
	AssignedUserID *int64
	Name           string
	Status         TaskStatus
	EstimateHours  *float64
}

type Project struct {
	ID       int64
	Name     string
	Status   string
	Deadline *time.Time
}

type User struct {
	ID   int64
	Name string
	Role string
}

// Filters narrows a report to a single project and/or user.
type Filters struct {
	ProjectID *int64
	UserID    *int64
}

// SortKey orders report rows. Numeric keys sort descending (highest first);
// SortName sorts ascending. Ties always break on name then id so the same
// input yields the same output.
type SortKey string

const (
	SortHours        SortKey = "hours"
	SortEfficiency   SortKey = "efficiency"
	SortCompletion   SortKey = "completion"
	SortProductivity SortKey = "productivity"
	SortConsistency  SortKey = "consistency"
	SortName         SortKey = "name"
)
