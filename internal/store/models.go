package store

import "time"

// Task status columns. Status changes go through SetTaskStatus so the
// journal stays complete.
const (
	StatusToDo       = "todo"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusBlocked    = "blocked"
	StatusReview     = "review"
)

// MinIntervalDuration is the shortest work interval worth keeping.
// Enforced when an interval is created or a timer is stopped, never
// re-checked afterwards.
const MinIntervalDuration = 60 * time.Second

type User struct {
	ID        int64
	Name      string
	Role      string
	Archived  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Project struct {
	ID        int64
	Name      string
	Status    string
	Deadline  *time.Time
	Archived  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Task struct {
	ID             int64
	ProjectID      int64
	AssignedUserID *int64
	Name           string
	Status         string
	EstimateHours  *float64
	Archived       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// WorkInterval is one logged work session. User, project and task are weak
// references; any of them may be absent. A nil EndTime means the timer is
// still running.
type WorkInterval struct {
	ID        int64
	UserID    *int64
	ProjectID *int64
	TaskID    *int64
	StartTime time.Time
	EndTime   *time.Time
	Note      string
	CreatedAt time.Time
}

// Duration is derived, never stored.
func (w WorkInterval) Duration() time.Duration {
	if w.EndTime == nil {
		return 0
	}
	return w.EndTime.Sub(w.StartTime)
}

// StatusChange is one row of the append-only task status journal.
type StatusChange struct {
	ID        int64
	TaskID    int64
	ChangedBy *int64
	OldStatus string
	NewStatus string
	ChangedAt time.Time
}

type Setting struct {
	Key   string
	Value string
}

// IntervalFilter is used to filter work intervals in queries.
type IntervalFilter struct {
	UserID    *int64
	ProjectID *int64
	TaskID    *int64
	From      *time.Time
	To        *time.Time
	Limit     int
}
