package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sadopc/teamtrack/internal/analytics"
)

// Analytics returns the read-only view of the store the report engine
// consumes. The adapter issues the four analytics queries; it never writes.
func (s *Store) Analytics() analytics.Source {
	return &analyticsSource{s: s}
}

type analyticsSource struct {
	s *Store
}

// Intervals returns completed work intervals lying entirely inside the
// window. The same containment rule is applied again during aggregation,
// so the query is a pre-filter, not the contract.
func (a *analyticsSource) Intervals(ctx context.Context, w analytics.Window, f analytics.Filters) ([]analytics.Interval, error) {
	query := `SELECT id, user_id, project_id, task_id, start_time, end_time, note
	          FROM work_intervals
	          WHERE end_time IS NOT NULL AND start_time >= ? AND end_time <= ?`
	args := []any{w.Start.UTC().Format(time.RFC3339), w.End.UTC().Format(time.RFC3339)}

	if f.ProjectID != nil {
		query += ` AND project_id = ?`
		args = append(args, *f.ProjectID)
	}
	if f.UserID != nil {
		query += ` AND user_id = ?`
		args = append(args, *f.UserID)
	}
	query += ` ORDER BY start_time, id`

	rows, err := a.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query intervals: %w", err)
	}
	defer rows.Close()

	var intervals []analytics.Interval
	for rows.Next() {
		var iv analytics.Interval
		var userID, projectID, taskID sql.NullInt64
		var start, end string
		if err := rows.Scan(&iv.ID, &userID, &projectID, &taskID, &start, &end, &iv.Note); err != nil {
			return nil, err
		}
		if userID.Valid {
			iv.UserID = &userID.Int64
		}
		if projectID.Valid {
			iv.ProjectID = &projectID.Int64
		}
		if taskID.Valid {
			iv.TaskID = &taskID.Int64
		}
		iv.Start, _ = time.Parse(time.RFC3339, start)
		iv.End, _ = time.Parse(time.RFC3339, end)
		intervals = append(intervals, iv)
	}
	return intervals, rows.Err()
}

func (a *analyticsSource) Tasks(ctx context.Context, projectID *int64) ([]analytics.Task, error) {
	query := `SELECT id, project_id, assigned_user_id, name, status, estimate_hours FROM tasks`
	var args []any
	if projectID != nil {
		query += ` WHERE project_id = ?`
		args = append(args, *projectID)
	}
	query += ` ORDER BY id`

	rows, err := a.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []analytics.Task
	for rows.Next() {
		var t analytics.Task
		var status string
		var assignee sql.NullInt64
		var estimate sql.NullFloat64
		if err := rows.Scan(&t.ID, &t.ProjectID, &assignee, &t.Name, &status, &estimate); err != nil {
			return nil, err
		}
		t.Status = analytics.TaskStatus(status)
		if assignee.Valid {
			t.AssignedUserID = &assignee.Int64
		}
		if estimate.Valid {
			t.EstimateHours = &estimate.Float64
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (a *analyticsSource) Projects(ctx context.Context) ([]analytics.Project, error) {
	rows, err := a.s.db.QueryContext(ctx,
		`SELECT id, name, status, deadline FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var projects []analytics.Project
	for rows.Next() {
		var p analytics.Project
		var deadline sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &p.Status, &deadline); err != nil {
			return nil, err
		}
		if deadline.Valid {
			t, _ := time.Parse(time.RFC3339, deadline.String)
			p.Deadline = &t
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (a *analyticsSource) Users(ctx context.Context) ([]analytics.User, error) {
	rows, err := a.s.db.QueryContext(ctx,
		`SELECT id, name, role FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []analytics.User
	for rows.Next() {
		var u analytics.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Role); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
