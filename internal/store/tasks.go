package store

import (
	"database/sql"
	"fmt"
	"time"
)

var validStatuses = map[string]bool{
	StatusToDo:       true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusBlocked:    true,
	StatusReview:     true,
}

func (s *Store) CreateTask(projectID int64, assignedUserID *int64, name string, estimateHours *float64) (*Task, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO tasks (project_id, assigned_user_id, name, status, estimate_hours, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		projectID, assignedUserID, name, StatusToDo, estimateHours, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetTask(id)
}

func (s *Store) GetTask(id int64) (*Task, error) {
	t := &Task{}
	var createdAt, updatedAt string
	var assignee sql.NullInt64
	var estimate sql.NullFloat64
	var archived int
	err := s.db.QueryRow(
		`SELECT id, project_id, assigned_user_id, name, status, estimate_hours, archived, created_at, updated_at
		 FROM tasks WHERE id = ?`, id,
	).Scan(&t.ID, &t.ProjectID, &assignee, &t.Name, &t.Status, &estimate, &archived, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	if assignee.Valid {
		t.AssignedUserID = &assignee.Int64
	}
	if estimate.Valid {
		t.EstimateHours = &estimate.Float64
	}
	t.Archived = archived == 1
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	t.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return t, nil
}

func (s *Store) ListTasks(projectID *int64, includeArchived bool) ([]Task, error) {
	query := `SELECT id, project_id, assigned_user_id, name, status, estimate_hours, archived, created_at, updated_at
	          FROM tasks WHERE 1=1`
	var args []any
	if projectID != nil {
		query += ` AND project_id = ?`
		args = append(args, *projectID)
	}
	if !includeArchived {
		query += ` AND archived = 0`
	}
	query += ` ORDER BY project_id, name`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		var createdAt, updatedAt string
		var assignee sql.NullInt64
		var estimate sql.NullFloat64
		var archived int
		if err := rows.Scan(&t.ID, &t.ProjectID, &assignee, &t.Name, &t.Status, &estimate, &archived, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if assignee.Valid {
			t.AssignedUserID = &assignee.Int64
		}
		if estimate.Valid {
			t.EstimateHours = &estimate.Float64
		}
		t.Archived = archived == 1
		t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		t.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) UpdateTask(id int64, name string, assignedUserID *int64, estimateHours *float64) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`UPDATE tasks SET name = ?, assigned_user_id = ?, estimate_hours = ?, updated_at = ? WHERE id = ?`,
		name, assignedUserID, estimateHours, now, id,
	)
	return err
}

// SetTaskStatus moves a task to a new status and appends the change to the
// status journal in the same transaction. A no-op transition writes no
// journal row.
func (s *Store) SetTaskStatus(id int64, newStatus string, changedBy *int64) error {
	if !validStatuses[newStatus] {
		return fmt.Errorf("set task status: unknown status %q", newStatus)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("set task status: %w", err)
	}
	defer tx.Rollback()

	var oldStatus string
	if err := tx.QueryRow(`SELECT status FROM tasks WHERE id = ?`, id).Scan(&oldStatus); err != nil {
		return fmt.Errorf("set task status %d: %w", id, err)
	}
	if oldStatus == newStatus {
		return nil
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(
		`UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`,
		newStatus, now, id,
	); err != nil {
		return fmt.Errorf("set task status %d: %w", id, err)
	}
	if _, err := tx.Exec(
		`INSERT INTO status_history (task_id, changed_by, old_status, new_status, changed_at) VALUES (?, ?, ?, ?, ?)`,
		id, changedBy, oldStatus, newStatus, now,
	); err != nil {
		return fmt.Errorf("journal status change %d: %w", id, err)
	}
	return tx.Commit()
}

func (s *Store) ArchiveTask(id int64) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`UPDATE tasks SET archived = 1, updated_at = ? WHERE id = ?`, now, id,
	)
	return err
}
