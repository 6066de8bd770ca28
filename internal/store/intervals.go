package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrIntervalTooShort is returned when a stopped or inserted interval is
// below MinIntervalDuration. The interval is not kept.
var ErrIntervalTooShort = errors.New("interval shorter than minimum duration")

// StartInterval opens a running work interval. Project, task and user are
// all optional references.
func (s *Store) StartInterval(userID, projectID, taskID *int64) (*WorkInterval, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO work_intervals (user_id, project_id, task_id, start_time, created_at) VALUES (?, ?, ?, ?, ?)`,
		userID, projectID, taskID, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("start interval: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetInterval(id)
}

// StopInterval closes a running interval. Sessions shorter than
// MinIntervalDuration are discarded and ErrIntervalTooShort is returned.
func (s *Store) StopInterval(id int64) (*WorkInterval, error) {
	now := time.Now().UTC()

	var startStr string
	err := s.db.QueryRow(`SELECT start_time FROM work_intervals WHERE id = ?`, id).Scan(&startStr)
	if err != nil {
		return nil, fmt.Errorf("get interval start: %w", err)
	}
	start, _ := time.Parse(time.RFC3339, startStr)

	if now.Sub(start) < MinIntervalDuration {
		if _, err := s.db.Exec(`DELETE FROM work_intervals WHERE id = ?`, id); err != nil {
			return nil, fmt.Errorf("discard short interval: %w", err)
		}
		return nil, ErrIntervalTooShort
	}

	_, err = s.db.Exec(
		`UPDATE work_intervals SET end_time = ? WHERE id = ?`,
		now.Format(time.RFC3339), id,
	)
	if err != nil {
		return nil, fmt.Errorf("stop interval: %w", err)
	}
	return s.GetInterval(id)
}

// AddInterval inserts a completed interval with explicit bounds, for
// manual entry and imports. The same minimum-duration guard applies.
func (s *Store) AddInterval(userID, projectID, taskID *int64, start, end time.Time, note string) (*WorkInterval, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("add interval: end %v not after start %v", end, start)
	}
	if end.Sub(start) < MinIntervalDuration {
		return nil, ErrIntervalTooShort
	}
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO work_intervals (user_id, project_id, task_id, start_time, end_time, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, projectID, taskID,
		start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339), note, now,
	)
	if err != nil {
		return nil, fmt.Errorf("add interval: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetInterval(id)
}

func (s *Store) GetInterval(id int64) (*WorkInterval, error) {
	row := s.db.QueryRow(
		`SELECT id, user_id, project_id, task_id, start_time, end_time, note, created_at
		 FROM work_intervals WHERE id = ?`, id,
	)
	iv, err := scanInterval(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("get interval %d: %w", id, err)
	}
	return iv, nil
}

// GetRunningInterval returns the most recent open interval, optionally for
// one user, or nil if no timer is running.
func (s *Store) GetRunningInterval(userID *int64) (*WorkInterval, error) {
	query := `SELECT id, user_id, project_id, task_id, start_time, end_time, note, created_at
	          FROM work_intervals WHERE end_time IS NULL`
	var args []any
	if userID != nil {
		query += ` AND user_id = ?`
		args = append(args, *userID)
	}
	query += ` ORDER BY id DESC LIMIT 1`

	row := s.db.QueryRow(query, args...)
	iv, err := scanInterval(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get running interval: %w", err)
	}
	return iv, nil
}

func (s *Store) UpdateIntervalNote(id int64, note string) error {
	_, err := s.db.Exec(`UPDATE work_intervals SET note = ? WHERE id = ?`, note, id)
	return err
}

func (s *Store) ListIntervals(f IntervalFilter) ([]WorkInterval, error) {
	query := `SELECT id, user_id, project_id, task_id, start_time, end_time, note, created_at
	          FROM work_intervals WHERE 1=1`
	var args []any

	if f.UserID != nil {
		query += ` AND user_id = ?`
		args = append(args, *f.UserID)
	}
	if f.ProjectID != nil {
		query += ` AND project_id = ?`
		args = append(args, *f.ProjectID)
	}
	if f.TaskID != nil {
		query += ` AND task_id = ?`
		args = append(args, *f.TaskID)
	}
	if f.From != nil {
		query += ` AND start_time >= ?`
		args = append(args, f.From.Format(time.RFC3339))
	}
	if f.To != nil {
		query += ` AND start_time < ?`
		args = append(args, f.To.Format(time.RFC3339))
	}
	query += ` ORDER BY start_time DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list intervals: %w", err)
	}
	defer rows.Close()

	var intervals []WorkInterval
	for rows.Next() {
		iv, err := scanInterval(rows.Scan)
		if err != nil {
			return nil, err
		}
		intervals = append(intervals, *iv)
	}
	return intervals, rows.Err()
}

// GetTodayTotal returns total logged seconds for today, optionally scoped
// to one user.
func (s *Store) GetTodayTotal(userID *int64) (int64, error) {
	today := time.Now().UTC().Format("2006-01-02")
	query := `SELECT COALESCE(SUM(CAST((julianday(end_time) - julianday(start_time)) * 86400 AS INTEGER)), 0)
	          FROM work_intervals WHERE date(start_time) = ? AND end_time IS NOT NULL`
	args := []any{today}
	if userID != nil {
		query += ` AND user_id = ?`
		args = append(args, *userID)
	}

	var total sql.NullInt64
	if err := s.db.QueryRow(query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total.Int64, nil
}

func scanInterval(scan func(...any) error) (*WorkInterval, error) {
	iv := &WorkInterval{}
	var userID, projectID, taskID sql.NullInt64
	var startTime, createdAt string
	var endTime sql.NullString

	if err := scan(&iv.ID, &userID, &projectID, &taskID, &startTime, &endTime, &iv.Note, &createdAt); err != nil {
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
	iv.StartTime, _ = time.Parse(time.RFC3339, startTime)
	if endTime.Valid {
		t, _ := time.Parse(time.RFC3339, endTime.String)
		iv.EndTime = &t
	}
	iv.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return iv, nil
}
