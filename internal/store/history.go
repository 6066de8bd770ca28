package store

import (
	"database/sql"
	"fmt"
	"time"
)

// ListStatusHistory returns the status journal for a task, oldest first.
// Rows are only ever appended by SetTaskStatus.
func (s *Store) ListStatusHistory(taskID int64) ([]StatusChange, error) {
	rows, err := s.db.Query(
		`SELECT id, task_id, changed_by, old_status, new_status, changed_at
		 FROM status_history WHERE task_id = ? ORDER BY id`, taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}
	defer rows.Close()

	var changes []StatusChange
	for rows.Next() {
		var c StatusChange
		var changedBy sql.NullInt64
		var changedAt string
		if err := rows.Scan(&c.ID, &c.TaskID, &changedBy, &c.OldStatus, &c.NewStatus, &changedAt); err != nil {
			return nil, err
		}
		if changedBy.Valid {
			c.ChangedBy = &changedBy.Int64
		}
		c.ChangedAt, _ = time.Parse(time.RFC3339, changedAt)
		changes = append(changes, c)
	}
	return changes, rows.Err()
}
