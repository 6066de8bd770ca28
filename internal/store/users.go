package store

import (
	"fmt"
	"time"
)

func (s *Store) CreateUser(name, role string) (*User, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO users (name, role, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		name, role, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetUser(id)
}

func (s *Store) GetUser(id int64) (*User, error) {
	u := &User{}
	var createdAt, updatedAt string
	var archived int
	err := s.db.QueryRow(
		`SELECT id, name, role, archived, created_at, updated_at FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Name, &u.Role, &archived, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	u.Archived = archived == 1
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	u.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return u, nil
}

func (s *Store) ListUsers(includeArchived bool) ([]User, error) {
	query := `SELECT id, name, role, archived, created_at, updated_at FROM users`
	if !includeArchived {
		query += ` WHERE archived = 0`
	}
	query += ` ORDER BY name`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		var createdAt, updatedAt string
		var archived int
		if err := rows.Scan(&u.ID, &u.Name, &u.Role, &archived, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		u.Archived = archived == 1
		u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		u.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) UpdateUser(id int64, name, role string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`UPDATE users SET name = ?, role = ?, updated_at = ? WHERE id = ?`,
		name, role, now, id,
	)
	return err
}

func (s *Store) ArchiveUser(id int64) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`UPDATE users SET archived = 1, updated_at = ? WHERE id = ?`, now, id,
	)
	return err
}
