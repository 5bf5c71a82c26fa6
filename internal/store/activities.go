package store

import (
	"database/sql"
	"errors"

	"github.com/missionctl/missionctl/internal/bus"
)

// AddActivity appends a log entry. Level defaults to info. The log is
// append-only: there is no update or delete.
func (s *Store) AddActivity(typ, message, detail, level string) (*Activity, error) {
	if level == "" {
		level = LevelInfo
	}
	if err := oneOf(level, LevelInfo, LevelWarn, LevelError); err != nil {
		return nil, err
	}
	a := &Activity{
		ID:        newID(),
		Type:      typ,
		Message:   message,
		Detail:    detail,
		Level:     level,
		CreatedAt: nowMs(),
	}
	_, err := s.db.Exec(
		`INSERT INTO activities (id, type, message, detail, level, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Type, a.Message, a.Detail, a.Level, a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.emit(CollectionActivities, a.ID, bus.OpInsert)
	return a, nil
}

// GetActivity returns a log entry by id.
func (s *Store) GetActivity(id string) (*Activity, error) {
	var a Activity
	err := s.db.QueryRow(
		`SELECT id, type, message, detail, level, created_at FROM activities WHERE id = ?`, id,
	).Scan(&a.ID, &a.Type, &a.Message, &a.Detail, &a.Level, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListActivities returns the newest entries. A non-positive limit means 100.
func (s *Store) ListActivities(limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(
		`SELECT id, type, message, detail, level, created_at FROM activities ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.Type, &a.Message, &a.Detail, &a.Level, &a.CreatedAt); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}
