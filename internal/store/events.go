package store

import (
	"database/sql"

	"github.com/missionctl/missionctl/internal/bus"
)

// CronEventSync carries the mutable fields of a cron-sourced event. Title
// and source are identity: the mirror never rewrites them.
type CronEventSync struct {
	Schedule    string
	Enabled     bool
	NextRunAtMs *int64
}

// CreateEvent inserts a manual or cron-sourced calendar event.
func (s *Store) CreateEvent(title, schedule, source string) (*Event, error) {
	if err := oneOf(source, SourceManual, SourceCron); err != nil {
		return nil, err
	}
	e := &Event{
		ID:        newID(),
		Title:     title,
		Schedule:  schedule,
		Source:    source,
		CreatedAt: nowMs(),
	}
	_, err := s.db.Exec(
		`INSERT INTO events (id, title, schedule, source, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.Schedule, e.Source, e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.emit(CollectionEvents, e.ID, bus.OpInsert)
	return e, nil
}

// ListEvents returns all events, newest first.
func (s *Store) ListEvents() ([]Event, error) {
	rows, err := s.db.Query(`SELECT id, title, schedule, source, enabled, next_run_at_ms, created_at FROM events ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var enabled sql.NullBool
		var nextRun sql.NullInt64
		if err := rows.Scan(&e.ID, &e.Title, &e.Schedule, &e.Source, &enabled, &nextRun, &e.CreatedAt); err != nil {
			return nil, err
		}
		if enabled.Valid {
			v := enabled.Bool
			e.Enabled = &v
		}
		if nextRun.Valid {
			v := nextRun.Int64
			e.NextRunAtMs = &v
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// UpsertCronEvent inserts or refreshes the cron-sourced event with the given
// title. Only schedule/enabled/nextRunAtMs are patched on existing rows.
// Returns true when a new event was created.
func (s *Store) UpsertCronEvent(title string, sync CronEventSync) (bool, error) {
	var id string
	err := s.db.QueryRow(
		`SELECT id FROM events WHERE title = ? AND source = ?`, title, SourceCron,
	).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		e := &Event{
			ID:        newID(),
			Title:     title,
			Schedule:  sync.Schedule,
			Source:    SourceCron,
			CreatedAt: nowMs(),
		}
		_, err := s.db.Exec(
			`INSERT INTO events (id, title, schedule, source, enabled, next_run_at_ms, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.Title, e.Schedule, e.Source, sync.Enabled, nullableInt64(sync.NextRunAtMs), e.CreatedAt,
		)
		if err != nil {
			return false, err
		}
		s.emit(CollectionEvents, e.ID, bus.OpInsert)
		return true, nil
	case err != nil:
		return false, err
	}

	_, err = s.db.Exec(
		`UPDATE events SET schedule = ?, enabled = ?, next_run_at_ms = ? WHERE id = ?`,
		sync.Schedule, sync.Enabled, nullableInt64(sync.NextRunAtMs), id,
	)
	if err != nil {
		return false, err
	}
	s.emit(CollectionEvents, id, bus.OpPatch)
	return false, nil
}

// SeedEventsIfEmpty inserts the default recurring jobs when the events
// collection holds no rows at all. Returns the number of rows seeded.
func (s *Store) SeedEventsIfEmpty() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	seed := []struct{ title, schedule string }{
		{"2XKO daily draft", "daily 09:00 JST"},
		{"TikTok daily posting pack", "daily 09:00 JST"},
		{"AI monetization news sweep", "hourly at :00 JST"},
		{"Morning briefing", "daily 09:00 JST"},
	}
	for _, e := range seed {
		if _, err := s.CreateEvent(e.title, e.schedule, SourceCron); err != nil {
			return 0, err
		}
	}
	return len(seed), nil
}

func nullableInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
