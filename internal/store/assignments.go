package store

import (
	"database/sql"

	"github.com/missionctl/missionctl/internal/bus"
)

// SetCronAssignment upserts the owner of an external scheduler job, keyed by
// job name. A nil or empty memberID deletes the assignment row entirely
// rather than storing a null reference.
func (s *Store) SetCronAssignment(jobName string, memberID *string) error {
	if jobName == "" {
		return ErrInvalid
	}

	if memberID == nil || *memberID == "" {
		var id string
		err := s.db.QueryRow(`SELECT id FROM cron_assignments WHERE job_name = ?`, jobName).Scan(&id)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := s.db.Exec(`DELETE FROM cron_assignments WHERE id = ?`, id); err != nil {
			return err
		}
		s.emit(CollectionAssignments, id, bus.OpDelete)
		return nil
	}

	var id string
	err := s.db.QueryRow(`SELECT id FROM cron_assignments WHERE job_name = ?`, jobName).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		now := nowMs()
		a := &CronAssignment{
			ID:        newID(),
			JobName:   jobName,
			MemberID:  *memberID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		_, err := s.db.Exec(
			`INSERT INTO cron_assignments (id, job_name, member_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			a.ID, a.JobName, a.MemberID, a.CreatedAt, a.UpdatedAt,
		)
		if err != nil {
			return err
		}
		s.emit(CollectionAssignments, a.ID, bus.OpInsert)
		return nil
	case err != nil:
		return err
	}

	if _, err := s.db.Exec(`UPDATE cron_assignments SET member_id = ?, updated_at = ? WHERE id = ?`, *memberID, nowMs(), id); err != nil {
		return err
	}
	s.emit(CollectionAssignments, id, bus.OpPatch)
	return nil
}

// ListCronAssignments returns all assignments, newest first.
func (s *Store) ListCronAssignments() ([]CronAssignment, error) {
	rows, err := s.db.Query(`SELECT id, job_name, member_id, created_at, updated_at FROM cron_assignments ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []CronAssignment
	for rows.Next() {
		var a CronAssignment
		if err := rows.Scan(&a.ID, &a.JobName, &a.MemberID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}
