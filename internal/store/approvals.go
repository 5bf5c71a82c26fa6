package store

import (
	"database/sql"
	"errors"

	"github.com/missionctl/missionctl/internal/bus"
)

// CreateApproval inserts a pending approval.
func (s *Store) CreateApproval(title, source, note string) (*Approval, error) {
	if title == "" {
		return nil, ErrInvalid
	}
	now := nowMs()
	a := &Approval{
		ID:        newID(),
		Title:     title,
		Source:    source,
		Note:      note,
		Status:    ApprovalPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.Exec(
		`INSERT INTO approvals (id, title, source, note, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Title, a.Source, a.Note, a.Status, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.emit(CollectionApprovals, a.ID, bus.OpInsert)
	return a, nil
}

// GetApproval returns an approval by id.
func (s *Store) GetApproval(id string) (*Approval, error) {
	var a Approval
	err := s.db.QueryRow(
		`SELECT id, title, source, note, status, created_at, updated_at FROM approvals WHERE id = ?`, id,
	).Scan(&a.ID, &a.Title, &a.Source, &a.Note, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListApprovals returns the queue, newest first.
func (s *Store) ListApprovals() ([]Approval, error) {
	rows, err := s.db.Query(`SELECT id, title, source, note, status, created_at, updated_at FROM approvals ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var approvals []Approval
	for rows.Next() {
		var a Approval
		if err := rows.Scan(&a.ID, &a.Title, &a.Source, &a.Note, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		approvals = append(approvals, a)
	}
	return approvals, rows.Err()
}

// UpdateApprovalStatus moves an approval to any status. Transitions are
// user-driven and unconstrained. Note is patched only when non-nil.
func (s *Store) UpdateApprovalStatus(id, status string, note *string) error {
	if err := oneOf(status, ApprovalPending, ApprovalApproved, ApprovalRejected, ApprovalTimeout); err != nil {
		return err
	}
	var res sql.Result
	var err error
	if note != nil {
		res, err = s.db.Exec(`UPDATE approvals SET status = ?, note = ?, updated_at = ? WHERE id = ?`, status, *note, nowMs(), id)
	} else {
		res, err = s.db.Exec(`UPDATE approvals SET status = ?, updated_at = ? WHERE id = ?`, status, nowMs(), id)
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.emit(CollectionApprovals, id, bus.OpPatch)
	return nil
}
