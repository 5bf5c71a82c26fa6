package store

import (
	"database/sql"

	"github.com/missionctl/missionctl/internal/bus"
)

// CreateMember adds a roster entry with status idle.
func (s *Store) CreateMember(name, role, focus string) (*TeamMember, error) {
	if name == "" {
		return nil, ErrInvalid
	}
	m := &TeamMember{
		ID:        newID(),
		Name:      name,
		Role:      role,
		Status:    MemberIdle,
		Focus:     focus,
		CreatedAt: nowMs(),
	}
	_, err := s.db.Exec(
		`INSERT INTO team_members (id, name, role, status, focus, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.Role, m.Status, m.Focus, m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.emit(CollectionTeam, m.ID, bus.OpInsert)
	return m, nil
}

// ListMembers returns the roster, newest first. Roster order matters: the
// cron-job owner inference picks the first keyword match in this order.
func (s *Store) ListMembers() ([]TeamMember, error) {
	rows, err := s.db.Query(`SELECT id, name, role, status, focus, owns_keywords, created_at FROM team_members ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []TeamMember
	for rows.Next() {
		var m TeamMember
		if err := rows.Scan(&m.ID, &m.Name, &m.Role, &m.Status, &m.Focus, &m.OwnsKeywords, &m.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// UpdateMemberStatus changes a member's status and, when focus is non-nil,
// their focus text.
func (s *Store) UpdateMemberStatus(id, status string, focus *string) error {
	if err := oneOf(status, MemberIdle, MemberWorking, MemberBlocked, MemberOffline); err != nil {
		return err
	}
	var res sql.Result
	var err error
	if focus != nil {
		res, err = s.db.Exec(`UPDATE team_members SET status = ?, focus = ? WHERE id = ?`, status, *focus, id)
	} else {
		res, err = s.db.Exec(`UPDATE team_members SET status = ? WHERE id = ?`, status, id)
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.emit(CollectionTeam, id, bus.OpPatch)
	return nil
}

// SetMemberKeywords replaces the comma-separated ownership keyword list.
func (s *Store) SetMemberKeywords(id, keywords string) error {
	res, err := s.db.Exec(`UPDATE team_members SET owns_keywords = ? WHERE id = ?`, keywords, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.emit(CollectionTeam, id, bus.OpPatch)
	return nil
}

// DeleteMember removes a roster entry. Cron assignments referencing the
// member are left dangling; views fall back to "unassigned".
func (s *Store) DeleteMember(id string) error {
	res, err := s.db.Exec(`DELETE FROM team_members WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.emit(CollectionTeam, id, bus.OpDelete)
	return nil
}
