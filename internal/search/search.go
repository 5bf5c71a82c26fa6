// Package search implements the dashboard's federated search: query-time
// substring filtering over every collection plus a line search over the
// workspace notes.
package search

import (
	"strings"

	"github.com/missionctl/missionctl/internal/notes"
	"github.com/missionctl/missionctl/internal/store"
)

// MaxResults caps the total in-memory record hits per query.
const MaxResults = 250

// Service runs federated queries against the store and the notes tree.
// Notes may be nil when note search is disabled.
type Service struct {
	Store *store.Store
	Notes *notes.Service
}

// Results groups hits by collection. Truncated is set when the record cap
// cut the scan short.
type Results struct {
	Tasks      []store.Task        `json:"tasks"`
	Contents   []store.ContentItem `json:"contents"`
	Events     []store.Event       `json:"events"`
	Members    []store.TeamMember  `json:"members"`
	Approvals  []store.Approval    `json:"approvals"`
	Activities []store.Activity    `json:"activities"`
	Notes      []notes.Hit         `json:"notes"`
	Truncated  bool                `json:"truncated"`
}

// Search filters every collection by lowercase substring containment
// against the query. No ranking: results keep their collection ordering.
// A blank query returns empty results rather than everything.
func (s *Service) Search(query string) (*Results, error) {
	res := &Results{}
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return res, nil
	}

	remaining := MaxResults
	match := func(fields ...string) bool {
		if remaining <= 0 {
			res.Truncated = true
			return false
		}
		if !strings.Contains(strings.ToLower(strings.Join(fields, " ")), needle) {
			return false
		}
		remaining--
		return true
	}

	tasks, err := s.Store.ListTasks()
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if match(t.Title, t.Status, t.Assignee) {
			res.Tasks = append(res.Tasks, t)
		}
	}

	contents, err := s.Store.ListContents()
	if err != nil {
		return nil, err
	}
	for _, c := range contents {
		if match(c.Title, c.Platform, c.Stage, c.Memo, c.SourcePath) {
			res.Contents = append(res.Contents, c)
		}
	}

	events, err := s.Store.ListEvents()
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		if match(e.Title, e.Schedule, e.Source) {
			res.Events = append(res.Events, e)
		}
	}

	members, err := s.Store.ListMembers()
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if match(m.Name, m.Role, m.Status, m.Focus, m.OwnsKeywords) {
			res.Members = append(res.Members, m)
		}
	}

	approvals, err := s.Store.ListApprovals()
	if err != nil {
		return nil, err
	}
	for _, a := range approvals {
		if match(a.Title, a.Source, a.Note, a.Status) {
			res.Approvals = append(res.Approvals, a)
		}
	}

	activities, err := s.Store.ListActivities(MaxResults)
	if err != nil {
		return nil, err
	}
	for _, a := range activities {
		if match(a.Type, a.Message, a.Detail, a.Level) {
			res.Activities = append(res.Activities, a)
		}
	}

	if s.Notes != nil {
		hits, err := s.Notes.Search(needle)
		if err != nil {
			return nil, err
		}
		res.Notes = hits
	}
	return res, nil
}
