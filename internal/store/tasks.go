package store

import "github.com/missionctl/missionctl/internal/bus"

// CreateTask inserts a new task with status todo.
func (s *Store) CreateTask(title, assignee string) (*Task, error) {
	if err := oneOf(assignee, AssigneeHuman, AssigneeAI); err != nil {
		return nil, err
	}
	t := &Task{
		ID:        newID(),
		Title:     title,
		Status:    TaskTodo,
		Assignee:  assignee,
		CreatedAt: nowMs(),
	}
	_, err := s.db.Exec(
		`INSERT INTO tasks (id, title, status, assignee, created_at) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Status, t.Assignee, t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.emit(CollectionTasks, t.ID, bus.OpInsert)
	return t, nil
}

// ListTasks returns all tasks, newest first.
func (s *Store) ListTasks() ([]Task, error) {
	rows, err := s.db.Query(`SELECT id, title, status, assignee, created_at FROM tasks ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Status, &t.Assignee, &t.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateTaskStatus moves a task between todo/doing/done.
func (s *Store) UpdateTaskStatus(id, status string) error {
	if err := oneOf(status, TaskTodo, TaskDoing, TaskDone); err != nil {
		return err
	}
	res, err := s.db.Exec(`UPDATE tasks SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.emit(CollectionTasks, id, bus.OpPatch)
	return nil
}
