package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// CreateTask inserts a new active task and returns its id.
func (s *sqlxStore) CreateTask(ctx context.Context, title, description string, points int64) (int64, error) {
	if title == "" {
		return 0, fmt.Errorf("task title cannot be empty")
	}
	if points <= 0 {
		points = 1
	}

	var taskID int64
	err := s.db.GetContext(ctx, &taskID,
		`INSERT INTO tasks (title, description, points) VALUES (?, ?, ?) RETURNING id`,
		title, description, points)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error creating task", "title", title, "error", err)
		return 0, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.InfoContext(ctx, "Task created", "task_id", taskID, "title", title, "points", points)
	return taskID, nil
}

// GetTask retrieves a task by ID regardless of active flag.
// Returns nil, nil if not found.
func (s *sqlxStore) GetTask(ctx context.Context, taskID int64) (*Task, error) {
	var task Task
	err := s.db.GetContext(ctx, &task,
		`SELECT id, title, description, points, active, created_at FROM tasks WHERE id = ?`, taskID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting task", "task_id", taskID, "error", err)
		return nil, fmt.Errorf("failed to get task %d: %w", taskID, err)
	}
	return &task, nil
}

// GetAllTasks lists tasks in id order, active-only unless overridden.
func (s *sqlxStore) GetAllTasks(ctx context.Context, activeOnly bool) ([]Task, error) {
	query := `SELECT id, title, description, points, active, created_at FROM tasks`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY id`

	var tasks []Task
	if err := s.db.SelectContext(ctx, &tasks, query); err != nil {
		s.logger.ErrorContext(ctx, "Error listing tasks", "error", err)
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask applies the non-nil fields of upd.
func (s *sqlxStore) UpdateTask(ctx context.Context, taskID int64, upd TaskUpdate) error {
	var sets []string
	var args []any

	if upd.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.Points != nil {
		sets = append(sets, "points = ?")
		args = append(args, *upd.Points)
	}
	if upd.Active != nil {
		sets = append(sets, "active = ?")
		args = append(args, *upd.Active)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, taskID)
	result, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE tasks SET %s WHERE id = ?`, strings.Join(sets, ", ")), args...)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error updating task", "task_id", taskID, "error", err)
		return fmt.Errorf("failed to update task %d: %w", taskID, err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return ErrTaskNotFound
	}

	s.logger.DebugContext(ctx, "Task updated", "task_id", taskID)
	return nil
}

// DeleteTask soft-deletes a task by clearing its active flag.
func (s *sqlxStore) DeleteTask(ctx context.Context, taskID int64) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET active = FALSE WHERE id = ?`, taskID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting task", "task_id", taskID, "error", err)
		return fmt.Errorf("failed to delete task %d: %w", taskID, err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return ErrTaskNotFound
	}

	s.logger.InfoContext(ctx, "Task deactivated", "task_id", taskID)
	return nil
}
