package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ToggleTask flips the completion state of (user, task) for today and adjusts
// the user's score by the task's point value. The existence check, the
// completion insert/delete, the score mutation and the daily-marker update
// all run inside one transaction, so concurrent toggles for the same pair
// serialize and the score can never diverge from the completion records.
func (s *sqlxStore) ToggleTask(ctx context.Context, userID, taskID int64) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	if err := s.upsertUserTx(ctx, tx, userID); err != nil {
		return false, err
	}

	var task struct {
		ID     int64 `db:"id"`
		Points int64 `db:"points"`
	}
	err = tx.GetContext(ctx, &task,
		`SELECT id, points FROM tasks WHERE id = ? AND active = TRUE`, taskID)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.WarnContext(ctx, "Toggle attempted on missing or inactive task",
			"user_id", userID, "task_id", taskID)
		return false, ErrTaskNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to load task %d: %w", taskID, err)
	}

	today := s.today()

	var completionID int64
	err = tx.GetContext(ctx, &completionID,
		`SELECT id FROM task_completions WHERE user_id = ? AND task_id = ? AND completed_date = ?`,
		userID, taskID, today)

	var completed bool
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Not completed yet: record the completion and credit the points.
		_, err = tx.ExecContext(ctx,
			`INSERT INTO task_completions (user_id, task_id, completed_date) VALUES (?, ?, ?)`,
			userID, taskID, today)
		if err != nil {
			return false, fmt.Errorf("failed to insert completion: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE users SET score = score + ? WHERE user_id = ?`, task.Points, userID)
		if err != nil {
			return false, fmt.Errorf("failed to credit score: %w", err)
		}
		completed = true

	case err != nil:
		return false, fmt.Errorf("failed to check completion state: %w", err)

	default:
		// Already completed today: remove the record and debit the points,
		// floored at zero so drifted data can never drive the score negative.
		_, err = tx.ExecContext(ctx,
			`DELETE FROM task_completions WHERE id = ?`, completionID)
		if err != nil {
			return false, fmt.Errorf("failed to delete completion: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE users SET score = MAX(score - ?, 0) WHERE user_id = ?`, task.Points, userID)
		if err != nil {
			return false, fmt.Errorf("failed to debit score: %w", err)
		}
		completed = false
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE daily_stats SET last_updated = ? WHERE user_id = ?`, today, userID)
	if err != nil {
		return false, fmt.Errorf("failed to update daily marker: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.DebugContext(ctx, "Task toggled",
		"user_id", userID, "task_id", taskID, "completed", completed)
	return completed, nil
}

// GetTodayStats maps every active task id to its completion state for today.
// The user is upserted first so a brand-new user sees a defined empty state.
func (s *sqlxStore) GetTodayStats(ctx context.Context, userID int64) (map[int64]bool, error) {
	if err := s.RegisterUser(ctx, userID); err != nil {
		return nil, err
	}

	tasks, err := s.GetAllTasks(ctx, true)
	if err != nil {
		return nil, err
	}

	var completedIDs []int64
	err = s.db.SelectContext(ctx, &completedIDs,
		`SELECT task_id FROM task_completions WHERE user_id = ? AND completed_date = ?`,
		userID, s.today())
	if err != nil {
		s.logger.ErrorContext(ctx, "Error getting today's completions", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get today's completions for user %d: %w", userID, err)
	}

	completed := make(map[int64]bool, len(completedIDs))
	for _, id := range completedIDs {
		completed[id] = true
	}

	stats := make(map[int64]bool, len(tasks))
	for _, task := range tasks {
		stats[task.ID] = completed[task.ID]
	}
	return stats, nil
}

// ResetDailyStats rolls daily markers forward to today and purges completion
// records from past dates. Safe to run repeatedly; a toggle racing the purge
// lands either before or after it, both leaving consistent state.
func (s *sqlxStore) ResetDailyStats(ctx context.Context) error {
	today := s.today()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	markers, err := tx.ExecContext(ctx,
		`UPDATE daily_stats SET last_updated = ? WHERE last_updated < ?`, today, today)
	if err != nil {
		return fmt.Errorf("failed to roll daily markers: %w", err)
	}

	purged, err := tx.ExecContext(ctx,
		`DELETE FROM task_completions WHERE completed_date < ?`, today)
	if err != nil {
		return fmt.Errorf("failed to purge past completions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	markerCount, _ := markers.RowsAffected()
	purgedCount, _ := purged.RowsAffected()
	s.logger.InfoContext(ctx, "Daily stats reset",
		"markers_rolled", markerCount, "completions_purged", purgedCount)
	return nil
}

// GetUsersWithIncompleteTasks lists tandem members with zero completions for
// any of the given tasks today. Used to drive the end-of-day nudge.
func (s *sqlxStore) GetUsersWithIncompleteTasks(ctx context.Context, taskIDs []int64) ([]User, error) {
	if len(taskIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
        SELECT u.user_id, u.name, u.tandem_id, u.score, u.created_at
        FROM users u
        WHERE u.tandem_id IS NOT NULL
          AND NOT EXISTS (
              SELECT 1 FROM task_completions tc
              WHERE tc.user_id = u.user_id
                AND tc.task_id IN (?)
                AND tc.completed_date = ?
          )
        ORDER BY u.user_id`, taskIDs, s.today())
	if err != nil {
		return nil, fmt.Errorf("failed to build incomplete-tasks query: %w", err)
	}

	var users []User
	if err := s.db.SelectContext(ctx, &users, s.db.Rebind(query), args...); err != nil {
		s.logger.ErrorContext(ctx, "Error listing users with incomplete tasks", "error", err)
		return nil, fmt.Errorf("failed to list users with incomplete tasks: %w", err)
	}
	return users, nil
}
