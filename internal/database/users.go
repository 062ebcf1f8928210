package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// RegisterUser upserts a user and its daily marker. Safe to call on every
// observed interaction.
func (s *sqlxStore) RegisterUser(ctx context.Context, userID int64) error {
	if userID == 0 {
		return fmt.Errorf("user_id cannot be zero")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	if err := s.upsertUserTx(ctx, tx, userID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// upsertUserTx inserts the user row and its daily marker if absent, within
// an existing transaction.
func (s *sqlxStore) upsertUserTx(ctx context.Context, tx *sqlx.Tx, userID int64) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO users (user_id) VALUES (?) ON CONFLICT (user_id) DO NOTHING`, userID)
	if err != nil {
		return fmt.Errorf("failed to upsert user %d: %w", userID, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO daily_stats (user_id, last_updated) VALUES (?, ?) ON CONFLICT (user_id) DO NOTHING`,
		userID, s.today())
	if err != nil {
		return fmt.Errorf("failed to upsert daily marker for user %d: %w", userID, err)
	}
	return nil
}

// GetUserInfo retrieves a user by ID. Returns nil, nil if not found.
func (s *sqlxStore) GetUserInfo(ctx context.Context, userID int64) (*User, error) {
	var user User
	err := s.db.GetContext(ctx, &user,
		`SELECT user_id, name, tandem_id, score, created_at FROM users WHERE user_id = ?`, userID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.logger.DebugContext(ctx, "No user found", "user_id", userID)
		return nil, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting user", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	return &user, nil
}

// SetUserName updates a user's display name.
func (s *sqlxStore) SetUserName(ctx context.Context, userID int64, name string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET name = ? WHERE user_id = ?`, name, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error setting user name", "user_id", userID, "error", err)
		return fmt.Errorf("failed to set name for user %d: %w", userID, err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected != 1 {
		s.logger.WarnContext(ctx, "Unexpected number of rows affected when setting user name",
			"user_id", userID, "affected", affected)
	}

	s.logger.DebugContext(ctx, "User name updated", "user_id", userID)
	return nil
}

// GetAllUsers lists user ids, optionally filtered by tandem membership.
func (s *sqlxStore) GetAllUsers(ctx context.Context, inTandem *bool) ([]int64, error) {
	query := `SELECT user_id FROM users`
	switch {
	case inTandem == nil:
	case *inTandem:
		query += ` WHERE tandem_id IS NOT NULL`
	default:
		query += ` WHERE tandem_id IS NULL`
	}
	query += ` ORDER BY user_id`

	var ids []int64
	if err := s.db.SelectContext(ctx, &ids, query); err != nil {
		s.logger.ErrorContext(ctx, "Error listing users", "error", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return ids, nil
}
