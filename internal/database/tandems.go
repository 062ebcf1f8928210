package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// CreateTandem atomically upserts both users, creates the tandem row and
// attaches both members. The already-paired check runs inside the same
// transaction so two concurrent referrals for the same user cannot both
// succeed.
func (s *sqlxStore) CreateTandem(ctx context.Context, userID, partnerID int64) (int64, error) {
	if userID == partnerID {
		return 0, fmt.Errorf("cannot create tandem with a single user %d", userID)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	for _, id := range []int64{userID, partnerID} {
		if err := s.upsertUserTx(ctx, tx, id); err != nil {
			return 0, err
		}
	}

	var paired int
	err = tx.GetContext(ctx, &paired,
		`SELECT COUNT(*) FROM users WHERE user_id IN (?, ?) AND tandem_id IS NOT NULL`,
		userID, partnerID)
	if err != nil {
		return 0, fmt.Errorf("failed to check pairing state: %w", err)
	}
	if paired > 0 {
		s.logger.WarnContext(ctx, "Tandem creation rejected, member already paired",
			"user_id", userID, "partner_id", partnerID)
		return 0, ErrAlreadyPaired
	}

	var tandemID int64
	err = tx.GetContext(ctx, &tandemID, `INSERT INTO tandems DEFAULT VALUES RETURNING id`)
	if err != nil {
		return 0, fmt.Errorf("failed to create tandem: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET tandem_id = ? WHERE user_id IN (?, ?)`, tandemID, userID, partnerID)
	if err != nil {
		return 0, fmt.Errorf("failed to attach members to tandem %d: %w", tandemID, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Tandem created",
		"tandem_id", tandemID, "user_id", userID, "partner_id", partnerID)
	return tandemID, nil
}

// GetPartnerID returns the other member of the caller's tandem.
func (s *sqlxStore) GetPartnerID(ctx context.Context, userID int64) (int64, error) {
	var partnerID int64
	err := s.db.GetContext(ctx, &partnerID, `
        SELECT u2.user_id
        FROM users u1
        JOIN users u2 ON u2.tandem_id = u1.tandem_id AND u2.user_id != u1.user_id
        WHERE u1.user_id = ? AND u1.tandem_id IS NOT NULL`, userID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, ErrNotPaired
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting partner", "user_id", userID, "error", err)
		return 0, fmt.Errorf("failed to get partner for user %d: %w", userID, err)
	}
	return partnerID, nil
}

// GetTandemInfo returns the caller's tandem with both member names.
// Returns nil, nil for unpaired users.
func (s *sqlxStore) GetTandemInfo(ctx context.Context, userID int64) (*TandemInfo, error) {
	var info TandemInfo
	err := s.db.GetContext(ctx, &info, `
        SELECT t.id AS tandem_id, t.name AS tandem_name,
               u1.name AS user_name, u2.user_id AS partner_id, u2.name AS partner_name
        FROM users u1
        JOIN tandems t ON u1.tandem_id = t.id
        JOIN users u2 ON u2.tandem_id = t.id AND u2.user_id != u1.user_id
        WHERE u1.user_id = ?`, userID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting tandem info", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get tandem info for user %d: %w", userID, err)
	}
	return &info, nil
}

// SetTandemName updates a tandem's display name.
func (s *sqlxStore) SetTandemName(ctx context.Context, tandemID int64, name string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE tandems SET name = ? WHERE id = ?`, name, tandemID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error setting tandem name", "tandem_id", tandemID, "error", err)
		return fmt.Errorf("failed to set name for tandem %d: %w", tandemID, err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return ErrTandemNotFound
	}
	return nil
}

// DisbandTandem deletes the caller's tandem row. Member rows survive with
// tandem_id cleared via ON DELETE SET NULL.
func (s *sqlxStore) DisbandTandem(ctx context.Context, userID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	var tandemID sql.NullInt64
	err = tx.GetContext(ctx, &tandemID, `SELECT tandem_id FROM users WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !tandemID.Valid) {
		return ErrNotPaired
	}
	if err != nil {
		return fmt.Errorf("failed to find tandem for user %d: %w", userID, err)
	}

	// SQLite enforces ON DELETE SET NULL only with foreign keys on; clear
	// the member references explicitly so the invariant holds regardless.
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET tandem_id = NULL WHERE tandem_id = ?`, tandemID.Int64); err != nil {
		return fmt.Errorf("failed to detach members of tandem %d: %w", tandemID.Int64, err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM tandems WHERE id = ?`, tandemID.Int64); err != nil {
		return fmt.Errorf("failed to delete tandem %d: %w", tandemID.Int64, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Tandem disbanded", "tandem_id", tandemID.Int64, "user_id", userID)
	return nil
}

// GetTandemScoreBreakdown maps each member's user id to their score.
func (s *sqlxStore) GetTandemScoreBreakdown(ctx context.Context, tandemID int64) (map[int64]int64, error) {
	var rows []struct {
		UserID int64 `db:"user_id"`
		Score  int64 `db:"score"`
	}
	err := s.db.SelectContext(ctx, &rows,
		`SELECT user_id, score FROM users WHERE tandem_id = ?`, tandemID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error getting score breakdown", "tandem_id", tandemID, "error", err)
		return nil, fmt.Errorf("failed to get score breakdown for tandem %d: %w", tandemID, err)
	}

	breakdown := make(map[int64]int64, len(rows))
	for _, r := range rows {
		breakdown[r.UserID] = r.Score
	}
	return breakdown, nil
}

// GetTandemSummary returns one tandem's aggregate score and member names.
func (s *sqlxStore) GetTandemSummary(ctx context.Context, tandemID int64) (*TandemSummary, error) {
	var row struct {
		ID         int64          `db:"id"`
		Name       string         `db:"name"`
		TotalScore int64          `db:"total_score"`
		UserNames  sql.NullString `db:"user_names"`
	}
	err := s.db.GetContext(ctx, &row, `
        SELECT t.id, t.name,
               COALESCE(SUM(u.score), 0) AS total_score,
               GROUP_CONCAT(u.name, char(31)) AS user_names
        FROM tandems t
        LEFT JOIN users u ON u.tandem_id = t.id
        WHERE t.id = ?
        GROUP BY t.id, t.name`, tandemID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrTandemNotFound
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting tandem summary", "tandem_id", tandemID, "error", err)
		return nil, fmt.Errorf("failed to get summary for tandem %d: %w", tandemID, err)
	}

	return &TandemSummary{
		ID:         row.ID,
		Name:       row.Name,
		TotalScore: row.TotalScore,
		UserNames:  splitNames(row.UserNames),
	}, nil
}

// GetAllTandemsWithSummary returns leaderboard rows sorted by total score
// descending, ties in id order.
func (s *sqlxStore) GetAllTandemsWithSummary(ctx context.Context) ([]TandemSummary, error) {
	var rows []struct {
		ID         int64          `db:"id"`
		Name       string         `db:"name"`
		TotalScore int64          `db:"total_score"`
		UserNames  sql.NullString `db:"user_names"`
	}
	err := s.db.SelectContext(ctx, &rows, `
        SELECT t.id, t.name,
               COALESCE(SUM(u.score), 0) AS total_score,
               GROUP_CONCAT(u.name, char(31)) AS user_names
        FROM tandems t
        LEFT JOIN users u ON u.tandem_id = t.id
        GROUP BY t.id, t.name
        ORDER BY total_score DESC, t.id`)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error listing tandems with summary", "error", err)
		return nil, fmt.Errorf("failed to list tandems with summary: %w", err)
	}

	summaries := make([]TandemSummary, 0, len(rows))
	for _, r := range rows {
		summaries = append(summaries, TandemSummary{
			ID:         r.ID,
			Name:       r.Name,
			TotalScore: r.TotalScore,
			UserNames:  splitNames(r.UserNames),
		})
	}
	return summaries, nil
}

// GetTandemStatistics aggregates a tandem's completions over the trailing
// 'days' window.
func (s *sqlxStore) GetTandemStatistics(ctx context.Context, tandemID int64, days int) (*TandemStatistics, error) {
	if days <= 0 {
		days = 7
	}

	stats := &TandemStatistics{CompletionsByDay: make(map[string]int64)}

	err := s.db.GetContext(ctx, &stats.TotalScore,
		`SELECT COALESCE(SUM(score), 0) FROM users WHERE tandem_id = ?`, tandemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get total score for tandem %d: %w", tandemID, err)
	}

	cutoff := s.now().UTC().AddDate(0, 0, -days).Format(dayFormat)

	var rows []struct {
		Day   string `db:"completed_date"`
		Count int64  `db:"count"`
	}
	err = s.db.SelectContext(ctx, &rows, `
        SELECT tc.completed_date, COUNT(*) AS count
        FROM task_completions tc
        JOIN users u ON u.user_id = tc.user_id
        WHERE u.tandem_id = ? AND tc.completed_date >= ?
        GROUP BY tc.completed_date
        ORDER BY tc.completed_date`, tandemID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to get completion stats for tandem %d: %w", tandemID, err)
	}

	for _, r := range rows {
		stats.CompletionsByDay[r.Day] = r.Count
		stats.TasksCompleted += r.Count
	}
	return stats, nil
}

// splitNames unpacks a GROUP_CONCAT aggregate separated by the unit
// separator character, which cannot occur in validated display names.
func splitNames(agg sql.NullString) []string {
	if !agg.Valid || agg.String == "" {
		return nil
	}
	return strings.Split(agg.String, "\x1f")
}
