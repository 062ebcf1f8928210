package database

import (
	"context"
	"fmt"
	"strings"
)

// AddPitstopLink inserts a new active link and returns its id.
func (s *sqlxStore) AddPitstopLink(ctx context.Context, title, url string) (int64, error) {
	if title == "" || url == "" {
		return 0, fmt.Errorf("link title and url cannot be empty")
	}

	var linkID int64
	err := s.db.GetContext(ctx, &linkID,
		`INSERT INTO pitstop_links (title, url) VALUES (?, ?) RETURNING id`, title, url)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error adding pitstop link", "title", title, "error", err)
		return 0, fmt.Errorf("failed to add pitstop link: %w", err)
	}

	s.logger.InfoContext(ctx, "Pitstop link added", "link_id", linkID, "title", title)
	return linkID, nil
}

// GetPitstopLinks lists links in id order, active-only unless overridden.
func (s *sqlxStore) GetPitstopLinks(ctx context.Context, activeOnly bool) ([]PitstopLink, error) {
	query := `SELECT id, title, url, active, created_at FROM pitstop_links`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY id`

	var links []PitstopLink
	if err := s.db.SelectContext(ctx, &links, query); err != nil {
		s.logger.ErrorContext(ctx, "Error listing pitstop links", "error", err)
		return nil, fmt.Errorf("failed to list pitstop links: %w", err)
	}
	return links, nil
}

// UpdatePitstopLink applies the non-nil fields of upd.
func (s *sqlxStore) UpdatePitstopLink(ctx context.Context, linkID int64, upd LinkUpdate) error {
	var sets []string
	var args []any

	if upd.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.URL != nil {
		sets = append(sets, "url = ?")
		args = append(args, *upd.URL)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, linkID)
	result, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE pitstop_links SET %s WHERE id = ?`, strings.Join(sets, ", ")), args...)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error updating pitstop link", "link_id", linkID, "error", err)
		return fmt.Errorf("failed to update pitstop link %d: %w", linkID, err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return ErrLinkNotFound
	}
	return nil
}

// DeletePitstopLink soft-deletes a link by clearing its active flag.
func (s *sqlxStore) DeletePitstopLink(ctx context.Context, linkID int64) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE pitstop_links SET active = FALSE WHERE id = ?`, linkID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting pitstop link", "link_id", linkID, "error", err)
		return fmt.Errorf("failed to delete pitstop link %d: %w", linkID, err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return ErrLinkNotFound
	}

	s.logger.InfoContext(ctx, "Pitstop link deactivated", "link_id", linkID)
	return nil
}
