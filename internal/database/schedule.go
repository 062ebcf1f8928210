package database

import (
	"context"
	"fmt"
	"time"
)

// CreateScheduledChallenge persists a pending task-bundle broadcast.
func (s *sqlxStore) CreateScheduledChallenge(ctx context.Context, taskIDs []int64, sendTime time.Time, messageText string) (int64, error) {
	if len(taskIDs) == 0 {
		return 0, fmt.Errorf("scheduled challenge needs at least one task")
	}

	var text any
	if messageText != "" {
		text = messageText
	}

	var challengeID int64
	err := s.db.GetContext(ctx, &challengeID,
		`INSERT INTO scheduled_challenges (task_ids, message_text, send_time) VALUES (?, ?, ?) RETURNING id`,
		IDList(taskIDs), text, sendTime.UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "Error creating scheduled challenge", "error", err)
		return 0, fmt.Errorf("failed to create scheduled challenge: %w", err)
	}

	s.logger.InfoContext(ctx, "Scheduled challenge created",
		"challenge_id", challengeID, "task_count", len(taskIDs), "send_time", sendTime)
	return challengeID, nil
}

// GetDueScheduledChallenges returns unsent challenges due at or before now,
// earliest first.
func (s *sqlxStore) GetDueScheduledChallenges(ctx context.Context, now time.Time) ([]ScheduledChallenge, error) {
	var challenges []ScheduledChallenge
	err := s.db.SelectContext(ctx, &challenges, `
        SELECT id, task_ids, message_text, send_time, sent, created_at
        FROM scheduled_challenges
        WHERE sent = FALSE AND send_time <= ?
        ORDER BY send_time`, now.UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "Error getting due challenges", "error", err)
		return nil, fmt.Errorf("failed to get due challenges: %w", err)
	}
	return challenges, nil
}

// MarkChallengeSent sets the challenge's sent flag. The flag only ever moves
// false to true; this is the commit point that prevents redelivery.
func (s *sqlxStore) MarkChallengeSent(ctx context.Context, challengeID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE scheduled_challenges SET sent = TRUE WHERE id = ?`, challengeID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error marking challenge sent", "challenge_id", challengeID, "error", err)
		return fmt.Errorf("failed to mark challenge %d sent: %w", challengeID, err)
	}
	return nil
}

// CreateScheduledMessage persists a pending broadcast/forward entry.
func (s *sqlxStore) CreateScheduledMessage(ctx context.Context, msg *ScheduledMessage) (int64, error) {
	if msg == nil {
		return 0, fmt.Errorf("cannot create nil scheduled message")
	}
	if msg.MessageType == "" {
		msg.MessageType = "broadcast"
	}

	var messageID int64
	err := s.db.GetContext(ctx, &messageID, `
        INSERT INTO scheduled_messages (message_type, scheduled_time, target_chat_id, forward_from_message_id, text)
        VALUES (?, ?, ?, ?, ?) RETURNING id`,
		msg.MessageType, msg.ScheduledTime.UTC(), msg.TargetChatID, msg.ForwardFromMessageID, msg.Text)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error creating scheduled message", "error", err)
		return 0, fmt.Errorf("failed to create scheduled message: %w", err)
	}

	msg.ID = messageID
	s.logger.InfoContext(ctx, "Scheduled message created",
		"message_id", messageID, "type", msg.MessageType, "send_time", msg.ScheduledTime)
	return messageID, nil
}

// GetDueScheduledMessages returns unsent messages due at or before now,
// earliest first.
func (s *sqlxStore) GetDueScheduledMessages(ctx context.Context, now time.Time) ([]ScheduledMessage, error) {
	var messages []ScheduledMessage
	err := s.db.SelectContext(ctx, &messages, `
        SELECT id, message_type, scheduled_time, target_chat_id, forward_from_message_id, text, sent, created_at
        FROM scheduled_messages
        WHERE sent = FALSE AND scheduled_time <= ?
        ORDER BY scheduled_time`, now.UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "Error getting due messages", "error", err)
		return nil, fmt.Errorf("failed to get due messages: %w", err)
	}
	return messages, nil
}

// MarkMessageSent sets the message's sent flag. Monotonic.
func (s *sqlxStore) MarkMessageSent(ctx context.Context, messageID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE scheduled_messages SET sent = TRUE WHERE id = ?`, messageID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error marking message sent", "message_id", messageID, "error", err)
		return fmt.Errorf("failed to mark message %d sent: %w", messageID, err)
	}
	return nil
}
