// Package broadcast implements the scheduled delivery sweeper: it scans the
// challenge and message queues for due entries, delivers them to the user
// population, and marks each entry sent exactly once.
package broadcast

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/edgard/tandembot/internal/database"
)

// Sender is the transport used to reach recipients. Implemented by the
// telegram adapter; replaced by a fake in tests.
type Sender interface {
	// SendText delivers plain text to a chat.
	SendText(ctx context.Context, chatID int64, text string) error

	// SendTaskPrompt delivers one challenge task as an individually
	// actionable item with a completion affordance.
	SendTaskPrompt(ctx context.Context, chatID int64, task database.Task) error

	// Forward re-sends an existing message from another chat.
	Forward(ctx context.Context, toChatID, fromChatID int64, messageID int64) error
}

// Sweeper owns the two scheduled queues. Each queue is guarded by its own
// mutex so a manual trigger overlapping the periodic timer cannot deliver
// the same entry twice; within one process the mutex plus the sent flag
// give the exactly-once-per-entry guarantee.
type Sweeper struct {
	store   database.Store
	sender  Sender
	logger  *slog.Logger
	timeout time.Duration

	challengeMu sync.Mutex
	messageMu   sync.Mutex

	now func() time.Time
}

// NewSweeper creates a Sweeper. timeout bounds each individual recipient
// attempt; expiry counts as an ordinary per-recipient failure.
func NewSweeper(store database.Store, sender Sender, logger *slog.Logger, timeout time.Duration) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Sweeper{
		store:   store,
		sender:  sender,
		logger:  logger.With("component", "sweeper"),
		timeout: timeout,
		now:     time.Now,
	}
}

// SweepChallenges delivers all due scheduled challenges to every known user.
// Due entries are processed earliest first. A failure to reach one recipient
// never blocks the rest, and never prevents the entry from being marked sent.
func (s *Sweeper) SweepChallenges(ctx context.Context) error {
	s.challengeMu.Lock()
	defer s.challengeMu.Unlock()

	challenges, err := s.store.GetDueScheduledChallenges(ctx, s.now())
	if err != nil {
		return err
	}
	if len(challenges) == 0 {
		return nil
	}

	tasks, err := s.store.GetAllTasks(ctx, true)
	if err != nil {
		return err
	}
	taskByID := make(map[int64]database.Task, len(tasks))
	for _, t := range tasks {
		taskByID[t.ID] = t
	}

	users, err := s.store.GetAllUsers(ctx, nil)
	if err != nil {
		return err
	}

	for _, challenge := range challenges {
		sent, failed := 0, 0
		for _, userID := range users {
			if err := s.deliverChallenge(ctx, userID, challenge, taskByID); err != nil {
				failed++
				s.logger.WarnContext(ctx, "Challenge delivery failed for recipient",
					"challenge_id", challenge.ID, "user_id", userID, "error", err)
				continue
			}
			sent++
		}

		if err := s.store.MarkChallengeSent(ctx, challenge.ID); err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "Challenge delivered",
			"challenge_id", challenge.ID, "sent", sent, "failed", failed)
	}
	return nil
}

// deliverChallenge sends one challenge to one recipient: the optional
// accompanying text first, then each bundled task as an actionable prompt.
func (s *Sweeper) deliverChallenge(ctx context.Context, userID int64, challenge database.ScheduledChallenge, taskByID map[int64]database.Task) error {
	attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if challenge.MessageText.Valid && challenge.MessageText.String != "" {
		if err := s.sender.SendText(attemptCtx, userID, challenge.MessageText.String); err != nil {
			return err
		}
	}

	for _, taskID := range challenge.TaskIDs {
		task, ok := taskByID[taskID]
		if !ok {
			// Task deactivated between scheduling and delivery; skip it.
			continue
		}
		if err := s.sender.SendTaskPrompt(attemptCtx, userID, task); err != nil {
			return err
		}
	}
	return nil
}

// SweepMessages delivers all due scheduled messages to every known user,
// preferring a forward-reference over literal text when both are present.
func (s *Sweeper) SweepMessages(ctx context.Context) error {
	s.messageMu.Lock()
	defer s.messageMu.Unlock()

	messages, err := s.store.GetDueScheduledMessages(ctx, s.now())
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		return nil
	}

	users, err := s.store.GetAllUsers(ctx, nil)
	if err != nil {
		return err
	}

	for _, msg := range messages {
		sent, failed := 0, 0
		for _, userID := range users {
			if err := s.deliverMessage(ctx, userID, msg); err != nil {
				failed++
				s.logger.WarnContext(ctx, "Message delivery failed for recipient",
					"message_id", msg.ID, "user_id", userID, "error", err)
				continue
			}
			sent++
		}

		if err := s.store.MarkMessageSent(ctx, msg.ID); err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "Message delivered",
			"message_id", msg.ID, "sent", sent, "failed", failed)
	}
	return nil
}

func (s *Sweeper) deliverMessage(ctx context.Context, userID int64, msg database.ScheduledMessage) error {
	attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	switch {
	case msg.ForwardFromMessageID.Valid && msg.TargetChatID.Valid:
		return s.sender.Forward(attemptCtx, userID, msg.TargetChatID.Int64, msg.ForwardFromMessageID.Int64)
	case msg.Text.Valid && msg.Text.String != "":
		return s.sender.SendText(attemptCtx, userID, msg.Text.String)
	default:
		// Nothing deliverable; the entry still gets marked sent by the caller.
		return nil
	}
}

// SendReminders nudges every tandem member who has zero completions for any
// currently active task today. Read-only except for the sends themselves.
func (s *Sweeper) SendReminders(ctx context.Context, text string) error {
	tasks, err := s.store.GetAllTasks(ctx, true)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		return nil
	}

	taskIDs := make([]int64, len(tasks))
	for i, t := range tasks {
		taskIDs[i] = t.ID
	}

	users, err := s.store.GetUsersWithIncompleteTasks(ctx, taskIDs)
	if err != nil {
		return err
	}

	sent, failed := 0, 0
	for _, user := range users {
		attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.sender.SendText(attemptCtx, user.UserID, text)
		cancel()
		if err != nil {
			failed++
			s.logger.WarnContext(ctx, "Reminder delivery failed",
				"user_id", user.UserID, "error", err)
			continue
		}
		sent++
	}

	s.logger.InfoContext(ctx, "Reminders sent", "sent", sent, "failed", failed)
	return nil
}
