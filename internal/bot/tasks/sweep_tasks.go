package tasks

import (
	"context"
	"fmt"
)

// newChallengeSweepTask creates the periodic due-challenge delivery job.
func newChallengeSweepTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", TaskChallengeSweep)

	return func(ctx context.Context) error {
		if err := deps.Sweeper.SweepChallenges(ctx); err != nil {
			log.ErrorContext(ctx, "Challenge sweep failed", "error", err)
			return fmt.Errorf("challenge sweep failed: %w", err)
		}
		return nil
	}
}

// newMessageSweepTask creates the periodic due-message delivery job.
func newMessageSweepTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", TaskMessageSweep)

	return func(ctx context.Context) error {
		if err := deps.Sweeper.SweepMessages(ctx); err != nil {
			log.ErrorContext(ctx, "Message sweep failed", "error", err)
			return fmt.Errorf("message sweep failed: %w", err)
		}
		return nil
	}
}

// newRemindersTask creates the end-of-day nudge for tandem members with
// unfinished tasks.
func newRemindersTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", TaskReminders)

	return func(ctx context.Context) error {
		if err := deps.Sweeper.SendReminders(ctx, deps.Config.Messages.Reminder); err != nil {
			log.ErrorContext(ctx, "Reminder pass failed", "error", err)
			return fmt.Errorf("reminder pass failed: %w", err)
		}
		return nil
	}
}
