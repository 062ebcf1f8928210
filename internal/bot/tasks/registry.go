package tasks

import (
	"context"
)

// Task names, used as registry keys and gocron job names.
const (
	TaskDailyReset     = "daily_reset"
	TaskChallengeSweep = "challenge_sweep"
	TaskMessageSweep   = "message_sweep"
	TaskReminders      = "reminders"
)

// ScheduledTaskFunc defines the standard signature for all scheduled tasks.
// The context provided by the scheduler should be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// RegisterAllTasks initializes and returns a map of all registered scheduled
// tasks, keyed by task name.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	taskMap := map[string]ScheduledTaskFunc{
		TaskDailyReset:     newDailyResetTask(deps),
		TaskChallengeSweep: newChallengeSweepTask(deps),
		TaskMessageSweep:   newMessageSweepTask(deps),
		TaskReminders:      newRemindersTask(deps),
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(taskMap))
	return taskMap
}
