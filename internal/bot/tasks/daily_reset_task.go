package tasks

import (
	"context"
	"fmt"
)

// newDailyResetTask creates the nightly rollover job: daily markers move to
// today and completion records from past dates are purged.
func newDailyResetTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", TaskDailyReset)

	return func(ctx context.Context) error {
		if err := deps.Store.ResetDailyStats(ctx); err != nil {
			log.ErrorContext(ctx, "Daily reset failed", "error", err)
			return fmt.Errorf("daily reset failed: %w", err)
		}
		return nil
	}
}
