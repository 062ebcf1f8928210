package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func userScore(t *testing.T, store *sqlxStore, userID int64) int64 {
	t.Helper()
	user, err := store.GetUserInfo(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, user)
	return user.Score
}

func TestToggleTaskRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	taskID, err := store.CreateTask(ctx, "Read a chapter", "", 3)
	require.NoError(t, err)

	completed, err := store.ToggleTask(ctx, 1, taskID)
	require.NoError(t, err)
	require.True(t, completed)
	require.Equal(t, int64(3), userScore(t, store, 1))

	stats, err := store.GetTodayStats(ctx, 1)
	require.NoError(t, err)
	require.True(t, stats[taskID])

	// Toggling again undoes both the completion and the points.
	completed, err = store.ToggleTask(ctx, 1, taskID)
	require.NoError(t, err)
	require.False(t, completed)
	require.Equal(t, int64(0), userScore(t, store, 1))

	stats, err = store.GetTodayStats(ctx, 1)
	require.NoError(t, err)
	require.False(t, stats[taskID])
}

func TestToggleTaskScoreNeverNegative(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	taskID, err := store.CreateTask(ctx, "Meet up", "", 5)
	require.NoError(t, err)

	_, err = store.ToggleTask(ctx, 1, taskID)
	require.NoError(t, err)

	// Simulate drifted data: the stored score is lower than the pending debit.
	db.MustExec(`UPDATE users SET score = 2 WHERE user_id = 1`)

	completed, err := store.ToggleTask(ctx, 1, taskID)
	require.NoError(t, err)
	require.False(t, completed)
	require.Equal(t, int64(0), userScore(t, store, 1))
}

func TestToggleTaskMissingOrInactive(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.ToggleTask(ctx, 1, 999)
	require.ErrorIs(t, err, ErrTaskNotFound)

	taskID, err := store.CreateTask(ctx, "Old habit", "", 1)
	require.NoError(t, err)
	require.NoError(t, store.DeleteTask(ctx, taskID))

	_, err = store.ToggleTask(ctx, 1, taskID)
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestToggleTaskUniquePerDay(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	taskID, err := store.CreateTask(ctx, "Ride", "", 2)
	require.NoError(t, err)

	_, err = store.ToggleTask(ctx, 1, taskID)
	require.NoError(t, err)

	// A second completion row for the same (user, task, day) must not exist.
	var count int
	require.NoError(t, db.Get(&count,
		`SELECT COUNT(*) FROM task_completions WHERE user_id = 1 AND task_id = ?`, taskID))
	require.Equal(t, 1, count)
}

func TestTogglesAcrossDaysAccumulate(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	day1 := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	fixClock(store, day1)

	taskID, err := store.CreateTask(ctx, "Ride", "", 5)
	require.NoError(t, err)

	_, err = store.ToggleTask(ctx, 1, taskID)
	require.NoError(t, err)

	// A new day starts a fresh completion state but keeps the score.
	fixClock(store, day1.AddDate(0, 0, 1))

	stats, err := store.GetTodayStats(ctx, 1)
	require.NoError(t, err)
	require.False(t, stats[taskID])

	_, err = store.ToggleTask(ctx, 1, taskID)
	require.NoError(t, err)
	require.Equal(t, int64(10), userScore(t, store, 1))
}

func TestResetDailyStats(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	day1 := time.Date(2026, 8, 20, 23, 0, 0, 0, time.UTC)
	fixClock(store, day1)

	taskID, err := store.CreateTask(ctx, "Ride", "", 4)
	require.NoError(t, err)
	_, err = store.ToggleTask(ctx, 1, taskID)
	require.NoError(t, err)

	// Midnight passes; the reset purges yesterday's completions but the
	// scores stand.
	day2 := day1.Add(2 * time.Hour)
	fixClock(store, day2)
	require.NoError(t, store.ResetDailyStats(ctx))

	var completions int
	require.NoError(t, db.Get(&completions, `SELECT COUNT(*) FROM task_completions`))
	require.Zero(t, completions)
	require.Equal(t, int64(4), userScore(t, store, 1))

	var marker string
	require.NoError(t, db.Get(&marker, `SELECT last_updated FROM daily_stats WHERE user_id = 1`))
	require.Equal(t, day2.UTC().Format(dayFormat), marker)

	// Running it again on the same day is a no-op.
	require.NoError(t, store.ResetDailyStats(ctx))
	require.Equal(t, int64(4), userScore(t, store, 1))
}

func TestGetUsersWithIncompleteTasks(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateTandem(ctx, 1, 2)
	require.NoError(t, err)
	// User 3 is unpaired and must never be nudged.
	require.NoError(t, store.RegisterUser(ctx, 3))

	taskA, err := store.CreateTask(ctx, "Ride", "", 1)
	require.NoError(t, err)
	taskB, err := store.CreateTask(ctx, "Read", "", 1)
	require.NoError(t, err)

	_, err = store.ToggleTask(ctx, 1, taskA)
	require.NoError(t, err)

	users, err := store.GetUsersWithIncompleteTasks(ctx, []int64{taskA, taskB})
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, int64(2), users[0].UserID)

	// No task filter means no one qualifies.
	users, err = store.GetUsersWithIncompleteTasks(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, users)
}

func TestFiveDayScenario(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	start := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	_, err := store.CreateTandem(ctx, 1, 2)
	require.NoError(t, err)

	fixClock(store, start)
	taskID, err := store.CreateTask(ctx, "Daily ride", "", 2)
	require.NoError(t, err)

	// Five days of alternating diligence: user 1 completes every day,
	// user 2 every other day.
	for day := 0; day < 5; day++ {
		fixClock(store, start.AddDate(0, 0, day))
		require.NoError(t, store.ResetDailyStats(ctx))

		_, err = store.ToggleTask(ctx, 1, taskID)
		require.NoError(t, err)
		if day%2 == 0 {
			_, err = store.ToggleTask(ctx, 2, taskID)
			require.NoError(t, err)
		}
	}

	require.Equal(t, int64(10), userScore(t, store, 1))
	require.Equal(t, int64(6), userScore(t, store, 2))
}
