package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCreateTandemPairsBothUsers(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	tandemID, err := store.CreateTandem(ctx, 1, 2)
	require.NoError(t, err)
	require.NotZero(t, tandemID)

	partner, err := store.GetPartnerID(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(2), partner)

	partner, err = store.GetPartnerID(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, int64(1), partner)

	info, err := store.GetTandemInfo(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, info)
	require.Equal(t, tandemID, info.TandemID)
	require.Equal(t, DefaultTandemName, info.TandemName)
	require.Equal(t, int64(2), info.PartnerID)
}

func TestCreateTandemRejectsSelf(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.CreateTandem(context.Background(), 7, 7)
	require.Error(t, err)
}

func TestCreateTandemAlreadyPaired(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateTandem(ctx, 1, 2)
	require.NoError(t, err)

	// Either member being paired blocks a new tandem.
	_, err = store.CreateTandem(ctx, 1, 3)
	require.ErrorIs(t, err, ErrAlreadyPaired)

	_, err = store.CreateTandem(ctx, 3, 2)
	require.ErrorIs(t, err, ErrAlreadyPaired)

	// The rejected attempt must not leave a half-formed tandem behind.
	info, err := store.GetTandemInfo(ctx, 3)
	require.NoError(t, err)
	require.Nil(t, info)
}

func TestGetPartnerIDNotPaired(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RegisterUser(ctx, 5))
	_, err := store.GetPartnerID(ctx, 5)
	require.ErrorIs(t, err, ErrNotPaired)
}

func TestSetTandemName(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	tandemID, err := store.CreateTandem(ctx, 1, 2)
	require.NoError(t, err)

	require.NoError(t, store.SetTandemName(ctx, tandemID, "The Pedalers"))

	info, err := store.GetTandemInfo(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "The Pedalers", info.TandemName)

	require.ErrorIs(t, store.SetTandemName(ctx, tandemID+100, "Ghost"), ErrTandemNotFound)
}

func TestDisbandTandem(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	tandemID, err := store.CreateTandem(ctx, 1, 2)
	require.NoError(t, err)

	require.NoError(t, store.DisbandTandem(ctx, 1))

	// Both members survive, unpaired; the tandem row is gone.
	for _, userID := range []int64{1, 2} {
		user, err := store.GetUserInfo(ctx, userID)
		require.NoError(t, err)
		require.NotNil(t, user)
		require.False(t, user.TandemID.Valid)
	}
	_, err = store.GetTandemSummary(ctx, tandemID)
	require.ErrorIs(t, err, ErrTandemNotFound)

	require.ErrorIs(t, store.DisbandTandem(ctx, 1), ErrNotPaired)

	// Ex-members can pair again.
	_, err = store.CreateTandem(ctx, 1, 3)
	require.NoError(t, err)
}

func TestTandemScoreAggregation(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	tandemID, err := store.CreateTandem(ctx, 1, 2)
	require.NoError(t, err)
	require.NoError(t, store.SetUserName(ctx, 1, "Alice"))
	require.NoError(t, store.SetUserName(ctx, 2, "Bob"))

	db.MustExec(`UPDATE users SET score = 7 WHERE user_id = 1`)
	db.MustExec(`UPDATE users SET score = 5 WHERE user_id = 2`)

	breakdown, err := store.GetTandemScoreBreakdown(ctx, tandemID)
	require.NoError(t, err)
	require.Equal(t, map[int64]int64{1: 7, 2: 5}, breakdown)

	summary, err := store.GetTandemSummary(ctx, tandemID)
	require.NoError(t, err)
	require.Equal(t, int64(12), summary.TotalScore)
	require.ElementsMatch(t, []string{"Alice", "Bob"}, summary.UserNames)
}

func TestLeaderboardOrdering(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	first, err := store.CreateTandem(ctx, 1, 2)
	require.NoError(t, err)
	second, err := store.CreateTandem(ctx, 3, 4)
	require.NoError(t, err)
	third, err := store.CreateTandem(ctx, 5, 6)
	require.NoError(t, err)

	db.MustExec(`UPDATE users SET score = 3 WHERE user_id IN (1, 2)`)
	db.MustExec(`UPDATE users SET score = 10 WHERE user_id IN (3, 4)`)
	// Third tandem ties with the first; ties resolve in id order.
	db.MustExec(`UPDATE users SET score = 3 WHERE user_id IN (5, 6)`)

	summaries, err := store.GetAllTandemsWithSummary(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	require.Equal(t, second, summaries[0].ID)
	require.Equal(t, first, summaries[1].ID)
	require.Equal(t, third, summaries[2].ID)
}

func TestGetTandemStatisticsWindow(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	fixClock(store, base)

	tandemID, err := store.CreateTandem(ctx, 1, 2)
	require.NoError(t, err)

	taskID, err := store.CreateTask(ctx, "Ride", "", 2)
	require.NoError(t, err)

	// One completion eight days back (outside a 7 day window), one inside,
	// one today.
	fixClock(store, base.AddDate(0, 0, -8))
	_, err = store.ToggleTask(ctx, 1, taskID)
	require.NoError(t, err)

	fixClock(store, base.AddDate(0, 0, -3))
	_, err = store.ToggleTask(ctx, 2, taskID)
	require.NoError(t, err)

	fixClock(store, base)
	_, err = store.ToggleTask(ctx, 1, taskID)
	require.NoError(t, err)

	stats, err := store.GetTandemStatistics(ctx, tandemID, 7)
	require.NoError(t, err)
	require.Equal(t, int64(6), stats.TotalScore)
	require.Equal(t, int64(2), stats.TasksCompleted)
	require.Len(t, stats.CompletionsByDay, 2)
}
