package broadcast

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edgard/tandembot/internal/database"
)

// fakeSender records every delivery and can be told to fail for specific
// chats.
type fakeSender struct {
	mu       sync.Mutex
	texts    map[int64][]string
	prompts  map[int64][]int64
	forwards map[int64]int
	failFor  map[int64]bool
}

func newFakeSender() *fakeSender {
	return &fakeSender{
		texts:    make(map[int64][]string),
		prompts:  make(map[int64][]int64),
		forwards: make(map[int64]int),
		failFor:  make(map[int64]bool),
	}
}

func (f *fakeSender) SendText(_ context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[chatID] {
		return errors.New("chat unreachable")
	}
	f.texts[chatID] = append(f.texts[chatID], text)
	return nil
}

func (f *fakeSender) SendTaskPrompt(_ context.Context, chatID int64, task database.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[chatID] {
		return errors.New("chat unreachable")
	}
	f.prompts[chatID] = append(f.prompts[chatID], task.ID)
	return nil
}

func (f *fakeSender) Forward(_ context.Context, toChatID, _ int64, _ int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[toChatID] {
		return errors.New("chat unreachable")
	}
	f.forwards[toChatID]++
	return nil
}

func newTestSweeper(t *testing.T, at time.Time) (*Sweeper, database.Store, *fakeSender) {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })

	store := database.NewStore(db, nil)
	sender := newFakeSender()

	sweeper := NewSweeper(store, sender, nil, time.Second)
	sweeper.now = func() time.Time { return at }
	return sweeper, store, sender
}

func TestSweepChallengesExactlyOnce(t *testing.T) {
	now := time.Date(2026, 8, 20, 19, 0, 0, 0, time.UTC)
	sweeper, store, sender := newTestSweeper(t, now)
	ctx := context.Background()

	require.NoError(t, store.RegisterUser(ctx, 1))
	require.NoError(t, store.RegisterUser(ctx, 2))

	taskID, err := store.CreateTask(ctx, "Evening ride", "", 3)
	require.NoError(t, err)

	_, err = store.CreateScheduledChallenge(ctx, []int64{taskID}, now.Add(-time.Minute), "Time to ride!")
	require.NoError(t, err)

	require.NoError(t, sweeper.SweepChallenges(ctx))

	for _, id := range []int64{1, 2} {
		require.Equal(t, []string{"Time to ride!"}, sender.texts[id])
		require.Equal(t, []int64{taskID}, sender.prompts[id])
	}

	// A second sweep finds nothing: the entry is marked sent.
	require.NoError(t, sweeper.SweepChallenges(ctx))
	require.Len(t, sender.texts[1], 1)
	require.Len(t, sender.prompts[1], 1)
}

func TestSweepChallengesSkipsDeactivatedTasks(t *testing.T) {
	now := time.Date(2026, 8, 20, 19, 0, 0, 0, time.UTC)
	sweeper, store, sender := newTestSweeper(t, now)
	ctx := context.Background()

	require.NoError(t, store.RegisterUser(ctx, 1))

	keepID, err := store.CreateTask(ctx, "Ride", "", 1)
	require.NoError(t, err)
	goneID, err := store.CreateTask(ctx, "Old habit", "", 1)
	require.NoError(t, err)

	_, err = store.CreateScheduledChallenge(ctx, []int64{keepID, goneID}, now.Add(-time.Minute), "")
	require.NoError(t, err)

	// Deactivated between scheduling and delivery.
	require.NoError(t, store.DeleteTask(ctx, goneID))

	require.NoError(t, sweeper.SweepChallenges(ctx))
	require.Equal(t, []int64{keepID}, sender.prompts[1])
	require.Empty(t, sender.texts[1])
}

func TestSweepChallengesFailureIsolation(t *testing.T) {
	now := time.Date(2026, 8, 20, 19, 0, 0, 0, time.UTC)
	sweeper, store, sender := newTestSweeper(t, now)
	ctx := context.Background()

	require.NoError(t, store.RegisterUser(ctx, 1))
	require.NoError(t, store.RegisterUser(ctx, 2))
	require.NoError(t, store.RegisterUser(ctx, 3))

	taskID, err := store.CreateTask(ctx, "Ride", "", 1)
	require.NoError(t, err)
	_, err = store.CreateScheduledChallenge(ctx, []int64{taskID}, now.Add(-time.Minute), "")
	require.NoError(t, err)

	sender.failFor[2] = true

	require.NoError(t, sweeper.SweepChallenges(ctx))
	require.Equal(t, []int64{taskID}, sender.prompts[1])
	require.Empty(t, sender.prompts[2])
	require.Equal(t, []int64{taskID}, sender.prompts[3])

	// The unreachable recipient does not hold the entry open.
	sender.failFor[2] = false
	require.NoError(t, sweeper.SweepChallenges(ctx))
	require.Empty(t, sender.prompts[2])
}

func TestSweepMessagesPrefersForward(t *testing.T) {
	now := time.Date(2026, 8, 20, 19, 0, 0, 0, time.UTC)
	sweeper, store, sender := newTestSweeper(t, now)
	ctx := context.Background()

	require.NoError(t, store.RegisterUser(ctx, 1))

	_, err := store.CreateScheduledMessage(ctx, &database.ScheduledMessage{
		ScheduledTime:        now.Add(-time.Minute),
		Text:                 sql.NullString{String: "fallback text", Valid: true},
		TargetChatID:         sql.NullInt64{Int64: 500, Valid: true},
		ForwardFromMessageID: sql.NullInt64{Int64: 7, Valid: true},
	})
	require.NoError(t, err)

	_, err = store.CreateScheduledMessage(ctx, &database.ScheduledMessage{
		ScheduledTime: now.Add(-time.Minute),
		Text:          sql.NullString{String: "plain broadcast", Valid: true},
	})
	require.NoError(t, err)

	require.NoError(t, sweeper.SweepMessages(ctx))
	require.Equal(t, 1, sender.forwards[1])
	require.Equal(t, []string{"plain broadcast"}, sender.texts[1])

	require.NoError(t, sweeper.SweepMessages(ctx))
	require.Equal(t, 1, sender.forwards[1])
	require.Len(t, sender.texts[1], 1)
}

func TestSweepIgnoresFutureEntries(t *testing.T) {
	now := time.Date(2026, 8, 20, 19, 0, 0, 0, time.UTC)
	sweeper, store, sender := newTestSweeper(t, now)
	ctx := context.Background()

	require.NoError(t, store.RegisterUser(ctx, 1))

	taskID, err := store.CreateTask(ctx, "Ride", "", 1)
	require.NoError(t, err)
	_, err = store.CreateScheduledChallenge(ctx, []int64{taskID}, now.Add(time.Hour), "")
	require.NoError(t, err)
	_, err = store.CreateScheduledMessage(ctx, &database.ScheduledMessage{
		ScheduledTime: now.Add(time.Hour),
		Text:          sql.NullString{String: "later", Valid: true},
	})
	require.NoError(t, err)

	require.NoError(t, sweeper.SweepChallenges(ctx))
	require.NoError(t, sweeper.SweepMessages(ctx))
	require.Empty(t, sender.prompts[1])
	require.Empty(t, sender.texts[1])

	// Move the clock past the send time and both become due.
	sweeper.now = func() time.Time { return now.Add(2 * time.Hour) }
	require.NoError(t, sweeper.SweepChallenges(ctx))
	require.NoError(t, sweeper.SweepMessages(ctx))
	require.Equal(t, []int64{taskID}, sender.prompts[1])
	require.Equal(t, []string{"later"}, sender.texts[1])
}

func TestSendRemindersTargetsIncompleteTandemMembers(t *testing.T) {
	now := time.Date(2026, 8, 20, 19, 0, 0, 0, time.UTC)
	sweeper, store, sender := newTestSweeper(t, now)
	ctx := context.Background()

	_, err := store.CreateTandem(ctx, 1, 2)
	require.NoError(t, err)
	// Unpaired users never get nudged.
	require.NoError(t, store.RegisterUser(ctx, 3))

	taskID, err := store.CreateTask(ctx, "Ride", "", 1)
	require.NoError(t, err)

	_, err = store.ToggleTask(ctx, 1, taskID)
	require.NoError(t, err)

	require.NoError(t, sweeper.SendReminders(ctx, "Don't forget your tasks!"))
	require.Empty(t, sender.texts[1])
	require.Equal(t, []string{"Don't forget your tasks!"}, sender.texts[2])
	require.Empty(t, sender.texts[3])
}

func TestSendRemindersNoTasksIsNoop(t *testing.T) {
	now := time.Date(2026, 8, 20, 19, 0, 0, 0, time.UTC)
	sweeper, store, sender := newTestSweeper(t, now)
	ctx := context.Background()

	_, err := store.CreateTandem(ctx, 1, 2)
	require.NoError(t, err)

	require.NoError(t, sweeper.SendReminders(ctx, "nudge"))
	require.Empty(t, sender.texts)
}
