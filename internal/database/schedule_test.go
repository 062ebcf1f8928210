package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScheduledChallengeDueSelection(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	_, err := store.CreateScheduledChallenge(ctx, nil, base, "nope")
	require.Error(t, err)

	late, err := store.CreateScheduledChallenge(ctx, []int64{1, 2}, base.Add(time.Hour), "evening round")
	require.NoError(t, err)
	early, err := store.CreateScheduledChallenge(ctx, []int64{3}, base.Add(-time.Hour), "")
	require.NoError(t, err)
	future, err := store.CreateScheduledChallenge(ctx, []int64{4}, base.Add(48*time.Hour), "")
	require.NoError(t, err)

	due, err := store.GetDueScheduledChallenges(ctx, base.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 2)

	// Earliest first, with the id list and optional text intact.
	require.Equal(t, early, due[0].ID)
	require.Equal(t, IDList{3}, due[0].TaskIDs)
	require.False(t, due[0].MessageText.Valid)

	require.Equal(t, late, due[1].ID)
	require.Equal(t, IDList{1, 2}, due[1].TaskIDs)
	require.Equal(t, "evening round", due[1].MessageText.String)

	require.NoError(t, store.MarkChallengeSent(ctx, early))

	due, err = store.GetDueScheduledChallenges(ctx, base.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, late, due[0].ID)

	due, err = store.GetDueScheduledChallenges(ctx, base.Add(72*time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 2)
	require.Equal(t, future, due[1].ID)
}

func TestScheduledChallengeTimesStoredUTC(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	zone := time.FixedZone("UTC+3", 3*3600)
	local := time.Date(2026, 8, 20, 15, 0, 0, 0, zone)

	_, err := store.CreateScheduledChallenge(ctx, []int64{1}, local, "")
	require.NoError(t, err)

	// 15:00 UTC+3 is 12:00 UTC, so it is due by 12:30 UTC.
	due, err := store.GetDueScheduledChallenges(ctx, time.Date(2026, 8, 20, 12, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, due, 1)

	due, err = store.GetDueScheduledChallenges(ctx, time.Date(2026, 8, 20, 11, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Empty(t, due)
}

func TestScheduledMessageLifecycle(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	_, err := store.CreateScheduledMessage(ctx, nil)
	require.Error(t, err)

	textID, err := store.CreateScheduledMessage(ctx, &ScheduledMessage{
		ScheduledTime: base,
		Text:          sql.NullString{String: "weekly digest", Valid: true},
	})
	require.NoError(t, err)

	fwdID, err := store.CreateScheduledMessage(ctx, &ScheduledMessage{
		MessageType:          "forward",
		ScheduledTime:        base.Add(time.Minute),
		TargetChatID:         sql.NullInt64{Int64: 100, Valid: true},
		ForwardFromMessageID: sql.NullInt64{Int64: 55, Valid: true},
	})
	require.NoError(t, err)

	due, err := store.GetDueScheduledMessages(ctx, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 2)

	// The type defaults to broadcast when unset.
	require.Equal(t, textID, due[0].ID)
	require.Equal(t, "broadcast", due[0].MessageType)
	require.Equal(t, "weekly digest", due[0].Text.String)
	require.False(t, due[0].TargetChatID.Valid)

	require.Equal(t, fwdID, due[1].ID)
	require.Equal(t, "forward", due[1].MessageType)
	require.Equal(t, int64(100), due[1].TargetChatID.Int64)
	require.Equal(t, int64(55), due[1].ForwardFromMessageID.Int64)

	require.NoError(t, store.MarkMessageSent(ctx, textID))
	require.NoError(t, store.MarkMessageSent(ctx, fwdID))

	due, err = store.GetDueScheduledMessages(ctx, base.Add(time.Hour))
	require.NoError(t, err)
	require.Empty(t, due)
}
