package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTrailingID(t *testing.T) {
	id, ok := trailingID("tracker_toggle_42", cbTrackerTogglePrefix)
	require.True(t, ok)
	require.Equal(t, int64(42), id)

	_, ok = trailingID("tracker_toggle_", cbTrackerTogglePrefix)
	require.False(t, ok)

	_, ok = trailingID("tracker_toggle_abc", cbTrackerTogglePrefix)
	require.False(t, ok)

	_, ok = trailingID("something_else_42", cbTrackerTogglePrefix)
	require.False(t, ok)
}

func TestReferralLink(t *testing.T) {
	require.Equal(t, "https://t.me/tandembot?start=ref42", referralLink("tandembot", 42))
}

func TestParseScheduleTime(t *testing.T) {
	at, ok := parseScheduleTime("2026-09-01 18:30")
	require.True(t, ok)
	require.Equal(t, time.Date(2026, 9, 1, 18, 30, 0, 0, time.Local), at)

	before := time.Now()
	at, ok = parseScheduleTime("now")
	require.True(t, ok)
	require.False(t, at.After(time.Now()))
	require.False(t, at.Before(before))

	_, ok = parseScheduleTime("tomorrow")
	require.False(t, ok)
	_, ok = parseScheduleTime("2026-09-01")
	require.False(t, ok)
}

func TestContainsID(t *testing.T) {
	require.True(t, containsID([]int64{1, 2, 3}, 2))
	require.False(t, containsID([]int64{1, 2, 3}, 4))
	require.False(t, containsID(nil, 1))
}
