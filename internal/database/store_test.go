package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// newTestStore opens a fresh migrated database in a temp dir and returns the
// concrete store so tests can pin its clock.
func newTestStore(t *testing.T) (*sqlxStore, *sqlx.DB) {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { CloseDB(db) })

	store, ok := NewStore(db, nil).(*sqlxStore)
	require.True(t, ok)
	return store, db
}

// fixClock pins the store's clock to a fixed instant.
func fixClock(store *sqlxStore, at time.Time) {
	store.now = func() time.Time { return at }
}

func TestPing(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Ping(context.Background()))
}

func TestRegisterUserIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RegisterUser(ctx, 100))
	require.NoError(t, store.RegisterUser(ctx, 100))

	user, err := store.GetUserInfo(ctx, 100)
	require.NoError(t, err)
	require.NotNil(t, user)
	require.Equal(t, DefaultUserName, user.Name)
	require.Zero(t, user.Score)
	require.False(t, user.TandemID.Valid)
}

func TestGetUserInfoUnknownUser(t *testing.T) {
	store, _ := newTestStore(t)

	user, err := store.GetUserInfo(context.Background(), 999)
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestSetUserName(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RegisterUser(ctx, 100))
	require.NoError(t, store.SetUserName(ctx, 100, "Alice"))

	user, err := store.GetUserInfo(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, "Alice", user.Name)
}

func TestGetAllUsersTandemFilter(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateTandem(ctx, 1, 2)
	require.NoError(t, err)
	require.NoError(t, store.RegisterUser(ctx, 3))

	all, err := store.GetAllUsers(ctx, nil)
	require.NoError(t, err)
	require.ElementsMatch(t, []int64{1, 2, 3}, all)

	inTandem := true
	paired, err := store.GetAllUsers(ctx, &inTandem)
	require.NoError(t, err)
	require.ElementsMatch(t, []int64{1, 2}, paired)

	inTandem = false
	solo, err := store.GetAllUsers(ctx, &inTandem)
	require.NoError(t, err)
	require.Equal(t, []int64{3}, solo)
}
