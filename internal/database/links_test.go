package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPitstopLinkLifecycle(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddPitstopLink(ctx, "", "https://example.com")
	require.Error(t, err)
	_, err = store.AddPitstopLink(ctx, "Docs", "")
	require.Error(t, err)

	id1, err := store.AddPitstopLink(ctx, "Docs", "https://example.com/docs")
	require.NoError(t, err)
	id2, err := store.AddPitstopLink(ctx, "Chat", "https://example.com/chat")
	require.NoError(t, err)

	links, err := store.GetPitstopLinks(ctx, true)
	require.NoError(t, err)
	require.Len(t, links, 2)
	require.Equal(t, id1, links[0].ID)
	require.Equal(t, "Docs", links[0].Title)

	url := "https://example.com/community"
	require.NoError(t, store.UpdatePitstopLink(ctx, id2, LinkUpdate{URL: &url}))
	require.NoError(t, store.UpdatePitstopLink(ctx, id2, LinkUpdate{}))
	require.ErrorIs(t, store.UpdatePitstopLink(ctx, 999, LinkUpdate{URL: &url}), ErrLinkNotFound)

	require.NoError(t, store.DeletePitstopLink(ctx, id1))
	require.ErrorIs(t, store.DeletePitstopLink(ctx, 999), ErrLinkNotFound)

	links, err = store.GetPitstopLinks(ctx, true)
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.Equal(t, id2, links[0].ID)
	require.Equal(t, url, links[0].URL)

	all, err := store.GetPitstopLinks(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.False(t, all[0].Active)
}
