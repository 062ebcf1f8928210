package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateTaskValidation(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateTask(ctx, "", "desc", 5)
	require.Error(t, err)

	// Non-positive point values are floored to 1.
	id, err := store.CreateTask(ctx, "Stretch", "", -3)
	require.NoError(t, err)

	task, err := store.GetTask(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, task)
	require.Equal(t, int64(1), task.Points)
	require.True(t, task.Active)
}

func TestGetTaskNotFound(t *testing.T) {
	store, _ := newTestStore(t)

	task, err := store.GetTask(context.Background(), 42)
	require.NoError(t, err)
	require.Nil(t, task)
}

func TestGetAllTasksActiveFilter(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	id1, err := store.CreateTask(ctx, "Ride", "", 2)
	require.NoError(t, err)
	id2, err := store.CreateTask(ctx, "Read", "", 3)
	require.NoError(t, err)
	require.NoError(t, store.DeleteTask(ctx, id1))

	active, err := store.GetAllTasks(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, id2, active[0].ID)

	all, err := store.GetAllTasks(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, id1, all[0].ID)
	require.False(t, all[0].Active)
}

func TestUpdateTaskPartial(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateTask(ctx, "Ride", "Around the block", 2)
	require.NoError(t, err)

	points := int64(7)
	require.NoError(t, store.UpdateTask(ctx, id, TaskUpdate{Points: &points}))

	task, err := store.GetTask(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Ride", task.Title)
	require.Equal(t, "Around the block", task.Description)
	require.Equal(t, int64(7), task.Points)

	title := "Long ride"
	active := false
	require.NoError(t, store.UpdateTask(ctx, id, TaskUpdate{Title: &title, Active: &active}))

	task, err = store.GetTask(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Long ride", task.Title)
	require.False(t, task.Active)

	// An empty update is a no-op, not an error.
	require.NoError(t, store.UpdateTask(ctx, id, TaskUpdate{}))

	require.ErrorIs(t, store.UpdateTask(ctx, 999, TaskUpdate{Points: &points}), ErrTaskNotFound)
}

func TestDeleteTask(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateTask(ctx, "Ride", "", 2)
	require.NoError(t, err)

	require.NoError(t, store.DeleteTask(ctx, id))

	// Soft delete keeps the row for history.
	task, err := store.GetTask(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, task)
	require.False(t, task.Active)

	require.ErrorIs(t, store.DeleteTask(ctx, 999), ErrTaskNotFound)
}
