package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/require"

	"github.com/edgard/tandembot/internal/config"
	"github.com/edgard/tandembot/internal/database"
	"github.com/edgard/tandembot/internal/session"
)

// apiRecorder captures every Telegram API call the bot makes, as
// "method|body" strings.
type apiRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *apiRecorder) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		r.mu.Lock()
		r.calls = append(r.calls, req.URL.Path+"|"+string(body))
		r.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	}
}

func (r *apiRecorder) find(method string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []string
	for _, call := range r.calls {
		if strings.Contains(call, method) {
			matched = append(matched, call)
		}
	}
	return matched
}

func newCallbackTestDeps(t *testing.T) (HandlerDeps, *tgbot.Bot, *apiRecorder) {
	t.Helper()

	rec := &apiRecorder{}
	srv := httptest.NewServer(rec.handler())
	t.Cleanup(srv.Close)

	b, err := tgbot.New("123456:test-token",
		tgbot.WithServerURL(srv.URL),
		tgbot.WithSkipGetMe(),
	)
	require.NoError(t, err)

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })

	deps := HandlerDeps{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config:   &config.Config{Messages: config.DefaultMessages},
		Store:    database.NewStore(db, nil),
		Sessions: session.NewManager(),
	}
	return deps, b, rec
}

func callbackUpdate(userID int64, data string) *models.Update {
	return &models.Update{
		CallbackQuery: &models.CallbackQuery{
			ID:   "cq-1",
			From: models.User{ID: userID},
			Data: data,
			Message: models.MaybeInaccessibleMessage{
				Message: &models.Message{ID: 10, Chat: models.Chat{ID: userID}},
			},
		},
	}
}

func TestDeleteTaskCallbackReportsNotFound(t *testing.T) {
	deps, b, rec := newCallbackTestDeps(t)
	handle := NewAdminCallbackHandler(deps)

	handle(context.Background(), b, callbackUpdate(1, cbTaskDeletePrefix+"999"))

	answers := rec.find("answerCallbackQuery")
	require.Len(t, answers, 1)
	require.Contains(t, answers[0], deps.Config.Messages.TaskNotFound)
	require.Contains(t, answers[0], "show_alert")
}

func TestDeleteLinkCallbackReportsNotFound(t *testing.T) {
	deps, b, rec := newCallbackTestDeps(t)
	handle := NewAdminCallbackHandler(deps)

	handle(context.Background(), b, callbackUpdate(1, cbLinkDeletePrefix+"999"))

	answers := rec.find("answerCallbackQuery")
	require.Len(t, answers, 1)
	require.Contains(t, answers[0], deps.Config.Messages.LinkNotFound)
	require.Contains(t, answers[0], "show_alert")
}

func TestDeleteTaskCallbackDeactivates(t *testing.T) {
	deps, b, rec := newCallbackTestDeps(t)
	handle := NewAdminCallbackHandler(deps)
	ctx := context.Background()

	taskID, err := deps.Store.CreateTask(ctx, "Ride", "", 2)
	require.NoError(t, err)

	handle(ctx, b, callbackUpdate(1, fmt.Sprintf("%s%d", cbTaskDeletePrefix, taskID)))

	task, err := deps.Store.GetTask(ctx, taskID)
	require.NoError(t, err)
	require.NotNil(t, task)
	require.False(t, task.Active)

	// The success path acknowledges the tap, then re-renders the tasks menu
	// (which acknowledges again with empty text).
	answers := rec.find("answerCallbackQuery")
	require.Len(t, answers, 2)
	require.Contains(t, answers[0], "Task deleted")
	require.NotEmpty(t, rec.find("editMessageText"))
}
