package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/tandembot/internal/database"
)

// NewTrackerToggleHandler returns the callback handler for tracker buttons:
// it flips the completion state and re-renders the keyboard in place.
func NewTrackerToggleHandler(deps HandlerDeps) bot.HandlerFunc {
	return trackerToggleHandler{deps}.Handle
}

type trackerToggleHandler struct {
	deps HandlerDeps
}

func (h trackerToggleHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "tracker_toggle")

	cq := update.CallbackQuery
	if cq == nil {
		return
	}

	userID := cq.From.ID
	msgs := h.deps.Config.Messages

	taskID, ok := trailingID(cq.Data, cbTrackerTogglePrefix)
	if !ok {
		answerCallback(ctx, b, log, cq.ID, msgs.GeneralError, false)
		return
	}

	_, err := h.deps.Store.ToggleTask(ctx, userID, taskID)
	switch {
	case errors.Is(err, database.ErrTaskNotFound):
		answerCallback(ctx, b, log, cq.ID, msgs.TaskNotFound, true)
		return
	case err != nil:
		log.ErrorContext(ctx, "Failed to toggle task", "error", err, "user_id", userID, "task_id", taskID)
		answerCallback(ctx, b, log, cq.ID, msgs.GeneralError, false)
		return
	}

	h.rerender(ctx, b, log, cq)
	answerCallback(ctx, b, log, cq.ID, "", false)
}

// rerender replaces the tracker message with the current completion map.
func (h trackerToggleHandler) rerender(ctx context.Context, b *bot.Bot, log *slog.Logger, cq *models.CallbackQuery) {
	msg := callbackMessage(cq)
	if msg == nil {
		return
	}

	stats, err := h.deps.Store.GetTodayStats(ctx, cq.From.ID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to reload today's stats", "error", err, "user_id", cq.From.ID)
		return
	}
	tasks, err := h.deps.Store.GetAllTasks(ctx, true)
	if err != nil {
		log.ErrorContext(ctx, "Failed to reload tasks", "error", err)
		return
	}

	editText(ctx, b, log, msg.Chat.ID, msg.ID, h.deps.Config.Messages.Tracker, trackerKeyboard(tasks, stats))
}

// NewTrackerRefreshHandler returns the callback handler for the tracker's
// refresh button.
func NewTrackerRefreshHandler(deps HandlerDeps) bot.HandlerFunc {
	h := trackerToggleHandler{deps}
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		log := deps.Logger.With("handler", "tracker_refresh")
		cq := update.CallbackQuery
		if cq == nil {
			return
		}
		h.rerender(ctx, b, log, cq)
		answerCallback(ctx, b, log, cq.ID, "", false)
	}
}

// NewChallengeDoneHandler returns the callback handler for the single-task
// prompt delivered with scheduled challenges. Completion is recorded and the
// button removed.
func NewChallengeDoneHandler(deps HandlerDeps) bot.HandlerFunc {
	return challengeDoneHandler{deps}.Handle
}

type challengeDoneHandler struct {
	deps HandlerDeps
}

func (h challengeDoneHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "challenge_done")

	cq := update.CallbackQuery
	if cq == nil {
		return
	}

	userID := cq.From.ID
	msgs := h.deps.Config.Messages

	taskID, ok := trailingID(cq.Data, cbChallengeDonePrefix)
	if !ok {
		answerCallback(ctx, b, log, cq.ID, msgs.GeneralError, false)
		return
	}

	completed, err := h.deps.Store.ToggleTask(ctx, userID, taskID)
	switch {
	case errors.Is(err, database.ErrTaskNotFound):
		answerCallback(ctx, b, log, cq.ID, msgs.TaskNotFound, true)
		return
	case err != nil:
		log.ErrorContext(ctx, "Failed to toggle task from challenge", "error", err, "user_id", userID, "task_id", taskID)
		answerCallback(ctx, b, log, cq.ID, msgs.GeneralError, false)
		return
	}

	log.InfoContext(ctx, "Task toggled from challenge prompt",
		"user_id", userID, "task_id", taskID, "completed", completed)

	if msg := callbackMessage(cq); msg != nil {
		_, err := b.EditMessageReplyMarkup(ctx, &bot.EditMessageReplyMarkupParams{
			ChatID:    msg.Chat.ID,
			MessageID: msg.ID,
		})
		if err != nil {
			log.ErrorContext(ctx, "Failed to remove prompt keyboard", "error", err, "chat_id", msg.Chat.ID)
		}
	}

	answerCallback(ctx, b, log, cq.ID, msgs.TaskMarked, false)
}
