package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// The /test_* commands let an administrator fire a scheduled job outside its
// cron window, mostly to verify a deployment.

// NewTestResetHandler returns a handler for /test_reset.
func NewTestResetHandler(deps HandlerDeps) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		log := deps.Logger.With("handler", "test_reset")
		if update.Message == nil {
			return
		}
		chatID := update.Message.Chat.ID

		if err := deps.Store.ResetDailyStats(ctx); err != nil {
			log.ErrorContext(ctx, "Manual daily reset failed", "error", err)
			sendText(ctx, b, log, chatID, deps.Config.Messages.GeneralError)
			return
		}
		sendText(ctx, b, log, chatID, "✅ Daily stats reset")
	}
}

// NewTestChallengesHandler returns a handler for /test_challenges.
func NewTestChallengesHandler(deps HandlerDeps) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		log := deps.Logger.With("handler", "test_challenges")
		if update.Message == nil {
			return
		}
		chatID := update.Message.Chat.ID

		if err := deps.Sweeper.SweepChallenges(ctx); err != nil {
			log.ErrorContext(ctx, "Manual challenge sweep failed", "error", err)
			sendText(ctx, b, log, chatID, deps.Config.Messages.GeneralError)
			return
		}
		sendText(ctx, b, log, chatID, "✅ Due challenges delivered")
	}
}

// NewTestMessagesHandler returns a handler for /test_messages.
func NewTestMessagesHandler(deps HandlerDeps) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		log := deps.Logger.With("handler", "test_messages")
		if update.Message == nil {
			return
		}
		chatID := update.Message.Chat.ID

		if err := deps.Sweeper.SweepMessages(ctx); err != nil {
			log.ErrorContext(ctx, "Manual message sweep failed", "error", err)
			sendText(ctx, b, log, chatID, deps.Config.Messages.GeneralError)
			return
		}
		sendText(ctx, b, log, chatID, "✅ Due messages delivered")
	}
}

// NewTestRemindersHandler returns a handler for /test_reminders.
func NewTestRemindersHandler(deps HandlerDeps) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		log := deps.Logger.With("handler", "test_reminders")
		if update.Message == nil {
			return
		}
		chatID := update.Message.Chat.ID

		if err := deps.Sweeper.SendReminders(ctx, deps.Config.Messages.Reminder); err != nil {
			log.ErrorContext(ctx, "Manual reminder pass failed", "error", err)
			sendText(ctx, b, log, chatID, deps.Config.Messages.GeneralError)
			return
		}
		sendText(ctx, b, log, chatID, "✅ Reminders sent")
	}
}
