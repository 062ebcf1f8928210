package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// sendText sends a plain message, logging rather than propagating failures;
// a lost reply is not actionable by the handler.
func sendText(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", chatID)
	}
}

// sendMarkup sends a message with an attached keyboard.
func sendMarkup(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, text string, markup models.ReplyMarkup) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text, ReplyMarkup: markup})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send message with markup", "error", err, "chat_id", chatID)
	}
}

// editText rewrites an existing message in place, typically to advance an
// inline menu.
func editText(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, messageID int, text string, markup models.ReplyMarkup) {
	_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ReplyMarkup: markup,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to edit message", "error", err, "chat_id", chatID, "message_id", messageID)
	}
}

// answerCallback acknowledges a callback query so the client stops its
// spinner; text is optional.
func answerCallback(ctx context.Context, b *bot.Bot, log *slog.Logger, queryID, text string, alert bool) {
	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: queryID,
		Text:            text,
		ShowAlert:       alert,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to answer callback query", "error", err, "query_id", queryID)
	}
}

// callbackMessage extracts the accessible message a callback was attached to,
// or nil when Telegram withheld it.
func callbackMessage(cq *models.CallbackQuery) *models.Message {
	if cq == nil {
		return nil
	}
	return cq.Message.Message
}

// trailingID parses the numeric id after a callback data prefix.
func trailingID(data, prefix string) (int64, bool) {
	raw := strings.TrimPrefix(data, prefix)
	if raw == data {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// referralLink builds the deep link a user shares to invite a partner.
func referralLink(botUsername string, userID int64) string {
	return fmt.Sprintf("https://t.me/%s?start=ref%d", botUsername, userID)
}
