package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/tandembot/internal/database"
)

// Sender adapts the Telegram API to the broadcast.Sender port. User ids
// double as private chat ids, which is how Telegram addresses direct
// messages.
type Sender struct {
	bot    *bot.Bot
	logger *slog.Logger
}

// NewSender creates a Sender backed by a Telegram bot instance.
func NewSender(b *bot.Bot, logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{
		bot:    b,
		logger: logger.With("component", "telegram_sender"),
	}
}

// SendText delivers plain text to a chat.
func (s *Sender) SendText(ctx context.Context, chatID int64, text string) error {
	_, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
	}
	return nil
}

// SendTaskPrompt delivers one challenge task with an inline button that
// toggles its completion.
func (s *Sender) SendTaskPrompt(ctx context.Context, chatID int64, task database.Task) error {
	text := task.Title
	if task.Description != "" {
		text += "\n" + task.Description
	}

	_, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: TaskPromptKeyboard(task.ID),
	})
	if err != nil {
		return fmt.Errorf("failed to send task prompt to chat %d: %w", chatID, err)
	}
	return nil
}

// Forward re-sends an existing message from another chat.
func (s *Sender) Forward(ctx context.Context, toChatID, fromChatID, messageID int64) error {
	_, err := s.bot.ForwardMessage(ctx, &bot.ForwardMessageParams{
		ChatID:     toChatID,
		FromChatID: fromChatID,
		MessageID:  int(messageID),
	})
	if err != nil {
		return fmt.Errorf("failed to forward message to chat %d: %w", toChatID, err)
	}
	return nil
}

// TaskPromptKeyboard builds the single-button completion affordance attached
// to challenge task prompts.
func TaskPromptKeyboard(taskID int64) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{{
			{Text: "Mark done", CallbackData: fmt.Sprintf("challenge_done_%d", taskID)},
		}},
	}
}
