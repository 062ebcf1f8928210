package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/tandembot/internal/database"
	"github.com/edgard/tandembot/internal/session"
)

// NewStartHandler returns a handler for the /start command, including the
// "ref<id>" deep-link pairing flow.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return startHandler{deps}.Handle
}

// startHandler processes the /start command using injected dependencies.
type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Start handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	msgs := h.deps.Config.Messages

	log.InfoContext(ctx, "Handling /start command", "chat_id", chatID, "user_id", userID)

	if err := h.deps.Store.RegisterUser(ctx, userID); err != nil {
		log.ErrorContext(ctx, "Failed to register user", "error", err, "user_id", userID)
		sendText(ctx, b, log, chatID, msgs.GeneralError)
		return
	}

	// "/start ref<id>" is the referral deep link; plain /start has no payload.
	if payload, ok := strings.CutPrefix(update.Message.Text, "/start ref"); ok {
		if !h.pairWithReferrer(ctx, b, log, userID, chatID, payload) {
			return
		}
	}

	user, err := h.deps.Store.GetUserInfo(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load user", "error", err, "user_id", userID)
		sendText(ctx, b, log, chatID, msgs.GeneralError)
		return
	}

	// Users keep the sentinel name until they introduce themselves.
	if user != nil && user.Name == database.DefaultUserName {
		sendText(ctx, b, log, chatID, msgs.AskName)
		h.deps.Sessions.Set(userID, session.State{Step: session.StepChooseName})
		return
	}

	info, err := h.deps.Store.GetTandemInfo(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load tandem info", "error", err, "user_id", userID)
		sendText(ctx, b, log, chatID, msgs.GeneralError)
		return
	}

	if info == nil {
		link := referralLink(h.botUsername(), userID)
		sendText(ctx, b, log, chatID, fmt.Sprintf(msgs.ShareReferral, link))
		return
	}

	sendMarkup(ctx, b, log, chatID, msgs.Welcome, mainMenuKeyboard())
}

// pairWithReferrer creates the tandem from a referral payload. It reports
// whether the /start flow should continue; validation failures stop it.
func (h startHandler) pairWithReferrer(ctx context.Context, b *bot.Bot, log *slog.Logger, userID, chatID int64, payload string) bool {
	msgs := h.deps.Config.Messages

	referrerID, err := strconv.ParseInt(payload, 10, 64)
	if err != nil || referrerID <= 0 {
		sendText(ctx, b, log, chatID, msgs.InvalidReferral)
		return false
	}
	if referrerID == userID {
		sendText(ctx, b, log, chatID, msgs.SelfReferral)
		return false
	}

	// Joiners that already have a tandem just fall through to the normal
	// /start flow; the link is stale for them, not an error.
	info, err := h.deps.Store.GetTandemInfo(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to check joiner pairing", "error", err, "user_id", userID)
		sendText(ctx, b, log, chatID, msgs.GeneralError)
		return false
	}
	if info != nil {
		return true
	}

	_, err = h.deps.Store.CreateTandem(ctx, userID, referrerID)
	switch {
	case errors.Is(err, database.ErrAlreadyPaired):
		sendText(ctx, b, log, chatID, msgs.TandemComplete)
		return false
	case err != nil:
		log.ErrorContext(ctx, "Failed to create tandem", "error", err, "user_id", userID, "referrer_id", referrerID)
		sendText(ctx, b, log, chatID, msgs.GeneralError)
		return false
	}

	log.InfoContext(ctx, "Tandem created via referral", "user_id", userID, "referrer_id", referrerID)

	sendText(ctx, b, log, chatID, msgs.TandemCreated)
	sendMarkup(ctx, b, log, referrerID, msgs.PartnerJoined, tandemNameKeyboard())
	return true
}

func (h startHandler) botUsername() string {
	if h.deps.Config.Telegram.BotInfo != nil {
		return h.deps.Config.Telegram.BotInfo.Username
	}
	return ""
}
