package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/tandembot/internal/session"
)

// NewTextHandler returns the default handler: it routes free-form text into
// the sender's pending multi-step flow, if any. Messages outside a flow are
// ignored; the menu buttons and commands have their own registrations.
func NewTextHandler(deps HandlerDeps) bot.HandlerFunc {
	return textHandler{deps}.Handle
}

type textHandler struct {
	deps HandlerDeps
}

func (h textHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "text")

	if update.Message == nil || update.Message.From == nil {
		return
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)

	step := h.deps.Sessions.Step(userID)
	if step == session.StepNone {
		return
	}

	// /stop aborts any pending flow.
	if text == "/stop" {
		h.deps.Sessions.Clear(userID)
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.BroadcastCanceled)
		return
	}

	switch step {
	case session.StepChooseName:
		h.handleChooseName(ctx, b, log, userID, chatID, text)
	case session.StepChooseTandemName:
		h.handleChooseTandemName(ctx, b, log, userID, chatID, text)
	default:
		// The remaining steps belong to admin wizards. The step was set from
		// behind the admin middleware, but re-check before acting on input.
		if !h.deps.Config.Telegram.IsAdmin(userID) {
			log.WarnContext(ctx, "Non-admin input for admin wizard step", "user_id", userID, "step", step)
			h.deps.Sessions.Clear(userID)
			return
		}
		adminWizard{h.deps}.handleStep(ctx, b, update, step)
	}
}

func (h textHandler) handleChooseName(ctx context.Context, b *bot.Bot, log *slog.Logger, userID, chatID int64, name string) {
	msgs := h.deps.Config.Messages

	if !h.deps.Config.Names.Valid(name) {
		sendText(ctx, b, log, chatID, msgs.InvalidName)
		return
	}

	if err := h.deps.Store.SetUserName(ctx, userID, name); err != nil {
		log.ErrorContext(ctx, "Failed to set user name", "error", err, "user_id", userID)
		sendText(ctx, b, log, chatID, msgs.GeneralError)
		return
	}

	log.InfoContext(ctx, "User registered a name", "user_id", userID)
	sendText(ctx, b, log, chatID, fmt.Sprintf(msgs.NameSet, name))

	info, err := h.deps.Store.GetTandemInfo(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load tandem info", "error", err, "user_id", userID)
	} else if info == nil {
		username := ""
		if h.deps.Config.Telegram.BotInfo != nil {
			username = h.deps.Config.Telegram.BotInfo.Username
		}
		sendText(ctx, b, log, chatID, fmt.Sprintf(msgs.ShareReferral, referralLink(username, userID)))
	} else {
		sendMarkup(ctx, b, log, chatID, msgs.Welcome, mainMenuKeyboard())
	}

	h.deps.Sessions.Clear(userID)
}

func (h textHandler) handleChooseTandemName(ctx context.Context, b *bot.Bot, log *slog.Logger, userID, chatID int64, name string) {
	msgs := h.deps.Config.Messages

	if !h.deps.Config.Names.Valid(name) {
		sendText(ctx, b, log, chatID, msgs.InvalidName)
		return
	}

	info, err := h.deps.Store.GetTandemInfo(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load tandem info", "error", err, "user_id", userID)
		sendText(ctx, b, log, chatID, msgs.GeneralError)
		return
	}
	if info == nil {
		h.deps.Sessions.Clear(userID)
		sendText(ctx, b, log, chatID, msgs.NoTandem)
		return
	}

	if err := h.deps.Store.SetTandemName(ctx, info.TandemID, name); err != nil {
		log.ErrorContext(ctx, "Failed to set tandem name", "error", err, "tandem_id", info.TandemID)
		sendText(ctx, b, log, chatID, msgs.GeneralError)
		return
	}

	log.InfoContext(ctx, "Tandem named", "tandem_id", info.TandemID, "user_id", userID)

	pair := fmt.Sprintf("%s & %s", info.UserName, info.PartnerName)
	announcement := fmt.Sprintf(msgs.TandemNamed, name, pair)
	for _, memberID := range []int64{userID, info.PartnerID} {
		sendMarkup(ctx, b, log, memberID, announcement, mainMenuKeyboard())
	}

	h.deps.Sessions.Clear(userID)
}
