package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/tandembot/internal/database"
	"github.com/edgard/tandembot/internal/session"
)

// NewTandemNameHandler returns the callback handler that starts the tandem
// naming flow.
func NewTandemNameHandler(deps HandlerDeps) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		log := deps.Logger.With("handler", "tandem_name")

		cq := update.CallbackQuery
		if cq == nil {
			return
		}

		userID := cq.From.ID
		msgs := deps.Config.Messages

		info, err := deps.Store.GetTandemInfo(ctx, userID)
		if err != nil {
			log.ErrorContext(ctx, "Failed to load tandem info", "error", err, "user_id", userID)
			answerCallback(ctx, b, log, cq.ID, msgs.GeneralError, false)
			return
		}
		if info == nil {
			answerCallback(ctx, b, log, cq.ID, msgs.NoTandem, true)
			return
		}

		sendText(ctx, b, log, userID, msgs.AskTandemName)
		deps.Sessions.Set(userID, session.State{Step: session.StepChooseTandemName})
		answerCallback(ctx, b, log, cq.ID, "", false)
	}
}

// NewTandemDisbandHandler returns the callback handler that dissolves the
// caller's tandem. Both ex-members get a fresh referral link.
func NewTandemDisbandHandler(deps HandlerDeps) bot.HandlerFunc {
	return tandemDisbandHandler{deps}.Handle
}

type tandemDisbandHandler struct {
	deps HandlerDeps
}

func (h tandemDisbandHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "tandem_disband")

	cq := update.CallbackQuery
	if cq == nil {
		return
	}

	userID := cq.From.ID
	msgs := h.deps.Config.Messages

	info, err := h.deps.Store.GetTandemInfo(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load tandem info", "error", err, "user_id", userID)
		answerCallback(ctx, b, log, cq.ID, msgs.GeneralError, false)
		return
	}
	if info == nil {
		answerCallback(ctx, b, log, cq.ID, msgs.NoTandem, true)
		return
	}

	err = h.deps.Store.DisbandTandem(ctx, userID)
	switch {
	case errors.Is(err, database.ErrNotPaired):
		answerCallback(ctx, b, log, cq.ID, msgs.NoTandem, true)
		return
	case err != nil:
		log.ErrorContext(ctx, "Failed to disband tandem", "error", err, "user_id", userID, "tandem_id", info.TandemID)
		answerCallback(ctx, b, log, cq.ID, msgs.GeneralError, false)
		return
	}

	log.InfoContext(ctx, "Tandem disbanded", "user_id", userID, "tandem_id", info.TandemID, "name", info.TandemName)

	username := ""
	if h.deps.Config.Telegram.BotInfo != nil {
		username = h.deps.Config.Telegram.BotInfo.Username
	}

	if msg := callbackMessage(cq); msg != nil {
		editText(ctx, b, log, msg.Chat.ID, msg.ID,
			fmt.Sprintf(msgs.DisbandSelf, referralLink(username, userID)), nil)
	} else {
		sendText(ctx, b, log, userID, fmt.Sprintf(msgs.DisbandSelf, referralLink(username, userID)))
	}
	sendText(ctx, b, log, info.PartnerID, fmt.Sprintf(msgs.DisbandPartner, referralLink(username, info.PartnerID)))

	answerCallback(ctx, b, log, cq.ID, "", false)
}
