package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewTrackerHandler returns a handler for the tracker menu entry: today's
// completion map rendered as a toggle keyboard.
func NewTrackerHandler(deps HandlerDeps) bot.HandlerFunc {
	return trackerHandler{deps}.Handle
}

type trackerHandler struct {
	deps HandlerDeps
}

func (h trackerHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "tracker")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Tracker handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	msgs := h.deps.Config.Messages

	stats, err := h.deps.Store.GetTodayStats(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load today's stats", "error", err, "user_id", userID)
		sendText(ctx, b, log, chatID, msgs.GeneralError)
		return
	}

	tasks, err := h.deps.Store.GetAllTasks(ctx, true)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load tasks", "error", err, "user_id", userID)
		sendText(ctx, b, log, chatID, msgs.GeneralError)
		return
	}
	if len(tasks) == 0 {
		sendText(ctx, b, log, chatID, msgs.NoTasks)
		return
	}

	sendMarkup(ctx, b, log, chatID, msgs.Tracker, trackerKeyboard(tasks, stats))
}

// NewMapHandler returns a handler for the map menu entry: the caller's tandem
// score breakdown plus the tandem management actions.
func NewMapHandler(deps HandlerDeps) bot.HandlerFunc {
	return mapHandler{deps}.Handle
}

type mapHandler struct {
	deps HandlerDeps
}

func (h mapHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "map")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Map handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	msgs := h.deps.Config.Messages

	info, err := h.deps.Store.GetTandemInfo(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load tandem info", "error", err, "user_id", userID)
		sendText(ctx, b, log, chatID, msgs.GeneralError)
		return
	}
	if info == nil {
		sendText(ctx, b, log, chatID, msgs.NoTandem)
		return
	}

	breakdown, err := h.deps.Store.GetTandemScoreBreakdown(ctx, info.TandemID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load score breakdown", "error", err, "tandem_id", info.TandemID)
		sendText(ctx, b, log, chatID, msgs.GeneralError)
		return
	}

	userScore := breakdown[userID]
	partnerScore := breakdown[info.PartnerID]
	total := userScore + partnerScore

	text := fmt.Sprintf(msgs.MapView,
		info.TandemName,
		info.UserName, userScore,
		info.PartnerName, partnerScore,
		total,
	)
	sendMarkup(ctx, b, log, chatID, text, mapKeyboard())
}

// NewPitstopHandler returns a handler for the pitstop menu entry.
func NewPitstopHandler(deps HandlerDeps) bot.HandlerFunc {
	return pitstopHandler{deps}.Handle
}

type pitstopHandler struct {
	deps HandlerDeps
}

func (h pitstopHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "pitstop")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Pitstop handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	msgs := h.deps.Config.Messages

	links, err := h.deps.Store.GetPitstopLinks(ctx, true)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load pitstop links", "error", err)
		sendText(ctx, b, log, chatID, msgs.GeneralError)
		return
	}
	if len(links) == 0 {
		sendText(ctx, b, log, chatID, msgs.NoLinks)
		return
	}

	sendMarkup(ctx, b, log, chatID, msgs.PitstopMenu, pitstopKeyboard(links))
}

// NewTeamChatHandler returns a handler for the team chat menu entry.
func NewTeamChatHandler(deps HandlerDeps) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		log := deps.Logger.With("handler", "team_chat")
		if update.Message == nil {
			return
		}
		sendText(ctx, b, log, update.Message.Chat.ID, deps.Config.Messages.TeamChat)
	}
}
