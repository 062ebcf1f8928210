package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/tandembot/internal/database"
	"github.com/edgard/tandembot/internal/session"
)

// Admin panel literals. The panel is an operator surface, so its strings are
// not part of the configurable message templates.
const (
	adminPanelTitle     = "Admin panel"
	adminTasksTitle     = "Task management"
	adminLinksTitle     = "Pitstop link management"
	adminStatsTitle     = "Pick a tandem to inspect:"
	adminScheduleTitle  = "Challenge scheduling"
	adminSelectTitle    = "Select tasks for the challenge:"
	adminAskTaskTitle   = "Send the task title:"
	adminAskLinkTitle   = "Send the link title:"
	adminAskBroadcast   = "Send the broadcast content (text or a forwarded message). /stop to cancel."
	adminAskMessage     = "Send the message to schedule (text or a forwarded message). /stop to cancel."
	adminNoActiveTasks  = "No active tasks. Create tasks first."
	adminNothingChecked = "Select at least one task."
	adminAskChallenge   = "Send the challenge text, or '-' to skip:"
)

// NewAdminHandler returns a handler for the /admin command.
func NewAdminHandler(deps HandlerDeps) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		log := deps.Logger.With("handler", "admin")

		if update.Message == nil || update.Message.From == nil {
			return
		}

		log.InfoContext(ctx, "Opening admin panel", "user_id", update.Message.From.ID)
		sendMarkup(ctx, b, log, update.Message.Chat.ID, adminPanelTitle, adminMenuKeyboard())
	}
}

// NewAdminCallbackHandler returns the router for every callback in the
// admin_ namespace. A single registration keeps dispatch deterministic.
func NewAdminCallbackHandler(deps HandlerDeps) bot.HandlerFunc {
	return adminCallbackHandler{deps}.Handle
}

type adminCallbackHandler struct {
	deps HandlerDeps
}

func (h adminCallbackHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "admin_callback")

	cq := update.CallbackQuery
	if cq == nil {
		return
	}
	msg := callbackMessage(cq)
	if msg == nil {
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.GeneralError, false)
		return
	}

	data := cq.Data
	switch {
	case data == cbAdminBack:
		editText(ctx, b, log, msg.Chat.ID, msg.ID, adminPanelTitle, adminMenuKeyboard())
		answerCallback(ctx, b, log, cq.ID, "", false)

	case data == cbAdminTasks:
		h.showTasksMenu(ctx, b, log, cq, msg)

	case data == cbAdminLinks:
		h.showLinksMenu(ctx, b, log, cq, msg)

	case data == cbAdminStats:
		h.showTandemsList(ctx, b, log, cq, msg)

	case data == cbAdminSchedule:
		editText(ctx, b, log, msg.Chat.ID, msg.ID, adminScheduleTitle, scheduleMenuKeyboard())
		answerCallback(ctx, b, log, cq.ID, "", false)

	case data == cbAdminTable:
		h.showLeaderboard(ctx, b, log, cq, msg)

	case data == cbAdminNotify:
		sendText(ctx, b, log, msg.Chat.ID, adminAskBroadcast)
		h.deps.Sessions.Set(cq.From.ID, session.State{Step: session.StepBroadcastContent})
		answerCallback(ctx, b, log, cq.ID, "", false)

	case data == cbAdminMessages:
		sendText(ctx, b, log, msg.Chat.ID, adminAskMessage)
		h.deps.Sessions.Set(cq.From.ID, session.State{Step: session.StepMessageContent})
		answerCallback(ctx, b, log, cq.ID, "", false)

	case data == cbTaskAdd:
		sendText(ctx, b, log, msg.Chat.ID, adminAskTaskTitle)
		h.deps.Sessions.Set(cq.From.ID, session.State{Step: session.StepTaskTitle})
		answerCallback(ctx, b, log, cq.ID, "", false)

	case data == cbLinkAdd:
		sendText(ctx, b, log, msg.Chat.ID, adminAskLinkTitle)
		h.deps.Sessions.Set(cq.From.ID, session.State{Step: session.StepLinkTitle})
		answerCallback(ctx, b, log, cq.ID, "", false)

	case data == cbChallengeAdd:
		h.startChallengeSelection(ctx, b, log, cq, msg)

	case data == cbTasksDone:
		h.finishChallengeSelection(ctx, b, log, cq, msg)

	case data == cbChallengeCancel:
		h.deps.Sessions.Clear(cq.From.ID)
		editText(ctx, b, log, msg.Chat.ID, msg.ID, adminScheduleTitle, scheduleMenuKeyboard())
		answerCallback(ctx, b, log, cq.ID, "", false)

	case strings.HasPrefix(data, cbTaskSelectPrefix):
		h.toggleChallengeSelection(ctx, b, log, cq, msg)

	case strings.HasPrefix(data, cbTaskViewPrefix):
		h.showTaskDetail(ctx, b, log, cq, msg)

	case strings.HasPrefix(data, cbTaskEditPrefix):
		h.startTaskEdit(ctx, b, log, cq, msg)

	case strings.HasPrefix(data, cbTaskDeletePrefix):
		h.deleteTask(ctx, b, log, cq, msg)

	case strings.HasPrefix(data, cbLinkViewPrefix):
		h.showLinkDetail(ctx, b, log, cq, msg)

	case strings.HasPrefix(data, cbLinkDeletePrefix):
		h.deleteLink(ctx, b, log, cq, msg)

	case strings.HasPrefix(data, cbTandemStatsPrefix):
		h.showTandemStats(ctx, b, log, cq, msg)

	default:
		log.WarnContext(ctx, "Unknown admin callback", "data", data)
		answerCallback(ctx, b, log, cq.ID, "", false)
	}
}

func (h adminCallbackHandler) showTasksMenu(ctx context.Context, b *bot.Bot, log *slog.Logger, cq *models.CallbackQuery, msg *models.Message) {
	tasks, err := h.deps.Store.GetAllTasks(ctx, false)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load tasks", "error", err)
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.GeneralError, false)
		return
	}
	editText(ctx, b, log, msg.Chat.ID, msg.ID, adminTasksTitle, adminTasksKeyboard(tasks))
	answerCallback(ctx, b, log, cq.ID, "", false)
}

func (h adminCallbackHandler) showTaskDetail(ctx context.Context, b *bot.Bot, log *slog.Logger, cq *models.CallbackQuery, msg *models.Message) {
	taskID, ok := trailingID(cq.Data, cbTaskViewPrefix)
	if !ok {
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.GeneralError, false)
		return
	}

	task, err := h.deps.Store.GetTask(ctx, taskID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load task", "error", err, "task_id", taskID)
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.GeneralError, false)
		return
	}
	if task == nil {
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.TaskNotFound, true)
		return
	}

	status := "inactive"
	if task.Active {
		status = "active"
	}
	description := task.Description
	if description == "" {
		description = "(no description)"
	}
	text := fmt.Sprintf("Task #%d\n\nTitle: %s\nDescription: %s\nPoints: %d\nStatus: %s",
		task.ID, task.Title, description, task.Points, status)

	editText(ctx, b, log, msg.Chat.ID, msg.ID, text, taskDetailKeyboard(task.ID))
	answerCallback(ctx, b, log, cq.ID, "", false)
}

func (h adminCallbackHandler) startTaskEdit(ctx context.Context, b *bot.Bot, log *slog.Logger, cq *models.CallbackQuery, msg *models.Message) {
	taskID, ok := trailingID(cq.Data, cbTaskEditPrefix)
	if !ok {
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.GeneralError, false)
		return
	}

	task, err := h.deps.Store.GetTask(ctx, taskID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load task for editing", "error", err, "task_id", taskID)
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.GeneralError, false)
		return
	}
	if task == nil {
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.TaskNotFound, true)
		return
	}

	sendText(ctx, b, log, msg.Chat.ID, fmt.Sprintf(
		"Editing task %q.\nSend up to four lines: title, description, points, active/inactive. Use '-' to keep a line unchanged.",
		task.Title))
	h.deps.Sessions.Set(cq.From.ID, session.State{Step: session.StepTaskEdit, TaskID: taskID})
	answerCallback(ctx, b, log, cq.ID, "", false)
}

func (h adminCallbackHandler) deleteTask(ctx context.Context, b *bot.Bot, log *slog.Logger, cq *models.CallbackQuery, msg *models.Message) {
	taskID, ok := trailingID(cq.Data, cbTaskDeletePrefix)
	if !ok {
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.GeneralError, false)
		return
	}

	err := h.deps.Store.DeleteTask(ctx, taskID)
	switch {
	case errors.Is(err, database.ErrTaskNotFound):
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.TaskNotFound, true)
		return
	case err != nil:
		log.ErrorContext(ctx, "Failed to delete task", "error", err, "task_id", taskID)
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.GeneralError, false)
		return
	}

	log.InfoContext(ctx, "Task deactivated", "task_id", taskID, "admin_id", cq.From.ID)
	answerCallback(ctx, b, log, cq.ID, "Task deleted", false)
	h.showTasksMenu(ctx, b, log, cq, msg)
}

func (h adminCallbackHandler) showLinksMenu(ctx context.Context, b *bot.Bot, log *slog.Logger, cq *models.CallbackQuery, msg *models.Message) {
	links, err := h.deps.Store.GetPitstopLinks(ctx, false)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load links", "error", err)
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.GeneralError, false)
		return
	}
	editText(ctx, b, log, msg.Chat.ID, msg.ID, adminLinksTitle, adminLinksKeyboard(links))
	answerCallback(ctx, b, log, cq.ID, "", false)
}

func (h adminCallbackHandler) showLinkDetail(ctx context.Context, b *bot.Bot, log *slog.Logger, cq *models.CallbackQuery, msg *models.Message) {
	linkID, ok := trailingID(cq.Data, cbLinkViewPrefix)
	if !ok {
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.GeneralError, false)
		return
	}

	links, err := h.deps.Store.GetPitstopLinks(ctx, false)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load links", "error", err)
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.GeneralError, false)
		return
	}

	var link *database.PitstopLink
	for i := range links {
		if links[i].ID == linkID {
			link = &links[i]
			break
		}
	}
	if link == nil {
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.LinkNotFound, true)
		return
	}

	text := fmt.Sprintf("Link #%d\n\nTitle: %s\nURL: %s", link.ID, link.Title, link.URL)
	editText(ctx, b, log, msg.Chat.ID, msg.ID, text, linkDetailKeyboard(link.ID))
	answerCallback(ctx, b, log, cq.ID, "", false)
}

func (h adminCallbackHandler) deleteLink(ctx context.Context, b *bot.Bot, log *slog.Logger, cq *models.CallbackQuery, msg *models.Message) {
	linkID, ok := trailingID(cq.Data, cbLinkDeletePrefix)
	if !ok {
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.GeneralError, false)
		return
	}

	err := h.deps.Store.DeletePitstopLink(ctx, linkID)
	switch {
	case errors.Is(err, database.ErrLinkNotFound):
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.LinkNotFound, true)
		return
	case err != nil:
		log.ErrorContext(ctx, "Failed to delete link", "error", err, "link_id", linkID)
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.GeneralError, false)
		return
	}

	log.InfoContext(ctx, "Pitstop link deactivated", "link_id", linkID, "admin_id", cq.From.ID)
	answerCallback(ctx, b, log, cq.ID, "Link deleted", false)
	h.showLinksMenu(ctx, b, log, cq, msg)
}

func (h adminCallbackHandler) showTandemsList(ctx context.Context, b *bot.Bot, log *slog.Logger, cq *models.CallbackQuery, msg *models.Message) {
	tandems, err := h.deps.Store.GetAllTandemsWithSummary(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load tandem summaries", "error", err)
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.GeneralError, false)
		return
	}
	editText(ctx, b, log, msg.Chat.ID, msg.ID, adminStatsTitle, tandemsListKeyboard(tandems))
	answerCallback(ctx, b, log, cq.ID, "", false)
}

// showTandemStats renders one tandem's trailing-week activity.
func (h adminCallbackHandler) showTandemStats(ctx context.Context, b *bot.Bot, log *slog.Logger, cq *models.CallbackQuery, msg *models.Message) {
	const statsWindowDays = 7

	tandemID, ok := trailingID(cq.Data, cbTandemStatsPrefix)
	if !ok {
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.GeneralError, false)
		return
	}

	summary, err := h.deps.Store.GetTandemSummary(ctx, tandemID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load tandem summary", "error", err, "tandem_id", tandemID)
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.GeneralError, false)
		return
	}
	if summary == nil {
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.NoTandem, true)
		return
	}

	stats, err := h.deps.Store.GetTandemStatistics(ctx, tandemID, statsWindowDays)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load tandem statistics", "error", err, "tandem_id", tandemID)
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.GeneralError, false)
		return
	}

	text := fmt.Sprintf("Statistics for tandem %q (#%d)\n\nMembers: %s\nTotal score: %d points\nCompletions in the last %d days: %d\nActive days: %d",
		summary.Name, tandemID,
		strings.Join(summary.UserNames, ", "),
		stats.TotalScore,
		statsWindowDays, stats.TasksCompleted,
		len(stats.CompletionsByDay))

	editText(ctx, b, log, msg.Chat.ID, msg.ID, text, adminMenuKeyboard())
	answerCallback(ctx, b, log, cq.ID, "", false)
}

// showLeaderboard renders the full standings as text, capped at 50 rows.
func (h adminCallbackHandler) showLeaderboard(ctx context.Context, b *bot.Bot, log *slog.Logger, cq *models.CallbackQuery, msg *models.Message) {
	const maxRows = 50

	tandems, err := h.deps.Store.GetAllTandemsWithSummary(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load leaderboard", "error", err)
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.GeneralError, false)
		return
	}
	if len(tandems) == 0 {
		answerCallback(ctx, b, log, cq.ID, "No tandems yet", true)
		return
	}

	var sb strings.Builder
	sb.WriteString("🏆 Leaderboard\n")
	for i, tandem := range tandems {
		if i == maxRows {
			break
		}
		fmt.Fprintf(&sb, "%d. %s (#%d): %d points — %s\n",
			i+1, tandem.Name, tandem.ID, tandem.TotalScore, strings.Join(tandem.UserNames, ", "))
	}

	sendText(ctx, b, log, msg.Chat.ID, sb.String())
	answerCallback(ctx, b, log, cq.ID, "", false)
}

func (h adminCallbackHandler) startChallengeSelection(ctx context.Context, b *bot.Bot, log *slog.Logger, cq *models.CallbackQuery, msg *models.Message) {
	tasks, err := h.deps.Store.GetAllTasks(ctx, true)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load tasks for selection", "error", err)
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.GeneralError, false)
		return
	}
	if len(tasks) == 0 {
		answerCallback(ctx, b, log, cq.ID, adminNoActiveTasks, true)
		return
	}

	h.deps.Sessions.Set(cq.From.ID, session.State{SelectedTaskIDs: nil})
	editText(ctx, b, log, msg.Chat.ID, msg.ID, adminSelectTitle, taskSelectionKeyboard(tasks, nil))
	answerCallback(ctx, b, log, cq.ID, "", false)
}

func (h adminCallbackHandler) toggleChallengeSelection(ctx context.Context, b *bot.Bot, log *slog.Logger, cq *models.CallbackQuery, msg *models.Message) {
	taskID, ok := trailingID(cq.Data, cbTaskSelectPrefix)
	if !ok {
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.GeneralError, false)
		return
	}

	var selected []int64
	h.deps.Sessions.Update(cq.From.ID, func(s *session.State) {
		if containsID(s.SelectedTaskIDs, taskID) {
			kept := s.SelectedTaskIDs[:0]
			for _, id := range s.SelectedTaskIDs {
				if id != taskID {
					kept = append(kept, id)
				}
			}
			s.SelectedTaskIDs = kept
		} else {
			s.SelectedTaskIDs = append(s.SelectedTaskIDs, taskID)
		}
		selected = s.SelectedTaskIDs
	})

	tasks, err := h.deps.Store.GetAllTasks(ctx, true)
	if err != nil {
		log.ErrorContext(ctx, "Failed to reload tasks for selection", "error", err)
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.GeneralError, false)
		return
	}

	_, err = b.EditMessageReplyMarkup(ctx, &bot.EditMessageReplyMarkupParams{
		ChatID:      msg.Chat.ID,
		MessageID:   msg.ID,
		ReplyMarkup: taskSelectionKeyboard(tasks, selected),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to update selection keyboard", "error", err, "chat_id", msg.Chat.ID)
	}
	answerCallback(ctx, b, log, cq.ID, "", false)
}

func (h adminCallbackHandler) finishChallengeSelection(ctx context.Context, b *bot.Bot, log *slog.Logger, cq *models.CallbackQuery, msg *models.Message) {
	state := h.deps.Sessions.Get(cq.From.ID)
	if len(state.SelectedTaskIDs) == 0 {
		answerCallback(ctx, b, log, cq.ID, adminNothingChecked, true)
		return
	}

	sendText(ctx, b, log, msg.Chat.ID, adminAskChallenge)
	state.Step = session.StepChallengeText
	h.deps.Sessions.Set(cq.From.ID, state)
	answerCallback(ctx, b, log, cq.ID, "", false)
}
