package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/tandembot/internal/database"
	"github.com/edgard/tandembot/internal/session"
)

// scheduleTimeLayout is the wall-clock format admins type into the
// scheduling wizards.
const scheduleTimeLayout = "2006-01-02 15:04"

// adminWizard advances the admin multi-step flows one message at a time.
// It is always invoked from behind an admin check.
type adminWizard struct {
	deps HandlerDeps
}

func (w adminWizard) handleStep(ctx context.Context, b *bot.Bot, update *models.Update, step session.Step) {
	log := w.deps.Logger.With("handler", "admin_wizard", "step", string(step))

	switch step {
	case session.StepTaskTitle:
		w.taskTitle(ctx, b, log, update)
	case session.StepTaskDescription:
		w.taskDescription(ctx, b, log, update)
	case session.StepTaskPoints:
		w.taskPoints(ctx, b, log, update)
	case session.StepTaskEdit:
		w.taskEdit(ctx, b, log, update)
	case session.StepLinkTitle:
		w.linkTitle(ctx, b, log, update)
	case session.StepLinkURL:
		w.linkURL(ctx, b, log, update)
	case session.StepChallengeText:
		w.challengeText(ctx, b, log, update)
	case session.StepChallengeTime:
		w.challengeTime(ctx, b, log, update)
	case session.StepBroadcastContent:
		w.broadcast(ctx, b, log, update)
	case session.StepMessageContent:
		w.messageContent(ctx, b, log, update)
	case session.StepMessageTime:
		w.messageTime(ctx, b, log, update)
	default:
		log.WarnContext(ctx, "Unhandled wizard step")
		w.deps.Sessions.Clear(update.Message.From.ID)
	}
}

func (w adminWizard) taskTitle(ctx context.Context, b *bot.Bot, log *slog.Logger, update *models.Update) {
	userID := update.Message.From.ID

	w.deps.Sessions.Update(userID, func(s *session.State) {
		s.Title = update.Message.Text
		s.Step = session.StepTaskDescription
	})
	sendText(ctx, b, log, update.Message.Chat.ID, "Send the task description, or '-' to skip:")
}

func (w adminWizard) taskDescription(ctx context.Context, b *bot.Bot, log *slog.Logger, update *models.Update) {
	userID := update.Message.From.ID

	description := update.Message.Text
	if description == "-" {
		description = ""
	}

	w.deps.Sessions.Update(userID, func(s *session.State) {
		s.Description = description
		s.Step = session.StepTaskPoints
	})
	sendText(ctx, b, log, update.Message.Chat.ID, "Send the points value (default 1):")
}

func (w adminWizard) taskPoints(ctx context.Context, b *bot.Bot, log *slog.Logger, update *models.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	points, err := strconv.ParseInt(strings.TrimSpace(update.Message.Text), 10, 64)
	if err != nil {
		points = 1
	}

	state := w.deps.Sessions.Get(userID)
	taskID, err := w.deps.Store.CreateTask(ctx, state.Title, state.Description, points)
	if err != nil {
		log.ErrorContext(ctx, "Failed to create task", "error", err)
		sendText(ctx, b, log, chatID, w.deps.Config.Messages.GeneralError)
		return
	}
	w.deps.Sessions.Clear(userID)

	log.InfoContext(ctx, "Task created", "task_id", taskID, "admin_id", userID)
	sendText(ctx, b, log, chatID, fmt.Sprintf("✅ Task created! ID: %d", taskID))
	w.showTasksMenu(ctx, b, log, chatID)
}

// taskEdit applies a four-line edit form: title, description, points,
// active/inactive. A '-' line leaves that field unchanged.
func (w adminWizard) taskEdit(ctx context.Context, b *bot.Bot, log *slog.Logger, update *models.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	msgs := w.deps.Config.Messages

	state := w.deps.Sessions.Get(userID)
	if state.TaskID == 0 {
		log.ErrorContext(ctx, "Task edit step without a task id", "user_id", userID)
		w.deps.Sessions.Clear(userID)
		sendText(ctx, b, log, chatID, msgs.GeneralError)
		return
	}

	var upd database.TaskUpdate
	lines := strings.SplitN(update.Message.Text, "\n", 4)
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "-" || line == "" {
			continue
		}
		switch i {
		case 0:
			upd.Title = &line
		case 1:
			upd.Description = &line
		case 2:
			if points, err := strconv.ParseInt(line, 10, 64); err == nil {
				upd.Points = &points
			}
		case 3:
			switch strings.ToLower(line) {
			case "active":
				active := true
				upd.Active = &active
			case "inactive":
				active := false
				upd.Active = &active
			}
		}
	}

	err := w.deps.Store.UpdateTask(ctx, state.TaskID, upd)
	switch {
	case errors.Is(err, database.ErrTaskNotFound):
		sendText(ctx, b, log, chatID, msgs.TaskNotFound)
	case err != nil:
		log.ErrorContext(ctx, "Failed to update task", "error", err, "task_id", state.TaskID)
		sendText(ctx, b, log, chatID, msgs.GeneralError)
		return
	default:
		log.InfoContext(ctx, "Task updated", "task_id", state.TaskID, "admin_id", userID)
		sendText(ctx, b, log, chatID, "✅ Task updated")
	}

	w.deps.Sessions.Clear(userID)
	w.showTasksMenu(ctx, b, log, chatID)
}

func (w adminWizard) linkTitle(ctx context.Context, b *bot.Bot, log *slog.Logger, update *models.Update) {
	userID := update.Message.From.ID

	w.deps.Sessions.Update(userID, func(s *session.State) {
		s.Title = update.Message.Text
		s.Step = session.StepLinkURL
	})
	sendText(ctx, b, log, update.Message.Chat.ID, "Send the link URL:")
}

func (w adminWizard) linkURL(ctx context.Context, b *bot.Bot, log *slog.Logger, update *models.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	url := strings.TrimSpace(update.Message.Text)
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	state := w.deps.Sessions.Get(userID)
	linkID, err := w.deps.Store.AddPitstopLink(ctx, state.Title, url)
	if err != nil {
		log.ErrorContext(ctx, "Failed to add pitstop link", "error", err)
		sendText(ctx, b, log, chatID, w.deps.Config.Messages.GeneralError)
		return
	}
	w.deps.Sessions.Clear(userID)

	log.InfoContext(ctx, "Pitstop link added", "link_id", linkID, "admin_id", userID)
	sendText(ctx, b, log, chatID, fmt.Sprintf("✅ Link added! ID: %d", linkID))
}

func (w adminWizard) challengeText(ctx context.Context, b *bot.Bot, log *slog.Logger, update *models.Update) {
	userID := update.Message.From.ID

	text := update.Message.Text
	if text == "-" {
		text = ""
	}

	w.deps.Sessions.Update(userID, func(s *session.State) {
		s.MessageText = text
		s.Step = session.StepChallengeTime
	})
	sendText(ctx, b, log, update.Message.Chat.ID,
		"Send the delivery time as 2006-01-02 15:04, or 'now' for immediate delivery:")
}

func (w adminWizard) challengeTime(ctx context.Context, b *bot.Bot, log *slog.Logger, update *models.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	msgs := w.deps.Config.Messages

	sendTime, ok := parseScheduleTime(update.Message.Text)
	if !ok {
		sendText(ctx, b, log, chatID, msgs.InvalidTime)
		return
	}

	state := w.deps.Sessions.Get(userID)
	challengeID, err := w.deps.Store.CreateScheduledChallenge(ctx, state.SelectedTaskIDs, sendTime, state.MessageText)
	if err != nil {
		log.ErrorContext(ctx, "Failed to schedule challenge", "error", err)
		sendText(ctx, b, log, chatID, msgs.GeneralError)
		return
	}
	w.deps.Sessions.Clear(userID)

	log.InfoContext(ctx, "Challenge scheduled",
		"challenge_id", challengeID, "send_time", sendTime, "tasks", len(state.SelectedTaskIDs), "admin_id", userID)
	sendText(ctx, b, log, chatID, fmt.Sprintf("✅ Challenge scheduled! ID: %d", challengeID))

	if !sendTime.After(time.Now()) {
		sendText(ctx, b, log, chatID, msgs.SendingNow)
		if err := w.deps.Sweeper.SweepChallenges(ctx); err != nil {
			log.ErrorContext(ctx, "Immediate challenge sweep failed", "error", err)
			sendText(ctx, b, log, chatID, msgs.GeneralError)
		}
	}
}

// broadcast delivers the admin's message to every known user right away.
// Forwarded messages are re-forwarded; plain text is sent as text.
func (w adminWizard) broadcast(ctx context.Context, b *bot.Bot, log *slog.Logger, update *models.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	msgs := w.deps.Config.Messages

	users, err := w.deps.Store.GetAllUsers(ctx, nil)
	if err != nil {
		log.ErrorContext(ctx, "Failed to list users for broadcast", "error", err)
		sendText(ctx, b, log, chatID, msgs.GeneralError)
		return
	}

	sent, failed := 0, 0
	for _, recipientID := range users {
		var err error
		if update.Message.ForwardOrigin != nil {
			_, err = b.ForwardMessage(ctx, &bot.ForwardMessageParams{
				ChatID:     recipientID,
				FromChatID: chatID,
				MessageID:  update.Message.ID,
			})
		} else {
			_, err = b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: recipientID,
				Text:   update.Message.Text,
			})
		}
		if err != nil {
			failed++
			log.WarnContext(ctx, "Broadcast delivery failed", "user_id", recipientID, "error", err)
			continue
		}
		sent++
	}

	w.deps.Sessions.Clear(userID)
	log.InfoContext(ctx, "Broadcast finished", "sent", sent, "failed", failed, "admin_id", userID)
	sendText(ctx, b, log, chatID, fmt.Sprintf(msgs.BroadcastDone, sent, failed))
}

func (w adminWizard) messageContent(ctx context.Context, b *bot.Bot, log *slog.Logger, update *models.Update) {
	userID := update.Message.From.ID

	w.deps.Sessions.Update(userID, func(s *session.State) {
		s.Text = update.Message.Text
		if update.Message.ForwardOrigin != nil {
			s.TargetChatID = update.Message.Chat.ID
			s.ForwardFromMessageID = int64(update.Message.ID)
		}
		s.Step = session.StepMessageTime
	})
	sendText(ctx, b, log, update.Message.Chat.ID,
		"Send the delivery time as 2006-01-02 15:04, or 'now' for immediate delivery:")
}

func (w adminWizard) messageTime(ctx context.Context, b *bot.Bot, log *slog.Logger, update *models.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	msgs := w.deps.Config.Messages

	sendTime, ok := parseScheduleTime(update.Message.Text)
	if !ok {
		sendText(ctx, b, log, chatID, msgs.InvalidTime)
		return
	}

	state := w.deps.Sessions.Get(userID)
	msg := &database.ScheduledMessage{
		MessageType:   "broadcast",
		ScheduledTime: sendTime,
	}
	if state.Text != "" {
		msg.Text = sql.NullString{String: state.Text, Valid: true}
	}
	if state.ForwardFromMessageID != 0 {
		msg.TargetChatID = sql.NullInt64{Int64: state.TargetChatID, Valid: true}
		msg.ForwardFromMessageID = sql.NullInt64{Int64: state.ForwardFromMessageID, Valid: true}
	}

	messageID, err := w.deps.Store.CreateScheduledMessage(ctx, msg)
	if err != nil {
		log.ErrorContext(ctx, "Failed to schedule message", "error", err)
		sendText(ctx, b, log, chatID, msgs.GeneralError)
		return
	}
	w.deps.Sessions.Clear(userID)

	log.InfoContext(ctx, "Message scheduled", "message_id", messageID, "send_time", sendTime, "admin_id", userID)
	sendText(ctx, b, log, chatID, fmt.Sprintf("✅ Message scheduled! ID: %d", messageID))

	if !sendTime.After(time.Now()) {
		sendText(ctx, b, log, chatID, msgs.SendingNow)
		if err := w.deps.Sweeper.SweepMessages(ctx); err != nil {
			log.ErrorContext(ctx, "Immediate message sweep failed", "error", err)
			sendText(ctx, b, log, chatID, msgs.GeneralError)
		}
	}
}

func (w adminWizard) showTasksMenu(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64) {
	tasks, err := w.deps.Store.GetAllTasks(ctx, false)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load tasks", "error", err)
		return
	}
	sendMarkup(ctx, b, log, chatID, adminTasksTitle, adminTasksKeyboard(tasks))
}

// parseScheduleTime accepts either the wizard time layout or the literal
// "now".
func parseScheduleTime(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if strings.EqualFold(text, "now") {
		return time.Now(), true
	}
	t, err := time.ParseInLocation(scheduleTimeLayout, text, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
