package handlers

import (
	"fmt"

	"github.com/go-telegram/bot/models"

	"github.com/edgard/tandembot/internal/database"
)

// Main menu reply-keyboard labels. These double as the match patterns for
// their message handlers.
const (
	btnTracker  = "🚴 Tracker"
	btnMap      = "🗺 Map"
	btnPitstop  = "🧭 Pitstop"
	btnTeamChat = "💬 Team chat"
)

// Callback data values. Fixed actions use exact strings; item actions carry
// a trailing numeric id after their prefix. The prefixes are chosen so no
// data value can match more than one registered pattern.
const (
	cbTandemName     = "tandem_name"
	cbTandemDisband  = "tandem_disband"
	cbTrackerRefresh = "tracker_refresh"

	cbTrackerTogglePrefix = "tracker_toggle_"

	// Must match the prompt keyboard built by the telegram Sender.
	cbChallengeDonePrefix = "challenge_done_"

	cbAdminBack     = "admin_back"
	cbAdminTasks    = "admin_tasks"
	cbAdminLinks    = "admin_links"
	cbAdminStats    = "admin_stats"
	cbAdminSchedule = "admin_schedule"
	cbAdminMessages = "admin_messages"
	cbAdminNotify   = "admin_notify"
	cbAdminTable    = "admin_table"

	cbTaskAdd         = "admin_task_add"
	cbLinkAdd         = "admin_link_add"
	cbChallengeAdd    = "admin_challenge_add"
	cbTasksDone       = "admin_tasks_done"
	cbChallengeCancel = "admin_challenge_cancel"

	cbTaskViewPrefix    = "admin_task_view_"
	cbTaskEditPrefix    = "admin_task_edit_"
	cbTaskDeletePrefix  = "admin_task_delete_"
	cbTaskSelectPrefix  = "admin_task_select_"
	cbLinkViewPrefix    = "admin_link_view_"
	cbLinkDeletePrefix  = "admin_link_delete_"
	cbTandemStatsPrefix = "admin_tandem_"
)

// mainMenuKeyboard is the persistent reply keyboard shown to paired users.
func mainMenuKeyboard() *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{{Text: btnMap}, {Text: btnTracker}, {Text: btnTeamChat}},
			{{Text: btnPitstop}},
		},
		ResizeKeyboard:        true,
		IsPersistent:          true,
		InputFieldPlaceholder: "Choose an action",
	}
}

// tandemNameKeyboard offers the freshly paired referrer a shortcut into the
// tandem naming flow.
func tandemNameKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "Name your tandem", CallbackData: cbTandemName}},
		},
	}
}

// trackerKeyboard renders the daily completion map: every active task as a
// toggle button with its current check state, plus a refresh row.
func trackerKeyboard(tasks []database.Task, done map[int64]bool) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(tasks)+1)
	for _, task := range tasks {
		mark := " "
		if done[task.ID] {
			mark = "✅"
		}
		rows = append(rows, []models.InlineKeyboardButton{{
			Text:         fmt.Sprintf("[%s] %s", mark, task.Title),
			CallbackData: fmt.Sprintf("%s%d", cbTrackerTogglePrefix, task.ID),
		}})
	}
	rows = append(rows, []models.InlineKeyboardButton{{Text: "Refresh", CallbackData: cbTrackerRefresh}})
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// mapKeyboard offers the tandem management actions below the score view.
func mapKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "Name your tandem", CallbackData: cbTandemName}},
			{{Text: "Leave tandem", CallbackData: cbTandemDisband}},
		},
	}
}

// pitstopKeyboard renders the active reference links as URL buttons.
func pitstopKeyboard(links []database.PitstopLink) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(links))
	for _, link := range links {
		rows = append(rows, []models.InlineKeyboardButton{{Text: link.Title, URL: link.URL}})
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func adminMenuKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "📋 Manage tasks", CallbackData: cbAdminTasks}},
			{{Text: "📊 Tandem statistics", CallbackData: cbAdminStats}},
			{{Text: "🔗 Manage links", CallbackData: cbAdminLinks}},
			{{Text: "📅 Schedule challenges", CallbackData: cbAdminSchedule}},
			{{Text: "📨 Schedule a message", CallbackData: cbAdminMessages}},
			{{Text: "📤 Broadcast now", CallbackData: cbAdminNotify}},
			{{Text: "🏆 Leaderboard", CallbackData: cbAdminTable}},
		},
	}
}

func adminTasksKeyboard(tasks []database.Task) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(tasks)+2)
	for _, task := range tasks {
		status := "❌"
		if task.Active {
			status = "✅"
		}
		rows = append(rows, []models.InlineKeyboardButton{{
			Text:         fmt.Sprintf("%s %s", status, task.Title),
			CallbackData: fmt.Sprintf("%s%d", cbTaskViewPrefix, task.ID),
		}})
	}
	rows = append(rows,
		[]models.InlineKeyboardButton{{Text: "➕ Add task", CallbackData: cbTaskAdd}},
		[]models.InlineKeyboardButton{{Text: "◀️ Back", CallbackData: cbAdminBack}},
	)
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func taskDetailKeyboard(taskID int64) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "✏️ Edit", CallbackData: fmt.Sprintf("%s%d", cbTaskEditPrefix, taskID)}},
			{{Text: "🗑 Delete", CallbackData: fmt.Sprintf("%s%d", cbTaskDeletePrefix, taskID)}},
			{{Text: "◀️ Back", CallbackData: cbAdminTasks}},
		},
	}
}

func adminLinksKeyboard(links []database.PitstopLink) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(links)+2)
	for _, link := range links {
		status := "❌"
		if link.Active {
			status = "✅"
		}
		rows = append(rows, []models.InlineKeyboardButton{{
			Text:         fmt.Sprintf("%s %s", status, link.Title),
			CallbackData: fmt.Sprintf("%s%d", cbLinkViewPrefix, link.ID),
		}})
	}
	rows = append(rows,
		[]models.InlineKeyboardButton{{Text: "➕ Add link", CallbackData: cbLinkAdd}},
		[]models.InlineKeyboardButton{{Text: "◀️ Back", CallbackData: cbAdminBack}},
	)
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func linkDetailKeyboard(linkID int64) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "🗑 Delete", CallbackData: fmt.Sprintf("%s%d", cbLinkDeletePrefix, linkID)}},
			{{Text: "◀️ Back", CallbackData: cbAdminLinks}},
		},
	}
}

// tandemsListKeyboard shows at most the top 20 tandems; the full table lives
// under the leaderboard action.
func tandemsListKeyboard(tandems []database.TandemSummary) *models.InlineKeyboardMarkup {
	const maxRows = 20
	rows := make([][]models.InlineKeyboardButton, 0, maxRows+1)
	for i, tandem := range tandems {
		if i == maxRows {
			break
		}
		rows = append(rows, []models.InlineKeyboardButton{{
			Text:         fmt.Sprintf("%s (%d points)", tandem.Name, tandem.TotalScore),
			CallbackData: fmt.Sprintf("%s%d", cbTandemStatsPrefix, tandem.ID),
		}})
	}
	rows = append(rows, []models.InlineKeyboardButton{{Text: "◀️ Back", CallbackData: cbAdminBack}})
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func scheduleMenuKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "➕ New challenge", CallbackData: cbChallengeAdd}},
			{{Text: "◀️ Back", CallbackData: cbAdminBack}},
		},
	}
}

// taskSelectionKeyboard is the multi-select used by the challenge wizard.
func taskSelectionKeyboard(tasks []database.Task, selected []int64) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(tasks)+2)
	for _, task := range tasks {
		mark := "☐"
		if containsID(selected, task.ID) {
			mark = "✅"
		}
		rows = append(rows, []models.InlineKeyboardButton{{
			Text:         fmt.Sprintf("%s %s", mark, task.Title),
			CallbackData: fmt.Sprintf("%s%d", cbTaskSelectPrefix, task.ID),
		}})
	}
	rows = append(rows,
		[]models.InlineKeyboardButton{{Text: "✅ Done", CallbackData: cbTasksDone}},
		[]models.InlineKeyboardButton{{Text: "◀️ Cancel", CallbackData: cbChallengeCancel}},
	)
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
