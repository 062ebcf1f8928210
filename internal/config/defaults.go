package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default values for optional configuration parameters.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false

	DefaultDBPath = "storage.db"

	// Cron expressions: midnight reset, five-minute sweeps, evening nudge.
	DefaultDailyResetSchedule     = "0 0 * * *"
	DefaultChallengeSweepSchedule = "*/5 * * * *"
	DefaultMessageSweepSchedule   = "*/5 * * * *"
	DefaultRemindersSchedule      = "0 20 * * *"

	DefaultRecipientTimeout = 10 * time.Second

	DefaultNameMinLength = 2
	DefaultNameMaxLength = 19
)

// DefaultMessages are the stock user-visible message templates. Any of them
// can be overridden in config.yaml.
var DefaultMessages = MessagesConfig{
	Welcome:           "Welcome back! Use the menu below to open your tracker, map or pitstop.",
	NotAuthorized:     "You are not authorized to use this command.",
	GeneralError:      "An error occurred. Please try again later.",
	AskName:           "What should we call you? Send your name.",
	NameSet:           "Nice to meet you, %s!",
	InvalidName:       "That name doesn't fit. Please use 2-19 characters.",
	ShareReferral:     "Share this link with a friend to form your tandem:\n%s",
	SelfReferral:      "You can't form a tandem with yourself.",
	InvalidReferral:   "That referral link looks broken.",
	TandemComplete:    "That user already has a tandem partner.",
	TandemCreated:     "Your tandem is ready! Time to pick a team name.",
	PartnerJoined:     "Your partner joined! Your tandem is ready.",
	AskTandemName:     "Send a name for your tandem.",
	TandemNamed:       "Tandem %q registered. Good luck, %s!",
	NoTandem:          "You don't have a tandem yet.",
	Tracker:           "Your tracker for today. Tap a task to toggle it:",
	NoTasks:           "No active tasks right now.",
	TaskNotFound:      "That task no longer exists.",
	TaskMarked:        "Done! Task completion recorded.",
	PitstopMenu:       "Pitstop: useful links for your journey.",
	NoLinks:           "No links available yet.",
	LinkNotFound:      "That link no longer exists.",
	MapView:           "Progress of tandem %q:\n%s: %d points\n%s: %d points\nTogether: %d points",
	TeamChat:          "The team chat is opening soon. Stay tuned!",
	DisbandSelf:       "Your tandem has been disbanded. Share this link to find a new partner:\n%s",
	DisbandPartner:    "Your partner left the tandem. Share this link to find a new partner:\n%s",
	Reminder:          "Reminder: you still have unfinished tasks for today!",
	InvalidTime:       "Invalid time format. Use: 2006-01-02 15:04, or 'now'.",
	SendingNow:        "The scheduled time has already passed, sending now...",
	BroadcastDone:     "Broadcast finished. Sent: %d, failed: %d.",
	BroadcastCanceled: "Canceled.",
}

// setDefaults registers default values with viper so config.yaml only needs
// to override what actually differs.
func setDefaults() {
	viper.SetDefault("log.level", DefaultLogLevel)
	viper.SetDefault("log.json", DefaultLogJSON)

	viper.SetDefault("database.path", DefaultDBPath)

	viper.SetDefault("scheduler.daily_reset", DefaultDailyResetSchedule)
	viper.SetDefault("scheduler.challenge_sweep", DefaultChallengeSweepSchedule)
	viper.SetDefault("scheduler.message_sweep", DefaultMessageSweepSchedule)
	viper.SetDefault("scheduler.reminders", DefaultRemindersSchedule)

	viper.SetDefault("delivery.recipient_timeout", DefaultRecipientTimeout)

	viper.SetDefault("names.min_length", DefaultNameMinLength)
	viper.SetDefault("names.max_length", DefaultNameMaxLength)

	viper.SetDefault("messages.welcome", DefaultMessages.Welcome)
	viper.SetDefault("messages.not_authorized", DefaultMessages.NotAuthorized)
	viper.SetDefault("messages.general_error", DefaultMessages.GeneralError)
	viper.SetDefault("messages.ask_name", DefaultMessages.AskName)
	viper.SetDefault("messages.name_set", DefaultMessages.NameSet)
	viper.SetDefault("messages.invalid_name", DefaultMessages.InvalidName)
	viper.SetDefault("messages.share_referral", DefaultMessages.ShareReferral)
	viper.SetDefault("messages.self_referral", DefaultMessages.SelfReferral)
	viper.SetDefault("messages.invalid_referral", DefaultMessages.InvalidReferral)
	viper.SetDefault("messages.tandem_complete", DefaultMessages.TandemComplete)
	viper.SetDefault("messages.tandem_created", DefaultMessages.TandemCreated)
	viper.SetDefault("messages.partner_joined", DefaultMessages.PartnerJoined)
	viper.SetDefault("messages.ask_tandem_name", DefaultMessages.AskTandemName)
	viper.SetDefault("messages.tandem_named", DefaultMessages.TandemNamed)
	viper.SetDefault("messages.no_tandem", DefaultMessages.NoTandem)
	viper.SetDefault("messages.tracker", DefaultMessages.Tracker)
	viper.SetDefault("messages.no_tasks", DefaultMessages.NoTasks)
	viper.SetDefault("messages.task_not_found", DefaultMessages.TaskNotFound)
	viper.SetDefault("messages.task_marked", DefaultMessages.TaskMarked)
	viper.SetDefault("messages.pitstop_menu", DefaultMessages.PitstopMenu)
	viper.SetDefault("messages.no_links", DefaultMessages.NoLinks)
	viper.SetDefault("messages.link_not_found", DefaultMessages.LinkNotFound)
	viper.SetDefault("messages.map_view", DefaultMessages.MapView)
	viper.SetDefault("messages.team_chat", DefaultMessages.TeamChat)
	viper.SetDefault("messages.disband_self", DefaultMessages.DisbandSelf)
	viper.SetDefault("messages.disband_partner", DefaultMessages.DisbandPartner)
	viper.SetDefault("messages.reminder", DefaultMessages.Reminder)
	viper.SetDefault("messages.invalid_time", DefaultMessages.InvalidTime)
	viper.SetDefault("messages.sending_now", DefaultMessages.SendingNow)
	viper.SetDefault("messages.broadcast_done", DefaultMessages.BroadcastDone)
	viper.SetDefault("messages.broadcast_canceled", DefaultMessages.BroadcastCanceled)
}
