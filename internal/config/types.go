// Package config manages application configuration from config.yaml,
// BOT_* environment variables, and default values.
package config

import (
	"time"

	"github.com/go-telegram/bot/models"
)

// Config defines the application configuration for all components.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Delivery  DeliveryConfig  `mapstructure:"delivery"`
	Names     NamesConfig     `mapstructure:"names"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LogConfig controls log level and output format.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot token and the administrator allow-list.
type TelegramConfig struct {
	Token    string  `mapstructure:"token"     validate:"required"`
	AdminIDs []int64 `mapstructure:"admin_ids" validate:"required,min=1,dive,gt=0"`

	// BotInfo is populated at startup via GetMe; it is not read from file.
	BotInfo *models.User `mapstructure:"-"`
}

// IsAdmin reports whether the given user is on the administrator allow-list.
func (c TelegramConfig) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// DatabaseConfig holds the SQLite database location.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// SchedulerConfig holds the cron expressions for the periodic jobs.
type SchedulerConfig struct {
	DailyReset     string `mapstructure:"daily_reset"     validate:"required"`
	ChallengeSweep string `mapstructure:"challenge_sweep" validate:"required"`
	MessageSweep   string `mapstructure:"message_sweep"   validate:"required"`
	Reminders      string `mapstructure:"reminders"       validate:"required"`
}

// DeliveryConfig bounds each per-recipient delivery attempt.
type DeliveryConfig struct {
	RecipientTimeout time.Duration `mapstructure:"recipient_timeout" validate:"required,min=1s,max=2m"`
}

// NamesConfig bounds user-supplied display names.
type NamesConfig struct {
	MinLength int `mapstructure:"min_length" validate:"required,min=1"`
	MaxLength int `mapstructure:"max_length" validate:"required,gtfield=MinLength"`
}

// Valid reports whether a display name is within the configured bounds.
func (c NamesConfig) Valid(name string) bool {
	return len(name) >= c.MinLength && len(name) <= c.MaxLength
}

// MessagesConfig holds the user-visible message templates.
type MessagesConfig struct {
	Welcome           string `mapstructure:"welcome"             validate:"required"`
	NotAuthorized     string `mapstructure:"not_authorized"      validate:"required"`
	GeneralError      string `mapstructure:"general_error"       validate:"required"`
	AskName           string `mapstructure:"ask_name"            validate:"required"`
	NameSet           string `mapstructure:"name_set"            validate:"required"`
	InvalidName       string `mapstructure:"invalid_name"        validate:"required"`
	ShareReferral     string `mapstructure:"share_referral"      validate:"required"`
	SelfReferral      string `mapstructure:"self_referral"       validate:"required"`
	InvalidReferral   string `mapstructure:"invalid_referral"    validate:"required"`
	TandemComplete    string `mapstructure:"tandem_complete"     validate:"required"`
	TandemCreated     string `mapstructure:"tandem_created"      validate:"required"`
	PartnerJoined     string `mapstructure:"partner_joined"      validate:"required"`
	AskTandemName     string `mapstructure:"ask_tandem_name"     validate:"required"`
	TandemNamed       string `mapstructure:"tandem_named"        validate:"required"`
	NoTandem          string `mapstructure:"no_tandem"           validate:"required"`
	Tracker           string `mapstructure:"tracker"             validate:"required"`
	NoTasks           string `mapstructure:"no_tasks"            validate:"required"`
	TaskNotFound      string `mapstructure:"task_not_found"      validate:"required"`
	TaskMarked        string `mapstructure:"task_marked"         validate:"required"`
	PitstopMenu       string `mapstructure:"pitstop_menu"        validate:"required"`
	NoLinks           string `mapstructure:"no_links"            validate:"required"`
	LinkNotFound      string `mapstructure:"link_not_found"      validate:"required"`
	MapView           string `mapstructure:"map_view"            validate:"required"`
	TeamChat          string `mapstructure:"team_chat"           validate:"required"`
	DisbandSelf       string `mapstructure:"disband_self"        validate:"required"`
	DisbandPartner    string `mapstructure:"disband_partner"     validate:"required"`
	Reminder          string `mapstructure:"reminder"            validate:"required"`
	InvalidTime       string `mapstructure:"invalid_time"        validate:"required"`
	SendingNow        string `mapstructure:"sending_now"         validate:"required"`
	BroadcastDone     string `mapstructure:"broadcast_done"      validate:"required"`
	BroadcastCanceled string `mapstructure:"broadcast_canceled"  validate:"required"`
}
