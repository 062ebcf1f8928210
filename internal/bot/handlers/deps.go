package handlers

import (
	"log/slog"

	"github.com/edgard/tandembot/internal/broadcast"
	"github.com/edgard/tandembot/internal/config"
	"github.com/edgard/tandembot/internal/database"
	"github.com/edgard/tandembot/internal/session"
)

// HandlerDeps provides dependencies for Telegram command and callback handlers.
type HandlerDeps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Store    database.Store
	Sweeper  *broadcast.Sweeper
	Sessions *session.Manager
}
