// Package tasks implements the periodic jobs: the nightly daily reset, the
// two delivery sweeps, and the end-of-day reminder pass.
package tasks

import (
	"log/slog"

	"github.com/edgard/tandembot/internal/broadcast"
	"github.com/edgard/tandembot/internal/config"
	"github.com/edgard/tandembot/internal/database"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger  *slog.Logger
	Store   database.Store
	Sweeper *broadcast.Sweeper
	Config  *config.Config
}
