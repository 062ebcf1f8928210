package database

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Sentinel errors surfaced to callers. Handlers match them with errors.Is
// and turn them into user-visible notices; they are never fatal.
var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrLinkNotFound   = errors.New("link not found")
	ErrTandemNotFound = errors.New("tandem not found")
	ErrAlreadyPaired  = errors.New("user already belongs to a tandem")
	ErrNotPaired      = errors.New("user does not belong to a tandem")
)

// Store defines the interface for database operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// RegisterUser upserts a user and its daily marker. Idempotent.
	RegisterUser(ctx context.Context, userID int64) error

	// GetUserInfo retrieves a user by ID. Returns nil, nil if not found.
	GetUserInfo(ctx context.Context, userID int64) (*User, error)

	// SetUserName updates a user's display name.
	SetUserName(ctx context.Context, userID int64, name string) error

	// GetAllUsers lists user ids, optionally filtered by tandem membership.
	// A nil filter returns everyone.
	GetAllUsers(ctx context.Context, inTandem *bool) ([]int64, error)

	// CreateTandem atomically upserts both users, creates the tandem row and
	// attaches both members. Fails with ErrAlreadyPaired if either user is
	// already in a tandem; the check runs inside the same transaction.
	CreateTandem(ctx context.Context, userID, partnerID int64) (int64, error)

	// GetPartnerID returns the other member of the caller's tandem, or
	// ErrNotPaired for unpaired users.
	GetPartnerID(ctx context.Context, userID int64) (int64, error)

	// GetTandemInfo returns the caller's tandem with both member names.
	// Returns nil, nil for unpaired users.
	GetTandemInfo(ctx context.Context, userID int64) (*TandemInfo, error)

	// SetTandemName updates a tandem's display name.
	SetTandemName(ctx context.Context, tandemID int64, name string) error

	// DisbandTandem deletes the caller's tandem row; member rows survive
	// with their tandem reference cleared. ErrNotPaired if unpaired.
	DisbandTandem(ctx context.Context, userID int64) error

	// GetTandemScoreBreakdown maps each member's user id to their score.
	GetTandemScoreBreakdown(ctx context.Context, tandemID int64) (map[int64]int64, error)

	// GetTandemSummary returns one tandem's aggregate score and member names.
	GetTandemSummary(ctx context.Context, tandemID int64) (*TandemSummary, error)

	// GetAllTandemsWithSummary returns leaderboard rows sorted by total
	// score descending, ties in id order.
	GetAllTandemsWithSummary(ctx context.Context) ([]TandemSummary, error)

	// GetTandemStatistics aggregates a tandem's completions over the trailing
	// 'days' window.
	GetTandemStatistics(ctx context.Context, tandemID int64, days int) (*TandemStatistics, error)

	// CreateTask inserts a new active task and returns its id.
	CreateTask(ctx context.Context, title, description string, points int64) (int64, error)

	// GetTask retrieves a task by ID regardless of active flag.
	// Returns nil, nil if not found.
	GetTask(ctx context.Context, taskID int64) (*Task, error)

	// GetAllTasks lists tasks in id order, active-only unless overridden.
	GetAllTasks(ctx context.Context, activeOnly bool) ([]Task, error)

	// UpdateTask applies the non-nil fields of upd. ErrTaskNotFound if the
	// task does not exist.
	UpdateTask(ctx context.Context, taskID int64, upd TaskUpdate) error

	// DeleteTask soft-deletes a task by clearing its active flag, keeping
	// historical completion references valid.
	DeleteTask(ctx context.Context, taskID int64) error

	// ToggleTask flips the completion state of (user, task) for today and
	// adjusts the user's score by the task's point value, floored at zero.
	// Runs as a single transaction. Returns the new completion state.
	// ErrTaskNotFound if the task is missing or inactive.
	ToggleTask(ctx context.Context, userID, taskID int64) (bool, error)

	// GetTodayStats maps every active task id to its completion state for
	// today. Upserts the user first so new users get a defined empty state.
	GetTodayStats(ctx context.Context, userID int64) (map[int64]bool, error)

	// ResetDailyStats rolls daily markers forward to today and purges
	// completion records from past dates. Idempotent.
	ResetDailyStats(ctx context.Context) error

	// GetUsersWithIncompleteTasks lists tandem members with zero completions
	// for any of the given tasks today. Pure query.
	GetUsersWithIncompleteTasks(ctx context.Context, taskIDs []int64) ([]User, error)

	// AddPitstopLink inserts a new active link and returns its id.
	AddPitstopLink(ctx context.Context, title, url string) (int64, error)

	// GetPitstopLinks lists links in id order, active-only unless overridden.
	GetPitstopLinks(ctx context.Context, activeOnly bool) ([]PitstopLink, error)

	// UpdatePitstopLink applies the non-nil fields of upd. ErrLinkNotFound
	// if the link does not exist.
	UpdatePitstopLink(ctx context.Context, linkID int64, upd LinkUpdate) error

	// DeletePitstopLink soft-deletes a link by clearing its active flag.
	DeletePitstopLink(ctx context.Context, linkID int64) error

	// CreateScheduledChallenge persists a pending task-bundle broadcast.
	CreateScheduledChallenge(ctx context.Context, taskIDs []int64, sendTime time.Time, messageText string) (int64, error)

	// GetDueScheduledChallenges returns unsent challenges due at or before
	// now, earliest first.
	GetDueScheduledChallenges(ctx context.Context, now time.Time) ([]ScheduledChallenge, error)

	// MarkChallengeSent sets the challenge's sent flag. Monotonic.
	MarkChallengeSent(ctx context.Context, challengeID int64) error

	// CreateScheduledMessage persists a pending broadcast/forward entry.
	CreateScheduledMessage(ctx context.Context, msg *ScheduledMessage) (int64, error)

	// GetDueScheduledMessages returns unsent messages due at or before now,
	// earliest first.
	GetDueScheduledMessages(ctx context.Context, now time.Time) ([]ScheduledMessage, error)

	// MarkMessageSent sets the message's sent flag. Monotonic.
	MarkMessageSent(ctx context.Context, messageID int64) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger

	// now is the store's canonical clock; "today" is always derived from it
	// rather than from any client-supplied date. Overridable in tests.
	now func() time.Time
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
		now:    time.Now,
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// today returns the store's canonical date string.
func (s *sqlxStore) today() string {
	return s.now().UTC().Format(dayFormat)
}

// rollback is the deferred transaction cleanup used by every write path.
// A rollback after a successful commit fails with sql.ErrTxDone, which is
// expected and not logged.
func (s *sqlxStore) rollback(ctx context.Context, tx *sqlx.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		s.logger.WarnContext(ctx, "Error rolling back transaction", "error", err)
	}
}
