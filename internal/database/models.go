package database

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultUserName is the sentinel display name assigned to users until they
// pick one. Handlers use it to detect users that still need the name prompt.
const DefaultUserName = "Unnamed user"

// DefaultTandemName is the sentinel display name for freshly created tandems.
const DefaultTandemName = "Unnamed tandem"

// dayFormat is the canonical date layout used for completion records and
// daily markers. Dates are always computed server-side from the store clock.
const dayFormat = "2006-01-02"

// User represents a bot participant. Users are created implicitly on their
// first observed interaction and are never explicitly deleted.
type User struct {
	UserID    int64         `db:"user_id"`
	Name      string        `db:"name"`
	TandemID  sql.NullInt64 `db:"tandem_id"`
	Score     int64         `db:"score"`
	CreatedAt time.Time     `db:"created_at"`
}

// Tandem is a pair of users jointly tracked for shared scoring.
type Tandem struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

// TandemInfo is the denormalized view of a user's tandem: the pair row plus
// both member names, as consumed by the presentation layer.
type TandemInfo struct {
	TandemID    int64  `db:"tandem_id"`
	TandemName  string `db:"tandem_name"`
	UserName    string `db:"user_name"`
	PartnerID   int64  `db:"partner_id"`
	PartnerName string `db:"partner_name"`
}

// TandemSummary aggregates a tandem's score for the leaderboard. TotalScore
// is computed on read from per-user scores, never pre-materialized.
type TandemSummary struct {
	ID         int64  `db:"id"`
	Name       string `db:"name"`
	TotalScore int64  `db:"total_score"`
	UserNames  []string
}

// TandemStatistics describes a tandem's completion activity over a trailing
// window of days.
type TandemStatistics struct {
	TotalScore       int64
	TasksCompleted   int64
	CompletionsByDay map[string]int64
}

// Task is a daily activity worth a fixed number of points. Deletion is a
// soft-delete (active=false) so historical completions keep their meaning.
type Task struct {
	ID          int64     `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Points      int64     `db:"points"`
	Active      bool      `db:"active"`
	CreatedAt   time.Time `db:"created_at"`
}

// TaskUpdate carries the optional fields of a task update; nil fields are
// left unchanged.
type TaskUpdate struct {
	Title       *string
	Description *string
	Points      *int64
	Active      *bool
}

// PitstopLink is a reference link shown in the pitstop menu. Soft-deleted
// like tasks.
type PitstopLink struct {
	ID        int64     `db:"id"`
	Title     string    `db:"title"`
	URL       string    `db:"url"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
}

// LinkUpdate carries the optional fields of a pitstop link update.
type LinkUpdate struct {
	Title *string
	URL   *string
}

// IDList stores an ordered set of task ids as a comma-separated TEXT column.
type IDList []int64

// Value implements driver.Valuer.
func (l IDList) Value() (driver.Value, error) {
	parts := make([]string, len(l))
	for i, id := range l {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ","), nil
}

// Scan implements sql.Scanner.
func (l *IDList) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case nil:
		*l = nil
		return nil
	default:
		return fmt.Errorf("cannot scan %T into IDList", src)
	}

	if raw == "" {
		*l = nil
		return nil
	}

	parts := strings.Split(raw, ",")
	ids := make(IDList, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q in IDList: %w", p, err)
		}
		ids = append(ids, id)
	}
	*l = ids
	return nil
}

// ScheduledChallenge is a pending task-bundle broadcast. The sent flag is
// monotonic: once true it never reverts, which is what prevents redelivery.
type ScheduledChallenge struct {
	ID          int64          `db:"id"`
	TaskIDs     IDList         `db:"task_ids"`
	MessageText sql.NullString `db:"message_text"`
	SendTime    time.Time      `db:"send_time"`
	Sent        bool           `db:"sent"`
	CreatedAt   time.Time      `db:"created_at"`
}

// ScheduledMessage is a pending generic broadcast or forward. Same
// single-delivery invariant as ScheduledChallenge.
type ScheduledMessage struct {
	ID                   int64          `db:"id"`
	MessageType          string         `db:"message_type"`
	ScheduledTime        time.Time      `db:"scheduled_time"`
	TargetChatID         sql.NullInt64  `db:"target_chat_id"`
	ForwardFromMessageID sql.NullInt64  `db:"forward_from_message_id"`
	Text                 sql.NullString `db:"text"`
	Sent                 bool           `db:"sent"`
	CreatedAt            time.Time      `db:"created_at"`
}
