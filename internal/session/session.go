// Package session holds per-user conversational state for multi-step input
// flows: a state tag plus the fields accumulated so far, advanced by one
// incoming message at a time and cleared on completion or explicit cancel.
package session

import "sync"

// Step identifies which input a user's pending flow is waiting for.
type Step string

const (
	StepNone Step = ""

	StepChooseName       Step = "choose_name"
	StepChooseTandemName Step = "choose_tandem_name"

	StepTaskTitle       Step = "task_title"
	StepTaskDescription Step = "task_description"
	StepTaskPoints      Step = "task_points"
	StepTaskEdit        Step = "task_edit"

	StepLinkTitle Step = "link_title"
	StepLinkURL   Step = "link_url"

	StepChallengeText Step = "challenge_text"
	StepChallengeTime Step = "challenge_time"

	StepBroadcastContent Step = "broadcast_content"

	StepMessageContent Step = "message_content"
	StepMessageTime    Step = "message_time"
)

// State is one user's pending flow: the step tag and the fields collected
// across turns.
type State struct {
	Step Step

	Title       string
	Description string
	TaskID      int64

	SelectedTaskIDs []int64
	MessageText     string

	Text                 string
	TargetChatID         int64
	ForwardFromMessageID int64
}

// Manager is an in-memory session store keyed by user id. Sessions are
// short-lived and deliberately not persisted: an interrupted wizard simply
// restarts.
type Manager struct {
	mu     sync.Mutex
	states map[int64]State
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{states: make(map[int64]State)}
}

// Get returns a copy of the user's state, zero-valued if none exists.
func (m *Manager) Get(userID int64) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[userID]
}

// Step returns just the user's current step tag.
func (m *Manager) Step(userID int64) Step {
	return m.Get(userID).Step
}

// Set replaces the user's state.
func (m *Manager) Set(userID int64, state State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[userID] = state
}

// Update applies fn to the user's state under the lock.
func (m *Manager) Update(userID int64, fn func(*State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state := m.states[userID]
	fn(&state)
	m.states[userID] = state
}

// Clear removes the user's pending flow, if any.
func (m *Manager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, userID)
}
