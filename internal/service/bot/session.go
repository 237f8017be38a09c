package bot

import "sync"

// Step names the point a conversation is waiting at.
type Step string

const (
	StepNone                Step = ""
	StepAwaitingFullName    Step = "awaiting_full_name"
	StepAwaitingOrderNumber Step = "awaiting_order_number"
)

// Session holds per-chat conversation state: the pending dialog step and the
// station the operator scans for.
type Session struct {
	Step    Step
	Station string
}

// SessionManager handles user conversation states keyed by chat id.
type SessionManager struct {
	sessions map[int64]Session
	mu       sync.RWMutex
}

// NewSessionManager creates a new session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[int64]Session)}
}

// Get retrieves the current state for a chat.
func (sm *SessionManager) Get(chatID int64) Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[chatID]
}

// Update replaces the state for a chat.
func (sm *SessionManager) Update(chatID int64, session Session) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sessions[chatID] = session
}

// Clear removes a chat's session.
func (sm *SessionManager) Clear(chatID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sessions, chatID)
}
