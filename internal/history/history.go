package history

import (
	"sync"

	"lead-assistant/internal/llm"
)

const DefaultMax = 10

// Manager keeps a sliding window of the most recent turns per user.
// It lives for the process lifetime only.
type Manager struct {
	mu       sync.RWMutex
	max      int
	sessions map[int64][]llm.Message
}

// NewManager returns a store that keeps at most max messages per user.
// A non-positive max falls back to DefaultMax.
func NewManager(max int) *Manager {
	if max <= 0 {
		max = DefaultMax
	}
	return &Manager{max: max, sessions: make(map[int64][]llm.Message)}
}

func (m *Manager) Max() int { return m.max }

// Get returns a copy of the user's history in chronological order.
// Unknown users get an empty slice.
func (m *Manager) Get(userID int64) []llm.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	es := m.sessions[userID]
	out := make([]llm.Message, len(es))
	copy(out, es)
	return out
}

// Last returns up to n most recent messages.
func (m *Manager) Last(userID int64, n int) []llm.Message {
	all := m.Get(userID)
	if n <= 0 {
		return nil
	}
	if len(all) > n {
		all = all[len(all)-n:]
	}
	return all
}

func (m *Manager) AppendUser(userID int64, content string) {
	m.Add(userID, llm.RoleUser, content)
}

func (m *Manager) AppendAssistant(userID int64, content string) {
	m.Add(userID, llm.RoleAssistant, content)
}

// Add appends one message and drops the oldest entries beyond the window.
func (m *Manager) Add(userID int64, role, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	es := append(m.sessions[userID], llm.Message{Role: role, Content: content})
	if len(es) > m.max {
		trimmed := make([]llm.Message, m.max)
		copy(trimmed, es[len(es)-m.max:])
		es = trimmed
	}
	m.sessions[userID] = es
}

// Reset removes every turn of the user. No-op for unknown users.
func (m *Manager) Reset(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// Users reports how many users currently hold a history.
func (m *Manager) Users() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
