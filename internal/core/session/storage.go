package session

import "sync"

// Storage is the token storage strategy: where the bearer token lives
// between requests. The cookie-backed strategy (bff mode) and the
// memory strategy (direct mode, tests) both honor the same contract:
// writers fully overwrite, readers treat absence as unauthenticated.
type Storage interface {
	// Token returns the stored token, if any.
	Token() (string, bool)
	// Store saves the token. Remember selects the longer-lived slot;
	// the two slots are mutually exclusive for a given login.
	Store(token string, remember bool)
	// Clear removes the token from every slot.
	Clear()
}

// MemoryStorage keeps the token in process memory with a session-only
// slot and a persistent slot, mirroring the session/local split of a
// browser deployment. Safe for concurrent use: another goroutine (or
// "tab") clearing it mid-read is an absence, not an error.
type MemoryStorage struct {
	mu         sync.Mutex
	sessionTok string
	persistTok string
}

// NewMemoryStorage creates an empty memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Token returns whichever slot holds a token.
func (m *MemoryStorage) Token() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.persistTok != "" {
		return m.persistTok, true
	}
	if m.sessionTok != "" {
		return m.sessionTok, true
	}
	return "", false
}

// Store overwrites the selected slot and empties the other one.
func (m *MemoryStorage) Store(token string, remember bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if remember {
		m.persistTok = token
		m.sessionTok = ""
	} else {
		m.sessionTok = token
		m.persistTok = ""
	}
}

// Clear empties both slots.
func (m *MemoryStorage) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionTok = ""
	m.persistTok = ""
}

// SessionToken returns the session-only slot. Test hook.
func (m *MemoryStorage) SessionToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionTok
}

// PersistentToken returns the longer-lived slot. Test hook.
func (m *MemoryStorage) PersistentToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persistTok
}
