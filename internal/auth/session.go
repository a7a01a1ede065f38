package auth

import (
	"encoding/json"
	"sync"

	"github.com/quizforge/quizforge/internal/storage"
)

const sessionRecordKey = "session"

// SessionManager holds the single active identity per browsing context and
// keeps a durable copy so it survives restarts. A malformed persisted record
// simply means no session.
type SessionManager struct {
	roster *Roster
	store  storage.RecordStore

	mu      sync.RWMutex
	current *Account
}

func NewSessionManager(roster *Roster, store storage.RecordStore) *SessionManager {
	m := &SessionManager{roster: roster, store: store}
	m.current = restoreSession(store)
	return m
}

func restoreSession(store storage.RecordStore) *Account {
	data, err := store.Load(sessionRecordKey)
	if err != nil {
		return nil
	}
	var acct Account
	if err := json.Unmarshal(data, &acct); err != nil {
		return nil
	}
	if acct.Username == "" || (acct.Role != RoleInstructor && acct.Role != RoleLearner) {
		return nil
	}
	return &acct
}

// Login verifies credentials against the roster. On success the session is
// replaced and persisted (sans password, which never leaves the roster); on
// failure the existing session is untouched and false is returned.
func (m *SessionManager) Login(username, password string) bool {
	acct, ok := m.roster.Verify(username, password)
	if !ok {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = &acct
	if data, err := json.Marshal(acct); err == nil {
		// best-effort: a failed write costs durability, not the login
		_ = m.store.Save(sessionRecordKey, data)
	}
	return true
}

// Logout clears the session and its durable copy. Idempotent.
func (m *SessionManager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
	_ = m.store.Delete(sessionRecordKey)
}

func (m *SessionManager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}

func (m *SessionManager) HasRole(role Role) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil && m.current.Role == role
}

func (m *SessionManager) Current() (Account, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Account{}, false
	}
	return *m.current, true
}

// CurrentID satisfies the attempt ledger's identity source.
func (m *SessionManager) CurrentID() (string, bool) {
	acct, ok := m.Current()
	return acct.ID, ok
}
