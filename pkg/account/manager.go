package account

import (
	"fmt"
	"sync"

	"github.com/cexll/storefront-go/pkg/catalog"
	"github.com/cexll/storefront-go/pkg/store"
)

// Manager owns the in-memory session and keeps it synchronized with the
// persistent store on login, logout and startup restore.
type Manager struct {
	store store.Store

	mu      sync.RWMutex
	current Session
}

// NewManager binds a session manager to st.
func NewManager(st store.Store) *Manager {
	return &Manager{store: st}
}

// Restore initializes the session from the store. A session is restored only
// when both token and user id are present; any missing required field yields
// anonymous, which tolerates partial writes across keys.
func (m *Manager) Restore() Session {
	token, _ := m.store.Get(KeyToken)
	userID, _ := m.store.Get(KeyUserID)
	name, _ := m.store.Get(KeyUserName)

	m.mu.Lock()
	defer m.mu.Unlock()
	if token == "" || userID == "" {
		m.current = Session{}
		return m.current
	}
	m.current = Session{UserID: catalog.ID(userID), Name: name, Token: token}
	return m.current
}

// Current returns a snapshot of the active session.
func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Save persists sess to the store and swaps it in as the active session.
// On error the in-memory state is left unchanged.
func (m *Manager) Save(sess Session) error {
	if !sess.Authenticated() {
		return fmt.Errorf("account: refusing to save partial session")
	}
	if err := m.store.Set(KeyToken, sess.Token); err != nil {
		return fmt.Errorf("account: persist token: %w", err)
	}
	if err := m.store.Set(KeyUserID, sess.UserID.String()); err != nil {
		return fmt.Errorf("account: persist user id: %w", err)
	}
	if err := m.store.Set(KeyUserName, sess.Name); err != nil {
		return fmt.Errorf("account: persist user name: %w", err)
	}

	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()
	return nil
}

// Clear drops the session, in memory and in the store. Logout cannot fail:
// store removal errors are swallowed, leaving at worst stale keys that the
// next Restore treats as a partial (anonymous) session.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.current = Session{}
	m.mu.Unlock()

	_ = m.store.Remove(KeyToken)
	_ = m.store.Remove(KeyUserID)
	_ = m.store.Remove(KeyUserName)
}

// Token returns the active credential, or the empty string when anonymous.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Token
}
