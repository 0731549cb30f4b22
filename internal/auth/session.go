// Package auth manages sign-in and the in-memory session table. Google
// OAuth is the primary flow; a name-only dev login is available when
// OAuth credentials are not configured.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/Vijay-1289/Expense-Tracker/internal/core"
)

// SessionCookie is the name of the browser cookie carrying the token.
const SessionCookie = "expense_session"

type session struct {
	identity core.Identity
	email    string
	fullName string
	expires  time.Time
}

// User describes the signed-in user behind a session token.
type User struct {
	Identity core.Identity
	Email    string
	FullName string
}

// Manager holds active sessions. Tokens are random and opaque; a
// restart signs everyone out.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]session
	ttl      time.Duration
	now      func() time.Time
	onChange func(core.Identity)
}

func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// SignIn creates a session for the user and returns the token.
func (m *Manager) SignIn(u User) string {
	token := newToken()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = session{
		identity: u.Identity,
		email:    u.Email,
		fullName: u.FullName,
		expires:  m.now().Add(m.ttl),
	}
	return token
}

// OnIdentityChange registers a hook invoked when an identity's last
// session ends, by sign-out or expiry. Set it before serving requests.
func (m *Manager) OnIdentityChange(fn func(core.Identity)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// SignOut invalidates the token. Unknown tokens are ignored.
func (m *Manager) SignOut(token string) {
	m.mu.Lock()
	s, ok := m.sessions[token]
	if ok {
		delete(m.sessions, token)
	}
	gone := ok && !m.identityActiveLocked(s.identity)
	fn := m.onChange
	m.mu.Unlock()

	if gone && fn != nil {
		fn(s.identity)
	}
}

// Lookup resolves a token to its user. Expired sessions are removed
// on access.
func (m *Manager) Lookup(token string) (User, bool) {
	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok {
		return User{}, false
	}
	if m.now().After(s.expires) {
		m.mu.Lock()
		delete(m.sessions, token)
		gone := !m.identityActiveLocked(s.identity)
		fn := m.onChange
		m.mu.Unlock()
		if gone && fn != nil {
			fn(s.identity)
		}
		return User{}, false
	}
	return User{Identity: s.identity, Email: s.email, FullName: s.fullName}, true
}

// identityActiveLocked reports whether the identity still has a live
// session. Callers hold m.mu.
func (m *Manager) identityActiveLocked(id core.Identity) bool {
	now := m.now()
	for _, s := range m.sessions {
		if s.identity == id && now.Before(s.expires) {
			return true
		}
	}
	return false
}

// ActiveSessions reports the number of unexpired sessions.
func (m *Manager) ActiveSessions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	now := m.now()
	for _, s := range m.sessions {
		if now.Before(s.expires) {
			n++
		}
	}
	return n
}

func newToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("auth: cannot read random bytes: " + err.Error())
	}
	return hex.EncodeToString(b)
}
