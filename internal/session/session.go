// Package session caches the remote account login between runs.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"cswitch/config/storage"
	"cswitch/internal/credstore"
)

// tokenAccount is the credential store account holding the session token.
const tokenAccount = "session-token"

// Session is a cached remote login.
type Session struct {
	Token     string    `json:"token,omitempty"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// Expired reports whether the session carries an expiry in the past.
func (s *Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Manager persists the session as a JSON marker file in the app directory.
// When a credential store is attached, the token lives there instead of in
// the marker file.
type Manager struct {
	path    string
	secrets credstore.Store
	mu      sync.Mutex
}

// NewManager creates a Manager storing the session under dir.
func NewManager(dir string) *Manager {
	return &Manager{path: filepath.Join(dir, "session.json")}
}

// AttachSecrets moves token storage into the credential store. The marker
// file then carries only the username and expiry.
func (m *Manager) AttachSecrets(s credstore.Store) {
	m.secrets = s
}

// Load returns the cached session, or nil when none exists or the cache
// is unreadable (treated as "not logged in").
func (m *Manager) Load() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path)
	if err != nil {
		return nil
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	if s.Token == "" && m.secrets != nil {
		token, err := m.secrets.Get(credstore.ServiceSession, tokenAccount)
		if err != nil {
			return nil
		}
		s.Token = token
	}
	if s.Token == "" || s.Expired() {
		return nil
	}
	return &s
}

// Save persists the session.
func (m *Manager) Save(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	marker := *s
	if m.secrets != nil {
		if err := m.secrets.Set(credstore.ServiceSession, tokenAccount, s.Token); err != nil {
			return fmt.Errorf("failed to store session token: %w", err)
		}
		marker.Token = ""
	}

	data, err := json.MarshalIndent(marker, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}
	return storage.AtomicWriteFile(m.path, data, 0600)
}

// Clear removes the cached session. Used on logout and on any 401 from
// the remote service.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	if m.secrets != nil {
		if err := m.secrets.Delete(credstore.ServiceSession, tokenAccount); err != nil {
			errs = append(errs, err)
		}
	}
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		errs = append(errs, fmt.Errorf("failed to remove session: %w", err))
	}
	return errors.Join(errs...)
}

// Token returns the cached token, empty when not logged in.
func (m *Manager) Token() string {
	if s := m.Load(); s != nil {
		return s.Token
	}
	return ""
}

// Active reports whether a usable session exists.
func (m *Manager) Active() bool {
	return m.Load() != nil
}
