// Package session tracks the current authenticated identity. The
// manager restores any existing backend session once at startup, then
// follows session-change events (sign-in, sign-out, token refresh) for
// the rest of the process lifetime. Downstream components subscribe to
// learn when to (re)run their own initialization; the content cache
// gates every remote read on this state.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/minbarcms/minbar/internal/gateway"
	"github.com/minbarcms/minbar/internal/logging"
	"github.com/minbarcms/minbar/internal/models"
)

// Manager is the session state holder. Safe for concurrent use.
type Manager struct {
	gw  gateway.Gateway
	log logging.Logger

	mu        sync.Mutex
	user      *models.User
	restoring bool
	listeners map[int]func()
	nextSub   int
	unsub     func()
}

// NewManager returns a manager in the restoring state. Call Start to
// resolve it.
func NewManager(gw gateway.Gateway, log logging.Logger) *Manager {
	return &Manager{
		gw:        gw,
		log:       log,
		restoring: true,
		listeners: map[int]func(){},
	}
}

// Start subscribes to gateway session events and performs the one-shot
// session restore. A failed restore is treated as "no session" — there
// is no retry. Either way the manager leaves the restoring state.
func (m *Manager) Start(ctx context.Context) {
	m.unsub = m.gw.OnSessionChange(func(s *models.Session) {
		m.apply(s)
	})

	s, err := m.gw.Session(ctx)
	if err != nil {
		m.log.Warn(ctx, "session restore failed, continuing signed out", "err", err)
		s = nil
	}
	m.apply(s)
}

// Close unsubscribes from gateway events.
func (m *Manager) Close() {
	if m.unsub != nil {
		m.unsub()
	}
}

// apply updates state from a session snapshot and notifies subscribers
// synchronously.
func (m *Manager) apply(s *models.Session) {
	m.mu.Lock()
	if s != nil {
		u := s.User
		m.user = &u
	} else {
		m.user = nil
	}
	m.restoring = false
	fns := make([]func(), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// CurrentUser returns the authenticated user, or nil when signed out.
func (m *Manager) CurrentUser() *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// Restoring reports whether the initial session fetch is still pending.
func (m *Manager) Restoring() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.restoring
}

// Subscribe registers a listener fired on every session state change.
// The returned func unsubscribes.
func (m *Manager) Subscribe(fn func()) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// SignIn authenticates and installs the resulting session.
func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	if _, err := m.gw.SignIn(ctx, email, password); err != nil {
		return err
	}
	return nil
}

// SignUp registers a new account. When the backend returns a live
// session it is installed immediately.
func (m *Manager) SignUp(ctx context.Context, email, password, displayName string) error {
	if _, err := m.gw.SignUp(ctx, email, password, displayName); err != nil {
		return err
	}
	return nil
}

// SignOut revokes the session. Local state clears even when the remote
// revoke fails.
func (m *Manager) SignOut(ctx context.Context) error {
	return m.gw.SignOut(ctx)
}

// UpdateProfile changes the display name of the current user.
func (m *Manager) UpdateProfile(ctx context.Context, displayName string) error {
	user, err := m.gw.UpdateUser(ctx, gateway.UserAttributes{DisplayName: displayName})
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	m.mu.Lock()
	m.user = user
	fns := make([]func(), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
	return nil
}

// UpdatePassword changes the password, then signs the user out so they
// re-authenticate with the new credentials.
func (m *Manager) UpdatePassword(ctx context.Context, newPassword string) error {
	if _, err := m.gw.UpdateUser(ctx, gateway.UserAttributes{Password: newPassword}); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return m.gw.SignOut(ctx)
}
