package controllers

import (
	"context"
	"fmt"
	"sync"

	"github.com/amaumene/cinematheque/internal/models"
	"github.com/amaumene/cinematheque/internal/notify"
	"github.com/amaumene/cinematheque/internal/services/backend"
	"github.com/sirupsen/logrus"
)

// AuthClient is the auth collaborator
type AuthClient interface {
	Login(ctx context.Context, username, password string, remember bool) (*backend.LoginResponse, error)
	Verify(ctx context.Context, token string) error
	Logout(ctx context.Context, token string) error
}

// CredentialStore durably remembers a session between runs
type CredentialStore interface {
	SaveSession(session *models.Session) error
	LoadSession() (*models.Session, error)
	ClearSession() error
}

// SessionGuard holds the auth credential and gates collection operations
type SessionGuard struct {
	auth     AuthClient
	store    CredentialStore
	notifier notify.Notifier
	logger   *logrus.Logger

	mu      sync.RWMutex
	session *models.Session
}

// NewSessionGuard creates a guard with no active session
func NewSessionGuard(auth AuthClient, store CredentialStore, notifier notify.Notifier, logger *logrus.Logger) *SessionGuard {
	return &SessionGuard{
		auth:     auth,
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// Authenticate logs in and activates the resulting session. With remember set the
// token is persisted so that Restore can pick it up on the next start.
func (g *SessionGuard) Authenticate(ctx context.Context, username, password string, remember bool) (*models.Session, error) {
	resp, err := g.auth.Login(ctx, username, password, remember)
	if err != nil {
		g.logger.WithError(err).Error("Login request failed")
		g.notifier.Notify(notify.LevelError, "Login failed. Please try again.")
		return nil, err
	}

	if !resp.Success || resp.Token == "" {
		message := resp.Message
		if message == "" {
			message = "Login failed"
		}
		g.logger.WithField("username", username).Warn("Login refused")
		g.notifier.Notify(notify.LevelError, message)
		return nil, fmt.Errorf("%w: %s", models.ErrAuth, message)
	}

	session := &models.Session{Token: resp.Token, Username: resp.Username}
	if session.Username == "" {
		session.Username = username
	}

	g.mu.Lock()
	g.session = session
	g.mu.Unlock()

	if remember {
		if err := g.store.SaveSession(session); err != nil {
			g.logger.WithError(err).Warn("Failed to remember session")
		}
	}

	g.logger.WithField("username", session.Username).Info("Logged in")
	g.notifier.Notify(notify.LevelSuccess, "Login successful!")

	copied := *session
	return &copied, nil
}

// Verify reports whether the backend still accepts token
func (g *SessionGuard) Verify(ctx context.Context, token string) bool {
	if err := g.auth.Verify(ctx, token); err != nil {
		g.logger.WithError(err).Debug("Token verification failed")
		return false
	}
	return true
}

// Restore re-activates a remembered session after verifying its token.
// An invalid or unverifiable token is discarded silently.
func (g *SessionGuard) Restore(ctx context.Context) bool {
	stored, err := g.store.LoadSession()
	if err != nil {
		g.logger.WithError(err).Warn("Failed to load remembered session")
		return false
	}
	if stored == nil {
		return false
	}

	if !g.Verify(ctx, stored.Token) {
		if err := g.store.ClearSession(); err != nil {
			g.logger.WithError(err).Warn("Failed to discard remembered session")
		}
		return false
	}

	g.mu.Lock()
	g.session = stored
	g.mu.Unlock()

	g.logger.WithField("username", stored.Username).Debug("Restored remembered session")
	return true
}

// Logout ends the session. The remote call is best effort; local state is always cleared.
func (g *SessionGuard) Logout(ctx context.Context) {
	token := g.Token()
	if token != "" {
		if err := g.auth.Logout(ctx, token); err != nil {
			g.logger.WithError(err).Warn("Remote logout failed")
		}
	}

	g.mu.Lock()
	g.session = nil
	g.mu.Unlock()

	if err := g.store.ClearSession(); err != nil {
		g.logger.WithError(err).Warn("Failed to clear remembered session")
	}

	g.notifier.Notify(notify.LevelSuccess, "Logged out successfully")
}

// Active reports whether a session is active
func (g *SessionGuard) Active() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session != nil
}

// Session returns a copy of the active session, or nil
func (g *SessionGuard) Session() *models.Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.session == nil {
		return nil
	}
	copied := *g.session
	return &copied
}

// Token returns the token of the active session, or ""
func (g *SessionGuard) Token() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.session == nil {
		return ""
	}
	return g.session.Token
}
