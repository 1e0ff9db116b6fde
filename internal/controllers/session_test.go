package controllers

import (
	"context"
	"errors"
	"testing"

	"github.com/amaumene/cinematheque/internal/models"
	"github.com/amaumene/cinematheque/internal/notify"
	"github.com/amaumene/cinematheque/internal/services/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newGuard() (*SessionGuard, *MockAuthClient, *MockCredentialStore, *recordingNotifier) {
	auth := new(MockAuthClient)
	store := new(MockCredentialStore)
	notifier := &recordingNotifier{}
	return NewSessionGuard(auth, store, notifier, quietLogger()), auth, store, notifier
}

func TestAuthenticateRemembersSession(t *testing.T) {
	guard, auth, store, notifier := newGuard()
	auth.On("Login", mock.Anything, "ada", "secret", true).
		Return(&backend.LoginResponse{Success: true, Token: "tok", Username: "Ada"}, nil)
	store.On("SaveSession", &models.Session{Token: "tok", Username: "Ada"}).Return(nil)

	session, err := guard.Authenticate(context.Background(), "ada", "secret", true)

	require.NoError(t, err)
	assert.Equal(t, "Ada", session.Username)
	assert.True(t, guard.Active())
	assert.Equal(t, "tok", guard.Token())
	assert.Equal(t, sentNotification{notify.LevelSuccess, "Login successful!"}, notifier.Last())
	store.AssertExpectations(t)
}

func TestAuthenticateWithoutRememberDoesNotPersist(t *testing.T) {
	guard, auth, store, _ := newGuard()
	auth.On("Login", mock.Anything, "ada", "secret", false).
		Return(&backend.LoginResponse{Success: true, Token: "tok", Username: "Ada"}, nil)

	_, err := guard.Authenticate(context.Background(), "ada", "secret", false)

	require.NoError(t, err)
	store.AssertNotCalled(t, "SaveSession", mock.Anything)
}

func TestAuthenticateRefused(t *testing.T) {
	guard, auth, _, notifier := newGuard()
	auth.On("Login", mock.Anything, "ada", "wrong", false).
		Return(&backend.LoginResponse{Success: false, Message: "Invalid username or password"}, nil)

	_, err := guard.Authenticate(context.Background(), "ada", "wrong", false)

	assert.ErrorIs(t, err, models.ErrAuth)
	assert.False(t, guard.Active())
	assert.Equal(t, sentNotification{notify.LevelError, "Invalid username or password"}, notifier.Last())
}

func TestAuthenticateRefusedWithoutMessage(t *testing.T) {
	guard, auth, _, notifier := newGuard()
	auth.On("Login", mock.Anything, "ada", "wrong", false).
		Return(&backend.LoginResponse{Success: false}, nil)

	_, err := guard.Authenticate(context.Background(), "ada", "wrong", false)

	assert.ErrorIs(t, err, models.ErrAuth)
	assert.Equal(t, "Login failed", notifier.Last().Message)
}

func TestRestoreDiscardsInvalidTokenSilently(t *testing.T) {
	guard, auth, store, notifier := newGuard()
	store.On("LoadSession").Return(&models.Session{Token: "old", Username: "Ada"}, nil)
	store.On("ClearSession").Return(nil)
	auth.On("Verify", mock.Anything, "old").Return(models.ErrAuth)

	assert.False(t, guard.Restore(context.Background()))
	assert.False(t, guard.Active())
	assert.Empty(t, notifier.Messages())
	store.AssertCalled(t, "ClearSession")
}

func TestRestoreUnreachableBackendFallsBackToLoggedOut(t *testing.T) {
	guard, auth, store, notifier := newGuard()
	store.On("LoadSession").Return(&models.Session{Token: "tok", Username: "Ada"}, nil)
	store.On("ClearSession").Return(nil)
	auth.On("Verify", mock.Anything, "tok").Return(models.ErrNetwork)

	assert.False(t, guard.Restore(context.Background()))
	assert.Empty(t, notifier.Messages())
}

func TestRestoreValidToken(t *testing.T) {
	guard, auth, store, _ := newGuard()
	store.On("LoadSession").Return(&models.Session{Token: "tok", Username: "Ada"}, nil)
	auth.On("Verify", mock.Anything, "tok").Return(nil)

	require.True(t, guard.Restore(context.Background()))
	assert.Equal(t, &models.Session{Token: "tok", Username: "Ada"}, guard.Session())
}

func TestRestoreNothingRemembered(t *testing.T) {
	guard, auth, store, _ := newGuard()
	store.On("LoadSession").Return(nil, nil)

	assert.False(t, guard.Restore(context.Background()))
	auth.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}

func TestLogoutIsBestEffort(t *testing.T) {
	guard, auth, store, notifier := newGuard()
	auth.On("Login", mock.Anything, "ada", "secret", false).
		Return(&backend.LoginResponse{Success: true, Token: "tok", Username: "Ada"}, nil)
	auth.On("Logout", mock.Anything, "tok").Return(errors.New("connection refused"))
	store.On("ClearSession").Return(nil)

	_, err := guard.Authenticate(context.Background(), "ada", "secret", false)
	require.NoError(t, err)

	guard.Logout(context.Background())

	assert.False(t, guard.Active())
	assert.Equal(t, "", guard.Token())
	assert.Nil(t, guard.Session())
	store.AssertCalled(t, "ClearSession")
	assert.Equal(t, sentNotification{notify.LevelSuccess, "Logged out successfully"}, notifier.Last())
}
