package controllers

import (
	"context"
	"io"
	"net/url"
	"sync"

	"github.com/amaumene/cinematheque/internal/models"
	"github.com/amaumene/cinematheque/internal/notify"
	"github.com/amaumene/cinematheque/internal/services/backend"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type sentNotification struct {
	Level   notify.Level
	Message string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) Notify(level notify.Level, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{Level: level, Message: message})
}

func (n *recordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.sent))
	for _, s := range n.sent {
		out = append(out, s.Message)
	}
	return out
}

func (n *recordingNotifier) Last() sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return sentNotification{}
	}
	return n.sent[len(n.sent)-1]
}

type activeAuth bool

func (a activeAuth) Active() bool { return bool(a) }

type MockCollection struct {
	mock.Mock
}

func (m *MockCollection) ListMedia(ctx context.Context, query url.Values) ([]models.MediaRecord, error) {
	args := m.Called(ctx, query)
	records, _ := args.Get(0).([]models.MediaRecord)
	return records, args.Error(1)
}

func (m *MockCollection) GetStats(ctx context.Context) (*models.AggregateStats, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(*models.AggregateStats)
	return stats, args.Error(1)
}

func (m *MockCollection) CreateMedia(ctx context.Context, record models.WireRecord) (*models.MediaRecord, error) {
	args := m.Called(ctx, record)
	created, _ := args.Get(0).(*models.MediaRecord)
	return created, args.Error(1)
}

func (m *MockCollection) UpdateMedia(ctx context.Context, id models.RecordID, record models.WireRecord) (*models.MediaRecord, error) {
	args := m.Called(ctx, id, record)
	updated, _ := args.Get(0).(*models.MediaRecord)
	return updated, args.Error(1)
}

func (m *MockCollection) DeleteMedia(ctx context.Context, id models.RecordID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockAuthClient struct {
	mock.Mock
}

func (m *MockAuthClient) Login(ctx context.Context, username, password string, remember bool) (*backend.LoginResponse, error) {
	args := m.Called(ctx, username, password, remember)
	resp, _ := args.Get(0).(*backend.LoginResponse)
	return resp, args.Error(1)
}

func (m *MockAuthClient) Verify(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockAuthClient) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) SaveSession(session *models.Session) error {
	return m.Called(session).Error(0)
}

func (m *MockCredentialStore) LoadSession() (*models.Session, error) {
	args := m.Called()
	session, _ := args.Get(0).(*models.Session)
	return session, args.Error(1)
}

func (m *MockCredentialStore) ClearSession() error {
	return m.Called().Error(0)
}

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Search(ctx context.Context, query string, mediaType models.MediaType) ([]models.SearchResult, error) {
	args := m.Called(ctx, query, mediaType)
	results, _ := args.Get(0).([]models.SearchResult)
	return results, args.Error(1)
}

func (m *MockProvider) Details(ctx context.Context, externalID int, mediaType models.MediaType) (*models.DetailRecord, error) {
	args := m.Called(ctx, externalID, mediaType)
	details, _ := args.Get(0).(*models.DetailRecord)
	return details, args.Error(1)
}

// draftBox is a minimal DraftTarget
type draftBox struct {
	mu    sync.Mutex
	draft models.Draft
}

func (b *draftBox) Draft() models.Draft {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.draft.Clone()
}

func (b *draftBox) UpdateDraft(fn func(models.Draft) models.Draft) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.draft = fn(b.draft.Clone())
}
