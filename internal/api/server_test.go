package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amaumene/cinematheque/internal/api/handlers"
	"github.com/amaumene/cinematheque/internal/api/middleware"
	"github.com/amaumene/cinematheque/internal/config"
	"github.com/amaumene/cinematheque/internal/models"
	"github.com/amaumene/cinematheque/internal/telemetry"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	records []models.MediaRecord
	stats   *models.AggregateStats
	fetched time.Time
}

func (f *fakeStore) Records() []models.MediaRecord       { return f.records }
func (f *fakeStore) CachedStats() *models.AggregateStats { return f.stats }
func (f *fakeStore) FetchedAt() time.Time                { return f.fetched }

type fakeSession struct {
	session *models.Session
}

func (f *fakeSession) Session() *models.Session { return f.session }

func newTestServer(store *fakeStore, session *fakeSession) *Server {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewServer(&config.Config{ServerPort: "0"}, store, session, telemetry.NewMetrics(), logger)
}

func TestHealth(t *testing.T) {
	server := newTestServer(&fakeStore{}, &fakeSession{})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handlers.HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.False(t, resp.Authenticated)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestHealthRejectsPost(t *testing.T) {
	server := newTestServer(&fakeStore{}, &fakeSession{})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStatusCountsCachedCollection(t *testing.T) {
	hd := "HD"
	store := &fakeStore{
		records: []models.MediaRecord{
			{ID: "1", MediaType: models.MediaTypeMovie, Seen: true, BackedUp: models.BackupBackedUp, Quality: &hd},
			{ID: "2", MediaType: models.MediaTypeMovie, BackedUp: models.BackupPending},
			{ID: "3", MediaType: models.MediaTypeTVSeries, BackedUp: models.BackupNotBackedUp},
		},
		stats:   &models.AggregateStats{TotalMedia: 3},
		fetched: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	server := newTestServer(store, &fakeSession{session: &models.Session{Token: "t", Username: "ada"}})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", rec.Header().Get(middleware.RequestIDHeader))

	var resp handlers.StatusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Authenticated)
	assert.Equal(t, "ada", resp.Username)
	assert.Equal(t, 3, resp.TotalMedia)
	assert.Equal(t, 1, resp.Seen)
	assert.Equal(t, map[string]int{"movie": 2, "tv_series": 1}, resp.MediaByType)
	assert.Equal(t, map[string]int{"backed_up": 1, "pending": 1, "not_backed_up": 1}, resp.MediaByBackup)
	assert.Equal(t, map[string]int{"HD": 1}, resp.MediaByQuality)
	require.NotNil(t, resp.FetchedAt)
	require.NotNil(t, resp.Stats)
	assert.Equal(t, 3, resp.Stats.TotalMedia)
}

func TestMetricsEndpoint(t *testing.T) {
	server := newTestServer(&fakeStore{}, &fakeSession{})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
