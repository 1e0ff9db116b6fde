package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/amaumene/cinematheque/internal/models"
	"github.com/sirupsen/logrus"
)

// CollectionSource exposes the cached collection
type CollectionSource interface {
	Records() []models.MediaRecord
	CachedStats() *models.AggregateStats
	FetchedAt() time.Time
}

// SessionSource exposes the active session
type SessionSource interface {
	Session() *models.Session
}

// StatusHandler reports counts over the cached collection
type StatusHandler struct {
	store   CollectionSource
	session SessionSource
	logger  *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(store CollectionSource, session SessionSource, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		store:   store,
		session: session,
		logger:  logger,
	}
}

// StatusResponse represents the status response
type StatusResponse struct {
	Authenticated  bool                   `json:"authenticated"`
	Username       string                 `json:"username,omitempty"`
	FetchedAt      *time.Time             `json:"fetched_at,omitempty"`
	TotalMedia     int                    `json:"total_media"`
	Seen           int                    `json:"seen"`
	MediaByType    map[string]int         `json:"media_by_type"`
	MediaByBackup  map[string]int         `json:"media_by_backup"`
	MediaByQuality map[string]int         `json:"media_by_quality"`
	Stats          *models.AggregateStats `json:"stats,omitempty"`
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records := h.store.Records()
	response := StatusResponse{
		TotalMedia:     len(records),
		MediaByType:    make(map[string]int),
		MediaByBackup:  make(map[string]int),
		MediaByQuality: make(map[string]int),
		Stats:          h.store.CachedStats(),
	}

	if session := h.session.Session(); session != nil {
		response.Authenticated = true
		response.Username = session.Username
	}
	if fetchedAt := h.store.FetchedAt(); !fetchedAt.IsZero() {
		response.FetchedAt = &fetchedAt
	}

	for _, record := range records {
		if record.Seen {
			response.Seen++
		}
		response.MediaByType[string(record.MediaType)]++
		response.MediaByBackup[string(record.BackedUp)]++
		if record.Quality != nil && *record.Quality != "" {
			response.MediaByQuality[*record.Quality]++
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.WithError(err).Warn("Failed to write status response")
	}
}
