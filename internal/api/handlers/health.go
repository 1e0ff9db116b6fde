package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	session SessionSource
	logger  *logrus.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(session SessionSource, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{session: session, logger: logger}
}

// HealthResponse represents the health response
type HealthResponse struct {
	Status        string `json:"status"`
	Authenticated bool   `json:"authenticated"`
}

// ServeHTTP handles the health check endpoint
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:        "healthy",
		Authenticated: h.session.Session() != nil,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.WithError(err).Warn("Failed to write health response")
	}
}
