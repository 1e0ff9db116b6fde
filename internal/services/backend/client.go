package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/amaumene/cinematheque/internal/config"
	"github.com/amaumene/cinematheque/internal/models"
	"github.com/amaumene/cinematheque/internal/telemetry"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const maxErrorBody = 4096

// TokenSource supplies the bearer token of the active session
type TokenSource interface {
	Token() string
}

// Client handles communication with the collection backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *logrus.Logger
	metrics    *telemetry.Metrics
	tracer     trace.Tracer
}

// NewClient creates a new backend API client
func NewClient(cfg *config.Config, logger *logrus.Logger, metrics *telemetry.Metrics) (*Client, error) {
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("backend URL is required")
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.APIURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		metrics:    metrics,
		tracer:     otel.Tracer("cinematheque/backend"),
	}, nil
}

// UseTokenSource makes every request carry the token of the given source
func (c *Client) UseTokenSource(tokens TokenSource) {
	c.tokens = tokens
}

// tokenMode selects where the bearer token of a request comes from
type tokenMode int

const (
	sessionToken tokenMode = iota // the token source, if any
	givenToken                    // only the token passed in; none when it is empty
)

// doRequest performs an HTTP request to the backend, encoding body and decoding into result
func (c *Client) doRequest(ctx context.Context, operation, method, path string, mode tokenMode, token string,
	body, result interface{}) (err error) {
	started := time.Now()
	ctx, span := c.tracer.Start(ctx, "backend."+operation, trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		c.metrics.ObserveRequest("backend", operation, started, err)
	}()

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	fullURL := c.baseURL + path
	c.logger.WithFields(logrus.Fields{
		"method": method,
		"url":    fullURL,
	}).Debug("Making backend API request")

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if mode == sessionToken && c.tokens != nil {
		token = c.tokens.Token()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.NetworkError(ctx, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &models.APIError{StatusCode: resp.StatusCode, Detail: errorDetail(bodyBytes)}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// errorDetail extracts the "detail" or "message" field of an error body, falling back to the raw text
func errorDetail(body []byte) string {
	var payload struct {
		Detail  interface{} `json:"detail"`
		Message string      `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if s, ok := payload.Detail.(string); ok && s != "" {
			return s
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(body))
}
