package tmdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/amaumene/cinematheque/internal/config"
	"github.com/amaumene/cinematheque/internal/models"
	"github.com/amaumene/cinematheque/internal/telemetry"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	searchCachePrefix  = "search:"
	detailsCachePrefix = "details:"
	maxResponseSize    = 4 << 20
)

// Client talks to the metadata provider proxy exposed by the backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *cache.Cache
	logger     *logrus.Logger
	metrics    *telemetry.Metrics
	tracer     trace.Tracer
}

// NewClient creates a provider client. Requests are rate limited to
// cfg.ProviderRateLimit per second and responses are cached for cfg.ProviderCacheTTL.
func NewClient(cfg *config.Config, logger *logrus.Logger, metrics *telemetry.Metrics) (*Client, error) {
	if cfg.MetadataURL == "" {
		return nil, fmt.Errorf("metadata URL is required")
	}

	limit := rate.Inf
	if cfg.ProviderRateLimit > 0 {
		limit = rate.Limit(cfg.ProviderRateLimit)
	}

	var responses *cache.Cache
	if cfg.ProviderCacheTTL > 0 {
		responses = cache.New(cfg.ProviderCacheTTL, 2*cfg.ProviderCacheTTL)
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.MetadataURL, "/"),
		// attempts are bounded by the caller's context
		httpClient: &http.Client{Timeout: 60 * time.Second},
		limiter:    rate.NewLimiter(limit, 1),
		cache:      responses,
		logger:     logger,
		metrics:    metrics,
		tracer:     otel.Tracer("cinematheque/tmdb"),
	}, nil
}

// Search looks up titles of the given media type.
// A provider error payload is returned as *models.ProviderError.
func (c *Client) Search(ctx context.Context, query string, mediaType models.MediaType) ([]models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query cannot be empty", models.ErrValidation)
	}

	cacheKey := searchCachePrefix + string(mediaType) + ":" + strings.ToLower(query)
	if cached, ok := c.fromCache(cacheKey); ok {
		c.logger.WithField("query", query).Debug("Retrieved search results from cache")
		return append([]models.SearchResult(nil), cached.([]models.SearchResult)...), nil
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("media_type", string(mediaType))

	body, err := c.get(ctx, "search", "/search?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp models.SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	if resp.Error != "" {
		return nil, &models.ProviderError{Message: resp.Error}
	}
	if resp.Results == nil {
		resp.Results = []models.SearchResult{}
	}

	c.logger.WithFields(logrus.Fields{
		"query":   query,
		"results": len(resp.Results),
	}).Debug("Provider search completed")

	c.toCache(cacheKey, resp.Results)
	return append([]models.SearchResult(nil), resp.Results...), nil
}

// Details fetches the full record of one item. A null payload yields (nil, nil).
func (c *Client) Details(ctx context.Context, externalID int, mediaType models.MediaType) (*models.DetailRecord, error) {
	cacheKey := detailsCachePrefix + string(mediaType) + ":" + strconv.Itoa(externalID)
	if cached, ok := c.fromCache(cacheKey); ok {
		details := cached.(models.DetailRecord)
		return &details, nil
	}

	params := url.Values{}
	params.Set("media_type", string(mediaType))

	body, err := c.get(ctx, "details", "/details/"+strconv.Itoa(externalID)+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var details *models.DetailRecord
	if err := json.Unmarshal(body, &details); err != nil {
		return nil, fmt.Errorf("failed to decode details response: %w", err)
	}
	if details == nil {
		return nil, nil
	}

	c.toCache(cacheKey, *details)
	return details, nil
}

// get performs a rate limited GET and returns the raw body of a 2xx response
func (c *Client) get(ctx context.Context, operation, path string) (body []byte, err error) {
	started := time.Now()
	ctx, span := c.tracer.Start(ctx, "tmdb."+operation, trace.WithAttributes(
		attribute.String("http.path", path),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		c.metrics.ObserveRequest("tmdb", operation, started, err)
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: rate limiter: %v", models.ErrTimeout, err)
	}

	fullURL := c.baseURL + path
	c.logger.WithField("url", fullURL).Debug("Making provider request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, models.NetworkError(ctx, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, models.NetworkError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &models.APIError{StatusCode: resp.StatusCode, Detail: string(bytes.TrimSpace(body))}
	}

	return body, nil
}

func (c *Client) fromCache(key string) (interface{}, bool) {
	if c.cache == nil {
		return nil, false
	}
	return c.cache.Get(key)
}

func (c *Client) toCache(key string, value interface{}) {
	if c.cache == nil {
		return
	}
	c.cache.Set(key, value, cache.DefaultExpiration)
}
