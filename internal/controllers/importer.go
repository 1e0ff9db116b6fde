package controllers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/amaumene/cinematheque/internal/config"
	"github.com/amaumene/cinematheque/internal/models"
	"github.com/amaumene/cinematheque/internal/notify"
	"github.com/amaumene/cinematheque/internal/telemetry"
	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// MetadataProvider is the metadata-provider collaborator
type MetadataProvider interface {
	Search(ctx context.Context, query string, mediaType models.MediaType) ([]models.SearchResult, error)
	Details(ctx context.Context, externalID int, mediaType models.MediaType) (*models.DetailRecord, error)
}

// DraftTarget owns the draft an import merges into
type DraftTarget interface {
	Draft() models.Draft
	UpdateDraft(fn func(models.Draft) models.Draft)
}

// ImportState is the state of an import engine
type ImportState int

const (
	StateIdle ImportState = iota
	StateSearching
	StateResults
	StateImporting
	StateError
)

func (s ImportState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSearching:
		return "searching"
	case StateResults:
		return "results"
	case StateImporting:
		return "importing"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

var errNoDetails = errors.New("provider returned no details")

// ImportOptions tunes the search and details behaviour of an Importer
type ImportOptions struct {
	Debounce   time.Duration // quiet period before a search is dispatched
	Timeout    time.Duration // per network attempt
	Attempts   int           // details attempts, 1 means no retry
	RetryDelay time.Duration // wait between details attempts
}

// ImportOptionsFromConfig reads the import settings from the configuration
func ImportOptionsFromConfig(cfg *config.Config) ImportOptions {
	return ImportOptions{
		Debounce:   cfg.SearchDebounce,
		Timeout:    cfg.RequestTimeout,
		Attempts:   cfg.DetailsAttempts,
		RetryDelay: cfg.DetailsRetryDelay,
	}
}

// Importer searches the metadata provider and merges a chosen result into a draft.
// Only one search or import runs at a time; concurrent calls are rejected with ErrBusy.
type Importer struct {
	provider MetadataProvider
	notifier notify.Notifier
	logger   *logrus.Logger
	metrics  *telemetry.Metrics
	opts     ImportOptions

	mu         sync.Mutex
	state      ImportState
	results    []models.SearchResult
	generation uint64
	pending    chan struct{}
}

// NewImporter creates an idle importer
func NewImporter(provider MetadataProvider, notifier notify.Notifier, logger *logrus.Logger,
	metrics *telemetry.Metrics, opts ImportOptions) *Importer {
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	return &Importer{
		provider: provider,
		notifier: notifier,
		logger:   logger,
		metrics:  metrics,
		opts:     opts,
	}
}

// State returns the current state
func (e *Importer) State() ImportState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Results returns a copy of the current search results
func (e *Importer) Results() []models.SearchResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]models.SearchResult(nil), e.results...)
}

// Reset cancels any pending search, drops results and returns to Idle.
// Responses of requests already on the wire are discarded when they arrive.
func (e *Importer) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelPending()
	e.generation++
	e.results = nil
	e.state = StateIdle
}

// Search looks up term after the debounce period. A newer call made during the
// debounce period supersedes this one, which then returns ErrSuperseded without
// touching the network.
func (e *Importer) Search(ctx context.Context, term string, mediaType models.MediaType) ([]models.SearchResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		e.notifier.Notify(notify.LevelError, "Please enter a title to search")
		return nil, fmt.Errorf("%w: empty search term", models.ErrValidation)
	}

	e.mu.Lock()
	if e.busy() {
		e.mu.Unlock()
		return nil, models.ErrBusy
	}
	e.cancelPending()
	e.generation++
	gen := e.generation
	cancelled := make(chan struct{})
	e.pending = cancelled
	e.mu.Unlock()

	timer := time.NewTimer(e.opts.Debounce)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-cancelled:
		return nil, models.ErrSuperseded
	case <-ctx.Done():
		e.mu.Lock()
		if e.pending == cancelled {
			e.pending = nil
		}
		e.mu.Unlock()
		return nil, ctx.Err()
	}

	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		return nil, models.ErrSuperseded
	}
	e.pending = nil
	e.state = StateSearching
	e.mu.Unlock()

	e.logger.WithFields(logrus.Fields{
		"query":      term,
		"media_type": mediaType,
	}).Debug("Searching metadata provider")

	attemptCtx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	results, err := e.provider.Search(attemptCtx, term, mediaType)
	cancel()
	e.metrics.ObserveImport("search", err)

	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		return nil, models.ErrSuperseded
	}
	if err != nil {
		e.state = StateError
		e.mu.Unlock()
		e.logger.WithError(err).WithField("query", term).Warn("Metadata search failed")
		e.notifySearchFailure(err)
		return nil, err
	}
	e.results = append([]models.SearchResult(nil), results...)
	if len(results) > 0 {
		e.state = StateResults
	} else {
		e.state = StateIdle
	}
	e.mu.Unlock()

	if len(results) == 0 {
		e.notifier.Notify(notify.LevelInfo, "No results found. Try different keywords.")
	} else {
		e.notifier.Notify(notify.LevelSuccess, fmt.Sprintf("Found %d results", len(results)))
	}
	return append([]models.SearchResult(nil), results...), nil
}

// SelectResult fetches the details of result and merges them into the target's draft.
// On any failure the draft is left exactly as it was and ErrDetailsUnavailable is returned.
func (e *Importer) SelectResult(ctx context.Context, result models.SearchResult, target DraftTarget) error {
	mediaType := target.Draft().MediaType
	if !mediaType.Valid() {
		mediaType = models.MediaTypeMovie
	}

	e.mu.Lock()
	if e.busy() {
		e.mu.Unlock()
		return models.ErrBusy
	}
	e.cancelPending()
	e.generation++
	gen := e.generation
	e.state = StateImporting
	e.mu.Unlock()

	details, err := e.fetchDetails(ctx, result.ExternalID, mediaType)
	e.metrics.ObserveImport("details", err)

	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		return models.ErrSuperseded
	}
	if err != nil {
		e.state = StateError
		e.mu.Unlock()

		e.logger.WithError(err).WithField("tmdb_id", result.ExternalID).Warn("Could not fetch details")
		if errors.Is(err, models.ErrRateLimited) {
			e.notifier.Notify(notify.LevelWarning, "Too many requests. Please wait a moment.")
		} else {
			e.notifier.Notify(notify.LevelWarning, "Could not fetch details. You can still add manually.")
		}
		return fmt.Errorf("%w: %w", models.ErrDetailsUnavailable, err)
	}

	target.UpdateDraft(func(d models.Draft) models.Draft {
		return MergeDetails(d, *details)
	})
	e.results = nil
	e.state = StateIdle
	e.mu.Unlock()

	e.logger.WithField("tmdb_id", result.ExternalID).Info("Metadata imported")
	e.notifier.Notify(notify.LevelSuccess, "Metadata imported! Review and save.")
	return nil
}

// fetchDetails retries failed attempts with a constant delay. Rate limiting and an
// empty payload end the retries at once.
func (e *Importer) fetchDetails(ctx context.Context, externalID int, mediaType models.MediaType) (*models.DetailRecord, error) {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(e.opts.RetryDelay), uint64(e.opts.Attempts-1)),
		ctx,
	)

	var details *models.DetailRecord
	attempt := 0
	operation := func() error {
		attempt++
		attemptCtx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()

		d, err := e.provider.Details(attemptCtx, externalID, mediaType)
		if err != nil {
			if errors.Is(err, models.ErrRateLimited) {
				return backoff.Permanent(err)
			}
			return err
		}
		if d == nil {
			return backoff.Permanent(errNoDetails)
		}
		details = d
		return nil
	}
	notifyRetry := func(err error, wait time.Duration) {
		e.logger.WithError(err).WithFields(logrus.Fields{
			"tmdb_id": externalID,
			"attempt": attempt,
			"retry":   wait,
		}).Debug("Details attempt failed, retrying")
	}

	if err := backoff.RetryNotify(operation, policy, notifyRetry); err != nil {
		return nil, err
	}
	return details, nil
}

// BestMatch picks the result whose title is closest to title by edit distance, ignoring case.
// Ties keep the provider order.
func BestMatch(results []models.SearchResult, title string) (models.SearchResult, bool) {
	if len(results) == 0 {
		return models.SearchResult{}, false
	}
	want := strings.ToLower(strings.TrimSpace(title))
	best, bestDistance := 0, -1
	for i, r := range results {
		d := levenshtein.ComputeDistance(want, strings.ToLower(strings.TrimSpace(r.Title)))
		if bestDistance < 0 || d < bestDistance {
			best, bestDistance = i, d
		}
	}
	return results[best], true
}

func (e *Importer) notifySearchFailure(err error) {
	var providerErr *models.ProviderError
	switch {
	case errors.Is(err, models.ErrRateLimited):
		e.notifier.Notify(notify.LevelWarning, "Too many requests. Please wait a moment.")
	case errors.Is(err, models.ErrTimeout):
		e.notifier.Notify(notify.LevelError, "Search timed out. Please try again.")
	case errors.As(err, &providerErr):
		e.notifier.Notify(notify.LevelError, providerErr.Message)
	default:
		e.notifier.Notify(notify.LevelWarning, "Search failed. You can still add manually.")
	}
}

// busy reports whether a search or import is on the wire; callers hold mu
func (e *Importer) busy() bool {
	return e.state == StateSearching || e.state == StateImporting
}

// cancelPending wakes a search still waiting out its debounce; callers hold mu
func (e *Importer) cancelPending() {
	if e.pending != nil {
		close(e.pending)
		e.pending = nil
	}
}
