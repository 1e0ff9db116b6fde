package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/amaumene/cinematheque/internal/models"
	"github.com/amaumene/cinematheque/internal/notify"
	"github.com/amaumene/cinematheque/internal/telemetry"
	"github.com/sirupsen/logrus"
)

// DeletePrompt is the question put to the user before a delete
const DeletePrompt = "Are you sure you want to delete this item?"

// Collection is the collection collaborator
type Collection interface {
	ListMedia(ctx context.Context, query url.Values) ([]models.MediaRecord, error)
	GetStats(ctx context.Context) (*models.AggregateStats, error)
	CreateMedia(ctx context.Context, record models.WireRecord) (*models.MediaRecord, error)
	UpdateMedia(ctx context.Context, id models.RecordID, record models.WireRecord) (*models.MediaRecord, error)
	DeleteMedia(ctx context.Context, id models.RecordID) error
}

// Authorizer reports whether a session is active
type Authorizer interface {
	Active() bool
}

// SnapshotStore persists the last fetched collection and stats
type SnapshotStore interface {
	SaveRecords(records []models.MediaRecord) error
	SaveStats(stats *models.AggregateStats) error
	LoadSnapshot() (*models.Snapshot, error)
}

// MediaStore fetches and mutates the remote collection and keeps the in-memory cache of it.
// The cache is only ever written by the store's own refreshes; readers get copies.
type MediaStore struct {
	client       Collection
	auth         Authorizer
	snapshots    SnapshotStore
	notifier     notify.Notifier
	logger       *logrus.Logger
	metrics      *telemetry.Metrics
	refreshDelay time.Duration

	mu        sync.RWMutex
	records   []models.MediaRecord
	stats     *models.AggregateStats
	filter    models.Filter
	loading   int
	fetchedAt time.Time
}

// NewMediaStore creates a store. snapshots and metrics may be nil.
func NewMediaStore(client Collection, auth Authorizer, snapshots SnapshotStore, notifier notify.Notifier,
	logger *logrus.Logger, metrics *telemetry.Metrics, refreshDelay time.Duration) *MediaStore {
	return &MediaStore{
		client:       client,
		auth:         auth,
		snapshots:    snapshots,
		notifier:     notifier,
		logger:       logger,
		metrics:      metrics,
		refreshDelay: refreshDelay,
		filter:       models.DefaultFilter(),
		records:      []models.MediaRecord{},
	}
}

// SetFilter changes the filter used by subsequent list calls
func (s *MediaStore) SetFilter(filter models.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = filter
}

// Filter returns the current filter
func (s *MediaStore) Filter() models.Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// Records returns a snapshot of the cached collection
func (s *MediaStore) Records() []models.MediaRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.MediaRecord(nil), s.records...)
}

// CachedStats returns the last fetched stats, or nil
func (s *MediaStore) CachedStats() *models.AggregateStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stats == nil {
		return nil
	}
	copied := *s.stats
	return &copied
}

// FetchedAt returns when the cache was last filled
func (s *MediaStore) FetchedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetchedAt
}

// Find looks up a cached record by id
func (s *MediaStore) Find(id models.RecordID) (models.MediaRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.ID == id {
			return r, true
		}
	}
	return models.MediaRecord{}, false
}

// Loading reports whether a visible fetch is in progress
func (s *MediaStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading > 0
}

// LoadCached fills an empty cache from the persisted snapshot
func (s *MediaStore) LoadCached() error {
	if s.snapshots == nil {
		return nil
	}
	snapshot, err := s.snapshots.LoadSnapshot()
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	if snapshot == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.records) == 0 && snapshot.Records != nil {
		s.records = snapshot.Records
		s.fetchedAt = snapshot.FetchedAt
	}
	if s.stats == nil {
		s.stats = snapshot.Stats
	}
	return nil
}

// List fetches the collection matching the current filter.
// Without a session it does nothing. A silent call never changes the loading state
// and on failure logs and returns the stale cache with a nil error.
func (s *MediaStore) List(ctx context.Context, silent bool) ([]models.MediaRecord, error) {
	if !s.auth.Active() {
		return nil, nil
	}
	if !silent {
		s.beginLoading()
		defer s.endLoading()
	}

	records, err := s.client.ListMedia(ctx, filterQuery(s.Filter()))
	s.metrics.ObserveRefresh("list", silent, err)
	if err != nil {
		if silent {
			s.logger.WithError(err).Warn("Silent media refresh failed, keeping stale data")
			return s.Records(), nil
		}
		s.logger.WithError(err).Error("Failed to fetch media")
		s.notifier.Notify(notify.LevelError, "Failed to fetch media")
		return nil, err
	}

	s.mu.Lock()
	s.records = records
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	s.metrics.SetCollectionSize(len(records))
	if s.snapshots != nil {
		if err := s.snapshots.SaveRecords(records); err != nil {
			s.logger.WithError(err).Warn("Failed to persist collection snapshot")
		}
	}

	return s.Records(), nil
}

// Stats fetches the aggregate statistics, with the same silent semantics as List
func (s *MediaStore) Stats(ctx context.Context, silent bool) (*models.AggregateStats, error) {
	if !s.auth.Active() {
		return nil, nil
	}
	if !silent {
		s.beginLoading()
		defer s.endLoading()
	}

	stats, err := s.client.GetStats(ctx)
	s.metrics.ObserveRefresh("stats", silent, err)
	if err != nil {
		if silent {
			s.logger.WithError(err).Warn("Silent stats refresh failed, keeping stale data")
			return s.CachedStats(), nil
		}
		s.logger.WithError(err).Error("Failed to fetch stats")
		s.notifier.Notify(notify.LevelError, "Failed to fetch stats")
		return nil, err
	}

	s.mu.Lock()
	s.stats = stats
	s.mu.Unlock()

	if s.snapshots != nil {
		if err := s.snapshots.SaveStats(stats); err != nil {
			s.logger.WithError(err).Warn("Failed to persist stats snapshot")
		}
	}

	return s.CachedStats(), nil
}

// Refresh reloads list and stats together, surfacing failures
func (s *MediaStore) Refresh(ctx context.Context) error {
	return s.refreshPair(ctx, false)
}

// RefreshSilent reloads list and stats together without loading state or notifications
func (s *MediaStore) RefreshSilent(ctx context.Context) {
	_ = s.refreshPair(ctx, true)
}

// refreshPair issues list and stats concurrently; one failing does not affect the other
func (s *MediaStore) refreshPair(ctx context.Context, silent bool) error {
	var (
		wg                sync.WaitGroup
		listErr, statsErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, listErr = s.List(ctx, silent)
	}()
	go func() {
		defer wg.Done()
		_, statsErr = s.Stats(ctx, silent)
	}()
	wg.Wait()
	return errors.Join(listErr, statsErr)
}

// Create persists a new record, then refreshes list and stats
func (s *MediaStore) Create(ctx context.Context, record models.WireRecord) (*models.MediaRecord, error) {
	if !s.auth.Active() {
		return nil, models.ErrNoSession
	}

	created, err := s.client.CreateMedia(ctx, record)
	s.metrics.ObserveMutation("create", err)
	if err != nil {
		s.logger.WithError(err).WithField("title", record.Title).Error("Failed to create media")
		s.notifier.Notify(notify.LevelError, failureMessage(err, "Failed to save media"))
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"id":    created.ID,
		"title": created.Title,
	}).Info("Media created")
	s.notifier.Notify(notify.LevelSuccess, "Media added successfully")
	s.refreshAfterMutation(ctx)
	return created, nil
}

// Update replaces a record, then refreshes list and stats
func (s *MediaStore) Update(ctx context.Context, id models.RecordID, record models.WireRecord) (*models.MediaRecord, error) {
	if !s.auth.Active() {
		return nil, models.ErrNoSession
	}

	updated, err := s.client.UpdateMedia(ctx, id, record)
	s.metrics.ObserveMutation("update", err)
	if err != nil {
		s.logger.WithError(err).WithField("id", id).Error("Failed to update media")
		s.notifier.Notify(notify.LevelError, failureMessage(err, "Failed to save media"))
		return nil, err
	}

	s.logger.WithField("id", id).Info("Media updated")
	s.notifier.Notify(notify.LevelSuccess, "Media updated successfully")
	s.refreshAfterMutation(ctx)
	return updated, nil
}

// Delete removes a record once confirm approves DeletePrompt, then refreshes list and stats.
// Declining is a no-op and reports false with a nil error.
func (s *MediaStore) Delete(ctx context.Context, id models.RecordID, confirm func(prompt string) bool) (bool, error) {
	if !s.auth.Active() {
		return false, models.ErrNoSession
	}
	if confirm == nil || !confirm(DeletePrompt) {
		s.logger.WithField("id", id).Debug("Delete declined")
		return false, nil
	}

	err := s.client.DeleteMedia(ctx, id)
	s.metrics.ObserveMutation("delete", err)
	if err != nil {
		s.logger.WithError(err).WithField("id", id).Error("Failed to delete media")
		s.notifier.Notify(notify.LevelError, "Failed to delete media")
		return false, err
	}

	s.logger.WithField("id", id).Info("Media deleted")
	s.notifier.Notify(notify.LevelSuccess, "Media deleted successfully")
	s.refreshAfterMutation(ctx)
	return true, nil
}

// ToggleSeen flips the seen flag of record, then silently refreshes the list
func (s *MediaStore) ToggleSeen(ctx context.Context, record models.MediaRecord) (*models.MediaRecord, error) {
	updated := record
	updated.Seen = !record.Seen
	return s.toggle(ctx, updated, "Updated successfully")
}

// ToggleBackup advances the backup status of record, then silently refreshes the list
func (s *MediaStore) ToggleBackup(ctx context.Context, record models.MediaRecord) (*models.MediaRecord, error) {
	updated := record
	updated.BackedUp = record.BackedUp.Next()
	return s.toggle(ctx, updated, "Backup status updated")
}

func (s *MediaStore) toggle(ctx context.Context, record models.MediaRecord, success string) (*models.MediaRecord, error) {
	if !s.auth.Active() {
		return nil, models.ErrNoSession
	}

	updated, err := s.client.UpdateMedia(ctx, record.ID, models.WireFromRecord(record))
	s.metrics.ObserveMutation("update", err)
	if err != nil {
		s.logger.WithError(err).WithField("id", record.ID).Error("Failed to toggle media")
		s.notifier.Notify(notify.LevelError, "Failed to update")
		return nil, err
	}

	_, _ = s.List(ctx, true)
	s.notifier.Notify(notify.LevelSuccess, success)
	return updated, nil
}

// refreshAfterMutation waits for the refresh delay, then silently refreshes list and stats
func (s *MediaStore) refreshAfterMutation(ctx context.Context) {
	if s.refreshDelay > 0 {
		timer := time.NewTimer(s.refreshDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return
		}
	}
	s.RefreshSilent(ctx)
}

func (s *MediaStore) beginLoading() {
	s.mu.Lock()
	s.loading++
	s.mu.Unlock()
}

func (s *MediaStore) endLoading() {
	s.mu.Lock()
	s.loading--
	s.mu.Unlock()
}

// filterQuery translates a filter into list query parameters. "all" dimensions are omitted.
func filterQuery(f models.Filter) url.Values {
	query := url.Values{}
	if !models.IsAll(f.MediaType) {
		query.Set("media_type", f.MediaType)
	}
	switch f.Seen {
	case models.SeenFilterSeen:
		query.Set("seen", "true")
	case models.SeenFilterUnseen:
		query.Set("seen", "false")
	}
	if !models.IsAll(f.BackedUp) {
		query.Set("backed_up", f.BackedUp)
	}
	if !models.IsAll(f.Quality) {
		query.Set("quality", f.Quality)
	}
	if search := strings.TrimSpace(f.SearchText); search != "" {
		query.Set("search", search)
	}
	return query
}

// failureMessage prefers the backend's own explanation of a failed request
func failureMessage(err error, fallback string) string {
	var apiErr *models.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}
