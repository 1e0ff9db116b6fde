package controllers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/amaumene/cinematheque/internal/models"
	"github.com/amaumene/cinematheque/internal/normalize"
	"github.com/amaumene/cinematheque/internal/notify"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrSessionClosed is returned by an edit session after submit or cancel
var ErrSessionClosed = errors.New("edit session closed")

// RecordSink persists normalized records
type RecordSink interface {
	Create(ctx context.Context, record models.WireRecord) (*models.MediaRecord, error)
	Update(ctx context.Context, id models.RecordID, record models.WireRecord) (*models.MediaRecord, error)
}

// EditSession owns one draft from the start of an add or edit until it is submitted or cancelled.
// The draft is never shared. The importer is the one passed in and closing the session resets it,
// so sessions open at the same time need importers of their own.
type EditSession struct {
	id       string
	recordID models.RecordID
	sink     RecordSink
	importer *Importer
	notifier notify.Notifier
	logger   *logrus.Logger

	mu     sync.Mutex
	draft  models.Draft
	closed bool
}

// NewAddSession starts editing a new, empty record
func NewAddSession(sink RecordSink, importer *Importer, notifier notify.Notifier, logger *logrus.Logger) *EditSession {
	return newEditSession("", models.NewDraft(), sink, importer, notifier, logger)
}

// NewEditSession starts editing an existing record
func NewEditSession(record models.MediaRecord, sink RecordSink, importer *Importer, notifier notify.Notifier, logger *logrus.Logger) *EditSession {
	return newEditSession(record.ID, models.DraftFromRecord(record), sink, importer, notifier, logger)
}

func newEditSession(recordID models.RecordID, draft models.Draft, sink RecordSink, importer *Importer,
	notifier notify.Notifier, logger *logrus.Logger) *EditSession {
	return &EditSession{
		id:       uuid.NewString(),
		recordID: recordID,
		sink:     sink,
		importer: importer,
		notifier: notifier,
		logger:   logger,
		draft:    draft,
	}
}

// ID identifies the session
func (s *EditSession) ID() string {
	return s.id
}

// IsEdit reports whether the session edits an existing record
func (s *EditSession) IsEdit() bool {
	return s.recordID != ""
}

// Closed reports whether the session was submitted or cancelled
func (s *EditSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Draft returns a copy of the current draft
func (s *EditSession) Draft() models.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

// UpdateDraft replaces the draft with fn applied to a copy of it
func (s *EditSession) UpdateDraft(fn func(models.Draft) models.Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.draft = fn(s.draft.Clone())
}

// Edit applies a user change to the draft
func (s *EditSession) Edit(fn func(d *models.Draft)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	d := s.draft.Clone()
	fn(&d)
	s.draft = d
	return nil
}

// Search queries the provider for term, or for the draft title when term is blank
func (s *EditSession) Search(ctx context.Context, term string) ([]models.SearchResult, error) {
	if s.Closed() {
		return nil, ErrSessionClosed
	}
	draft := s.Draft()
	if strings.TrimSpace(term) == "" {
		term = draft.Title
	}
	return s.importer.Search(ctx, term, draft.MediaType)
}

// Select imports the details of result into the draft
func (s *EditSession) Select(ctx context.Context, result models.SearchResult) error {
	if s.Closed() {
		return ErrSessionClosed
	}
	return s.importer.SelectResult(ctx, result, s)
}

// Submit validates, normalizes and persists the draft. The session closes on success;
// on failure it stays open so that the user can retry.
func (s *EditSession) Submit(ctx context.Context) (*models.MediaRecord, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	draft := s.draft.Clone()
	s.mu.Unlock()

	if !draft.HasTitle() {
		s.notifier.Notify(notify.LevelError, "Please enter a title")
		return nil, fmt.Errorf("%w: title is required", models.ErrValidation)
	}

	record := normalize.Normalize(draft)

	var (
		saved *models.MediaRecord
		err   error
	)
	if s.IsEdit() {
		saved, err = s.sink.Update(ctx, s.recordID, record)
	} else {
		saved, err = s.sink.Create(ctx, record)
	}
	if err != nil {
		return nil, err
	}

	s.close()
	s.logger.WithFields(logrus.Fields{
		"session": s.id,
		"title":   record.Title,
	}).Debug("Edit session submitted")
	return saved, nil
}

// Cancel discards the draft
func (s *EditSession) Cancel() {
	s.close()
	s.logger.WithField("session", s.id).Debug("Edit session cancelled")
}

func (s *EditSession) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.importer.Reset()
}
