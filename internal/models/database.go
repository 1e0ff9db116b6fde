package models

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

const (
	sessionKey  = "current"
	snapshotKey = "collection"

	// openTimeout bounds the wait for another process holding the file lock
	openTimeout = 5 * time.Second
)

// Database holds local, non-authoritative state in a bolthold file.
// The file is opened for each operation only, so several processes (a running
// serve and a one-off login, say) can share it.
type Database struct {
	path string
	// serialises operations in this process; list and stats refreshes run concurrently
	mu sync.Mutex
}

// NewDatabase checks that the database file can be opened (or created)
func NewDatabase(path string) (*Database, error) {
	db := &Database{path: path}
	if err := db.with(func(*bolthold.Store) error { return nil }); err != nil {
		return nil, err
	}
	return db, nil
}

// with opens the store, runs fn and closes the store again
func (db *Database) with(fn func(store *bolthold.Store) error) (err error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	store, err := bolthold.Open(db.path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: openTimeout,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if cerr := store.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close database: %w", cerr)
		}
	}()

	return fn(store)
}

// Session operations

// SaveSession remembers a session across process restarts
func (db *Database) SaveSession(session *Session) error {
	stored := &StoredSession{
		Key:      sessionKey,
		Token:    session.Token,
		Username: session.Username,
		SavedAt:  time.Now(),
	}
	return db.with(func(store *bolthold.Store) error {
		return store.Upsert(sessionKey, stored)
	})
}

// LoadSession returns the remembered session, or nil when there is none
func (db *Database) LoadSession() (*Session, error) {
	var stored StoredSession
	err := db.with(func(store *bolthold.Store) error {
		return store.Get(sessionKey, &stored)
	})
	if errors.Is(err, bolthold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if stored.Token == "" {
		return nil, nil
	}
	return &Session{Token: stored.Token, Username: stored.Username}, nil
}

// ClearSession forgets the remembered session
func (db *Database) ClearSession() error {
	err := db.with(func(store *bolthold.Store) error {
		return store.Delete(sessionKey, &StoredSession{})
	})
	if errors.Is(err, bolthold.ErrNotFound) {
		return nil
	}
	return err
}

// Snapshot operations

// SaveRecords replaces the cached collection
func (db *Database) SaveRecords(records []MediaRecord) error {
	return db.with(func(store *bolthold.Store) error {
		snapshot, err := loadSnapshot(store)
		if err != nil {
			return err
		}
		snapshot.Records = records
		snapshot.FetchedAt = time.Now()
		return store.Upsert(snapshotKey, snapshot)
	})
}

// SaveStats replaces the cached stats
func (db *Database) SaveStats(stats *AggregateStats) error {
	return db.with(func(store *bolthold.Store) error {
		snapshot, err := loadSnapshot(store)
		if err != nil {
			return err
		}
		snapshot.Stats = stats
		snapshot.FetchedAt = time.Now()
		return store.Upsert(snapshotKey, snapshot)
	})
}

// LoadSnapshot returns the cached collection and stats, or nil when nothing was cached yet
func (db *Database) LoadSnapshot() (*Snapshot, error) {
	var snapshot Snapshot
	err := db.with(func(store *bolthold.Store) error {
		return store.Get(snapshotKey, &snapshot)
	})
	if errors.Is(err, bolthold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func loadSnapshot(store *bolthold.Store) (*Snapshot, error) {
	var snapshot Snapshot
	err := store.Get(snapshotKey, &snapshot)
	if errors.Is(err, bolthold.ErrNotFound) {
		return &Snapshot{Key: snapshotKey}, nil
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}
