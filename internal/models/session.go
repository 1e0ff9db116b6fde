package models

import "time"

// Session is an authenticated user session
type Session struct {
	Token    string
	Username string
}

// StoredSession is a remembered session persisted in the local database
type StoredSession struct {
	Key      string `boltholdKey:"Key"`
	Token    string
	Username string
	SavedAt  time.Time
}

// Snapshot is the last collection and stats fetched from the backend.
// It is a cache of server state and never authoritative.
type Snapshot struct {
	Key       string `boltholdKey:"Key"`
	Records   []MediaRecord
	Stats     *AggregateStats
	FetchedAt time.Time
}
