// Package store persists sessions, timelines and entitlements. The engine
// talks to the Store interface only; MySQL backs the server deployment and
// the in-memory implementation backs tests and the offline CLI.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"dealcoach/pkg/flow"
)

// Store is the persistence collaborator: session snapshots in, session
// snapshots out. The engine does not know or care what is behind it.
type Store interface {
	SaveSession(snap flow.Snapshot) error
	LoadSession(id string) (flow.Snapshot, error)
	DeleteSession(id string) error
}

// EntitlementStore answers the one question billing ever gets asked.
type EntitlementStore interface {
	HasInPersonPack(userID string) (bool, error)
	SetInPersonPack(userID string, entitled bool) error
}

// ErrNotFound reports a missing session.
var ErrNotFound = fmt.Errorf("session not found")

// Open connects to MySQL and verifies the connection.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}
