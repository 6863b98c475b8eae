package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"dealcoach/pkg/deal"
	"dealcoach/pkg/flow"
)

// SessionRepository persists session snapshots in MySQL. The numeric state is
// stored as one JSON document; timeline entries additionally get their own
// rows so the negotiation history is queryable without unpacking JSON.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) SaveSession(snap flow.Snapshot) error {
	stateJSON, err := json.Marshal(snap.State)
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}

	query := `INSERT INTO sessions (id, step, state, saved_at) VALUES (?, ?, ?, ?)
	          ON DUPLICATE KEY UPDATE step = VALUES(step), state = VALUES(state), saved_at = VALUES(saved_at)`
	if _, err := r.db.Exec(query, snap.ID, int(snap.Step), stateJSON, snap.SavedAt); err != nil {
		return err
	}

	// Timeline entries are append-only and keyed by ULID, so re-saving a
	// session only inserts the new tail.
	for _, e := range snap.State.Timeline {
		_, err := r.db.Exec(
			`INSERT IGNORE INTO timeline_entries (id, session_id, at, actor, label, details) VALUES (?, ?, ?, ?, ?, ?)`,
			e.ID, snap.ID, e.At, string(e.Actor), e.Label, e.Details)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *SessionRepository) LoadSession(id string) (flow.Snapshot, error) {
	var snap flow.Snapshot
	var stateJSON []byte
	var step int

	query := `SELECT id, step, state, saved_at FROM sessions WHERE id = ?`
	err := r.db.QueryRow(query, id).Scan(&snap.ID, &step, &stateJSON, &snap.SavedAt)
	if err == sql.ErrNoRows {
		return flow.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return flow.Snapshot{}, err
	}
	snap.Step = flow.Step(step)
	if err := json.Unmarshal(stateJSON, &snap.State); err != nil {
		return flow.Snapshot{}, fmt.Errorf("failed to unmarshal session state: %w", err)
	}
	return snap, nil
}

func (r *SessionRepository) DeleteSession(id string) error {
	if _, err := r.db.Exec(`DELETE FROM timeline_entries WHERE session_id = ?`, id); err != nil {
		return err
	}
	_, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	return err
}

// ListTimeline returns a session's timeline in insertion order.
func (r *SessionRepository) ListTimeline(sessionID string) ([]deal.TimelineEntry, error) {
	rows, err := r.db.Query(
		`SELECT id, at, actor, label, details FROM timeline_entries WHERE session_id = ? ORDER BY at ASC, id ASC`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []deal.TimelineEntry
	for rows.Next() {
		var e deal.TimelineEntry
		var actor string
		var details sql.NullString
		if err := rows.Scan(&e.ID, &e.At, &actor, &e.Label, &details); err != nil {
			return nil, err
		}
		e.Actor = deal.Actor(actor)
		if details.Valid {
			e.Details = details.String
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
