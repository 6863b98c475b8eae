package store

import (
	"database/sql"
	"time"
)

// EntitlementRepository answers pack-ownership checks from MySQL. The webhook
// side of billing flips the flag; the engine only ever reads it.
type EntitlementRepository struct {
	db *sql.DB
}

func NewEntitlementRepository(db *sql.DB) *EntitlementRepository {
	return &EntitlementRepository{db: db}
}

func (r *EntitlementRepository) HasInPersonPack(userID string) (bool, error) {
	var entitled bool
	query := `SELECT in_person_pack FROM entitlements WHERE user_id = ?`
	err := r.db.QueryRow(query, userID).Scan(&entitled)
	if err == sql.ErrNoRows {
		return false, nil // unknown user simply has no pack
	}
	if err != nil {
		return false, err
	}
	return entitled, nil
}

func (r *EntitlementRepository) SetInPersonPack(userID string, entitled bool) error {
	query := `INSERT INTO entitlements (user_id, in_person_pack, updated_at) VALUES (?, ?, ?)
	          ON DUPLICATE KEY UPDATE in_person_pack = VALUES(in_person_pack), updated_at = VALUES(updated_at)`
	_, err := r.db.Exec(query, userID, entitled, time.Now())
	return err
}
