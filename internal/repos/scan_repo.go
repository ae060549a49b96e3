package repos

import (
	"scanlane/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ScanRepo struct{ db *sqlx.DB }

func NewScanRepo(db *sqlx.DB) *ScanRepo { return &ScanRepo{db: db} }

// Append records one scan attempt. History is informational; failures here
// must not fail the scan itself, so callers log and move on.
func (r *ScanRepo) Append(userID, barcode, label string, ok bool) error {
	_, err := r.db.Exec(`
		INSERT INTO scan_history(user_id, barcode, label, ok, created_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, userID, barcode, label, ok)
	return err
}

func (r *ScanRepo) ListRecent(userID string, limit int) ([]domain.ScanHistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	out := []domain.ScanHistoryEntry{}
	err := r.db.Select(&out, `
		SELECT id, user_id, barcode, COALESCE(label,'') AS label, ok,
		       COALESCE(created_at,'') AS created_at
		FROM scan_history
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ?
	`, userID, limit)
	return out, err
}
