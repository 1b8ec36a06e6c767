package migrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// CreateRecordsTable creates the table holding dashboard records as JSON documents.
// seq keeps insertion order, which is the order views are returned in.
func CreateRecordsTable(db *sqlx.DB) error {
	_, err := db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS records (
			seq %s,
			resource_type TEXT NOT NULL,
			id TEXT NOT NULL,
			data TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			UNIQUE (resource_type, id)
		)
	`, serialKey(db)))
	if err != nil {
		return fmt.Errorf("failed to create records table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_records_resource ON records (resource_type, seq)`)
	if err != nil {
		return fmt.Errorf("failed to create records index: %w", err)
	}

	return nil
}
