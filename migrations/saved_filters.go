package migrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// CreateSavedFiltersTable creates the saved_filters table.
func CreateSavedFiltersTable(db *sqlx.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS saved_filters (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			user_id TEXT NOT NULL,
			resource_type TEXT NOT NULL,
			criteria TEXT NOT NULL,
			is_default BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create saved_filters table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_saved_filters_owner ON saved_filters (user_id, resource_type)`)
	if err != nil {
		return fmt.Errorf("failed to create saved_filters index: %w", err)
	}

	return nil
}
