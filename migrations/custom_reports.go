package migrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// CreateCustomReportsTable creates the custom_reports table.
func CreateCustomReportsTable(db *sqlx.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS custom_reports (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			user_id TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			config TEXT NOT NULL,
			is_public BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create custom_reports table: %w", err)
	}
	return nil
}
