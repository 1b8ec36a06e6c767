package migrations

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

type migration struct {
	name string
	fn   func(*sqlx.DB) error
}

// Add all migrations here in order
var migrations = []migration{
	{"create_records_table", CreateRecordsTable},
	{"create_saved_filters_table", CreateSavedFiltersTable},
	{"create_custom_reports_table", CreateCustomReportsTable},
}

// RunMigrations executes all migrations in the correct order. Applied
// migrations are recorded by name and skipped on later runs.
func RunMigrations(db *sqlx.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("running migrations", "driver", db.DriverName())

	// Create migrations table if it doesn't exist
	_, err := db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS migrations (
			id %s,
			name TEXT NOT NULL UNIQUE,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`, serialKey(db)))
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	// Run each migration if it hasn't been applied yet
	for _, m := range migrations {
		var count int
		err := db.Get(&count, db.Rebind("SELECT COUNT(*) FROM migrations WHERE name = ?"), m.name)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}

		if count > 0 {
			logger.Debug("skipping already applied migration", "migration", m.name)
			continue
		}

		logger.Info("applying migration", "migration", m.name)
		if err := m.fn(db); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.name, err)
		}

		if _, err := db.Exec(db.Rebind("INSERT INTO migrations (name) VALUES (?)"), m.name); err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}
	}

	logger.Info("all migrations completed successfully")
	return nil
}

// Applied returns the names of the recorded migrations in the order they ran.
func Applied(db *sqlx.DB) ([]string, error) {
	var names []string
	if err := db.Select(&names, "SELECT name FROM migrations ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	return names, nil
}

func isPostgres(db *sqlx.DB) bool {
	return db.DriverName() == "postgres"
}

// serialKey is an auto-incrementing integer primary key column type.
func serialKey(db *sqlx.DB) string {
	if isPostgres(db) {
		return "BIGSERIAL PRIMARY KEY"
	}
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}
