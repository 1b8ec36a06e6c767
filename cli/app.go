package cli

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"skillboard/backend/config"
	"skillboard/backend/database"
	"skillboard/backend/metrics"
	"skillboard/backend/migrations"
	"skillboard/backend/models"
	"skillboard/backend/records"
	"skillboard/backend/security"
	"skillboard/backend/services"
)

// openDatabase connects to the configured database and brings its schema up to date.
func (o *options) openDatabase() (*sqlx.DB, error) {
	db, err := database.Open(o.cfg.Database, o.logger)
	if err != nil {
		return nil, err
	}
	if err := migrations.RunMigrations(db, o.logger); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// repository returns the database record store, sealing sensitive fields
// when an encryption key is configured.
func (o *options) repository(db *sqlx.DB) (*database.RecordRepository, error) {
	cipher, err := security.NewCipher(o.cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	if !cipher.Enabled() {
		if o.cfg.IsProduction() {
			return nil, fmt.Errorf("encryptionKey is required in %s", config.EnvProduction)
		}
		o.logger.Warn("ENCRYPTION_KEY not set, sensitive fields are stored unsealed")
	}
	return database.NewRecordRepository(db, cipher), nil
}

// recordStore returns the configured source of dashboard records.
func (o *options) recordStore(db *sqlx.DB) (services.RecordStore, *services.DatasetStore, error) {
	if o.cfg.Source == config.SourceDatasets {
		datasets := services.NewDatasetStore(o.cfg.DatasetDir, o.logger)
		return datasets, datasets, nil
	}
	repo, err := o.repository(db)
	if err != nil {
		return nil, nil, err
	}
	return repo, nil, nil
}

// newRecordService builds the catalog of resource tables over store.
func (o *options) newRecordService(store services.RecordStore, m *metrics.Metrics) *services.RecordService {
	return services.NewRecordService(store, records.NewCatalog(models.Schemas()), services.NewValidator(), m, o.logger)
}
