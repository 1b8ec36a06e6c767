package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"skillboard/backend/models"
	"skillboard/backend/security"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// RecordRepository stores dashboard records as JSON documents in the records
// table, one row per record, in insertion order.
type RecordRepository struct {
	db     *sqlx.DB
	cipher *security.Cipher
}

// NewRecordRepository creates a repository. Sensitive fields are sealed with
// cipher when it has a key and stored as given otherwise.
func NewRecordRepository(db *sqlx.DB, cipher *security.Cipher) *RecordRepository {
	return &RecordRepository{db: db, cipher: cipher}
}

type recordRow struct {
	ID   string `db:"id"`
	Data string `db:"data"`
}

// List returns every record of the schema's resource in insertion order.
func (r *RecordRepository) List(ctx context.Context, schema *models.Schema) ([]models.Record, error) {
	var rows []recordRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT id, data
		FROM records
		WHERE resource_type = ?
		ORDER BY seq
	`), schema.Resource)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s records: %w", schema.Resource, err)
	}

	out := make([]models.Record, 0, len(rows))
	for _, row := range rows {
		rec := models.Record{}
		if err := json.Unmarshal([]byte(row.Data), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode %s record %s: %w", schema.Resource, row.ID, err)
		}
		if err := r.open(schema, rec); err != nil {
			return nil, fmt.Errorf("failed to open %s record %s: %w", schema.Resource, row.ID, err)
		}
		rec[models.FieldID] = row.ID
		out = append(out, rec)
	}
	return out, nil
}

// Insert appends a record. The record must carry an id.
func (r *RecordRepository) Insert(ctx context.Context, schema *models.Schema, rec models.Record) error {
	return r.insert(ctx, r.db, schema, rec)
}

// InsertAll appends records in one transaction: either every record is stored
// or none is.
func (r *RecordRepository) InsertAll(ctx context.Context, schema *models.Schema, rs []models.Record) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range rs {
		if err := r.insert(ctx, tx, schema, rec); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s records: %w", schema.Resource, err)
	}
	return nil
}

func (r *RecordRepository) insert(ctx context.Context, ext sqlx.ExtContext, schema *models.Schema, rec models.Record) error {
	id := rec.ID()
	if id == "" {
		return errors.New("record has no id")
	}

	data, err := r.encode(schema, rec)
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = ext.ExecContext(ctx, ext.Rebind(`
		INSERT INTO records (resource_type, id, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`), schema.Resource, id, data, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert %s record %s: %w", schema.Resource, id, err)
	}
	return nil
}

// Update replaces the stored document of an existing record.
func (r *RecordRepository) Update(ctx context.Context, schema *models.Schema, rec models.Record) error {
	data, err := r.encode(schema, rec)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE records
		SET data = ?, updated_at = ?
		WHERE resource_type = ? AND id = ?
	`), data, time.Now(), schema.Resource, rec.ID())
	if err != nil {
		return fmt.Errorf("failed to update %s record: %w", schema.Resource, err)
	}
	return expectOne(result.RowsAffected())
}

// Delete removes a record.
func (r *RecordRepository) Delete(ctx context.Context, schema *models.Schema, id string) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		DELETE FROM records
		WHERE resource_type = ? AND id = ?
	`), schema.Resource, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s record: %w", schema.Resource, err)
	}
	return expectOne(result.RowsAffected())
}

// Count returns the number of stored records of a resource.
func (r *RecordRepository) Count(ctx context.Context, resource string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, r.db.Rebind(`SELECT COUNT(*) FROM records WHERE resource_type = ?`), resource)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s records: %w", resource, err)
	}
	return count, nil
}

func expectOne(rowsAffected int64, err error) error {
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// encode seals the sensitive fields of a copy of rec and marshals it.
func (r *RecordRepository) encode(schema *models.Schema, rec models.Record) (string, error) {
	doc := rec.Clone()
	delete(doc, models.FieldID)

	if r.cipher.Enabled() {
		for _, field := range schema.SensitiveFields() {
			value, ok := doc[field].(string)
			if !ok || value == "" || security.IsSealed(value) {
				continue
			}
			sealed, err := r.cipher.Seal(value)
			if err != nil {
				return "", fmt.Errorf("failed to seal %s: %w", field, err)
			}
			doc[field] = sealed
		}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode record: %w", err)
	}
	return string(data), nil
}

// open replaces sealed sensitive fields with their plaintext.
func (r *RecordRepository) open(schema *models.Schema, rec models.Record) error {
	for _, field := range schema.SensitiveFields() {
		value, ok := rec[field].(string)
		if !ok {
			continue
		}
		plain, err := r.cipher.Open(value)
		if err != nil {
			return fmt.Errorf("field %s: %w", field, err)
		}
		rec[field] = plain
	}
	return nil
}
