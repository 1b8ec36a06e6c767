package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"skillboard/backend/models"
)

// SavedFilterInput is the editable part of a saved filter.
type SavedFilterInput struct {
	Name         string          `json:"name" validate:"notblank,max=100"`
	ResourceType string          `json:"resourceType" validate:"required"`
	Criteria     models.Criteria `json:"criteria"`
	IsDefault    bool            `json:"isDefault"`
}

// FilterService persists named criteria per user and resource. A user has at
// most one default filter per resource.
type FilterService struct {
	db        *sqlx.DB
	validator *Validator
}

// NewFilterService creates a saved filter service.
func NewFilterService(db *sqlx.DB, validator *Validator) *FilterService {
	if validator == nil {
		validator = NewValidator()
	}
	return &FilterService{db: db, validator: validator}
}

type savedFilterRow struct {
	models.SavedFilter
	CriteriaJSON string `db:"criteria"`
}

func (row savedFilterRow) decode() (*models.SavedFilter, error) {
	f := row.SavedFilter
	if err := json.Unmarshal([]byte(row.CriteriaJSON), &f.Criteria); err != nil {
		return nil, fmt.Errorf("failed to decode criteria of saved filter %s: %w", f.ID, err)
	}
	return &f, nil
}

const savedFilterColumns = `id, name, user_id, resource_type, criteria, is_default, created_at, updated_at`

func (s *FilterService) validate(in SavedFilterInput) error {
	if err := s.validator.Struct(in); err != nil {
		return err
	}
	schema, ok := models.LookupSchema(in.ResourceType)
	if !ok {
		return NewValidationError(errors.New("invalid saved filter"), models.FieldError{
			Field: "resourceType",
			Error: fmt.Sprintf("%s is not a known resource", in.ResourceType),
		})
	}
	return s.validator.Criteria(schema, in.Criteria)
}

// Create saves a new filter for userID.
func (s *FilterService) Create(ctx context.Context, userID string, in SavedFilterInput) (*models.SavedFilter, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	criteria, err := json.Marshal(in.Criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to encode criteria: %w", err)
	}

	now := time.Now().UTC()
	filter := &models.SavedFilter{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		UserID:       userID,
		ResourceType: in.ResourceType,
		Criteria:     in.Criteria,
		IsDefault:    in.IsDefault,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// If isDefault is true, unset other default filters for this user and resource type
	if filter.IsDefault {
		if err := clearDefault(ctx, tx, userID, filter.ResourceType, ""); err != nil {
			return nil, err
		}
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO saved_filters (`+savedFilterColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), filter.ID, filter.Name, filter.UserID, filter.ResourceType, string(criteria), filter.IsDefault, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert saved filter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit saved filter: %w", err)
	}
	return filter, nil
}

func clearDefault(ctx context.Context, tx *sqlx.Tx, userID, resourceType, exceptID string) error {
	_, err := tx.ExecContext(ctx, tx.Rebind(`
		UPDATE saved_filters
		SET is_default = ?
		WHERE user_id = ? AND resource_type = ? AND id != ?
	`), false, userID, resourceType, exceptID)
	if err != nil {
		return fmt.Errorf("failed to update existing default filters: %w", err)
	}
	return nil
}

// List returns the filters of userID, optionally restricted to one resource.
func (s *FilterService) List(ctx context.Context, userID, resourceType string) ([]models.SavedFilter, error) {
	query := `SELECT ` + savedFilterColumns + ` FROM saved_filters WHERE user_id = ?`
	args := []interface{}{userID}
	if resourceType != "" {
		query += ` AND resource_type = ?`
		args = append(args, resourceType)
	}
	query += ` ORDER BY resource_type, name, created_at`

	var rows []savedFilterRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query saved filters: %w", err)
	}

	filters := make([]models.SavedFilter, 0, len(rows))
	for _, row := range rows {
		f, err := row.decode()
		if err != nil {
			return nil, err
		}
		filters = append(filters, *f)
	}
	return filters, nil
}

func (s *FilterService) get(ctx context.Context, id string) (*models.SavedFilter, error) {
	var row savedFilterRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT `+savedFilterColumns+` FROM saved_filters WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query saved filter: %w", err)
	}
	return row.decode()
}

// Get returns a filter owned by userID.
func (s *FilterService) Get(ctx context.Context, id, userID string) (*models.SavedFilter, error) {
	f, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.UserID != userID {
		return nil, ErrForbidden
	}
	return f, nil
}

// Default returns the default filter of userID for a resource, or nil when none is set.
func (s *FilterService) Default(ctx context.Context, userID, resourceType string) (*models.SavedFilter, error) {
	var row savedFilterRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`
		SELECT `+savedFilterColumns+`
		FROM saved_filters
		WHERE user_id = ? AND resource_type = ? AND is_default = ?
	`), userID, resourceType, true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // No default filter found
		}
		return nil, fmt.Errorf("failed to query default filter: %w", err)
	}
	return row.decode()
}

// Update replaces the editable fields of a filter owned by userID. The
// resource of a filter cannot change.
func (s *FilterService) Update(ctx context.Context, id, userID string, in SavedFilterInput) (*models.SavedFilter, error) {
	filter, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if in.ResourceType == "" {
		in.ResourceType = filter.ResourceType
	}
	if in.ResourceType != filter.ResourceType {
		return nil, NewValidationError(errors.New("invalid saved filter"), models.FieldError{
			Field: "resourceType",
			Error: "resourceType of a saved filter cannot be changed",
		})
	}
	if err := s.validate(in); err != nil {
		return nil, err
	}

	criteria, err := json.Marshal(in.Criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to encode criteria: %w", err)
	}

	now := time.Now().UTC()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if in.IsDefault {
		if err := clearDefault(ctx, tx, userID, filter.ResourceType, id); err != nil {
			return nil, err
		}
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		UPDATE saved_filters
		SET name = ?, criteria = ?, is_default = ?, updated_at = ?
		WHERE id = ?
	`), strings.TrimSpace(in.Name), string(criteria), in.IsDefault, now, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update saved filter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit saved filter: %w", err)
	}

	filter.Name = strings.TrimSpace(in.Name)
	filter.Criteria = in.Criteria
	filter.IsDefault = in.IsDefault
	filter.UpdatedAt = now
	return filter, nil
}

// Delete removes a filter owned by userID.
func (s *FilterService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.Get(ctx, id, userID); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM saved_filters WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete saved filter: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Resolve returns the saved criteria a request builds on: the filter with
// savedID when given, else the user's default when useDefault is set, else none.
func (s *FilterService) Resolve(ctx context.Context, userID, resourceType, savedID string, useDefault bool) (models.Criteria, error) {
	var (
		f   *models.SavedFilter
		err error
	)
	switch {
	case savedID != "":
		f, err = s.Get(ctx, savedID, userID)
		if err != nil {
			return models.Criteria{}, err
		}
		if f.ResourceType != resourceType {
			return models.Criteria{}, NewValidationError(errors.New("invalid saved filter"), models.FieldError{
				Field: "savedFilter",
				Error: fmt.Sprintf("saved filter %s applies to %s, not %s", savedID, f.ResourceType, resourceType),
			})
		}
	case useDefault:
		f, err = s.Default(ctx, userID, resourceType)
		if err != nil {
			return models.Criteria{}, err
		}
	}

	if f == nil {
		return models.Criteria{}, nil
	}
	return f.Criteria, nil
}
