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

// CustomReportInput is the editable part of a custom report.
type CustomReportInput struct {
	Name        string              `json:"name" validate:"notblank,max=100"`
	Description string              `json:"description" validate:"max=500"`
	Config      models.ReportConfig `json:"config"`
	IsPublic    bool                `json:"isPublic"`
}

// ReportService persists aggregate definitions and runs them against the live tables.
type ReportService struct {
	db      *sqlx.DB
	records *RecordService
}

// NewReportService creates a custom report service.
func NewReportService(db *sqlx.DB, records *RecordService) *ReportService {
	return &ReportService{db: db, records: records}
}

type customReportRow struct {
	models.CustomReport
	ConfigJSON string `db:"config"`
}

func (row customReportRow) decode() (*models.CustomReport, error) {
	r := row.CustomReport
	if err := json.Unmarshal([]byte(row.ConfigJSON), &r.Config); err != nil {
		return nil, fmt.Errorf("failed to decode config of custom report %s: %w", r.ID, err)
	}
	return &r, nil
}

const customReportColumns = `id, name, user_id, description, config, is_public, created_at, updated_at`

func (s *ReportService) validate(in *CustomReportInput) error {
	v := s.records.Validator()
	if err := v.Struct(*in); err != nil {
		return err
	}

	cfg := &in.Config
	schema, ok := models.LookupSchema(cfg.Resource)
	if !ok {
		return NewValidationError(errors.New("invalid report"), models.FieldError{
			Field: "config.resource",
			Error: fmt.Sprintf("%s is not a known resource", cfg.Resource),
		})
	}
	if err := v.GroupBy(schema, cfg.GroupBy); err != nil {
		return err
	}

	cfg.Scope = strings.ToLower(strings.TrimSpace(cfg.Scope))
	switch cfg.Scope {
	case "":
		cfg.Scope = models.ScopeAll
	case models.ScopeAll, models.ScopeFiltered:
	default:
		return NewValidationError(errors.New("invalid report"), models.FieldError{
			Field: "config.scope",
			Error: "scope must be one of [all filtered]",
		})
	}

	return v.Criteria(schema, cfg.Criteria)
}

// Create saves a new report owned by userID.
func (s *ReportService) Create(ctx context.Context, userID string, in CustomReportInput) (*models.CustomReport, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}

	config, err := json.Marshal(in.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report config: %w", err)
	}

	now := time.Now().UTC()
	report := &models.CustomReport{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		UserID:      userID,
		Description: in.Description,
		Config:      in.Config,
		IsPublic:    in.IsPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err = s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO custom_reports (`+customReportColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), report.ID, report.Name, report.UserID, report.Description, string(config), report.IsPublic, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert custom report: %w", err)
	}
	return report, nil
}

func (s *ReportService) get(ctx context.Context, id string) (*models.CustomReport, error) {
	var row customReportRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT `+customReportColumns+` FROM custom_reports WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query custom report: %w", err)
	}
	return row.decode()
}

// Get returns a report userID may read: their own or a public one.
func (s *ReportService) Get(ctx context.Context, id, userID string) (*models.CustomReport, error) {
	r, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID && !r.IsPublic {
		return nil, ErrForbidden
	}
	return r, nil
}

func (s *ReportService) owned(ctx context.Context, id, userID string) (*models.CustomReport, error) {
	r, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, ErrForbidden
	}
	return r, nil
}

// List returns the reports accessible to userID: their own and every public one.
func (s *ReportService) List(ctx context.Context, userID string) ([]models.CustomReport, error) {
	var rows []customReportRow
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(`
		SELECT `+customReportColumns+`
		FROM custom_reports
		WHERE user_id = ? OR is_public = ?
		ORDER BY name, created_at
	`), userID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to query custom reports: %w", err)
	}

	reports := make([]models.CustomReport, 0, len(rows))
	for _, row := range rows {
		r, err := row.decode()
		if err != nil {
			return nil, err
		}
		reports = append(reports, *r)
	}
	return reports, nil
}

// Update replaces a report owned by userID.
func (s *ReportService) Update(ctx context.Context, id, userID string, in CustomReportInput) (*models.CustomReport, error) {
	report, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(&in); err != nil {
		return nil, err
	}

	config, err := json.Marshal(in.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report config: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE custom_reports
		SET name = ?, description = ?, config = ?, is_public = ?, updated_at = ?
		WHERE id = ?
	`), strings.TrimSpace(in.Name), in.Description, string(config), in.IsPublic, now, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update custom report: %w", err)
	}

	report.Name = strings.TrimSpace(in.Name)
	report.Description = in.Description
	report.Config = in.Config
	report.IsPublic = in.IsPublic
	report.UpdatedAt = now
	return report, nil
}

// Delete removes a report owned by userID.
func (s *ReportService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.owned(ctx, id, userID); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM custom_reports WHERE id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete custom report: %w", err)
	}
	return nil
}

// Run computes a report against the current contents of its resource table.
func (s *ReportService) Run(ctx context.Context, id, userID string) (*models.ReportResult, error) {
	report, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	cfg := report.Config
	summary, selection, state, err := s.records.Summarize(cfg.Resource, cfg.GroupBy, cfg.Scope, cfg.Criteria)
	if err != nil {
		return nil, err
	}

	return &models.ReportResult{
		Report:    report,
		State:     state,
		Summary:   summary,
		Selection: selection,
	}, nil
}
