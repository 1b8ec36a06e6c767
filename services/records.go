package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"skillboard/backend/metrics"
	"skillboard/backend/models"
	"skillboard/backend/records"
)

// RecordStore is the source records are loaded from and edits are submitted to.
type RecordStore interface {
	List(ctx context.Context, schema *models.Schema) ([]models.Record, error)
	Insert(ctx context.Context, schema *models.Schema, rec models.Record) error
	Update(ctx context.Context, schema *models.Schema, rec models.Record) error
	Delete(ctx context.Context, schema *models.Schema, id string) error
}

// RecordService keeps the in-memory tables of the catalog in step with the
// record store. Edits are validated, submitted to the store, and applied to the
// table only once the store accepted them.
type RecordService struct {
	store     RecordStore
	catalog   *records.Catalog
	validator *Validator
	metrics   *metrics.Metrics
	logger    *slog.Logger

	writeMu sync.Mutex
}

// NewRecordService creates a record service. m may be nil.
func NewRecordService(store RecordStore, catalog *records.Catalog, validator *Validator, m *metrics.Metrics, logger *slog.Logger) *RecordService {
	if logger == nil {
		logger = slog.Default()
	}
	if validator == nil {
		validator = NewValidator()
	}
	return &RecordService{
		store:     store,
		catalog:   catalog,
		validator: validator,
		metrics:   m,
		logger:    logger,
	}
}

// Catalog returns the tables the service maintains.
func (s *RecordService) Catalog() *records.Catalog {
	return s.catalog
}

// Validator returns the validator used for payloads and criteria.
func (s *RecordService) Validator() *Validator {
	return s.validator
}

// Schema returns the schema of a resource.
func (s *RecordService) Schema(resource string) (*models.Schema, error) {
	t, err := s.table(resource)
	if err != nil {
		return nil, err
	}
	return t.Schema(), nil
}

func (s *RecordService) table(resource string) (*records.Table, error) {
	t, ok := s.catalog.Table(resource)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownResource, resource)
	}
	return t, nil
}

// Reload replaces the table of a resource with the store's current contents.
// A failed load puts the table in the error state. Edits wait for a reload in
// progress, so a snapshot never overwrites a write the store accepted after it.
func (s *RecordService) Reload(ctx context.Context, resource string) error {
	t, err := s.table(resource)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	rs, err := s.store.List(ctx, t.Schema())
	s.metrics.ObserveReload(resource, err)
	if err != nil {
		t.Fail(err)
		s.logger.Error("failed to load records", "resource", resource, "error", err)
		return fmt.Errorf("failed to load %s: %w", resource, err)
	}

	t.Load(rs)
	s.metrics.SetRecords(resource, len(rs))
	s.logger.Debug("loaded records", "resource", resource, "count", len(rs))
	return nil
}

// ReloadAll reloads every table and returns the combined errors.
func (s *RecordService) ReloadAll(ctx context.Context) error {
	var errs []error
	for _, resource := range s.catalog.Resources() {
		if err := s.Reload(ctx, resource); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Get returns one record.
func (s *RecordService) Get(resource, id string) (models.Record, error) {
	t, err := s.table(resource)
	if err != nil {
		return nil, err
	}
	rec, ok := t.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

// Create validates a payload and adds it as a new record. A record without an
// id is assigned one.
func (s *RecordService) Create(ctx context.Context, resource string, payload models.Record) (models.Record, error) {
	t, err := s.table(resource)
	if err != nil {
		return nil, err
	}

	rec, err := s.validator.Record(t.Schema(), payload)
	if err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	id := rec.ID()
	if id == "" {
		id = uuid.NewString()
		rec[models.FieldID] = id
	} else if _, exists := t.Get(id); exists {
		return nil, NewValidationError(errors.New("duplicate id"), models.FieldError{
			Field: models.FieldID,
			Error: fmt.Sprintf("a %s record with id %s already exists", resource, id),
		})
	}

	if err := s.store.Insert(ctx, t.Schema(), rec); err != nil {
		return nil, err
	}

	t.Upsert(rec)
	s.metrics.SetRecords(resource, t.Len())
	s.logger.Info("record created", "resource", resource, "id", id)
	return rec.Clone(), nil
}

// Update replaces an existing record with a validated payload.
func (s *RecordService) Update(ctx context.Context, resource, id string, payload models.Record) (models.Record, error) {
	t, err := s.table(resource)
	if err != nil {
		return nil, err
	}

	payload = payload.Clone()
	if payload == nil {
		payload = models.Record{}
	}
	payload[models.FieldID] = id

	rec, err := s.validator.Record(t.Schema(), payload)
	if err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, exists := t.Get(id); !exists {
		return nil, ErrNotFound
	}

	if err := s.store.Update(ctx, t.Schema(), rec); err != nil {
		return nil, err
	}

	t.Upsert(rec)
	s.logger.Info("record updated", "resource", resource, "id", id)
	return rec.Clone(), nil
}

// Delete removes a record.
func (s *RecordService) Delete(ctx context.Context, resource, id string) error {
	t, err := s.table(resource)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, exists := t.Get(id); !exists {
		return ErrNotFound
	}

	if err := s.store.Delete(ctx, t.Schema(), id); err != nil {
		return err
	}

	t.Remove(id)
	s.metrics.SetRecords(resource, t.Len())
	s.logger.Info("record deleted", "resource", resource, "id", id)
	return nil
}

// View returns a page of the records of resource matching c.
func (s *RecordService) View(resource string, c models.Criteria, page models.Page) (models.FilteredView, error) {
	t, err := s.table(resource)
	if err != nil {
		return models.FilteredView{}, err
	}
	if err := s.validator.Criteria(t.Schema(), c); err != nil {
		return models.FilteredView{}, err
	}
	if page.Offset < 0 || page.Limit < 0 {
		return models.FilteredView{}, NewValidationError(errors.New("invalid page"),
			models.FieldError{Field: "page", Error: "offset and limit must not be negative"})
	}

	view := t.View(c, page)
	s.metrics.ObserveFilter(resource, view.Matched)
	return view, nil
}

// Filter returns every record of resource matching c, for export.
func (s *RecordService) Filter(resource string, c models.Criteria) ([]models.Record, *models.Schema, error) {
	t, err := s.table(resource)
	if err != nil {
		return nil, nil, err
	}
	if err := s.validator.Criteria(t.Schema(), c); err != nil {
		return nil, nil, err
	}

	view, _, _, _ := t.Filter(c)
	s.metrics.ObserveFilter(resource, len(view))
	return view, t.Schema(), nil
}

// Summarize counts the records of resource by field, over the whole table or
// over the records matching c.
func (s *RecordService) Summarize(resource, by, scope string, c models.Criteria) (models.Summary, models.Selection, models.ViewState, error) {
	t, err := s.table(resource)
	if err != nil {
		return models.Summary{}, models.Selection{}, "", err
	}

	schema := t.Schema()
	if err := s.validator.GroupBy(schema, by); err != nil {
		return models.Summary{}, models.Selection{}, "", err
	}
	if err := s.validator.Criteria(schema, c); err != nil {
		return models.Summary{}, models.Selection{}, "", err
	}

	scope = strings.ToLower(strings.TrimSpace(scope))
	switch scope {
	case "":
		scope = models.ScopeAll
	case models.ScopeAll, models.ScopeFiltered:
	default:
		return models.Summary{}, models.Selection{}, "", NewValidationError(errors.New("invalid scope"),
			models.FieldError{Field: "scope", Error: "scope must be one of [all filtered]"})
	}

	summary, selection, state := t.Summarize(by, scope, c)
	s.metrics.ObserveFilter(resource, selection.Matched)
	return summary, selection, state, nil
}

// Options returns the values a filter dropdown offers for field: the declared
// options when the schema lists them, the distinct values present otherwise.
func (s *RecordService) Options(resource, field string) ([]string, error) {
	t, err := s.table(resource)
	if err != nil {
		return nil, err
	}

	f, ok := t.Schema().Field(field)
	if !ok || !f.Filterable {
		return nil, NewValidationError(errors.New("invalid field"), models.FieldError{
			Field: field,
			Error: fmt.Sprintf("%s is not a filterable field of %s", field, resource),
		})
	}

	if len(f.Options) > 0 {
		out := make([]string, len(f.Options))
		copy(out, f.Options)
		return out, nil
	}
	return t.Options(field), nil
}
