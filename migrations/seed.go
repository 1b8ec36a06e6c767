package migrations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"skillboard/backend/models"
)

// ErrSeedInProduction is returned when seeding is attempted in production.
var ErrSeedInProduction = errors.New("refusing to seed demo records in production environment")

// RecordSeeder is the part of a record store seeding writes through.
type RecordSeeder interface {
	Count(ctx context.Context, resource string) (int, error)
	InsertAll(ctx context.Context, schema *models.Schema, rs []models.Record) error
}

// RecordValidator normalizes a payload and applies its schema's field rules.
type RecordValidator interface {
	Record(schema *models.Schema, payload models.Record) (models.Record, error)
}

// SeedRecords loads demo datasets into resources that have no records yet.
// Records failing validation and repeated ids are skipped; each resource is
// written in one batch. It returns the number of records written.
func SeedRecords(ctx context.Context, store RecordSeeder, validator RecordValidator, datasets map[string][]models.Record, production bool, logger *slog.Logger) (int, error) {
	// We should NEVER run this in production
	if production {
		return 0, ErrSeedInProduction
	}
	if logger == nil {
		logger = slog.Default()
	}

	resources := make([]string, 0, len(datasets))
	for resource := range datasets {
		resources = append(resources, resource)
	}
	sort.Strings(resources)

	seeded := 0
	for _, resource := range resources {
		schema, ok := models.LookupSchema(resource)
		if !ok {
			logger.Warn("skipping dataset for unknown resource", "resource", resource)
			continue
		}

		count, err := store.Count(ctx, resource)
		if err != nil {
			return seeded, err
		}
		if count > 0 {
			logger.Info("skipping seeding, resource already has records", "resource", resource, "count", count)
			continue
		}

		batch := make([]models.Record, 0, len(datasets[resource]))
		seen := make(map[string]bool, len(datasets[resource]))
		for i, raw := range datasets[resource] {
			rec, err := validator.Record(schema, raw)
			if err != nil {
				logger.Warn("skipping invalid demo record", "resource", resource, "index", i, "error", err)
				continue
			}
			id := rec.ID()
			if id == "" {
				id = uuid.NewString()
				rec[models.FieldID] = id
			}
			if seen[id] {
				logger.Warn("skipping demo record with duplicate id", "resource", resource, "index", i, "id", id)
				continue
			}
			seen[id] = true
			batch = append(batch, rec)
		}

		if err := store.InsertAll(ctx, schema, batch); err != nil {
			return seeded, fmt.Errorf("failed to seed %s: %w", resource, err)
		}
		seeded += len(batch)
		logger.Info("seeded demo records", "resource", resource, "count", len(batch))
	}

	return seeded, nil
}
