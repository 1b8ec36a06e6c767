package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"skillboard/backend/models"
)

const datasetExt = ".yaml"

// Dataset is the file form of a resource's demo records.
type Dataset struct {
	Resource string                   `yaml:"resource"`
	Records  []map[string]interface{} `yaml:"records"`
}

// DatasetStore serves records from a directory of YAML datasets, one
// <resource>.yaml file per resource. It is read-only.
type DatasetStore struct {
	dir       string
	validator *Validator
	logger    *slog.Logger
}

// NewDatasetStore creates a store over dir. Records are held to the same
// field rules as API writes.
func NewDatasetStore(dir string, logger *slog.Logger) *DatasetStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetStore{dir: dir, validator: NewValidator(), logger: logger}
}

// Dir returns the dataset directory.
func (d *DatasetStore) Dir() string {
	return d.dir
}

// Path returns the dataset file of a resource.
func (d *DatasetStore) Path(resource string) string {
	return filepath.Join(d.dir, resource+datasetExt)
}

// ResourceFor returns the resource a dataset file belongs to, or "" for other files.
func (d *DatasetStore) ResourceFor(path string) string {
	if filepath.Ext(path) != datasetExt {
		return ""
	}
	resource := strings.TrimSuffix(filepath.Base(path), datasetExt)
	if _, ok := models.LookupSchema(resource); !ok {
		return ""
	}
	return resource
}

// ReadDataset parses a dataset file.
func ReadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &ds, nil
}

// Raw returns the unvalidated records of a resource. A missing file is an empty dataset.
func (d *DatasetStore) Raw(resource string) ([]models.Record, error) {
	path := d.Path(resource)
	ds, err := ReadDataset(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Record{}, nil
		}
		return nil, err
	}
	if ds.Resource != "" && ds.Resource != resource {
		return nil, fmt.Errorf("%s declares resource %q, expected %q", path, ds.Resource, resource)
	}

	out := make([]models.Record, 0, len(ds.Records))
	for _, raw := range ds.Records {
		out = append(out, models.Record(raw))
	}
	return out, nil
}

// All returns the unvalidated records of every resource that has a dataset file.
func (d *DatasetStore) All() (map[string][]models.Record, error) {
	out := make(map[string][]models.Record)
	for _, schema := range models.Schemas() {
		if _, err := os.Stat(d.Path(schema.Resource)); err != nil {
			continue
		}
		rs, err := d.Raw(schema.Resource)
		if err != nil {
			return nil, err
		}
		out[schema.Resource] = rs
	}
	return out, nil
}

// List returns the records of a resource coerced to its schema. Invalid rows
// and rows repeating an earlier id are skipped. Rows without an id are numbered
// by position, avoiding every id the dataset declares.
func (d *DatasetStore) List(_ context.Context, schema *models.Schema) ([]models.Record, error) {
	raw, err := d.Raw(schema.Resource)
	if err != nil {
		return nil, err
	}

	taken := make(map[string]bool, len(raw))
	for _, r := range raw {
		if id := strings.TrimSpace(r.ID()); id != "" {
			taken[id] = true
		}
	}

	seen := make(map[string]bool, len(raw))
	out := make([]models.Record, 0, len(raw))
	for i, r := range raw {
		rec, err := d.validator.Record(schema, r)
		if err != nil {
			d.logger.Warn("skipping invalid dataset record", "resource", schema.Resource, "index", i, "error", err)
			continue
		}

		id := rec.ID()
		if id == "" {
			id = positionalID(schema.Resource, i, taken)
			rec[models.FieldID] = id
		}
		if seen[id] {
			d.logger.Warn("skipping dataset record with duplicate id", "resource", schema.Resource, "index", i, "id", id)
			continue
		}
		seen[id] = true
		out = append(out, rec)
	}
	return out, nil
}

// positionalID names the record at index i "<resource>-<i+1>", suffixed until
// it is not in taken, and reserves it.
func positionalID(resource string, i int, taken map[string]bool) string {
	base := resource + "-" + strconv.Itoa(i+1)
	id := base
	for n := 2; taken[id]; n++ {
		id = base + "-" + strconv.Itoa(n)
	}
	taken[id] = true
	return id
}

// Insert is not supported by datasets.
func (d *DatasetStore) Insert(context.Context, *models.Schema, models.Record) error {
	return ErrReadOnly
}

// Update is not supported by datasets.
func (d *DatasetStore) Update(context.Context, *models.Schema, models.Record) error {
	return ErrReadOnly
}

// Delete is not supported by datasets.
func (d *DatasetStore) Delete(context.Context, *models.Schema, string) error {
	return ErrReadOnly
}
