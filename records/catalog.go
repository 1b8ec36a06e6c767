package records

import (
	"sort"

	"skillboard/backend/models"
)

// Catalog owns one Table per dashboard resource. The set of tables is fixed at
// construction; only their contents change.
type Catalog struct {
	tables map[string]*Table
}

// NewCatalog creates a loading table for every schema.
func NewCatalog(schemas []*models.Schema) *Catalog {
	c := &Catalog{tables: make(map[string]*Table, len(schemas))}
	for _, s := range schemas {
		c.tables[s.Resource] = NewTable(s)
	}
	return c
}

// Table returns the table of a resource.
func (c *Catalog) Table(resource string) (*Table, bool) {
	t, ok := c.tables[resource]
	return t, ok
}

// Resources returns the resource names in sorted order.
func (c *Catalog) Resources() []string {
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
