package records

import (
	"encoding/csv"
	"io"

	"skillboard/backend/models"
)

// WriteCSV writes rs under a header row of the schema's columns. Absent
// fields are written as empty cells.
func WriteCSV(w io.Writer, schema *models.Schema, rs []models.Record) error {
	cw := csv.NewWriter(w)
	columns := schema.Columns()
	if err := cw.Write(columns); err != nil {
		return err
	}

	row := make([]string, len(columns))
	for _, rec := range rs {
		for i, col := range columns {
			row[i] = models.Text(rec[col])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
