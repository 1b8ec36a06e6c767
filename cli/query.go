package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"skillboard/backend/models"
	"skillboard/backend/records"
	"skillboard/backend/services"
)

type queryOptions struct {
	dir      string
	resource string
	search   string
	filters  []string
	by       string
	scope    string
	format   string
	offset   int
	limit    int
}

// queryResult is printed by query in json format.
type queryResult struct {
	View      models.FilteredView `json:"view"`
	Summary   *models.Summary     `json:"summary,omitempty"`
	Selection *models.Selection   `json:"selection,omitempty"`
}

func newQueryCommand(opts *options) *cobra.Command {
	q := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Filter and summarize a dataset offline",
		Example: `  skillboard query --datasets ./datasets --resource candidates -q john --filter status=placed
  skillboard query --resource candidates --by center --scope filtered --filter course=retail
  skillboard query --resource purchase_orders --format csv > orders.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, opts, q)
		},
	}

	cmd.Flags().StringVar(&q.dir, "datasets", "", "dataset directory (default: datasetDir from config)")
	cmd.Flags().StringVarP(&q.resource, "resource", "r", "", "resource to query")
	cmd.Flags().StringVarP(&q.search, "query", "q", "", "free-text search")
	cmd.Flags().StringArrayVarP(&q.filters, "filter", "f", nil, "field filter as field=value (repeatable)")
	cmd.Flags().StringVar(&q.by, "by", "", "summarize the records by this field")
	cmd.Flags().StringVar(&q.scope, "scope", models.ScopeAll, "records the summary counts: all or filtered")
	cmd.Flags().StringVarP(&q.format, "format", "o", "json", "output format (json, csv)")
	cmd.Flags().IntVar(&q.offset, "offset", 0, "records to skip")
	cmd.Flags().IntVar(&q.limit, "limit", 0, "maximum records to print (0 for all)")
	_ = cmd.MarkFlagRequired("resource")
	return cmd
}

func parseFilters(pairs []string) (map[string]string, error) {
	filters := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		field, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(field) == "" {
			return nil, fmt.Errorf("invalid filter %q, expected field=value", pair)
		}
		filters[strings.TrimSpace(field)] = value
	}
	return filters, nil
}

func runQuery(cmd *cobra.Command, opts *options, q *queryOptions) error {
	filters, err := parseFilters(q.filters)
	if err != nil {
		return err
	}
	c := models.Criteria{SearchQuery: q.search, Filters: filters}

	dir := q.dir
	if dir == "" {
		dir = opts.cfg.DatasetDir
	}
	svc := opts.newRecordService(services.NewDatasetStore(dir, opts.logger), nil)
	if err := svc.Reload(cmd.Context(), q.resource); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch q.format {
	case "csv":
		view, schema, err := svc.Filter(q.resource, c)
		if err != nil {
			return err
		}
		return records.WriteCSV(out, schema, records.Window(view, models.Page{Offset: q.offset, Limit: q.limit}))

	case "json":
		view, err := svc.View(q.resource, c, models.Page{Offset: q.offset, Limit: q.limit})
		if err != nil {
			return err
		}
		result := queryResult{View: view}
		if q.by != "" {
			summary, selection, _, err := svc.Summarize(q.resource, q.by, q.scope, c)
			if err != nil {
				return err
			}
			result.Summary, result.Selection = &summary, &selection
		}
		return writeJSON(out, result)

	default:
		return fmt.Errorf("unsupported format %q (valid: json, csv)", q.format)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
