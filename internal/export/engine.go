package export

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/I2Cprogramacion/SEI-sub000/internal/logging"
	"github.com/I2Cprogramacion/SEI-sub000/internal/metrics"
	"github.com/I2Cprogramacion/SEI-sub000/internal/store"
)

// Querier runs a read-only statement. store.Store satisfies it.
type Querier interface {
	RawQuery(ctx context.Context, sql string, params ...any) ([]store.Record, error)
}

// Result is a rendered-ready export.
type Result struct {
	ID          string
	Dataset     string
	Format      Format
	Headers     []string
	Fields      []string
	Rows        []store.Record
	GeneratedAt time.Time
}

// Cells returns row i as strings in field order.
func (r *Result) Cells(i int) []string {
	row := r.Rows[i]
	cells := make([]string, len(r.Fields))
	for j, key := range r.Fields {
		cells[j] = row.Text(key)
	}
	return cells
}

// Engine plans and executes export jobs.
type Engine struct {
	Catalog Catalog
	Querier Querier

	// MaxRows caps the rows returned; 0 means no cap.
	MaxRows int

	Metrics *metrics.Collector
	Now     func() time.Time
}

// NewEngine returns an engine over the default catalog.
func NewEngine(q Querier, maxRows int) *Engine {
	return &Engine{
		Catalog: DefaultCatalog,
		Querier: q,
		MaxRows: maxRows,
		Metrics: metrics.Default,
		Now:     time.Now,
	}
}

// Run validates job, runs the projection and returns the rows. A
// *ValidationError means nothing was queried.
func (e *Engine) Run(ctx context.Context, job Job) (*Result, error) {
	id := uuid.NewString()
	logger := logging.WithFields(ctx, "export_id", id, "dataset", job.Dataset, "format", string(job.Format))

	proj, err := e.Catalog.Plan(job)
	if err != nil {
		logger.Info("export rejected", "error", err)
		e.Metrics.ObserveExport(metrics.LabelInvalid, metrics.LabelInvalid, metrics.OutcomeFailure, 0)
		return nil, err
	}

	rows, err := e.Querier.RawQuery(ctx, proj.SQL(e.MaxRows))
	if err != nil {
		logger.Error("export query failed", "error", err)
		e.Metrics.ObserveExport(proj.Dataset.Key, string(proj.Format), metrics.OutcomeError, 0)
		return nil, fmt.Errorf("export %s: %w", proj.Dataset.Key, err)
	}

	now := time.Now
	if e.Now != nil {
		now = e.Now
	}

	res := &Result{
		ID:          id,
		Dataset:     proj.Dataset.Key,
		Format:      proj.Format,
		Headers:     proj.Headers(),
		Fields:      proj.Keys(),
		Rows:        rows,
		GeneratedAt: now().UTC(),
	}

	logger.Info("export complete", "rows", len(rows), "fields", len(res.Fields))
	e.Metrics.ObserveExport(res.Dataset, string(res.Format), metrics.OutcomeOK, len(rows))
	return res, nil
}

// Filename returns the attachment name for a result generated at now.
func Filename(dataset string, format Format, now time.Time) string {
	return fmt.Sprintf("%s_export_%s.%s", dataset, now.Format("2006-01-02"), format.Extension())
}
