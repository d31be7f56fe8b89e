package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/I2Cprogramacion/SEI-sub000/internal/store/sqlstore"
)

// Format selects the renderer.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
	// FormatPDF returns the structured payload; documents are laid out by
	// the client.
	FormatPDF Format = "pdf"
)

// ParseFormat maps a request value to a Format. Empty means csv.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatExcel, FormatPDF:
		return f, nil
	default:
		return "", &ValidationError{Param: "format", Message: fmt.Sprintf("unsupported format %q", s)}
	}
}

// Extension returns the file extension for formats rendered as files.
func (f Format) Extension() string {
	switch f {
	case FormatExcel:
		return "xls"
	case FormatPDF:
		return "json"
	default:
		return "csv"
	}
}

// ContentType returns the response media type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatExcel:
		return "application/vnd.ms-excel; charset=utf-8"
	case FormatPDF:
		return "application/json"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Job is one export request.
type Job struct {
	Dataset string
	Fields  []string
	Format  Format
}

// ParseFields splits a comma separated field list, dropping blanks.
func ParseFields(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValidationError rejects a job before any query runs. It describes a
// correctable request problem, not a server fault.
type ValidationError struct {
	Param   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid export %s: %s", e.Param, e.Message)
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Projection is a validated job: the dataset plus the accepted fields in
// request order.
type Projection struct {
	Dataset Dataset
	Fields  []Field
	Format  Format
}

// Keys returns the accepted field keys.
func (p Projection) Keys() []string {
	keys := make([]string, len(p.Fields))
	for i, f := range p.Fields {
		keys[i] = f.Key
	}
	return keys
}

// Headers returns the catalog labels of the accepted fields.
func (p Projection) Headers() []string {
	labels := make([]string, len(p.Fields))
	for i, f := range p.Fields {
		labels[i] = f.Label
	}
	return labels
}

// SQL builds the projection query, newest rows first. Every column is cast
// to text and nulls become empty strings. limit <= 0 means no limit.
func (p Projection) SQL(limit int) string {
	cols := make([]string, len(p.Fields))
	for i, f := range p.Fields {
		cols[i] = fmt.Sprintf("COALESCE(CAST(%s AS TEXT), '') AS %s",
			sqlstore.QuoteIdentifier(f.Column), sqlstore.QuoteIdentifier(f.Key))
	}

	q := fmt.Sprintf("SELECT %s FROM %s ORDER BY id DESC",
		strings.Join(cols, ", "), sqlstore.QuoteIdentifier(p.Dataset.Table))
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}
	return q
}

// Plan validates job against the catalog. Unknown field keys are dropped;
// duplicates keep their first position.
func (c Catalog) Plan(job Job) (Projection, error) {
	ds, ok := c.Lookup(job.Dataset)
	if !ok {
		return Projection{}, &ValidationError{Param: "type", Message: fmt.Sprintf("unknown dataset %q (available: %s)", job.Dataset, strings.Join(c.Keys(), ", "))}
	}

	if len(job.Fields) == 0 {
		return Projection{}, &ValidationError{Param: "fields", Message: "at least one field is required"}
	}

	format := job.Format
	if format == "" {
		format = FormatCSV
	}
	if _, err := ParseFormat(string(format)); err != nil {
		return Projection{}, err
	}

	seen := make(map[string]bool, len(job.Fields))
	var fields []Field
	for _, key := range job.Fields {
		if seen[key] {
			continue
		}
		seen[key] = true
		if f, ok := ds.Field(key); ok {
			fields = append(fields, f)
		}
	}

	if len(fields) == 0 {
		return Projection{}, &ValidationError{Param: "fields", Message: "no valid fields requested"}
	}

	return Projection{Dataset: ds, Fields: fields, Format: format}, nil
}

// Plan validates job against DefaultCatalog.
func Plan(job Job) (Projection, error) {
	return DefaultCatalog.Plan(job)
}
