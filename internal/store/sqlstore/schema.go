package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/I2Cprogramacion/SEI-sub000/internal/logging"
	"github.com/I2Cprogramacion/SEI-sub000/internal/schema"
	"github.com/I2Cprogramacion/SEI-sub000/internal/store"
)

// QuoteIdentifier quotes a table or column name. Embedded quotes are
// doubled so the result is always a single identifier.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ColumnDefinition renders col for CREATE TABLE and ADD COLUMN.
func ColumnDefinition(d Dialect, col schema.Column) string {
	var b strings.Builder
	b.WriteString(QuoteIdentifier(col.Name))
	b.WriteByte(' ')
	b.WriteString(d.ColumnType(col.Type))
	if col.NotNull {
		b.WriteString(" NOT NULL")
	}
	if col.Unique {
		b.WriteString(" UNIQUE")
	}
	if col.Default != "" {
		b.WriteString(" DEFAULT ")
		b.WriteString(col.Default)
	}
	return b.String()
}

// CreateTableSQL renders the baseline CREATE TABLE IF NOT EXISTS statement.
func CreateTableSQL(d Dialect, t schema.Table) string {
	defs := make([]string, 0, len(t.Columns)+1)
	defs = append(defs, d.PrimaryKey())
	for _, col := range t.Columns {
		defs = append(defs, ColumnDefinition(d, col))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)",
		QuoteIdentifier(t.Name), strings.Join(defs, ",\n  "))
}

// CreateIndexSQL renders a CREATE INDEX IF NOT EXISTS statement.
func CreateIndexSQL(table string, idx schema.Index) string {
	cols := make([]string, len(idx.Columns))
	for i, c := range idx.Columns {
		cols[i] = QuoteIdentifier(c)
	}
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
		QuoteIdentifier(idx.Name), QuoteIdentifier(table), strings.Join(cols, ", "))
}

// InitializeSchema creates every table, applies its column migrations and
// creates its indexes. Migration steps that fail because the column already
// exists are skipped; any other failure stops the run.
func (s *Store) InitializeSchema(ctx context.Context) (err error) {
	defer func(start time.Time) { s.observe("initialize_schema", start, outcomeOf(err)) }(time.Now())

	if err := s.ensure(ctx); err != nil {
		return err
	}

	logger := logging.FromContext(ctx).With("kind", s.kind)

	for _, t := range schema.All() {
		if err := s.conn.Exec(ctx, CreateTableSQL(s.dialect, t)); err != nil {
			if !s.dialect.IsAlreadyExists(err) {
				return &store.QueryError{Op: "create table " + t.Name, Err: err}
			}
		}

		applied := 0
		for _, col := range t.Migrations {
			err := s.conn.Exec(ctx, s.dialect.AddColumn(t.Name, col))
			switch {
			case err == nil:
				applied++
			case s.dialect.IsAlreadyExists(err):
				logger.Debug("migration step skipped", "table", t.Name, "column", col.Name, "reason", err.Error())
			default:
				return &store.QueryError{Op: fmt.Sprintf("add column %s.%s", t.Name, col.Name), Err: err}
			}
		}

		for _, idx := range t.Indexes {
			if err := s.conn.Exec(ctx, CreateIndexSQL(t.Name, idx)); err != nil && !s.dialect.IsAlreadyExists(err) {
				return &store.QueryError{Op: "create index " + idx.Name, Err: err}
			}
		}

		logger.Debug("table ready", "table", t.Name, "migrations", len(t.Migrations), "applied", applied)
	}

	logger.Info("schema initialized", "tables", len(schema.All()))
	return nil
}

// RunMigration executes stmt as-is.
func (s *Store) RunMigration(ctx context.Context, stmt string) (err error) {
	defer func(start time.Time) { s.observe("run_migration", start, outcomeOf(err)) }(time.Now())

	if strings.TrimSpace(stmt) == "" {
		return &store.QueryError{Op: "run migration", Err: fmt.Errorf("empty statement")}
	}
	if err := s.ensure(ctx); err != nil {
		return err
	}
	if err := s.conn.Exec(ctx, stmt); err != nil {
		return &store.QueryError{Op: "run migration", Err: err}
	}
	logging.FromContext(ctx).Info("migration executed", "kind", s.kind)
	return nil
}
