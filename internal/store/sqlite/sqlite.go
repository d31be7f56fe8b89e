// Package sqlite registers the embedded SQLite backend (modernc.org/sqlite,
// no cgo). The database/sql handle is limited to one open connection so a
// store holds exactly one, as with the other backends.
package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/I2Cprogramacion/SEI-sub000/internal/schema"
	"github.com/I2Cprogramacion/SEI-sub000/internal/store"
	"github.com/I2Cprogramacion/SEI-sub000/internal/store/sqlstore"
)

// Memory is the filename of a private in-memory database.
const Memory = ":memory:"

// lowerFunc is the SQL name of the Unicode lowercase function. The built-in
// LOWER only folds ASCII.
const lowerFunc = "unicode_lower"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(lowerFunc, 1, unicodeLower)
	store.Register(store.KindSQLite, store.Registration{New: New, Validate: Validate})
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// New returns an unconnected SQLite store.
func New(cfg store.Config) store.Store {
	return sqlstore.New(store.KindSQLite, Dialect{}, opener(cfg.Filename))
}

// Validate requires a filename.
func Validate(cfg store.Config) error {
	if strings.TrimSpace(cfg.Filename) == "" {
		return &store.ConfigurationError{Kind: store.KindSQLite, Reason: "filename is required"}
	}
	return nil
}

func opener(filename string) sqlstore.Opener {
	return func(ctx context.Context) (sqlstore.Conn, error) {
		db, err := sql.Open("sqlite", filename)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)

		if _, err := db.ExecContext(ctx, `
			PRAGMA foreign_keys = ON;
			PRAGMA busy_timeout = 5000;
		`); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragmas: %w", err)
		}
		return &Conn{db: db}, nil
	}
}

// Conn adapts a single-connection *sql.DB to sqlstore.Conn.
type Conn struct {
	db *sql.DB
}

// Exec runs a statement that returns no rows.
func (c *Conn) Exec(ctx context.Context, query string, args ...any) error {
	_, err := c.db.ExecContext(ctx, query, args...)
	return err
}

// Query collects every row into a Record keyed by result column name.
func (c *Conn) Query(ctx context.Context, query string, args ...any) ([]store.Record, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	declared := make([]string, len(colTypes))
	for i, ct := range colTypes {
		declared[i] = strings.ToUpper(ct.DatabaseTypeName())
	}

	var out []store.Record
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := make(store.Record, len(cols))
		for i, name := range cols {
			rec[i] = store.Field{Column: name, Value: normalize(declared[i], values[i])}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// normalize maps driver values onto the types the postgres backend returns
// for the same declared column type.
func normalize(declared string, v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case time.Time:
		if declared == "DATE" {
			return t.Format(sqlstore.DateLayout)
		}
		return t.UTC()
	case int64:
		switch declared {
		case "BOOLEAN":
			return t != 0
		case "NUMERIC":
			return float64(t)
		}
	}
	return v
}

// Close closes the database handle.
func (c *Conn) Close(context.Context) error {
	return c.db.Close()
}

// Dialect is the SQLite SQL dialect.
type Dialect struct{}

// Placeholder returns ?n. Numbered parameters may be reused in a statement.
func (Dialect) Placeholder(n int) string { return "?" + strconv.Itoa(n) }

// ColumnType maps logical column types to SQLite declared types. The
// declared names decide column affinity and how the driver decodes values.
func (Dialect) ColumnType(t schema.ColumnType) string {
	switch t {
	case schema.ColumnInteger:
		return "INTEGER"
	case schema.ColumnBool:
		return "BOOLEAN"
	case schema.ColumnDate:
		return "DATE"
	case schema.ColumnTimestamp:
		return "TIMESTAMP"
	case schema.ColumnNumeric:
		return "NUMERIC"
	default:
		return "TEXT"
	}
}

// Lower calls the registered Unicode lowercase function.
func (Dialect) Lower(expr string) string { return lowerFunc + "(" + expr + ")" }

// PrimaryKey returns the autoincrement rowid alias.
func (Dialect) PrimaryKey() string { return "id INTEGER PRIMARY KEY AUTOINCREMENT" }

// AddColumn uses plain ADD COLUMN; SQLite has no IF NOT EXISTS form, so
// re-applying reports a duplicate column.
func (d Dialect) AddColumn(table string, col schema.Column) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s",
		sqlstore.QuoteIdentifier(table), sqlstore.ColumnDefinition(d, col))
}

// IsAlreadyExists matches duplicate column and existing object errors.
func (Dialect) IsAlreadyExists(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate column name") || strings.Contains(msg, "already exists")
}

// IsUniqueViolation matches SQLITE_CONSTRAINT_UNIQUE.
func (Dialect) IsUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
