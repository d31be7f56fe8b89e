// Package postgres registers the PostgreSQL backend. Each store drives a
// single pgx connection; there is no pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/I2Cprogramacion/SEI-sub000/internal/schema"
	"github.com/I2Cprogramacion/SEI-sub000/internal/store"
	"github.com/I2Cprogramacion/SEI-sub000/internal/store/sqlstore"
)

// PostgreSQL error codes treated as "object already exists".
const (
	codeDuplicateColumn = "42701"
	codeDuplicateTable  = "42P07"
	codeDuplicateObject = "42710"
	codeUniqueViolation = "23505"
)

// connectConfig dials the server. Tests replace it to observe dialing.
var connectConfig = pgx.ConnectConfig

func init() {
	reg := store.Registration{New: New, Validate: Validate}
	store.Register(store.KindPostgres, reg)
	store.Register(store.KindVercelPostgres, reg)
}

// New returns an unconnected PostgreSQL store.
func New(cfg store.Config) store.Store {
	return sqlstore.New(cfg.Kind, Dialect{}, opener(cfg))
}

// Validate requires a connection string or a host and database name.
func Validate(cfg store.Config) error {
	if cfg.ConnectionString != "" {
		if _, err := pgx.ParseConfig(cfg.ConnectionString); err != nil {
			return &store.ConfigurationError{Kind: cfg.Kind, Reason: "invalid connection string: " + err.Error()}
		}
		return nil
	}
	if cfg.Host == "" || cfg.Database == "" {
		return &store.ConfigurationError{Kind: cfg.Kind, Reason: "host and database are required"}
	}
	return nil
}

// DSN renders cfg as a postgres:// URL. ConnectionString wins when set.
func DSN(cfg store.Config) string {
	if cfg.ConnectionString != "" {
		return cfg.ConnectionString
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		Path:   "/" + cfg.Database,
	}
	if cfg.Username != "" {
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	}
	q := url.Values{}
	if cfg.SSL {
		q.Set("sslmode", "require")
	} else {
		q.Set("sslmode", "disable")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func opener(cfg store.Config) sqlstore.Opener {
	return func(ctx context.Context) (sqlstore.Conn, error) {
		pgcfg, err := pgx.ParseConfig(DSN(cfg))
		if err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		if cfg.ConnectTimeout > 0 {
			pgcfg.ConnectTimeout = cfg.ConnectTimeout
		}
		conn, err := connectConfig(ctx, pgcfg)
		if err != nil {
			return nil, err
		}
		return &Conn{conn: conn}, nil
	}
}

// Conn adapts a *pgx.Conn to sqlstore.Conn.
type Conn struct {
	conn *pgx.Conn
}

// Exec runs a statement that returns no rows.
func (c *Conn) Exec(ctx context.Context, sql string, args ...any) error {
	_, err := c.conn.Exec(ctx, sql, args...)
	return err
}

// Query collects every row into a Record keyed by result column name.
func (c *Conn) Query(ctx context.Context, sql string, args ...any) ([]store.Record, error) {
	rows, err := c.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []store.Record
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		rec := make(store.Record, len(fields))
		for i, fd := range fields {
			rec[i] = store.Field{Column: fd.Name, Value: normalize(fd.DataTypeOID, values[i])}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the connection.
func (c *Conn) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

// normalize converts pgx decoded values to the plain Go types the rest of
// the code handles. Dates become YYYY-MM-DD strings, timestamps UTC.
func normalize(oid uint32, v any) any {
	switch t := v.(type) {
	case time.Time:
		if oid == pgtype.DateOID {
			return t.Format(sqlstore.DateLayout)
		}
		return t.UTC()
	case int32:
		return int64(t)
	case int16:
		return int64(t)
	case pgtype.Numeric:
		if !t.Valid {
			return nil
		}
		f, err := t.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	default:
		return v
	}
}

// Dialect is the PostgreSQL SQL dialect.
type Dialect struct{}

// Placeholder returns $n.
func (Dialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

// ColumnType maps logical column types to PostgreSQL types.
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

// Lower uses the built-in LOWER, which folds Unicode in UTF8 databases.
func (Dialect) Lower(expr string) string { return "LOWER(" + expr + ")" }

// PrimaryKey returns the SERIAL id column.
func (Dialect) PrimaryKey() string { return "id SERIAL PRIMARY KEY" }

// AddColumn uses ADD COLUMN IF NOT EXISTS.
func (d Dialect) AddColumn(table string, col schema.Column) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s",
		sqlstore.QuoteIdentifier(table), sqlstore.ColumnDefinition(d, col))
}

// IsAlreadyExists matches duplicate column, table and object errors.
func (Dialect) IsAlreadyExists(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case codeDuplicateColumn, codeDuplicateTable, codeDuplicateObject:
		return true
	}
	return false
}

// IsUniqueViolation matches unique_violation.
func (Dialect) IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}
