// Package sqlstore implements store.Store on top of a single relational
// connection. Backends supply a Conn opener and a Dialect; everything else,
// including the insert duplicate guard, search and schema evolution, lives
// here.
package sqlstore

import (
	"context"
	"time"

	"github.com/I2Cprogramacion/SEI-sub000/internal/logging"
	"github.com/I2Cprogramacion/SEI-sub000/internal/metrics"
	"github.com/I2Cprogramacion/SEI-sub000/internal/schema"
	"github.com/I2Cprogramacion/SEI-sub000/internal/store"
)

// Conn is one open database connection.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) error

	// Query returns every row as a Record in column order. NULL columns are
	// returned with a nil value.
	Query(ctx context.Context, sql string, args ...any) ([]store.Record, error)

	Close(ctx context.Context) error
}

// Opener dials a new connection.
type Opener func(ctx context.Context) (Conn, error)

// Dialect holds the SQL differences between backends.
type Dialect interface {
	// Placeholder returns the n-th (1-based) positional parameter marker.
	Placeholder(n int) string

	ColumnType(t schema.ColumnType) string

	// Lower wraps expr in a Unicode-aware lowercase function.
	Lower(expr string) string

	// PrimaryKey returns the column definition of the surrogate id.
	PrimaryKey() string

	// AddColumn returns the statement adding col to table.
	AddColumn(table string, col schema.Column) string

	// IsAlreadyExists reports whether err means the object a DDL statement
	// tried to create is already there.
	IsAlreadyExists(err error) bool

	// IsUniqueViolation reports whether err is a unique constraint violation.
	IsUniqueViolation(err error) bool
}

// Store is the generic relational adapter.
type Store struct {
	kind    store.Kind
	dialect Dialect
	open    Opener
	conn    Conn
}

var _ store.Store = (*Store)(nil)

// New returns an unconnected store. No I/O happens until the first
// operation or an explicit Connect.
func New(kind store.Kind, dialect Dialect, open Opener) *Store {
	return &Store{kind: kind, dialect: dialect, open: open}
}

// Kind returns the backend kind.
func (s *Store) Kind() store.Kind { return s.kind }

// Connect opens the connection if it is not open yet.
func (s *Store) Connect(ctx context.Context) error {
	return s.ensure(ctx)
}

// Disconnect closes the connection if it is open.
func (s *Store) Disconnect(ctx context.Context) error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close(ctx)
	s.conn = nil
	if err != nil {
		return &store.ConnectionError{Kind: s.kind, Err: err}
	}
	logging.FromContext(ctx).Debug("store disconnected", "kind", s.kind)
	return nil
}

// ensure lazily opens the connection.
func (s *Store) ensure(ctx context.Context) error {
	if s.conn != nil {
		return nil
	}
	conn, err := s.open(ctx)
	if err != nil {
		return &store.ConnectionError{Kind: s.kind, Err: err}
	}
	s.conn = conn
	logging.FromContext(ctx).Info("store connected", "kind", s.kind)
	return nil
}

// observe records the latency and outcome of op.
func (s *Store) observe(op string, started time.Time, outcome string) {
	metrics.ObserveStore(string(s.kind), op, outcome, time.Since(started))
}

func outcomeOf(err error) string {
	if err != nil {
		return metrics.OutcomeError
	}
	return metrics.OutcomeOK
}

// lookup resolves a table name against the schema definitions.
func lookup(name string) (schema.Table, error) {
	t, ok := schema.Lookup(name)
	if !ok {
		return schema.Table{}, &store.QueryError{Op: "table " + name, Err: store.ErrUnknownTable}
	}
	return t, nil
}
