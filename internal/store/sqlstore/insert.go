package sqlstore

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/I2Cprogramacion/SEI-sub000/internal/logging"
	"github.com/I2Cprogramacion/SEI-sub000/internal/metrics"
	"github.com/I2Cprogramacion/SEI-sub000/internal/schema"
	"github.com/I2Cprogramacion/SEI-sub000/internal/store"
)

// InsertEntity inserts rec into table and returns the generated id.
//
// When the table declares a natural key and rec carries a non-empty value
// for it, an existing row with that key rejects the insert. Fields with nil
// values are left out of the statement. Every failure, including driver
// errors, is reported in the result.
func (s *Store) InsertEntity(ctx context.Context, table string, rec store.Record) (res store.InsertResult) {
	defer func(start time.Time) {
		outcome := metrics.OutcomeOK
		if !res.Success {
			outcome = metrics.OutcomeFailure
		}
		s.observe("insert", start, outcome)
	}(time.Now())

	logger := logging.WithFields(ctx, "kind", s.kind, "table", table)

	t, err := lookup(table)
	if err != nil {
		return failure(err)
	}

	if err := s.ensure(ctx); err != nil {
		logger.Error("insert: connect failed", "error", err)
		return failure(err)
	}

	if key := naturalKeyValue(t, rec); key != "" {
		// Bind the same trimmed value the guard looks up.
		rec = slices.Clone(rec)
		rec.Set(t.NaturalKey, key)

		id, found, err := s.findByKey(ctx, t, key)
		if err != nil {
			return failure(&store.QueryError{Op: "duplicate check", Err: err})
		}
		if found {
			logger.Info("insert rejected: duplicate natural key", "key", t.NaturalKey, "id", id)
			return store.InsertResult{
				Message:   fmt.Sprintf("%s %s already exists, id=%d", t.NaturalKey, key, id),
				ID:        id,
				Duplicate: true,
			}
		}
	}

	fields, err := bindable(t, rec)
	if err != nil {
		return failure(err)
	}
	if len(fields) == 0 {
		return store.InsertResult{Message: "no fields to insert"}
	}

	query := InsertSQL(s.dialect, t.Name, fields.Columns())
	rows, err := s.conn.Query(ctx, query, fields.Values()...)
	if err != nil {
		res := failure(err)
		if s.dialect.IsUniqueViolation(err) {
			res.Duplicate = true
		}
		logger.Warn("insert failed", "error", err, "duplicate", res.Duplicate)
		return res
	}
	if len(rows) == 0 {
		return store.InsertResult{Message: "insert returned no id"}
	}

	idVal, _ := rows[0].Get("id")
	id, ok := toInt64(idVal)
	if !ok {
		return store.InsertResult{Message: fmt.Sprintf("unexpected id type %T", idVal)}
	}

	logger.Info("entity inserted", "id", id, "fields", len(fields))
	return store.InsertResult{Success: true, Message: "saved", ID: id}
}

// InsertSQL renders the INSERT statement for columns in order. Parameter n
// binds columns[n-1].
func InsertSQL(d Dialect, table string, columns []string) string {
	quoted := make([]string, len(columns))
	params := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = QuoteIdentifier(c)
		params[i] = d.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		QuoteIdentifier(table), strings.Join(quoted, ", "), strings.Join(params, ", "))
}

// naturalKeyValue returns the trimmed natural key of rec, or "" when the
// table has none or rec carries an empty or placeholder value.
func naturalKeyValue(t schema.Table, rec store.Record) string {
	if t.NaturalKey == "" {
		return ""
	}
	key := strings.TrimSpace(rec.Text(t.NaturalKey))
	if key == "" || slices.Contains(t.MissingKeyValues, key) {
		return ""
	}
	return key
}

func (s *Store) findByKey(ctx context.Context, t schema.Table, key string) (int64, bool, error) {
	query := fmt.Sprintf("SELECT id FROM %s WHERE %s = %s LIMIT 1",
		QuoteIdentifier(t.Name), QuoteIdentifier(t.NaturalKey), s.dialect.Placeholder(1))
	rows, err := s.conn.Query(ctx, query, key)
	if err != nil {
		return 0, false, err
	}
	if len(rows) == 0 {
		return 0, false, nil
	}
	v, _ := rows[0].Get("id")
	id, _ := toInt64(v)
	return id, true, nil
}

// bindable filters rec to defined fields, in order, and coerces each value
// to its column type. Values that coerce to nil are dropped as well.
func bindable(t schema.Table, rec store.Record) (store.Record, error) {
	out := make(store.Record, 0, len(rec))
	for _, f := range rec.Defined() {
		col, ok := t.Column(f.Column)
		if !ok {
			return nil, fmt.Errorf("column not found: %s.%s", t.Name, f.Column)
		}
		v, err := Coerce(col, f.Value)
		if err != nil {
			return nil, err
		}
		if v == nil {
			continue
		}
		out = append(out, store.Field{Column: f.Column, Value: v})
	}
	return out, nil
}

func failure(err error) store.InsertResult {
	return store.InsertResult{Message: err.Error(), Err: err}
}
