package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/I2Cprogramacion/SEI-sub000/internal/auth"
	"github.com/I2Cprogramacion/SEI-sub000/internal/logging"
	"github.com/I2Cprogramacion/SEI-sub000/internal/metrics"
	"github.com/I2Cprogramacion/SEI-sub000/internal/schema"
	"github.com/I2Cprogramacion/SEI-sub000/internal/store"
)

// Search limits.
const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
)

// FetchAll returns every row of table ordered by id.
func (s *Store) FetchAll(ctx context.Context, table string) (rows []store.Record, err error) {
	defer func(start time.Time) { s.observe("fetch_all", start, outcomeOf(err)) }(time.Now())

	t, err := lookup(table)
	if err != nil {
		return nil, err
	}
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT * FROM %s ORDER BY id", QuoteIdentifier(t.Name))
	rows, err = s.conn.Query(ctx, query)
	if err != nil {
		return nil, &store.QueryError{Op: "fetch all " + t.Name, Err: err}
	}
	return rows, nil
}

// FetchByID returns the row with the given id, or nil when there is none.
func (s *Store) FetchByID(ctx context.Context, table string, id int64) (row store.Record, err error) {
	defer func(start time.Time) { s.observe("fetch_by_id", start, outcomeOf(err)) }(time.Now())

	t, err := lookup(table)
	if err != nil {
		return nil, err
	}
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT * FROM %s WHERE id = %s",
		QuoteIdentifier(t.Name), s.dialect.Placeholder(1))
	rows, err := s.conn.Query(ctx, query, id)
	if err != nil {
		return nil, &store.QueryError{Op: "fetch " + t.Name, Err: err}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// VerifyCredentials looks the identifier up as either the external identity
// id or the email address and checks password against the stored hash.
func (s *Store) VerifyCredentials(ctx context.Context, identifier, password string) (res store.CredentialResult) {
	defer func(start time.Time) {
		outcome := metrics.OutcomeOK
		if !res.Success {
			outcome = metrics.OutcomeFailure
		}
		s.observe("verify_credentials", start, outcome)
	}(time.Now())

	logger := logging.WithFields(ctx, "kind", s.kind)

	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return auth.Verify(nil, password)
	}

	if err := s.ensure(ctx); err != nil {
		logger.Error("verify credentials: connect failed", "error", err)
		return store.CredentialResult{Message: err.Error(), Reason: store.ReasonError}
	}

	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = %s OR %s = %s LIMIT 1",
		QuoteIdentifier(schema.Researchers),
		QuoteIdentifier(schema.ColExternalID), s.dialect.Placeholder(1),
		QuoteIdentifier(schema.ColEmail), s.dialect.Placeholder(2),
	)
	rows, err := s.conn.Query(ctx, query, identifier, identifier)
	if err != nil {
		logger.Error("verify credentials: lookup failed", "error", err)
		return store.CredentialResult{Message: err.Error(), Reason: store.ReasonError}
	}

	var row store.Record
	if len(rows) > 0 {
		row = rows[0]
	}
	res = auth.Verify(row, password)
	if !res.Success {
		logger.Info("credential check failed", "reason", res.Reason)
	}
	return res
}

// SearchSQL renders the researcher search. Every lowercased search column
// is matched against parameter 1, which the caller lowercases; parameter 2
// is the row limit.
func SearchSQL(d Dialect, t schema.Table) string {
	p := d.Placeholder(1)
	conds := make([]string, len(t.SearchColumns))
	for i, c := range t.SearchColumns {
		conds[i] = fmt.Sprintf("%s LIKE %s", d.Lower("COALESCE("+QuoteIdentifier(c)+", '')"), p)
	}
	display := QuoteIdentifier(t.DisplayColumn)
	return fmt.Sprintf(
		"SELECT * FROM %s WHERE %s IS NOT NULL AND (%s) ORDER BY %s ASC LIMIT %s",
		QuoteIdentifier(t.Name), display, strings.Join(conds, " OR "), display, d.Placeholder(2),
	)
}

// SearchEntities returns researchers whose searchable columns contain term,
// case-insensitively, ordered by name. A non-positive limit means
// DefaultSearchLimit; limits above MaxSearchLimit are capped.
func (s *Store) SearchEntities(ctx context.Context, term string, limit int) (hits []store.PublicEntity, err error) {
	defer func(start time.Time) { s.observe("search", start, outcomeOf(err)) }(time.Now())

	term = strings.TrimSpace(term)
	if term == "" {
		return []store.PublicEntity{}, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	t, err := lookup(schema.Researchers)
	if err != nil {
		return nil, err
	}
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}

	pattern := "%" + strings.ToLower(term) + "%"
	rows, err := s.conn.Query(ctx, SearchSQL(s.dialect, t), pattern, limit)
	if err != nil {
		return nil, &store.QueryError{Op: "search", Err: err}
	}

	hits = make([]store.PublicEntity, 0, len(rows))
	for _, r := range rows {
		hits = append(hits, PublicEntityFrom(r))
	}
	return hits, nil
}

// PublicEntityFrom projects a researcher row onto its public view.
func PublicEntityFrom(r store.Record) store.PublicEntity {
	idVal, _ := r.Get("id")
	id, _ := toInt64(idVal)
	area := r.Text("area")
	if area == "" {
		area = r.Text("area_investigacion")
	}
	return store.PublicEntity{
		ID:           id,
		Name:         r.Text(schema.ColFullName),
		Email:        r.Text(schema.ColEmail),
		Institution:  r.Text("institucion"),
		Area:         area,
		ResearchLine: r.Text("linea_investigacion"),
		Slug:         r.Text("slug"),
		PhotoURL:     r.Text("fotografia_url"),
	}
}

// ListIncomplete returns the rows of table whose natural key is NULL, empty
// or one of the table's placeholder values, ordered by id.
func (s *Store) ListIncomplete(ctx context.Context, table string) (rows []store.Record, err error) {
	defer func(start time.Time) { s.observe("list_incomplete", start, outcomeOf(err)) }(time.Now())

	t, err := lookup(table)
	if err != nil {
		return nil, err
	}
	if t.NaturalKey == "" {
		return nil, &store.QueryError{Op: "list incomplete " + t.Name, Err: fmt.Errorf("table has no natural key")}
	}
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}

	key := QuoteIdentifier(t.NaturalKey)
	conds := []string{key + " IS NULL", key + " = ''"}
	args := make([]any, 0, len(t.MissingKeyValues))
	for i, v := range t.MissingKeyValues {
		conds = append(conds, fmt.Sprintf("%s = %s", key, s.dialect.Placeholder(i+1)))
		args = append(args, v)
	}

	query := fmt.Sprintf("SELECT * FROM %s WHERE %s ORDER BY id",
		QuoteIdentifier(t.Name), strings.Join(conds, " OR "))
	rows, err = s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, &store.QueryError{Op: "list incomplete " + t.Name, Err: err}
	}
	return rows, nil
}

// RawQuery runs sql with params using the backend's native placeholders.
func (s *Store) RawQuery(ctx context.Context, sql string, params ...any) (rows []store.Record, err error) {
	defer func(start time.Time) { s.observe("raw_query", start, outcomeOf(err)) }(time.Now())

	if err := s.ensure(ctx); err != nil {
		return nil, err
	}
	rows, err = s.conn.Query(ctx, sql, params...)
	if err != nil {
		return nil, &store.QueryError{Op: "raw query", Err: err}
	}
	return rows, nil
}
