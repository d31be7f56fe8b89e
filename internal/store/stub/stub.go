// Package stub registers placeholder backends for kinds that have no driver
// in this build. They construct fine, so configuration can name them, but
// every operation fails with store.ErrNotImplemented instead of returning
// empty data.
package stub

import (
	"context"
	"fmt"

	"github.com/I2Cprogramacion/SEI-sub000/internal/store"
)

func init() {
	for _, k := range []store.Kind{store.KindMySQL, store.KindMongoDB} {
		store.Register(k, store.Registration{New: New})
	}
}

// Store fails every operation.
type Store struct {
	kind store.Kind
}

var _ store.Store = (*Store)(nil)

// New returns a placeholder store for cfg.Kind.
func New(cfg store.Config) store.Store {
	return &Store{kind: cfg.Kind}
}

func (s *Store) err(op string) error {
	return fmt.Errorf("%s %s: %w", s.kind, op, store.ErrNotImplemented)
}

func (s *Store) Kind() store.Kind { return s.kind }

func (s *Store) Connect(context.Context) error {
	return &store.ConnectionError{Kind: s.kind, Err: s.err("connect")}
}

// Disconnect succeeds: there is never anything to release.
func (s *Store) Disconnect(context.Context) error { return nil }

func (s *Store) InitializeSchema(context.Context) error { return s.err("initialize schema") }

func (s *Store) RunMigration(context.Context, string) error { return s.err("run migration") }

func (s *Store) InsertEntity(context.Context, string, store.Record) store.InsertResult {
	err := s.err("insert")
	return store.InsertResult{Message: err.Error(), Err: err}
}

func (s *Store) FetchAll(context.Context, string) ([]store.Record, error) {
	return nil, s.err("fetch all")
}

func (s *Store) FetchByID(context.Context, string, int64) (store.Record, error) {
	return nil, s.err("fetch by id")
}

func (s *Store) VerifyCredentials(context.Context, string, string) store.CredentialResult {
	return store.CredentialResult{Message: s.err("verify credentials").Error(), Reason: store.ReasonError}
}

func (s *Store) SearchEntities(context.Context, string, int) ([]store.PublicEntity, error) {
	return nil, s.err("search")
}

func (s *Store) ListIncomplete(context.Context, string) ([]store.Record, error) {
	return nil, s.err("list incomplete")
}

func (s *Store) RawQuery(context.Context, string, ...any) ([]store.Record, error) {
	return nil, s.err("raw query")
}
