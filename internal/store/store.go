// Package store defines the persistence contract shared by every backend,
// the backend registry, and the value types that cross the contract
// boundary.
//
// Backends register themselves from init(). Import
// internal/store/backends to make all of them available:
//
//	import _ "github.com/I2Cprogramacion/SEI-sub000/internal/store/backends"
//
//	s, err := store.Open(cfg)
//	if err != nil {
//	    // *ConfigurationError, nothing was dialed
//	}
//	defer s.Disconnect(ctx)
//
// A Store holds a single connection and is not safe for concurrent use.
// Callers that share one instance must serialize access.
package store

import "context"

// Store is the operation set every backend exposes.
//
// Domain operations (InsertEntity, VerifyCredentials) report expected
// failures in their result value. Errors are reserved for transport and
// query failures.
type Store interface {
	Kind() Kind

	// Connect opens the underlying connection. Calling it on an open store
	// is a no-op. Every other operation connects lazily.
	Connect(ctx context.Context) error

	// Disconnect releases the connection. A later Connect reopens it.
	Disconnect(ctx context.Context) error

	// InitializeSchema creates missing tables, applies additive column
	// migrations and creates indexes. It is safe to call repeatedly.
	InitializeSchema(ctx context.Context) error

	// RunMigration executes an administrator supplied statement.
	RunMigration(ctx context.Context, stmt string) error

	InsertEntity(ctx context.Context, table string, rec Record) InsertResult
	FetchAll(ctx context.Context, table string) ([]Record, error)

	// FetchByID returns nil and no error when the row does not exist.
	FetchByID(ctx context.Context, table string, id int64) (Record, error)

	VerifyCredentials(ctx context.Context, identifier, password string) CredentialResult
	SearchEntities(ctx context.Context, term string, limit int) ([]PublicEntity, error)

	// ListIncomplete returns rows whose natural key is missing.
	ListIncomplete(ctx context.Context, table string) ([]Record, error)

	RawQuery(ctx context.Context, sql string, params ...any) ([]Record, error)
}
