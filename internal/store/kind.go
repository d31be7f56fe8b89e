package store

import "strings"

// Kind identifies a backend implementation.
type Kind string

const (
	KindPostgres       Kind = "postgresql"
	KindVercelPostgres Kind = "vercelPostgres"
	KindSQLite         Kind = "sqlite"
	KindMySQL          Kind = "mysql"
	KindMongoDB        Kind = "mongodb"
)

func (k Kind) String() string { return string(k) }

// ParseKind converts a user supplied backend name to a Kind, accepting a few
// common aliases. Unknown names are returned verbatim so that the registry
// can report them as a configuration error.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "postgresql", "postgres", "pg":
		return KindPostgres
	case "vercelpostgres", "vercel", "vercel-postgres":
		return KindVercelPostgres
	case "sqlite", "sqlite3":
		return KindSQLite
	case "mysql", "mariadb":
		return KindMySQL
	case "mongodb", "mongo":
		return KindMongoDB
	default:
		return Kind(s)
	}
}
