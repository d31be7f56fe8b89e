package config

import (
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/I2Cprogramacion/SEI-sub000/internal/store"
)

// Backend converts the database section into a store.Config. A connection
// string is parsed into the same discrete fields; sqlite: and file: URLs
// select the sqlite backend.
func (d DatabaseConfig) Backend() (store.Config, error) {
	cfg := store.Config{
		Kind:           store.ParseKind(d.Kind),
		Host:           d.Host,
		Port:           d.Port,
		Database:       d.Name,
		Username:       d.User,
		Password:       d.Password,
		SSL:            d.SSL,
		Filename:       d.Filename,
		ConnectTimeout: d.ConnectTimeout,
	}

	raw := strings.TrimSpace(d.URL)
	if raw == "" {
		return cfg, nil
	}

	if name, ok := sqliteFilename(raw); ok {
		cfg.Kind = store.KindSQLite
		cfg.Filename = name
		return cfg, nil
	}

	pc, err := pgconn.ParseConfig(raw)
	if err != nil {
		return store.Config{}, &store.ConfigurationError{Kind: cfg.Kind, Reason: "invalid DATABASE_URL: " + err.Error()}
	}

	cfg.ConnectionString = raw
	cfg.Host = pc.Host
	cfg.Port = int(pc.Port)
	cfg.Database = pc.Database
	cfg.Username = pc.User
	cfg.Password = pc.Password
	cfg.SSL = sslRequired(raw)
	return cfg, nil
}

// sqliteFilename extracts the database file from sqlite:// and file: URLs.
func sqliteFilename(raw string) (string, bool) {
	switch {
	case strings.HasPrefix(raw, "sqlite://"):
		return strings.TrimPrefix(raw, "sqlite://"), true
	case strings.HasPrefix(raw, "sqlite:"):
		return strings.TrimPrefix(raw, "sqlite:"), true
	case strings.HasPrefix(raw, "file:"):
		return raw, true
	}
	return "", false
}

// sslRequired reports whether the URL asks for an encrypted connection.
func sslRequired(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch u.Query().Get("sslmode") {
	case "require", "verify-ca", "verify-full":
		return true
	}
	return false
}
