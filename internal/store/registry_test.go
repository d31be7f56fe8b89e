package store

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// spyStore counts constructor calls and connect attempts.
type spyStore struct {
	Store
	connects *int
}

func (s spyStore) Connect(context.Context) error {
	*s.connects++
	return nil
}

func newSpyRegistry(constructed, connects *int) *Registry {
	r := NewRegistry()
	r.Register("spy", Registration{
		New: func(cfg Config) Store {
			*constructed++
			return spyStore{connects: connects}
		},
		Validate: func(cfg Config) error {
			if cfg.Host == "" {
				return errors.New("host is required")
			}
			return nil
		},
	})
	return r
}

func TestOpen_UnknownKind(t *testing.T) {
	var constructed, connects int
	r := newSpyRegistry(&constructed, &connects)

	s, err := r.Open(Config{Kind: "oracle", Host: "db"})
	if s != nil {
		t.Errorf("Open returned a store for an unknown kind")
	}

	var ce *ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %v (%T), want *ConfigurationError", err, err)
	}
	if ce.Kind != "oracle" {
		t.Errorf("Kind = %q, want %q", ce.Kind, "oracle")
	}
	if constructed != 0 || connects != 0 {
		t.Errorf("constructed=%d connects=%d, want 0 and 0", constructed, connects)
	}
}

func TestOpen_InvalidConfig(t *testing.T) {
	var constructed, connects int
	r := newSpyRegistry(&constructed, &connects)

	_, err := r.Open(Config{Kind: "spy"})
	if !IsConfiguration(err) {
		t.Fatalf("error = %v, want ConfigurationError", err)
	}
	if constructed != 0 {
		t.Errorf("constructor called %d times, want 0", constructed)
	}
}

func TestOpen_ResolvesWithoutIO(t *testing.T) {
	var constructed, connects int
	r := newSpyRegistry(&constructed, &connects)

	s, err := r.Open(Config{Kind: "spy", Host: "db"})
	if err != nil {
		t.Fatalf("Open error = %v", err)
	}
	if constructed != 1 {
		t.Errorf("constructed = %d, want 1", constructed)
	}
	if connects != 0 {
		t.Errorf("Open connected %d times, want 0", connects)
	}

	_ = s.Connect(context.Background())
	if connects != 1 {
		t.Errorf("connects = %d, want 1", connects)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	r := NewRegistry()
	reg := Registration{New: func(Config) Store { return nil }}
	r.Register("x", reg)

	defer func() {
		if recover() == nil {
			t.Error("duplicate Register did not panic")
		}
	}()
	r.Register("x", reg)
}

func TestKinds(t *testing.T) {
	r := NewRegistry()
	for _, k := range []Kind{"b", "a", "c"} {
		r.Register(k, Registration{New: func(Config) Store { return nil }})
	}
	got := r.Kinds()
	want := []Kind{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Kinds() = %v, want %v", got, want)
		}
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"", KindPostgres},
		{"postgres", KindPostgres},
		{"PostgreSQL", KindPostgres},
		{"vercelPostgres", KindVercelPostgres},
		{"sqlite3", KindSQLite},
		{"mariadb", KindMySQL},
		{"mongo", KindMongoDB},
		{"oracle", Kind("oracle")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseKind(tt.in); got != tt.want {
				t.Errorf("ParseKind(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestHolder(t *testing.T) {
	h := NewHolder(Config{Kind: KindSQLite, Filename: "a.db"})

	cur := h.Current()
	cur.Filename = "mutated.db"
	if h.Current().Filename != "a.db" {
		t.Error("mutating a copy changed the held config")
	}

	got := h.Update(func(c Config) Config {
		c.Kind = KindPostgres
		c.Host = "db"
		c.Port = 6543
		return c
	})
	if got.Host != "db" || got.Port != 6543 || got.Filename != "a.db" {
		t.Errorf("Update = %+v", got)
	}
	if h.Current() != got {
		t.Errorf("Current() = %+v after Update, want %+v", h.Current(), got)
	}
}

func TestConfigRedacted(t *testing.T) {
	c := Config{Kind: KindPostgres, Host: "db", Database: "sei", Username: "app", Password: "secret"}
	if got := c.Redacted(); strings.Contains(got, "secret") {
		t.Errorf("Redacted() leaks password: %s", got)
	}
}
