package store

import (
	"fmt"
	"sync"
	"time"
)

// Config selects a backend and carries its connection parameters.
// It is a value type; copies never share state.
type Config struct {
	Kind     Kind
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSL      bool

	// Filename is the database file for embedded backends.
	Filename string

	// ConnectionString takes precedence over the discrete fields when set.
	ConnectionString string

	ConnectTimeout time.Duration
}

// Redacted returns a printable description with the password removed.
func (c Config) Redacted() string {
	if c.Filename != "" {
		return fmt.Sprintf("%s(file=%s)", c.Kind, c.Filename)
	}
	return fmt.Sprintf("%s(host=%s port=%d db=%s user=%s ssl=%v)",
		c.Kind, c.Host, c.Port, c.Database, c.Username, c.SSL)
}

// Holder owns the "current" configuration for a process lifetime, such as
// a CLI invocation or a server. Reads return copies; changes go through
// Update.
type Holder struct {
	mu  sync.RWMutex
	cfg Config
}

// NewHolder returns a holder initialized with cfg.
func NewHolder(cfg Config) *Holder {
	return &Holder{cfg: cfg}
}

// Current returns a copy of the held configuration.
func (h *Holder) Current() Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cfg
}

// Update applies fn to a copy of the current configuration and stores the
// result.
func (h *Holder) Update(fn func(Config) Config) Config {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cfg = fn(h.cfg)
	return h.cfg
}
