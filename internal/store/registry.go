package store

import (
	"fmt"
	"sort"
	"sync"
)

// Constructor builds a backend for cfg. It must not perform I/O.
type Constructor func(cfg Config) Store

// Validator checks that cfg carries what the backend needs to connect.
// A nil Validator accepts every config.
type Validator func(cfg Config) error

// Registration describes one backend kind.
type Registration struct {
	New      Constructor
	Validate Validator
}

// Registry maps backend kinds to their constructors.
type Registry struct {
	mu       sync.RWMutex
	backends map[Kind]Registration
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{backends: make(map[Kind]Registration)}
}

// Register adds a backend kind.
// Panics if the kind is already registered or reg has no constructor.
func (r *Registry) Register(kind Kind, reg Registration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if reg.New == nil {
		panic(fmt.Sprintf("store: nil constructor for backend %s", kind))
	}
	if _, exists := r.backends[kind]; exists {
		panic(fmt.Sprintf("store: backend already registered: %s", kind))
	}
	r.backends[kind] = reg
}

// Open resolves cfg.Kind to a backend and constructs it. The returned store
// is not connected. Unknown kinds and configs rejected by the backend's
// validator yield a *ConfigurationError and no constructor is called.
func (r *Registry) Open(cfg Config) (Store, error) {
	r.mu.RLock()
	reg, ok := r.backends[cfg.Kind]
	r.mu.RUnlock()

	if !ok {
		return nil, &ConfigurationError{
			Kind:   cfg.Kind,
			Reason: fmt.Sprintf("unsupported backend %q (registered: %v)", cfg.Kind, r.Kinds()),
		}
	}

	if reg.Validate != nil {
		if err := reg.Validate(cfg); err != nil {
			if IsConfiguration(err) {
				return nil, err
			}
			return nil, &ConfigurationError{Kind: cfg.Kind, Reason: err.Error()}
		}
	}

	return reg.New(cfg), nil
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]Kind, 0, len(r.backends))
	for k := range r.backends {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

var defaultRegistry = NewRegistry()

// Register adds a backend kind to the default registry.
func Register(kind Kind, reg Registration) {
	defaultRegistry.Register(kind, reg)
}

// Open resolves cfg against the default registry.
func Open(cfg Config) (Store, error) {
	return defaultRegistry.Open(cfg)
}

// Kinds returns the kinds registered in the default registry.
func Kinds() []Kind {
	return defaultRegistry.Kinds()
}
