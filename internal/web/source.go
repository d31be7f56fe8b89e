package web

import (
	"context"
	"sync"

	"github.com/I2Cprogramacion/SEI-sub000/internal/logging"
	"github.com/I2Cprogramacion/SEI-sub000/internal/store"
)

// StoreSource hands a store to one request. The caller must invoke release
// when done and must not use the store afterwards.
type StoreSource interface {
	Acquire(ctx context.Context) (st store.Store, release func(), err error)
}

// SharedSource serves every request from one store. A store holds a single
// connection, so requests are serialized through a one-slot channel.
type SharedSource struct {
	slot chan struct{}
	st   store.Store
}

// NewSharedSource wraps st.
func NewSharedSource(st store.Store) *SharedSource {
	return &SharedSource{slot: make(chan struct{}, 1), st: st}
}

// Acquire waits for the store until ctx ends. The store is held until
// release is called.
func (s *SharedSource) Acquire(ctx context.Context) (store.Store, func(), error) {
	select {
	case s.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
	var once sync.Once
	release := func() { once.Do(func() { <-s.slot }) }
	return s.st, release, nil
}

// Close waits for the store and disconnects it.
func (s *SharedSource) Close(ctx context.Context) error {
	st, release, err := s.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return st.Disconnect(ctx)
}

// PerRequestSource opens a fresh store for every request and disconnects
// it on release.
type PerRequestSource struct {
	cfg  store.Config
	open func(store.Config) (store.Store, error)
}

// NewPerRequestSource opens stores from cfg through the default registry.
func NewPerRequestSource(cfg store.Config) *PerRequestSource {
	return &PerRequestSource{cfg: cfg, open: store.Open}
}

// Acquire opens a new store. Configuration errors surface here, before any
// connection is attempted.
func (p *PerRequestSource) Acquire(ctx context.Context) (store.Store, func(), error) {
	st, err := p.open(p.cfg)
	if err != nil {
		return nil, nil, err
	}

	release := func() {
		// The request context may already be cancelled.
		if err := st.Disconnect(context.WithoutCancel(ctx)); err != nil {
			logging.FromContext(ctx).Warn("disconnect failed", "kind", st.Kind(), "error", err)
		}
	}
	return st, release, nil
}
