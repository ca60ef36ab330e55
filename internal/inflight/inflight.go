// Package inflight keeps at most one request per key running at a time.
package inflight

import (
	"context"
	"errors"
	"sync"
)

// ErrBusy is returned by Acquire while another holder owns the key.
var ErrBusy = errors.New("request already in flight")

// Limiter hands out exclusive, non-blocking claims on a key. The returned
// release func must be called exactly once.
type Limiter interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Local is an in-process Limiter for single replica deployments.
type Local struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocal() *Local {
	return &Local{held: make(map[string]struct{})}
}

func (l *Local) Acquire(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[key]; ok {
		return nil, ErrBusy
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}
