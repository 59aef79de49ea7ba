package cache

import (
	"context"
	"time"
)

// noopCache is a passthrough used when decision caching is disabled.
// Every Get misses; every write succeeds and is dropped.
type noopCache struct{}

var _ Cache = (*noopCache)(nil)

func newNoopCache() *noopCache {
	return &noopCache{}
}

func (n *noopCache) Get(_ context.Context, _ string) ([]byte, error) {
	return nil, ErrNotFound
}

func (n *noopCache) Set(_ context.Context, _ string, _ []byte) error {
	return nil
}

func (n *noopCache) SetWithTTL(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return nil
}

func (n *noopCache) Delete(_ context.Context, _ string) error {
	return nil
}

func (n *noopCache) Close() error {
	return nil
}
