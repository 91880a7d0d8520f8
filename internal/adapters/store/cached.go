package store

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dkeye/Coedit/internal/core"
)

// Cached fronts a slower store with an LRU of recently read or written documents.
// Misses are not cached.
type Cached struct {
	backend core.DocumentStore
	cache   *lru.Cache[string, string]
}

func NewCached(backend core.DocumentStore, size int) (*Cached, error) {
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("document cache: %w", err)
	}
	return &Cached{backend: backend, cache: c}, nil
}

func (s *Cached) Get(ctx context.Context, id string) (string, bool, error) {
	if data, ok := s.cache.Get(id); ok {
		return data, true, nil
	}
	data, found, err := s.backend.Get(ctx, id)
	if err != nil || !found {
		return data, found, err
	}
	s.cache.Add(id, data)
	return data, true, nil
}

func (s *Cached) Put(ctx context.Context, id, data string) error {
	if err := s.backend.Put(ctx, id, data); err != nil {
		s.cache.Remove(id)
		return err
	}
	s.cache.Add(id, data)
	return nil
}

// List is served by the backend, when it can list.
func (s *Cached) List(ctx context.Context) ([]string, error) {
	lister, ok := s.backend.(core.DocumentLister)
	if !ok {
		return nil, errors.New("backend cannot list documents")
	}
	return lister.List(ctx)
}

func (s *Cached) Close() error {
	s.cache.Purge()
	return s.backend.Close()
}
