// Package kv is the typed keyed store: named collections of records serialized as a whole
// under one string key of a storage.Backend.
package kv

import (
	"context"
	"errors"

	"github.com/skshohagmiah/storefront/internal/errs"
	"github.com/skshohagmiah/storefront/internal/storage"
)

// Store is the developer-facing API over a storage backend
type Store struct {
	backend storage.Backend
	codec   Codec
	locks   *stripedLock
}

// Option customizes a Store.
type Option func(*Store)

// WithCodec replaces the JSON codec.
func WithCodec(c Codec) Option {
	return func(s *Store) { s.codec = c }
}

// WithLockStripes sets how many mutexes guard read-modify-write cycles (1-256).
func WithLockStripes(n int) Option {
	return func(s *Store) { s.locks = newStripedLock(n) }
}

// New creates a Store on the given backend. The Store owns the backend from now on.
func New(backend storage.Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		codec:   JSONCodec{},
		locks:   newStripedLock(defaultStripes),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close closes the underlying backend
func (s *Store) Close() error {
	return s.backend.Close()
}

// Clear drops the collection stored under key. Clearing an absent key is a no-op.
func (s *Store) Clear(ctx context.Context, key string) error {
	if key == "" {
		return errs.InvalidArgument("empty collection key")
	}
	defer s.locks.lock(key)()
	if err := s.backend.Delete(ctx, key); err != nil {
		return &errs.StoreError{Op: "clear", Key: key, Err: err}
	}
	return nil
}

// Keys lists stored collection keys under prefix.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys, err := s.backend.Keys(ctx, prefix)
	if err != nil {
		return nil, &errs.StoreError{Op: "keys", Key: prefix, Err: err}
	}
	return keys, nil
}

// Get decodes the value under key. The bool is false when the key was never written.
func Get[T any](ctx context.Context, s *Store, key string) (T, bool, error) {
	var v T
	if key == "" {
		return v, false, errs.InvalidArgument("empty collection key")
	}
	data, err := s.backend.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return v, false, nil
		}
		return v, false, &errs.StoreError{Op: "get", Key: key, Err: err}
	}
	if err := s.codec.Unmarshal(data, &v); err != nil {
		return v, false, &errs.StoreError{Op: "decode", Key: key, Err: err}
	}
	return v, true, nil
}

// Put encodes v and writes it under key, replacing any previous value.
func Put[T any](ctx context.Context, s *Store, key string, v T) error {
	if key == "" {
		return errs.InvalidArgument("empty collection key")
	}
	data, err := s.codec.Marshal(v)
	if err != nil {
		return &errs.StoreError{Op: "encode", Key: key, Err: err}
	}
	if err := s.backend.Set(ctx, key, data); err != nil {
		return &errs.StoreError{Op: "put", Key: key, Err: err}
	}
	return nil
}

// Load returns the collection under key. A missing key reads as an empty, non-nil slice.
func Load[T any](ctx context.Context, s *Store, key string) ([]T, error) {
	items, _, err := Get[[]T](ctx, s, key)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Save writes the whole collection under key.
func Save[T any](ctx context.Context, s *Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	return Put(ctx, s, key, items)
}

// Update runs one read-modify-write cycle on the collection under key. fn receives the current
// snapshot and returns the collection to write back; an error from fn aborts without writing.
// Cycles on the same key are serialized within this process only. fn must not call back into
// the Store.
func Update[T any](ctx context.Context, s *Store, key string, fn func([]T) ([]T, error)) ([]T, error) {
	if key == "" {
		return nil, errs.InvalidArgument("empty collection key")
	}
	defer s.locks.lock(key)()

	items, err := Load[T](ctx, s, key)
	if err != nil {
		return nil, err
	}
	updated, err := fn(items)
	if err != nil {
		return nil, err
	}
	if err := Save(ctx, s, key, updated); err != nil {
		return nil, err
	}
	return updated, nil
}
