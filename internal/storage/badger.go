package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/skshohagmiah/storefront/internal/storage/transactions"
)

// BadgerStorage is a Backend on an embedded BadgerDB instance.
type BadgerStorage struct {
	db *badger.DB
}

var _ Backend = (*BadgerStorage)(nil)

// NewBadgerStorage opens (or creates) a BadgerDB directory at path.
func NewBadgerStorage(path string) (*BadgerStorage, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty badger path", ErrInvalidKey)
	}
	db, err := badger.Open(tuned(badger.DefaultOptions(path)))
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB: %w", err)
	}
	return &BadgerStorage{db: db}, nil
}

// Collections are rewritten whole, so keep a single version and modest caches. Large
// collections go to the value log.
func tuned(opts badger.Options) badger.Options {
	opts.Logger = nil
	opts.NumVersionsToKeep = 1
	opts.ValueThreshold = 1024 // store values > 1KB in value log
	opts.BlockCacheSize = 64 << 20
	opts.IndexCacheSize = 32 << 20
	opts.MemTableSize = 16 << 20
	opts.DetectConflicts = false
	return opts
}

// Close closes the BadgerDB connection
func (s *BadgerStorage) Close() error {
	return s.db.Close()
}

// Get retrieves a value by key
func (s *BadgerStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	var value []byte
	err := transactions.ReadTxn(ctx, s.db, func(txn *badger.Txn) error {
		v, err := transactions.GetKey(txn, []byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrKeyNotFound
		}
		value = v
		return err
	})
	return value, err
}

// Set stores value under key, replacing any previous value
func (s *BadgerStorage) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrInvalidKey
	}
	return transactions.WriteTxn(ctx, s.db, func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

// Delete removes a key from the store
func (s *BadgerStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	return transactions.WriteTxn(ctx, s.db, func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Keys lists every key with the given prefix
func (s *BadgerStorage) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := transactions.ReadTxn(ctx, s.db, func(txn *badger.Txn) error {
		keys = transactions.ScanKeys(txn, []byte(prefix))
		return nil
	})
	return keys, err
}
