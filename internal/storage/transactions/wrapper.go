// Package transactions wraps badger transactions with context checks.
package transactions

import (
	"context"

	"github.com/dgraph-io/badger/v4"
)

// ReadTxn runs fn in a view transaction unless ctx is already done.
func ReadTxn(ctx context.Context, db *badger.DB, fn func(*badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return db.View(fn)
}

// WriteTxn runs fn in an update transaction. The commit is skipped when ctx is done by the
// time fn returns.
func WriteTxn(ctx context.Context, db *badger.DB, fn func(*badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return db.Update(func(txn *badger.Txn) error {
		if err := fn(txn); err != nil {
			return err
		}
		return ctx.Err()
	})
}

// GetKey copies a key's value out of a transaction. The badger error is returned as is.
func GetKey(txn *badger.Txn, key []byte) ([]byte, error) {
	item, err := txn.Get(key)
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

// ScanKeys collects every key under prefix without fetching values.
func ScanKeys(txn *badger.Txn, prefix []byte) []string {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false

	it := txn.NewIterator(opts)
	defer it.Close()

	keys := []string{}
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, string(it.Item().KeyCopy(nil)))
	}
	return keys
}
