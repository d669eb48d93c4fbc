// ABOUTME: Badger-backed KV for the diary store.
// ABOUTME: Read-modify-write runs in a badger transaction and retries on conflict.
package storage

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v3"
)

const badgerMaxRetries = 10

// BadgerKV implements KV with an embedded Badger database.
type BadgerKV struct {
	db *badger.DB
	// mu serializes updates so in-process writers never hit ErrConflict.
	mu sync.Mutex
}

// OpenBadger opens a Badger diary store in dir.
func OpenBadger(dir string) (*KVStore, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return NewKVStore(&BadgerKV{db: db}), nil
}

// OpenBadgerInMemory opens a diary store that keeps everything in memory.
func OpenBadgerInMemory() (*KVStore, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return NewKVStore(&BadgerKV{db: db}), nil
}

func (b *BadgerKV) Get(key []byte) ([]byte, error) {
	var val []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	return val, err
}

func (b *BadgerKV) Update(key []byte, fn func(old []byte) ([]byte, error)) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var err error
	for attempt := 0; attempt < badgerMaxRetries; attempt++ {
		err = b.db.Update(func(txn *badger.Txn) error {
			var old []byte
			item, err := txn.Get(key)
			switch {
			case err == nil:
				if old, err = item.ValueCopy(nil); err != nil {
					return err
				}
			case !errors.Is(err, badger.ErrKeyNotFound):
				return err
			}
			val, err := fn(old)
			if err != nil {
				return err
			}
			return txn.Set(key, val)
		})
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func (b *BadgerKV) Scan(prefix []byte, fn func(key, value []byte) error) error {
	return b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(item.KeyCopy(nil), val); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *BadgerKV) Close() error {
	return b.db.Close()
}
