package badger

import (
	"github.com/dgraph-io/badger"
)

// KV a badger-backed local kv, used when the catalog lives on the
// coordinator host
type KV struct {
	db *badger.DB
}

// NewKV returns a local kv using badger at dir
func NewKV(dir string) (*KV, error) {
	opts := badger.DefaultOptions
	opts.Dir = dir
	opts.ValueDir = dir
	opts.ValueLogFileSize = 1024 * 1024 * 10
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &KV{db: db}, nil
}

// Set puts the key, value pair
func (kv *KV) Set(key, value []byte) error {
	return kv.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// Get returns the value of key, nil if not exists
func (kv *KV) Get(key []byte) ([]byte, error) {
	var value []byte
	err := kv.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}

			return err
		}

		data, err := item.Value()
		if err != nil {
			return err
		}

		value = append([]byte{}, data...)
		return nil
	})

	if err != nil {
		return nil, err
	}

	return value, nil
}

// Delete removes the key
func (kv *KV) Delete(key []byte) error {
	return kv.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// RangePrefix iterate all keys with the prefix, break if fn returns false
func (kv *KV) RangePrefix(prefix []byte, fn func(key, value []byte) bool) error {
	return kv.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			value, err := item.Value()
			if err != nil {
				return err
			}

			if !fn(item.Key(), value) {
				break
			}
		}

		return nil
	})
}

// Close release the badger db
func (kv *KV) Close() error {
	return kv.db.Close()
}
