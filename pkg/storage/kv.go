package storage

// KV the byte kv every storage backend provides, the catalog is layered on
// top of it
type KV interface {
	// Set puts the key, value pair
	Set(key, value []byte) error
	// Get returns the value of key, nil if not exists
	Get(key []byte) ([]byte, error)
	// Delete removes the key
	Delete(key []byte) error
	// RangePrefix iterate all keys with the prefix, break if fn returns
	// false
	RangePrefix(prefix []byte, fn func(key, value []byte) bool) error
	// Close release the backend
	Close() error
}
