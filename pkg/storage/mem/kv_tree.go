package mem

import (
	"bytes"
	"sync"

	"github.com/google/btree"
)

type treeItem struct {
	key   []byte
	value []byte
}

// Less returns true if the item key is less than the other.
func (item *treeItem) Less(other btree.Item) bool {
	return bytes.Compare(item.key, other.(*treeItem).key) < 0
}

// KV a btree-backed in-memory kv, used for tests and single-node setups
type KV struct {
	sync.RWMutex
	tree *btree.BTree
}

// NewKV return a mem kv
func NewKV() *KV {
	return &KV{
		tree: btree.New(64),
	}
}

// Set puts the key, value pair
func (kv *KV) Set(key, value []byte) error {
	kv.Lock()
	kv.tree.ReplaceOrInsert(&treeItem{
		key:   append([]byte{}, key...),
		value: append([]byte{}, value...),
	})
	kv.Unlock()
	return nil
}

// Get returns the value of key, nil if not exists
func (kv *KV) Get(key []byte) ([]byte, error) {
	kv.RLock()
	defer kv.RUnlock()

	item := kv.tree.Get(&treeItem{key: key})
	if item == nil {
		return nil, nil
	}

	return append([]byte{}, item.(*treeItem).value...), nil
}

// Delete removes the key
func (kv *KV) Delete(key []byte) error {
	kv.Lock()
	kv.tree.Delete(&treeItem{key: key})
	kv.Unlock()
	return nil
}

// RangePrefix iterate all keys with the prefix, break if fn returns false
func (kv *KV) RangePrefix(prefix []byte, fn func(key, value []byte) bool) error {
	kv.RLock()
	defer kv.RUnlock()

	kv.tree.AscendGreaterOrEqual(&treeItem{key: prefix}, func(i btree.Item) bool {
		item := i.(*treeItem)
		if !bytes.HasPrefix(item.key, prefix) {
			return false
		}

		return fn(item.key, item.value)
	})
	return nil
}

// Close release the kv
func (kv *KV) Close() error {
	return nil
}

// Count returns number of currently keys
func (kv *KV) Count() int {
	kv.RLock()
	value := kv.tree.Len()
	kv.RUnlock()
	return value
}
