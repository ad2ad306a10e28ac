package mem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKVSetGetDelete(t *testing.T) {
	kv := NewKV()

	assert.NoError(t, kv.Set([]byte("k1"), []byte("v1")), "set failed")

	value, err := kv.Get([]byte("k1"))
	assert.NoError(t, err, "get failed")
	assert.Equal(t, []byte("v1"), value, "get failed")

	value, err = kv.Get([]byte("missing"))
	assert.NoError(t, err, "get missing failed")
	assert.Nil(t, value, "get missing failed")

	assert.NoError(t, kv.Delete([]byte("k1")), "delete failed")
	assert.Equal(t, 0, kv.Count(), "delete failed")
}

func TestKVRangePrefix(t *testing.T) {
	kv := NewKV()

	kv.Set([]byte("a/1"), []byte("1"))
	kv.Set([]byte("a/2"), []byte("2"))
	kv.Set([]byte("b/1"), []byte("3"))

	var keys []string
	err := kv.RangePrefix([]byte("a/"), func(key, value []byte) bool {
		keys = append(keys, string(key))
		return true
	})
	assert.NoError(t, err, "range failed")
	assert.Equal(t, []string{"a/1", "a/2"}, keys, "range failed")

	keys = nil
	kv.RangePrefix([]byte("a/"), func(key, value []byte) bool {
		keys = append(keys, string(key))
		return false
	})
	assert.Equal(t, 1, len(keys), "check range break failed")
}
