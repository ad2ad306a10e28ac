package redis

import (
	"time"

	"github.com/garyburd/redigo/redis"
)

// KV a redis-backed kv, used when the catalog is shared between the
// coordinator and the ingestion side
type KV struct {
	pool *redis.Pool
}

// NewKV returns a kv using the redis server at addr
func NewKV(addr string) *KV {
	return &KV{
		pool: &redis.Pool{
			MaxActive:   8,
			MaxIdle:     8,
			IdleTimeout: time.Minute,
			Wait:        true,
			Dial: func() (redis.Conn, error) {
				return redis.Dial("tcp",
					addr,
					redis.DialWriteTimeout(time.Second*10),
					redis.DialConnectTimeout(time.Second*10),
					redis.DialReadTimeout(time.Second*30))
			},
		},
	}
}

// Set puts the key, value pair
func (kv *KV) Set(key, value []byte) error {
	conn := kv.pool.Get()
	defer conn.Close()

	_, err := conn.Do("SET", key, value)
	return err
}

// Get returns the value of key, nil if not exists
func (kv *KV) Get(key []byte) ([]byte, error) {
	conn := kv.pool.Get()
	defer conn.Close()

	value, err := redis.Bytes(conn.Do("GET", key))
	if err != nil {
		if err == redis.ErrNil {
			return nil, nil
		}

		return nil, err
	}

	return value, nil
}

// Delete removes the key
func (kv *KV) Delete(key []byte) error {
	conn := kv.pool.Get()
	defer conn.Close()

	_, err := conn.Do("DEL", key)
	return err
}

// RangePrefix iterate all keys with the prefix, break if fn returns false
func (kv *KV) RangePrefix(prefix []byte, fn func(key, value []byte) bool) error {
	conn := kv.pool.Get()
	defer conn.Close()

	match := append(append([]byte{}, prefix...), '*')
	cursor := int64(0)
	for {
		values, err := redis.Values(conn.Do("SCAN", cursor, "MATCH", match, "COUNT", 128))
		if err != nil {
			return err
		}

		cursor, err = redis.Int64(values[0], nil)
		if err != nil {
			return err
		}

		keys, err := redis.ByteSlices(values[1], nil)
		if err != nil {
			return err
		}

		for _, key := range keys {
			value, err := redis.Bytes(conn.Do("GET", key))
			if err != nil {
				if err == redis.ErrNil {
					continue
				}

				return err
			}

			if !fn(key, value) {
				return nil
			}
		}

		if cursor == 0 {
			return nil
		}
	}
}

// Close release the pool
func (kv *KV) Close() error {
	return kv.pool.Close()
}
