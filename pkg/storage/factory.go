package storage

import (
	"net/url"

	"colstore.io/server/pkg/storage/badger"
	"colstore.io/server/pkg/storage/mem"
	"colstore.io/server/pkg/storage/redis"
	"github.com/fagongzi/log"
)

const (
	protocolMem    = "mem"
	protocolRedis  = "redis"
	protocolBadger = "badger"
)

// CreateStorage returns a storage by a protocol addr, e.g.
// redis://127.0.0.1:6379, badger:///var/colstore/catalog or mem://
func CreateStorage(protocolAddr string) (Storage, error) {
	u, err := url.Parse(protocolAddr)
	if err != nil {
		return nil, err
	}

	switch u.Scheme {
	case protocolMem:
		return NewKVStorage(mem.NewKV()), nil
	case protocolRedis:
		return NewKVStorage(redis.NewKV(u.Host)), nil
	case protocolBadger:
		kv, err := badger.NewKV(u.Path)
		if err != nil {
			return nil, err
		}
		return NewKVStorage(kv), nil
	}

	log.Fatalf("the schema %s is not support", u.Scheme)
	return nil, nil
}
