package registry

import (
	"net/url"

	"github.com/fagongzi/log"
)

var (
	protocolEtcd   = "etcd"
	protocolConsul = "consul"
)

// NewRegistry returns a registry by url, e.g. etcd://127.0.0.1:2379 or
// consul://127.0.0.1:8500
func NewRegistry(addr string) (Registry, error) {
	u, err := url.Parse(addr)
	if err != nil {
		return nil, err
	}

	switch u.Scheme {
	case protocolEtcd:
		return newEtcdRegistry(u)
	case protocolConsul:
		return newConsulRegistry(u)
	}

	log.Fatalf("the schema %s is not support", u.Scheme)
	return nil, nil
}
