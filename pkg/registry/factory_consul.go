package registry

import (
	"net/url"

	"colstore.io/server/pkg/registry/consul"
	consulapi "github.com/hashicorp/consul/api"
)

func newConsulRegistry(u *url.URL) (Registry, error) {
	cfg := consulapi.DefaultConfig()
	cfg.Address = u.Host

	cli, err := consulapi.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return consul.NewRegistry(cli)
}
