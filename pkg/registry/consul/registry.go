package consul

import (
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"colstore.io/server/pkg/meta"
	"github.com/fagongzi/log"
	consulapi "github.com/hashicorp/consul/api"
)

var (
	serviceName = "colstore-server"
)

// Registry consul registry. Consul has no watch primitive over the plain
// HTTP api, membership changes are discovered by polling and diffing.
type Registry struct {
	cli          *consulapi.Client
	fetch        func() ([]meta.ServerMeta, error)
	pollInterval time.Duration

	stopC    chan struct{}
	stopOnce sync.Once
}

// NewRegistry returns a new consul registry
func NewRegistry(cli *consulapi.Client) (*Registry, error) {
	r := &Registry{
		cli:          cli,
		pollInterval: time.Second * 10,
		stopC:        make(chan struct{}),
	}
	r.fetch = r.CurrentServers
	return r, nil
}

// Register registers the server to consul with a health check
func (r *Registry) Register(srv meta.ServerMeta) error {
	srv.AdjustTier()
	if err := srv.Validate(); err != nil {
		return err
	}

	svc, err := r.service(srv)
	if err != nil {
		return err
	}

	return r.cli.Agent().ServiceRegister(svc)
}

// CurrentServers returns the currently healthy registered servers
func (r *Registry) CurrentServers() ([]meta.ServerMeta, error) {
	entries, _, err := r.cli.Health().Service(serviceName, "", true, nil)
	if err != nil {
		return nil, err
	}

	var values []meta.ServerMeta
	for _, entry := range entries {
		srv, ok := toServerMeta(entry.Service)
		if !ok {
			continue
		}
		values = append(values, srv)
	}
	return values, nil
}

// Watch poll the healthy service set and diff it into membership events
func (r *Registry) Watch() (<-chan meta.ServerEvent, error) {
	eventC := make(chan meta.ServerEvent, 128)

	go func() {
		defer close(eventC)

		known := make(map[string]meta.ServerMeta)
		for {
			select {
			case <-r.stopC:
				return
			case <-time.After(r.pollInterval):
			}

			current, err := r.fetch()
			if err != nil {
				log.Errorf("[registry-consul]: poll failed with %+v", err)
				continue
			}

			seen := make(map[string]struct{}, len(current))
			for _, srv := range current {
				seen[srv.ID] = struct{}{}
				if _, ok := known[srv.ID]; !ok {
					known[srv.ID] = srv
					select {
					case eventC <- meta.ServerEvent{Type: meta.ServerAdded, Server: srv}:
					case <-r.stopC:
						return
					}
				}
			}

			for id, srv := range known {
				if _, ok := seen[id]; !ok {
					delete(known, id)
					select {
					case eventC <- meta.ServerEvent{Type: meta.ServerRemoved, Server: srv}:
					case <-r.stopC:
						return
					}
				}
			}
		}
	}()

	return eventC, nil
}

// Close stop the poll loop
func (r *Registry) Close() error {
	r.stopOnce.Do(func() {
		close(r.stopC)
	})
	return nil
}

func (r *Registry) service(srv meta.ServerMeta) (*consulapi.AgentServiceRegistration, error) {
	host, portstr, err := net.SplitHostPort(srv.Addr)
	if err != nil {
		return nil, err
	}

	port, err := strconv.Atoi(portstr)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(&srv)
	if err != nil {
		return nil, err
	}

	svc := new(consulapi.AgentServiceRegistration)
	svc.ID = srv.ID
	svc.Address = host
	svc.Port = port
	svc.Name = serviceName
	svc.Tags = []string{string(data)}
	svc.Check = r.healthCheck(svc)

	return svc, nil
}

func (r *Registry) healthCheck(svc *consulapi.AgentServiceRegistration) *consulapi.AgentServiceCheck {
	c := new(consulapi.AgentServiceCheck)
	c.TCP = fmt.Sprintf("%s:%d", svc.Address, svc.Port)
	c.Timeout = "5s"
	c.Interval = "5s"
	return c
}

func toServerMeta(svc *consulapi.AgentService) (meta.ServerMeta, bool) {
	srv := meta.ServerMeta{}
	if len(svc.Tags) == 0 {
		return srv, false
	}

	if err := json.Unmarshal([]byte(svc.Tags[0]), &srv); err != nil {
		log.Errorf("[registry-consul]: decode service %s failed with %+v",
			svc.ID,
			err)
		return srv, false
	}
	return srv, true
}
