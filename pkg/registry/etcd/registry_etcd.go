package etcd

import (
	"encoding/json"
	"fmt"
	"time"

	"colstore.io/server/pkg/meta"
	"github.com/coreos/etcd/clientv3"
	"github.com/coreos/etcd/mvcc/mvccpb"
	"github.com/fagongzi/log"
)

var (
	registryKeyPrefix = "registry-colstore-"
)

// Registry etcd registry
type Registry struct {
	opts   options
	client *clientv3.Client
	lessor clientv3.Lease

	stopC chan struct{}
}

// NewRegistry returns a etcd registry
func NewRegistry(client *clientv3.Client, opts ...Option) (*Registry, error) {
	reg := &Registry{}
	for _, opt := range opts {
		opt(&reg.opts)
	}

	reg.opts.adjust()

	reg.client = client
	reg.lessor = clientv3.NewLease(client)
	reg.stopC = make(chan struct{})
	return reg, nil
}

// Register register the server to etcd, and keepalive with a lease
func (r *Registry) Register(srv meta.ServerMeta) error {
	srv.AdjustTier()
	if err := srv.Validate(); err != nil {
		return err
	}

	ch, err := r.doRegistry(srv)
	if err != nil {
		return err
	}

	go func() {
		for {
			if ch == nil {
				ch, err = r.doRegistry(srv)
				if err != nil {
					log.Errorf("[registry-etcd]: retry failed with %+v, retry after 10s", err)
					time.Sleep(time.Second * 10)
					continue
				}

				log.Infof("[registry-etcd]: retry registry succeed")
			}

			select {
			case <-r.stopC:
				return
			case _, ok := <-ch:
				if !ok {
					log.Errorf("[registry-etcd]: lease keepalive failed, retry")
					break
				}
				continue
			case <-r.client.Ctx().Done():
				log.Errorf("[registry-etcd]: etcd server closed, retry")
			}

			ch = nil
		}
	}()

	return nil
}

// CurrentServers returns the currently registered servers
func (r *Registry) CurrentServers() ([]meta.ServerMeta, error) {
	resp, err := r.client.KV.Get(r.client.Ctx(),
		r.prefixKey(),
		clientv3.WithPrefix())
	if err != nil {
		return nil, err
	}

	var values []meta.ServerMeta
	for _, kv := range resp.Kvs {
		srv := meta.ServerMeta{}
		if err := json.Unmarshal(kv.Value, &srv); err != nil {
			log.Errorf("[registry-etcd]: decode %s failed with %+v",
				string(kv.Key),
				err)
			continue
		}
		values = append(values, srv)
	}
	return values, nil
}

// Watch translate etcd watch events on the registry prefix to membership
// events, delivered over a bounded channel with a single consumer
func (r *Registry) Watch() (<-chan meta.ServerEvent, error) {
	eventC := make(chan meta.ServerEvent, 128)
	watchC := r.client.Watch(r.client.Ctx(),
		r.prefixKey(),
		clientv3.WithPrefix(),
		clientv3.WithPrevKV())

	go func() {
		defer close(eventC)

		for {
			select {
			case <-r.stopC:
				return
			case resp, ok := <-watchC:
				if !ok {
					return
				}

				for _, evt := range resp.Events {
					value, ok := r.toServerEvent(evt)
					if !ok {
						continue
					}

					select {
					case eventC <- value:
					case <-r.stopC:
						return
					}
				}
			}
		}
	}()

	return eventC, nil
}

// Close stop the keepalive and the watch
func (r *Registry) Close() error {
	close(r.stopC)
	return nil
}

func (r *Registry) toServerEvent(evt *clientv3.Event) (meta.ServerEvent, bool) {
	value := meta.ServerEvent{}

	switch evt.Type {
	case mvccpb.PUT:
		value.Type = meta.ServerAdded
		if err := json.Unmarshal(evt.Kv.Value, &value.Server); err != nil {
			log.Errorf("[registry-etcd]: decode event %s failed with %+v",
				string(evt.Kv.Key),
				err)
			return value, false
		}
	case mvccpb.DELETE:
		value.Type = meta.ServerRemoved
		if evt.PrevKv == nil {
			return value, false
		}
		if err := json.Unmarshal(evt.PrevKv.Value, &value.Server); err != nil {
			log.Errorf("[registry-etcd]: decode event %s failed with %+v",
				string(evt.Kv.Key),
				err)
			return value, false
		}
	default:
		return value, false
	}

	return value, true
}

func (r *Registry) doRegistry(srv meta.ServerMeta) (<-chan *clientv3.LeaseKeepAliveResponse, error) {
	resp, err := r.lessor.Grant(r.client.Ctx(), r.opts.leaseTTL)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(&srv)
	if err != nil {
		return nil, err
	}

	_, err = r.client.KV.Put(r.client.Ctx(),
		r.registryKey(srv.ID),
		string(data),
		clientv3.WithLease(resp.ID))
	if err != nil {
		return nil, err
	}

	return r.lessor.KeepAlive(r.client.Ctx(), resp.ID)
}

func (r *Registry) prefixKey() string {
	return fmt.Sprintf("%s%s-", registryKeyPrefix, r.opts.group)
}

func (r *Registry) registryKey(id string) string {
	return fmt.Sprintf("%s%s-%s", registryKeyPrefix, r.opts.group, id)
}
