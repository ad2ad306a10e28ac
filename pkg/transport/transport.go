package transport

import (
	"hash/crc32"
	"sync"
	"time"

	"colstore.io/server/pkg/meta"
	"colstore.io/server/pkg/util"
	"github.com/fagongzi/goetty"
	"github.com/fagongzi/log"
)

// Transport issues load and drop commands to serving nodes. Commands are
// fire-and-forget, completion is observed on a later cycle via the node's
// inventory report, never via a blocking round-trip.
type Transport interface {
	// Start start the transport
	Start() error
	// Stop stop the transport
	Stop() error
	// AsyncLoad async send a load command to the server
	AsyncLoad(srv meta.ServerMeta, op uint64, seg meta.Segment) error
	// AsyncDrop async send a drop command to the server
	AsyncDrop(srv meta.ServerMeta, op uint64, seg meta.Segment) error
	// Inventory returns the latest inventory the server reported, nil if
	// it never reported
	Inventory(id string) *meta.InventoryMsg
}

type message struct {
	srv     meta.ServerMeta
	data    interface{}
	retries int
}

type transport struct {
	sync.RWMutex

	stopC       chan struct{}
	sendC       []chan message
	wg          *sync.WaitGroup
	mask        int
	conns       map[string]goetty.IOSessionPool
	inventories *sync.Map
}

// NewTransport create a node command transport with the given worker count,
// workers must be a power of two
func NewTransport(workers int) Transport {
	return &transport{
		mask:        workers - 1,
		conns:       make(map[string]goetty.IOSessionPool),
		inventories: &sync.Map{},
	}
}

func (t *transport) Start() error {
	t.Lock()
	defer t.Unlock()

	if t.stopC != nil {
		return nil
	}

	t.wg = &sync.WaitGroup{}
	t.stopC = make(chan struct{})
	t.sendC = make([]chan message, 0, t.mask+1)
	for i := 0; i < t.mask+1; i++ {
		c := make(chan message, 1024)
		t.sendC = append(t.sendC, c)
		t.wg.Add(1)
		go func(q chan message, idx int) {
			t.readyToSend(q, idx)
		}(c, i)
	}

	return nil
}

func (t *transport) Stop() error {
	t.Lock()
	defer t.Unlock()

	if t.stopC == nil {
		return nil
	}

	close(t.stopC)
	t.wg.Wait()

	t.stopC = nil
	t.wg = nil

	return nil
}

func (t *transport) AsyncLoad(srv meta.ServerMeta, op uint64, seg meta.Segment) error {
	return t.asyncSend(srv, &meta.LoadMsg{OP: op, Segment: seg})
}

func (t *transport) AsyncDrop(srv meta.ServerMeta, op uint64, seg meta.Segment) error {
	return t.asyncSend(srv, &meta.DropMsg{OP: op, Segment: seg})
}

func (t *transport) Inventory(id string) *meta.InventoryMsg {
	if value, ok := t.inventories.Load(id); ok {
		return value.(*meta.InventoryMsg)
	}
	return nil
}

func (t *transport) asyncSend(srv meta.ServerMeta, data interface{}) error {
	t.RLock()
	if t.stopC == nil {
		t.RUnlock()
		return meta.ErrStopped
	}

	hash := int(crc32.ChecksumIEEE([]byte(srv.ID)))
	t.sendC[t.mask&hash] <- message{
		srv:  srv,
		data: data,
	}
	t.RUnlock()
	return nil
}

func (t *transport) readyToSend(c chan message, index int) {
	log.Infof("transport[%d]: start", index)
	defer t.wg.Done()

	t.RLock()
	stopC := t.stopC
	t.RUnlock()

	for {
		select {
		case <-stopC:
			log.Infof("transport[%d]: stopped", index)
			return
		case msg := <-c:
			if err := t.doSend(msg); err != nil {
				log.Errorf("transport[%d]: send to %s failed with %+v",
					index,
					msg.srv.ID,
					err)

				// one delayed retry, after that the next cycle re-evaluates
				// against the node's inventory
				if msg.retries < 1 {
					msg.retries++
					util.DefaultTW.Schedule(time.Second, func(arg interface{}) {
						m := arg.(message)
						select {
						case <-stopC:
						case c <- m:
						}
					}, msg)
				}
			}
		}
	}
}

func (t *transport) doSend(msg message) error {
	conn, err := t.getConn(msg.srv)
	if err != nil {
		return err
	}

	err = conn.WriteAndFlush(msg.data)
	if err != nil {
		conn.Close()
	}
	t.putConn(msg.srv.ID, conn)
	return err
}

func (t *transport) getConn(srv meta.ServerMeta) (goetty.IOSession, error) {
	conn, err := t.getConnLocked(srv)
	if err != nil {
		return nil, err
	}

	if t.checkConnect(srv, conn) {
		return conn, nil
	}

	t.putConn(srv.ID, conn)
	return nil, meta.ErrServerNotFound
}

func (t *transport) putConn(id string, conn goetty.IOSession) {
	t.RLock()
	pool := t.conns[id]
	t.RUnlock()

	if pool != nil {
		pool.Put(conn)
	} else {
		conn.Close()
	}
}

func (t *transport) getConnLocked(srv meta.ServerMeta) (goetty.IOSession, error) {
	var err error

	t.RLock()
	pool := t.conns[srv.ID]
	t.RUnlock()

	if pool == nil {
		t.Lock()
		pool = t.conns[srv.ID]
		if pool == nil {
			pool, err = goetty.NewIOSessionPool(1, 1, func() (goetty.IOSession, error) {
				return t.createConn(srv)
			})

			if err != nil {
				t.Unlock()
				return nil, err
			}

			t.conns[srv.ID] = pool
		}
		t.Unlock()
	}

	return pool.Get()
}

func (t *transport) checkConnect(srv meta.ServerMeta, conn goetty.IOSession) bool {
	if nil == conn {
		return false
	}

	if conn.IsConnected() {
		return true
	}

	ok, err := conn.Connect()
	if err != nil {
		log.Errorf("transport: connect to %s failed with %+v",
			srv.ID,
			err)
		return false
	}

	// nodes push their inventory over the same connection
	go func() {
		for {
			data, err := conn.Read()
			if err != nil {
				return
			}

			if msg, ok := data.(*meta.InventoryMsg); ok {
				t.inventories.Store(msg.ServerID, msg)
			}
		}
	}()

	return ok
}

func (t *transport) createConn(srv meta.ServerMeta) (goetty.IOSession, error) {
	return goetty.NewConnector(srv.Addr,
		goetty.WithClientDecoder(meta.CmdDecoder),
		goetty.WithClientEncoder(meta.CmdEncoder)), nil
}
