package consul

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"colstore.io/server/pkg/meta"
	"github.com/stretchr/testify/assert"
)

func newTestServer(sid string) meta.ServerMeta {
	return meta.ServerMeta{
		ID:       sid,
		Addr:     "127.0.0.1:8080",
		Capacity: 100,
	}
}

func newTestRegistry() *Registry {
	return &Registry{
		pollInterval: time.Millisecond,
		stopC:        make(chan struct{}),
	}
}

func nextEvent(t *testing.T, eventC <-chan meta.ServerEvent) meta.ServerEvent {
	select {
	case evt := <-eventC:
		return evt
	case <-time.After(time.Second):
		assert.FailNow(t, "wait event timeout failed")
	}
	return meta.ServerEvent{}
}

func TestWatchMembershipDiff(t *testing.T) {
	r := newTestRegistry()

	var mu sync.Mutex
	current := []meta.ServerMeta{newTestServer("s1")}
	r.fetch = func() ([]meta.ServerMeta, error) {
		mu.Lock()
		defer mu.Unlock()
		return current, nil
	}

	eventC, err := r.Watch()
	assert.NoError(t, err, "watch failed")

	evt := nextEvent(t, eventC)
	assert.Equal(t, meta.ServerAdded, evt.Type, "check added event failed")
	assert.Equal(t, "s1", evt.Server.ID, "check added event failed")

	mu.Lock()
	current = []meta.ServerMeta{newTestServer("s2")}
	mu.Unlock()

	evt = nextEvent(t, eventC)
	assert.Equal(t, meta.ServerAdded, evt.Type, "check added event failed")
	assert.Equal(t, "s2", evt.Server.ID, "check added event failed")

	evt = nextEvent(t, eventC)
	assert.Equal(t, meta.ServerRemoved, evt.Type, "check removed event failed")
	assert.Equal(t, "s1", evt.Server.ID, "check removed event failed")

	assert.NoError(t, r.Close(), "close failed")
}

func TestWatchStopWithFullBuffer(t *testing.T) {
	r := newTestRegistry()
	r.fetch = func() ([]meta.ServerMeta, error) {
		var values []meta.ServerMeta
		for i := 0; i < 300; i++ {
			values = append(values, newTestServer(fmt.Sprintf("s%d", i)))
		}
		return values, nil
	}

	eventC, err := r.Watch()
	assert.NoError(t, err, "watch failed")

	// nobody consumes, the poll goroutine fills the buffer and blocks on the
	// next send, close must still stop it
	time.Sleep(time.Millisecond * 100)
	assert.NoError(t, r.Close(), "close failed")
	time.Sleep(time.Millisecond * 100)

	n := 0
	for range eventC {
		n++
	}
	assert.Equal(t, 128, n, "check stop with full buffer failed")
}
