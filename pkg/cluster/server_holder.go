package cluster

import (
	"colstore.io/server/pkg/meta"
)

// ServerHolder one serving node's cycle-scoped bookkeeping: its identity,
// capacity, resident segments and in-flight load/drop queues. Rebuilt every
// coordination cycle from discovery and node inventory, never persisted.
type ServerHolder struct {
	Meta meta.ServerMeta

	loaded   map[string]meta.Segment
	loading  map[string]meta.Segment
	dropping map[string]meta.Segment
}

// NewServerHolder returns a server holder with the given meta
func NewServerHolder(m meta.ServerMeta) *ServerHolder {
	m.AdjustTier()
	return &ServerHolder{
		Meta:     m,
		loaded:   make(map[string]meta.Segment),
		loading:  make(map[string]meta.Segment),
		dropping: make(map[string]meta.Segment),
	}
}

// AddLoaded record a segment reported resident on the server
func (h *ServerHolder) AddLoaded(seg meta.Segment) {
	h.loaded[seg.ID()] = seg
}

// AddLoading record a segment queued to load, issued this or a prior cycle
func (h *ServerHolder) AddLoading(seg meta.Segment) {
	h.loading[seg.ID()] = seg
}

// AddDropping record a segment queued to drop
func (h *ServerHolder) AddDropping(seg meta.Segment) {
	h.dropping[seg.ID()] = seg
	delete(h.loading, seg.ID())
}

// IsServing returns true if the segment is resident or queued to load and
// not queued to drop
func (h *ServerHolder) IsServing(id string) bool {
	if _, ok := h.dropping[id]; ok {
		return false
	}

	if _, ok := h.loaded[id]; ok {
		return true
	}

	_, ok := h.loading[id]
	return ok
}

// IsLoaded returns true if the segment is resident on the server
func (h *ServerHolder) IsLoaded(id string) bool {
	_, ok := h.loaded[id]
	return ok
}

// IsDropping returns true if the segment is queued to drop
func (h *ServerHolder) IsDropping(id string) bool {
	_, ok := h.dropping[id]
	return ok
}

// SizeUsed bytes of resident plus queued-to-load segments
func (h *ServerHolder) SizeUsed() int64 {
	var value int64
	for _, seg := range h.loaded {
		value += seg.Size
	}
	for _, seg := range h.loading {
		value += seg.Size
	}
	return value
}

// Available bytes left before reaching capacity, may be negative while a
// drop is in flight
func (h *ServerHolder) Available() int64 {
	return h.Meta.Capacity - h.SizeUsed()
}

// UsedRatio fraction of capacity used, in [0, +inf)
func (h *ServerHolder) UsedRatio() float64 {
	if h.Meta.Capacity == 0 {
		return 1
	}

	return float64(h.SizeUsed()) / float64(h.Meta.Capacity)
}

// CanLoad returns true if the segment fits in the remaining capacity
func (h *ServerHolder) CanLoad(seg meta.Segment) bool {
	return h.Available() >= seg.Size
}

// LoadingCount number of in-flight loads
func (h *ServerHolder) LoadingCount() int {
	return len(h.loading)
}

// DroppingCount number of in-flight drops
func (h *ServerHolder) DroppingCount() int {
	return len(h.dropping)
}

// SegmentCount number of segments the holder is serving
func (h *ServerHolder) SegmentCount() int {
	n := 0
	for id := range h.loaded {
		if _, ok := h.dropping[id]; ok {
			continue
		}
		n++
	}
	for id := range h.loading {
		if _, ok := h.loaded[id]; ok {
			continue
		}
		if _, ok := h.dropping[id]; ok {
			continue
		}
		n++
	}
	return n
}

// ForeachServing do fn on every serving segment, break if fn returns false
func (h *ServerHolder) ForeachServing(fn func(meta.Segment) bool) {
	for id, seg := range h.loaded {
		if _, ok := h.dropping[id]; ok {
			continue
		}
		if !fn(seg) {
			return
		}
	}

	for id, seg := range h.loading {
		if _, ok := h.loaded[id]; ok {
			continue
		}
		if _, ok := h.dropping[id]; ok {
			continue
		}
		if !fn(seg) {
			return
		}
	}
}

// BalancerSegmentHolder a (server, segment) pair picked as a move candidate,
// produced and consumed within one cycle
type BalancerSegmentHolder struct {
	Server  *ServerHolder
	Segment meta.Segment
}
