package balancer

import (
	"colstore.io/server/pkg/cluster"
	"colstore.io/server/pkg/meta"
)

// Filter is used for filter destination servers for a segment
type Filter interface {
	// FilterTarget returns true means skip this server as a destination
	FilterTarget(seg meta.Segment, h *cluster.ServerHolder) bool
}

func filterTarget(seg meta.Segment, h *cluster.ServerHolder, filters []Filter) bool {
	for _, filter := range filters {
		if filter.FilterTarget(seg, h) {
			return true
		}
	}
	return false
}

type servingFilter struct {
}

// NewServingFilter returns a filter that skips servers already serving the
// segment, a replica must never land on a server that holds one
func NewServingFilter() Filter {
	return &servingFilter{}
}

func (f *servingFilter) FilterTarget(seg meta.Segment, h *cluster.ServerHolder) bool {
	return h.IsServing(seg.ID()) || h.IsDropping(seg.ID())
}

type capacityFilter struct {
}

// NewCapacityFilter returns a filter that skips servers without room for
// the segment
func NewCapacityFilter() Filter {
	return &capacityFilter{}
}

func (f *capacityFilter) FilterTarget(seg meta.Segment, h *cluster.ServerHolder) bool {
	return !h.CanLoad(seg)
}
