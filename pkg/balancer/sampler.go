package balancer

import (
	"math/rand"

	"colstore.io/server/pkg/cluster"
	"colstore.io/server/pkg/meta"
)

// ReservoirSampler size-1 reservoir over a population discovered one item at
// a time. After n offers every offered item has been retained with
// probability 1/n, without materializing the population.
type ReservoirSampler struct {
	rnd  *rand.Rand
	n    int
	pick *cluster.BalancerSegmentHolder
}

// NewReservoirSampler returns a sampler using the given rand source
func NewReservoirSampler(rnd *rand.Rand) *ReservoirSampler {
	return &ReservoirSampler{rnd: rnd}
}

// Offer observe one (server, segment) pair
func (s *ReservoirSampler) Offer(server *cluster.ServerHolder, seg meta.Segment) {
	s.n++
	if s.rnd.Intn(s.n) == 0 {
		s.pick = &cluster.BalancerSegmentHolder{
			Server:  server,
			Segment: seg,
		}
	}
}

// Pick returns the retained pair, nil if nothing was offered
func (s *ReservoirSampler) Pick() *cluster.BalancerSegmentHolder {
	return s.pick
}

// Offered returns the population size seen so far
func (s *ReservoirSampler) Offered() int {
	return s.n
}

// RandomBalancerSegmentHolder samples one (server, segment) pair uniformly
// across all serving segments of all holders, regardless of how unevenly the
// segments are distributed between servers.
func RandomBalancerSegmentHolder(rnd *rand.Rand, holders []*cluster.ServerHolder) *cluster.BalancerSegmentHolder {
	sampler := NewReservoirSampler(rnd)
	for _, h := range holders {
		server := h
		h.ForeachServing(func(seg meta.Segment) bool {
			sampler.Offer(server, seg)
			return true
		})
	}
	return sampler.Pick()
}

// serverSampler size-1 reservoir over candidate servers, used to break ties
// uniformly without collecting the candidate set first
type serverSampler struct {
	rnd  *rand.Rand
	n    int
	pick *cluster.ServerHolder
}

func newServerSampler(rnd *rand.Rand) *serverSampler {
	return &serverSampler{rnd: rnd}
}

func (s *serverSampler) offer(h *cluster.ServerHolder) {
	s.n++
	if s.rnd.Intn(s.n) == 0 {
		s.pick = h
	}
}

func (s *serverSampler) reset() {
	s.n = 0
	s.pick = nil
}
