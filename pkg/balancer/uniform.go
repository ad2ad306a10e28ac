package balancer

import (
	"math/rand"

	"colstore.io/server/pkg/cluster"
	"colstore.io/server/pkg/meta"
)

// uniformStrategy cost-agnostic strategy, every eligible candidate is picked
// with equal probability
type uniformStrategy struct {
	rnd     *rand.Rand
	filters []Filter
}

// NewUniformStrategy returns the uniform random strategy
func NewUniformStrategy(rnd *rand.Rand) Strategy {
	var filters []Filter
	filters = append(filters, NewServingFilter())
	filters = append(filters, NewCapacityFilter())

	return &uniformStrategy{
		rnd:     rnd,
		filters: filters,
	}
}

func (s *uniformStrategy) Name() string {
	return StrategyUniform
}

func (s *uniformStrategy) FindServerForNewReplica(seg meta.Segment, candidates []*cluster.ServerHolder) *cluster.ServerHolder {
	return s.pickTarget(seg, candidates)
}

func (s *uniformStrategy) FindServerForBalancerMove(seg meta.Segment, candidates []*cluster.ServerHolder) *cluster.ServerHolder {
	return s.pickTarget(seg, candidates)
}

func (s *uniformStrategy) PickSegmentToMove(holders []*cluster.ServerHolder) *cluster.BalancerSegmentHolder {
	return RandomBalancerSegmentHolder(s.rnd, holders)
}

func (s *uniformStrategy) PickServersToDrop(seg meta.Segment, candidates []*cluster.ServerHolder) []*cluster.ServerHolder {
	values := make([]*cluster.ServerHolder, len(candidates))
	copy(values, candidates)

	s.rnd.Shuffle(len(values), func(i, j int) {
		values[i], values[j] = values[j], values[i]
	})
	return values
}

func (s *uniformStrategy) EmitStats(tier string, stats *cluster.Stats, holders []*cluster.ServerHolder) {
}

func (s *uniformStrategy) pickTarget(seg meta.Segment, candidates []*cluster.ServerHolder) *cluster.ServerHolder {
	sampler := newServerSampler(s.rnd)
	for _, h := range candidates {
		if filterTarget(seg, h, s.filters) {
			continue
		}
		sampler.offer(h)
	}
	return sampler.pick
}
