package balancer

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"colstore.io/server/pkg/cluster"
	"colstore.io/server/pkg/meta"
)

const (
	// affinityWindow segments of one datasource closer than this are
	// considered adjacent, co-locating them on one server costs extra
	affinityWindow = int64(30 * 24 * time.Hour / time.Millisecond)
	affinityWeight = 0.5
)

// costStrategy scores candidate placements by utilization plus a proximity
// penalty for adjacent segments of the same datasource, picks the minimum
// cost candidate and breaks ties uniformly
type costStrategy struct {
	rnd     *rand.Rand
	filters []Filter
}

// NewCostStrategy returns the cost-based strategy
func NewCostStrategy(rnd *rand.Rand) Strategy {
	var filters []Filter
	filters = append(filters, NewServingFilter())
	filters = append(filters, NewCapacityFilter())

	return &costStrategy{
		rnd:     rnd,
		filters: filters,
	}
}

func (s *costStrategy) Name() string {
	return StrategyCost
}

func (s *costStrategy) FindServerForNewReplica(seg meta.Segment, candidates []*cluster.ServerHolder) *cluster.ServerHolder {
	return s.pickMinCost(seg, candidates)
}

func (s *costStrategy) FindServerForBalancerMove(seg meta.Segment, candidates []*cluster.ServerHolder) *cluster.ServerHolder {
	return s.pickMinCost(seg, candidates)
}

// PickSegmentToMove uniform sampling, the move candidate itself carries no
// cost, only its destination does
func (s *costStrategy) PickSegmentToMove(holders []*cluster.ServerHolder) *cluster.BalancerSegmentHolder {
	return RandomBalancerSegmentHolder(s.rnd, holders)
}

// PickServersToDrop fullest servers first, equally-utilized servers in
// random order so no server is systematically penalized
func (s *costStrategy) PickServersToDrop(seg meta.Segment, candidates []*cluster.ServerHolder) []*cluster.ServerHolder {
	values := make([]*cluster.ServerHolder, len(candidates))
	copy(values, candidates)

	s.rnd.Shuffle(len(values), func(i, j int) {
		values[i], values[j] = values[j], values[i]
	})
	sort.SliceStable(values, func(i, j int) bool {
		return values[i].UsedRatio() > values[j].UsedRatio()
	})
	return values
}

func (s *costStrategy) EmitStats(tier string, stats *cluster.Stats, holders []*cluster.ServerHolder) {
	for _, h := range holders {
		stats.AddToTieredStat(cluster.StatTierCapacity, tier, h.Meta.Capacity)
		stats.AddToTieredStat(cluster.StatTierUsed, tier, h.SizeUsed())
	}
}

func (s *costStrategy) pickMinCost(seg meta.Segment, candidates []*cluster.ServerHolder) *cluster.ServerHolder {
	minCost := math.Inf(1)
	sampler := newServerSampler(s.rnd)

	for _, h := range candidates {
		cost := s.cost(seg, h)
		if math.IsInf(cost, 1) || cost > minCost {
			continue
		}

		if cost < minCost {
			minCost = cost
			sampler.reset()
		}
		sampler.offer(h)
	}

	return sampler.pick
}

// cost of placing seg on h. Monotonic in utilization, +inf for a server
// already serving the segment or without room for it.
func (s *costStrategy) cost(seg meta.Segment, h *cluster.ServerHolder) float64 {
	if filterTarget(seg, h, s.filters) {
		return math.Inf(1)
	}

	cost := float64(h.SizeUsed()+seg.Size) / float64(h.Meta.Capacity)

	affinity := 0.0
	h.ForeachServing(func(other meta.Segment) bool {
		if other.Datasource != seg.Datasource {
			return true
		}

		gap := seg.Interval.Gap(other.Interval)
		if gap < affinityWindow {
			affinity += 1 - float64(gap)/float64(affinityWindow)
		}
		return true
	})

	return cost + affinityWeight*affinity
}
