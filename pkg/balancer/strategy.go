package balancer

import (
	"fmt"
	"math/rand"
	"time"

	"colstore.io/server/pkg/cluster"
	"colstore.io/server/pkg/meta"
)

const (
	// StrategyUniform cost-agnostic uniform random strategy
	StrategyUniform = "uniform"
	// StrategyCost cost-based strategy
	StrategyCost = "cost"
)

// Strategy the pluggable placement policy. Every operation returns its empty
// result when no candidate is eligible, callers treat that as retry next
// cycle, never as an error.
type Strategy interface {
	// Name returns the strategy name
	Name() string
	// FindServerForNewReplica choose a destination for a new replica of the
	// segment, never a server already serving it. Returns nil if no
	// candidate is eligible.
	FindServerForNewReplica(seg meta.Segment, candidates []*cluster.ServerHolder) *cluster.ServerHolder
	// FindServerForBalancerMove choose a destination for a balance move,
	// independent of replication targets. Returns nil if no candidate is
	// eligible.
	FindServerForBalancerMove(seg meta.Segment, candidates []*cluster.ServerHolder) *cluster.ServerHolder
	// PickSegmentToMove select one currently-placed (server, segment) pair
	// as a move candidate, nil when no server holds a movable segment
	PickSegmentToMove(holders []*cluster.ServerHolder) *cluster.BalancerSegmentHolder
	// PickServersToDrop order the candidates for dropping the segment, the
	// caller drops from the front until the target count is met
	PickServersToDrop(seg meta.Segment, candidates []*cluster.ServerHolder) []*cluster.ServerHolder
	// EmitStats record utilization metrics of the tier, must not fail on
	// missing data
	EmitStats(tier string, stats *cluster.Stats, holders []*cluster.ServerHolder)
}

// CreateStrategy returns a strategy by name, seeded from the clock
func CreateStrategy(name string) (Strategy, error) {
	return CreateStrategyWithRand(name, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// CreateStrategyWithRand returns a strategy by name with the given rand
// source
func CreateStrategyWithRand(name string, rnd *rand.Rand) (Strategy, error) {
	switch name {
	case StrategyUniform:
		return NewUniformStrategy(rnd), nil
	case StrategyCost:
		return NewCostStrategy(rnd), nil
	}

	return nil, fmt.Errorf("strategy %s is not support", name)
}
