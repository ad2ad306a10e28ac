package metrics

import (
	"strings"

	"colstore.io/server/pkg/cluster"
)

// Sink flush cycle stats into the prometheus vectors. Issued actions are
// counters, unplanned work and tier sizes are gauges overwritten every
// cycle.
type Sink struct {
}

// NewSink returns a prometheus backed stats sink
func NewSink() *Sink {
	return &Sink{}
}

// Report report one (tier, stat) value
func (s *Sink) Report(tier, name string, value int64) {
	switch name {
	case cluster.StatTierCapacity:
		TierCapacityGauge.WithLabelValues(tier).Set(float64(value))
	case cluster.StatTierUsed:
		TierUsedGauge.WithLabelValues(tier).Set(float64(value))
	case cluster.StatAssigned, cluster.StatDropped, cluster.StatMoved:
		ActionCounter.WithLabelValues(tier, shortName(name)).Add(float64(value))
	default:
		PendingGauge.WithLabelValues(tier, shortName(name)).Set(float64(value))
	}
}

func shortName(name string) string {
	return strings.TrimSuffix(name, "Count")
}
