package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ActionCounter load, drop and move commands issued per tier
	ActionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "colstore",
			Subsystem: "coordinator",
			Name:      "segment_action_total",
			Help:      "Total number of segment actions issued.",
		}, []string{"tier", "action"})

	// PendingGauge per-cycle counts of work that could not be planned
	PendingGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "colstore",
			Subsystem: "coordinator",
			Name:      "segment_pending_total",
			Help:      "Number of segment actions left unplanned in the last cycle.",
		}, []string{"tier", "reason"})

	// TierCapacityGauge total capacity per tier
	TierCapacityGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "colstore",
			Subsystem: "cluster",
			Name:      "tier_capacity_bytes",
			Help:      "Total segment capacity per tier.",
		}, []string{"tier"})

	// TierUsedGauge loaded plus loading bytes per tier
	TierUsedGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "colstore",
			Subsystem: "cluster",
			Name:      "tier_used_bytes",
			Help:      "Used segment bytes per tier.",
		}, []string{"tier"})
)
