package coordinator

import (
	"colstore.io/server/pkg/cluster"
)

// limiter bounds churn: a per-server in-flight cap, counting queues carried
// over from prior cycles, and a cluster-wide cap on commands issued in one
// cycle. Cycle-scoped like everything else in planning.
type limiter struct {
	maxInFlightPerNode int
	maxOpsPerCycle     int
	issued             int
}

func newLimiter(maxInFlightPerNode, maxOpsPerCycle int) *limiter {
	return &limiter{
		maxInFlightPerNode: maxInFlightPerNode,
		maxOpsPerCycle:     maxOpsPerCycle,
	}
}

// allow returns true if one more command may target the server
func (l *limiter) allow(h *cluster.ServerHolder) bool {
	if l.issued >= l.maxOpsPerCycle {
		return false
	}

	return h.LoadingCount()+h.DroppingCount() < l.maxInFlightPerNode
}

// record count one issued command
func (l *limiter) record() {
	l.issued++
}

// exhausted returns true if the cluster-wide cap is reached
func (l *limiter) exhausted() bool {
	return l.issued >= l.maxOpsPerCycle
}
