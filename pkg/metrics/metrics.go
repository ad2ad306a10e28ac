package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	prometheus.Register(ActionCounter)
	prometheus.Register(PendingGauge)
	prometheus.Register(TierCapacityGauge)
	prometheus.Register(TierUsedGauge)
}
