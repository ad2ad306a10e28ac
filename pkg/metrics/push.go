package metrics

import (
	"time"

	"github.com/fagongzi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// MetricConfig is the metric configuration.
type MetricConfig struct {
	PushJob      string        `toml:"job" json:"job"`
	PushAddress  string        `toml:"address" json:"address"`
	PushInterval time.Duration `toml:"interval" json:"interval"`
}

// prometheusPushClient pushs metrics to Prometheus Pushgateway.
func prometheusPushClient(job, addr string, interval time.Duration) {
	for {
		err := push.FromGatherer(
			job, push.HostnameGroupingKey(),
			addr,
			prometheus.DefaultGatherer,
		)
		if err != nil {
			log.Errorf("push metrics to prometheus pushgateway failed with %+v", err)
		}

		time.Sleep(interval)
	}
}

// Push metircs in background.
func Push(cfg *MetricConfig) {
	if cfg.PushInterval == 0 || len(cfg.PushAddress) == 0 {
		log.Infof("disable prometheus push client")
		return
	}

	log.Info("start prometheus push client")

	interval := cfg.PushInterval
	go prometheusPushClient(cfg.PushJob, cfg.PushAddress, interval)
}
