package main

import (
	"flag"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"colstore.io/server/pkg/api"
	"colstore.io/server/pkg/balancer"
	"colstore.io/server/pkg/coordinator"
	"colstore.io/server/pkg/id"
	"colstore.io/server/pkg/metrics"
	"colstore.io/server/pkg/registry"
	"colstore.io/server/pkg/storage"
	"colstore.io/server/pkg/transport"
	"colstore.io/server/pkg/util"
	"github.com/fagongzi/log"
)

var (
	waitSeconds          = flag.Int("wait", 0, "wait seconds")
	nodeID               = flag.Uint("id", 0, "Node ID")
	addr                 = flag.String("addr", "127.0.0.1:8080", "Addr: management http server")
	addrStorage          = flag.String("addr-store", "mem://", "Addr: catalog storage address with protocol")
	addrRegistry         = flag.String("addr-registry", "etcd://127.0.0.1:2379", "Addr: server registry address with protocol")
	addrPPROF            = flag.String("addr-pprof", "", "Addr: pprof addr")
	cpu                  = flag.Int("cpu", 0, "Limit: schedule threads count")
	strategy             = flag.String("strategy", balancer.StrategyUniform, "Balancer strategy: uniform or cost")
	cycleIntervalSec     = flag.Int("cycle-interval", 60, "Interval(sec): reconciliation cycle")
	maxInFlightPerNode   = flag.Int("max-inflight-node", 8, "Limit: in-flight loads plus drops per serving node")
	maxOpsPerCycle       = flag.Int("max-ops-cycle", 256, "Limit: commands issued per cycle")
	maxBalanceMoves      = flag.Int("max-balance-moves", 5, "Limit: balance moves per tier per cycle, negative disables balancing")
	transportWorkerCount = flag.Int("transport-worker", 4, "transport worker count, must be a power of two")

	// metrics
	prometheusJob             = flag.String("metrics-job", "colstore", "Prometheus job name")
	prometheusPushgateway     = flag.String("metrics-push-addr", "", "Prometheus pushgateway address")
	prometheusPushIntervalSec = flag.Int("metrics-push-interval", 0, "Prometheus metrics push interval in seconds")

	version = flag.Bool("version", false, "Show version info")
)

func main() {
	flag.Parse()
	if *version && util.PrintVersion() {
		os.Exit(0)
	}

	if *waitSeconds > 0 {
		time.Sleep(time.Second * time.Duration(*waitSeconds))
	}

	log.InitLog()

	if *cpu == 0 {
		runtime.GOMAXPROCS(runtime.NumCPU())
	} else {
		runtime.GOMAXPROCS(*cpu)
	}

	if *addrPPROF != "" {
		go func() {
			log.Errorf("start pprof failed, errors:\n%+v",
				http.ListenAndServe(*addrPPROF, nil))
		}()
	}

	metrics.Push(&metrics.MetricConfig{
		PushJob:      *prometheusJob,
		PushAddress:  *prometheusPushgateway,
		PushInterval: time.Second * time.Duration(*prometheusPushIntervalSec),
	})

	store, err := storage.CreateStorage(*addrStorage)
	if err != nil {
		log.Fatalf("init storage failed with %+v", err)
	}

	reg, err := registry.NewRegistry(*addrRegistry)
	if err != nil {
		log.Fatalf("init registry failed with %+v", err)
	}

	strategyValue, err := balancer.CreateStrategy(*strategy)
	if err != nil {
		log.Fatalf("init strategy failed with %+v", err)
	}

	trans := transport.NewTransport(*transportWorkerCount)
	if err := trans.Start(); err != nil {
		log.Fatalf("start transport failed with %+v", err)
	}

	runner := coordinator.NewRunner(store,
		reg,
		trans,
		trans,
		coordinator.NewStorageRuleSource(store),
		metrics.NewSink(),
		strategyValue,
		id.NewSnowflakeGenerator(uint16(*nodeID)),
		coordinator.WithInterval(time.Second*time.Duration(*cycleIntervalSec)),
		coordinator.WithMaxInFlightPerNode(*maxInFlightPerNode),
		coordinator.WithMaxOpsPerCycle(*maxOpsPerCycle),
		coordinator.WithMaxBalanceMoves(*maxBalanceMoves))
	if err := runner.Start(); err != nil {
		log.Fatalf("start coordinator failed with %+v", err)
	}

	apiServer := api.NewServer(api.Cfg{Addr: *addr}, store, reg, runner)
	go func() {
		if err := apiServer.Start(); err != nil {
			log.Errorf("start api server failed with %+v", err)
		}
	}()

	waitStop(runner, trans, reg, apiServer)
}

func waitStop(runner *coordinator.Runner, trans transport.Transport, reg registry.Registry, apiServer *api.Server) {
	sc := make(chan os.Signal, 1)
	signal.Notify(sc,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	sig := <-sc
	apiServer.Stop()
	runner.Stop()
	trans.Stop()
	reg.Close()
	log.Infof("exit: signal=<%d>.", sig)
	switch sig {
	case syscall.SIGTERM:
		log.Infof("exit: bye :-).")
		os.Exit(0)
	default:
		log.Infof("exit: bye :-(.")
		os.Exit(1)
	}
}
