package coordinator

import (
	"context"
	"sync"
	"time"

	"colstore.io/server/pkg/balancer"
	"colstore.io/server/pkg/cluster"
	"colstore.io/server/pkg/id"
	"colstore.io/server/pkg/meta"
	"github.com/fagongzi/log"
	"github.com/fagongzi/util/task"
)

// Runner the reconciliation loop. Each cycle gathers the cluster state,
// computes rule-derived targets, plans a bounded action set, dispatches it
// fire-and-forget and flushes stats. Cycles never overlap and carry no
// state across restarts, everything is rebuilt from the catalog and
// discovery.
type Runner struct {
	sync.Mutex

	opts       options
	catalog    Catalog
	discovery  Discovery
	inventory  Inventory
	commander  Commander
	ruleSource RuleSource
	sink       StatsSink
	strategy   balancer.Strategy
	idGen      id.Generator

	runner    *task.Runner
	eventC    <-chan meta.ServerEvent
	tasks     []uint64
	running   bool
	lastStats *cluster.Stats
}

// NewRunner returns a coordinator runner
func NewRunner(catalog Catalog,
	discovery Discovery,
	inventory Inventory,
	commander Commander,
	ruleSource RuleSource,
	sink StatsSink,
	strategy balancer.Strategy,
	idGen id.Generator,
	opts ...Option) *Runner {
	r := &Runner{
		catalog:    catalog,
		discovery:  discovery,
		inventory:  inventory,
		commander:  commander,
		ruleSource: ruleSource,
		sink:       sink,
		strategy:   strategy,
		idGen:      idGen,
		runner:     task.NewRunner(),
	}

	for _, opt := range opts {
		opt(&r.opts)
	}
	r.opts.adjust()

	return r
}

// Start start the loop
func (r *Runner) Start() error {
	r.Lock()
	defer r.Unlock()

	if r.running {
		log.Warnf("coordinator: runner is already started")
		return nil
	}

	eventC, err := r.discovery.Watch()
	if err != nil {
		return err
	}
	r.eventC = eventC

	taskID, err := r.runner.RunCancelableTask(r.runLoop)
	if err != nil {
		return err
	}

	r.tasks = append(r.tasks, taskID)
	r.running = true
	log.Infof("coordinator: runner started, cycle interval %s", r.opts.interval)
	return nil
}

// Stop stop the loop
func (r *Runner) Stop() {
	r.Lock()
	defer r.Unlock()

	if !r.running {
		return
	}

	for _, taskID := range r.tasks {
		r.runner.StopCancelableTask(taskID)
	}
	r.running = false
	log.Infof("coordinator: runner stopped")
}

func (r *Runner) runLoop(ctx context.Context) {
	ticker := time.NewTicker(r.opts.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Infof("coordinator: loop exit")
			return
		case <-ticker.C:
			r.RunCycle(time.Now())
		}
	}
}

// RunCycle run one full reconciliation cycle at now. Exported so the HTTP
// api can trigger a cycle manually. The mutex keeps cycles from
// overlapping, the next cycle starts only after this one has dispatched
// all of its commands.
func (r *Runner) RunCycle(now time.Time) *cluster.Stats {
	r.Lock()
	defer r.Unlock()

	stats := cluster.NewStats()

	if err := r.ruleSource.Refresh(); err != nil {
		// stale rules are tolerated, wrong actions are not
		log.Errorf("coordinator: refresh rules failed with %+v, cycle skipped", err)
		return stats
	}

	snap, err := r.gather(stats)
	if err != nil {
		log.Errorf("coordinator: gather failed with %+v, cycle skipped", err)
		return stats
	}

	lim := newLimiter(r.opts.maxInFlightPerNode, r.opts.maxOpsPerCycle)
	actions := r.plan(snap, now, stats, lim)
	r.issue(actions)
	r.report(stats)
	r.lastStats = stats

	log.Debugf("coordinator: cycle done, %d segments, %d servers, %d actions",
		len(snap.segments),
		len(snap.byID),
		len(actions))
	return stats
}

// issue dispatch the planned actions, failures are logged and re-evaluated
// next cycle, there is no retry queue
func (r *Runner) issue(actions []action) {
	for _, a := range actions {
		op, err := r.idGen.Gen()
		if err != nil {
			log.Errorf("coordinator: allocate op id failed with %+v", err)
			continue
		}

		switch a.kind {
		case actionLoad:
			err = r.commander.AsyncLoad(a.srv, op, a.seg)
		case actionDrop:
			err = r.commander.AsyncDrop(a.srv, op, a.seg)
		}

		if err != nil {
			log.Errorf("coordinator: issue op %d to %s failed with %+v",
				op,
				a.srv.ID,
				err)
		}
	}
}

// LastStats returns the stats of the most recent completed cycle, nil
// before the first one
func (r *Runner) LastStats() *cluster.Stats {
	r.Lock()
	defer r.Unlock()

	return r.lastStats
}

func (r *Runner) report(stats *cluster.Stats) {
	stats.Foreach(func(name, tier string, value int64) {
		r.sink.Report(tier, name, value)
	})
}
