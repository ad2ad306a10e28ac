package coordinator

import (
	"time"

	"colstore.io/server/pkg/cluster"
	"colstore.io/server/pkg/meta"
	"colstore.io/server/pkg/rule"
)

const (
	actionLoad = iota
	actionDrop
)

// action one planned command, dispatched in the issuing phase
type action struct {
	kind int
	srv  meta.ServerMeta
	seg  meta.Segment
}

// plan compare the rule-derived targets against the snapshot and produce a
// bounded action set. Holders are mutated to reflect planned actions, so a
// snapshot that already reflects in-flight state plans nothing twice.
func (r *Runner) plan(snap *snapshot, now time.Time, stats *cluster.Stats, lim *limiter) []action {
	var actions []action

	for _, seg := range snap.segments {
		if lim.exhausted() {
			break
		}

		fate := rule.Evaluate(&seg, now, r.ruleSource.RulesFor(seg.Datasource), r.opts.defaultFate)
		if fate.Drop {
			actions = r.planDrop(snap, seg, nil, stats, lim, actions)
			continue
		}

		actions = r.planReplicas(snap, seg, fate, stats, lim, actions)
		actions = r.planDrop(snap, seg, fate.Replicants, stats, lim, actions)
	}

	actions = r.planBalance(snap, stats, lim, actions)

	for tier, holders := range snap.tiers {
		r.strategy.EmitStats(tier, stats, holders)
	}

	return actions
}

// planReplicas assign missing replicas per tier
func (r *Runner) planReplicas(snap *snapshot, seg meta.Segment, fate rule.Fate, stats *cluster.Stats, lim *limiter, actions []action) []action {
	id := seg.ID()

	for tier, target := range fate.Replicants {
		holders := snap.tierHolders(tier)
		current := snap.servingCount(tier, id)

		for current < target {
			h := r.strategy.FindServerForNewReplica(seg, holders)
			if h == nil {
				// not fatal, recorded and retried next cycle
				stats.AddToTieredStat(cluster.StatUnassigned, tier, int64(target-current))
				break
			}

			if !lim.allow(h) {
				stats.AddToTieredStat(cluster.StatDeferred, tier, int64(target-current))
				break
			}

			h.AddLoading(seg)
			lim.record()
			stats.AddToTieredStat(cluster.StatAssigned, tier, 1)
			actions = append(actions, action{kind: actionLoad, srv: h.Meta, seg: seg})
			current++
		}
	}

	return actions
}

// planDrop drop the segment where it is over-replicated, targets is nil to
// drop it everywhere
func (r *Runner) planDrop(snap *snapshot, seg meta.Segment, targets map[string]int, stats *cluster.Stats, lim *limiter, actions []action) []action {
	id := seg.ID()

	for tier := range snap.tiers {
		target := 0
		if targets != nil {
			target = targets[tier]
		}

		serving := snap.servingHolders(tier, id)
		if len(serving) <= target {
			continue
		}

		// resident copies drain first, a copy still loading is the in-flight
		// destination of a move or assignment and dropping it cancels that
		// work instead of completing it
		ordered := r.strategy.PickServersToDrop(seg, serving)
		n := 0
		var pending []*cluster.ServerHolder
		for _, h := range ordered {
			if h.IsLoaded(id) {
				ordered[n] = h
				n++
			} else {
				pending = append(pending, h)
			}
		}
		ordered = append(ordered[:n], pending...)

		current := len(serving)
		for _, h := range ordered {
			if current <= target {
				break
			}

			if !lim.allow(h) {
				stats.AddToTieredStat(cluster.StatDeferred, tier, int64(current-target))
				break
			}

			h.AddDropping(seg)
			lim.record()
			stats.AddToTieredStat(cluster.StatDropped, tier, 1)
			actions = append(actions, action{kind: actionDrop, srv: h.Meta, seg: seg})
			current--
		}
	}

	return actions
}

// planBalance a fixed small number of moves per tier to reduce utilization
// skew. A move loads the segment on the destination, the source copy drains
// on a later cycle once the tier is over-replicated.
func (r *Runner) planBalance(snap *snapshot, stats *cluster.Stats, lim *limiter, actions []action) []action {
	for tier, holders := range snap.tiers {
		if len(holders) < 2 {
			continue
		}

		for i := 0; i < r.opts.maxBalanceMoves; i++ {
			if lim.exhausted() {
				return actions
			}

			pick := r.strategy.PickSegmentToMove(holders)
			if pick == nil {
				break
			}

			target := r.strategy.FindServerForBalancerMove(pick.Segment, holders)
			if target == nil || target == pick.Server {
				stats.AddToTieredStat(cluster.StatUnmoved, tier, 1)
				continue
			}

			if !lim.allow(target) {
				stats.AddToTieredStat(cluster.StatDeferred, tier, 1)
				break
			}

			target.AddLoading(pick.Segment)
			lim.record()
			stats.AddToTieredStat(cluster.StatMoved, tier, 1)
			actions = append(actions, action{kind: actionLoad, srv: target.Meta, seg: pick.Segment})
		}
	}

	return actions
}
