package coordinator

import (
	"colstore.io/server/pkg/cluster"
	"colstore.io/server/pkg/meta"
	"github.com/fagongzi/log"
)

// snapshot one cycle's view of the cluster: the used segments and the
// serving fleet with its in-flight queues. Exclusive to the cycle that
// built it.
type snapshot struct {
	segments []meta.Segment
	tiers    map[string][]*cluster.ServerHolder
	byID     map[string]*cluster.ServerHolder
}

func (s *snapshot) tierHolders(tier string) []*cluster.ServerHolder {
	return s.tiers[tier]
}

func (s *snapshot) servingCount(tier, segID string) int {
	n := 0
	for _, h := range s.tiers[tier] {
		if h.IsServing(segID) {
			n++
		}
	}
	return n
}

func (s *snapshot) servingHolders(tier, segID string) []*cluster.ServerHolder {
	var values []*cluster.ServerHolder
	for _, h := range s.tiers[tier] {
		if h.IsServing(segID) {
			values = append(values, h)
		}
	}
	return values
}

// gather snapshot the segment universe and the serving fleet. Membership
// events queued since the last cycle are drained first, a server removed
// there is excluded even if discovery still lists it.
func (r *Runner) gather(stats *cluster.Stats) (*snapshot, error) {
	removed := make(map[string]struct{})
	r.drainEvents(removed)

	servers, err := r.discovery.CurrentServers()
	if err != nil {
		return nil, err
	}

	snap := &snapshot{
		tiers: make(map[string][]*cluster.ServerHolder),
		byID:  make(map[string]*cluster.ServerHolder),
	}

	for _, srv := range servers {
		if _, ok := removed[srv.ID]; ok {
			continue
		}

		srv.AdjustTier()
		if err := srv.Validate(); err != nil {
			log.Errorf("coordinator: skip server %s with %+v", srv.ID, err)
			stats.AddToTieredStat(cluster.StatSkipped, srv.Tier, 1)
			continue
		}

		h := cluster.NewServerHolder(srv)
		// carry over in-flight queues so planning never double-issues
		if inv := r.inventory.Inventory(srv.ID); inv != nil {
			for _, seg := range inv.Loaded {
				h.AddLoaded(seg)
			}
			for _, seg := range inv.QueuedLoads {
				h.AddLoading(seg)
			}
			for _, seg := range inv.QueuedDrops {
				h.AddDropping(seg)
			}
		}

		snap.tiers[srv.Tier] = append(snap.tiers[srv.Tier], h)
		snap.byID[srv.ID] = h
	}

	err = r.catalog.LoadUsedSegments(func(seg *meta.Segment) error {
		// a malformed record is a hard error for that segment only
		if err := seg.Validate(); err != nil {
			log.Errorf("coordinator: skip segment %s with %+v", seg.ID(), err)
			stats.AddToTieredStat(cluster.StatSkipped, meta.DefaultTier, 1)
			return nil
		}

		snap.segments = append(snap.segments, *seg)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return snap, nil
}

func (r *Runner) drainEvents(removed map[string]struct{}) {
	for {
		select {
		case evt, ok := <-r.eventC:
			if !ok {
				return
			}

			switch evt.Type {
			case meta.ServerAdded:
				delete(removed, evt.Server.ID)
			case meta.ServerRemoved:
				removed[evt.Server.ID] = struct{}{}
			}
		default:
			return
		}
	}
}
