package cluster

// stat names accumulated by the coordination cycle
const (
	// StatAssigned replicas assigned to a server
	StatAssigned = "assignedCount"
	// StatUnassigned replicas that found no eligible server
	StatUnassigned = "unassignedCount"
	// StatDropped replicas dropped from a server
	StatDropped = "droppedCount"
	// StatMoved segments moved between servers
	StatMoved = "movedCount"
	// StatUnmoved move candidates with no eligible destination
	StatUnmoved = "unmovedCount"
	// StatDeferred actions deferred by throttling
	StatDeferred = "deferredCount"
	// StatSkipped entities skipped as malformed or vanished
	StatSkipped = "skippedCount"
	// StatTierCapacity total capacity bytes per tier
	StatTierCapacity = "tierCapacityBytes"
	// StatTierUsed used bytes per tier
	StatTierUsed = "tierUsedBytes"
)

// Stats cycle-scoped counters keyed by (stat name, tier). A fresh accumulator
// is passed through planning and flushed once at cycle end.
type Stats struct {
	counts map[string]map[string]int64
}

// NewStats returns a empty accumulator
func NewStats() *Stats {
	return &Stats{
		counts: make(map[string]map[string]int64),
	}
}

// AddToTieredStat add n to the (name, tier) counter
func (s *Stats) AddToTieredStat(name, tier string, n int64) {
	m, ok := s.counts[name]
	if !ok {
		m = make(map[string]int64)
		s.counts[name] = m
	}
	m[tier] += n
}

// TieredStat returns the (name, tier) counter value
func (s *Stats) TieredStat(name, tier string) int64 {
	return s.counts[name][tier]
}

// Tiers returns the tiers that have a value for the stat
func (s *Stats) Tiers(name string) []string {
	var values []string
	for tier := range s.counts[name] {
		values = append(values, tier)
	}
	return values
}

// Accumulate merge other into s
func (s *Stats) Accumulate(other *Stats) {
	for name, m := range other.counts {
		for tier, n := range m {
			s.AddToTieredStat(name, tier, n)
		}
	}
}

// Foreach do fn on every (name, tier, value)
func (s *Stats) Foreach(fn func(name, tier string, value int64)) {
	for name, m := range s.counts {
		for tier, n := range m {
			fn(name, tier, n)
		}
	}
}

// Reset drop all counters
func (s *Stats) Reset() {
	s.counts = make(map[string]map[string]int64)
}
