package coordinator

import (
	"colstore.io/server/pkg/meta"
	"colstore.io/server/pkg/rule"
)

// Catalog the read side of the durable segment catalog
type Catalog interface {
	// LoadUsedSegments iterate all used segments
	LoadUsedSegments(applyFunc func(*meta.Segment) error) error
}

// Discovery the serving fleet membership
type Discovery interface {
	// CurrentServers returns the currently announced servers
	CurrentServers() ([]meta.ServerMeta, error)
	// Watch returns a single-consumer channel of membership events
	Watch() (<-chan meta.ServerEvent, error)
}

// Inventory per-node segment inventory as last reported by the node
type Inventory interface {
	// Inventory returns the latest report of the server, nil if it never
	// reported
	Inventory(id string) *meta.InventoryMsg
}

// Commander the node command interface, fire-and-forget and idempotent on
// the receiving node
type Commander interface {
	// AsyncLoad async send a load command
	AsyncLoad(srv meta.ServerMeta, op uint64, seg meta.Segment) error
	// AsyncDrop async send a drop command
	AsyncDrop(srv meta.ServerMeta, op uint64, seg meta.Segment) error
}

// RuleSource ordered retention rules per datasource
type RuleSource interface {
	// Refresh reload the rules, called once per cycle
	Refresh() error
	// RulesFor returns the datasource's chain followed by the defaults
	RulesFor(datasource string) []rule.Rule
}

// StatsSink external observability, the cycle's counters are flushed to it
// once at cycle end
type StatsSink interface {
	// Report report one (tier, stat) value
	Report(tier, name string, value int64)
}
