package coordinator

import (
	"colstore.io/server/pkg/meta"
	"colstore.io/server/pkg/rule"
)

type testCatalog struct {
	segments []meta.Segment
}

func newTestCatalog(segments ...meta.Segment) *testCatalog {
	return &testCatalog{segments: segments}
}

func (c *testCatalog) LoadUsedSegments(applyFunc func(*meta.Segment) error) error {
	for i := range c.segments {
		if err := applyFunc(&c.segments[i]); err != nil {
			return err
		}
	}
	return nil
}

type testDiscovery struct {
	servers []meta.ServerMeta
	eventC  chan meta.ServerEvent
}

func newTestDiscovery(servers ...meta.ServerMeta) *testDiscovery {
	return &testDiscovery{
		servers: servers,
		eventC:  make(chan meta.ServerEvent, 128),
	}
}

func (d *testDiscovery) CurrentServers() ([]meta.ServerMeta, error) {
	return d.servers, nil
}

func (d *testDiscovery) Watch() (<-chan meta.ServerEvent, error) {
	return d.eventC, nil
}

type testInventory struct {
	values map[string]*meta.InventoryMsg
}

func newTestInventory() *testInventory {
	return &testInventory{
		values: make(map[string]*meta.InventoryMsg),
	}
}

func (i *testInventory) Inventory(id string) *meta.InventoryMsg {
	return i.values[id]
}

func (i *testInventory) addLoaded(id string, seg meta.Segment) {
	inv := i.values[id]
	if inv == nil {
		inv = &meta.InventoryMsg{ServerID: id}
		i.values[id] = inv
	}
	inv.Loaded = append(inv.Loaded, seg)
}

func (i *testInventory) addQueuedLoad(id string, seg meta.Segment) {
	inv := i.values[id]
	if inv == nil {
		inv = &meta.InventoryMsg{ServerID: id}
		i.values[id] = inv
	}
	inv.QueuedLoads = append(inv.QueuedLoads, seg)
}

type testCmd struct {
	srv meta.ServerMeta
	seg meta.Segment
}

type testCommander struct {
	loads []testCmd
	drops []testCmd
}

func newTestCommander() *testCommander {
	return &testCommander{}
}

func (c *testCommander) AsyncLoad(srv meta.ServerMeta, op uint64, seg meta.Segment) error {
	c.loads = append(c.loads, testCmd{srv: srv, seg: seg})
	return nil
}

func (c *testCommander) AsyncDrop(srv meta.ServerMeta, op uint64, seg meta.Segment) error {
	c.drops = append(c.drops, testCmd{srv: srv, seg: seg})
	return nil
}

func (c *testCommander) reset() {
	c.loads = nil
	c.drops = nil
}

// applyTo move issued commands into the inventory, simulating the nodes
// acting on them between cycles
func (c *testCommander) applyTo(inv *testInventory) {
	for _, cmd := range c.loads {
		inv.addLoaded(cmd.srv.ID, cmd.seg)
	}
	for _, cmd := range c.drops {
		m := inv.values[cmd.srv.ID]
		if m == nil {
			continue
		}

		var kept []meta.Segment
		for _, seg := range m.Loaded {
			if seg.ID() != cmd.seg.ID() {
				kept = append(kept, seg)
			}
		}
		m.Loaded = kept
	}
	c.reset()
}

type testRuleSource struct {
	rules map[string][]rule.Rule
}

func newTestRuleSource() *testRuleSource {
	return &testRuleSource{
		rules: make(map[string][]rule.Rule),
	}
}

func (rs *testRuleSource) set(datasource string, data string) error {
	values, err := rule.ParseRules([]byte(data))
	if err != nil {
		return err
	}
	rs.rules[datasource] = values
	return nil
}

func (rs *testRuleSource) Refresh() error {
	return nil
}

func (rs *testRuleSource) RulesFor(datasource string) []rule.Rule {
	return rs.rules[datasource]
}

type testSink struct {
	reported map[string]int64
}

func newTestSink() *testSink {
	return &testSink{reported: make(map[string]int64)}
}

func (s *testSink) Report(tier, name string, value int64) {
	s.reported[tier+"/"+name] += value
}
