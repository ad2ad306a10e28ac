package coordinator

import (
	"math/rand"
	"testing"
	"time"

	"colstore.io/server/pkg/balancer"
	"colstore.io/server/pkg/cluster"
	"colstore.io/server/pkg/id"
	"colstore.io/server/pkg/meta"
	"github.com/stretchr/testify/assert"
)

var (
	testNow = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
)

func newTestServer(sid string, capacity int64) meta.ServerMeta {
	return meta.ServerMeta{
		ID:       sid,
		Addr:     sid,
		Capacity: capacity,
	}
}

func newTestSegment(datasource string, size int64) meta.Segment {
	return meta.Segment{
		Datasource: datasource,
		Interval:   meta.NewInterval(testNow.Add(-time.Hour), testNow),
		Version:    "v1",
		Size:       size,
	}
}

type testEnv struct {
	catalog    *testCatalog
	discovery  *testDiscovery
	inventory  *testInventory
	commander  *testCommander
	ruleSource *testRuleSource
	sink       *testSink
	runner     *Runner
}

func newTestEnv(t *testing.T, catalog *testCatalog, discovery *testDiscovery, opts ...Option) *testEnv {
	env := &testEnv{
		catalog:    catalog,
		discovery:  discovery,
		inventory:  newTestInventory(),
		commander:  newTestCommander(),
		ruleSource: newTestRuleSource(),
		sink:       newTestSink(),
	}

	strategy, err := balancer.CreateStrategyWithRand(balancer.StrategyUniform,
		rand.New(rand.NewSource(1)))
	assert.NoError(t, err, "create strategy failed")

	env.runner = NewRunner(env.catalog,
		env.discovery,
		env.inventory,
		env.commander,
		env.ruleSource,
		env.sink,
		strategy,
		id.NewMemGenerator(),
		opts...)
	eventC, _ := env.discovery.Watch()
	env.runner.eventC = eventC
	return env
}

func TestReplicaConvergence(t *testing.T) {
	seg := newTestSegment("events", 10)
	env := newTestEnv(t,
		newTestCatalog(seg),
		newTestDiscovery(
			newTestServer("s1", 1000),
			newTestServer("s2", 1000),
			newTestServer("s3", 1000)),
		WithMaxOpsPerCycle(1),
		WithMaxBalanceMoves(-1))

	assert.NoError(t, env.ruleSource.set("events",
		`[{"type": "loadForever", "tieredReplicants": {"_default": 2}}]`), "set rules failed")

	// one replica per cycle under a throttle of 1
	stats := env.runner.RunCycle(testNow)
	assert.Equal(t, 1, len(env.commander.loads), "check first cycle failed")
	assert.Equal(t, int64(1), stats.TieredStat(cluster.StatAssigned, meta.DefaultTier),
		"check first cycle failed")
	first := env.commander.loads[0].srv.ID
	env.commander.applyTo(env.inventory)

	stats = env.runner.RunCycle(testNow)
	assert.Equal(t, 1, len(env.commander.loads), "check second cycle failed")
	second := env.commander.loads[0].srv.ID
	assert.NotEqual(t, first, second, "check distinct servers failed")
	env.commander.applyTo(env.inventory)

	// converged, the third cycle issues nothing
	stats = env.runner.RunCycle(testNow)
	assert.Equal(t, 0, len(env.commander.loads), "check converged failed")
	assert.Equal(t, 0, len(env.commander.drops), "check converged failed")
	assert.Equal(t, int64(0), stats.TieredStat(cluster.StatAssigned, meta.DefaultTier),
		"check converged failed")
}

func TestIdempotentPlanning(t *testing.T) {
	seg := newTestSegment("events", 10)
	env := newTestEnv(t,
		newTestCatalog(seg),
		newTestDiscovery(
			newTestServer("s1", 1000),
			newTestServer("s2", 1000)),
		WithMaxBalanceMoves(-1))

	assert.NoError(t, env.ruleSource.set("events",
		`[{"type": "loadForever", "tieredReplicants": {"_default": 1}}]`), "set rules failed")

	env.runner.RunCycle(testNow)
	assert.Equal(t, 1, len(env.commander.loads), "check first plan failed")
	issued := env.commander.loads[0]
	env.commander.reset()

	// the node has not finished loading, its inventory reports the load as
	// queued, re-planning against that snapshot must not issue it again
	env.inventory.addQueuedLoad(issued.srv.ID, issued.seg)
	env.runner.RunCycle(testNow)
	assert.Equal(t, 0, len(env.commander.loads), "check no duplicate issuance failed")
	assert.Equal(t, 0, len(env.commander.drops), "check no duplicate issuance failed")
}

func TestDropFatedSegment(t *testing.T) {
	seg := newTestSegment("events", 10)
	env := newTestEnv(t,
		newTestCatalog(seg),
		newTestDiscovery(
			newTestServer("s1", 1000),
			newTestServer("s2", 1000)),
		WithMaxBalanceMoves(-1))

	env.inventory.addLoaded("s1", seg)
	env.inventory.addLoaded("s2", seg)

	assert.NoError(t, env.ruleSource.set("events", `[{"type": "dropForever"}]`), "set rules failed")

	stats := env.runner.RunCycle(testNow)
	assert.Equal(t, 2, len(env.commander.drops), "check drop everywhere failed")
	assert.Equal(t, int64(2), stats.TieredStat(cluster.StatDropped, meta.DefaultTier),
		"check drop everywhere failed")
}

func TestDefaultFateApplies(t *testing.T) {
	// no rules at all, the configured default fate decides
	seg := newTestSegment("events", 10)
	env := newTestEnv(t,
		newTestCatalog(seg),
		newTestDiscovery(newTestServer("s1", 1000)),
		WithMaxBalanceMoves(-1))

	env.inventory.addLoaded("s1", seg)

	env.runner.RunCycle(testNow)
	assert.Equal(t, 1, len(env.commander.drops), "check default drop fate failed")
}

func TestOverReplicationDrops(t *testing.T) {
	seg := newTestSegment("events", 10)
	env := newTestEnv(t,
		newTestCatalog(seg),
		newTestDiscovery(
			newTestServer("s1", 1000),
			newTestServer("s2", 1000),
			newTestServer("s3", 1000)),
		WithMaxBalanceMoves(-1))

	env.inventory.addLoaded("s1", seg)
	env.inventory.addLoaded("s2", seg)
	env.inventory.addLoaded("s3", seg)

	assert.NoError(t, env.ruleSource.set("events",
		`[{"type": "loadForever", "tieredReplicants": {"_default": 1}}]`), "set rules failed")

	env.runner.RunCycle(testNow)
	assert.Equal(t, 2, len(env.commander.drops), "check over-replication failed")
	assert.Equal(t, 0, len(env.commander.loads), "check over-replication failed")
}

func TestDropPrefersResidentCopy(t *testing.T) {
	seg := newTestSegment("events", 10)
	env := newTestEnv(t,
		newTestCatalog(seg),
		newTestDiscovery(
			newTestServer("s1", 1000),
			newTestServer("s2", 1000)),
		WithMaxBalanceMoves(-1))

	// s1 holds the resident copy, s2 is still loading the copy a balance
	// move issued on a prior cycle. Draining the surplus must pick s1, the
	// resident copy, never the in-flight destination.
	env.inventory.addLoaded("s1", seg)
	env.inventory.addQueuedLoad("s2", seg)

	assert.NoError(t, env.ruleSource.set("events",
		`[{"type": "loadForever", "tieredReplicants": {"_default": 1}}]`), "set rules failed")

	env.runner.RunCycle(testNow)
	assert.Equal(t, 1, len(env.commander.drops), "check surplus drained failed")
	assert.Equal(t, "s1", env.commander.drops[0].srv.ID, "check resident copy dropped failed")
	assert.Equal(t, 0, len(env.commander.loads), "check no duplicate issuance failed")
}

func TestUnassignedRecordedNotFatal(t *testing.T) {
	seg := newTestSegment("events", 10)
	env := newTestEnv(t,
		newTestCatalog(seg),
		newTestDiscovery(newTestServer("s1", 1000)),
		WithMaxBalanceMoves(-1))

	env.inventory.addLoaded("s1", seg)

	assert.NoError(t, env.ruleSource.set("events",
		`[{"type": "loadForever", "tieredReplicants": {"_default": 3}}]`), "set rules failed")

	stats := env.runner.RunCycle(testNow)
	assert.Equal(t, 0, len(env.commander.loads), "check no eligible server failed")
	assert.Equal(t, int64(2), stats.TieredStat(cluster.StatUnassigned, meta.DefaultTier),
		"check unassigned stat failed")
}

func TestRemovedServerExcluded(t *testing.T) {
	seg := newTestSegment("events", 10)
	discovery := newTestDiscovery(
		newTestServer("s1", 1000),
		newTestServer("s2", 1000))
	env := newTestEnv(t,
		newTestCatalog(seg),
		discovery,
		WithMaxBalanceMoves(-1))

	assert.NoError(t, env.ruleSource.set("events",
		`[{"type": "loadForever", "tieredReplicants": {"_default": 1}}]`), "set rules failed")

	// s2 vanished after discovery listed it, this cycle must not plan for
	// it, the next cycle's discovery snapshot is authoritative again
	discovery.eventC <- meta.ServerEvent{Type: meta.ServerRemoved, Server: newTestServer("s2", 1000)}

	env.runner.RunCycle(testNow)
	assert.Equal(t, 1, len(env.commander.loads), "check planning continued failed")
	assert.Equal(t, "s1", env.commander.loads[0].srv.ID, "check removed server excluded failed")
}

func TestMalformedSegmentIsolated(t *testing.T) {
	good := newTestSegment("events", 10)
	bad := newTestSegment("", 10)
	env := newTestEnv(t,
		newTestCatalog(bad, good),
		newTestDiscovery(newTestServer("s1", 1000)),
		WithMaxBalanceMoves(-1))

	assert.NoError(t, env.ruleSource.set("events",
		`[{"type": "loadForever", "tieredReplicants": {"_default": 1}}]`), "set rules failed")

	stats := env.runner.RunCycle(testNow)
	assert.Equal(t, 1, len(env.commander.loads), "check good segment planned failed")
	assert.Equal(t, good.ID(), env.commander.loads[0].seg.ID(), "check good segment planned failed")
	assert.Equal(t, int64(1), stats.TieredStat(cluster.StatSkipped, meta.DefaultTier),
		"check malformed isolated failed")
}

func TestTierNotInTargetsDrained(t *testing.T) {
	seg := newTestSegment("events", 10)
	cold := meta.ServerMeta{ID: "c1", Addr: "c1", Tier: "cold", Capacity: 1000}
	env := newTestEnv(t,
		newTestCatalog(seg),
		newTestDiscovery(newTestServer("s1", 1000), cold),
		WithMaxBalanceMoves(-1))

	env.inventory.addLoaded("c1", seg)

	assert.NoError(t, env.ruleSource.set("events",
		`[{"type": "loadForever", "tieredReplicants": {"_default": 1}}]`), "set rules failed")

	env.runner.RunCycle(testNow)

	var dropServers []string
	for _, cmd := range env.commander.drops {
		dropServers = append(dropServers, cmd.srv.ID)
	}
	assert.Equal(t, []string{"c1"}, dropServers, "check off-target tier drained failed")
}

func TestBalanceMoveIssued(t *testing.T) {
	env := newTestEnv(t,
		newTestCatalog(),
		newTestDiscovery(
			newTestServer("s1", 1000),
			newTestServer("s2", 1000)),
		WithMaxBalanceMoves(1))

	// all segments on s1, balancing should load one of them on s2
	for i := 0; i < 4; i++ {
		seg := newTestSegment("events", 10)
		seg.Partition = uint32(i)
		env.catalog.segments = append(env.catalog.segments, seg)
		env.inventory.addLoaded("s1", seg)
	}

	assert.NoError(t, env.ruleSource.set("events",
		`[{"type": "loadForever", "tieredReplicants": {"_default": 1}}]`), "set rules failed")

	stats := env.runner.RunCycle(testNow)
	assert.Equal(t, 1, len(env.commander.loads), "check balance move failed")
	assert.Equal(t, "s2", env.commander.loads[0].srv.ID, "check balance move failed")
	assert.Equal(t, int64(1), stats.TieredStat(cluster.StatMoved, meta.DefaultTier),
		"check balance move failed")
}

func TestPerServerThrottle(t *testing.T) {
	env := newTestEnv(t,
		newTestCatalog(),
		newTestDiscovery(newTestServer("s1", 10000), newTestServer("s2", 10000)),
		WithMaxInFlightPerNode(2),
		WithMaxBalanceMoves(-1))

	for i := 0; i < 8; i++ {
		seg := newTestSegment("events", 10)
		seg.Partition = uint32(i)
		env.catalog.segments = append(env.catalog.segments, seg)
	}

	assert.NoError(t, env.ruleSource.set("events",
		`[{"type": "loadForever", "tieredReplicants": {"_default": 2}}]`), "set rules failed")

	env.runner.RunCycle(testNow)

	perServer := make(map[string]int)
	for _, cmd := range env.commander.loads {
		perServer[cmd.srv.ID]++
	}
	for sid, n := range perServer {
		assert.True(t, n <= 2, "check per-server throttle failed, %s got %d", sid, n)
	}
}
