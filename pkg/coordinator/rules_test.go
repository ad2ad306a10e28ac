package coordinator

import (
	"testing"

	"colstore.io/server/pkg/rule"
	"colstore.io/server/pkg/storage"
	"colstore.io/server/pkg/storage/mem"
	"github.com/stretchr/testify/assert"
)

func TestStorageRuleSource(t *testing.T) {
	s := storage.NewKVStorage(mem.NewKV())
	assert.NoError(t, s.PutRules("events",
		[]byte(`[{"type": "loadByPeriod", "period": "P1M", "tieredReplicants": {"_default": 2}}]`)),
		"put rules failed")
	assert.NoError(t, s.PutDefaultRules([]byte(`[{"type": "dropForever"}]`)), "put defaults failed")

	rs := NewStorageRuleSource(s)
	assert.NoError(t, rs.Refresh(), "refresh failed")

	values := rs.RulesFor("events")
	assert.Equal(t, 2, len(values), "check chain plus defaults failed")
	assert.Equal(t, rule.TypeLoadByPeriod, values[0].Type(), "check chain order failed")
	assert.Equal(t, rule.TypeDropForever, values[1].Type(), "check chain order failed")

	// unknown datasource falls back to the defaults only
	values = rs.RulesFor("unknown")
	assert.Equal(t, 1, len(values), "check defaults only failed")
}

func TestStorageRuleSourceMalformedIsolated(t *testing.T) {
	s := storage.NewKVStorage(mem.NewKV())
	assert.NoError(t, s.PutRules("events", []byte(`[{"type": "loadForever"}]`)), "put rules failed")

	rs := NewStorageRuleSource(s)
	assert.NoError(t, rs.Refresh(), "refresh failed")
	assert.Equal(t, 1, len(rs.RulesFor("events")), "check chain failed")

	// a broken update keeps the previous chain in use
	assert.NoError(t, s.PutRules("events", []byte(`{not json`)), "put rules failed")
	assert.NoError(t, rs.Refresh(), "refresh with malformed failed")
	assert.Equal(t, 1, len(rs.RulesFor("events")), "check previous chain kept failed")
}
