package rule

import (
	"testing"
	"time"

	"colstore.io/server/pkg/meta"
	"github.com/stretchr/testify/assert"
)

var (
	now = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
)

func newTestSegment(start, end time.Time) *meta.Segment {
	return &meta.Segment{
		Datasource: "events",
		Interval:   meta.NewInterval(start, end),
		Version:    "v1",
		Size:       1024,
	}
}

func TestParsePeriod(t *testing.T) {
	cases := map[string]time.Duration{
		"P1D":     24 * time.Hour,
		"P2W":     14 * 24 * time.Hour,
		"P1M":     30 * 24 * time.Hour,
		"P1Y":     365 * 24 * time.Hour,
		"PT6H":    6 * time.Hour,
		"PT30M":   30 * time.Minute,
		"P1DT12H": 36 * time.Hour,
	}

	for value, expect := range cases {
		actual, err := parsePeriod(value)
		assert.NoError(t, err, "parse %s failed", value)
		assert.Equal(t, expect, actual, "parse %s failed", value)
	}

	for _, value := range []string{"", "P", "1D", "PD", "P1X", "P1"} {
		_, err := parsePeriod(value)
		assert.Error(t, err, "check invalid period %s failed", value)
	}
}

func TestParseRules(t *testing.T) {
	data := []byte(`[
		{"type": "loadByPeriod", "period": "P1M", "tieredReplicants": {"hot": 2, "_default": 1}},
		{"type": "dropForever"}
	]`)

	rules, err := ParseRules(data)
	assert.NoError(t, err, "parse rules failed")
	assert.Equal(t, 2, len(rules), "parse rules failed")
	assert.Equal(t, TypeLoadByPeriod, rules[0].Type(), "parse rules failed")
	assert.Equal(t, 2, rules[0].Fate().Replicants["hot"], "parse rules failed")
	assert.True(t, rules[1].Fate().Drop, "parse rules failed")

	_, err = ParseRules([]byte(`[{"type": "loadByMagic"}]`))
	assert.Error(t, err, "check unknown rule type failed")
}

func TestZeroReplicantsIsDrop(t *testing.T) {
	rules, err := ParseRules([]byte(`[{"type": "loadForever", "tieredReplicants": {"_default": 0}}]`))
	assert.NoError(t, err, "parse rules failed")
	assert.True(t, rules[0].Fate().Drop, "check zero replicants failed")
}

func TestLoadByPeriodMatches(t *testing.T) {
	r, err := ParseRule(Spec{Type: TypeLoadByPeriod, Period: "P7D"})
	assert.NoError(t, err, "parse rule failed")

	recent := newTestSegment(now.Add(-24*time.Hour), now.Add(-23*time.Hour))
	old := newTestSegment(now.Add(-30*24*time.Hour), now.Add(-29*24*time.Hour))
	future := newTestSegment(now.Add(time.Hour), now.Add(2*time.Hour))

	assert.True(t, r.Matches(recent, now), "check recent segment failed")
	assert.False(t, r.Matches(old, now), "check old segment failed")
	assert.True(t, r.Matches(future, now), "check include future failed")

	no := false
	r, err = ParseRule(Spec{Type: TypeLoadByPeriod, Period: "P7D", IncludeFuture: &no})
	assert.NoError(t, err, "parse rule failed")
	assert.False(t, r.Matches(future, now), "check exclude future failed")
}

func TestDropByPeriodMatches(t *testing.T) {
	r, err := ParseRule(Spec{Type: TypeDropByPeriod, Period: "P7D"})
	assert.NoError(t, err, "parse rule failed")

	inside := newTestSegment(now.Add(-48*time.Hour), now.Add(-24*time.Hour))
	straddling := newTestSegment(now.Add(-8*24*time.Hour), now.Add(-6*24*time.Hour))

	assert.True(t, r.Matches(inside, now), "check inside segment failed")
	assert.False(t, r.Matches(straddling, now), "check straddling segment failed")
}

func TestRulePrecedence(t *testing.T) {
	data := []byte(`[
		{"type": "loadByInterval", "interval": "2026-07-01T00:00:00Z/2026-08-01T00:00:00Z", "tieredReplicants": {"tierA": 2}},
		{"type": "dropForever"}
	]`)
	rules, err := ParseRules(data)
	assert.NoError(t, err, "parse rules failed")

	inside := newTestSegment(
		time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 7, 11, 0, 0, 0, 0, time.UTC))
	outside := newTestSegment(
		time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 6, 11, 0, 0, 0, 0, time.UTC))

	fate := Evaluate(inside, now, rules, DropFate)
	assert.False(t, fate.Drop, "check first match wins failed")
	assert.Equal(t, 2, fate.Replicants["tierA"], "check first match wins failed")

	fate = Evaluate(outside, now, rules, LoadFate(map[string]int{meta.DefaultTier: 1}))
	assert.True(t, fate.Drop, "check fallthrough failed")
}

func TestEvaluateDefaultFate(t *testing.T) {
	seg := newTestSegment(now.Add(-time.Hour), now)

	fate := Evaluate(seg, now, nil, DropFate)
	assert.True(t, fate.Drop, "check default fate failed")

	fate = Evaluate(seg, now, nil, LoadFate(map[string]int{meta.DefaultTier: 2}))
	assert.Equal(t, 2, fate.Replicants[meta.DefaultTier], "check default fate failed")
}
