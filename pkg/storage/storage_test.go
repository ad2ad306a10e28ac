package storage

import (
	"testing"

	"colstore.io/server/pkg/meta"
	"colstore.io/server/pkg/storage/mem"
	"github.com/stretchr/testify/assert"
)

func newTestStorage() Storage {
	return NewKVStorage(mem.NewKV())
}

func newTestSegment(datasource string) *meta.Segment {
	return &meta.Segment{
		Datasource: datasource,
		Interval:   meta.Interval{Start: 0, End: 100},
		Version:    "v1",
		Size:       1024,
	}
}

func TestSegmentLifecycle(t *testing.T) {
	s := newTestStorage()

	seg := newTestSegment("events")
	assert.NoError(t, s.PutSegment(seg, true), "put segment failed")

	n := 0
	err := s.LoadUsedSegments(func(value *meta.Segment) error {
		n++
		assert.Equal(t, seg.ID(), value.ID(), "load used segments failed")
		return nil
	})
	assert.NoError(t, err, "load used segments failed")
	assert.Equal(t, 1, n, "load used segments failed")

	assert.NoError(t, s.MarkUnused(seg.ID()), "mark unused failed")
	n = 0
	s.LoadUsedSegments(func(value *meta.Segment) error {
		n++
		return nil
	})
	assert.Equal(t, 0, n, "check unused excluded failed")

	assert.NoError(t, s.RemoveSegment(seg.ID()), "remove segment failed")
}

func TestPutSegmentMalformed(t *testing.T) {
	s := newTestStorage()

	seg := newTestSegment("")
	assert.Equal(t, meta.ErrMalformedSegment, s.PutSegment(seg, true), "check malformed failed")
}

func TestLoadUsedSegmentsSkipsBadRecord(t *testing.T) {
	kv := mem.NewKV()
	s := NewKVStorage(kv)

	assert.NoError(t, s.PutSegment(newTestSegment("events"), true), "put segment failed")
	assert.NoError(t, kv.Set([]byte("seg/garbage"), []byte("{not json")), "put garbage failed")

	n := 0
	err := s.LoadUsedSegments(func(value *meta.Segment) error {
		n++
		return nil
	})
	assert.NoError(t, err, "check bad record isolated failed")
	assert.Equal(t, 1, n, "check bad record isolated failed")
}

func TestRules(t *testing.T) {
	s := newTestStorage()

	assert.NoError(t, s.PutRules("events", []byte(`[{"type":"loadForever"}]`)), "put rules failed")
	assert.NoError(t, s.PutDefaultRules([]byte(`[{"type":"dropForever"}]`)), "put default rules failed")

	data, err := s.Rules("events")
	assert.NoError(t, err, "get rules failed")
	assert.NotNil(t, data, "get rules failed")

	data, err = s.Rules("unknown")
	assert.NoError(t, err, "get missing rules failed")
	assert.Nil(t, data, "get missing rules failed")

	loaded := make(map[string][]byte)
	err = s.LoadRules(func(datasource string, value []byte) error {
		loaded[datasource] = value
		return nil
	})
	assert.NoError(t, err, "load rules failed")
	assert.Equal(t, 1, len(loaded), "load rules failed")
	assert.NotNil(t, loaded["events"], "load rules failed")

	data, err = s.DefaultRules()
	assert.NoError(t, err, "get default rules failed")
	assert.NotNil(t, data, "get default rules failed")
}
