package storage

import (
	"encoding/json"

	"colstore.io/server/pkg/meta"
	"github.com/fagongzi/log"
)

type kvStorage struct {
	kv KV
}

// NewKVStorage returns a storage layered on the given kv backend
func NewKVStorage(kv KV) Storage {
	return &kvStorage{kv: kv}
}

func (s *kvStorage) PutSegment(seg *meta.Segment, used bool) error {
	if err := seg.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(&SegmentRecord{
		Segment: *seg,
		Used:    used,
	})
	if err != nil {
		return err
	}

	return s.kv.Set(segKey(seg.ID()), data)
}

func (s *kvStorage) MarkUnused(id string) error {
	value, err := s.kv.Get(segKey(id))
	if err != nil {
		return err
	}
	if value == nil {
		return nil
	}

	record := &SegmentRecord{}
	if err := json.Unmarshal(value, record); err != nil {
		return err
	}

	record.Used = false
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	return s.kv.Set(segKey(id), data)
}

func (s *kvStorage) RemoveSegment(id string) error {
	return s.kv.Delete(segKey(id))
}

// LoadUsedSegments a record that cannot be decoded is logged and skipped,
// one bad record never fails the whole scan
func (s *kvStorage) LoadUsedSegments(applyFunc func(*meta.Segment) error) error {
	var applyErr error
	err := s.kv.RangePrefix(segPrefix, func(key, value []byte) bool {
		record := &SegmentRecord{}
		if err := json.Unmarshal(value, record); err != nil {
			log.Errorf("storage: decode segment record %s failed with %+v",
				string(key),
				err)
			return true
		}

		if !record.Used {
			return true
		}

		if applyErr = applyFunc(&record.Segment); applyErr != nil {
			return false
		}
		return true
	})

	if err != nil {
		return err
	}
	return applyErr
}

func (s *kvStorage) PutRules(datasource string, data []byte) error {
	return s.kv.Set(ruleKey(datasource), data)
}

func (s *kvStorage) Rules(datasource string) ([]byte, error) {
	return s.kv.Get(ruleKey(datasource))
}

func (s *kvStorage) LoadRules(applyFunc func(datasource string, data []byte) error) error {
	var applyErr error
	err := s.kv.RangePrefix(rulePrefix, func(key, value []byte) bool {
		datasource := string(key[len(rulePrefix):])
		if applyErr = applyFunc(datasource, value); applyErr != nil {
			return false
		}
		return true
	})

	if err != nil {
		return err
	}
	return applyErr
}

func (s *kvStorage) PutDefaultRules(data []byte) error {
	return s.kv.Set(defaultRulesKey, data)
}

func (s *kvStorage) DefaultRules() ([]byte, error) {
	return s.kv.Get(defaultRulesKey)
}
