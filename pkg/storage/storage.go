package storage

import (
	"colstore.io/server/pkg/meta"
)

// Storage the durable catalog of segment records and retention rules. The
// coordinator only reads it, the used flag is owned by the ingestion side.
type Storage interface {
	// PutSegment upsert a segment record
	PutSegment(seg *meta.Segment, used bool) error
	// MarkUnused flip the segment's used flag off
	MarkUnused(id string) error
	// RemoveSegment delete the segment record
	RemoveSegment(id string) error
	// LoadUsedSegments iterate all used segments, stop on the first error
	// returned by applyFunc
	LoadUsedSegments(applyFunc func(*meta.Segment) error) error

	// PutRules store the datasource's rule chain as raw JSON
	PutRules(datasource string, data []byte) error
	// Rules returns the datasource's rule chain, nil if none
	Rules(datasource string) ([]byte, error)
	// LoadRules iterate all per-datasource rule chains
	LoadRules(applyFunc func(datasource string, data []byte) error) error
	// PutDefaultRules store the cluster default rule chain
	PutDefaultRules(data []byte) error
	// DefaultRules returns the cluster default rule chain, nil if none
	DefaultRules() ([]byte, error)
}

// SegmentRecord the stored form of a segment plus its used flag
type SegmentRecord struct {
	Segment meta.Segment `json:"segment"`
	Used    bool         `json:"used"`
}
