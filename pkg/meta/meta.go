package meta

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultTier the tier used when a server or rule does not name one
	DefaultTier = "_default"
)

// Interval a half-open time range [Start, End), unix millis
type Interval struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// NewInterval returns a interval with the given times
func NewInterval(start, end time.Time) Interval {
	return Interval{
		Start: start.UnixNano() / int64(time.Millisecond),
		End:   end.UnixNano() / int64(time.Millisecond),
	}
}

// ParseInterval parses a `start/end` RFC3339 pair
func ParseInterval(value string) (Interval, error) {
	values := strings.Split(value, "/")
	if len(values) != 2 {
		return Interval{}, fmt.Errorf("invalid interval %s", value)
	}

	start, err := time.Parse(time.RFC3339, values[0])
	if err != nil {
		return Interval{}, err
	}

	end, err := time.Parse(time.RFC3339, values[1])
	if err != nil {
		return Interval{}, err
	}

	return NewInterval(start, end), nil
}

// IsEmpty returns true if the interval contains no time
func (i Interval) IsEmpty() bool {
	return i.End <= i.Start
}

// Overlaps returns true if the two intervals share any time
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && other.Start < i.End
}

// Contains returns true if other is fully inside the interval
func (i Interval) Contains(other Interval) bool {
	return i.Start <= other.Start && other.End <= i.End
}

// Gap returns the distance between the two intervals, 0 if they overlap
func (i Interval) Gap(other Interval) int64 {
	if i.Overlaps(other) {
		return 0
	}

	if i.End <= other.Start {
		return other.Start - i.End
	}

	return i.Start - other.End
}

func (i Interval) String() string {
	return fmt.Sprintf("%d_%d", i.Start, i.End)
}

// Segment a immutable chunk of columnar data, unique by
// (datasource, interval, version, partition)
type Segment struct {
	Datasource string   `json:"datasource"`
	Interval   Interval `json:"interval"`
	Version    string   `json:"version"`
	Partition  uint32   `json:"partition"`
	Size       int64    `json:"size"`
}

// ID returns the unique id of the segment
func (s *Segment) ID() string {
	return fmt.Sprintf("%s_%s_%s_%d",
		s.Datasource,
		s.Interval.String(),
		s.Version,
		s.Partition)
}

// Validate returns a error if any mandatory field is missing
func (s *Segment) Validate() error {
	if s.Datasource == "" {
		return ErrMalformedSegment
	}

	if s.Interval.IsEmpty() {
		return ErrMalformedSegment
	}

	if s.Version == "" {
		return ErrMalformedSegment
	}

	if s.Size < 0 {
		return ErrMalformedSegment
	}

	return nil
}

// ServerMeta a serving node's identity and capacity
type ServerMeta struct {
	ID       string `json:"id"`
	Addr     string `json:"addr"`
	Tier     string `json:"tier"`
	Capacity int64  `json:"capacity"`
}

// Validate returns a error if any mandatory field is missing
func (m *ServerMeta) Validate() error {
	if m.ID == "" || m.Addr == "" {
		return ErrMalformedServer
	}

	if m.Capacity <= 0 {
		return ErrMalformedServer
	}

	return nil
}

// AdjustTier fills the default tier if the server does not name one
func (m *ServerMeta) AdjustTier() {
	if m.Tier == "" {
		m.Tier = DefaultTier
	}
}
