package rule

import (
	"encoding/json"
	"fmt"
	"time"

	"colstore.io/server/pkg/meta"
)

// rule types
const (
	TypeLoadForever    = "loadForever"
	TypeLoadByPeriod   = "loadByPeriod"
	TypeLoadByInterval = "loadByInterval"
	TypeDropForever    = "dropForever"
	TypeDropByPeriod   = "dropByPeriod"
	TypeDropByInterval = "dropByInterval"
)

// Fate what the coordination cycle should do with a segment: keep it at the
// per-tier replica targets, or drop it everywhere
type Fate struct {
	Drop       bool
	Replicants map[string]int
}

// DropFate the fate that drops the segment from all servers
var DropFate = Fate{Drop: true}

// LoadFate returns a load fate with the given tier targets
func LoadFate(replicants map[string]int) Fate {
	return Fate{Replicants: replicants}
}

// Rule a declarative retention policy, matched against a segment's interval
// relative to the evaluation time
type Rule interface {
	// Type returns the rule type
	Type() string
	// Matches returns true if the rule decides the segment's fate
	Matches(seg *meta.Segment, now time.Time) bool
	// Fate returns the fate the rule assigns to matching segments
	Fate() Fate
}

// Spec the serialized form of a rule
type Spec struct {
	Type             string         `json:"type"`
	Period           string         `json:"period,omitempty"`
	Interval         string         `json:"interval,omitempty"`
	IncludeFuture    *bool          `json:"includeFuture,omitempty"`
	TieredReplicants map[string]int `json:"tieredReplicants,omitempty"`
}

// ParseRules parses a JSON array of rule specs, in declaration order
func ParseRules(data []byte) ([]Rule, error) {
	var specs []Spec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, meta.ErrMalformedRule
	}

	var values []Rule
	for _, spec := range specs {
		value, err := ParseRule(spec)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, nil
}

// ParseRule parses a single rule spec
func ParseRule(spec Spec) (Rule, error) {
	switch spec.Type {
	case TypeLoadForever:
		return newLoadForever(spec)
	case TypeLoadByPeriod:
		return newLoadByPeriod(spec)
	case TypeLoadByInterval:
		return newLoadByInterval(spec)
	case TypeDropForever:
		return &dropForever{}, nil
	case TypeDropByPeriod:
		return newDropByPeriod(spec)
	case TypeDropByInterval:
		return newDropByInterval(spec)
	}

	return nil, fmt.Errorf("rule type %s not support", spec.Type)
}

// loadFate validates tier targets, a load rule whose targets are all zero is
// a drop rule in disguise
func loadFate(spec Spec) Fate {
	if len(spec.TieredReplicants) == 0 {
		return Fate{Replicants: map[string]int{meta.DefaultTier: 2}}
	}

	total := 0
	for _, n := range spec.TieredReplicants {
		total += n
	}
	if total == 0 {
		return DropFate
	}

	return Fate{Replicants: spec.TieredReplicants}
}

func includeFuture(spec Spec) bool {
	if spec.IncludeFuture == nil {
		return true
	}
	return *spec.IncludeFuture
}
