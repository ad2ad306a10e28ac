package rule

import (
	"time"

	"colstore.io/server/pkg/meta"
)

// dropForever drop the segment regardless of its interval
type dropForever struct {
}

func (r *dropForever) Type() string {
	return TypeDropForever
}

func (r *dropForever) Matches(seg *meta.Segment, now time.Time) bool {
	return true
}

func (r *dropForever) Fate() Fate {
	return DropFate
}

// dropByPeriod drop segments fully inside the trailing period before now
type dropByPeriod struct {
	period time.Duration
}

func newDropByPeriod(spec Spec) (Rule, error) {
	period, err := parsePeriod(spec.Period)
	if err != nil {
		return nil, err
	}

	return &dropByPeriod{period: period}, nil
}

func (r *dropByPeriod) Type() string {
	return TypeDropByPeriod
}

func (r *dropByPeriod) Matches(seg *meta.Segment, now time.Time) bool {
	window := meta.NewInterval(now.Add(-r.period), now)
	return window.Contains(seg.Interval)
}

func (r *dropByPeriod) Fate() Fate {
	return DropFate
}

// dropByInterval drop segments fully inside a fixed interval
type dropByInterval struct {
	interval meta.Interval
}

func newDropByInterval(spec Spec) (Rule, error) {
	interval, err := meta.ParseInterval(spec.Interval)
	if err != nil {
		return nil, err
	}

	return &dropByInterval{interval: interval}, nil
}

func (r *dropByInterval) Type() string {
	return TypeDropByInterval
}

func (r *dropByInterval) Matches(seg *meta.Segment, now time.Time) bool {
	return r.interval.Contains(seg.Interval)
}

func (r *dropByInterval) Fate() Fate {
	return DropFate
}
