package rule

import (
	"time"

	"colstore.io/server/pkg/meta"
)

// loadForever keep the segment loaded regardless of its interval
type loadForever struct {
	fate Fate
}

func newLoadForever(spec Spec) (Rule, error) {
	return &loadForever{fate: loadFate(spec)}, nil
}

func (r *loadForever) Type() string {
	return TypeLoadForever
}

func (r *loadForever) Matches(seg *meta.Segment, now time.Time) bool {
	return true
}

func (r *loadForever) Fate() Fate {
	return r.fate
}

// loadByPeriod keep segments whose interval overlaps the trailing period
// before now, optionally extended into the future
type loadByPeriod struct {
	period        time.Duration
	includeFuture bool
	fate          Fate
}

func newLoadByPeriod(spec Spec) (Rule, error) {
	period, err := parsePeriod(spec.Period)
	if err != nil {
		return nil, err
	}

	return &loadByPeriod{
		period:        period,
		includeFuture: includeFuture(spec),
		fate:          loadFate(spec),
	}, nil
}

func (r *loadByPeriod) Type() string {
	return TypeLoadByPeriod
}

func (r *loadByPeriod) Matches(seg *meta.Segment, now time.Time) bool {
	window := meta.NewInterval(now.Add(-r.period), now)
	if r.includeFuture {
		// the window is open ended, anything newer than its start matches
		return seg.Interval.End > window.Start
	}

	return seg.Interval.Overlaps(window)
}

func (r *loadByPeriod) Fate() Fate {
	return r.fate
}

// loadByInterval keep segments fully inside a fixed interval
type loadByInterval struct {
	interval meta.Interval
	fate     Fate
}

func newLoadByInterval(spec Spec) (Rule, error) {
	interval, err := meta.ParseInterval(spec.Interval)
	if err != nil {
		return nil, err
	}

	return &loadByInterval{
		interval: interval,
		fate:     loadFate(spec),
	}, nil
}

func (r *loadByInterval) Type() string {
	return TypeLoadByInterval
}

func (r *loadByInterval) Matches(seg *meta.Segment, now time.Time) bool {
	return r.interval.Contains(seg.Interval)
}

func (r *loadByInterval) Fate() Fate {
	return r.fate
}
