package rule

import (
	"time"

	"colstore.io/server/pkg/meta"
)

// Evaluate walks the rules in declaration order and returns the fate of the
// first matching rule. The default fate applies when nothing matches, the
// caller must always supply one, there is no implicit fallback.
func Evaluate(seg *meta.Segment, now time.Time, rules []Rule, def Fate) Fate {
	for _, r := range rules {
		if r.Matches(seg, now) {
			return r.Fate()
		}
	}

	return def
}
