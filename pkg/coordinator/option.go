package coordinator

import (
	"time"

	"colstore.io/server/pkg/rule"
)

// Option coordinator option
type Option func(*options)

type options struct {
	interval           time.Duration
	maxInFlightPerNode int
	maxOpsPerCycle     int
	maxBalanceMoves    int
	defaultFate        rule.Fate
}

func (opts *options) adjust() {
	if opts.interval == 0 {
		opts.interval = time.Minute
	}

	if opts.maxInFlightPerNode == 0 {
		opts.maxInFlightPerNode = 8
	}

	if opts.maxOpsPerCycle == 0 {
		opts.maxOpsPerCycle = 256
	}

	if opts.maxBalanceMoves == 0 {
		opts.maxBalanceMoves = 5
	}

	if opts.defaultFate.Replicants == nil && !opts.defaultFate.Drop {
		opts.defaultFate = rule.DropFate
	}
}

// WithInterval set the cycle interval
func WithInterval(value time.Duration) Option {
	return func(opts *options) {
		opts.interval = value
	}
}

// WithMaxInFlightPerNode set max in-flight loads plus drops per server,
// actions beyond it are deferred to the next cycle
func WithMaxInFlightPerNode(value int) Option {
	return func(opts *options) {
		opts.maxInFlightPerNode = value
	}
}

// WithMaxOpsPerCycle set max commands issued per cycle across the cluster
func WithMaxOpsPerCycle(value int) Option {
	return func(opts *options) {
		opts.maxOpsPerCycle = value
	}
}

// WithMaxBalanceMoves set max balance moves per tier per cycle
func WithMaxBalanceMoves(value int) Option {
	return func(opts *options) {
		opts.maxBalanceMoves = value
	}
}

// WithDefaultFate set the fate of segments no rule matches, the fallback is
// always explicit, never implicit
func WithDefaultFate(value rule.Fate) Option {
	return func(opts *options) {
		opts.defaultFate = value
	}
}
