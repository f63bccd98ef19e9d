package worker

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
)

// AutoBalancer periodically samples live CPU utilization (via gopsutil,
// the same library the teacher uses for its runtime-diagnostics snapshot)
// and reports a recommended worker count within [min, max] — spec.md §5's
// auto_balance_workers feature. It never mutates a running Pool directly;
// the caller reads Recommend() and resizes between batches.
type AutoBalancer struct {
	min, max int
	sample   func() (float64, error)
}

// NewAutoBalancer builds a balancer clamped to [min, max] workers.
func NewAutoBalancer(min, max int) *AutoBalancer {
	if min < 1 {
		min = 1
	}
	if max < min {
		max = min
	}
	return &AutoBalancer{min: min, max: max, sample: sampleCPUPercent}
}

func sampleCPUPercent() (float64, error) {
	percents, err := cpu.Percent(200*time.Millisecond, false)
	if err != nil || len(percents) == 0 {
		return 0, err
	}
	return percents[0], nil
}

// Recommend returns a worker count: low utilization grows toward max, high
// utilization shrinks toward min, scaled linearly across [min, max] by
// (100 - utilization%)/100.
func (b *AutoBalancer) Recommend(ctx context.Context) int {
	util, err := b.sample()
	if err != nil {
		return b.min
	}
	headroom := (100.0 - util) / 100.0
	if headroom < 0 {
		headroom = 0
	}
	if headroom > 1 {
		headroom = 1
	}
	n := b.min + int(headroom*float64(b.max-b.min))
	if n < b.min {
		n = b.min
	}
	if n > b.max {
		n = b.max
	}
	return n
}
