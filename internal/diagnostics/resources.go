// Package diagnostics periodically samples resource usage for
// observability, trimmed down from the capacity-management machinery in
// adred-codev-ws_poc/src/capacity.go to plain reporting: this server makes
// no admission-control decisions based on load, it only logs the samples at
// debug level.
package diagnostics

import (
	"context"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"go.uber.org/zap"

	"odin-cache/internal/metrics"
)

// Sampler periodically logs system-wide CPU usage and the process's heap
// allocation and goroutine count.
type Sampler struct {
	registry *metrics.Registry
	log      *zap.Logger
	interval time.Duration
}

// NewSampler builds a Sampler that reports on the given interval.
func NewSampler(registry *metrics.Registry, log *zap.Logger, interval time.Duration) *Sampler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Sampler{registry: registry, log: log, interval: interval}
}

// Run samples resource usage until ctx is done.
func (s *Sampler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sample()
		}
	}
}

func (s *Sampler) sample() {
	percents, err := cpu.Percent(0, false)
	cpuPercent := 0.0
	if err == nil && len(percents) > 0 {
		cpuPercent = percents[0]
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	s.log.Debug("resource sample",
		zap.Float64("cpu_percent", cpuPercent),
		zap.Uint64("heap_alloc_bytes", mem.Alloc),
		zap.Int("goroutines", runtime.NumGoroutine()),
	)
}
