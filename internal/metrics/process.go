package metrics

import (
	"context"
	"runtime"
	"time"

	"github.com/MeKo-Tech/pogo/internal/common"
)

// ReportProcess samples process memory and CPU usage every interval and
// records process.memory.working_set_bytes and process.cpu.usage_cores
// (spec.md §6) to sink, blocking the calling goroutine until ctx is cancelled.
// Grounded on internal/common/benchmark.go's GetMemoryStats, the
// teacher's existing runtime.MemStats sampler.
func ReportProcess(ctx context.Context, sink Sink, interval time.Duration) {
	if sink == nil {
		return
	}
	if interval <= 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := common.GetMemoryStats()
			Record(sink, ProcessMemoryWorkingSet, float64(stats.Sys), nil)
			// GC CPU fraction scaled by available cores approximates
			// process CPU usage without a real /proc/self/stat reader,
			// which is outside spec.md §1's scope (file/process I/O is
			// an external collaborator there).
			Record(sink, ProcessCPUUsageCores, stats.GCCPUFraction*float64(runtime.GOMAXPROCS(0)), nil)
		}
	}
}
