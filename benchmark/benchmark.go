// benchmark.go
// A reusable benchmarking module for qc_buddy
// Measures execution time and memory usage for any wrapped command

package benchmark

import (
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"
)

// Usage is the resource report for one wrapped run
type Usage struct {
	Elapsed        time.Duration
	AllocMB        float64
	TotalAllocMB   float64
	HeapMB         float64
	GCCycles       uint32
	GoroutinesFrom int
	GoroutinesTo   int
}

// Run wraps f, logs its runtime and memory usage, and returns f's error.
func Run(label string, logger *zap.Logger, f func() error) (Usage, error) {
	logger.Info("benchmark start",
		zap.String("label", label),
		zap.String("timestamp", time.Now().Format(time.RFC1123)),
		zap.String("go", runtime.Version()),
		zap.String("os_arch", runtime.GOOS+"/"+runtime.GOARCH),
		zap.Int("cpus", runtime.NumCPU()),
	)
	if host, err := os.Hostname(); err == nil {
		logger.Debug("benchmark host", zap.String("hostname", host))
	}

	// Prepare for benchmark
	runtime.GC()
	var memStart, memEnd runtime.MemStats
	runtime.ReadMemStats(&memStart)
	start := time.Now()
	startGoroutines := runtime.NumGoroutine()

	// Run benchmarked function
	runErr := f()

	elapsed := time.Since(start)
	runtime.ReadMemStats(&memEnd)

	usage := Usage{
		Elapsed:        elapsed,
		AllocMB:        megabytes(int64(memEnd.Alloc) - int64(memStart.Alloc)),
		TotalAllocMB:   megabytes(int64(memEnd.TotalAlloc - memStart.TotalAlloc)),
		HeapMB:         megabytes(int64(memEnd.HeapAlloc)),
		GCCycles:       memEnd.NumGC - memStart.NumGC,
		GoroutinesFrom: startGoroutines,
		GoroutinesTo:   runtime.NumGoroutine(),
	}

	// Report resource usage
	logger.Info("benchmark done",
		zap.String("label", label),
		zap.Duration("elapsed", usage.Elapsed),
		zap.Float64("memory_used_mb", usage.AllocMB),
		zap.Float64("total_allocated_mb", usage.TotalAllocMB),
		zap.Float64("peak_heap_mb", usage.HeapMB),
		zap.Uint32("gc_cycles", usage.GCCycles),
		zap.Int("goroutines_start", usage.GoroutinesFrom),
		zap.Int("goroutines_end", usage.GoroutinesTo),
		zap.Bool("failed", runErr != nil),
	)
	return usage, runErr
}

func megabytes(b int64) float64 {
	return float64(b) / 1024.0 / 1024.0
}
