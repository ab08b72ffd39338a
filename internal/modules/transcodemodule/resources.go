package transcodemodule

import (
	"context"
	"runtime"

	"github.com/hashicorp/go-hclog"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
)

// highLoadFactor is the load-average-per-core threshold above which encoder
// thread counts are halved.
const highLoadFactor = 0.8

// SystemStatus is a point-in-time resource snapshot for the health endpoint.
type SystemStatus struct {
	Cores         int     `json:"cores"`
	CPUPercent    float64 `json:"cpu_percent"`
	Load1         float64 `json:"load_1"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsedMB  float64 `json:"memory_used_mb"`
	Goroutines    int     `json:"goroutines"`
}

// ResourceMonitor sizes encoder thread counts from the host's CPU topology
// and current load, and snapshots system status for health reporting. Every
// probe degrades to a runtime-derived estimate when the host metrics are
// unavailable.
type ResourceMonitor struct {
	logger hclog.Logger
}

// NewResourceMonitor creates a resource monitor.
func NewResourceMonitor(logger hclog.Logger) *ResourceMonitor {
	return &ResourceMonitor{logger: logger}
}

// EncoderThreads returns the thread count for a software encode: one less
// than the core count, halved while the one-minute load average exceeds the
// high-load threshold, never below one.
func (rm *ResourceMonitor) EncoderThreads(ctx context.Context) int {
	cores := runtime.NumCPU()
	threads := cores - 1
	if threads < 1 {
		threads = 1
	}

	loadStats, err := load.AvgWithContext(ctx)
	if err != nil {
		rm.logger.Debug("load average unavailable", "error", err)
		return threads
	}
	if loadStats.Load1 > highLoadFactor*float64(cores) {
		threads = threads / 2
		if threads < 1 {
			threads = 1
		}
		rm.logger.Debug("halving encoder threads under load",
			"load_1", loadStats.Load1, "cores", cores, "threads", threads)
	}
	return threads
}

// Status snapshots CPU, memory, and load for the health endpoint.
func (rm *ResourceMonitor) Status(ctx context.Context) SystemStatus {
	status := SystemStatus{
		Cores:      runtime.NumCPU(),
		Goroutines: runtime.NumGoroutine(),
	}

	cpuPercents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		rm.logger.Debug("cpu metrics unavailable", "error", err)
	} else if len(cpuPercents) > 0 {
		status.CPUPercent = cpuPercents[0]
	}

	memStats, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		rm.logger.Debug("memory metrics unavailable", "error", err)
	} else {
		status.MemoryPercent = memStats.UsedPercent
		status.MemoryUsedMB = float64(memStats.Used) / (1024 * 1024)
	}

	loadStats, err := load.AvgWithContext(ctx)
	if err != nil {
		rm.logger.Debug("load average unavailable", "error", err)
	} else {
		status.Load1 = loadStats.Load1
	}

	return status
}
