// internal/api/v2/system.go
package api

import (
	"context"
	"math"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

const bytesPerMB = 1024 * 1024

// collectSystemStats reports host resource usage for the health endpoint.
// Metrics that cannot be read are omitted.
func collectSystemStats(ctx context.Context) map[string]any {
	stats := map[string]any{
		"goroutines": runtime.NumGoroutine(),
		"num_cpu":    runtime.NumCPU(),
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		stats["memory"] = map[string]any{
			"total_mb":     vm.Total / bytesPerMB,
			"used_mb":      vm.Used / bytesPerMB,
			"used_percent": round2(vm.UsedPercent),
		}
	}

	// zero interval compares against the previous call and does not block
	if pct, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pct) > 0 {
		stats["cpu_usage"] = round2(pct[0])
	}

	if usage, err := disk.UsageWithContext(ctx, "/"); err == nil {
		stats["disk_space"] = map[string]any{
			"total_gb":     round2(float64(usage.Total) / (bytesPerMB * 1024)),
			"free_gb":      round2(float64(usage.Free) / (bytesPerMB * 1024)),
			"used_percent": round2(usage.UsedPercent),
		}
	}

	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
