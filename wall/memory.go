package wall

import (
	"context"
	goruntime "runtime"

	"github.com/dustin/go-humanize"
	"github.com/videowall/videowall/log"
)

// MemoryUsage is a report of the process memory and the embed churn.
type MemoryUsage struct {
	HeapAlloc   uint64 `json:"heapAlloc"`
	HeapInuse   uint64 `json:"heapInuse"`
	Sys         uint64 `json:"sys"`
	NumGC       uint32 `json:"numGC"`
	Goroutines  int    `json:"goroutines"`
	VideoCount  int    `json:"videoCount"`
	Generation  uint64 `json:"generation"`
	Recreations uint64 `json:"recreations"`
}

func (m MemoryUsage) String() string {
	return "heap " + humanize.Bytes(m.HeapAlloc) +
		" (in use " + humanize.Bytes(m.HeapInuse) +
		", sys " + humanize.Bytes(m.Sys) + "), " +
		humanize.Comma(int64(m.Goroutines)) + " goroutines, " +
		humanize.Comma(int64(m.VideoCount)) + " videos since recreation"
}

// LogMemoryUsage logs and returns the current memory usage.
func (r *Runtime) LogMemoryUsage() MemoryUsage {
	var stats goruntime.MemStats
	goruntime.ReadMemStats(&stats)

	r.mu.Lock()
	usage := MemoryUsage{
		HeapAlloc:   stats.HeapAlloc,
		HeapInuse:   stats.HeapInuse,
		Sys:         stats.Sys,
		NumGC:       stats.NumGC,
		Goroutines:  goruntime.NumGoroutine(),
		VideoCount:  r.playedSinceRecreate,
		Generation:  r.generation,
		Recreations: r.stats.Recreations,
	}
	r.mu.Unlock()

	log.With(log.Fields{
		"heap_alloc":  usage.HeapAlloc,
		"goroutines":  usage.Goroutines,
		"video_count": usage.VideoCount,
		"generation":  usage.Generation,
	}).Info("memory usage: " + usage.String())

	return usage
}

// RunMemoryMonitor logs memory usage every MemoryMonitorInterval until ctx
// is done. It returns immediately when the interval is zero.
func (r *Runtime) RunMemoryMonitor(ctx context.Context) error {
	if r.cfg.MemoryMonitorInterval <= 0 {
		return nil
	}

	ticker := r.clock.NewTicker(r.cfg.MemoryMonitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			r.LogMemoryUsage()
		}
	}
}
