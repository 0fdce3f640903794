package util

import (
	"log/slog"
	"math"
	"runtime"
)

// MemoryUsage is a heap sample attached to run logs.
type MemoryUsage struct {
	HeapMB float64
	NumGC  uint32
}

func ReadMemoryUsage() MemoryUsage {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemoryUsage{
		HeapMB: math.Round(float64(m.HeapAlloc)/(1<<20)*10) / 10,
		NumGC:  m.NumGC,
	}
}

func (m MemoryUsage) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("heap_mb", m.HeapMB),
		slog.Uint64("gc_cycles", uint64(m.NumGC)),
	)
}
