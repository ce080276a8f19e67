package common

import (
	"fmt"
	"runtime"
	"time"
)

// MemoryStats is a snapshot of runtime.MemStats trimmed to the fields the
// bench/profiling paths actually report.
type MemoryStats struct {
	// Heap
	Alloc        uint64
	TotalAlloc   uint64
	HeapAlloc    uint64
	HeapSys      uint64
	HeapIdle     uint64
	HeapInuse    uint64
	HeapReleased uint64
	HeapObjects  uint64

	// Stack and overall
	StackInuse uint64
	StackSys   uint64
	Sys        uint64
	Lookups    uint64
	Mallocs    uint64
	Frees      uint64

	// GC
	GCSys         uint64
	NextGC        uint64
	LastGC        uint64 // nanoseconds since program start
	NumGC         uint32
	NumForcedGC   uint32
	GCCPUFraction float64
}

// GetMemoryStats samples runtime.ReadMemStats and copies the fields
// MemoryStats tracks.
func GetMemoryStats() MemoryStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemoryStats{
		Alloc:         m.Alloc,
		TotalAlloc:    m.TotalAlloc,
		HeapAlloc:     m.HeapAlloc,
		HeapSys:       m.HeapSys,
		HeapIdle:      m.HeapIdle,
		HeapInuse:     m.HeapInuse,
		HeapReleased:  m.HeapReleased,
		HeapObjects:   m.HeapObjects,
		StackInuse:    m.StackInuse,
		StackSys:      m.StackSys,
		Sys:           m.Sys,
		Lookups:       m.Lookups,
		Mallocs:       m.Mallocs,
		Frees:         m.Frees,
		GCSys:         m.GCSys,
		NextGC:        m.NextGC,
		LastGC:        m.LastGC,
		NumGC:         m.NumGC,
		NumForcedGC:   m.NumForcedGC,
		GCCPUFraction: m.GCCPUFraction,
	}
}

// AllocDelta returns how many bytes Alloc grew between before and the
// receiver; negative if it shrank (e.g. a GC ran in between).
func (m MemoryStats) AllocDelta(before MemoryStats) int64 {
	return int64(m.Alloc) - int64(before.Alloc) //nolint:gosec // G115: display-only delta
}

func (m MemoryStats) String() string {
	return fmt.Sprintf("Alloc: %d KB, Total: %d KB, Sys: %d KB, GC: %d (%.2f%% CPU)",
		m.Alloc/1024, m.TotalAlloc/1024, m.Sys/1024, m.NumGC, m.GCCPUFraction*100)
}

// BenchmarkResult is one named timed run, with memory usage bracketing it.
type BenchmarkResult struct {
	Name         string
	Duration     time.Duration
	Iterations   int
	MemoryBefore MemoryStats
	MemoryAfter  MemoryStats
	Error        error
}

func (br BenchmarkResult) String() string {
	if br.Error != nil {
		return fmt.Sprintf("%s: ERROR - %v", br.Name, br.Error)
	}

	avg := br.Duration / time.Duration(br.Iterations)
	memKB := br.MemoryAfter.AllocDelta(br.MemoryBefore) / 1024

	return fmt.Sprintf("%s: %d iterations, avg: %v, total: %v, mem: +%d KB",
		br.Name, br.Iterations, avg, br.Duration, memKB)
}
