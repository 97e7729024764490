package metrics

import (
	"runtime"
	"sync"
	"time"
)

// FlipRate is an exponentially smoothed flips-per-second meter.
type FlipRate struct {
	mu        sync.Mutex
	rate      float64
	last      time.Time
	now       func() time.Time
	smoothing float64
}

// NewFlipRate creates a meter. smoothing in (0, 1] weights the newest sample.
func NewFlipRate(smoothing float64) *FlipRate {
	if smoothing <= 0 || smoothing > 1 {
		smoothing = 0.3
	}
	return &FlipRate{now: time.Now, smoothing: smoothing}
}

// Add records n flips at the current time and returns the updated rate.
func (f *FlipRate) Add(n uint64) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.now()
	if f.last.IsZero() {
		f.last = now
		return f.rate
	}
	dt := now.Sub(f.last).Seconds()
	if dt <= 0 {
		return f.rate
	}
	instant := float64(n) / dt
	if f.rate == 0 {
		f.rate = instant
	} else {
		f.rate = f.smoothing*instant + (1-f.smoothing)*f.rate
	}
	f.last = now
	return f.rate
}

// Rate returns the current smoothed rate.
func (f *FlipRate) Rate() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rate
}

// Reset clears the meter.
func (f *FlipRate) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rate = 0
	f.last = time.Time{}
}

// MemorySnapshot holds a point-in-time memory reading.
type MemorySnapshot struct {
	HeapAlloc    uint64 // bytes in use by application
	HeapSys      uint64 // bytes obtained from OS for heap
	NumGC        uint32 // number of completed GC cycles
	NumGoroutine int
}

// ReadMemory reads the current runtime memory statistics.
func ReadMemory() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemorySnapshot{
		HeapAlloc:    m.HeapAlloc,
		HeapSys:      m.HeapSys,
		NumGC:        m.NumGC,
		NumGoroutine: runtime.NumGoroutine(),
	}
}
