package format

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
)

// maxETA caps estimates produced from very slow progress rates.
const maxETA = 24 * time.Hour

// ProgressState tracks the completion of several concurrent workers and
// reports their average.
type ProgressState struct {
	mu         sync.Mutex
	progresses []float64
	numWorkers int
}

// NewProgressState creates a tracker for numWorkers workers.
func NewProgressState(numWorkers int) *ProgressState {
	if numWorkers < 0 {
		numWorkers = 0
	}
	return &ProgressState{
		progresses: make([]float64, numWorkers),
		numWorkers: numWorkers,
	}
}

// Update records the progress of one worker, clamped to [0, 1].
// Out-of-range indices are ignored.
func (ps *ProgressState) Update(index int, value float64) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if index < 0 || index >= ps.numWorkers {
		return
	}
	ps.progresses[index] = clamp01(value)
}

// CalculateAverage returns the mean progress across all workers.
func (ps *ProgressState) CalculateAverage() float64 {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.averageLocked()
}

func (ps *ProgressState) averageLocked() float64 {
	if ps.numWorkers == 0 {
		return 0
	}
	var total float64
	for _, p := range ps.progresses {
		total += p
	}
	return total / float64(ps.numWorkers)
}

// ProgressWithETA extends ProgressState with a smoothed progress rate so a
// remaining-time estimate can be shown.
type ProgressWithETA struct {
	*ProgressState
	startTime    time.Time
	lastUpdate   time.Time
	lastProgress float64
	progressRate float64 // fraction per second, exponentially smoothed
}

// NewProgressWithETA creates an ETA-aware tracker for numWorkers workers.
func NewProgressWithETA(numWorkers int) *ProgressWithETA {
	now := time.Now()
	return &ProgressWithETA{
		ProgressState: NewProgressState(numWorkers),
		startTime:     now,
		lastUpdate:    now,
	}
}

// UpdateWithETA records a worker's progress and returns the new average
// together with the current estimate.
func (p *ProgressWithETA) UpdateWithETA(index int, value float64) (float64, time.Duration) {
	p.Update(index, value)

	p.mu.Lock()
	avg := p.averageLocked()
	now := time.Now()
	if elapsed := now.Sub(p.lastUpdate).Seconds(); elapsed > 0 && avg > p.lastProgress {
		rate := (avg - p.lastProgress) / elapsed
		if p.progressRate == 0 {
			p.progressRate = rate
		} else {
			p.progressRate = 0.3*rate + 0.7*p.progressRate
		}
		p.lastProgress = avg
		p.lastUpdate = now
	}
	p.mu.Unlock()

	return avg, p.GetETA()
}

// GetETA returns the estimated time to completion, or 0 when unknown.
func (p *ProgressWithETA) GetETA() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.progressRate <= 0 {
		return 0
	}
	remaining := 1 - p.averageLocked()
	if remaining <= 0 {
		return 0
	}
	secs := remaining / p.progressRate
	if secs > maxETA.Seconds() || math.IsInf(secs, 0) || math.IsNaN(secs) {
		return maxETA
	}
	return time.Duration(secs * float64(time.Second))
}

// ProgressBar renders a bar of length cells for progress in [0, 1].
func ProgressBar(progress float64, length int) string {
	if length <= 0 {
		return ""
	}
	filled := int(clamp01(progress) * float64(length))
	return strings.Repeat("█", filled) + strings.Repeat("░", length-filled)
}

// FormatProgressBarWithETA renders "[bar] 42.00% ETA: 5s".
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	return fmt.Sprintf("[%s] %6.2f%% ETA: %s", ProgressBar(progress, width), clamp01(progress)*100, FormatETA(eta))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
