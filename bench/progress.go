package bench

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// progressTracker prints throughput every reportInterval entries. A nil
// writer makes every method a no-op apart from timing.
type progressTracker struct {
	writer         io.Writer
	total          int
	current        int
	reportInterval int
	lastReported   int
	startTime      time.Time
	mu             sync.Mutex
}

func newProgressTracker(w io.Writer, total, reportInterval int) *progressTracker {
	if reportInterval < 1 {
		reportInterval = 1
	}
	return &progressTracker{writer: w, total: total, reportInterval: reportInterval}
}

func (p *progressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.startTime = time.Now()
	p.current = 0
	p.lastReported = 0
}

func (p *progressTracker) Increment(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = min(p.current+delta, p.total)
	if p.current-p.lastReported >= p.reportInterval {
		p.report()
		p.lastReported = p.current
	}
}

func (p *progressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writer == nil {
		return
	}
	p.report()
	fmt.Fprintln(p.writer)
}

func (p *progressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return time.Since(p.startTime)
}

// report must be called with mu held.
func (p *progressTracker) report() {
	if p.writer == nil {
		return
	}
	elapsed := time.Since(p.startTime).Seconds()
	rate := 0.0
	if elapsed > 0 {
		rate = float64(p.current) / elapsed
	}
	pct := 100.0
	if p.total > 0 {
		pct = float64(p.current) / float64(p.total) * 100.0
	}
	fmt.Fprintf(p.writer, "\rWritten: %d/%d (%.1f%%) - %.0f entries/s", p.current, p.total, pct, rate)
}
