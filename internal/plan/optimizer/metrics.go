package optimizer

import (
	"sync"
	"time"
)

const (
	// metricsCap bounds the charting buffer.
	metricsCap = 300
	// flushInterval bounds render pressure under high-frequency streaming.
	flushInterval = 500 * time.Millisecond
)

// MetricsBuffer accumulates annealing snapshots in a bounded ring and flushes
// them to a callback at most once per flushInterval of wall-clock time.
type MetricsBuffer struct {
	mu        sync.Mutex
	points    []OptimizationInfo
	lastFlush time.Time
	flush     func([]OptimizationInfo)
	now       func() time.Time
}

// NewMetricsBuffer creates a buffer; flush may be nil when nobody charts.
func NewMetricsBuffer(flush func([]OptimizationInfo)) *MetricsBuffer {
	return &MetricsBuffer{flush: flush, now: time.Now}
}

// Add appends one snapshot, evicting the oldest past capacity, and flushes if
// the throttle window has elapsed.
func (b *MetricsBuffer) Add(info OptimizationInfo) {
	b.mu.Lock()
	b.points = append(b.points, info)
	if len(b.points) > metricsCap {
		b.points = b.points[len(b.points)-metricsCap:]
	}
	var snapshot []OptimizationInfo
	if b.flush != nil && b.now().Sub(b.lastFlush) >= flushInterval {
		b.lastFlush = b.now()
		snapshot = b.snapshotLocked()
	}
	b.mu.Unlock()

	if snapshot != nil {
		b.flush(snapshot)
	}
}

// Points returns a copy of the buffered snapshots.
func (b *MetricsBuffer) Points() []OptimizationInfo {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

func (b *MetricsBuffer) snapshotLocked() []OptimizationInfo {
	out := make([]OptimizationInfo, len(b.points))
	copy(out, b.points)
	return out
}
