package optimizer

import (
	"testing"
	"time"
)

func TestMetricsBufferEvictsPastCap(t *testing.T) {
	b := NewMetricsBuffer(nil)
	for i := 0; i < metricsCap+50; i++ {
		b.Add(OptimizationInfo{CurrentIteration: i})
	}
	points := b.Points()
	if len(points) != metricsCap {
		t.Fatalf("buffer holds %d points, cap is %d", len(points), metricsCap)
	}
	if points[0].CurrentIteration != 50 {
		t.Errorf("oldest retained point = %d, want 50", points[0].CurrentIteration)
	}
	if points[len(points)-1].CurrentIteration != metricsCap+49 {
		t.Errorf("newest point = %d", points[len(points)-1].CurrentIteration)
	}
}

func TestMetricsBufferThrottlesFlush(t *testing.T) {
	var flushes int
	b := NewMetricsBuffer(func([]OptimizationInfo) { flushes++ })

	clock := time.Unix(0, 0)
	b.now = func() time.Time { return clock }

	// The very first Add flushes (zero lastFlush), then the window gates.
	for i := 0; i < 10; i++ {
		b.Add(OptimizationInfo{CurrentIteration: i})
	}
	if flushes != 1 {
		t.Fatalf("flushes within one window = %d, want 1", flushes)
	}

	clock = clock.Add(flushInterval)
	b.Add(OptimizationInfo{CurrentIteration: 10})
	if flushes != 2 {
		t.Fatalf("flush after window elapsed = %d, want 2", flushes)
	}

	clock = clock.Add(flushInterval / 2)
	b.Add(OptimizationInfo{CurrentIteration: 11})
	if flushes != 2 {
		t.Fatalf("half a window should not flush again, got %d", flushes)
	}
}

func TestMetricsBufferPointsIsACopy(t *testing.T) {
	b := NewMetricsBuffer(nil)
	b.Add(OptimizationInfo{CurrentIteration: 1})
	points := b.Points()
	points[0].CurrentIteration = 99
	if b.Points()[0].CurrentIteration != 1 {
		t.Fatal("Points leaked the internal slice")
	}
}
