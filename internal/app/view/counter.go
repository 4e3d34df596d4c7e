package view

import (
	"context"
	"math"
	"time"
)

// DefaultCounterDuration is how long a stat counter takes to reach its target.
const DefaultCounterDuration = 1500 * time.Millisecond

// DefaultFrame approximates one display frame.
const DefaultFrame = 16 * time.Millisecond

// Counter animates a number from zero to Target.
type Counter struct {
	Target   int
	Duration time.Duration
}

// NewCounter returns a counter with the default duration.
func NewCounter(target int) Counter {
	return Counter{Target: target, Duration: DefaultCounterDuration}
}

// Progress returns min(elapsed/duration, 1).
func (c Counter) Progress(elapsed time.Duration) float64 {
	if c.Duration <= 0 || elapsed >= c.Duration {
		return 1
	}
	if elapsed <= 0 {
		return 0
	}
	return float64(elapsed) / float64(c.Duration)
}

// Value is floor(target * progress).
func (c Counter) Value(elapsed time.Duration) int {
	return int(math.Floor(float64(c.Target) * c.Progress(elapsed)))
}

// Run emits a value every frame, measured on the monotonic clock, until the
// target is reached. The last value emitted is always Target unless ctx ends first.
func (c Counter) Run(ctx context.Context, frame time.Duration, emit func(int)) error {
	if frame <= 0 {
		frame = DefaultFrame
	}

	start := time.Now()
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	for {
		elapsed := time.Since(start)
		emit(c.Value(elapsed))

		if c.Progress(elapsed) >= 1 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
