// Package anim computes the score counter and bar animations of the results
// panel.
package anim

import (
	"context"
	"math"
	"time"
)

// Animation timings.
const (
	CounterDuration = 900 * time.Millisecond
	BarDelay        = 100 * time.Millisecond
	FrameInterval   = 16 * time.Millisecond
)

// EaseOutCubic maps progress p in [0, 1] to 1 - (1-p)^3. Values outside the
// range are clamped.
func EaseOutCubic(p float64) float64 {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return 1
	}
	inv := 1 - p
	return 1 - inv*inv*inv
}

// Counter animates an integer from From to To over Duration.
type Counter struct {
	From     int
	To       int
	Duration time.Duration
}

// NewCounter counts from zero to the rounded score.
func NewCounter(score float64) Counter {
	return Counter{From: 0, To: int(math.Round(score)), Duration: CounterDuration}
}

// At returns the displayed value after elapsed and whether the animation has
// finished. The final frame is always exactly To.
func (c Counter) At(elapsed time.Duration) (int, bool) {
	if c.Duration <= 0 || elapsed >= c.Duration {
		return c.To, true
	}
	if elapsed < 0 {
		elapsed = 0
	}

	p := EaseOutCubic(float64(elapsed) / float64(c.Duration))
	return c.From + int(math.Round(float64(c.To-c.From)*p)), false
}

// Play drives the counter from frames until it finishes or ctx is done. set
// receives each new value; repeated values are skipped. Play returns the last
// value passed to set.
func (c Counter) Play(ctx context.Context, frames <-chan time.Time, set func(int)) int {
	var start time.Time
	last := c.From
	set(last)

	for {
		select {
		case <-ctx.Done():
			return last
		case now, ok := <-frames:
			if !ok {
				set(c.To)
				return c.To
			}
			if start.IsZero() {
				start = now
			}
			v, done := c.At(now.Sub(start))
			if v != last {
				last = v
				set(v)
			}
			if done {
				return last
			}
		}
	}
}

// Width formats a 0-100 score as a CSS percentage width.
func Width(score float64) float64 {
	return math.Max(0, math.Min(100, score))
}
