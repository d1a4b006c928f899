// Package timer measures elapsed run time for the scrape log.
package timer

import (
	"fmt"
	"time"

	"github.com/bmohb/iiroc-scrape/internal/logger"
)

// Timestamp marks the start of a measured span
type Timestamp struct {
	at time.Time
}

// Timer hands out timestamps and formats elapsed time.
// Every span closed with End is recorded in metrics under its label.
type Timer struct {
	now     func() time.Time
	metrics *logger.Metrics
}

// New creates a Timer using the wall clock. metrics may be nil.
func New(metrics *logger.Metrics) *Timer {
	return &Timer{
		now:     time.Now,
		metrics: metrics,
	}
}

// Start returns the current timestamp
func (t *Timer) Start() Timestamp {
	return Timestamp{at: t.now()}
}

// Elapsed returns the time since start
func (t *Timer) Elapsed(start Timestamp) time.Duration {
	return t.now().Sub(start.at)
}

// End records the span since start under label and returns it formatted
func (t *Timer) End(start Timestamp, label string) string {
	d := t.Elapsed(start)
	if t.metrics != nil {
		t.metrics.RecordTiming(label, d)
	}
	return Format(d)
}

// Format renders a duration as seconds with millisecond precision, e.g. "1.234 seconds"
func Format(d time.Duration) string {
	return fmt.Sprintf("%.3f seconds", d.Seconds())
}
