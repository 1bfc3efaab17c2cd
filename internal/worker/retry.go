package worker

import (
	"math"
	"time"
)

// ExportRetry bounds re-delivery of spreadsheet mutations after transient
// Sheets API failures. Attempts are 1-based.
type ExportRetry struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Growth      float64
}

// DefaultExportRetry rides out a few minutes of Sheets API outage without
// dropping booking rows.
func DefaultExportRetry() ExportRetry {
	return ExportRetry{
		MaxAttempts: 5,
		BaseDelay:   2 * time.Second,
		MaxDelay:    time.Minute,
		Growth:      2,
	}
}

// Exhausted reports whether a task on the given attempt should be dropped
// instead of re-enqueued.
func (r ExportRetry) Exhausted(attempt int) bool {
	return r.MaxAttempts > 0 && attempt > r.MaxAttempts
}

// Delay returns how long to wait before re-enqueueing the given attempt,
// growing geometrically and clamped to MaxDelay.
func (r ExportRetry) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := r.BaseDelay
	if base <= 0 {
		base = time.Second
	}
	growth := r.Growth
	if growth <= 0 {
		growth = 2
	}

	d := time.Duration(float64(base) * math.Pow(growth, float64(attempt-1)))
	if r.MaxDelay > 0 && d > r.MaxDelay {
		d = r.MaxDelay
	}
	if d <= 0 {
		d = time.Second
	}
	return d
}
