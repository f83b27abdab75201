package retry

import "time"

// MaxDelay caps every back-off delay.
const MaxDelay = time.Minute

// ExponentialBackoff returns base * 2^attempt, never more than MaxDelay.
// Negative attempts are treated as zero.
func ExponentialBackoff(attempt int, base time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 30 {
		return MaxDelay
	}
	d := base * (1 << attempt)
	if d > MaxDelay || d < 0 {
		return MaxDelay
	}
	return d
}
