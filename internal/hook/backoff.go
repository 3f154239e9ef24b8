package hook

import (
	"math"
	"time"
)

// maxBackoffShift caps the exponent; the product is clamped separately.
const maxBackoffShift = 20

// Backoff returns the delay before retry number attempt (1-based):
// base * 2^attempt. With a 1s base that is 2s, 4s, 8s. The result
// saturates at the largest Duration.
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > maxBackoffShift {
		attempt = maxBackoffShift
	}
	if base > time.Duration(math.MaxInt64>>uint(attempt)) {
		return time.Duration(math.MaxInt64)
	}
	return base << uint(attempt)
}
