package notify

import "time"

// SetRateLimitWaitForTest shortens the retry pause and returns a
// restore func.
func SetRateLimitWaitForTest(d time.Duration) func() {
	old := rateLimitWait
	rateLimitWait = d
	return func() { rateLimitWait = old }
}
