package fiber

import (
	"math"
	"time"
)

// Deadline reports the time left in the current slice. The scheduler polls
// it after every unit of work.
type Deadline func() time.Duration

// Budget returns a deadline that expires d after the call.
func Budget(d time.Duration) Deadline {
	end := time.Now().Add(d)
	return func() time.Duration {
		return time.Until(end)
	}
}

// Unlimited returns a deadline that never expires.
func Unlimited() Deadline {
	return func() time.Duration {
		return time.Duration(math.MaxInt64)
	}
}

// Units returns a deadline that expires after n polls. It makes slicing
// deterministic in tests and replays.
func Units(n int) Deadline {
	polls := 0
	return func() time.Duration {
		polls++
		if polls >= n {
			return 0
		}
		return time.Duration(math.MaxInt64)
	}
}
