package output

import "time"

// SetNow pins the envelope timestamp for the duration of a test.
func SetNow(t time.Time) func() {
	prev := now
	now = func() time.Time { return t }

	return func() { now = prev }
}
