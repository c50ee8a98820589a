package util

import "time"

// Clock abstracts time.Now so TTL logic can be driven from tests.
type Clock func() time.Time

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// Today formats the current UTC date as YYYY-MM-DD.
func Today(now Clock) string {
	if now == nil {
		now = NowUTC
	}
	return now().UTC().Format("2006-01-02")
}
