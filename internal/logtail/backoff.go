package logtail

import "time"

const maxBackoff = 30 * time.Second

// calculateBackoff returns base * 2^failures, capped at limit. A zero limit
// uses maxBackoff.
func calculateBackoff(failures int, base, limit time.Duration) time.Duration {
	if limit <= 0 {
		limit = maxBackoff
	}
	if base <= 0 {
		base = time.Second
	}
	if failures <= 0 {
		return min(base, limit)
	}
	delay := base
	for i := 0; i < failures; i++ {
		delay *= 2
		if delay >= limit {
			return limit
		}
	}
	return delay
}
