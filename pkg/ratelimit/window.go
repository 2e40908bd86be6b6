// Package ratelimit derives wait decisions from the quota headers the X API
// attaches to every response, and paces requests with a fixed polite delay.
package ratelimit

import (
	"net/http"
	"strconv"
	"time"
)

// resetBuffer is added on top of the advertised reset time to absorb clock
// skew between us and the API.
const resetBuffer = 5 * time.Second

// Window describes the rate limit quota observed on the last response. It is
// a stateless policy input; the fetch engine owns when to consult it.
type Window struct {
	Limit     int
	Remaining int
	Reset     int64 // unix seconds
}

// ParseHeaders extracts the rate limit window from x-rate-limit-* headers.
// Missing or malformed headers yield zero values, which never trigger a wait
// with a future reset.
func ParseHeaders(h http.Header) Window {
	return Window{
		Limit:     headerInt(h, "x-rate-limit-limit"),
		Remaining: headerInt(h, "x-rate-limit-remaining"),
		Reset:     int64(headerInt(h, "x-rate-limit-reset")),
	}
}

func headerInt(h http.Header, key string) int {
	v, err := strconv.Atoi(h.Get(key))
	if err != nil {
		return 0
	}
	return v
}

// ShouldWait reports whether the quota is exhausted enough that the next
// request should be delayed until the window resets.
func (w Window) ShouldWait() bool {
	return w.Remaining <= 1
}

// WaitDuration returns how long to sleep before the window resets, including
// the safety buffer. Never negative.
func (w Window) WaitDuration(now time.Time) time.Duration {
	d := time.Unix(w.Reset, 0).Sub(now) + resetBuffer
	if d < 0 {
		return 0
	}
	return d
}
