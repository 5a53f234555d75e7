// Package ratelimit enforces the optional max_tasks_per_minute /
// max_tasks_per_hour token-bucket limits checked before run_once (spec
// §5). golang.org/x/time/rate is the standard ecosystem token-bucket
// limiter and appears in the retrieved example pack's dependency surface
// (blackcoderx-falcon); it is wired here for the first time, one limiter
// per window with burst equal to the window's budget so a fresh run is not
// immediately throttled.
package ratelimit

import (
	"time"

	"golang.org/x/time/rate"
)

// Limiter gates task throughput against a per-minute and a per-hour budget.
// A limit of 0 disables that window.
type Limiter struct {
	perMinute *rate.Limiter
	perHour   *rate.Limiter
}

// New constructs a Limiter from the configured per-minute/per-hour caps.
func New(maxPerMinute, maxPerHour int) *Limiter {
	l := &Limiter{}
	if maxPerMinute > 0 {
		l.perMinute = rate.NewLimiter(rate.Every(time.Minute/time.Duration(maxPerMinute)), maxPerMinute)
	}
	if maxPerHour > 0 {
		l.perHour = rate.NewLimiter(rate.Every(time.Hour/time.Duration(maxPerHour)), maxPerHour)
	}
	return l
}

// Allow reports whether a task may proceed right now, consuming one token
// from each enabled window if so. Both windows must have budget for the
// call to succeed; a Reserve/Cancel pair is used instead of Allow so a
// denial in one window never leaves the other window's token spent.
func (l *Limiter) Allow() bool {
	now := time.Now()

	var minuteRes *rate.Reservation
	if l.perMinute != nil {
		minuteRes = l.perMinute.ReserveN(now, 1)
		if !minuteRes.OK() || minuteRes.DelayFrom(now) > 0 {
			minuteRes.CancelAt(now)
			return false
		}
	}

	if l.perHour != nil {
		hourRes := l.perHour.ReserveN(now, 1)
		if !hourRes.OK() || hourRes.DelayFrom(now) > 0 {
			hourRes.CancelAt(now)
			if minuteRes != nil {
				minuteRes.CancelAt(now)
			}
			return false
		}
	}

	return true
}
