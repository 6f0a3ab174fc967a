package fetch

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Defaults for the retry policy.
const (
	DefaultMaxAttempts    = 5
	DefaultBaseDelay      = 2 * time.Second
	DefaultRateLimitDelay = 60 * time.Second

	// linearAttempts is the last attempt number whose delay is still linear.
	linearAttempts = 3
)

// Schedule is the retry delay policy. It implements backoff.BackOff.
type Schedule struct {
	BaseDelay      time.Duration
	RateLimitDelay time.Duration

	retries int
}

var _ backoff.BackOff = (*Schedule)(nil)

// NewSchedule returns a Schedule positioned before the first retry.
func NewSchedule(base, rateLimit time.Duration) *Schedule {
	return &Schedule{BaseDelay: base, RateLimitDelay: rateLimit}
}

// Delay returns the wait before the given 1-based attempt number.
func (s *Schedule) Delay(attempt int) time.Duration {
	switch {
	case attempt <= 1:
		return 0
	case attempt <= linearAttempts:
		return s.BaseDelay * time.Duration(attempt-1)
	default:
		return s.RateLimitDelay
	}
}

// NextBackOff returns the wait before the next attempt.
func (s *Schedule) NextBackOff() time.Duration {
	s.retries++
	return s.Delay(s.retries + 1)
}

// Reset rewinds to before the first retry.
func (s *Schedule) Reset() {
	s.retries = 0
}
