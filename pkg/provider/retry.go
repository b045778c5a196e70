package provider

import (
	"math/rand"
	"time"
)

//RetryPolicy controls how the Executor retries throttled provider calls.
//Jitter and Sleep are injectable so the policy is testable with a fake
//clock.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Jitter      func(max time.Duration) time.Duration
	Sleep       func(d time.Duration)
}

//DefaultRetryPolicy retries throttled calls up to two more times with
//exponential backoff plus random jitter. The jitter desynchronizes retries
//across concurrently running providers.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   1 * time.Second,
		Jitter:      randomJitter,
		Sleep:       time.Sleep,
	}
}

//Backoff computes the delay before the next attempt. attempt is zero
//based: the delay doubles each attempt and carries jitter in
//[0, current backoff).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	delay := p.BaseDelay << uint(attempt)
	if p.Jitter != nil {
		delay += p.Jitter(delay)
	}
	return delay
}

func randomJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(max)))
}
