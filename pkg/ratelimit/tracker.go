package ratelimit

import (
	"time"
)

//DefaultRetryAfter is used when a provider signals throttling without a
//specific cooldown
const DefaultRetryAfter = 60 * time.Second

type (
	//State holds the most recent throttle signal for one provider.
	//hit_count exists for observability only and never drives decisions.
	State struct {
		Provider   string    `bson:"provider"`
		HitAt      time.Time `bson:"hit_at"`
		RetryAfter int64     `bson:"retry_after"` // seconds
		HitCount   int       `bson:"hit_count"`
	}

	//Tracker persists per-provider cooldowns across process invocations.
	//A rate limit discovered by one invocation must be honored by the very
	//next one, including invocations launched seconds later in a batch.
	Tracker interface {
		Check(provider string) (time.Duration, error)
		Record(provider string, retryAfter time.Duration) error
		States() ([]State, error)
	}
)

//Remaining computes how much of the cooldown is left at the given time
func (s *State) Remaining(now time.Time) time.Duration {
	until := s.HitAt.Add(time.Duration(s.RetryAfter) * time.Second)
	if until.After(now) {
		return until.Sub(now)
	}
	return 0
}
