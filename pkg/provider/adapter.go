package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/ipvet/ipvet/pkg/data"
)

type (
	//Adapter is the uniform contract each reputation source implements.
	//Adapters are minimal: caching, rate limit tracking, and retries are
	//the Executor's responsibility.
	Adapter interface {
		Name() string
		TTL() time.Duration
		Check(ctx context.Context, ip string) (*data.ProviderResult, error)
	}

	//ThrottleError signals that the provider asked us to back off.
	//RetryAfter is zero when the provider gave no specific cooldown.
	ThrottleError struct {
		RetryAfter time.Duration
	}

	//InvalidResponseError signals that the provider responded but the
	//payload could not be interpreted
	InvalidResponseError struct {
		Reason string
	}
)

func (e *ThrottleError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}
	return "rate limited"
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid response: %s", e.Reason)
}
