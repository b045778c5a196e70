package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ipvet/ipvet/pkg/cache"
	"github.com/ipvet/ipvet/pkg/data"
	"github.com/ipvet/ipvet/pkg/ratelimit"
	"github.com/ipvet/ipvet/util"
	log "github.com/sirupsen/logrus"
)

//Executor wraps a single adapter invocation with the cache lookup, rate
//limit gate, hard timeout, throttle retries, and cache write back. Every
//path returns a well formed ProviderResult: errors are represented as data
//and never raised to the caller.
type Executor struct {
	registry  *Registry
	cache     cache.Repository
	rateLimit ratelimit.Tracker
	retry     RetryPolicy
	log       *log.Logger
}

//NewExecutor bundles the shared stores behind a provider executor
func NewExecutor(registry *Registry, cacheRepo cache.Repository,
	rateLimit ratelimit.Tracker, retry RetryPolicy, logger *log.Logger) *Executor {
	return &Executor{
		registry:  registry,
		cache:     cacheRepo,
		rateLimit: rateLimit,
		retry:     retry,
		log:       logger,
	}
}

type invocation struct {
	result *data.ProviderResult
	err    error
}

//Execute runs one provider query for one IP
func (e *Executor) Execute(providerName string, ip string, timeout time.Duration, useCache bool) data.ProviderResult {
	adapter, ok := e.registry.Get(providerName)
	if !ok {
		return e.errorResult(ip, providerName, data.ErrorProviderNotAvailable)
	}

	// fresh cache entries bypass the rate limit gate and the network
	if useCache {
		cached, hit, err := e.cache.Get(ip, providerName)
		if err != nil {
			e.log.WithFields(log.Fields{
				"provider": providerName,
				"ip":       ip,
				"error":    err.Error(),
			}).Warn("Cache lookup failed, falling through to live query")
		} else if hit {
			return *cached
		}
	}

	remaining, err := e.rateLimit.Check(providerName)
	if err != nil {
		e.log.WithFields(log.Fields{
			"provider": providerName,
			"error":    err.Error(),
		}).Warn("Rate limit lookup failed, assuming provider is available")
	} else if remaining > 0 {
		result := e.errorResult(ip, providerName, data.ErrorRateLimited)
		result.RetryAfter = util.FormatSeconds(remaining)
		return result
	}

	// a misconfigured attempt count must never suppress the query entirely
	attempts := util.Max(1, e.retry.MaxAttempts)

	var lastRetryAfter time.Duration
	for attempt := 0; attempt < attempts; attempt++ {
		inv := e.invoke(adapter, ip, timeout)

		var throttle *ThrottleError
		var invalid *InvalidResponseError
		switch {
		case inv.err == nil:
			result := *inv.result
			result.IP = ip
			result.Provider = providerName
			result.Cached = false
			result.Error = ""
			if err := e.cache.Put(ip, providerName, &result, adapter.TTL()); err != nil {
				e.log.WithFields(log.Fields{
					"provider": providerName,
					"ip":       ip,
					"error":    err.Error(),
				}).Warn("Failed to cache provider result")
			}
			return result

		case errors.As(inv.err, &throttle):
			lastRetryAfter = throttle.RetryAfter
			if lastRetryAfter <= 0 {
				lastRetryAfter = ratelimit.DefaultRetryAfter
			}
			if err := e.rateLimit.Record(providerName, lastRetryAfter); err != nil {
				e.log.WithFields(log.Fields{
					"provider": providerName,
					"error":    err.Error(),
				}).Warn("Failed to record throttle signal")
			}
			if attempt < attempts-1 {
				e.retry.Sleep(e.retry.Backoff(attempt))
			}

		case errors.Is(inv.err, context.DeadlineExceeded):
			return e.errorResult(ip, providerName, data.TimeoutError(timeout))

		case errors.As(inv.err, &invalid):
			return e.errorResult(ip, providerName, data.ErrorInvalidResponse)

		default:
			return e.errorResult(ip, providerName, data.ProviderFailedError(inv.err.Error()))
		}
	}

	// retries exhausted while throttled
	result := e.errorResult(ip, providerName, data.ErrorRateLimited)
	result.RetryAfter = util.FormatSeconds(lastRetryAfter)
	return result
}

//invoke runs the adapter under a hard deadline. The deadline holds even if
//the adapter ignores its context, and a panicking adapter is mapped to an
//error rather than taking down its sibling queries.
func (e *Executor) invoke(adapter Adapter, ip string, timeout time.Duration) invocation {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan invocation, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- invocation{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		result, err := adapter.Check(ctx, ip)
		done <- invocation{result: result, err: err}
	}()

	select {
	case inv := <-done:
		if inv.err == nil && inv.result == nil {
			inv.err = &InvalidResponseError{Reason: "adapter returned no result"}
		}
		return inv
	case <-ctx.Done():
		return invocation{err: context.DeadlineExceeded}
	}
}

func (e *Executor) errorResult(ip string, providerName string, errStr string) data.ProviderResult {
	return data.ProviderResult{
		IP:       ip,
		Provider: providerName,
		Error:    errStr,
	}
}
