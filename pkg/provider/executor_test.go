package provider

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/ipvet/ipvet/pkg/cache"
	"github.com/ipvet/ipvet/pkg/data"
	"github.com/ipvet/ipvet/pkg/ratelimit"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

const testIP = "203.0.113.7"

type fakeAdapter struct {
	name  string
	ttl   time.Duration
	calls int
	check func(ctx context.Context, ip string) (*data.ProviderResult, error)
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) TTL() time.Duration {
	if f.ttl == 0 {
		return cache.TTLDefault
	}
	return f.ttl
}

func (f *fakeAdapter) Check(ctx context.Context, ip string) (*data.ProviderResult, error) {
	f.calls++
	return f.check(ctx, ip)
}

func testLogger() *log.Logger {
	logger := log.New()
	logger.Out = io.Discard
	return logger
}

//instantRetry removes all real delays so tests never sleep
func instantRetry(slept *[]time.Duration) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Jitter:      func(max time.Duration) time.Duration { return 0 },
		Sleep: func(d time.Duration) {
			if slept != nil {
				*slept = append(*slept, d)
			}
		},
	}
}

func newTestExecutor(t *testing.T, adapters ...Adapter) (*Executor, *cache.MemRepository, *ratelimit.MemTracker) {
	registry := NewRegistry()
	for _, adapter := range adapters {
		assert.Nil(t, registry.Register(adapter))
	}
	repo := cache.NewMemRepository()
	tracker := ratelimit.NewMemTracker()
	executor := NewExecutor(registry, repo, tracker, instantRetry(nil), testLogger())
	return executor, repo, tracker
}

func TestExecuteUnknownProvider(t *testing.T) {
	executor, _, _ := newTestExecutor(t)

	result := executor.Execute("nonexistent", testIP, time.Second, true)
	assert.Equal(t, data.ErrorProviderNotAvailable, result.Error)
	assert.Equal(t, "nonexistent", result.Provider)
	assert.Equal(t, testIP, result.IP)
}

func TestExecuteSuccessAndCacheWriteBack(t *testing.T) {
	adapter := &fakeAdapter{
		name: "abuseipdb",
		check: func(ctx context.Context, ip string) (*data.ProviderResult, error) {
			return &data.ProviderResult{Score: 80, IsListed: true}, nil
		},
	}
	executor, repo, _ := newTestExecutor(t, adapter)

	result := executor.Execute("abuseipdb", testIP, time.Second, true)
	assert.Equal(t, "", result.Error)
	assert.Equal(t, 80, result.Score)
	assert.Equal(t, testIP, result.IP, "identity fields are normalized by the executor")
	assert.Equal(t, "abuseipdb", result.Provider)
	assert.False(t, result.Cached)
	assert.Equal(t, 1, adapter.calls)

	cached, hit, err := repo.Get(testIP, "abuseipdb")
	assert.Nil(t, err)
	assert.True(t, hit, "successful results are written back to the cache")
	assert.Equal(t, 80, cached.Score)
}

func TestExecuteCacheHitSkipsAdapter(t *testing.T) {
	adapter := &fakeAdapter{
		name: "abuseipdb",
		check: func(ctx context.Context, ip string) (*data.ProviderResult, error) {
			return &data.ProviderResult{Score: 80, IsListed: true}, nil
		},
	}
	executor, _, _ := newTestExecutor(t, adapter)

	first := executor.Execute("abuseipdb", testIP, time.Second, true)
	assert.False(t, first.Cached)

	second := executor.Execute("abuseipdb", testIP, time.Second, true)
	assert.True(t, second.Cached)
	assert.Equal(t, 80, second.Score)
	assert.Equal(t, 1, adapter.calls, "a fresh cache entry skips the live query")
}

func TestExecuteNoCacheForcesLiveQuery(t *testing.T) {
	adapter := &fakeAdapter{
		name: "abuseipdb",
		check: func(ctx context.Context, ip string) (*data.ProviderResult, error) {
			return &data.ProviderResult{Score: 80}, nil
		},
	}
	executor, _, _ := newTestExecutor(t, adapter)

	executor.Execute("abuseipdb", testIP, time.Second, true)
	result := executor.Execute("abuseipdb", testIP, time.Second, false)
	assert.False(t, result.Cached)
	assert.Equal(t, 2, adapter.calls)
}

func TestExecuteRateLimitGate(t *testing.T) {
	adapter := &fakeAdapter{
		name: "ipqs",
		check: func(ctx context.Context, ip string) (*data.ProviderResult, error) {
			return &data.ProviderResult{Score: 10}, nil
		},
	}
	executor, _, tracker := newTestExecutor(t, adapter)

	assert.Nil(t, tracker.Record("ipqs", 90*time.Second))

	result := executor.Execute("ipqs", testIP, time.Second, true)
	assert.Equal(t, data.ErrorRateLimited, result.Error)
	assert.Equal(t, 90, result.RetryAfter)
	assert.Equal(t, 0, adapter.calls, "a known cooldown is honored without touching the provider")
}

func TestExecuteCacheHitBypassesRateLimit(t *testing.T) {
	adapter := &fakeAdapter{
		name: "ipqs",
		check: func(ctx context.Context, ip string) (*data.ProviderResult, error) {
			return &data.ProviderResult{Score: 10}, nil
		},
	}
	executor, _, tracker := newTestExecutor(t, adapter)

	executor.Execute("ipqs", testIP, time.Second, true)
	assert.Nil(t, tracker.Record("ipqs", 90*time.Second))

	result := executor.Execute("ipqs", testIP, time.Second, true)
	assert.Equal(t, "", result.Error, "cached data is served even while throttled")
	assert.True(t, result.Cached)
}

func TestExecuteThrottleRetriesThenGivesUp(t *testing.T) {
	adapter := &fakeAdapter{
		name: "abuseipdb",
		check: func(ctx context.Context, ip string) (*data.ProviderResult, error) {
			return nil, &ThrottleError{RetryAfter: 45 * time.Second}
		},
	}

	registry := NewRegistry()
	assert.Nil(t, registry.Register(adapter))
	var slept []time.Duration
	tracker := ratelimit.NewMemTracker()
	executor := NewExecutor(registry, cache.NewMemRepository(), tracker, instantRetry(&slept), testLogger())

	result := executor.Execute("abuseipdb", testIP, time.Second, true)
	assert.Equal(t, data.ErrorRateLimited, result.Error)
	assert.Equal(t, 45, result.RetryAfter)
	assert.Equal(t, 3, adapter.calls, "throttling is retried up to the attempt limit")
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, slept,
		"backoff doubles between attempts and no sleep follows the last one")

	remaining, err := tracker.Check("abuseipdb")
	assert.Nil(t, err)
	assert.True(t, remaining > 0, "the throttle signal is recorded for future invocations")
}

func TestExecuteThrottleThenSuccess(t *testing.T) {
	adapter := &fakeAdapter{name: "abuseipdb"}
	adapter.check = func(ctx context.Context, ip string) (*data.ProviderResult, error) {
		if adapter.calls == 1 {
			return nil, &ThrottleError{}
		}
		return &data.ProviderResult{Score: 5}, nil
	}
	executor, _, _ := newTestExecutor(t, adapter)

	result := executor.Execute("abuseipdb", testIP, time.Second, true)
	assert.Equal(t, "", result.Error)
	assert.Equal(t, 5, result.Score)
	assert.Equal(t, 2, adapter.calls)
}

func TestExecuteZeroAttemptsStillQueries(t *testing.T) {
	adapter := &fakeAdapter{
		name: "abuseipdb",
		check: func(ctx context.Context, ip string) (*data.ProviderResult, error) {
			return &data.ProviderResult{Score: 12}, nil
		},
	}

	registry := NewRegistry()
	assert.Nil(t, registry.Register(adapter))
	retry := instantRetry(nil)
	retry.MaxAttempts = 0
	executor := NewExecutor(registry, cache.NewMemRepository(),
		ratelimit.NewMemTracker(), retry, testLogger())

	result := executor.Execute("abuseipdb", testIP, time.Second, true)
	assert.Equal(t, "", result.Error)
	assert.Equal(t, 12, result.Score)
	assert.Equal(t, 1, adapter.calls, "the attempt count is clamped to at least one")
}

func TestExecuteTimeout(t *testing.T) {
	adapter := &fakeAdapter{
		name: "internetdb",
		check: func(ctx context.Context, ip string) (*data.ProviderResult, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	executor, repo, _ := newTestExecutor(t, adapter)

	result := executor.Execute("internetdb", testIP, 50*time.Millisecond, true)
	assert.Contains(t, result.Error, "timeout after")

	_, hit, err := repo.Get(testIP, "internetdb")
	assert.Nil(t, err)
	assert.False(t, hit, "timed out queries leave no cache entry")
}

func TestExecuteInvalidResponse(t *testing.T) {
	adapter := &fakeAdapter{
		name: "ipqs",
		check: func(ctx context.Context, ip string) (*data.ProviderResult, error) {
			return nil, &InvalidResponseError{Reason: "unexpected payload"}
		},
	}
	executor, _, _ := newTestExecutor(t, adapter)

	result := executor.Execute("ipqs", testIP, time.Second, true)
	assert.Equal(t, data.ErrorInvalidResponse, result.Error)
	assert.Equal(t, 1, adapter.calls, "malformed responses are not retried")
}

func TestExecuteNilResultIsInvalid(t *testing.T) {
	adapter := &fakeAdapter{
		name: "ipqs",
		check: func(ctx context.Context, ip string) (*data.ProviderResult, error) {
			return nil, nil
		},
	}
	executor, _, _ := newTestExecutor(t, adapter)

	result := executor.Execute("ipqs", testIP, time.Second, true)
	assert.Equal(t, data.ErrorInvalidResponse, result.Error)
}

func TestExecutePanicBecomesError(t *testing.T) {
	adapter := &fakeAdapter{
		name: "internetdb",
		check: func(ctx context.Context, ip string) (*data.ProviderResult, error) {
			panic("boom")
		},
	}
	executor, _, _ := newTestExecutor(t, adapter)

	result := executor.Execute("internetdb", testIP, time.Second, true)
	assert.Contains(t, result.Error, "provider failed")
	assert.Contains(t, result.Error, "boom")
}
