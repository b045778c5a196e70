package scan

import (
	"context"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/ipvet/ipvet/pkg/cache"
	"github.com/ipvet/ipvet/pkg/data"
	"github.com/ipvet/ipvet/pkg/provider"
	"github.com/ipvet/ipvet/pkg/ratelimit"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

const testIP = "203.0.113.7"

type scriptedAdapter struct {
	name   string
	result data.ProviderResult
	err    error

	mu       *sync.Mutex
	invoked  *[]string
	blockFor time.Duration
}

func (s *scriptedAdapter) Name() string       { return s.name }
func (s *scriptedAdapter) TTL() time.Duration { return cache.TTLDefault }

func (s *scriptedAdapter) Check(ctx context.Context, ip string) (*data.ProviderResult, error) {
	if s.invoked != nil {
		s.mu.Lock()
		*s.invoked = append(*s.invoked, s.name)
		s.mu.Unlock()
	}
	if s.blockFor > 0 {
		select {
		case <-time.After(s.blockFor):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	result := s.result
	return &result, nil
}

func testLogger() *log.Logger {
	logger := log.New()
	logger.Out = io.Discard
	return logger
}

func newTestOrchestrator(t *testing.T, adapters ...provider.Adapter) *Orchestrator {
	registry := provider.NewRegistry()
	for _, adapter := range adapters {
		assert.Nil(t, registry.Register(adapter))
	}
	retry := provider.RetryPolicy{
		MaxAttempts: 1,
		BaseDelay:   time.Second,
		Jitter:      func(max time.Duration) time.Duration { return 0 },
		Sleep:       func(d time.Duration) {},
	}
	executor := provider.NewExecutor(registry, cache.NewMemRepository(),
		ratelimit.NewMemTracker(), retry, testLogger())
	return NewOrchestrator(executor, testLogger())
}

func providerNames(results []data.ProviderResult) []string {
	names := make([]string, 0, len(results))
	for i := range results {
		names = append(names, results[i].Provider)
	}
	return names
}

func TestCheckIPSequentialOrder(t *testing.T) {
	var invoked []string
	var mu sync.Mutex

	orchestrator := newTestOrchestrator(t,
		&scriptedAdapter{name: "abuseipdb", result: data.ProviderResult{Score: 10}, mu: &mu, invoked: &invoked},
		&scriptedAdapter{name: "ipqs", result: data.ProviderResult{Score: 20}, mu: &mu, invoked: &invoked},
		&scriptedAdapter{name: "torexit", result: data.ProviderResult{Score: 30}, mu: &mu, invoked: &invoked},
	)

	results := orchestrator.CheckIP(testIP, Options{
		Providers: []string{"abuseipdb", "ipqs", "torexit"},
		Timeout:   time.Second,
		UseCache:  false,
		Parallel:  false,
	})

	assert.Equal(t, []string{"abuseipdb", "ipqs", "torexit"}, invoked,
		"sequential mode queries providers strictly in the given order")
	assert.Equal(t, []string{"abuseipdb", "ipqs", "torexit"}, providerNames(results))
}

func TestCheckIPParallelCollectsAll(t *testing.T) {
	orchestrator := newTestOrchestrator(t,
		&scriptedAdapter{name: "abuseipdb", result: data.ProviderResult{Score: 10}},
		&scriptedAdapter{name: "ipqs", result: data.ProviderResult{Score: 20}},
		&scriptedAdapter{name: "torexit", result: data.ProviderResult{Score: 30}},
	)

	results := orchestrator.CheckIP(testIP, Options{
		Providers: []string{"abuseipdb", "ipqs", "torexit"},
		Timeout:   time.Second,
		UseCache:  false,
		Parallel:  true,
	})

	names := providerNames(results)
	sort.Strings(names)
	assert.Equal(t, []string{"abuseipdb", "ipqs", "torexit"}, names,
		"every provider's result is collected exactly once")
}

func TestCheckIPFailureIsolation(t *testing.T) {
	orchestrator := newTestOrchestrator(t,
		&scriptedAdapter{name: "abuseipdb", result: data.ProviderResult{Score: 10}},
		&scriptedAdapter{name: "ipqs", err: &provider.InvalidResponseError{Reason: "bad payload"}},
		&scriptedAdapter{name: "torexit", blockFor: 10 * time.Second},
	)

	results := orchestrator.CheckIP(testIP, Options{
		Providers: []string{"abuseipdb", "ipqs", "torexit"},
		Timeout:   50 * time.Millisecond,
		UseCache:  false,
		Parallel:  true,
	})

	assert.Len(t, results, 3)

	byProvider := make(map[string]data.ProviderResult)
	for _, result := range results {
		byProvider[result.Provider] = result
	}
	assert.Equal(t, "", byProvider["abuseipdb"].Error)
	assert.Equal(t, data.ErrorInvalidResponse, byProvider["ipqs"].Error)
	assert.Contains(t, byProvider["torexit"].Error, "timeout after",
		"a hung provider times out without blocking the others")
}

func TestCheckIPUnknownProviderSurfaces(t *testing.T) {
	orchestrator := newTestOrchestrator(t,
		&scriptedAdapter{name: "abuseipdb", result: data.ProviderResult{Score: 10}},
	)

	results := orchestrator.CheckIP(testIP, Options{
		Providers: []string{"abuseipdb", "virustotal"},
		Timeout:   time.Second,
		Parallel:  false,
	})

	assert.Len(t, results, 2)
	assert.Equal(t, data.ErrorProviderNotAvailable, results[1].Error)
}
